// Package config loads the docgraph.yaml (or docgraph.toml) configuration
// file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/docgraph/internal/foundation/errors"
	"git.home.luguber.info/inful/docgraph/internal/logfields"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "docgraph.yaml"

// Config represents the application configuration.
type Config struct {
	SiteDir string `yaml:"site_dir" toml:"site_dir"`
	BaseURL string `yaml:"base_url" toml:"base_url"`
	Locale  string `yaml:"locale" toml:"locale"`
	// Concurrency bounds parallel reads and metadata construction per version.
	Concurrency int           `yaml:"concurrency" toml:"concurrency"`
	Docs        DocsConfig    `yaml:"docs" toml:"docs"`
	Output      OutputConfig  `yaml:"output" toml:"output"`
	Events      EventsConfig  `yaml:"events" toml:"events"`
	Watch       WatchConfig   `yaml:"watch" toml:"watch"`
	Logging     LoggingConfig `yaml:"logging" toml:"logging"`
}

// DocsConfig configures the documentation plugin instance.
type DocsConfig struct {
	Path          string   `yaml:"path" toml:"path"`
	RouteBasePath string   `yaml:"route_base_path" toml:"route_base_path"`
	SidebarPath   string   `yaml:"sidebar_path" toml:"sidebar_path"`
	TagsBasePath  string   `yaml:"tags_base_path" toml:"tags_base_path"`
	Include       []string `yaml:"include,omitempty" toml:"include,omitempty"`
	Exclude       []string `yaml:"exclude,omitempty" toml:"exclude,omitempty"`

	// EditURL is a base URL joined with the doc path. EditURLPattern, when
	// set, takes precedence and may use the placeholders {version},
	// {versionDocsDirPath}, {docPath}, {permalink} and {locale}.
	EditURL            string `yaml:"edit_url,omitempty" toml:"edit_url,omitempty"`
	EditURLPattern     string `yaml:"edit_url_pattern,omitempty" toml:"edit_url_pattern,omitempty"`
	EditLocalizedFiles bool   `yaml:"edit_localized_files" toml:"edit_localized_files"`
	EditCurrentVersion bool   `yaml:"edit_current_version" toml:"edit_current_version"`
	I18nDir            string `yaml:"i18n_dir,omitempty" toml:"i18n_dir,omitempty"`

	NumberPrefixes       *bool `yaml:"number_prefixes,omitempty" toml:"number_prefixes,omitempty"`
	ShowLastUpdateAuthor bool  `yaml:"show_last_update_author" toml:"show_last_update_author"`
	ShowLastUpdateTime   bool  `yaml:"show_last_update_time" toml:"show_last_update_time"`
	UseRealVCSLookup     *bool `yaml:"use_real_vcs_lookup,omitempty" toml:"use_real_vcs_lookup,omitempty"`
	IncludeDrafts        bool  `yaml:"include_drafts" toml:"include_drafts"`

	IncludeCurrentVersion *bool    `yaml:"include_current_version,omitempty" toml:"include_current_version,omitempty"`
	LastVersion           string   `yaml:"last_version,omitempty" toml:"last_version,omitempty"`
	OnlyIncludeVersions   []string `yaml:"only_include_versions,omitempty" toml:"only_include_versions,omitempty"`
}

// OutputConfig selects the artifacts written after a load.
type OutputConfig struct {
	// Manifest is the JSON manifest path; "-" writes to stdout.
	Manifest    string `yaml:"manifest" toml:"manifest"`
	Database    string `yaml:"database,omitempty" toml:"database,omitempty"`
	MetricsFile string `yaml:"metrics_file,omitempty" toml:"metrics_file,omitempty"`
}

// EventsConfig enables publication of load events to NATS JetStream.
type EventsConfig struct {
	NATSURL string `yaml:"nats_url,omitempty" toml:"nats_url,omitempty"`
	Stream  string `yaml:"stream" toml:"stream"`
	Subject string `yaml:"subject" toml:"subject"`
}

// Enabled reports whether events should be published.
func (e EventsConfig) Enabled() bool { return e.NATSURL != "" }

// WatchConfig configures watch mode.
type WatchConfig struct {
	Debounce string `yaml:"debounce" toml:"debounce"`
	// Refresh is an optional interval for unconditional reloads.
	Refresh string `yaml:"refresh,omitempty" toml:"refresh,omitempty"`
}

// LoggingConfig configures the default logger.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level" toml:"level"`
	Format LogFormat `yaml:"format" toml:"format"`
}

// Load reads, expands, defaults and validates the configuration at path.
func Load(path string) (*Config, error) {
	if loaded, err := loadEnvFiles(); err != nil {
		slog.Debug("No .env file loaded", logfields.Error(err))
	} else {
		slog.Debug("Loaded environment file", logfields.File(loaded))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ferrors.ConfigError("configuration file not found: " + path).
				WithContext("path", path).Build()
		}
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read config file").
			WithContext("path", path).Build()
	}
	if isTOML(path) {
		return ParseTOML(data)
	}
	return Parse(data)
}

// Parse decodes configuration YAML, expanding ${VAR} references first.
func Parse(data []byte) (*Config, error) {
	return parse(data, yaml.Unmarshal)
}

// ParseTOML is Parse for TOML input.
func ParseTOML(data []byte) (*Config, error) {
	return parse(data, toml.Unmarshal)
}

func parse(data []byte, unmarshal func([]byte, any) error) (*Config, error) {
	var cfg Config
	if err := unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to unmarshal config").Fatal().Build()
	}
	ApplyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Init writes an example configuration to path.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return ferrors.ConfigError(fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", path)).
			WithContext("path", path).Build()
	}

	example := Config{
		SiteDir: ".",
		BaseURL: "/",
		Locale:  "en",
		Docs: DocsConfig{
			Path:               "docs",
			RouteBasePath:      "docs",
			SidebarPath:        "sidebars.yaml",
			EditURL:            "https://github.com/example/site/edit/main/",
			ShowLastUpdateTime: true,
		},
		Output: OutputConfig{Manifest: "docgraph-manifest.json"},
	}
	ApplyDefaults(&example)

	marshal := yaml.Marshal
	if isTOML(path) {
		marshal = toml.Marshal
	}
	data, err := marshal(&example)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "failed to marshal config").Build()
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write config file").
			WithContext("path", path).Build()
	}
	return nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// BoolValue returns *p, or def when p is nil.
func BoolValue(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
