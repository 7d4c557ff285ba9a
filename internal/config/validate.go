package config

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	ferrors "git.home.luguber.info/inful/docgraph/internal/foundation/errors"
	"git.home.luguber.info/inful/docgraph/internal/versions"
)

// EditURLPlaceholders are the names accepted inside docs.edit_url_pattern.
var EditURLPlaceholders = []string{"version", "versionDocsDirPath", "docPath", "permalink", "locale"}

var placeholderRe = regexp.MustCompile(`\{([^{}]*)\}`)

// Validate checks a defaulted configuration and reports every problem found
// as one configuration error.
func Validate(cfg *Config) error {
	var problems []string
	add := func(format string, args ...any) { problems = append(problems, fmt.Sprintf(format, args...)) }

	for _, p := range append(append([]string(nil), cfg.Docs.Include...), cfg.Docs.Exclude...) {
		if !doublestar.ValidatePattern(p) {
			add("invalid glob pattern %q", p)
		}
	}
	if cfg.Docs.EditURL != "" && cfg.Docs.EditURLPattern != "" {
		add("docs.edit_url and docs.edit_url_pattern are mutually exclusive")
	}
	for _, m := range placeholderRe.FindAllStringSubmatch(cfg.Docs.EditURLPattern, -1) {
		if !slices.Contains(EditURLPlaceholders, m[1]) {
			add("unknown placeholder {%s} in docs.edit_url_pattern (known: %s)", m[1], strings.Join(EditURLPlaceholders, ", "))
		}
	}
	if cfg.Docs.LastVersion != "" {
		if err := versions.ValidateName(cfg.Docs.LastVersion); err != nil {
			add("docs.last_version: %v", err)
		}
	}
	for _, v := range cfg.Docs.OnlyIncludeVersions {
		if err := versions.ValidateName(v); err != nil {
			add("docs.only_include_versions: %v", err)
		}
	}
	if d, err := time.ParseDuration(cfg.Watch.Debounce); err != nil || d <= 0 {
		add("watch.debounce must be a positive duration, got %q", cfg.Watch.Debounce)
	}
	if cfg.Watch.Refresh != "" {
		if d, err := time.ParseDuration(cfg.Watch.Refresh); err != nil || d < time.Second {
			add("watch.refresh must be a duration of at least 1s, got %q", cfg.Watch.Refresh)
		}
	}
	if cfg.Events.Enabled() && strings.ContainsAny(cfg.Events.Subject, " \t*>") {
		add("events.subject must be a concrete subject, got %q", cfg.Events.Subject)
	}

	if len(problems) == 0 {
		return nil
	}
	return ferrors.ConfigError("invalid configuration:\n- " + strings.Join(problems, "\n- ")).
		WithContext("problems", len(problems)).Build()
}

// DebounceDuration returns the parsed watch debounce.
func (w WatchConfig) DebounceDuration() time.Duration {
	d, err := time.ParseDuration(w.Debounce)
	if err != nil {
		return 0
	}
	return d
}

// RefreshInterval returns the parsed refresh interval, zero when disabled.
func (w WatchConfig) RefreshInterval() time.Duration {
	if w.Refresh == "" {
		return 0
	}
	d, err := time.ParseDuration(w.Refresh)
	if err != nil {
		return 0
	}
	return d
}
