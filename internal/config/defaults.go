package config

import (
	"runtime"
	"slices"

	"git.home.luguber.info/inful/docgraph/internal/docs"
)

const (
	defaultDocsPath      = "docs"
	defaultRouteBasePath = "docs"
	defaultSidebarPath   = "sidebars.yaml"
	defaultTagsBasePath  = "tags"
	defaultManifest      = "docgraph-manifest.json"
	defaultStream        = "DOCGRAPH"
	defaultSubject       = "docgraph.versions"
	defaultDebounce      = "500ms"
)

// ApplyDefaults fills every unset field. It is idempotent.
func ApplyDefaults(cfg *Config) {
	if cfg.SiteDir == "" {
		cfg.SiteDir = "."
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "/"
	}
	if cfg.Locale == "" {
		cfg.Locale = "en"
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = runtime.NumCPU()
	}

	d := &cfg.Docs
	if d.Path == "" {
		d.Path = defaultDocsPath
	}
	if d.RouteBasePath == "" {
		d.RouteBasePath = defaultRouteBasePath
	}
	if d.SidebarPath == "" {
		d.SidebarPath = defaultSidebarPath
	}
	if d.TagsBasePath == "" {
		d.TagsBasePath = defaultTagsBasePath
	}
	if d.Include == nil {
		d.Include = slices.Clone(docs.DefaultInclude)
	}
	if d.Exclude == nil {
		d.Exclude = slices.Clone(docs.DefaultExclude)
	}
	if d.NumberPrefixes == nil {
		d.NumberPrefixes = boolPtr(true)
	}
	if d.UseRealVCSLookup == nil {
		d.UseRealVCSLookup = boolPtr(true)
	}
	if d.IncludeCurrentVersion == nil {
		d.IncludeCurrentVersion = boolPtr(true)
	}

	if cfg.Output.Manifest == "" {
		cfg.Output.Manifest = defaultManifest
	}
	if cfg.Events.Stream == "" {
		cfg.Events.Stream = defaultStream
	}
	if cfg.Events.Subject == "" {
		cfg.Events.Subject = defaultSubject
	}
	if cfg.Watch.Debounce == "" {
		cfg.Watch.Debounce = defaultDebounce
	}

	cfg.Logging.Level = NormalizeLogLevel(string(cfg.Logging.Level))
	cfg.Logging.Format = NormalizeLogFormat(string(cfg.Logging.Format))
}

func boolPtr(b bool) *bool { return &b }
