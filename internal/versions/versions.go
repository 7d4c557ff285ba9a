// Package versions derives the metadata of every documentation version of a
// site from configuration and the site's versions.json.
package versions

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"git.home.luguber.info/inful/docgraph/internal/docid"
	ferrors "git.home.luguber.info/inful/docgraph/internal/foundation/errors"
	"git.home.luguber.info/inful/docgraph/internal/urls"
)

// File names and directories of the versioned layout.
const (
	VersionsFile         = "versions.json"
	VersionedDocsDir     = "versioned_docs"
	VersionedSidebarsDir = "versioned_sidebars"
	CurrentLabel         = "Next"
	CurrentPathPart      = "next"
)

// Metadata describes one documentation version.
type Metadata struct {
	VersionName string `json:"versionName"`
	Label       string `json:"label"`
	// Path is the version URL root.
	Path        string `json:"path"`
	TagsPath    string `json:"tagsPath"`
	ContentPath string `json:"contentPath"`
	// ContentPathLocalized is empty when no localized root is configured.
	ContentPathLocalized string `json:"contentPathLocalized,omitempty"`
	SidebarFilePath      string `json:"sidebarFilePath"`
	EditURL              string `json:"editUrl,omitempty"`
	EditURLLocalized     string `json:"editUrlLocalized,omitempty"`
	IsLast               bool   `json:"isLast"`
}

// IsCurrent reports whether m is the unversioned working copy.
func (m Metadata) IsCurrent() bool { return m.VersionName == docid.CurrentVersionName }

// Options configure version derivation. Relative paths resolve against SiteDir.
type Options struct {
	SiteDir               string
	DocsPath              string
	SidebarPath           string
	BaseURL               string
	RouteBasePath         string
	TagsBasePath          string
	EditURL               string
	EditCurrentVersion    bool
	I18nDir               string
	IncludeCurrentVersion bool
	LastVersion           string
	OnlyIncludeVersions   []string
}

// ReadVersionsFile returns the released version names, newest first. A
// missing file yields no versions.
func ReadVersionsFile(siteDir string) ([]string, error) {
	p := filepath.Join(siteDir, VersionsFile)
	raw, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "read versions file").
			WithContext("path", p).Build()
	}
	var names []string
	if err := json.Unmarshal(raw, &names); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "versions file must be a JSON array of strings").
			WithContext("path", p).Fatal().Build()
	}
	for _, n := range names {
		if err := ValidateName(n); err != nil {
			return nil, err
		}
	}
	return names, nil
}

// ValidateName rejects version names that cannot be used as path segments.
func ValidateName(name string) error {
	switch {
	case name == "":
		return ferrors.ConfigError("version name must not be empty").Build()
	case name == "." || name == "..":
		return ferrors.ConfigError(fmt.Sprintf("invalid version name %q", name)).Build()
	case filepath.Base(name) != name:
		return ferrors.ConfigError(fmt.Sprintf("version name %q must not contain path separators", name)).Build()
	}
	return nil
}

// Load derives the metadata of every included version, current first, then
// released versions newest first.
func Load(opts Options) ([]Metadata, error) {
	released, err := ReadVersionsFile(opts.SiteDir)
	if err != nil {
		return nil, err
	}

	var names []string
	if opts.IncludeCurrentVersion {
		names = append(names, docid.CurrentVersionName)
	}
	names = append(names, released...)
	if len(names) == 0 {
		return nil, ferrors.ConfigError("no version to load: the current version is excluded and versions.json lists none").Build()
	}

	last := opts.LastVersion
	if last == "" {
		last = names[0]
		if len(released) > 0 {
			last = released[0]
		}
	}
	if !slices.Contains(names, last) {
		return nil, ferrors.ConfigError(fmt.Sprintf("last version %q does not exist; available versions: %v", last, names)).Build()
	}

	if len(opts.OnlyIncludeVersions) > 0 {
		for _, n := range opts.OnlyIncludeVersions {
			if !slices.Contains(names, n) {
				return nil, ferrors.ConfigError(fmt.Sprintf("only_include_versions names unknown version %q; available versions: %v", n, names)).Build()
			}
		}
		names = slices.DeleteFunc(names, func(n string) bool {
			return !slices.Contains(opts.OnlyIncludeVersions, n)
		})
	}

	out := make([]Metadata, 0, len(names))
	for _, name := range names {
		m := build(opts, name, last)
		if st, err := os.Stat(m.ContentPath); err != nil || !st.IsDir() {
			return nil, ferrors.ConfigError(fmt.Sprintf("the docs folder does not exist for version %q: %s", name, m.ContentPath)).
				WithContext(ferrors.KeyVersion, name).Build()
		}
		out = append(out, m)
	}
	return out, nil
}

func build(opts Options, name, last string) Metadata {
	current := name == docid.CurrentVersionName

	var pathPart string
	switch {
	case name == last:
		pathPart = ""
	case current:
		pathPart = CurrentPathPart
	default:
		pathPart = name
	}
	versionPath := urls.Normalize(opts.BaseURL, opts.RouteBasePath, pathPart)

	label := name
	if current {
		label = CurrentLabel
	}

	contentPath := resolve(opts.SiteDir, opts.DocsPath)
	sidebarPath := resolve(opts.SiteDir, opts.SidebarPath)
	if !current {
		contentPath = filepath.Join(opts.SiteDir, VersionedDocsDir, "version-"+name)
		sidebarPath = versionedSidebarPath(opts.SiteDir, name)
	}

	m := Metadata{
		VersionName:     name,
		Label:           label,
		Path:            versionPath,
		TagsPath:        urls.Normalize(versionPath, opts.TagsBasePath),
		ContentPath:     contentPath,
		SidebarFilePath: sidebarPath,
		IsLast:          name == last,
	}
	if opts.I18nDir != "" {
		m.ContentPathLocalized = localizedPath(opts, name)
	}

	if opts.EditURL != "" {
		editDir, editDirLocalized := contentPath, m.ContentPathLocalized
		if opts.EditCurrentVersion {
			editDir = resolve(opts.SiteDir, opts.DocsPath)
			if opts.I18nDir != "" {
				editDirLocalized = localizedPath(opts, docid.CurrentVersionName)
			}
		}
		m.EditURL = urls.Normalize(opts.EditURL, relSlash(opts.SiteDir, editDir))
		if editDirLocalized != "" {
			m.EditURLLocalized = urls.Normalize(opts.EditURL, relSlash(opts.SiteDir, editDirLocalized))
		}
	}
	return m
}

func localizedPath(opts Options, name string) string {
	dir := "current"
	if name != docid.CurrentVersionName {
		dir = "version-" + name
	}
	return filepath.Join(resolve(opts.SiteDir, opts.I18nDir), dir)
}

func versionedSidebarPath(siteDir, name string) string {
	base := filepath.Join(siteDir, VersionedSidebarsDir, "version-"+name+"-sidebars")
	for _, ext := range []string{".yaml", ".yml", ".json"} {
		if _, err := os.Stat(base + ext); err == nil {
			return base + ext
		}
	}
	return base + ".yaml"
}

func resolve(siteDir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(siteDir, p)
}

func relSlash(base, target string) string {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return filepath.ToSlash(target)
	}
	return filepath.ToSlash(rel)
}
