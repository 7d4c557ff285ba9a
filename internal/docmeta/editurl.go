package docmeta

import "strings"

// EditURLParams is passed to an edit URL function.
type EditURLParams struct {
	Version string
	// VersionDocsDirPath is the version content dir relative to the site dir.
	VersionDocsDirPath string
	// DocPath is the source path relative to the version content dir.
	DocPath   string
	Permalink string
	Locale    string
}

// EditURLFunc computes an edit URL; an empty result means no edit URL.
type EditURLFunc func(EditURLParams) string

type editURLKind int

const (
	editURLNone editURLKind = iota
	editURLTemplate
	editURLFunc
)

// EditURL selects how edit URLs are computed. The zero value means none.
type EditURL struct {
	kind editURLKind
	fn   EditURLFunc
}

// NoEditURL disables edit URLs; front matter custom_edit_url still applies.
func NoEditURL() EditURL { return EditURL{} }

// TemplateEditURL appends the doc path to the version's edit URL base,
// or to the localized base for localized files when enabled.
func TemplateEditURL() EditURL { return EditURL{kind: editURLTemplate} }

// FuncEditURL delegates edit URL computation to fn.
func FuncEditURL(fn EditURLFunc) EditURL {
	if fn == nil {
		return NoEditURL()
	}
	return EditURL{kind: editURLFunc, fn: fn}
}

// PatternEditURL expands {version}, {versionDocsDirPath}, {docPath},
// {permalink} and {locale} in pattern. An empty pattern means none.
func PatternEditURL(pattern string) EditURL {
	if pattern == "" {
		return NoEditURL()
	}
	return FuncEditURL(func(p EditURLParams) string {
		return strings.NewReplacer(
			"{version}", p.Version,
			"{versionDocsDirPath}", p.VersionDocsDirPath,
			"{docPath}", p.DocPath,
			"{permalink}", p.Permalink,
			"{locale}", p.Locale,
		).Replace(pattern)
	})
}

// String names the variant.
func (e EditURL) String() string {
	switch e.kind {
	case editURLTemplate:
		return "template"
	case editURLFunc:
		return "function"
	default:
		return "none"
	}
}
