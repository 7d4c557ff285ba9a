// Package slug derives the URL slug of a document relative to its version root.
package slug

import (
	"fmt"

	"git.home.luguber.info/inful/docgraph/internal/docgraph"
	ferrors "git.home.luguber.info/inful/docgraph/internal/foundation/errors"
	"git.home.luguber.info/inful/docgraph/internal/numberprefix"
	"git.home.luguber.info/inful/docgraph/internal/urls"
)

// Params are the inputs of Derive.
type Params struct {
	BaseID string
	// Source is the content-root-relative source path.
	Source        string
	SourceDirName string
	// FrontMatterSlug is empty when front matter sets no slug.
	FrontMatterSlug        string
	StripDirNumberPrefixes bool
	NumberPrefixParser     numberprefix.Parser
}

// Derive computes the slug of a document.
//
//   - an absolute front matter slug is used verbatim
//   - a folder landing page without a front matter slug takes the folder slug
//   - otherwise the front matter slug, or the base id, is resolved against the folder slug
func Derive(p Params) (string, error) {
	s := compute(p)
	if !urls.IsValidPathname(s) {
		return "", ferrors.ValidationError(fmt.Sprintf(
			"could not compute a valid slug for document with id %q in %q directory: %q; set a custom slug in front matter",
			p.BaseID, p.SourceDirName, s)).
			WithContext(ferrors.KeySource, p.Source).
			Build()
	}
	return s, nil
}

func compute(p Params) string {
	if len(p.FrontMatterSlug) > 0 && p.FrontMatterSlug[0] == '/' {
		return p.FrontMatterSlug
	}
	dirSlug := dirNameSlug(p)
	if p.FrontMatterSlug == "" && docgraph.IsCategoryIndex(p.Source, p.SourceDirName) {
		return dirSlug
	}
	base := p.FrontMatterSlug
	if base == "" {
		base = p.BaseID
	}
	return urls.ResolvePathname(base, dirSlug)
}

func dirNameSlug(p Params) string {
	if p.SourceDirName == "." || p.SourceDirName == "" {
		return "/"
	}
	dir := p.SourceDirName
	if p.StripDirNumberPrefixes {
		parse := p.NumberPrefixParser
		if parse == nil {
			parse = numberprefix.Default
		}
		dir = numberprefix.StripPath(dir, parse)
	}
	return urls.AddLeadingSlash(urls.AddTrailingSlash(dir))
}
