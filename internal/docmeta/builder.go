// Package docmeta turns one read source file into its immutable document
// metadata record.
package docmeta

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"git.home.luguber.info/inful/docgraph/internal/docid"
	"git.home.luguber.info/inful/docgraph/internal/docs"
	ferrors "git.home.luguber.info/inful/docgraph/internal/foundation/errors"
	"git.home.luguber.info/inful/docgraph/internal/frontmatter"
	"git.home.luguber.info/inful/docgraph/internal/logfields"
	"git.home.luguber.info/inful/docgraph/internal/markdown"
	"git.home.luguber.info/inful/docgraph/internal/numberprefix"
	"git.home.luguber.info/inful/docgraph/internal/slug"
	"git.home.luguber.info/inful/docgraph/internal/urls"
	"git.home.luguber.info/inful/docgraph/internal/versions"
)

// ContentParser splits a source into front matter, content title and excerpt.
type ContentParser interface {
	Parse(content string) (markdown.Parsed, error)
}

// FrontMatterValidator validates a raw front matter map.
type FrontMatterValidator func(raw map[string]any) (frontmatter.Doc, error)

// SlugDeriver computes a document slug.
type SlugDeriver func(slug.Params) (string, error)

// LoadContext is the site-wide context shared by every document.
type LoadContext struct {
	SiteDir string
	Locale  string
}

// Options configure a Builder. Nil collaborators fall back to the defaults.
type Options struct {
	Parser               ContentParser
	Validate             FrontMatterValidator
	Slug                 SlugDeriver
	NumberPrefix         numberprefix.Parser
	EditURL              EditURL
	EditLocalizedFiles   bool
	ShowLastUpdateAuthor bool
	ShowLastUpdateTime   bool
	// IncludeDrafts keeps drafts and unlisted docs visible.
	IncludeDrafts bool
}

// Builder constructs DocMetadataBase records.
type Builder struct {
	ctx  LoadContext
	opts Options
}

// NewBuilder returns a Builder for the given site context.
func NewBuilder(ctx LoadContext, opts Options) *Builder {
	if opts.Parser == nil {
		opts.Parser = markdown.NewParser()
	}
	if opts.Validate == nil {
		opts.Validate = frontmatter.Validate
	}
	if opts.Slug == nil {
		opts.Slug = slug.Derive
	}
	if opts.NumberPrefix == nil {
		opts.NumberPrefix = numberprefix.Default
	}
	if abs, err := filepath.Abs(ctx.SiteDir); err == nil {
		ctx.SiteDir = abs
	}
	return &Builder{ctx: ctx, opts: opts}
}

// Build constructs the metadata of file within version. A failure is logged
// with the file and version and returned; unclassified failures are wrapped
// as build errors.
func (b *Builder) Build(ctx context.Context, file docs.DocFile, version versions.Metadata) (docs.DocMetadataBase, error) {
	meta, err := b.build(ctx, file, version)
	if err != nil {
		slog.Error("Can't process doc metadata",
			logfields.File(file.FilePath),
			logfields.Version(version.VersionName),
			logfields.Error(err))
		if ferrors.IsClassified(err) {
			return docs.DocMetadataBase{}, err
		}
		return docs.DocMetadataBase{}, ferrors.WrapError(err, ferrors.CategoryBuild,
			fmt.Sprintf("can't process doc metadata for doc at path %s in version %s", file.FilePath, version.VersionName)).
			Fatal().
			WithContext(ferrors.KeyFile, file.FilePath).
			WithContext(ferrors.KeyVersion, version.VersionName).
			Build()
	}
	return meta, nil
}

func (b *Builder) build(ctx context.Context, file docs.DocFile, version versions.Metadata) (docs.DocMetadataBase, error) {
	if err := ctx.Err(); err != nil {
		return docs.DocMetadataBase{}, err
	}

	parsed, err := b.opts.Parser.Parse(file.Content)
	if err != nil {
		return docs.DocMetadataBase{}, err
	}
	fm, err := b.opts.Validate(parsed.FrontMatter)
	if err != nil {
		return docs.DocMetadataBase{}, withSource(err, file.Source)
	}

	parseNumberPrefixes := fm.ShouldParseNumberPrefixes()
	ids, err := docid.Resolve(docid.Input{
		Source:              file.Source,
		FrontMatterID:       fm.ID,
		FrontMatterPosition: fm.SidebarPosition,
		ParseNumberPrefixes: parseNumberPrefixes,
		Parser:              b.opts.NumberPrefix,
		VersionName:         version.VersionName,
	})
	if err != nil {
		return docs.DocMetadataBase{}, err
	}

	docSlug, err := b.opts.Slug(slug.Params{
		BaseID:                 ids.BaseID,
		Source:                 file.Source,
		SourceDirName:          ids.SourceDirName,
		FrontMatterSlug:        fm.Slug,
		StripDirNumberPrefixes: parseNumberPrefixes,
		NumberPrefixParser:     b.opts.NumberPrefix,
	})
	if err != nil {
		return docs.DocMetadataBase{}, err
	}
	permalink := urls.Normalize(version.Path, docSlug)

	title := fm.Title
	if title == "" {
		title = parsed.ContentTitle
	}
	if title == "" {
		title = ids.BaseID
	}

	description := parsed.Excerpt
	if fm.Description != nil {
		description = *fm.Description
	}

	meta := docs.DocMetadataBase{
		ID:              ids.ID,
		UnversionedID:   ids.UnversionedID,
		Title:           title,
		Description:     description,
		Source:          b.siteSource(file),
		SourceDirName:   ids.SourceDirName,
		Slug:            docSlug,
		Permalink:       permalink,
		Draft:           fm.Draft && !b.opts.IncludeDrafts,
		Unlisted:        fm.Unlisted && !b.opts.IncludeDrafts,
		EditURL:         b.editURL(fm, file, version, permalink),
		Tags:            NormalizeTags(version.TagsPath, fm.Tags),
		Version:         version.VersionName,
		SidebarPosition: ids.SidebarPosition,
		FrontMatter:     fm,
	}

	if b.opts.ShowLastUpdateAuthor {
		meta.LastUpdatedBy = file.LastUpdate.LastUpdatedBy
	}
	if b.opts.ShowLastUpdateTime && file.LastUpdate.LastUpdatedAt != nil {
		meta.LastUpdatedAt = file.LastUpdate.LastUpdatedAt
		formatted := FormatDate(b.ctx.Locale, *file.LastUpdate.LastUpdatedAt)
		meta.FormattedLastUpdatedAt = &formatted
	}
	return meta, nil
}

func (b *Builder) editURL(fm frontmatter.Doc, file docs.DocFile, version versions.Metadata, permalink string) *string {
	if fm.CustomEditURL.Set {
		if fm.CustomEditURL.IsNull() {
			return nil
		}
		v := fm.CustomEditURL.Value
		return &v
	}

	var out string
	switch b.opts.EditURL.kind {
	case editURLFunc:
		out = b.opts.EditURL.fn(EditURLParams{
			Version:            version.VersionName,
			VersionDocsDirPath: relSlash(b.ctx.SiteDir, version.ContentPath),
			DocPath:            file.Source,
			Permalink:          permalink,
			Locale:             b.ctx.Locale,
		})
	case editURLTemplate:
		base := version.EditURL
		localized := version.ContentPathLocalized != "" && file.ContentPath == version.ContentPathLocalized
		if localized && b.opts.EditLocalizedFiles {
			base = version.EditURLLocalized
		}
		out = urls.EditURL(base, file.Source)
	}
	if out == "" {
		return nil
	}
	return &out
}

func (b *Builder) siteSource(file docs.DocFile) string {
	p := file.FilePath
	if p == "" {
		p = filepath.Join(file.ContentPath, filepath.FromSlash(file.Source))
	}
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	return "@site/" + relSlash(b.ctx.SiteDir, p)
}

func relSlash(base, target string) string {
	if abs, err := filepath.Abs(target); err == nil {
		target = abs
	}
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return filepath.ToSlash(target)
	}
	return filepath.ToSlash(rel)
}

func withSource(err error, source string) error {
	b := ferrors.ValidationError(fmt.Sprintf("%s: %v", source, err))
	if ce, ok := ferrors.AsClassified(err); ok {
		b = ferrors.NewError(ce.Category(), fmt.Sprintf("%s: %s", source, ce.Message())).WithSeverity(ce.Severity())
		for k, v := range ce.Context() {
			b = b.WithContext(k, v)
		}
	}
	return b.WithContext(ferrors.KeySource, source).Build()
}
