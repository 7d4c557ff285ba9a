package docgraph

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/docgraph/internal/docs"
	ferrors "git.home.luguber.info/inful/docgraph/internal/foundation/errors"
	"git.home.luguber.info/inful/docgraph/internal/frontmatter"
	"git.home.luguber.info/inful/docgraph/internal/sidebars"
)

// SidebarsUtils is the sidebar knowledge needed to link a version.
type SidebarsUtils interface {
	CheckSidebarsDocIDs(validIDs []string, sidebarFilePath string) error
	GetDocNavigation(unversionedID, versionedID string, displayed frontmatter.NullableString) (sidebars.Navigation, error)
	GetFirstDocIDOfFirstSidebar() (string, bool)
}

// LinkOptions configure AddNavigation.
type LinkOptions struct {
	SidebarFilePath string
	// Locale drives the collation of the final ordering.
	Locale string
	// HiddenIDs may be referenced by sidebars without being linked, as
	// drafts are.
	HiddenIDs []string
}

// AddNavigation attaches sidebar name and previous/next links to every
// document and returns them sorted by id. Front matter pagination overrides
// sidebar adjacency; an override naming an unknown id is a reference error.
func AddNavigation(all []docs.DocMetadataBase, utils SidebarsUtils, opts LinkOptions) ([]docs.DocMetadata, error) {
	valid := append(AllIDs(all), opts.HiddenIDs...)
	if err := utils.CheckSidebarsDocIDs(valid, opts.SidebarFilePath); err != nil {
		return nil, err
	}

	index := NewIndex(all)
	out := make([]docs.DocMetadata, 0, len(all))
	for _, d := range all {
		linked, err := link(d, index, utils)
		if err != nil {
			return nil, err
		}
		out = append(out, linked)
	}

	SortByID(out, opts.Locale)
	return out, nil
}

func link(d docs.DocMetadataBase, index *Index, utils SidebarsUtils) (docs.DocMetadata, error) {
	nav, err := utils.GetDocNavigation(d.UnversionedID, d.ID, d.FrontMatter.DisplayedSidebar)
	if err != nil {
		return docs.DocMetadata{}, err
	}

	linked := docs.DocMetadata{DocMetadataBase: d}
	if nav.SidebarName != "" {
		name := nav.SidebarName
		linked.Sidebar = &name
	}

	linked.Previous, err = resolve(d, "prev", d.FrontMatter.PaginationPrev, nav.Previous, index)
	if err != nil {
		return docs.DocMetadata{}, err
	}
	linked.Next, err = resolve(d, "next", d.FrontMatter.PaginationNext, nav.Next, index)
	if err != nil {
		return docs.DocMetadata{}, err
	}
	return linked, nil
}

func resolve(d docs.DocMetadataBase, kind string, override frontmatter.NullableString, item *sidebars.NavigationItem, index *Index) (*docs.DocNavLink, error) {
	if override.Set {
		if override.IsNull() {
			return nil, nil
		}
		target, ok := index.Lookup(override.Value)
		if !ok {
			return nil, ferrors.ReferenceError(fmt.Sprintf(
				"error when loading %s in %s: the pagination_%s front matter points to a non-existent ID %s",
				d.ID, d.SourceDirName, kind, override.Value)).
				WithContext(ferrors.KeyDocID, d.ID).
				WithContext(ferrors.KeyTarget, override.Value).
				Build()
		}
		l := NavLink(target, "")
		return &l, nil
	}

	if item == nil {
		return nil, nil
	}
	if item.DocID == "" {
		return &docs.DocNavLink{Title: item.Title, Permalink: item.Permalink}, nil
	}
	target, ok := index.Lookup(item.DocID)
	if !ok {
		return nil, ferrors.ReferenceError(fmt.Sprintf("sidebar of %s points to a non-existent ID %s", d.ID, item.DocID)).
			WithContext(ferrors.KeyDocID, d.ID).
			WithContext(ferrors.KeyTarget, item.DocID).
			Build()
	}
	l := NavLink(target, item.Label)
	return &l, nil
}

// NavLink projects d for navigation. The title is the first non-empty of
// pagination_label, sidebar_label, sidebarItemLabel and the document title.
func NavLink(d docs.DocMetadataBase, sidebarItemLabel string) docs.DocNavLink {
	title := d.Title
	for _, candidate := range []string{d.FrontMatter.PaginationLabel, d.FrontMatter.SidebarLabel, sidebarItemLabel} {
		if candidate != "" {
			title = candidate
			break
		}
	}
	return d.NavLink(title)
}

// SortByID orders docs by id using the collation of locale, breaking ties by
// byte order. The sort is stable, so sorting twice changes nothing.
func SortByID(all []docs.DocMetadata, locale string) {
	c := collator(locale)
	sort.SliceStable(all, func(i, j int) bool {
		if r := c.CompareString(all[i].ID, all[j].ID); r != 0 {
			return r < 0
		}
		return strings.Compare(all[i].ID, all[j].ID) < 0
	})
}

func collator(locale string) *collate.Collator {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Und
	}
	return collate.New(tag)
}
