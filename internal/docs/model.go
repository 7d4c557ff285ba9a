// Package docs holds the document data model shared by every stage of a
// version load, plus discovery and concurrent reading of source files.
package docs

import "git.home.luguber.info/inful/docgraph/internal/frontmatter"

// LastUpdateData is the version-control attribution of one file.
// Both fields are independently optional.
type LastUpdateData struct {
	LastUpdatedBy *string `json:"lastUpdatedBy,omitempty"`
	LastUpdatedAt *int64  `json:"lastUpdatedAt,omitempty"`
}

// DocFile is a source file read from a content root. It is immutable once read.
type DocFile struct {
	// Source is slash-separated and relative to ContentPath.
	Source      string
	Content     string
	LastUpdate  LastUpdateData
	ContentPath string
	FilePath    string
}

// Tag is a normalized tag whose permalink lives under the version tags path.
type Tag struct {
	Label     string `json:"label"`
	Permalink string `json:"permalink"`
}

// DocNavLink is the navigation projection of a document.
type DocNavLink struct {
	Title     string `json:"title"`
	Permalink string `json:"permalink"`
}

// DocMetadataBase is the per-file record produced by metadata construction.
type DocMetadataBase struct {
	ID            string `json:"id"`
	UnversionedID string `json:"unversionedId"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	// Source is "@site/" followed by the path relative to the site dir.
	Source                 string          `json:"source"`
	SourceDirName          string          `json:"sourceDirName"`
	Slug                   string          `json:"slug"`
	Permalink              string          `json:"permalink"`
	Draft                  bool            `json:"draft"`
	Unlisted               bool            `json:"unlisted"`
	EditURL                *string         `json:"editUrl,omitempty"`
	Tags                   []Tag           `json:"tags"`
	Version                string          `json:"version"`
	LastUpdatedBy          *string         `json:"lastUpdatedBy,omitempty"`
	LastUpdatedAt          *int64          `json:"lastUpdatedAt,omitempty"`
	FormattedLastUpdatedAt *string         `json:"formattedLastUpdatedAt,omitempty"`
	SidebarPosition        *float64        `json:"sidebarPosition,omitempty"`
	FrontMatter            frontmatter.Doc `json:"frontMatter"`
}

// DocMetadata is a DocMetadataBase linked into its version's navigation.
type DocMetadata struct {
	DocMetadataBase
	Sidebar  *string     `json:"sidebar,omitempty"`
	Previous *DocNavLink `json:"previous,omitempty"`
	Next     *DocNavLink `json:"next,omitempty"`
}

// NavLink projects the document for navigation using title.
func (d DocMetadataBase) NavLink(title string) DocNavLink {
	return DocNavLink{Title: title, Permalink: d.Permalink}
}
