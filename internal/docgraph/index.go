// Package docgraph links the documents of one version into a navigable graph:
// id lookup, previous/next navigation, the version entry point and the
// folder landing-page convention.
package docgraph

import "git.home.luguber.info/inful/docgraph/internal/docs"

// Index maps both id forms of every document of a version to the document.
type Index struct {
	byID map[string]docs.DocMetadataBase
}

// NewIndex indexes docs by unversioned id, then by id. When keys collide the
// later insertion wins, so a versioned id always resolves to its own document.
func NewIndex(all []docs.DocMetadataBase) *Index {
	byID := make(map[string]docs.DocMetadataBase, 2*len(all))
	for _, d := range all {
		byID[d.UnversionedID] = d
	}
	for _, d := range all {
		byID[d.ID] = d
	}
	return &Index{byID: byID}
}

// Lookup returns the document reachable under id.
func (x *Index) Lookup(id string) (docs.DocMetadataBase, bool) {
	d, ok := x.byID[id]
	return d, ok
}

// Len returns the number of distinct keys.
func (x *Index) Len() int { return len(x.byID) }

// AllIDs returns both id forms of every document, in input order.
func AllIDs(all []docs.DocMetadataBase) []string {
	ids := make([]string, 0, 2*len(all))
	for _, d := range all {
		ids = append(ids, d.UnversionedID, d.ID)
	}
	return ids
}
