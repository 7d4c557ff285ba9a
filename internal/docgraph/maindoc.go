package docgraph

import (
	"errors"

	"git.home.luguber.info/inful/docgraph/internal/docs"
)

// ErrNoDocuments is returned when a main doc is requested for an empty version.
var ErrNoDocuments = errors.New("no documents to choose a main doc from")

// RootSlug is the slug of a version's root page.
const RootSlug = "/"

// MainDocID picks the entry point of a version: the doc whose slug is the
// version root, else the first doc of the first sidebar, else the first doc
// in the supplied order. It returns the unversioned id.
func MainDocID(all []docs.DocMetadataBase, utils SidebarsUtils) (string, error) {
	if len(all) == 0 {
		return "", ErrNoDocuments
	}
	for _, d := range all {
		if d.Slug == RootSlug {
			return d.UnversionedID, nil
		}
	}
	if first, ok := utils.GetFirstDocIDOfFirstSidebar(); ok {
		for _, d := range all {
			if d.ID == first || d.UnversionedID == first {
				return d.UnversionedID, nil
			}
		}
	}
	return all[0].UnversionedID, nil
}
