// Package docid resolves the identifiers and sidebar ordering hint of a
// document from its source path, front matter and the number-prefix convention.
package docid

import (
	"fmt"
	"path"
	"strings"

	ferrors "git.home.luguber.info/inful/docgraph/internal/foundation/errors"
	"git.home.luguber.info/inful/docgraph/internal/numberprefix"
)

// CurrentVersionName is the version whose ids carry no version namespace.
const CurrentVersionName = "current"

// VersionPrefix namespaces the ids of released versions.
const VersionPrefix = "version-"

// Input are the inputs of Resolve.
type Input struct {
	// Source is slash-separated and relative to the content root.
	Source string
	// FrontMatterID is empty when front matter sets no id.
	FrontMatterID       string
	FrontMatterPosition *float64
	ParseNumberPrefixes bool
	Parser              numberprefix.Parser
	VersionName         string
}

// Result holds the resolved identifiers of one document.
type Result struct {
	BaseID          string
	UnversionedID   string
	ID              string
	SidebarPosition *float64
	SourceDirName   string
	NumberPrefix    *int
}

// Resolve derives the unversioned id, the version-qualified id and the
// sidebar position of a document.
func Resolve(in Input) (Result, error) {
	parse := in.Parser
	if parse == nil {
		parse = numberprefix.Default
	}

	sourceDirName := path.Dir(in.Source)
	stem := strings.TrimSuffix(path.Base(in.Source), path.Ext(in.Source))

	filename := stem
	var prefix *int
	if in.ParseNumberPrefixes {
		r := parse(stem)
		filename, prefix = r.Filename, r.NumberPrefix
	}

	baseID := filename
	if in.FrontMatterID != "" {
		baseID = in.FrontMatterID
	}
	if strings.Contains(baseID, "/") {
		return Result{}, ferrors.ValidationError(fmt.Sprintf(
			"document id %q cannot include slash character in %s", baseID, in.Source)).
			WithContext(ferrors.KeySource, in.Source).
			Build()
	}

	position := in.FrontMatterPosition
	if position == nil && prefix != nil {
		p := float64(*prefix)
		position = &p
	}

	dirPrefix := ""
	if sourceDirName != "." {
		dirPrefix = sourceDirName
		if in.ParseNumberPrefixes {
			dirPrefix = numberprefix.StripPath(sourceDirName, parse)
		}
	}

	unversionedID := join(dirPrefix, baseID)
	return Result{
		BaseID:          baseID,
		UnversionedID:   unversionedID,
		ID:              VersionedID(in.VersionName, unversionedID),
		SidebarPosition: position,
		SourceDirName:   sourceDirName,
		NumberPrefix:    prefix,
	}, nil
}

// VersionedID returns the legacy version-qualified form of unversionedID.
func VersionedID(versionName, unversionedID string) string {
	if versionName == CurrentVersionName {
		return unversionedID
	}
	return join(VersionPrefix+versionName, unversionedID)
}

func join(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "/")
}
