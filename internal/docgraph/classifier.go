package docgraph

import (
	"path"
	"strings"

	"git.home.luguber.info/inful/docgraph/internal/docs"
)

// IsCategoryIndex reports whether source is the landing page of the directory
// sourceDirName: its stem is "index", "readme" or the directory's own name,
// compared case-insensitively.
func IsCategoryIndex(source, sourceDirName string) bool {
	stem := strings.ToLower(strings.TrimSuffix(path.Base(source), path.Ext(source)))
	if stem == "index" || stem == "readme" {
		return true
	}
	dirs := strings.Split(sourceDirName, "/")
	return stem == strings.ToLower(dirs[len(dirs)-1])
}

// IsConventionalDocIndex reports whether doc acts as the implicit landing page
// of its containing folder.
func IsConventionalDocIndex(doc docs.DocMetadataBase) bool {
	return IsCategoryIndex(doc.Source, doc.SourceDirName)
}
