package errors

import (
	"strconv"
	"strings"
)

// Context keys shared by the loaders.
const (
	KeySource      = "source"
	KeyFile        = "file"
	KeyVersion     = "version"
	KeyDocID       = "doc_id"
	KeyTarget      = "target"
	KeySidebarFile = "sidebar_file"
)

// Location describes where a classified error originated, e.g.
// `version "1.0", doc "intro"`. It is empty when err carries no location.
func Location(err error) string {
	classified, ok := AsClassified(err)
	if !ok {
		return ""
	}
	ctx := classified.Context()
	var parts []string
	for _, k := range []struct{ key, label string }{
		{KeyVersion, "version"},
		{KeySidebarFile, "sidebar file"},
		{KeySource, "source"},
		{KeyFile, "file"},
		{KeyDocID, "doc"},
	} {
		if v, ok := ctx.GetString(k.key); ok && v != "" {
			parts = append(parts, k.label+" "+strconv.Quote(v))
		}
	}
	return strings.Join(parts, ", ")
}
