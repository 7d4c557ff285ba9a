package docmeta

import (
	"git.home.luguber.info/inful/docgraph/internal/docs"
	"git.home.luguber.info/inful/docgraph/internal/frontmatter"
	"git.home.luguber.info/inful/docgraph/internal/urls"
)

// NormalizeTags places every tag permalink under tagsPath and drops
// duplicates by permalink, keeping the first.
func NormalizeTags(tagsPath string, refs []frontmatter.TagRef) []docs.Tag {
	out := make([]docs.Tag, 0, len(refs))
	seen := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		permalink := ref.Permalink
		if permalink == "" {
			permalink = urls.KebabCase(ref.Label)
		}
		tag := docs.Tag{Label: ref.Label, Permalink: urls.Normalize(tagsPath, permalink)}
		if _, dup := seen[tag.Permalink]; dup {
			continue
		}
		seen[tag.Permalink] = struct{}{}
		out = append(out, tag)
	}
	return out
}
