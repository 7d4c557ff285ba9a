// Package fingerprint computes stable content fingerprints of documentation
// sources with mdfp.
package fingerprint

import (
	"strings"

	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/docgraph/internal/frontmatter"
)

// excluded front matter keys do not change a source's fingerprint.
var excluded = map[string]struct{}{
	mdfp.FingerprintField: {},
	"last_update":         {},
}

// Compute returns the fingerprint of a raw source. Front matter is
// canonicalized first, so reordering keys or switching to CRLF line endings
// leaves the fingerprint unchanged.
func Compute(content string) (string, error) {
	fields, body, err := frontmatter.Parse([]byte(content))
	if err != nil {
		return "", err
	}
	return FromParts(fields, strings.ReplaceAll(string(body), "\r\n", "\n"))
}

// FromParts fingerprints already parsed front matter fields and body.
func FromParts(fields map[string]any, body string) (string, error) {
	hashed := make(map[string]any, len(fields))
	for k, v := range fields {
		if _, skip := excluded[k]; skip {
			continue
		}
		hashed[k] = v
	}

	fm := ""
	if len(hashed) > 0 {
		serialized, err := frontmatter.Canonical(hashed)
		if err != nil {
			return "", err
		}
		fm = strings.TrimSuffix(string(serialized), "\n")
	}
	return mdfp.CalculateFingerprintFromParts(fm, body), nil
}
