// Package frontmatter splits YAML front matter from Markdown sources and
// validates it into a typed document record.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrUnclosed reports a source that opens a front matter block but never
// closes it.
var ErrUnclosed = errors.New("front matter opened with --- but never closed")

// Source is a Markdown source split at its front matter block.
type Source struct {
	// Raw is the YAML between the delimiters.
	Raw     []byte
	Body    []byte
	Present bool
}

// Split looks for a --- delimited block on the first line of content. The
// closing delimiter may be the final line, with or without a line break.
// Both LF and CRLF line endings are accepted; Raw and Body keep them.
func Split(content []byte) (Source, error) {
	first, rest, ok := cutLine(content)
	if !ok || !isDelimiter(first) {
		return Source{Body: content}, nil
	}

	block := rest
	consumed := 0
	for len(rest) > 0 {
		line, next, _ := cutLine(rest)
		if isDelimiter(line) {
			return Source{Raw: block[:consumed], Body: next, Present: true}, nil
		}
		consumed += len(rest) - len(next)
		rest = next
	}
	return Source{}, ErrUnclosed
}

// Decode parses raw front matter into a map. Blank input yields an empty map.
func Decode(raw []byte) (map[string]any, error) {
	fields := map[string]any{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return fields, nil
	}
	if err := yaml.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decode front matter: %w", err)
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

// Parse splits content and decodes its front matter.
func Parse(content []byte) (fields map[string]any, body []byte, err error) {
	src, err := Split(content)
	if err != nil {
		return nil, nil, err
	}
	fields, err = Decode(src.Raw)
	if err != nil {
		return nil, nil, err
	}
	return fields, src.Body, nil
}

// cutLine returns the first line of b without its line ending and the
// remainder. ok is false when b holds no line break.
func cutLine(b []byte) (line, rest []byte, ok bool) {
	i := bytes.IndexByte(b, '\n')
	if i < 0 {
		return b, nil, false
	}
	return bytes.TrimSuffix(b[:i], []byte("\r")), b[i+1:], true
}

func isDelimiter(line []byte) bool {
	return string(bytes.TrimRight(line, " \t")) == "---"
}
