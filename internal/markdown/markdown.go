// Package markdown parses a documentation source into its front matter,
// content title and excerpt.
package markdown

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"git.home.luguber.info/inful/docgraph/internal/frontmatter"
)

// ErrInvalidFrontMatter indicates the front matter block could not be parsed.
var ErrInvalidFrontMatter = errors.New("invalid front matter")

// Parsed is the result of parsing one source.
type Parsed struct {
	FrontMatter map[string]any
	// ContentTitle is the text of a level-1 heading opening the body, if any.
	ContentTitle string
	// Excerpt is the plain text of the first paragraph or sub-heading.
	Excerpt string
	Body    []byte
}

// Parser parses Markdown sources. The zero value is ready to use.
type Parser struct {
	md goldmark.Markdown
}

// NewParser returns a Parser using a CommonMark goldmark instance.
func NewParser() *Parser {
	return &Parser{md: goldmark.New()}
}

// Parse splits front matter from content and extracts title and excerpt.
func (p *Parser) Parse(content string) (Parsed, error) {
	fields, body, err := frontmatter.Parse([]byte(content))
	if err != nil {
		return Parsed{}, fmt.Errorf("%w: %w", ErrInvalidFrontMatter, err)
	}

	md := p.md
	if md == nil {
		md = goldmark.New()
	}
	root := md.Parser().Parse(text.NewReader(body))

	return Parsed{
		FrontMatter:  fields,
		ContentTitle: contentTitle(root, body),
		Excerpt:      excerpt(root, body),
		Body:         body,
	}, nil
}

func contentTitle(root gmast.Node, source []byte) string {
	h, ok := root.FirstChild().(*gmast.Heading)
	if !ok || h.Level != 1 {
		return ""
	}
	return plainText(h, source)
}

func excerpt(root gmast.Node, source []byte) string {
	var out string
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gmast.FencedCodeBlock, *gmast.CodeBlock, *gmast.HTMLBlock, *gmast.ThematicBreak:
			return gmast.WalkSkipChildren, nil
		case *gmast.Heading:
			if node.Level == 1 {
				return gmast.WalkSkipChildren, nil
			}
			if s := plainText(node, source); s != "" {
				out = s
				return gmast.WalkStop, nil
			}
			return gmast.WalkSkipChildren, nil
		case *gmast.Paragraph, *gmast.TextBlock:
			if s := plainText(node, source); s != "" {
				out = s
				return gmast.WalkStop, nil
			}
			return gmast.WalkSkipChildren, nil
		}
		return gmast.WalkContinue, nil
	})
	return out
}

// plainText concatenates the inline text of n; images are dropped.
func plainText(n gmast.Node, source []byte) string {
	var b strings.Builder
	_ = gmast.Walk(n, func(c gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := c.(type) {
		case *gmast.Image, *gmast.RawHTML:
			return gmast.WalkSkipChildren, nil
		case *gmast.Text:
			b.Write(node.Segment.Value(source))
			if node.SoftLineBreak() || node.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *gmast.String:
			b.Write(node.Value)
		case *gmast.AutoLink:
			b.Write(node.URL(source))
		}
		return gmast.WalkContinue, nil
	})
	return strings.Join(strings.Fields(b.String()), " ")
}
