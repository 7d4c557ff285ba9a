// Package sidebars loads sidebar definitions and answers the navigation
// questions asked while linking a version's documents.
package sidebars

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/docgraph/internal/foundation/errors"
)

// Item types.
const (
	TypeDoc      = "doc"
	TypeRef      = "ref"
	TypeLink     = "link"
	TypeHTML     = "html"
	TypeCategory = "category"
)

// Category link types.
const (
	LinkDoc            = "doc"
	LinkGeneratedIndex = "generated-index"
)

// ErrAutogeneratedUnsupported is returned for autogenerated sidebar items.
var ErrAutogeneratedUnsupported = errors.New("autogenerated sidebar items are not supported")

// Item is one sidebar entry.
type Item struct {
	Type  string
	ID    string
	Label string
	Href  string
	Value string
	Items []Item
	Link  *CategoryLink
}

// CategoryLink is the page a category label points to.
type CategoryLink struct {
	Type string
	// ID is set for doc links.
	ID string
	// Slug is set for generated-index links; empty derives one from the label.
	Slug string
}

// Sidebars is an ordered set of named sidebars.
type Sidebars struct {
	names []string
	items map[string][]Item
}

// Names returns sidebar names in declaration order.
func (s Sidebars) Names() []string { return append([]string(nil), s.names...) }

// Items returns the top-level items of a sidebar.
func (s Sidebars) Items(name string) ([]Item, bool) {
	items, ok := s.items[name]
	return items, ok
}

// Len returns the number of sidebars.
func (s Sidebars) Len() int { return len(s.names) }

// Load reads a sidebars file. A missing path, or an empty one, yields no sidebars.
func Load(path string) (Sidebars, error) {
	if path == "" {
		return Sidebars{}, nil
	}
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Sidebars{}, nil
	}
	if err != nil {
		return Sidebars{}, ferrors.WrapError(err, ferrors.CategoryFileSystem, "read sidebars file").
			WithContext("path", path).Build()
	}
	s, err := Parse(raw)
	if err != nil {
		return Sidebars{}, ferrors.WrapError(err, ferrors.CategoryValidation, "invalid sidebars file "+path).
			Fatal().WithContext("path", path).Build()
	}
	return s, nil
}

// Parse decodes a YAML (or JSON) sidebars document.
func Parse(raw []byte) (Sidebars, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Sidebars{}, err
	}
	s := Sidebars{items: make(map[string][]Item)}
	if len(doc.Content) == 0 {
		return s, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return Sidebars{}, nodeErr(root, "sidebars must be a mapping of sidebar name to items")
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		name := root.Content[i].Value
		if _, dup := s.items[name]; dup {
			return Sidebars{}, nodeErr(root.Content[i], fmt.Sprintf("duplicate sidebar %q", name))
		}
		items, err := parseItems(root.Content[i+1])
		if err != nil {
			return Sidebars{}, fmt.Errorf("sidebar %q: %w", name, err)
		}
		s.names = append(s.names, name)
		s.items[name] = items
	}
	return s, nil
}

func parseItems(n *yaml.Node) ([]Item, error) {
	switch n.Kind {
	case yaml.SequenceNode:
		var out []Item
		for _, c := range n.Content {
			items, err := parseItem(c)
			if err != nil {
				return nil, err
			}
			out = append(out, items...)
		}
		return out, nil
	case yaml.MappingNode:
		return parseShorthand(n)
	default:
		return nil, nodeErr(n, "sidebar items must be a list or a category mapping")
	}
}

// parseShorthand turns {Label: [items]} into one category per key.
func parseShorthand(n *yaml.Node) ([]Item, error) {
	var out []Item
	for i := 0; i+1 < len(n.Content); i += 2 {
		children, err := parseItems(n.Content[i+1])
		if err != nil {
			return nil, err
		}
		out = append(out, Item{Type: TypeCategory, Label: n.Content[i].Value, Items: children})
	}
	return out, nil
}

type rawItem struct {
	Type  string    `yaml:"type"`
	ID    string    `yaml:"id"`
	Label string    `yaml:"label"`
	Href  string    `yaml:"href"`
	Value string    `yaml:"value"`
	Items yaml.Node `yaml:"items"`
	Link  *struct {
		Type string `yaml:"type"`
		ID   string `yaml:"id"`
		Slug string `yaml:"slug"`
	} `yaml:"link"`
}

func parseItem(n *yaml.Node) ([]Item, error) {
	if n.Kind == yaml.ScalarNode {
		if n.Value == "" {
			return nil, nodeErr(n, "empty doc id")
		}
		return []Item{{Type: TypeDoc, ID: n.Value}}, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, nodeErr(n, "invalid sidebar item")
	}
	if !hasKey(n, "type") {
		return parseShorthand(n)
	}

	var r rawItem
	if err := n.Decode(&r); err != nil {
		return nil, err
	}
	switch r.Type {
	case TypeDoc, TypeRef:
		if r.ID == "" {
			return nil, nodeErr(n, r.Type+" item requires an id")
		}
		return []Item{{Type: r.Type, ID: r.ID, Label: r.Label}}, nil
	case TypeLink:
		if r.Href == "" || r.Label == "" {
			return nil, nodeErr(n, "link item requires href and label")
		}
		return []Item{{Type: TypeLink, Href: r.Href, Label: r.Label}}, nil
	case TypeHTML:
		return []Item{{Type: TypeHTML, Value: r.Value}}, nil
	case TypeCategory:
		if r.Label == "" {
			return nil, nodeErr(n, "category item requires a label")
		}
		item := Item{Type: TypeCategory, Label: r.Label}
		if r.Items.Kind != 0 {
			children, err := parseItems(&r.Items)
			if err != nil {
				return nil, err
			}
			item.Items = children
		}
		if r.Link != nil {
			switch r.Link.Type {
			case LinkDoc:
				if r.Link.ID == "" {
					return nil, nodeErr(n, "category doc link requires an id")
				}
			case LinkGeneratedIndex:
			default:
				return nil, nodeErr(n, fmt.Sprintf("unknown category link type %q", r.Link.Type))
			}
			item.Link = &CategoryLink{Type: r.Link.Type, ID: r.Link.ID, Slug: r.Link.Slug}
		}
		return []Item{item}, nil
	case "autogenerated":
		return nil, fmt.Errorf("line %d: %w", n.Line, ErrAutogeneratedUnsupported)
	default:
		return nil, nodeErr(n, fmt.Sprintf("unknown sidebar item type %q", r.Type))
	}
}

func hasKey(n *yaml.Node, key string) bool {
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return true
		}
	}
	return false
}

func nodeErr(n *yaml.Node, msg string) error {
	return fmt.Errorf("line %d: %s", n.Line, msg)
}
