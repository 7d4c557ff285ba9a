package frontmatter

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	ferrors "git.home.luguber.info/inful/docgraph/internal/foundation/errors"
)

// NullableString distinguishes an absent key from an explicit null.
//
//	key absent        -> Set == false
//	key: null         -> Set == true, Value == ""
//	key: some-value   -> Set == true, Value == "some-value"
type NullableString struct {
	Set   bool
	Value string
}

// IsNull reports whether the key was present and explicitly null.
func (n NullableString) IsNull() bool { return n.Set && n.Value == "" }

// TagRef is a tag as written in front matter. Permalink is empty for plain string tags.
type TagRef struct {
	Label     string
	Permalink string
}

// Doc is the validated front matter of one documentation source.
// Recognized keys are typed; everything else is kept in Extra.
type Doc struct {
	ID                  string
	Title               string
	Description         *string
	Slug                string
	Keywords            []string
	Tags                []TagRef
	Image               string
	SidebarLabel        string
	SidebarPosition     *float64
	SidebarClassName    string
	DisplayedSidebar    NullableString
	PaginationLabel     string
	PaginationPrev      NullableString
	PaginationNext      NullableString
	CustomEditURL       NullableString
	ParseNumberPrefixes *bool
	HideTitle           bool
	HideTableOfContents bool
	TOCMinHeadingLevel  *int
	TOCMaxHeadingLevel  *int
	Draft               bool
	Unlisted            bool

	// Extra holds unrecognized keys untouched.
	Extra map[string]any
	// Raw is the complete parsed map, recognized keys included.
	Raw map[string]any
}

// MarshalJSON emits the front matter as it was written.
func (d Doc) MarshalJSON() ([]byte, error) {
	if d.Raw == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(d.Raw)
}

// UnmarshalJSON decodes and validates front matter previously emitted by MarshalJSON.
func (d *Doc) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := Validate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ShouldParseNumberPrefixes reports whether ordinal prefixes may be stripped for this doc.
func (d Doc) ShouldParseNumberPrefixes() bool {
	return d.ParseNumberPrefixes == nil || *d.ParseNumberPrefixes
}

type fieldDecoder func(d *Doc, v any) error

var recognized = map[string]fieldDecoder{
	"id": func(d *Doc, v any) error {
		s, err := asString(v)
		if err == nil && strings.TrimSpace(s) == "" {
			err = fmt.Errorf("must not be empty")
		}
		d.ID = s
		return err
	},
	"title":              stringField(func(d *Doc) *string { return &d.Title }),
	"slug":               stringField(func(d *Doc) *string { return &d.Slug }),
	"image":              stringField(func(d *Doc) *string { return &d.Image }),
	"sidebar_label":      stringField(func(d *Doc) *string { return &d.SidebarLabel }),
	"sidebar_class_name": stringField(func(d *Doc) *string { return &d.SidebarClassName }),
	"pagination_label":   stringField(func(d *Doc) *string { return &d.PaginationLabel }),
	"description": func(d *Doc, v any) error {
		s, err := asString(v)
		if err != nil {
			return err
		}
		d.Description = &s
		return nil
	},
	"keywords": func(d *Doc, v any) error {
		list, err := asStringList(v)
		d.Keywords = list
		return err
	},
	"tags": func(d *Doc, v any) error {
		tags, err := asTags(v)
		d.Tags = tags
		return err
	},
	"sidebar_position": func(d *Doc, v any) error {
		f, err := asNumber(v)
		if err != nil {
			return err
		}
		d.SidebarPosition = &f
		return nil
	},
	"displayed_sidebar": nullableField(func(d *Doc) *NullableString { return &d.DisplayedSidebar }),
	"pagination_prev":   nullableField(func(d *Doc) *NullableString { return &d.PaginationPrev }),
	"pagination_next":   nullableField(func(d *Doc) *NullableString { return &d.PaginationNext }),
	"custom_edit_url":   nullableField(func(d *Doc) *NullableString { return &d.CustomEditURL }),
	"parse_number_prefixes": func(d *Doc, v any) error {
		b, err := asBool(v)
		if err != nil {
			return err
		}
		d.ParseNumberPrefixes = &b
		return nil
	},
	"hide_title":             boolField(func(d *Doc) *bool { return &d.HideTitle }),
	"hide_table_of_contents": boolField(func(d *Doc) *bool { return &d.HideTableOfContents }),
	"draft":                  boolField(func(d *Doc) *bool { return &d.Draft }),
	"unlisted":               boolField(func(d *Doc) *bool { return &d.Unlisted }),
	"toc_min_heading_level":  headingLevelField(func(d *Doc) **int { return &d.TOCMinHeadingLevel }),
	"toc_max_heading_level":  headingLevelField(func(d *Doc) **int { return &d.TOCMaxHeadingLevel }),
}

// RecognizedKeys lists the typed front matter keys, sorted.
func RecognizedKeys() []string {
	keys := make([]string, 0, len(recognized))
	for k := range recognized {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate converts a parsed front matter map into a Doc. Every problem is
// reported in a single validation error; unknown keys are never an error.
func Validate(raw map[string]any) (Doc, error) {
	doc := Doc{Extra: map[string]any{}, Raw: raw}
	if raw == nil {
		doc.Raw = map[string]any{}
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var problems []string
	for _, k := range keys {
		decode, ok := recognized[k]
		if !ok {
			doc.Extra[k] = raw[k]
			continue
		}
		if err := decode(&doc, raw[k]); err != nil {
			problems = append(problems, fmt.Sprintf("%q %v", k, err))
		}
	}

	if doc.TOCMinHeadingLevel != nil && doc.TOCMaxHeadingLevel != nil && *doc.TOCMinHeadingLevel > *doc.TOCMaxHeadingLevel {
		problems = append(problems, `"toc_min_heading_level" must be less than or equal to "toc_max_heading_level"`)
	}

	if len(problems) > 0 {
		return Doc{}, ferrors.ValidationError("invalid front matter: "+strings.Join(problems, "; ")).
			WithContext("fields", problems).
			Build()
	}
	return doc, nil
}

func stringField(target func(*Doc) *string) fieldDecoder {
	return func(d *Doc, v any) error {
		s, err := asString(v)
		*target(d) = s
		return err
	}
}

func boolField(target func(*Doc) *bool) fieldDecoder {
	return func(d *Doc, v any) error {
		b, err := asBool(v)
		*target(d) = b
		return err
	}
}

func nullableField(target func(*Doc) *NullableString) fieldDecoder {
	return func(d *Doc, v any) error {
		if v == nil {
			*target(d) = NullableString{Set: true}
			return nil
		}
		s, err := asString(v)
		if err != nil || strings.TrimSpace(s) == "" {
			return fmt.Errorf("must be a non-empty string or null")
		}
		*target(d) = NullableString{Set: true, Value: s}
		return nil
	}
}

func headingLevelField(target func(*Doc) **int) fieldDecoder {
	return func(d *Doc, v any) error {
		f, err := asNumber(v)
		if err != nil {
			return err
		}
		if f != math.Trunc(f) || f < 2 || f > 6 {
			return fmt.Errorf("must be an integer between 2 and 6")
		}
		level := int(f)
		*target(d) = &level
		return nil
	}
}

func asString(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("must be a string, got %T", v)
	}
	return s, nil
}

func asBool(v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("must be a boolean, got %T", v)
	}
	return b, nil
}

func asNumber(v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, fmt.Errorf("must be a finite number")
		}
		return n, nil
	default:
		return 0, fmt.Errorf("must be a number, got %T", v)
	}
}

func asStringList(v any) ([]string, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("must be a list of strings")
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("must be a list of strings")
		}
		out = append(out, s)
	}
	return out, nil
}

func asTags(v any) ([]TagRef, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("must be a list")
	}
	out := make([]TagRef, 0, len(items))
	for i, item := range items {
		switch tag := item.(type) {
		case string:
			out = append(out, TagRef{Label: tag})
		case map[string]any:
			label, lok := tag["label"].(string)
			permalink, pok := tag["permalink"].(string)
			if !lok || !pok || label == "" || permalink == "" {
				return nil, fmt.Errorf("item %d must have a label and a permalink", i)
			}
			out = append(out, TagRef{Label: label, Permalink: permalink})
		default:
			return nil, fmt.Errorf("item %d must be a string or a {label, permalink} object", i)
		}
	}
	return out, nil
}
