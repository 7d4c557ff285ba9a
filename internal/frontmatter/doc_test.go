package frontmatter

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/docgraph/internal/foundation/errors"
)

func parseAndValidate(t *testing.T, src string) (Doc, error) {
	t.Helper()
	raw, err := Decode([]byte(src))
	require.NoError(t, err)
	return Validate(raw)
}

func TestValidate_RecognizedKeysAreTyped(t *testing.T) {
	doc, err := parseAndValidate(t, `
id: intro
title: Introduction
description: First steps
slug: /start
keywords: [a, b]
sidebar_label: Intro
sidebar_position: 2.5
pagination_label: Getting started
parse_number_prefixes: false
hide_title: true
toc_min_heading_level: 2
toc_max_heading_level: 4
draft: true
`)
	require.NoError(t, err)

	assert.Equal(t, "intro", doc.ID)
	assert.Equal(t, "Introduction", doc.Title)
	require.NotNil(t, doc.Description)
	assert.Equal(t, "First steps", *doc.Description)
	assert.Equal(t, "/start", doc.Slug)
	assert.Equal(t, []string{"a", "b"}, doc.Keywords)
	assert.Equal(t, "Intro", doc.SidebarLabel)
	require.NotNil(t, doc.SidebarPosition)
	assert.InDelta(t, 2.5, *doc.SidebarPosition, 0)
	assert.Equal(t, "Getting started", doc.PaginationLabel)
	assert.False(t, doc.ShouldParseNumberPrefixes())
	assert.True(t, doc.HideTitle)
	require.NotNil(t, doc.TOCMinHeadingLevel)
	assert.Equal(t, 2, *doc.TOCMinHeadingLevel)
	require.NotNil(t, doc.TOCMaxHeadingLevel)
	assert.Equal(t, 4, *doc.TOCMaxHeadingLevel)
	assert.True(t, doc.Draft)
	assert.Empty(t, doc.Extra)
}

func TestValidate_UnknownKeysPassThrough(t *testing.T) {
	doc, err := parseAndValidate(t, "title: T\nauthor_url: https://example.com\ncustom:\n  nested: 1\n")
	require.NoError(t, err)

	assert.Equal(t, "https://example.com", doc.Extra["author_url"])
	assert.Contains(t, doc.Extra, "custom")
	assert.NotContains(t, doc.Extra, "title")
}

func TestValidate_NullableKeys(t *testing.T) {
	doc, err := parseAndValidate(t, "pagination_prev: null\npagination_next: ~\ndisplayed_sidebar: api\n")
	require.NoError(t, err)

	assert.True(t, doc.PaginationPrev.IsNull())
	assert.True(t, doc.PaginationNext.IsNull())
	assert.Equal(t, NullableString{Set: true, Value: "api"}, doc.DisplayedSidebar)
	assert.False(t, doc.CustomEditURL.Set)
}

func TestValidate_Tags(t *testing.T) {
	doc, err := parseAndValidate(t, "tags:\n  - Getting Started\n  - label: API\n    permalink: /api-tag\n")
	require.NoError(t, err)

	assert.Equal(t, []TagRef{
		{Label: "Getting Started"},
		{Label: "API", Permalink: "/api-tag"},
	}, doc.Tags)
}

func TestValidate_Rejections(t *testing.T) {
	cases := []struct {
		name  string
		input string
		field string
	}{
		{"empty id", "id: ''\n", "id"},
		{"numeric title", "title: 12\n", "title"},
		{"position as string", "sidebar_position: first\n", "sidebar_position"},
		{"heading level out of range", "toc_min_heading_level: 1\n", "toc_min_heading_level"},
		{"min above max", "toc_min_heading_level: 5\ntoc_max_heading_level: 3\n", "toc_min_heading_level"},
		{"draft as string", "draft: 'yes'\n", "draft"},
		{"tag object missing permalink", "tags:\n  - label: x\n", "tags"},
		{"keywords not a list", "keywords: a\n", "keywords"},
		{"pagination as number", "pagination_next: 3\n", "pagination_next"},
		{"empty pagination", "pagination_next: ''\n", "pagination_next"},
		{"blank edit url", "custom_edit_url: ' '\n", "custom_edit_url"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseAndValidate(t, tc.input)
			require.Error(t, err)
			assert.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))
			assert.Contains(t, err.Error(), tc.field)
		})
	}
}

func TestValidate_NilMapYieldsEmptyDoc(t *testing.T) {
	doc, err := Validate(nil)
	require.NoError(t, err)
	assert.True(t, doc.ShouldParseNumberPrefixes())

	out, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(out))
}

func TestDoc_MarshalJSONEmitsRawMap(t *testing.T) {
	doc, err := parseAndValidate(t, "title: T\nextra: 1\n")
	require.NoError(t, err)

	out, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"T","extra":1}`, string(out))
}

func TestDoc_UnmarshalJSONRevalidates(t *testing.T) {
	var doc Doc
	require.NoError(t, json.Unmarshal([]byte(`{"title":"T","sidebar_position":3,"pagination_prev":null,"extra":true}`), &doc))
	require.NotNil(t, doc.SidebarPosition)
	assert.Equal(t, 3.0, *doc.SidebarPosition)
	assert.True(t, doc.PaginationPrev.IsNull())
	assert.Equal(t, true, doc.Extra["extra"])

	err := json.Unmarshal([]byte(`{"toc_min_heading_level":9}`), &doc)
	require.Error(t, err)
}

func TestRecognizedKeys_Sorted(t *testing.T) {
	keys := RecognizedKeys()
	assert.IsIncreasing(t, keys)
	assert.Contains(t, keys, "pagination_next")
}
