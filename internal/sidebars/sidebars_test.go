package sidebars

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/docgraph/internal/foundation/errors"
	"git.home.luguber.info/inful/docgraph/internal/frontmatter"
)

const sample = `
docs:
  - intro
  - type: category
    label: Getting Started
    link:
      type: generated-index
    items:
      - guides/install
      - type: doc
        id: guides/configure
        label: Configure it
  - type: link
    href: https://example.com
    label: External
  - type: category
    label: API
    link:
      type: doc
      id: api/index
    items:
      - api/client
api:
  Reference:
    - type: ref
      id: intro
    - api/server
`

func TestParse_PreservesOrderAndShapes(t *testing.T) {
	s, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, []string{"docs", "api"}, s.Names())
	items, ok := s.Items("docs")
	require.True(t, ok)
	require.Len(t, items, 4)
	assert.Equal(t, Item{Type: TypeDoc, ID: "intro"}, items[0])
	assert.Equal(t, TypeCategory, items[1].Type)
	require.NotNil(t, items[1].Link)
	assert.Equal(t, LinkGeneratedIndex, items[1].Link.Type)
	assert.Equal(t, "Configure it", items[1].Items[1].Label)
	assert.Equal(t, TypeLink, items[2].Type)

	api, _ := s.Items("api")
	require.Len(t, api, 1)
	assert.Equal(t, "Reference", api[0].Label)
	assert.Equal(t, TypeRef, api[0].Items[0].Type)
}

func TestParse_JSON(t *testing.T) {
	s, err := Parse([]byte(`{"main": ["a", {"type": "doc", "id": "b"}]}`))
	require.NoError(t, err)
	items, _ := s.Items("main")
	assert.Len(t, items, 2)
}

func TestParse_Rejections(t *testing.T) {
	cases := map[string]string{
		"not a mapping":      "- a\n",
		"unknown type":       "s:\n  - type: widget\n",
		"doc without id":     "s:\n  - type: doc\n",
		"link without href":  "s:\n  - type: link\n    label: x\n",
		"bad category link":  "s:\n  - type: category\n    label: c\n    link:\n      type: page\n",
		"duplicate sidebars": "s: [a]\ns: [b]\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(src))
			require.Error(t, err)
		})
	}

	_, err := Parse([]byte("s:\n  - type: autogenerated\n    dirName: .\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAutogeneratedUnsupported))
}

func TestLoad_MissingFileMeansNoSidebars(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "sidebars.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())

	s, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
}

func TestLoad_InvalidFileIsValidationError(t *testing.T) {
	p := filepath.Join(t.TempDir(), "sidebars.yaml")
	require.NoError(t, os.WriteFile(p, []byte("s:\n  - type: widget\n"), 0o644))
	_, err := Load(p)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))
}

func utilsFor(t *testing.T) *Utils {
	t.Helper()
	s, err := Parse([]byte(sample))
	require.NoError(t, err)
	return NewUtils(s, "/docs")
}

func TestUtils_Navigation(t *testing.T) {
	u := utilsFor(t)

	nav, err := u.GetDocNavigation("intro", "intro", frontmatter.NullableString{})
	require.NoError(t, err)
	assert.Equal(t, "docs", nav.SidebarName)
	assert.Nil(t, nav.Previous)
	require.NotNil(t, nav.Next)
	assert.Equal(t, NavigationItem{Title: "Getting Started", Permalink: "/docs/category/getting-started"}, *nav.Next)

	nav, err = u.GetDocNavigation("guides/configure", "guides/configure", frontmatter.NullableString{})
	require.NoError(t, err)
	require.NotNil(t, nav.Previous)
	assert.Equal(t, "guides/install", nav.Previous.DocID)
	require.NotNil(t, nav.Next)
	assert.Equal(t, NavigationItem{DocID: "api/index"}, *nav.Next)

	nav, err = u.GetDocNavigation("api/client", "api/client", frontmatter.NullableString{})
	require.NoError(t, err)
	assert.Nil(t, nav.Next)
	require.NotNil(t, nav.Previous)
	assert.Equal(t, "api/index", nav.Previous.DocID)
}

func TestUtils_LegacyIDFallback(t *testing.T) {
	s, err := Parse([]byte("main:\n  - version-1.0/a\n  - version-1.0/b\n"))
	require.NoError(t, err)
	u := NewUtils(s, "/docs/1.0")

	nav, err := u.GetDocNavigation("a", "version-1.0/a", frontmatter.NullableString{})
	require.NoError(t, err)
	assert.Equal(t, "main", nav.SidebarName)
	require.NotNil(t, nav.Next)
	assert.Equal(t, "version-1.0/b", nav.Next.DocID)
}

func TestUtils_DisplayedSidebar(t *testing.T) {
	u := utilsFor(t)

	nav, err := u.GetDocNavigation("intro", "intro", frontmatter.NullableString{Set: true})
	require.NoError(t, err)
	assert.Equal(t, Navigation{}, nav)

	nav, err = u.GetDocNavigation("orphan", "orphan", frontmatter.NullableString{Set: true, Value: "api"})
	require.NoError(t, err)
	assert.Equal(t, Navigation{SidebarName: "api"}, nav)

	_, err = u.GetDocNavigation("intro", "intro", frontmatter.NullableString{Set: true, Value: "nope"})
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryReference))
}

func TestUtils_NotInAnySidebar(t *testing.T) {
	nav, err := utilsFor(t).GetDocNavigation("orphan", "version-2/orphan", frontmatter.NullableString{})
	require.NoError(t, err)
	assert.Equal(t, Navigation{}, nav)
}

func TestUtils_CheckSidebarsDocIDs(t *testing.T) {
	u := utilsFor(t)
	valid := []string{"intro", "guides/install", "guides/configure", "api/index", "api/client", "api/server"}
	require.NoError(t, u.CheckSidebarsDocIDs(valid, "sidebars.yaml"))

	err := u.CheckSidebarsDocIDs(valid[:4], "sidebars.yaml")
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryReference))
	assert.Contains(t, err.Error(), "sidebars.yaml")
	assert.Contains(t, err.Error(), "- api/client\n- api/server")
}

func TestUtils_FirstDocOfFirstSidebar(t *testing.T) {
	id, ok := utilsFor(t).GetFirstDocIDOfFirstSidebar()
	require.True(t, ok)
	assert.Equal(t, "intro", id)

	_, ok = NewUtils(Sidebars{}, "/").GetFirstDocIDOfFirstSidebar()
	assert.False(t, ok)
}

func TestUtils_HiddenDocsAreSkipped(t *testing.T) {
	s, err := Parse([]byte("main:\n  - a\n  - wip\n  - b\n"))
	require.NoError(t, err)
	u := NewUtils(s, "/docs", "wip")

	nav, err := u.GetDocNavigation("a", "a", frontmatter.NullableString{})
	require.NoError(t, err)
	require.NotNil(t, nav.Next)
	assert.Equal(t, "b", nav.Next.DocID)

	_, ok := u.SidebarNameByDocID("wip")
	assert.False(t, ok)
	require.NoError(t, u.CheckSidebarsDocIDs([]string{"a", "b", "wip"}, "sidebars.yaml"))
	require.Error(t, u.CheckSidebarsDocIDs([]string{"a", "b"}, "sidebars.yaml"))
}
