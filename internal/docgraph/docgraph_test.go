package docgraph

import (
	"fmt"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"git.home.luguber.info/inful/docgraph/internal/docs"
	ferrors "git.home.luguber.info/inful/docgraph/internal/foundation/errors"
	"git.home.luguber.info/inful/docgraph/internal/frontmatter"
	"git.home.luguber.info/inful/docgraph/internal/sidebars"
)

func doc(id, title string) docs.DocMetadataBase {
	return docs.DocMetadataBase{
		ID:            id,
		UnversionedID: id,
		Title:         title,
		Slug:          "/" + id,
		Permalink:     "/docs/" + id,
		SourceDirName: ".",
		Version:       "current",
	}
}

func versionedDoc(version, unversionedID string) docs.DocMetadataBase {
	d := doc(unversionedID, unversionedID)
	d.ID = "version-" + version + "/" + unversionedID
	d.Version = version
	return d
}

func utilsFrom(t *testing.T, yamlSrc string) *sidebars.Utils {
	t.Helper()
	s, err := sidebars.Parse([]byte(yamlSrc))
	require.NoError(t, err)
	return sidebars.NewUtils(s, "/docs")
}

func byID(all []docs.DocMetadata) map[string]docs.DocMetadata {
	m := make(map[string]docs.DocMetadata, len(all))
	for _, d := range all {
		m[d.ID] = d
	}
	return m
}

func TestIndex_LookupByEitherID(t *testing.T) {
	all := []docs.DocMetadataBase{versionedDoc("1.0", "a"), versionedDoc("1.0", "guides/b")}
	idx := NewIndex(all)

	for _, d := range all {
		got, ok := idx.Lookup(d.UnversionedID)
		require.True(t, ok)
		assert.Equal(t, d.ID, got.ID)
		got, ok = idx.Lookup(d.ID)
		require.True(t, ok)
		assert.Equal(t, d.ID, got.ID)
	}
	assert.Equal(t, 4, idx.Len())
	_, ok := idx.Lookup("missing")
	assert.False(t, ok)
}

func TestIndex_VersionedKeyOverwritesCollidingUnversionedKey(t *testing.T) {
	// "version-1.0/x" is both the unversioned id of the first doc and the
	// versioned id of the second; the second pass wins.
	first := doc("version-1.0/x", "first")
	second := versionedDoc("1.0", "x")
	second.Title = "second"

	got, ok := NewIndex([]docs.DocMetadataBase{first, second}).Lookup("version-1.0/x")
	require.True(t, ok)
	assert.Equal(t, "second", got.Title)
}

func TestAddNavigation_SidebarAdjacency(t *testing.T) {
	all := []docs.DocMetadataBase{doc("c", "C"), doc("a", "A"), doc("b", "B"), doc("orphan", "Orphan")}
	utils := utilsFrom(t, "main:\n  - a\n  - type: doc\n    id: b\n    label: Bee\n  - c\n")

	linked, err := AddNavigation(all, utils, LinkOptions{SidebarFilePath: "sidebars.yaml", Locale: "en"})
	require.NoError(t, err)

	ids := make([]string, 0, len(linked))
	for _, d := range linked {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"a", "b", "c", "orphan"}, ids)

	m := byID(linked)
	require.NotNil(t, m["a"].Sidebar)
	assert.Equal(t, "main", *m["a"].Sidebar)
	assert.Nil(t, m["a"].Previous)
	assert.Equal(t, &docs.DocNavLink{Title: "Bee", Permalink: "/docs/b"}, m["a"].Next)
	assert.Equal(t, &docs.DocNavLink{Title: "A", Permalink: "/docs/a"}, m["b"].Previous)
	assert.Equal(t, &docs.DocNavLink{Title: "C", Permalink: "/docs/c"}, m["b"].Next)
	assert.Nil(t, m["c"].Next)

	assert.Nil(t, m["orphan"].Sidebar)
	assert.Nil(t, m["orphan"].Previous)
	assert.Nil(t, m["orphan"].Next)
}

func TestAddNavigation_FrontMatterOverrides(t *testing.T) {
	a, b, c := doc("a", "A"), doc("b", "B"), doc("c", "C")
	b.FrontMatter.PaginationPrev = frontmatter.NullableString{Set: true}
	b.FrontMatter.PaginationNext = frontmatter.NullableString{Set: true, Value: "a"}
	a.FrontMatter.PaginationLabel = "Start here"
	c.FrontMatter.SidebarLabel = "Sea"
	utils := utilsFrom(t, "main: [a, b, c]\n")

	linked, err := AddNavigation([]docs.DocMetadataBase{a, b, c}, utils, LinkOptions{})
	require.NoError(t, err)
	m := byID(linked)

	assert.Nil(t, m["b"].Previous)
	assert.Equal(t, &docs.DocNavLink{Title: "Start here", Permalink: "/docs/a"}, m["b"].Next)
	// Overrides break symmetry: a still points forward to b.
	assert.Equal(t, "/docs/b", m["a"].Next.Permalink)
	assert.Equal(t, &docs.DocNavLink{Title: "B", Permalink: "/docs/b"}, m["c"].Previous)
}

func TestNavLink_TitlePrecedence(t *testing.T) {
	d := doc("a", "Title")
	assert.Equal(t, "Title", NavLink(d, "").Title)
	assert.Equal(t, "Item", NavLink(d, "Item").Title)
	d.FrontMatter.SidebarLabel = "Sidebar"
	assert.Equal(t, "Sidebar", NavLink(d, "Item").Title)
	d.FrontMatter.PaginationLabel = "Pagination"
	assert.Equal(t, "Pagination", NavLink(d, "Item").Title)
	assert.Equal(t, "/docs/a", NavLink(d, "").Permalink)
}

func TestAddNavigation_PaginationToMissingID(t *testing.T) {
	a := doc("a", "A")
	a.SourceDirName = "guides"
	a.FrontMatter.PaginationNext = frontmatter.NullableString{Set: true, Value: "missing-id"}

	_, err := AddNavigation([]docs.DocMetadataBase{a}, utilsFrom(t, "{}\n"), LinkOptions{})
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryReference))
	assert.Contains(t, err.Error(), "missing-id")
	assert.Contains(t, err.Error(), "pagination_next")
	assert.Contains(t, err.Error(), "guides")
}

func TestAddNavigation_SidebarReferencesMissingDoc(t *testing.T) {
	_, err := AddNavigation([]docs.DocMetadataBase{doc("a", "A")}, utilsFrom(t, "main: [a, ghost]\n"), LinkOptions{SidebarFilePath: "/site/sidebars.yaml"})
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryReference))
	assert.Contains(t, err.Error(), "/site/sidebars.yaml")
	assert.Contains(t, err.Error(), "ghost")
}

func TestAddNavigation_GeneratedIndexAndDisplayedSidebar(t *testing.T) {
	a, b, c := doc("a", "A"), doc("b", "B"), doc("c", "C")
	c.FrontMatter.DisplayedSidebar = frontmatter.NullableString{Set: true, Value: "other"}
	utils := utilsFrom(t, `
main:
  - a
  - type: category
    label: Deep Dive
    link: {type: generated-index}
    items: [b]
other:
  - c
`)
	linked, err := AddNavigation([]docs.DocMetadataBase{a, b, c}, utils, LinkOptions{})
	require.NoError(t, err)
	m := byID(linked)

	assert.Equal(t, &docs.DocNavLink{Title: "Deep Dive", Permalink: "/docs/category/deep-dive"}, m["a"].Next)
	assert.Equal(t, &docs.DocNavLink{Title: "Deep Dive", Permalink: "/docs/category/deep-dive"}, m["b"].Previous)
	require.NotNil(t, m["c"].Sidebar)
	assert.Equal(t, "other", *m["c"].Sidebar)
}

func TestAddNavigation_LegacyVersionedSidebarIDs(t *testing.T) {
	all := []docs.DocMetadataBase{versionedDoc("1.0", "a"), versionedDoc("1.0", "b")}
	utils := utilsFrom(t, "main: [version-1.0/a, version-1.0/b]\n")

	linked, err := AddNavigation(all, utils, LinkOptions{})
	require.NoError(t, err)
	m := byID(linked)
	require.NotNil(t, m["version-1.0/a"].Next)
	assert.Equal(t, "/docs/b", m["version-1.0/a"].Next.Permalink)
}

func TestIsConventionalDocIndex(t *testing.T) {
	cases := []struct {
		source, dir string
		want        bool
	}{
		{"@site/docs/guides/readme.md", "guides", true},
		{"@site/docs/guides/overview.md", "guides", false},
		{"@site/docs/guides/INDEX.mdx", "guides", true},
		{"@site/docs/a/Guides/guides.md", "a/Guides", true},
		{"@site/docs/index.md", ".", true},
		{"@site/docs/intro.md", ".", false},
	}
	for _, tc := range cases {
		d := docs.DocMetadataBase{Source: tc.source, SourceDirName: tc.dir}
		assert.Equal(t, tc.want, IsConventionalDocIndex(d), tc.source)
	}
}

type noSidebars struct{}

func (noSidebars) CheckSidebarsDocIDs([]string, string) error { return nil }
func (noSidebars) GetDocNavigation(string, string, frontmatter.NullableString) (sidebars.Navigation, error) {
	return sidebars.Navigation{}, nil
}
func (noSidebars) GetFirstDocIDOfFirstSidebar() (string, bool) { return "", false }

func TestMainDocID(t *testing.T) {
	t.Run("root slug wins", func(t *testing.T) {
		root := doc("home", "Home")
		root.Slug = "/"
		id, err := MainDocID([]docs.DocMetadataBase{doc("a", "A"), root}, utilsFrom(t, "main: [a]\n"))
		require.NoError(t, err)
		assert.Equal(t, "home", id)
	})

	t.Run("first doc of first sidebar by versioned id", func(t *testing.T) {
		all := []docs.DocMetadataBase{versionedDoc("1.0", "a"), versionedDoc("1.0", "b")}
		id, err := MainDocID(all, utilsFrom(t, "main: [version-1.0/b, version-1.0/a]\n"))
		require.NoError(t, err)
		assert.Equal(t, "b", id)
	})

	t.Run("falls back to first supplied doc", func(t *testing.T) {
		id, err := MainDocID([]docs.DocMetadataBase{doc("zeta", "Z"), doc("alpha", "A")}, noSidebars{})
		require.NoError(t, err)
		assert.Equal(t, "zeta", id)
	})

	t.Run("empty version", func(t *testing.T) {
		_, err := MainDocID(nil, noSidebars{})
		require.ErrorIs(t, err, ErrNoDocuments)
	})
}

func TestSortByID_LocaleAwareAndIdempotent(t *testing.T) {
	all := []docs.DocMetadata{
		{DocMetadataBase: doc("b", "")},
		{DocMetadataBase: doc("B", "")},
		{DocMetadataBase: doc("a", "")},
		{DocMetadataBase: doc("é", "")},
		{DocMetadataBase: doc("f", "")},
	}
	SortByID(all, "en")
	first := ids(all)
	assert.Equal(t, []string{"a", "b", "B", "é", "f"}, first)

	SortByID(all, "en")
	assert.Equal(t, first, ids(all))
}

func ids(all []docs.DocMetadata) []string {
	out := make([]string, 0, len(all))
	for _, d := range all {
		out = append(out, d.ID)
	}
	return out
}

func TestAddNavigation_SidebarOrderIsSymmetricProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 12).Draw(t, "n")
		names := make([]string, n)
		for i := range names {
			names[i] = fmt.Sprintf("doc-%02d", i)
		}
		order := rapid.Permutation(names).Draw(t, "sidebarOrder")
		input := rapid.Permutation(names).Draw(t, "inputOrder")

		all := make([]docs.DocMetadataBase, 0, n)
		for _, id := range input {
			all = append(all, doc(id, id))
		}
		src := "main:\n"
		for _, id := range order {
			src += "  - " + id + "\n"
		}
		s, err := sidebars.Parse([]byte(src))
		if err != nil {
			t.Fatalf("parse: %v", err)
		}

		linked, err := AddNavigation(all, sidebars.NewUtils(s, "/docs"), LinkOptions{Locale: "en"})
		if err != nil {
			t.Fatalf("link: %v", err)
		}
		if !slices.IsSortedFunc(linked, func(a, b docs.DocMetadata) int {
			if a.ID < b.ID {
				return -1
			}
			if a.ID > b.ID {
				return 1
			}
			return 0
		}) {
			t.Fatalf("output not sorted: %v", ids(linked))
		}

		byPermalink := make(map[string]docs.DocMetadata, n)
		for _, d := range linked {
			byPermalink[d.Permalink] = d
		}
		for _, d := range linked {
			if d.Next != nil {
				nxt := byPermalink[d.Next.Permalink]
				if nxt.Previous == nil || nxt.Previous.Permalink != d.Permalink {
					t.Fatalf("%s -> %s is not mirrored", d.ID, nxt.ID)
				}
			}
			if d.Previous != nil {
				prev := byPermalink[d.Previous.Permalink]
				if prev.Next == nil || prev.Next.Permalink != d.Permalink {
					t.Fatalf("%s <- %s is not mirrored", d.ID, prev.ID)
				}
			}
		}

		again := slices.Clone(linked)
		SortByID(again, "en")
		if !slices.Equal(ids(again), ids(linked)) {
			t.Fatalf("second sort changed the order")
		}
	})
}
