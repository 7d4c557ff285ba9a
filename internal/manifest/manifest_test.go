package manifest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docgraph/internal/docs"
	"git.home.luguber.info/inful/docgraph/internal/frontmatter"
	"git.home.luguber.info/inful/docgraph/internal/loader"
	"git.home.luguber.info/inful/docgraph/internal/versions"
)

func sampleResult(t *testing.T, buildID string) *loader.Result {
	t.Helper()
	fm, err := frontmatter.Validate(map[string]any{"sidebar_label": "Start", "custom": "x"})
	require.NoError(t, err)
	sidebar := "main"

	intro := docs.DocMetadata{
		DocMetadataBase: docs.DocMetadataBase{
			ID: "intro", UnversionedID: "intro", Title: "Intro",
			Source: "@site/docs/intro.md", SourceDirName: ".",
			Slug: "/intro", Permalink: "/docs/intro", Version: "current",
			Tags: []docs.Tag{}, FrontMatter: fm,
		},
		Sidebar: &sidebar,
		Next:    &docs.DocNavLink{Title: "Setup", Permalink: "/docs/setup"},
	}
	return &loader.Result{
		BuildID:   buildID,
		StartedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.FixedZone("CET", 3600)),
		Duration:  1500 * time.Millisecond,
		Versions: []loader.LoadedVersion{{
			Metadata:  versions.Metadata{VersionName: "current", Label: "Next", Path: "/docs", IsLast: true},
			MainDocID: "intro",
			Docs:      []docs.DocMetadata{intro},
			Drafts: []docs.DocMetadataBase{
				{ID: "zeta-draft"}, {ID: "alpha-draft"},
			},
			Fingerprints: map[string]string{"intro": "abc", "alpha-draft": "def", "zeta-draft": "ghi"},
		}},
	}
}

func TestFromResult(t *testing.T) {
	m := FromResult(sampleResult(t, "build-1"))

	assert.Equal(t, "build-1", m.BuildID)
	assert.Equal(t, time.UTC, m.Timestamp.Location())
	assert.Equal(t, int64(1500), m.DurationMS)

	v, ok := m.Version("current")
	require.True(t, ok)
	assert.Equal(t, "intro", v.MainDocID)
	assert.Equal(t, []string{"alpha-draft", "zeta-draft"}, v.Drafts)
	assert.Len(t, v.Fingerprints, 3)

	_, ok = m.Version("9.9")
	assert.False(t, ok)
}

func TestFromVersion_EmptyCollectionsSerializeAsEmpty(t *testing.T) {
	m := &Manifest{Versions: []Version{FromVersion(loader.LoadedVersion{})}}
	data, err := m.ToJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"docs": []`)
	assert.Contains(t, string(data), `"drafts": []`)
	assert.Contains(t, string(data), `"fingerprints": {}`)
}

func TestJSON_RoundTripKeepsGraph(t *testing.T) {
	m := FromResult(sampleResult(t, "build-1"))
	data, err := m.ToJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"unversionedId": "intro"`)
	assert.Contains(t, string(data), `"sidebar_label": "Start"`)

	restored, err := FromJSON(data)
	require.NoError(t, err)
	v, ok := restored.Version("current")
	require.True(t, ok)
	require.Len(t, v.Docs, 1)

	d := v.Docs[0]
	assert.Equal(t, "/docs/intro", d.Permalink)
	require.NotNil(t, d.Next)
	assert.Equal(t, "/docs/setup", d.Next.Permalink)
	assert.Equal(t, "Start", d.FrontMatter.SidebarLabel)
	assert.Equal(t, "x", d.FrontMatter.Extra["custom"])

	again, err := restored.ToJSON()
	require.NoError(t, err)
	assert.JSONEq(t, string(data), string(again))
}

func TestHash_IgnoresBuildIdentity(t *testing.T) {
	a := FromResult(sampleResult(t, "build-1"))
	b := FromResult(sampleResult(t, "build-2"))
	b.Timestamp = b.Timestamp.Add(time.Hour)

	ha, err := a.Hash()
	require.NoError(t, err)
	hb, err := b.Hash()
	require.NoError(t, err)
	assert.Equal(t, ha, hb)

	b.Versions[0].MainDocID = "other"
	hc, err := b.Hash()
	require.NoError(t, err)
	assert.NotEqual(t, ha, hc)
}

func TestWriteFile_ReadFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "out", "manifest.json")
	m := FromResult(sampleResult(t, "build-1"))
	require.NoError(t, m.WriteFile(p))

	got, err := ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "build-1", got.BuildID)
	assert.Len(t, got.Versions, 1)

	matches, err := filepath.Glob(filepath.Join(filepath.Dir(p), ".manifest-*"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestWriteFile_Compressed(t *testing.T) {
	p := filepath.Join(t.TempDir(), "manifest.json"+CompressedExt)
	m := FromResult(sampleResult(t, "build-1"))
	require.NoError(t, m.WriteFile(p))

	raw, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.NotEqual(t, byte('{'), raw[0])

	got, err := ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "build-1", got.BuildID)

	want, err := m.Hash()
	require.NoError(t, err)
	have, err := got.Hash()
	require.NoError(t, err)
	assert.Equal(t, want, have)
	assert.Len(t, have, 64)
}
