// Package manifest records the result of a load as a deterministic JSON
// document.
package manifest

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/blake3"

	"git.home.luguber.info/inful/docgraph/internal/docs"
	"git.home.luguber.info/inful/docgraph/internal/loader"
	"git.home.luguber.info/inful/docgraph/internal/versions"
)

// Manifest is a complete record of one load.
type Manifest struct {
	BuildID    string    `json:"buildId"`
	Timestamp  time.Time `json:"timestamp"`
	DurationMS int64     `json:"durationMs"`
	Versions   []Version `json:"versions"`
}

// Version is the manifest entry of one version.
type Version struct {
	Metadata  versions.Metadata  `json:"metadata"`
	MainDocID string             `json:"mainDocId"`
	Docs      []docs.DocMetadata `json:"docs"`
	// Drafts lists the ids of documents excluded from the graph, sorted.
	Drafts       []string          `json:"drafts"`
	Fingerprints map[string]string `json:"fingerprints"`
}

// FromResult converts a load result into a manifest.
func FromResult(res *loader.Result) *Manifest {
	m := &Manifest{
		BuildID:    res.BuildID,
		Timestamp:  res.StartedAt.UTC(),
		DurationMS: res.Duration.Milliseconds(),
		Versions:   make([]Version, 0, len(res.Versions)),
	}
	for _, v := range res.Versions {
		m.Versions = append(m.Versions, FromVersion(v))
	}
	return m
}

// FromVersion converts one loaded version.
func FromVersion(v loader.LoadedVersion) Version {
	drafts := make([]string, 0, len(v.Drafts))
	for _, d := range v.Drafts {
		drafts = append(drafts, d.ID)
	}
	sort.Strings(drafts)

	linked := v.Docs
	if linked == nil {
		linked = []docs.DocMetadata{}
	}
	prints := v.Fingerprints
	if prints == nil {
		prints = map[string]string{}
	}
	return Version{
		Metadata:     v.Metadata,
		MainDocID:    v.MainDocID,
		Docs:         linked,
		Drafts:       drafts,
		Fingerprints: prints,
	}
}

// Version returns the entry of the named version.
func (m *Manifest) Version(name string) (Version, bool) {
	for _, v := range m.Versions {
		if v.Metadata.VersionName == name {
			return v, true
		}
	}
	return Version{}, false
}

// ToJSON serializes the manifest to indented JSON.
func (m *Manifest) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return append(data, '\n'), nil
}

// FromJSON deserializes a manifest.
func FromJSON(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}
	return &m, nil
}

// Hash computes a hash of the graph content. Build id, timestamp and
// duration are left out, so two loads of unchanged sources hash equally.
func (m *Manifest) Hash() (string, error) {
	data, err := json.Marshal(m.Versions)
	if err != nil {
		return "", fmt.Errorf("marshal for hash: %w", err)
	}
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// CompressedExt selects zstd compression in WriteFile and ReadFile.
const CompressedExt = ".zst"

// WriteFile writes the manifest to path through a temporary file in the
// same directory, so readers never see a partial manifest. Paths ending in
// CompressedExt are zstd compressed.
func (m *Manifest) WriteFile(path string) error {
	data, err := m.ToJSON()
	if err != nil {
		return err
	}
	if strings.HasSuffix(path, CompressedExt) {
		if data, err = compress(data); err != nil {
			return err
		}
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create manifest dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".manifest-*.json")
	if err != nil {
		return fmt.Errorf("create temp manifest: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close manifest: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename manifest: %w", err)
	}
	return nil
}

// ReadFile loads a manifest written by WriteFile.
func ReadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(path, CompressedExt) {
		if data, err = decompress(data); err != nil {
			return nil, err
		}
	}
	return FromJSON(data)
}

func compress(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd writer: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}

func decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd reader: %w", err)
	}
	defer dec.Close()
	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress manifest: %w", err)
	}
	return out, nil
}
