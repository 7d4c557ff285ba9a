// Package events publishes load notifications to NATS JetStream.
package events

import (
	"encoding/hex"
	"fmt"
	"sort"
	"time"

	"github.com/zeebo/blake3"

	"git.home.luguber.info/inful/docgraph/internal/loader"
)

// TypeVersionLoaded is the type of VersionLoaded events.
const TypeVersionLoaded = "docgraph.version.loaded"

// VersionLoaded announces that a version graph was loaded.
type VersionLoaded struct {
	Type      string    `json:"type"`
	BuildID   string    `json:"buildId"`
	Version   string    `json:"version"`
	Label     string    `json:"label"`
	Path      string    `json:"path"`
	IsLast    bool      `json:"isLast"`
	MainDocID string    `json:"mainDocId"`
	Docs      int       `json:"docs"`
	Drafts    int       `json:"drafts"`
	// ContentHash changes whenever a document id or fingerprint changes.
	ContentHash string    `json:"contentHash"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewVersionLoaded builds the event for v.
func NewVersionLoaded(buildID string, v loader.LoadedVersion, now time.Time) VersionLoaded {
	return VersionLoaded{
		Type:        TypeVersionLoaded,
		BuildID:     buildID,
		Version:     v.Metadata.VersionName,
		Label:       v.Metadata.Label,
		Path:        v.Metadata.Path,
		IsLast:      v.Metadata.IsLast,
		MainDocID:   v.MainDocID,
		Docs:        len(v.Docs),
		Drafts:      len(v.Drafts),
		ContentHash: contentHash(v.Fingerprints),
		Timestamp:   now.UTC(),
	}
}

// MsgID deduplicates redeliveries of the same event.
func (e VersionLoaded) MsgID() string {
	return e.BuildID + "/" + e.Version
}

func contentHash(prints map[string]string) string {
	ids := make([]string, 0, len(prints))
	for id := range prints {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	h := blake3.New()
	for _, id := range ids {
		fmt.Fprintf(h, "%s\x00%s\n", id, prints[id])
	}
	return hex.EncodeToString(h.Sum(nil))
}
