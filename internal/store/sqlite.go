// Package store persists loaded document graphs in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/docgraph/internal/docs"
	ferrors "git.home.luguber.info/inful/docgraph/internal/foundation/errors"
	"git.home.luguber.info/inful/docgraph/internal/loader"
	"git.home.luguber.info/inful/docgraph/internal/versions"
)

// Build is a stored load.
type Build struct {
	ID         string
	StartedAt  time.Time
	DurationMS int64
}

// Version is a stored version row.
type Version struct {
	Metadata  versions.Metadata
	BuildID   string
	MainDocID string
}

// Doc is a stored document row. Drafts have no navigation.
type Doc struct {
	Version     string
	Draft       bool
	Fingerprint string
	Metadata    docs.DocMetadata
}

// SQLiteStore stores graphs in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens or creates the database at path. Use ":memory:" for an
// in-memory database.
func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryStore, "open sqlite database").
			WithContext("path", path).Build()
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, ferrors.WrapError(err, ferrors.CategoryStore, "initialize schema").
			WithContext("path", path).Build()
	}
	return s, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS versions (
		name TEXT PRIMARY KEY,
		build_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		main_doc_id TEXT NOT NULL,
		metadata TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS docs (
		version TEXT NOT NULL,
		id TEXT NOT NULL,
		unversioned_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		permalink TEXT NOT NULL,
		draft INTEGER NOT NULL,
		fingerprint TEXT NOT NULL,
		payload TEXT NOT NULL,
		PRIMARY KEY (version, id)
	);
	CREATE INDEX IF NOT EXISTS idx_docs_unversioned ON docs(version, unversioned_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveResult records a build and every version it loaded.
func (s *SQLiteStore) SaveResult(ctx context.Context, res *loader.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr(err, "begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"INSERT OR REPLACE INTO builds (id, started_at, duration_ms) VALUES (?, ?, ?)",
		res.BuildID, res.StartedAt.Unix(), res.Duration.Milliseconds(),
	); err != nil {
		return storeErr(err, "insert build")
	}
	for i, v := range res.Versions {
		if err := saveVersion(ctx, tx, res.BuildID, i, v); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return storeErr(err, "commit build")
	}
	return nil
}

// saveVersion replaces every stored row of the version.
func saveVersion(ctx context.Context, tx *sql.Tx, buildID string, position int, v loader.LoadedVersion) error {
	name := v.Metadata.VersionName
	meta, err := json.Marshal(v.Metadata)
	if err != nil {
		return storeErr(err, "marshal version metadata")
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM docs WHERE version = ?", name); err != nil {
		return storeErr(err, "delete previous docs")
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT OR REPLACE INTO versions (name, build_id, position, main_doc_id, metadata) VALUES (?, ?, ?, ?, ?)",
		name, buildID, position, v.MainDocID, string(meta),
	); err != nil {
		return storeErr(err, "insert version")
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO docs (version, id, unversioned_id, position, permalink, draft, fingerprint, payload) VALUES (?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return storeErr(err, "prepare doc insert")
	}
	defer stmt.Close()

	insert := func(pos int, d docs.DocMetadata, draft bool) error {
		payload, err := json.Marshal(d)
		if err != nil {
			return storeErr(err, "marshal doc "+d.ID)
		}
		if _, err := stmt.ExecContext(ctx, name, d.ID, d.UnversionedID, pos, d.Permalink, draft, v.Fingerprints[d.ID], string(payload)); err != nil {
			return storeErr(err, "insert doc "+d.ID)
		}
		return nil
	}
	for i, d := range v.Docs {
		if err := insert(i, d, false); err != nil {
			return err
		}
	}
	for i, d := range v.Drafts {
		if err := insert(len(v.Docs)+i, docs.DocMetadata{DocMetadataBase: d}, true); err != nil {
			return err
		}
	}
	return nil
}

// Builds lists stored builds, newest first.
func (s *SQLiteStore) Builds(ctx context.Context) ([]Build, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT id, started_at, duration_ms FROM builds ORDER BY started_at DESC, id")
	if err != nil {
		return nil, storeErr(err, "query builds")
	}
	defer rows.Close()

	var out []Build
	for rows.Next() {
		var b Build
		var started int64
		if err := rows.Scan(&b.ID, &started, &b.DurationMS); err != nil {
			return nil, storeErr(err, "scan build")
		}
		b.StartedAt = time.Unix(started, 0).UTC()
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(err, "iterate builds")
	}
	return out, nil
}

// Versions lists stored versions in load order.
func (s *SQLiteStore) Versions(ctx context.Context) ([]Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT build_id, main_doc_id, metadata FROM versions ORDER BY position, name")
	if err != nil {
		return nil, storeErr(err, "query versions")
	}
	defer rows.Close()

	var out []Version
	for rows.Next() {
		var v Version
		var meta string
		if err := rows.Scan(&v.BuildID, &v.MainDocID, &meta); err != nil {
			return nil, storeErr(err, "scan version")
		}
		if err := json.Unmarshal([]byte(meta), &v.Metadata); err != nil {
			return nil, storeErr(err, "unmarshal version metadata")
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(err, "iterate versions")
	}
	return out, nil
}

// Docs lists the stored docs of a version: published docs in id order,
// then drafts.
func (s *SQLiteStore) Docs(ctx context.Context, version string) ([]Doc, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT version, draft, fingerprint, payload FROM docs WHERE version = ? ORDER BY position", version)
	if err != nil {
		return nil, storeErr(err, "query docs")
	}
	defer rows.Close()
	return scanDocs(rows)
}

// LookupDoc finds a doc of version by id or unversioned id. An exact id
// match wins over an unversioned id match.
func (s *SQLiteStore) LookupDoc(ctx context.Context, version, id string) (Doc, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT version, draft, fingerprint, payload FROM docs
		WHERE version = ? AND (id = ? OR unversioned_id = ?)
		ORDER BY (id = ?) DESC, position LIMIT 1`,
		version, id, id, id)
	if err != nil {
		return Doc{}, false, storeErr(err, "query doc")
	}
	defer rows.Close()

	found, err := scanDocs(rows)
	if err != nil || len(found) == 0 {
		return Doc{}, false, err
	}
	return found[0], true, nil
}

func scanDocs(rows *sql.Rows) ([]Doc, error) {
	var out []Doc
	for rows.Next() {
		var d Doc
		var payload string
		if err := rows.Scan(&d.Version, &d.Draft, &d.Fingerprint, &payload); err != nil {
			return nil, storeErr(err, "scan doc")
		}
		if err := json.Unmarshal([]byte(payload), &d.Metadata); err != nil {
			return nil, storeErr(err, "unmarshal doc")
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(err, "iterate docs")
	}
	return out, nil
}

func storeErr(err error, msg string) error {
	return ferrors.WrapError(err, ferrors.CategoryStore, fmt.Sprintf("store: %s", msg)).Build()
}
