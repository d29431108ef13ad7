// Package sqlite provides a durable canonical map store that snapshots the
// in-memory state into an embedded SQLite database after every successful
// transaction.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"mapcore/internal/infra/persistence/memory"
	"mapcore/pkg/domain"
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.PersistentStore = (*Store)(nil)

// Store persists the in-memory state to a single SQLite table as JSON blobs.
type Store struct {
	*memory.Store
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// NewStore opens (or creates) the database at path and hydrates the in-memory
// store from any existing snapshot.
func NewStore(path string, engine *domain.RulesEngine) (*Store, error) {
	if path == "" {
		path = "mapcore.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create state table: %w", err)
	}
	s := &Store{Store: memory.NewStore(engine), db: db, path: path}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

const (
	bucketAreas    = "areas"
	bucketAssets   = "assets"
	bucketDocument = "document"
)

// documentBucket groups the scalar document fields into one payload.
type documentBucket struct {
	World      domain.WorldDimensions  `json:"world"`
	Background *string                 `json:"background,omitempty"`
	Metadata   domain.DocumentMetadata `json:"metadata"`
}

func (s *Store) load() error {
	rows, err := s.db.Query(`SELECT bucket, payload FROM state`)
	if err != nil {
		return fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var snap memory.Snapshot
	loaded := false
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		loaded = true
		switch bucket {
		case bucketAreas:
			if err := json.Unmarshal(payload, &snap.Areas); err != nil {
				return fmt.Errorf("decode areas: %w", err)
			}
		case bucketAssets:
			if err := json.Unmarshal(payload, &snap.Assets); err != nil {
				return fmt.Errorf("decode assets: %w", err)
			}
		case bucketDocument:
			var doc documentBucket
			if err := json.Unmarshal(payload, &doc); err != nil {
				return fmt.Errorf("decode document: %w", err)
			}
			snap.World = doc.World
			snap.Background = doc.Background
			snap.Metadata = doc.Metadata
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate state: %w", err)
	}
	if loaded {
		s.ImportState(snap)
	}
	return nil
}

func (s *Store) persist() (retErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.ExportState()
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	payloads := map[string]any{
		bucketAreas:  snap.Areas,
		bucketAssets: snap.Assets,
		bucketDocument: documentBucket{
			World:      snap.World,
			Background: snap.Background,
			Metadata:   snap.Metadata,
		},
	}
	for _, bucket := range []string{bucketAreas, bucketAssets, bucketDocument} {
		data, err := json.Marshal(payloads[bucket])
		if err != nil {
			retErr = fmt.Errorf("encode %s: %w", bucket, err)
			return retErr
		}
		if _, err := tx.Exec(`INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`, bucket, data); err != nil {
			retErr = fmt.Errorf("upsert %s: %w", bucket, err)
			return retErr
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.ClearDirty()
	return nil
}

// RunInTransaction applies fn within a transaction, then snapshots the full
// state to SQLite if the commit succeeded.
func (s *Store) RunInTransaction(ctx context.Context, fn func(domain.Transaction) error) (domain.Result, error) {
	res, err := s.Store.RunInTransaction(ctx, fn)
	if err != nil {
		return res, err
	}
	if pErr := s.persist(); pErr != nil {
		return res, pErr
	}
	return res, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }
