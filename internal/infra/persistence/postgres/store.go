// Package postgres provides a Postgres-backed canonical map store that
// mirrors the in-memory semantics while snapshotting state as JSONB after
// every successful transaction.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"mapcore/internal/infra/persistence/memory"
	"mapcore/pkg/domain"
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.PersistentStore = (*Store)(nil)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/mapcore?sslmode=disable"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// OverrideSQLOpen swaps the database opener; tests use it to inject stubs.
// The returned function restores the previous opener.
func OverrideSQLOpen(fn func(driverName, dsn string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}

// Store persists state to Postgres while reusing the in-memory implementation
// for transactions.
type Store struct {
	*memory.Store
	db *sql.DB
	mu sync.Mutex
}

// NewStore opens a Postgres-backed store using the provided DSN (falls back
// to defaultDSN), ensures the snapshot table exists, and hydrates the
// in-memory store from any existing snapshot.
func NewStore(dsn string, engine *domain.RulesEngine) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := ensureStateTable(ctx, db); err != nil {
		return nil, err
	}
	snap, err := loadSnapshot(ctx, db)
	if err != nil {
		return nil, err
	}
	mem := memory.NewStore(engine)
	mem.ImportState(snap)
	return &Store{Store: mem, db: db}, nil
}

func ensureStateTable(ctx context.Context, db *sql.DB) error {
	ddl := `CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload JSONB NOT NULL
	)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure state table: %w", err)
	}
	return nil
}

const (
	bucketAreas    = "areas"
	bucketAssets   = "assets"
	bucketDocument = "document"
)

type documentBucket struct {
	World      domain.WorldDimensions  `json:"world"`
	Background *string                 `json:"background,omitempty"`
	Metadata   domain.DocumentMetadata `json:"metadata"`
}

func loadSnapshot(ctx context.Context, db *sql.DB) (memory.Snapshot, error) {
	rows, err := db.QueryContext(ctx, `SELECT bucket, payload FROM state`)
	if err != nil {
		return memory.Snapshot{}, fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var snap memory.Snapshot
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return memory.Snapshot{}, fmt.Errorf("scan state: %w", err)
		}
		if len(payload) == 0 {
			continue
		}
		switch bucket {
		case bucketAreas:
			if err := json.Unmarshal(payload, &snap.Areas); err != nil {
				return memory.Snapshot{}, fmt.Errorf("decode areas: %w", err)
			}
		case bucketAssets:
			if err := json.Unmarshal(payload, &snap.Assets); err != nil {
				return memory.Snapshot{}, fmt.Errorf("decode assets: %w", err)
			}
		case bucketDocument:
			var doc documentBucket
			if err := json.Unmarshal(payload, &doc); err != nil {
				return memory.Snapshot{}, fmt.Errorf("decode document: %w", err)
			}
			snap.World = doc.World
			snap.Background = doc.Background
			snap.Metadata = doc.Metadata
		}
	}
	if err := rows.Err(); err != nil {
		return memory.Snapshot{}, fmt.Errorf("iterate state: %w", err)
	}
	return snap, nil
}

func (s *Store) persist(ctx context.Context) (retErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.ExportState()
	tx, err := s.db.BeginTx(ctx, nil)
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
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO state(bucket,payload) VALUES($1,$2) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`,
			bucket, data); err != nil {
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

// RunInTransaction applies fn within a transaction, then snapshots to
// Postgres if the commit succeeded.
func (s *Store) RunInTransaction(ctx context.Context, fn func(domain.Transaction) error) (domain.Result, error) {
	res, err := s.Store.RunInTransaction(ctx, fn)
	if err != nil {
		return res, err
	}
	if pErr := s.persist(ctx); pErr != nil {
		return res, pErr
	}
	return res, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }
