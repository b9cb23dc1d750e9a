package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gw2vault-api/internal/model"

	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

var sqliteDialect = dialect{
	name: "SQLite",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS ` + snapshotsTable + ` (
			key_hash TEXT PRIMARY KEY,
			account_name TEXT NOT NULL,
			data BLOB NOT NULL,
			fetched_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_updated_at ON ` + snapshotsTable + `(updated_at)`,
		`CREATE TABLE IF NOT EXISTS ` + runsTable + ` (
			id TEXT PRIMARY KEY,
			key_hash TEXT NOT NULL,
			account_name TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			characters INTEGER NOT NULL DEFAULT 0,
			items INTEGER NOT NULL DEFAULT 0,
			itemstats INTEGER NOT NULL DEFAULT 0,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON ` + runsTable + `(created_at)`,
	},
	upsert: `
		INSERT INTO ` + snapshotsTable + ` (key_hash, account_name, data, fetched_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key_hash) DO UPDATE SET
			account_name = excluded.account_name,
			data = excluded.data,
			fetched_at = excluded.fetched_at,
			updated_at = excluded.updated_at`,
	sizeQuery: `SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()`,
}

// SQLiteSnapshotRepository implements SnapshotRepository using SQLite in WAL
// mode. Writes are serialized.
type SQLiteSnapshotRepository struct {
	store sqlStore
	mu    sync.RWMutex
}

var _ SnapshotRepository = (*SQLiteSnapshotRepository)(nil)

// NewSQLiteSnapshotRepository opens (and creates) the database at dbPath,
// e.g. "./data/gw2vault.db".
func NewSQLiteSnapshotRepository(dbPath string) (*SQLiteSnapshotRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports 1 writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	r := &SQLiteSnapshotRepository{store: sqlStore{db: db, dialect: sqliteDialect}}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := r.store.createTables(ctx); err != nil {
		db.Close()
		return nil, err
	}

	log.Printf("[SQLiteSnapshotRepository] Initialized with database: %s", dbPath)
	return r, nil
}

func (r *SQLiteSnapshotRepository) Save(ctx context.Context, s *model.StoredSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store.Save(ctx, s)
}

func (r *SQLiteSnapshotRepository) Get(ctx context.Context, keyHash string) (*model.StoredSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.store.Get(ctx, keyHash)
}

func (r *SQLiteSnapshotRepository) Delete(ctx context.Context, keyHash string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store.Delete(ctx, keyHash)
}

func (r *SQLiteSnapshotRepository) DeleteStale(ctx context.Context, threshold time.Duration) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store.DeleteStale(ctx, threshold)
}

func (r *SQLiteSnapshotRepository) GetStats(ctx context.Context) (map[string]interface{}, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.store.GetStats(ctx)
}

func (r *SQLiteSnapshotRepository) InsertRun(ctx context.Context, run *model.CollectionRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store.InsertRun(ctx, run)
}

func (r *SQLiteSnapshotRepository) ListRuns(ctx context.Context, limit, offset int) ([]model.CollectionRun, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.store.ListRuns(ctx, limit, offset)
}

func (r *SQLiteSnapshotRepository) Close() error {
	return r.store.Close()
}
