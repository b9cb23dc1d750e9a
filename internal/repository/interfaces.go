package repository

import (
	"context"
	"time"

	"gw2vault-api/internal/model"
)

// SnapshotRepository stores one encoded snapshot per API key hash and the log
// of collection runs.
type SnapshotRepository interface {
	// Save inserts or replaces the snapshot stored for s.KeyHash.
	Save(ctx context.Context, s *model.StoredSnapshot) error

	// Get returns nil, nil when nothing is stored for keyHash.
	Get(ctx context.Context, keyHash string) (*model.StoredSnapshot, error)

	// Delete reports whether a snapshot was removed.
	Delete(ctx context.Context, keyHash string) (bool, error)

	// DeleteStale removes snapshots not updated within threshold.
	DeleteStale(ctx context.Context, threshold time.Duration) (int64, error)

	// GetStats returns counts and sizes for the admin endpoint.
	GetStats(ctx context.Context) (map[string]interface{}, error)

	RunRepository

	Close() error
}

// RunRepository records collection attempts.
type RunRepository interface {
	InsertRun(ctx context.Context, run *model.CollectionRun) error

	// ListRuns returns the newest runs first and the total number of runs.
	ListRuns(ctx context.Context, limit, offset int) ([]model.CollectionRun, int64, error)
}
