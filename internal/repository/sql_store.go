package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"gw2vault-api/internal/model"
)

const (
	snapshotsTable = "gw2_snapshots"
	runsTable      = "gw2_collection_runs"
)

// dialect holds the statements that differ between SQL engines. Queries are
// written with ? placeholders and rebound for engines that number them.
type dialect struct {
	name      string
	numbered  bool
	schema    []string
	upsert    string
	sizeQuery string
}

func (d dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// sqlStore implements SnapshotRepository over database/sql. The engine
// specific repositories embed it.
type sqlStore struct {
	db      *sql.DB
	dialect dialect
}

func (s *sqlStore) createTables(ctx context.Context) error {
	for _, stmt := range s.dialect.schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create tables: %w", err)
		}
	}
	return nil
}

func (s *sqlStore) Save(ctx context.Context, snap *model.StoredSnapshot) error {
	_, err := s.db.ExecContext(ctx, s.dialect.rebind(s.dialect.upsert),
		snap.KeyHash, snap.AccountName, snap.Data, snap.FetchedAt.UTC(), snap.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

func (s *sqlStore) Get(ctx context.Context, keyHash string) (*model.StoredSnapshot, error) {
	query := s.dialect.rebind(`SELECT key_hash, account_name, data, fetched_at, updated_at FROM ` + snapshotsTable + ` WHERE key_hash = ?`)

	var snap model.StoredSnapshot
	err := s.db.QueryRowContext(ctx, query, keyHash).Scan(
		&snap.KeyHash,
		&snap.AccountName,
		&snap.Data,
		&snap.FetchedAt,
		&snap.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	return &snap, nil
}

func (s *sqlStore) Delete(ctx context.Context, keyHash string) (bool, error) {
	result, err := s.db.ExecContext(ctx, s.dialect.rebind(`DELETE FROM `+snapshotsTable+` WHERE key_hash = ?`), keyHash)
	if err != nil {
		return false, fmt.Errorf("failed to delete snapshot: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *sqlStore) DeleteStale(ctx context.Context, threshold time.Duration) (int64, error) {
	cutoff := time.Now().Add(-threshold).UTC()

	result, err := s.db.ExecContext(ctx, s.dialect.rebind(`DELETE FROM `+snapshotsTable+` WHERE updated_at < ?`), cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale snapshots: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	if deleted > 0 {
		log.Printf("[%s] Cleaned up %d stale snapshots (threshold: %v)", s.dialect.name, deleted, threshold)
	}
	return deleted, nil
}

func (s *sqlStore) GetStats(ctx context.Context) (map[string]interface{}, error) {
	stats := map[string]interface{}{"driver": s.dialect.name}

	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+snapshotsTable).Scan(&count); err != nil {
		return nil, err
	}
	stats["total_snapshots"] = count

	var runs int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+runsTable).Scan(&runs); err != nil {
		return nil, err
	}
	stats["total_runs"] = runs

	var failed int64
	failedQuery := s.dialect.rebind("SELECT COUNT(*) FROM " + runsTable + " WHERE status = ?")
	if err := s.db.QueryRowContext(ctx, failedQuery, model.RunStatusFailed).Scan(&failed); err == nil {
		stats["failed_runs"] = failed
	}

	var payload sql.NullInt64
	if err := s.db.QueryRowContext(ctx, "SELECT SUM(LENGTH(data)) FROM "+snapshotsTable).Scan(&payload); err == nil {
		stats["payload_bytes"] = payload.Int64
	}

	if s.dialect.sizeQuery != "" {
		var size int64
		if err := s.db.QueryRowContext(ctx, s.dialect.sizeQuery).Scan(&size); err == nil {
			stats["db_size_bytes"] = size
		}
	}

	dbStats := s.db.Stats()
	stats["connections"] = map[string]interface{}{
		"open":     dbStats.OpenConnections,
		"in_use":   dbStats.InUse,
		"idle":     dbStats.Idle,
		"max_open": dbStats.MaxOpenConnections,
	}

	return stats, nil
}

func (s *sqlStore) InsertRun(ctx context.Context, run *model.CollectionRun) error {
	query := s.dialect.rebind(`
		INSERT INTO ` + runsTable + ` (id, key_hash, account_name, status, error, characters, items, itemstats, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := s.db.ExecContext(ctx, query,
		run.ID, run.KeyHash, run.AccountName, run.Status, run.Error,
		run.Characters, run.Items, run.Itemstats, run.DurationMs, run.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

func (s *sqlStore) ListRuns(ctx context.Context, limit, offset int) ([]model.CollectionRun, int64, error) {
	query := s.dialect.rebind(`
		SELECT id, key_hash, account_name, status, error, characters, items, itemstats, duration_ms, created_at
		FROM ` + runsTable + `
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`)

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := []model.CollectionRun{}
	for rows.Next() {
		var run model.CollectionRun
		if err := rows.Scan(
			&run.ID,
			&run.KeyHash,
			&run.AccountName,
			&run.Status,
			&run.Error,
			&run.Characters,
			&run.Items,
			&run.Itemstats,
			&run.DurationMs,
			&run.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+runsTable).Scan(&total); err != nil {
		return nil, 0, err
	}

	return runs, total, nil
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}
