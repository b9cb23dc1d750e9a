package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/go-sql-driver/mysql"
)

var mysqlDialect = dialect{
	name: "MySQL",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS ` + snapshotsTable + ` (
			key_hash VARCHAR(64) NOT NULL PRIMARY KEY,
			account_name VARCHAR(255) NOT NULL,
			data LONGBLOB NOT NULL,
			fetched_at DATETIME(6) NOT NULL,
			updated_at DATETIME(6) NOT NULL,
			INDEX idx_snapshots_updated_at (updated_at)
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS ` + runsTable + ` (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			key_hash VARCHAR(64) NOT NULL,
			account_name VARCHAR(255) NOT NULL DEFAULT '',
			status VARCHAR(16) NOT NULL,
			error TEXT NOT NULL,
			characters INT NOT NULL DEFAULT 0,
			items INT NOT NULL DEFAULT 0,
			itemstats INT NOT NULL DEFAULT 0,
			duration_ms BIGINT NOT NULL DEFAULT 0,
			created_at DATETIME(6) NOT NULL,
			INDEX idx_runs_created_at (created_at)
		) ENGINE=InnoDB`,
	},
	upsert: `
		INSERT INTO ` + snapshotsTable + ` (key_hash, account_name, data, fetched_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			account_name = VALUES(account_name),
			data = VALUES(data),
			fetched_at = VALUES(fetched_at),
			updated_at = VALUES(updated_at)`,
	sizeQuery: `
		SELECT COALESCE(SUM(data_length + index_length), 0)
		FROM information_schema.tables
		WHERE table_schema = DATABASE() AND table_name = '` + snapshotsTable + `'`,
}

// MySQLSnapshotRepository implements SnapshotRepository using MySQL.
type MySQLSnapshotRepository struct {
	sqlStore
}

var _ SnapshotRepository = (*MySQLSnapshotRepository)(nil)

// NewMySQLSnapshotRepository connects using a go-sql-driver DSN, e.g.
// "user:password@tcp(host:3306)/dbname". Time parsing is always enabled.
func NewMySQLSnapshotRepository(dsn string) (*MySQLSnapshotRepository, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid MySQL DSN: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL: %w", err)
	}
	db := sql.OpenDB(connector)

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	r := &MySQLSnapshotRepository{sqlStore{db: db, dialect: mysqlDialect}}
	if err := r.createTables(ctx); err != nil {
		db.Close()
		return nil, err
	}

	log.Printf("[MySQLSnapshotRepository] Connected to %s/%s", cfg.Addr, cfg.DBName)
	return r, nil
}
