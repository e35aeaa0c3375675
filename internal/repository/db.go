package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // postgres driver
	_ "modernc.org/sqlite"             // sqlite driver

	"github.com/arogyalabs/labreports/internal/common"
)

// Dialect selects placeholder style and DDL flavor.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

type Config struct {
	DSN         string // "postgres://..." or a sqlite path / ":memory:"
	DialTimeout time.Duration
}

// Open connects to the configured database and applies the schema. The DSN
// decides the driver: postgres URLs go through pgx, anything else is treated
// as a sqlite path.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*sql.DB, Dialect, error) {
	if logger == nil {
		logger = slog.Default()
	}
	driver, dialect := driverFor(cfg.DSN)
	logger.Info("connecting to database", "driver", driver)

	db, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return nil, dialect, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}

	pingCtx := ctx
	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		logger.Error("failed to ping database", "error", err)
		return nil, dialect, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}

	if err := migrate(ctx, db, dialect); err != nil {
		_ = db.Close()
		return nil, dialect, err
	}

	logger.Info("successfully connected to database")
	return db, dialect, nil
}

// Close closes the database connection gracefully
func Close(db *sql.DB, logger *slog.Logger) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		logger.Error("failed to close database", "error", err)
		return
	}
	logger.Info("database connection closed")
}

func driverFor(dsn string) (string, Dialect) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "pgx", DialectPostgres
	}
	return "sqlite", DialectSQLite
}

func migrate(ctx context.Context, db *sql.DB, dialect Dialect) error {
	serial := "TEXT PRIMARY KEY"
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS batch_run (
			id ` + serial + `,
			root_path TEXT NOT NULL,
			status TEXT NOT NULL,
			started_at TIMESTAMP NOT NULL,
			finished_at TIMESTAMP,
			documents INTEGER NOT NULL DEFAULT 0,
			processed INTEGER NOT NULL DEFAULT 0,
			skipped INTEGER NOT NULL DEFAULT 0,
			dataset_rows INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS dataset_row (
			run_id TEXT NOT NULL,
			test_name TEXT NOT NULL,
			result DOUBLE PRECISION NOT NULL,
			unit TEXT,
			reference_range TEXT,
			flag TEXT,
			patient_name TEXT,
			age INTEGER,
			sex TEXT,
			source_file TEXT NOT NULL,
			patient_id INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_dataset_row_run ON dataset_row (run_id)`,
	}
	_ = dialect
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("%w: migrate: %v", common.ErrDatabase, err)
		}
	}
	return nil
}
