package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/arogyalabs/labreports/constants"
	"github.com/arogyalabs/labreports/internal/common"
	"github.com/arogyalabs/labreports/internal/dataset"
)

// RunRepository persists batch runs and their dataset rows.
type RunRepository interface {
	StartRun(ctx context.Context, runID uuid.UUID, rootPath string) error
	FinishRun(ctx context.Context, runID uuid.UUID, status constants.RunStatus, documents, processed, skipped, rows int) error
	SaveDataset(ctx context.Context, runID uuid.UUID, ds dataset.Dataset) error
}

type sqlRunRepository struct {
	db      *sql.DB
	dialect Dialect
	logger  *slog.Logger
}

func NewRunRepository(db *sql.DB, dialect Dialect, logger *slog.Logger) RunRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &sqlRunRepository{db: db, dialect: dialect, logger: logger}
}

func (r *sqlRunRepository) StartRun(ctx context.Context, runID uuid.UUID, rootPath string) error {
	q := r.rebind(`INSERT INTO batch_run (id, root_path, status, started_at) VALUES (?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, q, runID.String(), rootPath, string(constants.RunStatusRunning), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("%w: start run: %v", common.ErrDatabase, err)
	}
	r.logger.Info("repository.run.started", "run_id", runID.String(), "root", rootPath)
	return nil
}

func (r *sqlRunRepository) FinishRun(ctx context.Context, runID uuid.UUID, status constants.RunStatus, documents, processed, skipped, rows int) error {
	q := r.rebind(`UPDATE batch_run
		SET status = ?, finished_at = ?, documents = ?, processed = ?, skipped = ?, dataset_rows = ?
		WHERE id = ?`)
	_, err := r.db.ExecContext(ctx, q,
		string(status), time.Now().UTC(), documents, processed, skipped, rows, runID.String())
	if err != nil {
		return fmt.Errorf("%w: finish run: %v", common.ErrDatabase, err)
	}
	r.logger.Info("repository.run.finished", "run_id", runID.String(), "status", string(status), "rows", rows)
	return nil
}

func (r *sqlRunRepository) SaveDataset(ctx context.Context, runID uuid.UUID, ds dataset.Dataset) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", common.ErrDatabase, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	q := r.rebind(`INSERT INTO dataset_row
		(run_id, test_name, result, unit, reference_range, flag, patient_name, age, sex, source_file, patient_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return fmt.Errorf("%w: prepare: %v", common.ErrDatabase, err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	for _, row := range ds.Rows {
		if _, err := stmt.ExecContext(ctx,
			runID.String(),
			row.TestName,
			row.Result,
			nullIfEmpty(row.Unit),
			nullIfEmpty(row.ReferenceRange),
			nullIfEmpty(row.Flag),
			nullIfEmpty(row.PatientName),
			nullIfZero(row.Age),
			string(row.Sex),
			row.SourceFile,
			row.PatientID,
		); err != nil {
			return fmt.Errorf("%w: insert row: %v", common.ErrDatabase, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", common.ErrDatabase, err)
	}
	r.logger.Info("repository.dataset.saved", "run_id", runID.String(), "rows", len(ds.Rows))
	return nil
}

// rebind rewrites ?-placeholders into $n for postgres.
func (r *sqlRunRepository) rebind(q string) string {
	if r.dialect != DialectPostgres {
		return q
	}
	var out []byte
	n := 0
	for i := 0; i < len(q); i++ {
		if q[i] == '?' {
			n++
			out = append(out, fmt.Sprintf("$%d", n)...)
			continue
		}
		out = append(out, q[i])
	}
	return string(out)
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullIfZero(n int) any {
	if n == 0 {
		return nil
	}
	return n
}
