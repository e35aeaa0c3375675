package repository

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arogyalabs/labreports/constants"
	"github.com/arogyalabs/labreports/internal/dataset"
	"github.com/arogyalabs/labreports/internal/parser"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func openTestDB(t *testing.T) (RunRepository, func(q string, args ...any) int) {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "labreports.db")

	db, dialect, err := Open(context.Background(), Config{DSN: dsn}, testLogger())
	require.NoError(t, err)
	require.Equal(t, DialectSQLite, dialect)
	t.Cleanup(func() { Close(db, testLogger()) })

	count := func(q string, args ...any) int {
		var n int
		require.NoError(t, db.QueryRow(q, args...).Scan(&n))
		return n
	}
	return NewRunRepository(db, dialect, testLogger()), count
}

func TestRunRoundTrip(t *testing.T) {
	repo, count := openTestDB(t)
	ctx := context.Background()
	runID := uuid.New()

	require.NoError(t, repo.StartRun(ctx, runID, "/reports/august"))
	assert.Equal(t, 1, count(`SELECT COUNT(*) FROM batch_run WHERE id = ? AND status = ?`,
		runID.String(), string(constants.RunStatusRunning)))

	ds := dataset.Dataset{Rows: []dataset.Row{
		{
			TestName:       "Total Cholesterol",
			Result:         180,
			Unit:           "mg/dl",
			ReferenceRange: "125-200",
			PatientName:    "Ramesh Kumar",
			Age:            45,
			Sex:            parser.SexMale,
			SourceFile:     "a_report.pdf",
			PatientID:      1,
		},
		{
			TestName:   "Hemoglobin",
			Result:     13.2,
			Flag:       "L",
			Sex:        parser.SexUnknown,
			SourceFile: "b_report.pdf",
			PatientID:  2,
		},
	}}
	require.NoError(t, repo.SaveDataset(ctx, runID, ds))
	assert.Equal(t, 2, count(`SELECT COUNT(*) FROM dataset_row WHERE run_id = ?`, runID.String()))
	assert.Equal(t, 1, count(`SELECT COUNT(*) FROM dataset_row WHERE run_id = ? AND unit IS NULL`, runID.String()),
		"empty strings stored as NULL")
	assert.Equal(t, 1, count(`SELECT COUNT(*) FROM dataset_row WHERE run_id = ? AND age IS NULL`, runID.String()))

	require.NoError(t, repo.FinishRun(ctx, runID, constants.RunStatusOK, 2, 2, 0, len(ds.Rows)))
	assert.Equal(t, 1, count(`SELECT COUNT(*) FROM batch_run WHERE id = ? AND status = ? AND dataset_rows = 2`,
		runID.String(), string(constants.RunStatusOK)))
}

func TestSaveDatasetEmpty(t *testing.T) {
	repo, count := openTestDB(t)
	ctx := context.Background()
	runID := uuid.New()

	require.NoError(t, repo.StartRun(ctx, runID, "/reports/empty"))
	require.NoError(t, repo.SaveDataset(ctx, runID, dataset.Dataset{}))
	assert.Equal(t, 0, count(`SELECT COUNT(*) FROM dataset_row WHERE run_id = ?`, runID.String()))
}

func TestOpenIsIdempotent(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "labreports.db")
	for i := 0; i < 2; i++ {
		db, _, err := Open(context.Background(), Config{DSN: dsn}, testLogger())
		require.NoError(t, err, "schema migration must be re-runnable")
		Close(db, testLogger())
	}
}

func TestRebindPostgresPlaceholders(t *testing.T) {
	r := &sqlRunRepository{dialect: DialectPostgres}
	assert.Equal(t, `INSERT INTO t (a, b) VALUES ($1, $2)`,
		r.rebind(`INSERT INTO t (a, b) VALUES (?, ?)`))

	r.dialect = DialectSQLite
	assert.Equal(t, `SELECT * FROM t WHERE a = ?`, r.rebind(`SELECT * FROM t WHERE a = ?`))
}

func TestDriverFor(t *testing.T) {
	tests := []struct {
		dsn         string
		wantDriver  string
		wantDialect Dialect
	}{
		{"postgres://u:p@localhost/db", "pgx", DialectPostgres},
		{"postgresql://u:p@localhost/db", "pgx", DialectPostgres},
		{"/var/lib/labreports.db", "sqlite", DialectSQLite},
		{":memory:", "sqlite", DialectSQLite},
	}
	for _, tt := range tests {
		driver, dialect := driverFor(tt.dsn)
		assert.Equal(t, tt.wantDriver, driver, tt.dsn)
		assert.Equal(t, tt.wantDialect, dialect, tt.dsn)
	}
}
