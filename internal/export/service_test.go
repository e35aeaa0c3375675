package export

import (
	"bytes"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/arogyalabs/labreports/internal/dataset"
	"github.com/arogyalabs/labreports/internal/parser"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestDatasetXLSX(t *testing.T) {
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

	b, err := NewService(testLogger()).DatasetXLSX(ds)
	require.NoError(t, err)
	require.NotEmpty(t, b)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Results")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Test Name", rows[0][0])
	assert.Equal(t, "Total Cholesterol", rows[1][0])
	assert.Equal(t, "180", rows[1][1])
	assert.Equal(t, "Ramesh Kumar", rows[1][5])
	assert.Equal(t, "45", rows[1][6])

	assert.Equal(t, "Hemoglobin", rows[2][0])
	assert.Equal(t, "13.2", rows[2][1])
	assert.Equal(t, "L", rows[2][4])
}

func TestDatasetXLSXEmpty(t *testing.T) {
	b, err := NewService(testLogger()).DatasetXLSX(dataset.Dataset{})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Results")
	require.NoError(t, err)
	require.Len(t, rows, 1, "header only")
}
