package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/arogyalabs/labreports/internal/dataset"
)

// Service produces XLSX bytes for a Dataset.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// DatasetXLSX returns an XLSX workbook (as bytes) with one row per
// TestResult, in the same column order as the CSV output.
func (s *Service) DatasetXLSX(d dataset.Dataset) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Results"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Test Name",
		"Result",
		"Unit",
		"Reference Range",
		"Flag",
		"Patient Name",
		"Age",
		"Sex",
		"Source File",
		"Patient ID",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, r := range d.Rows {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, r.TestName)
		write(2, r.Result)
		write(3, r.Unit)
		write(4, r.ReferenceRange)
		write(5, r.Flag)
		write(6, r.PatientName)
		if r.Age > 0 {
			write(7, r.Age)
		}
		write(8, string(r.Sex))
		write(9, r.SourceFile)
		write(10, r.PatientID)

		row++
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 24) // test name
	_ = f.SetColWidth(sheet, "B", "E", 12) // result/unit/range/flag
	_ = f.SetColWidth(sheet, "F", "F", 24) // patient name
	_ = f.SetColWidth(sheet, "I", "I", 40) // source file

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(d.Rows),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
