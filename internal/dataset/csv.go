package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// Columns is the flat tabular layout of a Dataset, one row per TestResult.
var Columns = []string{
	"test_name",
	"result",
	"unit",
	"reference_range",
	"flag",
	"patient_name",
	"age",
	"sex",
	"source_file",
	"patient_id",
}

// WriteCSV serializes the dataset in column order with a header row.
func WriteCSV(w io.Writer, d Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range d.Rows {
		age := ""
		if r.Age > 0 {
			age = strconv.Itoa(r.Age)
		}
		row := []string{
			r.TestName,
			strconv.FormatFloat(r.Result, 'f', -1, 64),
			r.Unit,
			r.ReferenceRange,
			r.Flag,
			r.PatientName,
			age,
			string(r.Sex),
			r.SourceFile,
			strconv.Itoa(r.PatientID),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
