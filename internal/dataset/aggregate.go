package dataset

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/arogyalabs/labreports/internal/parser"
)

// Row is one normalized test result, tagged with its source document's
// patient fields and a per-document patient id.
type Row struct {
	TestName       string
	Result         float64
	Unit           string
	ReferenceRange string
	Flag           string
	PatientName    string
	Age            int
	Sex            parser.Sex
	SourceFile     string
	PatientID      int
}

// Dataset is the deduplicated, type-coerced concatenation of a batch's
// extraction records — the only durable output of the pipeline.
type Dataset struct {
	Rows []Row

	Deduplicated      int // exact-duplicate rows removed
	DroppedNonNumeric int // rows dropped because the result would not coerce
}

// Aggregate flattens records into one dataset: exact-duplicate removal,
// numeric coercion (failures dropped, never kept as null), then a dense
// 1-based patient id per distinct source file in first-seen order. The
// content of the result is independent of record order; patient ids are not,
// so callers must iterate documents in a stable order.
func Aggregate(records []parser.Record, logger *slog.Logger) Dataset {
	if logger == nil {
		logger = slog.Default()
	}

	var ds Dataset
	seen := make(map[string]struct{})

	type flatRow struct {
		tr  parser.TestResult
		rec *parser.Record
	}
	var flat []flatRow
	for i := range records {
		rec := &records[i]
		for _, tr := range rec.Results {
			key := dedupeKey(rec.SourceFile, tr)
			if _, dup := seen[key]; dup {
				ds.Deduplicated++
				continue
			}
			seen[key] = struct{}{}
			flat = append(flat, flatRow{tr: tr, rec: rec})
		}
	}

	patientIDs := make(map[string]int)
	for _, fr := range flat {
		result, ok := coerceNumeric(fr.tr.Result)
		if !ok {
			ds.DroppedNonNumeric++
			logger.Warn("dataset.row.dropped",
				"test_name", fr.tr.TestName,
				"source_file", fr.rec.SourceFile,
				"result", fmt.Sprintf("%v", fr.tr.Result),
			)
			continue
		}
		id, ok := patientIDs[fr.rec.SourceFile]
		if !ok {
			id = len(patientIDs) + 1
			patientIDs[fr.rec.SourceFile] = id
		}
		ds.Rows = append(ds.Rows, Row{
			TestName:       fr.tr.TestName,
			Result:         result,
			Unit:           fr.tr.Unit,
			ReferenceRange: fr.tr.ReferenceRange,
			Flag:           fr.tr.Flag,
			PatientName:    fr.rec.Patient.Name,
			Age:            fr.rec.Patient.Age,
			Sex:            fr.rec.Patient.Sex,
			SourceFile:     fr.rec.SourceFile,
			PatientID:      id,
		})
	}

	logger.Info("dataset.aggregate.ok",
		"rows", len(ds.Rows),
		"patients", len(patientIDs),
		"deduplicated", ds.Deduplicated,
		"dropped_non_numeric", ds.DroppedNonNumeric,
	)
	return ds
}

// SuspectFlags reports rows whose abnormality flag is longer than one
// character — usually recognition garbage bleeding into the flag column.
func (d Dataset) SuspectFlags() []Row {
	var suspect []Row
	for _, r := range d.Rows {
		if len([]rune(r.Flag)) > 1 {
			suspect = append(suspect, r)
		}
	}
	return suspect
}

func dedupeKey(sourceFile string, tr parser.TestResult) string {
	return strings.Join([]string{
		sourceFile,
		tr.TestName,
		fmt.Sprintf("%v", tr.Result),
		tr.Unit,
		tr.ReferenceRange,
		tr.Flag,
	}, "\x1f")
}

// coerceNumeric accepts float64, integers and numeric strings.
func coerceNumeric(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
