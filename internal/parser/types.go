package parser

import "context"

// Sex is the closed vocabulary for the patient sex field.
type Sex string

const (
	SexMale    Sex = "Male"
	SexFemale  Sex = "Female"
	SexUnknown Sex = "Unknown"
)

// PatientInfo holds the demographic block of a report. Absent fields stay at
// their zero value; nothing is guessed at this layer.
type PatientInfo struct {
	Name string
	Age  int
	Sex  Sex
}

// TestResult is one extracted measurement. TestName is always the canonical
// name from the catalog, never the raw spelling that matched. Result holds a
// float64 from the deterministic parser but may carry whatever the model
// returned; the aggregator coerces it to numeric or drops the row.
type TestResult struct {
	TestName       string
	Result         any
	Unit           string
	ReferenceRange string
	Flag           string
}

// Record is one document's extraction: patient info plus the ordered test
// results, tagged with the source filename by the pipeline.
type Record struct {
	SourceFile string
	Patient    PatientInfo
	Results    []TestResult
}

// Parser turns raw recognized text into a Record. Both the rule-based parser
// and the model-assisted parser implement it; the escalation policy picks.
type Parser interface {
	Parse(ctx context.Context, rawText string) (Record, error)
}
