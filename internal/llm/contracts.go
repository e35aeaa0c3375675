package llm

import (
	"strings"

	"github.com/arogyalabs/labreports/internal/parser"
)

// PatientDetails mirrors the patient block of the model payload.
type PatientDetails struct {
	Name string `json:"name,omitempty"`
	Age  int    `json:"age,omitempty"`
	Sex  string `json:"sex,omitempty"`
}

// TestResultPayload is one test row as returned by the model. Result stays
// untyped here; the aggregator owns numeric coercion.
type TestResultPayload struct {
	TestName       string `json:"test_name"`
	Result         any    `json:"result"`
	Unit           string `json:"unit,omitempty"`
	ReferenceRange string `json:"reference_range,omitempty"`
	Flag           string `json:"flag,omitempty"`
}

// ReportPayload is the structured shape we require from the model: patient
// details plus a list of already-canonicalized test results.
type ReportPayload struct {
	PatientDetails PatientDetails      `json:"patient_details"`
	TestResults    []TestResultPayload `json:"test_results"`
}

// ToRecord converts a validated payload into the pipeline's Record shape.
func (p ReportPayload) ToRecord() parser.Record {
	rec := parser.Record{
		Patient: parser.PatientInfo{
			Name: strings.TrimSpace(p.PatientDetails.Name),
			Age:  p.PatientDetails.Age,
			Sex:  canonicalSex(p.PatientDetails.Sex),
		},
	}
	for _, tr := range p.TestResults {
		name := strings.TrimSpace(tr.TestName)
		if name == "" || tr.Result == nil {
			continue
		}
		rec.Results = append(rec.Results, parser.TestResult{
			TestName:       name,
			Result:         tr.Result,
			Unit:           strings.TrimSpace(tr.Unit),
			ReferenceRange: strings.TrimSpace(tr.ReferenceRange),
			Flag:           strings.TrimSpace(tr.Flag),
		})
	}
	return rec
}

func canonicalSex(s string) parser.Sex {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m":
		return parser.SexMale
	case "female", "f":
		return parser.SexFemale
	default:
		return parser.SexUnknown
	}
}
