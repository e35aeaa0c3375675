package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arogyalabs/labreports/internal/parser"
)

func TestReportPayloadToRecord(t *testing.T) {
	p := ReportPayload{
		PatientDetails: PatientDetails{Name: " Meera Nair ", Age: 29, Sex: "female"},
		TestResults: []TestResultPayload{
			{TestName: "TSH", Result: 2.5, Unit: " mIU/L ", ReferenceRange: "0.4-4.2"},
			{TestName: "Hemoglobin", Result: "12.8", Flag: "L "},
			{TestName: "  ", Result: 1.0}, // blank name dropped
			{TestName: "Glucose", Result: nil}, // nil result dropped
		},
	}

	rec := p.ToRecord()
	assert.Equal(t, "Meera Nair", rec.Patient.Name)
	assert.Equal(t, 29, rec.Patient.Age)
	assert.Equal(t, parser.SexFemale, rec.Patient.Sex)

	require.Len(t, rec.Results, 2)
	assert.Equal(t, "TSH", rec.Results[0].TestName)
	assert.Equal(t, "mIU/L", rec.Results[0].Unit)
	assert.Equal(t, "0.4-4.2", rec.Results[0].ReferenceRange)
	assert.Equal(t, "L", rec.Results[1].Flag)
	assert.Equal(t, "12.8", rec.Results[1].Result, "coercion is the aggregator's job")
}

func TestCanonicalSex(t *testing.T) {
	tests := []struct {
		in   string
		want parser.Sex
	}{
		{"Male", parser.SexMale},
		{"m", parser.SexMale},
		{"FEMALE", parser.SexFemale},
		{" f ", parser.SexFemale},
		{"other", parser.SexUnknown},
		{"", parser.SexUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, canonicalSex(tt.in), "canonicalSex(%q)", tt.in)
	}
}

func TestBuildUserPromptTruncates(t *testing.T) {
	long := make([]byte, 20000)
	for i := range long {
		long[i] = 'x'
	}
	prompt := BuildUserPrompt(string(long))
	assert.Less(t, len(prompt), 14000)
	assert.Contains(t, prompt, "(truncated)")

	short := BuildUserPrompt("Hemoglobin 13.2")
	assert.Contains(t, short, "Hemoglobin 13.2")
	assert.NotContains(t, short, "(truncated)")
}
