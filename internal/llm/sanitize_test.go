package llm

import (
	"encoding/json"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestSanitizeReportJSON(t *testing.T) {
	raw := []byte(`{
		"patient_details": {"name": "  Ramesh Kumar ", "age": "45 Years", "sex": "Male", "address": "nope"},
		"test_results": [
			{"test_name": "Hemoglobin", "result": 13.2, "unit": "g/dl", "reference_range": "13.0-17.0"},
			{"test_name": "Glucose", "result": "95", "unit": "mg/dl"},
			{"test_name": "Urine Albumin", "result": "Absent"},
			{"test_name": "", "result": 5},
			{"test_name": "Platelets", "result": null},
			"not an object"
		],
		"reasoning": "model chatter"
	}`)

	cleaned, dropped, err := SanitizeReportJSON(raw, testLogger())
	require.NoError(t, err)

	var payload ReportPayload
	require.NoError(t, json.Unmarshal(cleaned, &payload))

	assert.Equal(t, "Ramesh Kumar", payload.PatientDetails.Name)
	assert.Equal(t, 45, payload.PatientDetails.Age)
	assert.Equal(t, "Male", payload.PatientDetails.Sex)

	require.Len(t, payload.TestResults, 2)
	assert.Equal(t, "Hemoglobin", payload.TestResults[0].TestName)
	assert.Equal(t, 13.2, payload.TestResults[0].Result)
	assert.Equal(t, "Glucose", payload.TestResults[1].TestName)
	assert.Equal(t, 95.0, payload.TestResults[1].Result, "numeric string coerced to number")

	// 4 bad rows dropped: non-numeric, empty name, null result, non-object
	assert.Len(t, dropped, 4)

	// the cleaned document must survive its own schema
	require.NoError(t, ValidateJSONAgainstSchema(BuildReportJSONSchema(), cleaned))
}

func TestSanitizeReportJSONInvalidInput(t *testing.T) {
	_, _, err := SanitizeReportJSON([]byte("this is not json"), testLogger())
	require.Error(t, err)
}

func TestSanitizeReportJSONMissingBlocks(t *testing.T) {
	cleaned, dropped, err := SanitizeReportJSON([]byte(`{}`), testLogger())
	require.NoError(t, err)
	assert.Empty(t, dropped)

	var payload ReportPayload
	require.NoError(t, json.Unmarshal(cleaned, &payload))
	assert.Empty(t, payload.TestResults)
	assert.Empty(t, payload.PatientDetails.Name)

	require.NoError(t, ValidateJSONAgainstSchema(BuildReportJSONSchema(), cleaned))
}

func TestCoerceAge(t *testing.T) {
	tests := []struct {
		in   any
		want int
	}{
		{45.0, 45},
		{"45", 45},
		{"45 Years", 45},
		{"  38 yrs", 38},
		{"abc", 0},
		{"", 0},
		{nil, 0},
		{true, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, coerceAge(tt.in), "coerceAge(%v)", tt.in)
	}
}

func TestValidateJSONAgainstSchema(t *testing.T) {
	schema := BuildReportJSONSchema()

	tests := []struct {
		name    string
		data    string
		wantErr bool
	}{
		{
			name: "valid payload",
			data: `{"patient_details":{"name":"X","age":40,"sex":"Female"},"test_results":[{"test_name":"TSH","result":2.5}]}`,
		},
		{
			name: "string result allowed",
			data: `{"patient_details":{},"test_results":[{"test_name":"TSH","result":"2.5"}]}`,
		},
		{
			name:    "missing test_results",
			data:    `{"patient_details":{}}`,
			wantErr: true,
		},
		{
			name:    "row without result",
			data:    `{"patient_details":{},"test_results":[{"test_name":"TSH"}]}`,
			wantErr: true,
		},
		{
			name:    "unknown row key",
			data:    `{"patient_details":{},"test_results":[{"test_name":"TSH","result":1,"comment":"x"}]}`,
			wantErr: true,
		},
		{
			name:    "negative age",
			data:    `{"patient_details":{"age":-1},"test_results":[]}`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateJSONAgainstSchema(schema, []byte(tt.data))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
