package llm

// BuildReportJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map. We pass it to the model as an output constraint and also use
// it locally to validate before trusting the payload.
func BuildReportJSONSchema() map[string]any {
	testResult := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"test_name":       map[string]any{"type": "string", "minLength": 1},
			"result":          map[string]any{"type": []string{"number", "string"}},
			"unit":            map[string]any{"type": "string"},
			"reference_range": map[string]any{"type": "string"},
			"flag":            map[string]any{"type": "string"},
		},
		"required": []string{"test_name", "result"},
	}

	patientDetails := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"name": map[string]any{"type": "string"},
			"age":  map[string]any{"type": "integer", "minimum": 0},
			"sex":  map[string]any{"type": "string"},
		},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"patient_details": patientDetails,
			"test_results":    map[string]any{"type": "array", "items": testResult},
		},
		"required": []string{"patient_details", "test_results"},
	}
}
