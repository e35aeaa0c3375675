package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// SanitizeReportJSON applies a lenient cleanup pass before schema validation:
// - drops unknown top-level and per-row keys
// - coerces numeric-looking result strings and float ages
// - drops test rows with no usable test_name or result
// - normalizes sex casing
// Returns the cleaned document plus a list of what was dropped or changed.
func SanitizeReportJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	var dropped []string

	out := map[string]any{
		"patient_details": map[string]any{},
		"test_results":    []any{},
	}

	if pd, ok := m["patient_details"].(map[string]any); ok {
		clean := map[string]any{}
		if v, ok := pd["name"].(string); ok && strings.TrimSpace(v) != "" {
			clean["name"] = strings.TrimSpace(v)
		}
		if age := coerceAge(pd["age"]); age > 0 {
			clean["age"] = age
		} else if _, present := pd["age"]; present {
			dropped = append(dropped, "patient_details.age")
		}
		if v, ok := pd["sex"].(string); ok && strings.TrimSpace(v) != "" {
			clean["sex"] = strings.TrimSpace(v)
		}
		out["patient_details"] = clean
	} else if _, present := m["patient_details"]; present {
		dropped = append(dropped, "patient_details(type)")
	}

	if rows, ok := m["test_results"].([]any); ok {
		cleanRows := make([]any, 0, len(rows))
		for i, r := range rows {
			row, ok := r.(map[string]any)
			if !ok {
				dropped = append(dropped, fmt.Sprintf("test_results[%d](type)", i))
				continue
			}
			clean := map[string]any{}
			name, _ := row["test_name"].(string)
			name = strings.TrimSpace(name)
			if name == "" {
				dropped = append(dropped, fmt.Sprintf("test_results[%d](no name)", i))
				continue
			}
			clean["test_name"] = name

			result, ok := coerceResult(row["result"])
			if !ok {
				dropped = append(dropped, fmt.Sprintf("test_results[%d](result)", i))
				continue
			}
			clean["result"] = result

			for _, k := range []string{"unit", "reference_range", "flag"} {
				if v, ok := row[k].(string); ok && strings.TrimSpace(v) != "" {
					clean[k] = strings.TrimSpace(v)
				}
			}
			cleanRows = append(cleanRows, clean)
		}
		out["test_results"] = cleanRows
	} else if _, present := m["test_results"]; present {
		dropped = append(dropped, "test_results(type)")
	}

	b, err := json.Marshal(out)
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(dropped) > 0 {
		logger.Warn("llm.parse.sanitize", "dropped", dropped)
	}
	return b, dropped, nil
}

// coerceResult keeps numbers and numeric-looking strings, dropping
// everything else (null, booleans, prose like "Nil" or "Absent").
func coerceResult(v any) (any, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil, false
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, true
		}
		return nil, false
	default:
		return nil, false
	}
}

// coerceAge tolerates ages arriving as 45, 45.0, "45" or "45 Years".
func coerceAge(v any) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case string:
		fields := strings.Fields(strings.TrimSpace(t))
		if len(fields) == 0 {
			return 0
		}
		if n, err := strconv.Atoi(fields[0]); err == nil {
			return n
		}
	}
	return 0
}
