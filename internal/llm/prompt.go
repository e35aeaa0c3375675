package llm

import "strings"

// BuildSystemPrompt composes the fixed system instruction for the
// model-assisted parse: JSON-only output in the report payload shape, with
// canonical test names.
func BuildSystemPrompt() string {
	parts := []string{
		"You are a medical lab report parser. Return ONLY JSON that matches the provided JSON Schema.",
		"Extract patient details (name, age, sex) and every test result you can find.",
		"Use the canonical test name for 'test_name' (e.g. 'Total Cholesterol', 'Hemoglobin', 'TSH'), not the raw spelling on the report.",
		"'result' must be the numeric value of the test. Omit rows whose value is not numeric.",
		"'reference_range' is the normal range as printed, formatted 'low-high'.",
		"'flag' is the abnormality marker if printed (e.g. 'H' or 'L').",
		"Sex must be 'Male' or 'Female' if stated.",
		"Never output null. If a field is not present, omit it.",
	}
	return strings.Join(parts, " ")
}

// BuildUserPrompt packages the raw recognized text. Long documents are
// truncated; the tail of a lab report is footers and signatures.
func BuildUserPrompt(rawText string) string {
	const maxChars = 12000

	var b strings.Builder
	b.WriteString("Lab report text:\n")
	text := strings.TrimSpace(rawText)
	if len(text) > maxChars {
		b.WriteString(text[:maxChars])
		b.WriteString("\n…(truncated)")
	} else {
		b.WriteString(text)
	}
	return b.String()
}
