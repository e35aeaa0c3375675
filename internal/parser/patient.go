package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// Labeled patterns for the patient-info block. First match per field wins
// across the whole raw text.
var (
	rePatientName = regexp.MustCompile(`(?im)^\s*(?:patient\s*name|patient|name)\s*[:\-]\s*(.+)$`)
	rePatientAge  = regexp.MustCompile(`(?i)\bage\s*[:\-]?\s*(\d{1,3})`)
	rePatientSex  = regexp.MustCompile(`(?i)\b(?:sex|gender)\s*[:\-]?\s*(male|female|m\b|f\b)`)

	// trailing boilerplate after the name, e.g. a referring-physician suffix
	reNameBoiler = regexp.MustCompile(`(?i)\s*(?:ref\.?\s*by.*|referred\s*by.*|dr\..*|age.*|sex.*)$`)
)

func extractPatientInfo(rawText string) PatientInfo {
	info := PatientInfo{Sex: SexUnknown}

	if m := rePatientName.FindStringSubmatch(rawText); m != nil {
		name := strings.TrimSpace(reNameBoiler.ReplaceAllString(m[1], ""))
		info.Name = name
	}
	if m := rePatientAge.FindStringSubmatch(rawText); m != nil {
		if age, err := strconv.Atoi(m[1]); err == nil {
			info.Age = age
		}
	}
	if m := rePatientSex.FindStringSubmatch(rawText); m != nil {
		switch strings.ToLower(strings.TrimSpace(m[1])) {
		case "male", "m":
			info.Sex = SexMale
		case "female", "f":
			info.Sex = SexFemale
		}
	}
	return info
}
