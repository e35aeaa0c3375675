package parser

import (
	"regexp"
	"strings"
)

// aliasEntry binds one canonical test name to the compiled disjunction of its
// raw-text spellings. Catalog order is load-bearing: the first entry whose
// pattern matches a line wins, so more specific names sit above the generic
// ones they overlap with (HDL Cholesterol before Total Cholesterol).
type aliasEntry struct {
	Canonical string
	Pattern   *regexp.Regexp
}

type aliasSpec struct {
	canonical string
	aliases   []string
}

var catalogSpec = []aliasSpec{
	{"HbA1c", []string{"HbA1c", "Glycated Hemoglobin", "Glycosylated Hemoglobin"}},
	{"Hemoglobin", []string{"Hemoglobin", "Haemoglobin", "Hb"}},
	{"RBC Count", []string{"RBC Count", "Total RBC Count", "Red Blood Cell Count"}},
	{"WBC Count", []string{"WBC Count", "Total WBC Count", "Total Leucocyte Count", "TLC", "White Blood Cell Count"}},
	{"Platelet Count", []string{"Platelet Count", "Platelets"}},
	{"PCV", []string{"PCV", "Packed Cell Volume", "Hematocrit", "HCT"}},
	{"MCV", []string{"MCV", "Mean Corpuscular Volume"}},
	{"MCHC", []string{"MCHC"}},
	{"MCH", []string{"MCH", "Mean Corpuscular Hemoglobin"}},
	{"ESR", []string{"ESR", "Erythrocyte Sedimentation Rate"}},
	{"Neutrophils", []string{"Neutrophils"}},
	{"Lymphocytes", []string{"Lymphocytes"}},
	{"Monocytes", []string{"Monocytes"}},
	{"Eosinophils", []string{"Eosinophils"}},
	{"Basophils", []string{"Basophils"}},
	{"HDL Cholesterol", []string{"HDL Cholesterol", "HDL"}},
	{"LDL Cholesterol", []string{"LDL Cholesterol", "LDL"}},
	{"VLDL Cholesterol", []string{"VLDL Cholesterol", "VLDL"}},
	{"Triglycerides", []string{"Triglycerides", "TG"}},
	{"Total Cholesterol", []string{"Total Cholesterol", "Cholesterol- Total", "Cholesterol Total", "Cholesterol"}},
	{"Glucose", []string{"Fasting Blood Sugar", "Blood Sugar Fasting", "Blood Glucose", "Glucose Fasting", "FBS", "Glucose"}},
	{"Creatinine", []string{"Serum Creatinine", "Creatinine"}},
	{"Urea", []string{"Blood Urea", "Urea"}},
	{"Uric Acid", []string{"Uric Acid"}},
	{"AST", []string{"AST", "SGOT"}},
	{"ALT", []string{"ALT", "SGPT"}},
	{"Alkaline Phosphatase", []string{"Alkaline Phosphatase", "ALP"}},
	{"Total Bilirubin", []string{"Total Bilirubin", "Bilirubin Total", "Bilirubin- Total"}},
	{"Total Protein", []string{"Total Protein", "Protein Total"}},
	{"Albumin", []string{"Serum Albumin", "Albumin"}},
	{"TSH", []string{"TSH", "Thyroid Stimulating Hormone"}},
	{"T3", []string{"Triiodothyronine", "T3 Total", "T3"}},
	{"T4", []string{"Thyroxine", "T4 Total", "T4"}},
	{"Vitamin D", []string{"Vitamin D", "25-OH Vitamin D", "25 Hydroxy Vitamin D"}},
	{"Vitamin B12", []string{"Vitamin B12", "Vitamin B-12", "Cyanocobalamin"}},
	{"Sodium", []string{"Serum Sodium", "Sodium"}},
	{"Potassium", []string{"Serum Potassium", "Potassium"}},
	{"Calcium", []string{"Serum Calcium", "Calcium"}},
}

// sectionStartKeywords open the test-results window; sectionEndKeywords close
// it. Matching is case-insensitive substring, re-evaluated on every line, so
// a section can open and close multiple times per document.
var sectionStartKeywords = []string{
	"test name",
	"investigations",
	"lipid profile",
	"biochemistry",
	"haematology",
	"hematology",
	"complete blood count",
	"liver function",
	"kidney function",
	"renal function",
	"thyroid profile",
	"blood sugar",
}

var sectionEndKeywords = []string{
	"interpretation",
	"method:",
	"end of report",
	"note:",
	"page break",
	"advised",
}

// unit vocabulary, longest spellings first so the leftmost match is the
// longest one at that position
var reUnit = regexp.MustCompile(`(?i)million/cmm|lakhs?/cumm|thou/cumm|cells/cmm|/cumm|/cmm|mg/dl|gm/dl|g/dl|mEq/L|mmol/L|mIU/L|µIU/ml|uIU/ml|IU/L|U/L|ng/ml|ng/dl|pg/ml|mm/hr|µg/dl|ug/dl|fl\b|pg\b|%|ratio`)

var (
	reNumber = regexp.MustCompile(`\d+(?:\.\d+)?`)
	reRange  = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*[-–]\s*(\d+(?:\.\d+)?)`)
	reFlag   = regexp.MustCompile(`(?:^|[\s(])([HL↑↓])(?:[\s).]|$)`)
)

func compileCatalog(spec []aliasSpec) []aliasEntry {
	entries := make([]aliasEntry, 0, len(spec))
	for _, s := range spec {
		quoted := make([]string, len(s.aliases))
		for i, a := range s.aliases {
			quoted[i] = regexp.QuoteMeta(a)
		}
		p := regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
		entries = append(entries, aliasEntry{Canonical: s.canonical, Pattern: p})
	}
	return entries
}

func containsAny(line string, keywords []string) bool {
	lower := strings.ToLower(line)
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}
