package parser

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
)

// RuleParser is the deterministic first pass: a windowed table scan over the
// raw text against a precompiled alias catalog. It never fails; a document
// with no recognizable content yields an empty Record.
type RuleParser struct {
	catalog   []aliasEntry
	lookahead int
	logger    *slog.Logger
}

func NewRuleParser(lookaheadLines int, logger *slog.Logger) *RuleParser {
	if logger == nil {
		logger = slog.Default()
	}
	if lookaheadLines < 0 {
		lookaheadLines = 0
	}
	return &RuleParser{
		catalog:   compileCatalog(catalogSpec),
		lookahead: lookaheadLines,
		logger:    logger,
	}
}

func (p *RuleParser) Parse(_ context.Context, rawText string) (Record, error) {
	rec := Record{
		Patient: extractPatientInfo(rawText),
	}

	lines := splitLines(rawText)

	inSection := false
	for i, line := range lines {
		// Section state re-evaluates on every line; a section can open and
		// close multiple times per document.
		if containsAny(line, sectionEndKeywords) {
			inSection = false
			continue
		}
		if containsAny(line, sectionStartKeywords) {
			inSection = true
			continue
		}
		if !inSection {
			continue
		}

		for _, entry := range p.catalog {
			loc := entry.Pattern.FindStringIndex(line)
			if loc == nil {
				continue
			}
			// A line names at most one test: first matching alias wins and
			// we stop scanning further catalog entries for this line.
			window := p.buildWindow(lines, i, loc[1])
			if tr, ok := scanWindow(entry.Canonical, window); ok {
				rec.Results = append(rec.Results, tr)
			}
			break
		}
	}

	p.logger.Debug("parser.rules.done",
		"patient_name", rec.Patient.Name != "",
		"results", len(rec.Results),
	)
	return rec, nil
}

// buildWindow joins the remainder of the matched line (after the alias, so
// digits inside test names never read as values) with the next lookahead
// lines. Lab layouts often wrap one logical row across lines, which is the
// whole reason the window exists.
func (p *RuleParser) buildWindow(lines []string, i, aliasEnd int) string {
	parts := []string{lines[i][aliasEnd:]}
	for j := i + 1; j <= i+p.lookahead && j < len(lines); j++ {
		parts = append(parts, lines[j])
	}
	return strings.Join(parts, "\n")
}

// scanWindow pulls result, flag, reference range and unit out of a lookahead
// window. The first numeric token is the result — even when a reference
// range's lower bound precedes the actual value textually. That misfire is
// the documented baseline heuristic, kept as-is.
func scanWindow(canonical, window string) (TestResult, bool) {
	numStr := reNumber.FindString(window)
	if numStr == "" {
		return TestResult{}, false
	}
	result, err := strconv.ParseFloat(numStr, 64)
	if err != nil {
		return TestResult{}, false
	}

	tr := TestResult{
		TestName: canonical,
		Result:   result,
	}
	if m := reRange.FindStringSubmatch(window); m != nil {
		tr.ReferenceRange = m[1] + "-" + m[2]
	}
	if m := reFlag.FindStringSubmatch(window); m != nil {
		tr.Flag = m[1]
	}
	if m := reUnit.FindString(window); m != "" {
		tr.Unit = m
	}
	return tr, true
}

func splitLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
