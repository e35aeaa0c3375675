package parser

import (
	"context"
	"log/slog"
)

// Hybrid applies the escalation policy: run the rule-based parser first and
// hand the document to the model-assisted parser only when the deterministic
// yield falls below Threshold. Threshold 0 disables escalation entirely.
type Hybrid struct {
	Rules     Parser
	Model     Parser // may be nil; escalation then degrades like a failed call
	Threshold int
	Logger    *slog.Logger
}

func NewHybrid(rules, model Parser, threshold int, logger *slog.Logger) *Hybrid {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hybrid{Rules: rules, Model: model, Threshold: threshold, Logger: logger}
}

// Parse never fails: a failed or malformed model response degrades to an
// empty Record so callers observe zero yield instead of a crash.
func (h *Hybrid) Parse(ctx context.Context, rawText string) (Record, error) {
	rec, err := h.Rules.Parse(ctx, rawText)
	if err != nil {
		// rule parser contract says this cannot happen; treat as zero yield
		rec = Record{}
	}
	if len(rec.Results) >= h.Threshold {
		return rec, nil
	}

	h.Logger.Info("parser.escalate",
		"deterministic_yield", len(rec.Results),
		"threshold", h.Threshold,
	)
	if h.Model == nil {
		h.Logger.Warn("parser.escalate.unavailable", "hint", "no model parser configured")
		return Record{Patient: PatientInfo{Sex: SexUnknown}}, nil
	}

	modelRec, err := h.Model.Parse(ctx, rawText)
	if err != nil {
		h.Logger.Error("parser.escalate.failed", "error", err)
		return Record{Patient: PatientInfo{Sex: SexUnknown}}, nil
	}
	return modelRec, nil
}
