package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arogyalabs/labreports/constants"
	"github.com/arogyalabs/labreports/internal/common"
	"github.com/arogyalabs/labreports/internal/ocr"
	"github.com/arogyalabs/labreports/internal/parser"
)

// Processor coordinates text extraction then the hybrid parse for one
// document at a time. Document failures are contained; they never abort the
// surrounding batch.
type Processor struct {
	Logger    *slog.Logger
	Extractor *ocr.Extractor
	Parser    parser.Parser
}

func NewProcessor(logger *slog.Logger, extractor *ocr.Extractor, p parser.Parser) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{Logger: logger, Extractor: extractor, Parser: p}
}

// ProcessDocument runs OCR and the hybrid parse for one document and tags
// the record with the source filename. An error means the document was
// unreadable and should be skipped; parse shortfalls are not errors.
func (p *Processor) ProcessDocument(ctx context.Context, doc ocr.Document) (parser.Record, error) {
	res, err := p.Extractor.Extract(ctx, doc)
	if err != nil {
		p.Logger.Error("pipeline.extract.failed", "file", doc.Filename, "error", err)
		return parser.Record{}, err
	}
	if len(res.Text) < constants.MinRawTextLen {
		p.Logger.Error("pipeline.extract.insufficient_text",
			"file", doc.Filename, "bytes", len(res.Text), "pages", res.Pages)
		return parser.Record{}, fmt.Errorf("%w: %q yielded insufficient text (%d bytes)",
			common.ErrExtraction, doc.Filename, len(res.Text))
	}
	p.Logger.Info("pipeline.extract.ok",
		"file", doc.Filename,
		"method", res.Method,
		"pages", res.Pages,
		"bytes", len(res.Text),
		"page_warnings", len(res.Warnings),
		"duration_ms", res.Duration.Milliseconds(),
	)

	rec, err := p.Parser.Parse(ctx, res.Text)
	if err != nil {
		// the hybrid parser degrades instead of failing; keep the guard anyway
		p.Logger.Error("pipeline.parse.failed", "file", doc.Filename, "error", err)
		rec = parser.Record{}
	}
	rec.SourceFile = doc.Filename

	p.Logger.Info("pipeline.parse.ok", "file", doc.Filename, "results", len(rec.Results))
	return rec, nil
}

// BatchStats summarizes one batch run.
type BatchStats struct {
	Documents int
	Processed int
	Skipped   int
}

// ProcessBatch runs every document in order, skipping unreadable ones.
// Input order is preserved in the returned records, which is what makes
// patient-id assignment reproducible.
func (p *Processor) ProcessBatch(ctx context.Context, docs []ocr.Document) ([]parser.Record, BatchStats) {
	stats := BatchStats{Documents: len(docs)}
	records := make([]parser.Record, 0, len(docs))

	for _, doc := range docs {
		rec, err := p.ProcessDocument(ctx, doc)
		if err != nil {
			stats.Skipped++
			continue
		}
		records = append(records, rec)
		stats.Processed++
	}

	p.Logger.Info("pipeline.batch.done",
		"run_id", common.RunIDFromContext(ctx),
		"documents", stats.Documents,
		"processed", stats.Processed,
		"skipped", stats.Skipped,
	)
	return records, stats
}
