package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/arogyalabs/labreports/constants"
	"github.com/arogyalabs/labreports/internal/common"
)

// Document is an input file handed to the extraction unit: an in-memory byte
// buffer plus a declared media kind. Path resolution is the caller's job.
type Document struct {
	Filename string
	Kind     constants.MediaKind
	Data     []byte
}

type Config struct {
	Pdftoppm string // binary name or absolute path; if empty -> "pdftoppm"

	DPI         int // rasterization DPI for PDF pages, default 200
	MaxPages    int // 0 = no limit
	Concurrency int // concurrent recognition tasks per document, default 10

	Timeout time.Duration // per-document deadline, default 5m
}

// ExtractionResult is the raw text recognized for one Document.
type ExtractionResult struct {
	Text     string
	Pages    int
	Kind     constants.MediaKind
	Method   string // "pdf-ocr" | "image-ocr"
	Duration time.Duration
	Warnings []string
}

// Extractor converts Documents into raw text through a shared Recognizer.
// Safe for concurrent use across documents.
type Extractor struct {
	cfg    Config
	runner Runner
	rec    Recognizer
	logger *slog.Logger
}

func NewExtractor(cfg Config, rec Recognizer, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 200
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 10
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	return &Extractor{cfg: cfg, runner: execRunner{logger: logger}, rec: rec, logger: logger}
}

// Extract picks a strategy based on the document's media kind. Per-page
// recognition failures degrade to empty page slots; only a fully unreadable
// document (or an unusable recognizer) returns common.ErrExtraction.
func (e *Extractor) Extract(ctx context.Context, doc Document) (ExtractionResult, error) {
	start := time.Now()
	if len(doc.Data) == 0 {
		return ExtractionResult{Kind: doc.Kind}, fmt.Errorf("%w: empty document %q", common.ErrExtraction, doc.Filename)
	}
	if e.rec == nil {
		return ExtractionResult{Kind: doc.Kind}, fmt.Errorf("%w: no recognizer configured", common.ErrExtraction)
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	e.logger.Debug("ocr.extract.start", "file", doc.Filename, "kind", doc.Kind, "bytes", len(doc.Data))

	switch doc.Kind {
	case constants.PDF:
		res, err := e.extractPDF(ctx, doc)
		res.Duration = time.Since(start)
		return res, err
	case constants.IMAGE:
		res, err := e.extractImage(ctx, doc)
		res.Duration = time.Since(start)
		return res, err
	default:
		e.logger.Error("ocr.extract.unsupported_kind", "file", doc.Filename, "kind", doc.Kind)
		return ExtractionResult{}, fmt.Errorf("%w: unsupported media kind %q", common.ErrExtraction, doc.Kind)
	}
}
