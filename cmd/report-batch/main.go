package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/arogyalabs/labreports/constants"
	"github.com/arogyalabs/labreports/internal/common"
	"github.com/arogyalabs/labreports/internal/dataset"
	"github.com/arogyalabs/labreports/internal/export"
	"github.com/arogyalabs/labreports/internal/ingest"
	"github.com/arogyalabs/labreports/internal/llm/gemini"
	"github.com/arogyalabs/labreports/internal/ocr"
	"github.com/arogyalabs/labreports/internal/parser"
	"github.com/arogyalabs/labreports/internal/pipeline"
	repo "github.com/arogyalabs/labreports/internal/repository"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	// Parse CLI flags
	var (
		dir       = flag.String("dir", "", "directory to process lab reports from (required)")
		out       = flag.String("out", "", "output CSV file path (defaults to <parent>/master_health_data.csv)")
		xlsxOut   = flag.String("xlsx", "", "optional output XLSX file path")
		threshold = flag.Int("threshold", -1, "escalation threshold override (-1 = use PARSER_FALLBACK_THRESHOLD)")
	)
	flag.Parse()

	// Validate required flags
	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *out == "" {
		parentDir := filepath.Dir(*dir)
		*out = filepath.Join(parentDir, "master_health_data.csv")
	}

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	runID := uuid.New()
	ctx := common.WithRunID(context.Background(), runID.String())

	// Load configuration
	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if *threshold >= 0 {
		cfg.Parser.FallbackThreshold = *threshold
	}

	// Shared recognition handle, created once for the process lifetime.
	recognizer := ocr.NewTesseractRecognizer(ocr.TesseractConfig{
		Tesseract:   cfg.OCR.Tesseract,
		TessdataDir: cfg.OCR.TessdataDir,
	}, logger)

	extractor := ocr.NewExtractor(ocr.Config{
		Pdftoppm:    cfg.OCR.Pdftoppm,
		DPI:         cfg.OCR.DPI,
		MaxPages:    cfg.OCR.MaxPages,
		Concurrency: cfg.OCR.Concurrency,
		Timeout:     cfg.OCR.Timeout,
	}, recognizer, logger)

	// Parsers: deterministic first pass plus the model fallback (graceful if
	// no API key is configured).
	rules := parser.NewRuleParser(cfg.Parser.LookaheadLines, logger)
	var model parser.Parser
	if cfg.LLM.APIKey != "" {
		model = gemini.NewClient(gemini.Config{
			Model:       cfg.LLM.Model,
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.Timeout,
		}, logger)
		logger.Info("model parser initialized", "model", cfg.LLM.Model)
	} else {
		logger.Warn("GEMINI_API_KEY not configured, escalated documents will yield empty records")
	}
	hybrid := parser.NewHybrid(rules, model, cfg.Parser.FallbackThreshold, logger)

	processor := pipeline.NewProcessor(logger, extractor, hybrid)

	// Optional run persistence
	var runsRepo repo.RunRepository
	if cfg.Database.DSN != "" {
		db, dialect, err := repo.Open(ctx, repo.Config{
			DSN:         cfg.Database.DSN,
			DialTimeout: cfg.Database.DialTimeout,
		}, logger)
		if err != nil {
			logger.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer repo.Close(db, logger)
		runsRepo = repo.NewRunRepository(db, dialect, logger)

		if err := runsRepo.StartRun(ctx, runID, *dir); err != nil {
			logger.Error("failed to record run start", "error", err)
			os.Exit(1)
		}
	}

	// Load documents in a stable lexicographic order
	logger.Info("starting batch run", "run_id", runID.String(), "dir", *dir)
	docs, fileResults, dirStats, err := ingest.LoadDirectory(*dir, true, logger)
	if err != nil {
		logger.Error("failed to load directory", "error", err)
		os.Exit(1)
	}
	for _, fr := range fileResults {
		if fr.Err != "" {
			logger.Warn("file not loaded", "path", fr.Path, "error", fr.Err)
		}
	}

	// Process every document; unreadable ones are skipped, not fatal
	records, stats := processor.ProcessBatch(ctx, docs)

	// Aggregate into the master dataset
	ds := dataset.Aggregate(records, logger)

	// Forensic pass: flags longer than one character are usually garbage
	// bleeding in from messy layouts.
	if suspect := ds.SuspectFlags(); len(suspect) > 0 {
		for _, row := range suspect {
			logger.Warn("dataset.flag.suspect",
				"source_file", row.SourceFile,
				"test_name", row.TestName,
				"flag", row.Flag,
			)
		}
	}

	// Write CSV
	f, err := os.Create(*out)
	if err != nil {
		logger.Error("failed to create output file", "path", *out, "error", err)
		os.Exit(1)
	}
	if err := dataset.WriteCSV(f, ds); err != nil {
		_ = f.Close()
		logger.Error("failed to write CSV", "path", *out, "error", err)
		os.Exit(1)
	}
	if err := f.Close(); err != nil {
		logger.Error("failed to close output file", "path", *out, "error", err)
		os.Exit(1)
	}

	// Optional XLSX
	if *xlsxOut != "" {
		xlsxBytes, err := export.NewService(logger).DatasetXLSX(ds)
		if err != nil {
			logger.Error("failed to build XLSX", "error", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*xlsxOut, xlsxBytes, 0o644); err != nil {
			logger.Error("failed to write XLSX file", "path", *xlsxOut, "error", err)
			os.Exit(1)
		}
	}

	// Persist the run outcome
	if runsRepo != nil {
		if err := runsRepo.SaveDataset(ctx, runID, ds); err != nil {
			logger.Error("failed to save dataset", "error", err)
			os.Exit(1)
		}
		if err := runsRepo.FinishRun(ctx, runID, constants.RunStatusOK,
			stats.Documents, stats.Processed, stats.Skipped, len(ds.Rows)); err != nil {
			logger.Error("failed to record run finish", "error", err)
			os.Exit(1)
		}
	}

	logger.Info("batch run complete",
		"run_id", runID.String(),
		"scanned", dirStats.Scanned,
		"documents", stats.Documents,
		"processed", stats.Processed,
		"skipped", stats.Skipped,
		"rows", len(ds.Rows),
		"deduplicated", ds.Deduplicated,
		"dropped_non_numeric", ds.DroppedNonNumeric,
		"output_file", *out,
	)

	fmt.Printf("Batch run complete!\n")
	fmt.Printf("- Documents processed: %d\n", stats.Processed)
	fmt.Printf("- Documents skipped: %d\n", stats.Skipped)
	fmt.Printf("- Dataset rows: %d\n", len(ds.Rows))
	fmt.Printf("- Output: %s\n", *out)
}
