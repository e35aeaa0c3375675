package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/arogyalabs/labreports/constants"
	"github.com/arogyalabs/labreports/internal/common"
	"github.com/arogyalabs/labreports/internal/ocr"
)

// runocr extracts text from a single report file and prints it. Useful for
// checking what the recognizer actually sees before blaming the parser.
func main() {
	var (
		file = flag.String("file", "", "path to a PDF or image report (required)")
		raw  = flag.Bool("raw", false, "print extracted text only, no summary")
	)
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "Error: --file is required")
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ext := constants.NormalizeExt(filepath.Ext(*file))
	if _, ok := constants.AllowedExtensions[ext]; !ok {
		fmt.Fprintf(os.Stderr, "Error: unsupported file extension %q\n", ext)
		os.Exit(1)
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		logger.Error("failed to read file", "path", *file, "error", err)
		os.Exit(1)
	}

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

	doc := ocr.Document{
		Filename: filepath.Base(*file),
		Kind:     constants.MapExtToKind(ext),
		Data:     data,
	}

	res, err := extractor.Extract(context.Background(), doc)
	if err != nil {
		logger.Error("extraction failed", "file", doc.Filename, "error", err)
		os.Exit(1)
	}

	if *raw {
		fmt.Println(res.Text)
		return
	}

	fmt.Printf("File:     %s\n", doc.Filename)
	fmt.Printf("Kind:     %s\n", doc.Kind)
	fmt.Printf("Method:   %s\n", res.Method)
	fmt.Printf("Pages:    %d\n", res.Pages)
	fmt.Printf("Bytes:    %d\n", len(res.Text))
	fmt.Printf("Warnings: %d\n", len(res.Warnings))
	for _, w := range res.Warnings {
		fmt.Printf("  - %s\n", w)
	}
	fmt.Printf("Duration: %s\n", res.Duration)
	fmt.Println("--- text ---")
	fmt.Println(res.Text)
}
