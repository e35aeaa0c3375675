package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/arogyalabs/labreports/constants"
	"github.com/arogyalabs/labreports/internal/common"
)

func (e *Extractor) extractPDF(ctx context.Context, doc Document) (ExtractionResult, error) {
	res := ExtractionResult{Kind: constants.PDF, Method: "pdf-ocr"}

	tmpDir, err := os.MkdirTemp("", "lr-pp-*")
	if err != nil {
		return res, fmt.Errorf("%w: %v", common.ErrExtraction, err)
	}
	defer func(path string) {
		if rmErr := os.RemoveAll(path); rmErr != nil {
			e.logger.Warn("ocr.pdf.tmp_cleanup_failed", "path", path, "error", rmErr)
		}
	}(tmpDir)

	pdfPath := filepath.Join(tmpDir, "doc.pdf")
	if err := os.WriteFile(pdfPath, doc.Data, 0o600); err != nil {
		return res, fmt.Errorf("%w: %v", common.ErrExtraction, err)
	}

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r <dpi> -png <in.pdf> <tmp/page>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", e.cfg.DPI), "-png", pdfPath, prefix)
	if err != nil {
		return res, fmt.Errorf("%w: rasterize %q: %v: %s", common.ErrExtraction, doc.Filename, err, truncate(string(errb), 512))
	}

	// collect generated pngs (prefix-1.png, prefix-2.png, ...); pdftoppm
	// zero-pads page numbers, so a lexicographic sort is index order
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return res, fmt.Errorf("%w: %q has no renderable pages", common.ErrExtraction, doc.Filename)
	}

	texts, warns := e.recognizePages(ctx, doc.Filename, matches)
	res.Text = strings.Join(texts, constants.PageBreakMarker)
	res.Pages = len(matches)
	res.Warnings = warns
	return res, nil
}

type pageJob struct {
	index int
	path  string
}

type pageResult struct {
	index int
	text  string
	err   error
}

// recognizePages fans page images out to a bounded worker pool and reassembles
// the texts strictly by page index, never by completion order. A failed page
// is logged and leaves an empty slot.
func (e *Extractor) recognizePages(ctx context.Context, filename string, paths []string) ([]string, []string) {
	workers := e.cfg.Concurrency
	if workers > len(paths) {
		workers = len(paths)
	}

	jobs := make(chan pageJob, len(paths))
	results := make(chan pageResult, len(paths))

	var wg sync.WaitGroup
	for n := 0; n < workers; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				text, err := e.recognizePage(ctx, job.path)
				results <- pageResult{index: job.index, text: text, err: err}
			}
		}()
	}

	for i, p := range paths {
		jobs <- pageJob{index: i, path: p}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	texts := make([]string, len(paths))
	var warns []string
	for r := range results {
		if r.err != nil {
			e.logger.Error("ocr.page.failed", "file", filename, "page", r.index+1, "error", r.err)
			warns = append(warns, fmt.Sprintf("page %d: %v", r.index+1, r.err))
			continue
		}
		texts[r.index] = Normalize(r.text)
		e.logger.Debug("ocr.page.ok", "file", filename, "page", r.index+1, "bytes", len(r.text))
	}
	return texts, warns
}

func (e *Extractor) recognizePage(ctx context.Context, path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrPageRecognition, err)
	}
	return e.rec.Recognize(ctx, b)
}
