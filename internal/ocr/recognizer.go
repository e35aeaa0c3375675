package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	"github.com/arogyalabs/labreports/internal/common"
)

// Recognizer is the external text-recognition capability. Implementations
// must support concurrent invocation; the pipeline shares one handle across
// all documents and all pages.
type Recognizer interface {
	Recognize(ctx context.Context, imageBytes []byte) (string, error)
}

// TesseractConfig configures the default tesseract-backed recognizer.
type TesseractConfig struct {
	Tesseract   string // binary name or absolute path; if empty -> "tesseract"
	Lang        string // default "eng"
	TessdataDir string
}

// TesseractRecognizer shells out to tesseract through the exec Runner. The
// binary is resolved once; a resolution failure is remembered and returned
// on every call rather than silently retried.
type TesseractRecognizer struct {
	cfg    TesseractConfig
	runner Runner
	logger *slog.Logger

	initOnce sync.Once
	initErr  error
}

func NewTesseractRecognizer(cfg TesseractConfig, logger *slog.Logger) *TesseractRecognizer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	return &TesseractRecognizer{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
}

func (r *TesseractRecognizer) init() error {
	r.initOnce.Do(func() {
		if _, err := exec.LookPath(r.cfg.Tesseract); err != nil {
			r.logger.Error("ocr.recognizer.init_failed", "binary", r.cfg.Tesseract, "error", err)
			r.initErr = fmt.Errorf("%w: recognizer unavailable: %v", common.ErrExtraction, err)
			return
		}
		r.logger.Info("ocr.recognizer.ready", "binary", r.cfg.Tesseract, "lang", r.cfg.Lang)
	})
	return r.initErr
}

func (r *TesseractRecognizer) Recognize(ctx context.Context, imageBytes []byte) (string, error) {
	if err := r.init(); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp("", "lr-ocr-*.png")
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrPageRecognition, err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if rmErr := os.Remove(tmpPath); rmErr != nil {
			r.logger.Warn("ocr.recognizer.tmp_cleanup_failed", "path", tmpPath, "error", rmErr)
		}
	}()
	if _, err := tmp.Write(imageBytes); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("%w: %v", common.ErrPageRecognition, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrPageRecognition, err)
	}

	args := []string{filepath.Clean(tmpPath), "stdout", "-l", r.cfg.Lang}
	if r.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", r.cfg.TessdataDir)
	}

	// tesseract <file> stdout -l <lang>
	out, errb, err := r.runner.Run(ctx, r.cfg.Tesseract, args...)
	if err != nil {
		return "", fmt.Errorf("%w: tesseract: %v: %s", common.ErrPageRecognition, err, truncate(string(errb), 512))
	}
	return string(out), nil
}
