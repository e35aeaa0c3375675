package ocr

import (
	"context"
	"fmt"

	"github.com/arogyalabs/labreports/constants"
	"github.com/arogyalabs/labreports/internal/common"
)

func (e *Extractor) extractImage(ctx context.Context, doc Document) (ExtractionResult, error) {
	res := ExtractionResult{Kind: constants.IMAGE, Method: "image-ocr", Pages: 1}

	txt, err := e.rec.Recognize(ctx, doc.Data)
	if err != nil {
		// A single-image document has nothing left to degrade to.
		return res, fmt.Errorf("%w: %q: %v", common.ErrExtraction, doc.Filename, err)
	}
	res.Text = Normalize(txt)
	return res, nil
}
