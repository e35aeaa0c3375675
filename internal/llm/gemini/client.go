package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/arogyalabs/labreports/internal/common"
	"github.com/arogyalabs/labreports/internal/llm"
	"github.com/arogyalabs/labreports/internal/parser"
)

// Parse implements parser.Parser against the generateContent REST API with
// JSON-constrained output. The response is schema-validated and leniently
// sanitized before it is trusted.
func (c *Client) Parse(ctx context.Context, rawText string) (parser.Record, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("llm.parse.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"text_len", len(rawText),
	)

	body := map[string]any{
		"system_instruction": map[string]any{
			"parts": []map[string]any{{"text": llm.BuildSystemPrompt()}},
		},
		"contents": []map[string]any{
			{"parts": []map[string]any{{"text": llm.BuildUserPrompt(rawText)}}},
		},
		"generationConfig": map[string]any{
			"response_mime_type": "application/json",
			"temperature":        c.cfg.Temperature,
		},
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.Model, c.cfg.APIKey)

	raw, status, err := llm.SendJSON(ctx, c.http, endpoint, body, nil, c.logger)
	if err != nil {
		c.logger.Error("llm.parse.http_error",
			"req_id", rid, "status", status, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return parser.Record{}, fmt.Errorf("%w: %v", common.ErrEscalation, err)
	}

	var gc struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(raw, &gc); err != nil {
		c.logger.Error("llm.parse.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return parser.Record{}, fmt.Errorf("%w: decode response: %v", common.ErrEscalation, err)
	}
	if len(gc.Candidates) == 0 || len(gc.Candidates[0].Content.Parts) == 0 {
		c.logger.Error("llm.parse.no_candidates",
			"req_id", rid,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return parser.Record{}, fmt.Errorf("%w: no candidates in response", common.ErrEscalation)
	}
	content := []byte(strings.TrimSpace(gc.Candidates[0].Content.Parts[0].Text))

	cleaned, dropped, err := llm.SanitizeReportJSON(content, c.logger)
	if err != nil {
		c.logger.Error("llm.parse.sanitize_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return parser.Record{}, fmt.Errorf("%w: %v", common.ErrEscalation, err)
	}

	schema := llm.BuildReportJSONSchema()
	if err := llm.ValidateJSONAgainstSchema(schema, cleaned); err != nil {
		c.logger.Error("llm.parse.schema_validation_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return parser.Record{}, fmt.Errorf("%w: %v", common.ErrEscalation, err)
	}

	var payload llm.ReportPayload
	if err := json.Unmarshal(cleaned, &payload); err != nil {
		c.logger.Error("llm.parse.unmarshal_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return parser.Record{}, fmt.Errorf("%w: unmarshal payload: %v", common.ErrEscalation, err)
	}

	rec := payload.ToRecord()
	c.logger.Info("llm.parse.ok",
		"req_id", rid,
		"patient", rec.Patient.Name != "",
		"results", len(rec.Results),
		"sanitize_dropped", len(dropped),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return rec, nil
}
