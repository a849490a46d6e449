package genai

import (
	"encoding/json"
	"strings"
)

// ExtractJSON recovers a JSON object or array from model output that may be
// wrapped in prose or markdown fencing. Ordered attempts, first success
// wins: outermost {...}, then outermost [...], then the whole text.
//
// Known limitation: matching on the outermost bracket pair can be fooled by
// braces inside string literals that precede the real payload. This is a
// cheap recovery heuristic, not a parser.
func ExtractJSON(text string) (json.RawMessage, error) {
	var lastErr error

	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start != -1 && end > start {
		sub := []byte(text[start : end+1])
		if err := checkJSON(sub); err == nil {
			return json.RawMessage(sub), nil
		} else {
			lastErr = err
		}
	}
	if start, end := strings.Index(text, "["), strings.LastIndex(text, "]"); start != -1 && end > start {
		sub := []byte(text[start : end+1])
		if err := checkJSON(sub); err == nil {
			return json.RawMessage(sub), nil
		} else {
			lastErr = err
		}
	}
	if err := checkJSON([]byte(text)); err == nil {
		return json.RawMessage(text), nil
	} else {
		lastErr = err
	}
	return nil, lastErr
}

func checkJSON(b []byte) error {
	var v any
	return json.Unmarshal(b, &v)
}
