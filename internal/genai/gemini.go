package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

// GeminiBackend invokes the Google Generative Language REST API. This is the
// only operation in the system that can block for multiple seconds, so the
// client timeout applies here and nowhere else.
type GeminiBackend struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

func NewGeminiBackend(apiKey, model string, timeout time.Duration) *GeminiBackend {
	return &GeminiBackend{
		apiKey:  apiKey,
		model:   model,
		baseURL: geminiBaseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (g *GeminiBackend) Name() string { return g.model }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

func (g *GeminiBackend) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini API status %d: %s", resp.StatusCode, truncate(string(body), 300))
	}

	parts := gjson.GetBytes(body, "candidates.0.content.parts.#.text")
	if !parts.Exists() {
		return "", fmt.Errorf("gemini response has no candidate text")
	}
	var sb strings.Builder
	for _, p := range parts.Array() {
		sb.WriteString(p.String())
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("gemini response has empty candidate text")
	}
	return sb.String(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
