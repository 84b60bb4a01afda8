package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// completionRequest is the text-completions wire shape the generation
// endpoint expects.
type completionRequest struct {
	Prompt        string   `json:"prompt"`
	MaxTokens     int      `json:"max_tokens_to_sample"`
	Temperature   float64  `json:"temperature"`
	StopSequences []string `json:"stop_sequences"`
}

type completionResponse struct {
	Completion string `json:"completion"`
}

// HTTPGenerator forwards prompts to a text-completions HTTP endpoint.
type HTTPGenerator struct {
	url    string
	apiKey string
	params Params
	client *http.Client
}

func NewHTTPGenerator(url, apiKey string, params Params) *HTTPGenerator {
	if params.MaxTokens <= 0 {
		params.MaxTokens = 1024
	}
	return &HTTPGenerator{
		url:    strings.TrimSpace(url),
		apiKey: apiKey,
		params: params,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (g *HTTPGenerator) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(completionRequest{
		Prompt:        prompt,
		MaxTokens:     g.params.MaxTokens,
		Temperature:   g.params.Temperature,
		StopSequences: g.params.StopSequences,
	})
	if err != nil {
		return "", fmt.Errorf("marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	res, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return "", fmt.Errorf("model http status %d: %s", res.StatusCode, string(snippet))
	}

	var out completionResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode completion: %w", err)
	}

	return strings.TrimSpace(out.Completion), nil
}
