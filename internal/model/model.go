// Package model is the text-generation boundary of the dialogue core. The
// generator is opaque to the rest of the service: a prompt goes in, the next
// assistant turn comes out, and any failure is fatal for the turn because
// there is no reply to fall back on.
package model

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Params are the fixed decoding parameters of every generation call.
type Params struct {
	MaxTokens     int
	Temperature   float64
	StopSequences []string
}

// Generator produces the next assistant turn for a rendered prompt. The
// returned text is terminated before any stop sequence.
type Generator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Config controls generator construction.
type Config struct {
	Mode   string
	URL    string
	APIKey string
	Params Params
}

// NewGenerator builds a generator for the configured mode. "auto" picks the
// HTTP backend when a URL is configured and the mock otherwise.
func NewGenerator(cfg Config) (Generator, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = "auto"
	}

	switch mode {
	case "auto":
		if strings.TrimSpace(cfg.URL) != "" {
			return NewHTTPGenerator(cfg.URL, cfg.APIKey, cfg.Params), nil
		}
		return NewMockGenerator(), nil
	case "http":
		if strings.TrimSpace(cfg.URL) == "" {
			return nil, errors.New("model URL is required for http mode")
		}
		return NewHTTPGenerator(cfg.URL, cfg.APIKey, cfg.Params), nil
	case "mock":
		return NewMockGenerator(), nil
	default:
		return nil, fmt.Errorf("unsupported model mode %q", cfg.Mode)
	}
}
