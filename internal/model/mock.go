package model

import (
	"context"
	"fmt"
	"strings"
)

// MockGenerator provides deterministic local replies when no generation
// endpoint is configured. When the user's message carries an embedded JSON
// object it is echoed back, so the extraction and planning path can be
// exercised end to end without a real model.
type MockGenerator struct{}

func NewMockGenerator() *MockGenerator { return &MockGenerator{} }

func (g *MockGenerator) Complete(ctx context.Context, prompt string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}
	return buildMockReply(prompt), nil
}

func buildMockReply(prompt string) string {
	msg := lastHumanMessage(prompt)
	if msg == "" {
		return "I'm listening. When are you planning to start your travel?"
	}

	if start, end := strings.IndexByte(msg, '{'), strings.LastIndexByte(msg, '}'); start >= 0 && end > start {
		return fmt.Sprintf("Great, I have everything I need. Here are your confirmed details:\n%s", msg[start:end+1])
	}

	return fmt.Sprintf("Got it: %s. When are you planning to start your travel?", msg)
}

// lastHumanMessage pulls the most recent user utterance out of the rendered
// prompt, dropping the trailing "Assistant:" cue.
func lastHumanMessage(prompt string) string {
	idx := strings.LastIndex(prompt, "\n\nHuman: ")
	if idx < 0 {
		return ""
	}
	msg := prompt[idx+len("\n\nHuman: "):]
	if cut := strings.Index(msg, "\n\nAssistant:"); cut >= 0 {
		msg = msg[:cut]
	}
	return strings.TrimSpace(msg)
}
