package model

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTTPGeneratorWireShape(t *testing.T) {
	var got completionRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", ct)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer key-1" {
			t.Errorf("Authorization = %q, want bearer token", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"completion":"  Hello there.  "}`))
	}))
	defer ts.Close()

	g := NewHTTPGenerator(ts.URL, "key-1", Params{
		MaxTokens:     1024,
		Temperature:   0.7,
		StopSequences: []string{"\n\nHuman:"},
	})

	reply, err := g.Complete(context.Background(), "\n\nHuman: hi\n\nAssistant:")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if reply != "Hello there." {
		t.Fatalf("reply = %q, want trimmed completion", reply)
	}

	if got.Prompt != "\n\nHuman: hi\n\nAssistant:" {
		t.Fatalf("prompt = %q, want the rendered prompt", got.Prompt)
	}
	if got.MaxTokens != 1024 || got.Temperature != 0.7 {
		t.Fatalf("params = %d/%v, want 1024/0.7", got.MaxTokens, got.Temperature)
	}
	if len(got.StopSequences) != 1 || got.StopSequences[0] != "\n\nHuman:" {
		t.Fatalf("stop sequences = %v, want the human delimiter", got.StopSequences)
	}
}

func TestHTTPGeneratorErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	g := NewHTTPGenerator(ts.URL, "", Params{})
	_, err := g.Complete(context.Background(), "prompt")
	if err == nil {
		t.Fatalf("Complete() expected error for status 503")
	}
	if !strings.Contains(err.Error(), "503") {
		t.Fatalf("error = %v, want status in message", err)
	}
}

func TestMockGeneratorEchoesEmbeddedObject(t *testing.T) {
	g := NewMockGenerator()
	prompt := "\n\nHuman: here you go {\"destination\":{\"name\":\"Goa\"}}\n\nAssistant:"

	reply, err := g.Complete(context.Background(), prompt)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if !strings.Contains(reply, `{"destination":{"name":"Goa"}}`) {
		t.Fatalf("reply = %q, want embedded object echoed", reply)
	}
}

func TestMockGeneratorPlainMessage(t *testing.T) {
	g := NewMockGenerator()
	reply, err := g.Complete(context.Background(), "\n\nHuman: hi\n\nAssistant:")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if !strings.Contains(reply, "hi") {
		t.Fatalf("reply = %q, want it to acknowledge the message", reply)
	}
}

func TestNewGeneratorModes(t *testing.T) {
	if _, err := NewGenerator(Config{Mode: "http"}); err == nil {
		t.Fatalf("NewGenerator(http, no URL) expected error")
	}
	if _, err := NewGenerator(Config{Mode: "teapot"}); err == nil {
		t.Fatalf("NewGenerator(unknown mode) expected error")
	}

	g, err := NewGenerator(Config{Mode: "auto"})
	if err != nil {
		t.Fatalf("NewGenerator(auto) error = %v", err)
	}
	if _, ok := g.(*MockGenerator); !ok {
		t.Fatalf("auto mode without URL = %T, want mock", g)
	}

	g, err = NewGenerator(Config{Mode: "auto", URL: "http://example.test"})
	if err != nil {
		t.Fatalf("NewGenerator(auto with URL) error = %v", err)
	}
	if _, ok := g.(*HTTPGenerator); !ok {
		t.Fatalf("auto mode with URL = %T, want http", g)
	}
}
