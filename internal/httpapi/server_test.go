package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/nvasudevan/tripflow/internal/config"
	"github.com/nvasudevan/tripflow/internal/dialogue"
	"github.com/nvasudevan/tripflow/internal/prompt"
	"github.com/nvasudevan/tripflow/internal/protocol"
	"github.com/nvasudevan/tripflow/internal/session"
)

type fakeEngine struct {
	resp dialogue.TurnResponse
	err  error
	last dialogue.TurnRequest
}

func (e *fakeEngine) ProcessTurn(_ context.Context, req dialogue.TurnRequest) (dialogue.TurnResponse, error) {
	e.last = req
	if e.err != nil {
		return dialogue.TurnResponse{}, e.err
	}
	return e.resp, nil
}

func newTestServer(t *testing.T, engine Engine) *httptest.Server {
	t.Helper()
	sessions := session.NewManager(session.NewInMemoryStore(), prompt.Seed(), nil)
	srv := New(config.Config{}, engine, sessions)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func postTurn(t *testing.T, ts *httptest.Server, body string) *http.Response {
	t.Helper()
	res, err := http.Post(ts.URL+"/v1/turns", "application/json", bytes.NewReader([]byte(body)))
	if err != nil {
		t.Fatalf("POST /v1/turns error = %v", err)
	}
	return res
}

func TestTurnEndpoint(t *testing.T) {
	engine := &fakeEngine{resp: dialogue.TurnResponse{
		Reply:               "Hello! When are you travelling?",
		ConversationHistory: "\n\nHuman: hi\n\nAssistant: Hello! When are you travelling?",
		ModelInput:          "\n\nHuman: hi\n\nAssistant:",
	}}
	ts := newTestServer(t, engine)

	res := postTurn(t, ts, `{"message":"hi","user_id":"u1","session_id":"s1"}`)
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.StatusCode)
	}

	var out map[string]any
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out["reply"] != engine.resp.Reply {
		t.Fatalf("reply = %v, want %q", out["reply"], engine.resp.Reply)
	}
	if _, ok := out["conversation_history"]; !ok {
		t.Fatalf("response missing conversation_history: %v", out)
	}
	if _, ok := out["model_input"]; !ok {
		t.Fatalf("response missing model_input: %v", out)
	}
	if engine.last.UserID != "u1" || engine.last.SessionID != "s1" {
		t.Fatalf("engine request = %+v", engine.last)
	}
}

func TestTurnEndpointRejectsEmptyMessage(t *testing.T) {
	ts := newTestServer(t, &fakeEngine{})

	for _, body := range []string{`{}`, `{"message":"  "}`, ``} {
		res := postTurn(t, ts, body)
		res.Body.Close()
		if res.StatusCode != http.StatusBadRequest {
			t.Fatalf("status for %q = %d, want 400", body, res.StatusCode)
		}
	}
}

func TestTurnEndpointErrorMapping(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"generation", dialogue.ErrGeneration, "generation_failed"},
		{"plan", dialogue.ErrPlan, "plan_failed"},
	}
	for _, tc := range cases {
		ts := newTestServer(t, &fakeEngine{err: tc.err})

		res := postTurn(t, ts, `{"message":"hi"}`)
		var out errorResponse
		if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
			t.Fatalf("%s: decode error body: %v", tc.name, err)
		}
		res.Body.Close()

		if res.StatusCode != http.StatusBadGateway {
			t.Fatalf("%s: status = %d, want 502", tc.name, res.StatusCode)
		}
		if out.Code != tc.wantCode {
			t.Fatalf("%s: code = %q, want %q", tc.name, out.Code, tc.wantCode)
		}
		if out.Error == "" {
			t.Fatalf("%s: error message missing", tc.name)
		}
	}
}

func TestGetSessionReturnsSeedForUnknown(t *testing.T) {
	ts := newTestServer(t, &fakeEngine{})

	res, err := http.Get(ts.URL + "/v1/sessions/u1/s1")
	if err != nil {
		t.Fatalf("GET session error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.StatusCode)
	}

	var out map[string]any
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	history, _ := out["conversation_history"].(string)
	if !strings.Contains(history, prompt.Greeting) {
		t.Fatalf("history for fresh session missing greeting: %q", history)
	}
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t, &fakeEngine{})
	for _, path := range []string{"/healthz", "/readyz"} {
		res, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s error = %v", path, err)
		}
		res.Body.Close()
		if res.StatusCode != http.StatusOK {
			t.Fatalf("GET %s status = %d, want 200", path, res.StatusCode)
		}
	}
}

func TestChatWSRoundTrip(t *testing.T) {
	engine := &fakeEngine{resp: dialogue.TurnResponse{
		Reply:               "Hello!",
		ConversationHistory: "\n\nHuman: hi\n\nAssistant: Hello!",
	}}
	ts := newTestServer(t, engine)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/chat/ws"
	conn, res, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("ws dial error = %v", err)
	}
	if res != nil {
		res.Body.Close()
	}
	defer conn.Close()

	if err := conn.WriteJSON(protocol.UserTurn{
		Type:      protocol.TypeUserTurn,
		UserID:    "u1",
		SessionID: "s1",
		Message:   "hi",
	}); err != nil {
		t.Fatalf("ws write error = %v", err)
	}

	var reply protocol.AssistantReply
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("ws read error = %v", err)
	}
	if reply.Type != protocol.TypeAssistantReply || reply.Reply != "Hello!" {
		t.Fatalf("ws reply = %+v", reply)
	}

	// An invalid frame produces an error event, not a dropped connection.
	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"bogus"}`)); err != nil {
		t.Fatalf("ws write error = %v", err)
	}
	var event protocol.ErrorEvent
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("ws read error = %v", err)
	}
	if event.Type != protocol.TypeErrorEvent || event.Code != "invalid_frame" {
		t.Fatalf("ws error event = %+v", event)
	}
}
