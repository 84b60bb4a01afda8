package protocol

import (
	"errors"
	"testing"
)

func TestParseClientMessageUserTurn(t *testing.T) {
	raw := []byte(`{"type":"user_turn","user_id":"u1","session_id":"s1","message":"hi"}`)
	msg, err := ParseClientMessage(raw)
	if err != nil {
		t.Fatalf("ParseClientMessage() error = %v", err)
	}
	if msg.UserID != "u1" || msg.SessionID != "s1" || msg.Message != "hi" {
		t.Fatalf("parsed turn = %+v", msg)
	}
}

func TestParseClientMessageRejectsEmptyMessage(t *testing.T) {
	if _, err := ParseClientMessage([]byte(`{"type":"user_turn","message":""}`)); err == nil {
		t.Fatalf("expected error for empty message")
	}
}

func TestParseClientMessageUnsupportedType(t *testing.T) {
	_, err := ParseClientMessage([]byte(`{"type":"assistant_reply"}`))
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("error = %v, want ErrUnsupportedType", err)
	}
}

func TestParseClientMessageInvalidJSON(t *testing.T) {
	if _, err := ParseClientMessage([]byte(`not-json`)); err == nil {
		t.Fatalf("expected error for invalid envelope")
	}
}
