// Package protocol defines the websocket chat message envelopes.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// MessageType identifies websocket payload variants.
type MessageType string

const (
	TypeUserTurn       MessageType = "user_turn"
	TypeAssistantReply MessageType = "assistant_reply"
	TypeErrorEvent     MessageType = "error_event"
)

var ErrUnsupportedType = errors.New("unsupported message type")

type Envelope struct {
	Type MessageType `json:"type"`
}

// UserTurn is one inbound chat message. Empty identifiers fall back to the
// service defaults, but the message itself is mandatory.
type UserTurn struct {
	Type      MessageType `json:"type"`
	UserID    string      `json:"user_id,omitempty"`
	SessionID string      `json:"session_id,omitempty"`
	Message   string      `json:"message"`
}

// AssistantReply carries one processed turn back to the client.
type AssistantReply struct {
	Type                MessageType     `json:"type"`
	SessionID           string          `json:"session_id"`
	Reply               string          `json:"reply"`
	Payload             json.RawMessage `json:"payload,omitempty"`
	ConversationHistory string          `json:"conversation_history"`
	PlanResult          string          `json:"getPlanResult,omitempty"`
}

// ErrorEvent reports a fatal turn failure to the client.
type ErrorEvent struct {
	Type   MessageType `json:"type"`
	Code   string      `json:"code"`
	Detail string      `json:"detail"`
}

// ParseClientMessage decodes and validates an inbound chat frame.
func ParseClientMessage(raw []byte) (UserTurn, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return UserTurn{}, fmt.Errorf("invalid envelope: %w", err)
	}

	switch env.Type {
	case TypeUserTurn:
		var msg UserTurn
		if err := json.Unmarshal(raw, &msg); err != nil {
			return UserTurn{}, err
		}
		if msg.Message == "" {
			return UserTurn{}, errors.New("invalid user_turn: empty message")
		}
		return msg, nil
	default:
		return UserTurn{}, ErrUnsupportedType
	}
}
