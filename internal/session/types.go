package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Role identifies the speaker of a transcript turn.
type Role string

const (
	RoleHuman     Role = "human"
	RoleAssistant Role = "assistant"
)

var (
	ErrNotFound        = errors.New("session not found")
	ErrVersionConflict = errors.New("session version conflict")
)

// Turn is a single utterance in a conversation transcript.
type Turn struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Record is the persisted state of one conversation. Turns is append-only;
// Payload holds the most recent fully-validated travel request and stays nil
// until one has validated. Version supports conditional writes: a zero
// version means the record has never been stored.
type Record struct {
	Turns   []Turn          `json:"turns"`
	Payload json.RawMessage `json:"last_payload,omitempty"`
	Version int64           `json:"version"`
}

// Key builds the composite store key for a conversation.
func Key(userID, sessionID string) string {
	return userID + ":" + sessionID
}

// Store persists session records by key.
//
// Put is a conditional write: expected must match the stored version (zero to
// create a record that does not exist yet) or ErrVersionConflict is returned.
// A nil Payload in the written record never clears a previously stored
// payload.
type Store interface {
	Get(ctx context.Context, key string) (Record, error)
	Put(ctx context.Context, key string, rec Record, expected int64) error
	Close() error
}
