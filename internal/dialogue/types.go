package dialogue

import (
	"encoding/json"
	"errors"

	"github.com/nvasudevan/tripflow/internal/payload"
)

// Defaults applied when the inbound request leaves identifiers empty.
const (
	DefaultUserID    = "anonymous"
	DefaultSessionID = "default-session"
)

// Fatal turn failures. Everything else the engine encounters degrades into
// "continue the conversation", but with no generated reply or no plan there
// is nothing graceful left to return.
var (
	// ErrGeneration marks a failed text-generation call.
	ErrGeneration = errors.New("text generation failed")
	// ErrPlan marks a failed downstream plan call after a complete payload
	// was extracted. Kept distinct from ErrGeneration so clients can tell
	// "the assistant failed" from "the trip could not be planned".
	ErrPlan = errors.New("plan generation failed")
)

// TurnRequest is one inbound user message.
type TurnRequest struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// TurnResponse is the outcome of processing one turn.
type TurnResponse struct {
	// Reply is the raw assistant text for this turn.
	Reply string `json:"reply"`
	// Payload is the turn's best-known travel request: the object extracted
	// this turn (complete or not), else the last fully-validated one.
	Payload json.RawMessage `json:"payload,omitempty"`
	// ConversationHistory is the full rendered transcript including this turn.
	ConversationHistory string `json:"conversation_history"`
	// ModelInput is the exact prompt sent to generation.
	ModelInput string `json:"model_input"`
	// PlanResult carries the planner's verbatim response when completion
	// triggered.
	PlanResult string `json:"getPlanResult,omitempty"`

	Outcome payload.Outcome `json:"-"`
}
