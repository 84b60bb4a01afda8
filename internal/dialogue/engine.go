// Package dialogue runs the per-turn slot-filling pipeline: reconstruct the
// conversation, generate the next assistant turn, extract and validate any
// embedded travel request, and decide between triggering the planner and
// persisting partial progress.
package dialogue

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/nvasudevan/tripflow/internal/model"
	"github.com/nvasudevan/tripflow/internal/observability"
	"github.com/nvasudevan/tripflow/internal/payload"
	"github.com/nvasudevan/tripflow/internal/planner"
	"github.com/nvasudevan/tripflow/internal/policy"
	"github.com/nvasudevan/tripflow/internal/prompt"
	"github.com/nvasudevan/tripflow/internal/session"
)

// Engine wires the collaborators of one turn. It holds no per-session state:
// the state machine position is re-derived every turn from the extraction and
// validation outcome, and the session record stores only transcript and last
// valid payload.
type Engine struct {
	sessions  *session.Manager
	generator model.Generator
	planner   planner.Client
	metrics   *observability.Metrics
}

func NewEngine(sessions *session.Manager, generator model.Generator, plannerClient planner.Client, metrics *observability.Metrics) *Engine {
	return &Engine{
		sessions:  sessions,
		generator: generator,
		planner:   plannerClient,
		metrics:   metrics,
	}
}

// ProcessTurn handles one inbound message end to end. Only generation and
// planner failures surface as errors; store failures degrade inside the
// session manager and extraction misses are normal flow.
func (e *Engine) ProcessTurn(ctx context.Context, req TurnRequest) (TurnResponse, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		userID = DefaultUserID
	}
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = DefaultSessionID
	}

	redacted, _ := policy.Redact(req.Message)
	log.Printf("turn for %s: %s", session.Key(userID, sessionID), redacted)

	base := e.sessions.Load(ctx, userID, sessionID)
	fullPrompt := prompt.WithCue(prompt.Render(base.Turns), req.Message)

	genStart := time.Now()
	reply, err := e.generator.Complete(ctx, fullPrompt)
	e.metrics.ObserveGenerationLatency(time.Since(genStart))
	if err != nil {
		e.metrics.TurnErrors.WithLabelValues("generation").Inc()
		return TurnResponse{}, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	now := time.Now().UTC()
	newTurns := []session.Turn{
		{Role: session.RoleHuman, Text: req.Message, CreatedAt: now},
		{Role: session.RoleAssistant, Text: reply, CreatedAt: now},
	}

	all := make([]session.Turn, 0, len(base.Turns)+len(newTurns))
	all = append(all, base.Turns...)
	all = append(all, newTurns...)

	ext := payload.Extract(reply)
	e.metrics.TurnsTotal.WithLabelValues(ext.Outcome.String()).Inc()

	resp := TurnResponse{
		Reply:               reply,
		ConversationHistory: prompt.Render(all),
		ModelInput:          fullPrompt,
		Outcome:             ext.Outcome,
	}

	if ext.Outcome == payload.OutcomeComplete {
		// Persist before planning: a complete payload survives a failed plan
		// call, so the next turn can trigger planning again.
		e.sessions.Save(ctx, userID, sessionID, base, newTurns, ext.Object)
		resp.Payload = ext.Object

		planStart := time.Now()
		result, err := e.planner.GetPlan(ctx, ext.Object)
		e.metrics.ObservePlanLatency(time.Since(planStart))
		if err != nil {
			e.metrics.TurnErrors.WithLabelValues("plan").Inc()
			return TurnResponse{}, fmt.Errorf("%w: %v", ErrPlan, err)
		}
		resp.PlanResult = result
		return resp, nil
	}

	if len(ext.Missing) > 0 {
		log.Printf("payload for %s incomplete, missing keys: %s", session.Key(userID, sessionID), strings.Join(ext.Missing, ", "))
	}

	// Incomplete objects are never promoted to the stored payload; the nil
	// payload leaves any previously validated one in place.
	e.sessions.Save(ctx, userID, sessionID, base, newTurns, nil)

	resp.Payload = ext.Object
	if resp.Payload == nil {
		resp.Payload = base.Payload
	}
	return resp, nil
}
