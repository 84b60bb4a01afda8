package session

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/nvasudevan/tripflow/internal/observability"
)

// saveAttempts bounds the reload-and-reappend retries after a version
// conflict before the write is dropped.
const saveAttempts = 3

// Manager mediates all session record access for the dialogue engine.
//
// Load never fails the caller: a missing record and a store read error both
// degrade to a fresh seeded conversation, because losing conversational
// memory is recoverable while failing the turn is not. Save is
// fire-and-forget: store failures are logged and swallowed so that a persist
// problem never costs the user the reply they were owed.
type Manager struct {
	store   Store
	seed    []Turn
	metrics *observability.Metrics
}

func NewManager(store Store, seed []Turn, metrics *observability.Metrics) *Manager {
	return &Manager{store: store, seed: seed, metrics: metrics}
}

// Load returns the current record for the conversation, or the deterministic
// seed record (version zero) when none exists or the store is unavailable.
func (m *Manager) Load(ctx context.Context, userID, sessionID string) Record {
	rec, err := m.store.Get(ctx, Key(userID, sessionID))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Printf("session load failed for %s, starting fresh: %v", Key(userID, sessionID), err)
			m.countStoreError("get")
		}
		seed := make([]Turn, len(m.seed))
		copy(seed, m.seed)
		return Record{Turns: seed}
	}
	return rec
}

// Save appends newTurns to the conversation loaded as base and writes the
// result conditionally on base.Version. A non-nil payload replaces the stored
// one; nil leaves any previously stored payload untouched.
//
// On a version conflict the latest record is reloaded and only this turn's
// delta re-appended, so concurrent turns interleave instead of overwriting
// each other. After bounded attempts (or any other store error) the write is
// dropped.
func (m *Manager) Save(ctx context.Context, userID, sessionID string, base Record, newTurns []Turn, payload json.RawMessage) {
	key := Key(userID, sessionID)

	turns := make([]Turn, 0, len(base.Turns)+len(newTurns))
	turns = append(turns, base.Turns...)
	turns = append(turns, newTurns...)

	rec := Record{Turns: turns, Payload: payload}
	expected := base.Version

	for attempt := 0; attempt < saveAttempts; attempt++ {
		err := m.store.Put(ctx, key, rec, expected)
		if err == nil {
			return
		}
		if !errors.Is(err, ErrVersionConflict) {
			log.Printf("session save failed for %s, dropping write: %v", key, err)
			m.countStoreError("put")
			return
		}

		latest, gerr := m.store.Get(ctx, key)
		if gerr != nil {
			log.Printf("session save conflict reload failed for %s, dropping write: %v", key, gerr)
			m.countStoreError("get")
			return
		}

		merged := make([]Turn, 0, len(latest.Turns)+len(newTurns))
		merged = append(merged, latest.Turns...)
		merged = append(merged, newTurns...)
		rec.Turns = merged
		expected = latest.Version
	}

	log.Printf("session save for %s gave up after %d conflicts, dropping write", key, saveAttempts)
	m.countStoreError("conflict")
}

func (m *Manager) countStoreError(op string) {
	if m.metrics != nil {
		m.metrics.StoreErrors.WithLabelValues(op).Inc()
	}
}
