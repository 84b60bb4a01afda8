package session

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

var testSeed = []Turn{
	{Role: RoleHuman, Text: "You are a travel assistant."},
	{Role: RoleAssistant, Text: "Hi! How can I help?"},
}

type failingStore struct {
	getErr error
	putErr error
}

func (f *failingStore) Get(context.Context, string) (Record, error) { return Record{}, f.getErr }
func (f *failingStore) Put(context.Context, string, Record, int64) error {
	return f.putErr
}
func (f *failingStore) Close() error { return nil }

func TestManagerLoadSeedsMissingSession(t *testing.T) {
	m := NewManager(NewInMemoryStore(), testSeed, nil)
	ctx := context.Background()

	first := m.Load(ctx, "u1", "s1")
	second := m.Load(ctx, "u2", "other")

	for _, rec := range []Record{first, second} {
		if rec.Version != 0 {
			t.Fatalf("seed Version = %d, want 0", rec.Version)
		}
		if rec.Payload != nil {
			t.Fatalf("seed Payload = %s, want nil", rec.Payload)
		}
		if len(rec.Turns) != len(testSeed) {
			t.Fatalf("seed turns = %d, want %d", len(rec.Turns), len(testSeed))
		}
		for i, turn := range rec.Turns {
			if turn != testSeed[i] {
				t.Fatalf("seed turn %d = %+v, want %+v", i, turn, testSeed[i])
			}
		}
	}
}

func TestManagerLoadFailOpenOnStoreError(t *testing.T) {
	m := NewManager(&failingStore{getErr: errors.New("store down")}, testSeed, nil)

	rec := m.Load(context.Background(), "u1", "s1")
	if len(rec.Turns) != len(testSeed) || rec.Version != 0 {
		t.Fatalf("Load() on store error = %+v, want fresh seed", rec)
	}
}

func TestManagerSaveSwallowsStoreError(t *testing.T) {
	m := NewManager(&failingStore{getErr: ErrNotFound, putErr: errors.New("store down")}, testSeed, nil)
	ctx := context.Background()

	base := m.Load(ctx, "u1", "s1")
	// Must not panic or propagate anything.
	m.Save(ctx, "u1", "s1", base, []Turn{{Role: RoleHuman, Text: "hi"}}, nil)
}

func TestManagerSaveRoundTrip(t *testing.T) {
	m := NewManager(NewInMemoryStore(), testSeed, nil)
	ctx := context.Background()

	base := m.Load(ctx, "u1", "s1")
	newTurns := []Turn{
		{Role: RoleHuman, Text: "hi"},
		{Role: RoleAssistant, Text: "hello"},
	}
	m.Save(ctx, "u1", "s1", base, newTurns, nil)

	got := m.Load(ctx, "u1", "s1")
	if len(got.Turns) != len(testSeed)+2 {
		t.Fatalf("turns after save = %d, want %d", len(got.Turns), len(testSeed)+2)
	}
	// Append-only: the previous transcript is a strict prefix.
	for i, turn := range base.Turns {
		if got.Turns[i] != turn {
			t.Fatalf("turn %d changed after save: %+v != %+v", i, got.Turns[i], turn)
		}
	}
	if got.Version != 1 {
		t.Fatalf("Version = %d, want 1", got.Version)
	}
}

func TestManagerSavePayloadMonotonicity(t *testing.T) {
	m := NewManager(NewInMemoryStore(), testSeed, nil)
	ctx := context.Background()
	payload := json.RawMessage(`{"destination":{"name":"Goa"}}`)

	base := m.Load(ctx, "u1", "s1")
	m.Save(ctx, "u1", "s1", base, []Turn{{Role: RoleHuman, Text: "turn 1"}}, payload)

	// A later turn with no payload must not erase the stored one.
	next := m.Load(ctx, "u1", "s1")
	m.Save(ctx, "u1", "s1", next, []Turn{{Role: RoleHuman, Text: "turn 2"}}, nil)

	got := m.Load(ctx, "u1", "s1")
	if string(got.Payload) != string(payload) {
		t.Fatalf("Payload = %s, want %s", got.Payload, payload)
	}
}

func TestManagerSaveMergesOnVersionConflict(t *testing.T) {
	store := NewInMemoryStore()
	m := NewManager(store, testSeed, nil)
	ctx := context.Background()

	base := m.Load(ctx, "u1", "s1")

	// A concurrent turn commits first against the same base version.
	m.Save(ctx, "u1", "s1", base, []Turn{
		{Role: RoleHuman, Text: "concurrent question"},
		{Role: RoleAssistant, Text: "concurrent answer"},
	}, nil)

	// Our save now conflicts and must merge instead of overwriting.
	m.Save(ctx, "u1", "s1", base, []Turn{
		{Role: RoleHuman, Text: "our question"},
		{Role: RoleAssistant, Text: "our answer"},
	}, nil)

	got := m.Load(ctx, "u1", "s1")
	if len(got.Turns) != len(testSeed)+4 {
		t.Fatalf("turns after merge = %d, want %d", len(got.Turns), len(testSeed)+4)
	}
	last := got.Turns[len(got.Turns)-1]
	if last.Text != "our answer" {
		t.Fatalf("last turn = %q, want %q", last.Text, "our answer")
	}
	prev := got.Turns[len(got.Turns)-3]
	if prev.Text != "concurrent answer" {
		t.Fatalf("merge lost the concurrent turn, got %q", prev.Text)
	}
}
