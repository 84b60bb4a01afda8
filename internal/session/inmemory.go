package session

import (
	"context"
	"sync"
)

// InMemoryStore is a simple in-process session store for local/dev use.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[string]Record)}
}

func (s *InMemoryStore) Get(_ context.Context, key string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[key]
	if !ok {
		return Record{}, ErrNotFound
	}
	return cloneRecord(rec), nil
}

func (s *InMemoryStore) Put(_ context.Context, key string, rec Record, expected int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.records[key]
	switch {
	case !exists && expected != 0:
		return ErrVersionConflict
	case exists && current.Version != expected:
		return ErrVersionConflict
	}

	stored := cloneRecord(rec)
	stored.Version = expected + 1
	if stored.Payload == nil && exists {
		stored.Payload = current.Payload
	}
	s.records[key] = stored
	return nil
}

func (s *InMemoryStore) Close() error { return nil }

func cloneRecord(rec Record) Record {
	c := rec
	c.Turns = make([]Turn, len(rec.Turns))
	copy(c.Turns, rec.Turns)
	if rec.Payload != nil {
		c.Payload = make([]byte, len(rec.Payload))
		copy(c.Payload, rec.Payload)
	}
	return c
}
