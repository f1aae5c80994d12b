package seen

import (
	"context"
	"sync"
)

// MemoryStore keeps events in process memory; they are lost on restart.
type MemoryStore struct {
	mu     sync.RWMutex
	events map[string]Event
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{events: make(map[string]Event)}
}

// Record replaces the nick's previous event.
func (s *MemoryStore) Record(_ context.Context, event Event) error {
	if err := validate(event); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[Key(event.Nick)] = event
	return nil
}

// Last returns the nick's most recent event.
func (s *MemoryStore) Last(_ context.Context, nick string) (Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.events[Key(nick)]
	if !ok {
		return Event{}, ErrNotFound
	}
	return e, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}
