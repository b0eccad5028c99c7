package ratelimit

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	attempts int
	resetAt  time.Time
}

// MemoryStore is the process-local fixed-window store. State is lost on
// restart.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	now     func() time.Time
}

// NewMemoryStore builds an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Check(_ context.Context, identity string, op Operation) (Result, error) {
	limit := Limits[op]

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	k := key(identity, op)

	entry, ok := s.entries[k]
	if !ok {
		entry = &memoryEntry{resetAt: now.Add(limit.Window)}
		s.entries[k] = entry
	}

	// Elapsed window: counter resets before the new attempt is evaluated.
	if now.After(entry.resetAt) {
		entry.attempts = 0
		entry.resetAt = now.Add(limit.Window)
	}

	if entry.attempts >= limit.MaxAttempts {
		return Result{Allowed: false, Remaining: 0, ResetAt: entry.resetAt}, nil
	}

	entry.attempts++
	return Result{
		Allowed:   true,
		Remaining: limit.MaxAttempts - entry.attempts,
		ResetAt:   entry.resetAt,
	}, nil
}

func (s *MemoryStore) Reset(_ context.Context, identity string, op Operation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key(identity, op))
	return nil
}
