package session

import (
	"context"
	"sync"
)

// Memory is an in-memory store. Sessions are lost on restart.
type Memory struct {
	mu   sync.RWMutex
	data map[string]Session
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]Session)}
}

// Get retrieves a session by id.
func (m *Memory) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.data[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

// Put stores a copy of s.
func (m *Memory) Put(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[s.ID] = *s
	return nil
}

// Delete removes a session by id.
func (m *Memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[id]; !ok {
		return ErrNotFound
	}
	delete(m.data, id)
	return nil
}

// Close is a no-op for the memory store.
func (m *Memory) Close() error {
	return nil
}
