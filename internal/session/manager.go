package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"scicalc/internal/accumulator"
	"scicalc/internal/evaluator"
)

// Manager applies input events to stored sessions. Every read-modify-write
// cycle runs under one lock, so each session sees its events strictly in
// order.
type Manager struct {
	mu    sync.Mutex
	store Store
	now   func() time.Time
}

// NewManager creates a manager backed by store.
func NewManager(store Store) *Manager {
	return &Manager{store: store, now: time.Now}
}

// Create starts a new session with a cleared display.
func (m *Manager) Create(ctx context.Context, angle evaluator.AngleMode) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	s := &Session{
		ID:        uuid.NewString(),
		State:     accumulator.New(angle),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.store.Put(ctx, s); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return s, nil
}

// Open returns the session with id, creating it when it does not exist yet.
func (m *Manager) Open(ctx context.Context, id string, angle evaluator.AngleMode) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.store.Get(ctx, id)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	now := m.now().UTC()
	s = &Session{ID: id, State: accumulator.New(angle), CreatedAt: now, UpdatedAt: now}
	if err := m.store.Put(ctx, s); err != nil {
		return nil, fmt.Errorf("create session %s: %w", id, err)
	}
	return s, nil
}

// Get returns the session with id.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	return m.store.Get(ctx, id)
}

// Apply performs events on the session in order and saves the result. On an
// invalid event nothing is saved. The outcomes of all evaluations that ran
// are returned.
func (m *Manager) Apply(ctx context.Context, id string, events []accumulator.Event) (*Session, []evaluator.Outcome, error) {
	var outcomes []evaluator.Outcome
	s, err := m.Update(ctx, id, func(st accumulator.State) (accumulator.State, error) {
		next, outs, err := st.ApplyAll(events)
		outcomes = outs
		return next, err
	})
	return s, outcomes, err
}

// Step performs a single event and saves the result.
func (m *Manager) Step(ctx context.Context, id string, ev accumulator.Event) (*Session, *evaluator.Outcome, error) {
	var outcome *evaluator.Outcome
	s, err := m.Update(ctx, id, func(st accumulator.State) (accumulator.State, error) {
		next, out, err := st.Apply(ev)
		outcome = out
		return next, err
	})
	return s, outcome, err
}

// Delete removes the session with id.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Delete(ctx, id)
}

// Update runs fn on the stored state and saves what it returns. When fn
// fails the session is left untouched and returned as it was.
func (m *Manager) Update(ctx context.Context, id string, fn func(accumulator.State) (accumulator.State, error)) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := fn(s.State)
	if err != nil {
		return s, err
	}

	s.State = next
	s.UpdatedAt = m.now().UTC()
	if err := m.store.Put(ctx, s); err != nil {
		return nil, fmt.Errorf("save session %s: %w", id, err)
	}
	return s, nil
}
