package statemachine

import (
	"context"
	"sync"
)

// Transition records one state change.
type Transition[S, E comparable] struct {
	From  S
	To    S
	Event E
}

// Hook observes committed transitions. Hooks run after the state has changed,
// outside the machine's lock, in registration order.
type Hook[S, E comparable] func(ctx context.Context, t Transition[S, E])

// Machine is a finite state machine over comparable state and event types.
// All methods are safe for concurrent use.
type Machine[S, E comparable] struct {
	mu      sync.RWMutex
	initial S
	current S
	table   map[S]map[E]S
	hooks   []Hook[S, E]
}

type Option[S, E comparable] func(*Machine[S, E])

// WithTransition lets event move the machine from one state to another.
// A later registration for the same (from, event) pair replaces the earlier one.
func WithTransition[S, E comparable](from S, event E, to S) Option[S, E] {
	return func(m *Machine[S, E]) {
		m.add(from, event, to)
	}
}

// WithTransitions registers event as leading to "to" from each of the given states.
func WithTransitions[S, E comparable](event E, to S, from ...S) Option[S, E] {
	return func(m *Machine[S, E]) {
		for _, f := range from {
			m.add(f, event, to)
		}
	}
}

func WithHook[S, E comparable](h Hook[S, E]) Option[S, E] {
	return func(m *Machine[S, E]) {
		if h != nil {
			m.hooks = append(m.hooks, h)
		}
	}
}

// New builds a machine starting in initial.
func New[S, E comparable](initial S, opts ...Option[S, E]) *Machine[S, E] {
	m := &Machine[S, E]{
		initial: initial,
		current: initial,
		table:   make(map[S]map[E]S),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Machine[S, E]) add(from S, event E, to S) {
	if _, ok := m.table[from]; !ok {
		m.table[from] = make(map[E]S)
	}
	m.table[from][event] = to
}

func (m *Machine[S, E]) Current() S {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Can reports whether event has a transition from the current state.
func (m *Machine[S, E]) Can(event E) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.table[m.current][event]
	return ok
}

// Fire applies event and returns the new state. Without a matching
// transition the state is unchanged and the error is *ErrNoTransition.
func (m *Machine[S, E]) Fire(ctx context.Context, event E) (S, error) {
	m.mu.Lock()
	from := m.current
	to, ok := m.table[from][event]
	if !ok {
		m.mu.Unlock()
		return from, &ErrNoTransition[S, E]{From: from, Event: event}
	}
	m.current = to
	hooks := m.hooks
	m.mu.Unlock()

	t := Transition[S, E]{From: from, To: to, Event: event}
	for _, h := range hooks {
		h(ctx, t)
	}
	return to, nil
}

// Reset returns the machine to its initial state without running hooks.
func (m *Machine[S, E]) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.initial
}
