// Package statemachine provides a generic finite-state machine with an
// explicit edge table. Order and invoice aggregates declare their legal
// transitions once and check them centrally instead of scattering status
// ifs across call sites.
package statemachine

import (
	"fmt"

	"stockroom/internal/core/apperror"
)

// Edge is a single legal transition.
type Edge[S comparable] struct {
	From S
	To   S
}

// Machine holds the legal transitions for one aggregate type.
type Machine[S comparable] struct {
	entity   string
	edges    map[Edge[S]]struct{}
	terminal map[S]struct{}
}

// New creates a machine for the named aggregate with the given edges.
func New[S comparable](entity string, edges []Edge[S]) *Machine[S] {
	m := &Machine[S]{
		entity:   entity,
		edges:    make(map[Edge[S]]struct{}, len(edges)),
		terminal: make(map[S]struct{}),
	}
	for _, e := range edges {
		m.edges[e] = struct{}{}
	}
	m.markTerminals()
	return m
}

// markTerminals derives terminal states: states that appear as a target
// but never as a source.
func (m *Machine[S]) markTerminals() {
	sources := make(map[S]struct{})
	targets := make(map[S]struct{})
	for e := range m.edges {
		sources[e.From] = struct{}{}
		targets[e.To] = struct{}{}
	}
	for s := range targets {
		if _, ok := sources[s]; !ok {
			m.terminal[s] = struct{}{}
		}
	}
}

// CanTransition reports whether from→to is a legal edge.
func (m *Machine[S]) CanTransition(from, to S) bool {
	_, ok := m.edges[Edge[S]{From: from, To: to}]
	return ok
}

// Transition validates the edge and returns the new state, or an
// InvalidTransition error naming the aggregate, current state and action.
func (m *Machine[S]) Transition(from, to S, action string) (S, error) {
	if !m.CanTransition(from, to) {
		return from, apperror.NewInvalidTransition(m.entity, toString(from), action)
	}
	return to, nil
}

// Require fails with InvalidTransition unless the current state is one of
// the allowed states for the action. Used for guards that are not status
// changes themselves (line edits, receive, ship, delete).
func (m *Machine[S]) Require(current S, action string, allowed ...S) error {
	for _, s := range allowed {
		if current == s {
			return nil
		}
	}
	return apperror.NewInvalidTransition(m.entity, toString(current), action)
}

// IsTerminal reports whether the state has no outgoing edges.
func (m *Machine[S]) IsTerminal(s S) bool {
	_, ok := m.terminal[s]
	return ok
}

func toString[S comparable](s S) string {
	if str, ok := any(s).(interface{ String() string }); ok {
		return str.String()
	}
	return fmt.Sprintf("%v", s)
}
