package statemachine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockroom/internal/core/apperror"
)

type testStatus string

const (
	draft     testStatus = "DRAFT"
	sent      testStatus = "SENT"
	done      testStatus = "DONE"
	cancelled testStatus = "CANCELLED"
)

func newTestMachine() *Machine[testStatus] {
	return New("test_doc", []Edge[testStatus]{
		{From: draft, To: sent},
		{From: sent, To: done},
		{From: draft, To: cancelled},
		{From: sent, To: cancelled},
	})
}

func TestCanTransition(t *testing.T) {
	m := newTestMachine()

	assert.True(t, m.CanTransition(draft, sent))
	assert.True(t, m.CanTransition(sent, done))
	assert.False(t, m.CanTransition(draft, done), "skipping a state is not legal")
	assert.False(t, m.CanTransition(done, draft), "no edge out of a terminal state")
	assert.False(t, m.CanTransition(draft, draft), "self loop was never declared")
}

func TestTransition(t *testing.T) {
	m := newTestMachine()

	next, err := m.Transition(draft, sent, "send")
	require.NoError(t, err)
	assert.Equal(t, sent, next)

	next, err = m.Transition(done, sent, "send")
	require.Error(t, err)
	assert.Equal(t, done, next, "failed transition keeps the current state")

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvalidTransition, appErr.Code)
}

func TestRequire(t *testing.T) {
	m := newTestMachine()

	assert.NoError(t, m.Require(draft, "edit", draft))
	assert.NoError(t, m.Require(sent, "fulfill", sent, done))

	err := m.Require(done, "edit", draft)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvalidTransition, appErr.Code)
}

func TestIsTerminal(t *testing.T) {
	m := newTestMachine()

	assert.True(t, m.IsTerminal(done))
	assert.True(t, m.IsTerminal(cancelled))
	assert.False(t, m.IsTerminal(draft))
	assert.False(t, m.IsTerminal(sent))
}
