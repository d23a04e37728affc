package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMachine_HappyPath(t *testing.T) {
	m := NewMachine(3)

	steps := []struct {
		ev   Event
		want string
	}{
		{EventConnect, "connecting"},
		{EventConnected, "connected"},
		{EventDisconnected, "backoff(1)"},
		{EventRetry, "connecting"},
		{EventConnected, "connected"},
		{EventStop, "disconnected"},
	}
	for _, s := range steps {
		st, err := m.Apply(s.ev)
		require.NoError(t, err, "event %s", s.ev)
		assert.Equal(t, s.want, st.String(), "after %s", s.ev)
	}
}

func TestMachine_GivesUpAfterMaxAttempts(t *testing.T) {
	m := NewMachine(3)
	_, err := m.Apply(EventConnect)
	require.NoError(t, err)

	for attempt := 1; attempt < 3; attempt++ {
		st, err := m.Apply(EventError)
		require.NoError(t, err)
		assert.Equal(t, StateBackoff, st.State)
		assert.Equal(t, attempt, st.Attempt)
		_, err = m.Apply(EventRetry)
		require.NoError(t, err)
	}

	st, err := m.Apply(EventError)
	require.NoError(t, err)
	assert.Equal(t, StateDisconnected, st.State)
	assert.True(t, st.GaveUp)
	assert.Equal(t, 3, st.Attempt)

	// A fresh connect starts over.
	st, err = m.Apply(EventConnect)
	require.NoError(t, err)
	assert.Equal(t, Status{State: StateConnecting}, st)
}

func TestMachine_SuccessResetsAttempts(t *testing.T) {
	m := NewMachine(0)
	m.Apply(EventConnect)
	m.Apply(EventError)
	m.Apply(EventRetry)
	m.Apply(EventError)
	m.Apply(EventRetry)

	st, err := m.Apply(EventConnected)
	require.NoError(t, err)
	assert.Equal(t, Status{State: StateConnected}, st)
}

func TestMachine_UnlimitedAttempts(t *testing.T) {
	m := NewMachine(0)
	m.Apply(EventConnect)
	for range 50 {
		st, err := m.Apply(EventError)
		require.NoError(t, err)
		require.Equal(t, StateBackoff, st.State)
		m.Apply(EventRetry)
	}
}

func TestMachine_InvalidTransitions(t *testing.T) {
	tests := []struct {
		name  string
		setup []Event
		ev    Event
	}{
		{"connected while disconnected", nil, EventConnected},
		{"retry while disconnected", nil, EventRetry},
		{"connect while connecting", []Event{EventConnect}, EventConnect},
		{"retry while connected", []Event{EventConnect, EventConnected}, EventRetry},
		{"connected while backing off", []Event{EventConnect, EventError}, EventConnected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMachine(5)
			for _, ev := range tt.setup {
				_, err := m.Apply(ev)
				require.NoError(t, err)
			}
			before := m.Status()

			st, err := m.Apply(tt.ev)

			assert.ErrorIs(t, err, ErrInvalidTransition)
			assert.Equal(t, before, st)
			assert.Equal(t, before, m.Status())
		})
	}
}

func TestMachine_StopFromAnyState(t *testing.T) {
	for _, setup := range [][]Event{
		nil,
		{EventConnect},
		{EventConnect, EventConnected},
		{EventConnect, EventError},
	} {
		m := NewMachine(5)
		for _, ev := range setup {
			m.Apply(ev)
		}
		st, err := m.Apply(EventStop)
		require.NoError(t, err)
		assert.Equal(t, Status{State: StateDisconnected}, st)
	}
}
