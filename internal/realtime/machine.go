// Package realtime keeps a websocket connection to the server open and
// delivers pushed task changes and notifications.
package realtime

import (
	"errors"
	"fmt"
)

// State is the connection state.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateBackoff
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateBackoff:
		return "backoff"
	default:
		return "disconnected"
	}
}

// Event drives a state transition.
type Event int

const (
	EventConnect      Event = iota // start connecting
	EventConnected                 // dial succeeded
	EventDisconnected              // established connection dropped
	EventError                     // dial failed
	EventRetry                     // backoff delay elapsed
	EventStop                      // caller shut down
)

func (e Event) String() string {
	switch e {
	case EventConnect:
		return "connect"
	case EventConnected:
		return "connected"
	case EventDisconnected:
		return "disconnected"
	case EventError:
		return "error"
	case EventRetry:
		return "retry"
	case EventStop:
		return "stop"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

// ErrInvalidTransition is returned for an event the current state does not accept.
var ErrInvalidTransition = errors.New("invalid transition")

// Status is a snapshot of the machine.
type Status struct {
	State State
	// Attempt counts consecutive failures; it is the n of Backoff(n).
	Attempt int
	// GaveUp is set when the machine stopped retrying after too many failures.
	GaveUp bool
}

func (s Status) String() string {
	switch {
	case s.State == StateBackoff:
		return fmt.Sprintf("backoff(%d)", s.Attempt)
	case s.GaveUp:
		return "disconnected (gave up)"
	default:
		return s.State.String()
	}
}

// Machine is the reconnect state machine. It is not safe for concurrent use.
type Machine struct {
	maxAttempts int
	status      Status
}

// NewMachine creates a machine that gives up after maxAttempts consecutive
// failed dials. maxAttempts <= 0 retries forever.
func NewMachine(maxAttempts int) *Machine {
	return &Machine{maxAttempts: maxAttempts}
}

// Status returns the current snapshot.
func (m *Machine) Status() Status {
	return m.status
}

// Apply performs the transition for ev. Unaccepted events leave the state
// unchanged and return ErrInvalidTransition.
func (m *Machine) Apply(ev Event) (Status, error) {
	s := m.status

	if ev == EventStop {
		m.status = Status{State: StateDisconnected}
		return m.status, nil
	}

	switch {
	case s.State == StateDisconnected && ev == EventConnect:
		m.status = Status{State: StateConnecting}

	case s.State == StateConnecting && ev == EventConnected:
		m.status = Status{State: StateConnected}

	case s.State == StateConnecting && ev == EventError:
		attempt := s.Attempt + 1
		if m.maxAttempts > 0 && attempt >= m.maxAttempts {
			m.status = Status{State: StateDisconnected, Attempt: attempt, GaveUp: true}
		} else {
			m.status = Status{State: StateBackoff, Attempt: attempt}
		}

	case s.State == StateConnected && (ev == EventDisconnected || ev == EventError):
		m.status = Status{State: StateBackoff, Attempt: 1}

	case s.State == StateBackoff && ev == EventRetry:
		m.status = Status{State: StateConnecting, Attempt: s.Attempt}

	default:
		return s, fmt.Errorf("%w: %s in state %s", ErrInvalidTransition, ev, s)
	}
	return m.status, nil
}
