package conversation

import (
	"errors"
	"fmt"
)

// State is the controller's position in an exchange.
type State int

const (
	// AwaitingInput is the initial state: the next user turn may be
	// submitted.
	AwaitingInput State = iota
	// AwaitingResponse holds while the generation call is in flight.
	AwaitingResponse
)

func (s State) String() string {
	switch s {
	case AwaitingInput:
		return "awaiting_input"
	case AwaitingResponse:
		return "awaiting_response"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Event drives a Transition.
type Event int

const (
	// EventSubmit: a user turn was appended and the call started.
	EventSubmit Event = iota
	// EventCommitted: the reply was successful and appended.
	EventCommitted
	// EventRejected: the reply was discarded; the user turn stays.
	EventRejected
	// EventFailed: the call returned an error.
	EventFailed
)

func (e Event) String() string {
	switch e {
	case EventSubmit:
		return "submit"
	case EventCommitted:
		return "committed"
	case EventRejected:
		return "rejected"
	case EventFailed:
		return "failed"
	}
	return fmt.Sprintf("event(%d)", int(e))
}

// ErrInvalidTransition is returned for an event the state does not accept.
var ErrInvalidTransition = errors.New("invalid conversation transition")

// Transition is the pure state machine. There is no terminal state: every
// outcome of a call returns to AwaitingInput.
func Transition(s State, e Event) (State, error) {
	switch s {
	case AwaitingInput:
		if e == EventSubmit {
			return AwaitingResponse, nil
		}
	case AwaitingResponse:
		switch e {
		case EventCommitted, EventRejected, EventFailed:
			return AwaitingInput, nil
		}
	}
	return s, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, e, s)
}
