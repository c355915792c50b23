package mqtt

import "fmt"

// State of the transport connection. The connection is a single logical
// actor; consumers observe explicit transitions instead of ad hoc events.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateReconnecting
	StateGaveUp
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateGaveUp:
		return "gave-up"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Transition is one state change. Attempt counts reconnect tries, Err carries
// the failure that caused the change, if any.
type Transition struct {
	From    State
	To      State
	Attempt int
	Err     error
}

func (t Transition) String() string {
	return fmt.Sprintf("%s->%s attempt=%d err=%v", t.From, t.To, t.Attempt, t.Err)
}
