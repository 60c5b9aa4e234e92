package debate

import "fmt"

// State is the lifecycle state of a topic.
type State int

const (
	StateActive State = iota
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(b []byte) error {
	switch string(b) {
	case "active":
		*s = StateActive
	case "paused":
		*s = StatePaused
	default:
		return fmt.Errorf("unknown state %q", b)
	}
	return nil
}

// Transition is the outcome of evaluating the lifecycle after a roster change.
type Transition int

const (
	NoTransition Transition = iota
	Paused
	Resumed
)

// Lifecycle is the pause/resume state machine of one topic. It is not safe for
// concurrent use; the owning topic's mutex guards it.
type Lifecycle struct {
	state State
	// engaged is set once both sides have been populated at the same time.
	engaged bool
}

// State returns the current state.
func (l *Lifecycle) State() State {
	return l.state
}

// Evaluate applies the roster sizes observed right after a mutation and
// returns the transition that fired, if any.
func (l *Lifecycle) Evaluate(forCount, againstCount int) Transition {
	both := forCount > 0 && againstCount > 0
	switch l.state {
	case StateActive:
		if both {
			l.engaged = true
			return NoTransition
		}
		if l.engaged && (forCount > 0) != (againstCount > 0) {
			l.state = StatePaused
			return Paused
		}
	case StatePaused:
		if both {
			l.state = StateActive
			return Resumed
		}
	}
	return NoTransition
}

const resumedText = "The debate has resumed."

func pausedText(empty Side) string {
	return fmt.Sprintf("The debate has been paused because the %s side has no participants.", empty)
}
