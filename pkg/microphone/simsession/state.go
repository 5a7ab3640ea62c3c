// Package simsession simulates the operating system's microphone-permission
// subsystem for hosts without a native audio-permission API.
//
// A Session keeps one permission decision, shows a single prompt while the
// decision is undetermined, and persists the answer so later requests resolve
// without prompting, the way the real platform behaves.
package simsession

import (
	"fmt"
	"time"
)

// State is the simulated platform's microphone permission state.
type State string

const (
	// StateNotDetermined means the user has not been asked yet.
	StateNotDetermined State = "not_determined"
	// StateGranted means the user allowed microphone access.
	StateGranted State = "granted"
	// StateDenied means the user refused microphone access.
	StateDenied State = "denied"
	// StateRestricted means a system policy forbids access. No prompt is
	// shown and requests resolve to false.
	StateRestricted State = "restricted"
)

// ParseState converts s to a State. The empty string is StateNotDetermined.
func ParseState(s string) (State, error) {
	switch State(s) {
	case "", StateNotDetermined:
		return StateNotDetermined, nil
	case StateGranted, StateDenied, StateRestricted:
		return State(s), nil
	default:
		return "", fmt.Errorf("unknown permission state %q", s)
	}
}

// Granted reports whether the state allows recording.
func (s State) Granted() bool {
	return s == StateGranted
}

// Determined reports whether the state resolves without a prompt.
func (s State) Determined() bool {
	return s != StateNotDetermined && s != ""
}

func stateFor(granted bool) State {
	if granted {
		return StateGranted
	}
	return StateDenied
}

// Record is the persisted permission state.
type Record struct {
	Microphone State     `yaml:"microphone"`
	UpdatedAt  time.Time `yaml:"updated_at,omitempty"`
}
