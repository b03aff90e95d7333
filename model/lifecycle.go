package model

import "fmt"

// LifecycleState is the normalized deployment state of a collector as
// reported by its adapter. Extending/Retracting are transient animation
// states owned by the underlying component; the production layer only
// observes them.
type LifecycleState int

const (
	// StateUnknown is the diagnostic sink for native states the adapter
	// cannot classify. It is never treated as a producing state.
	StateUnknown LifecycleState = iota
	StateRetracted
	StateExtending
	StateExtended
	// StateExtendedFixed is an extended collector that cannot retract again.
	StateExtendedFixed
	StateRetracting
	// StateStatic is the fixed terminal state of non-deployable variants.
	StateStatic
	StateBroken
	// StateFailure is forced by the external reliability collaborator,
	// as opposed to StateBroken which the component reports itself.
	StateFailure
)

var lifecycleTokens = map[LifecycleState]string{
	StateUnknown:       "unknown",
	StateRetracted:     "retracted",
	StateExtending:     "extending",
	StateExtended:      "extended",
	StateExtendedFixed: "extended_fixed",
	StateRetracting:    "retracting",
	StateStatic:        "static",
	StateBroken:        "broken",
	StateFailure:       "failure",
}

var lifecycleFromToken = func() map[string]LifecycleState {
	m := make(map[string]LifecycleState, len(lifecycleTokens))
	for s, tok := range lifecycleTokens {
		m[tok] = s
	}
	return m
}()

// String returns the stable persistence token for the state.
func (s LifecycleState) String() string {
	if tok, ok := lifecycleTokens[s]; ok {
		return tok
	}
	return "unknown"
}

// Producing reports whether a collector in this state is allowed to
// generate output at all.
func (s LifecycleState) Producing() bool {
	switch s {
	case StateExtended, StateExtendedFixed, StateStatic:
		return true
	default:
		return false
	}
}

// ParseLifecycleState maps a persistence token back to a state. An
// unrecognized token yields StateUnknown together with an error so the
// caller can log the bad save data; it never coerces to a producing state.
func ParseLifecycleState(token string) (LifecycleState, error) {
	if s, ok := lifecycleFromToken[token]; ok {
		return s, nil
	}
	return StateUnknown, fmt.Errorf("unknown lifecycle token %q", token)
}

// MarshalText implements encoding.TextMarshaler.
func (s LifecycleState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
