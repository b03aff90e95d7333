package model

import "testing"

func TestParseLifecycleState_RoundTrip(t *testing.T) {
	states := []LifecycleState{
		StateUnknown, StateRetracted, StateExtending, StateExtended,
		StateExtendedFixed, StateRetracting, StateStatic, StateBroken, StateFailure,
	}
	for _, s := range states {
		parsed, err := ParseLifecycleState(s.String())
		if err != nil {
			t.Fatalf("ParseLifecycleState(%q) returned error: %v", s.String(), err)
		}
		if parsed != s {
			t.Errorf("round trip of %v gave %v", s, parsed)
		}
	}
}

func TestParseLifecycleState_InvalidToken(t *testing.T) {
	s, err := ParseLifecycleState("deployed-and-on-fire")
	if err == nil {
		t.Fatal("expected error for invalid token")
	}
	if s != StateUnknown {
		t.Errorf("invalid token must map to StateUnknown, got %v", s)
	}
	if s.Producing() {
		t.Error("StateUnknown must never be a producing state")
	}
}

func TestLifecycleState_Producing(t *testing.T) {
	producing := map[LifecycleState]bool{
		StateExtended:      true,
		StateExtendedFixed: true,
		StateStatic:        true,
		StateUnknown:       false,
		StateRetracted:     false,
		StateExtending:     false,
		StateRetracting:    false,
		StateBroken:        false,
		StateFailure:       false,
	}
	for s, want := range producing {
		if got := s.Producing(); got != want {
			t.Errorf("%v.Producing() = %v, want %v", s, got, want)
		}
	}
}
