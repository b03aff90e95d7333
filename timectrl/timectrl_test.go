package timectrl

import (
	"testing"
	"time"
)

func TestStep_AdvancesByTickTimesWarp(t *testing.T) {
	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	tc := NewTimeController(start, time.Second, 50)

	tc.Step()
	tc.Step()

	expected := start.Add(100 * time.Second)
	if got := tc.Now(); !got.Equal(expected) {
		t.Fatalf("Now() = %v, want %v", got, expected)
	}
}

func TestStep_NotifiesListenersWithSimDelta(t *testing.T) {
	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	tc := NewTimeController(start, time.Second, 10)

	var gotTime time.Time
	var gotDelta time.Duration
	tc.AddListener(func(simTime time.Time, simDelta time.Duration) {
		gotTime = simTime
		gotDelta = simDelta
	})

	tc.Step()

	if !gotTime.Equal(start.Add(10 * time.Second)) {
		t.Errorf("listener time = %v, want %v", gotTime, start.Add(10*time.Second))
	}
	if gotDelta != 10*time.Second {
		t.Errorf("listener delta = %v, want 10s", gotDelta)
	}
}

func TestSetWarp_AppliesToSubsequentTicks(t *testing.T) {
	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	tc := NewTimeController(start, time.Second, 1)

	tc.Step()
	tc.SetWarp(1000)
	tc.Step()

	expected := start.Add(time.Second + 1000*time.Second)
	if got := tc.Now(); !got.Equal(expected) {
		t.Fatalf("Now() = %v, want %v", got, expected)
	}
	if tc.WarpRate() != 1000 {
		t.Errorf("WarpRate() = %v, want 1000", tc.WarpRate())
	}
}

func TestNewTimeController_ClampsNonPositiveWarp(t *testing.T) {
	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	tc := NewTimeController(start, time.Second, 0)
	if tc.WarpRate() != 1 {
		t.Fatalf("WarpRate() = %v, want 1", tc.WarpRate())
	}
}

func TestStart_RunsUntilSimDuration(t *testing.T) {
	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	tc := NewTimeController(start, time.Millisecond, 1000)

	done := tc.Start(5 * time.Second)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("controller did not finish in time")
	}

	if got := tc.Now(); got.Before(start.Add(5 * time.Second)) {
		t.Fatalf("Now() = %v, want at least %v", got, start.Add(5*time.Second))
	}
}
