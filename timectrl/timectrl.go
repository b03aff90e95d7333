// Package timectrl drives simulation time. One wall-clock tick advances
// simulation time by tick × warp; production listeners receive the
// simulated timestamp and the simulated delta, so their output is
// timestep-invariant under any warp factor.
package timectrl

import (
	"sync"
	"time"
)

// SimClock is read-only access to simulation time and the current warp
// factor. The environment service uses the warp rate to decide between
// direct and analytic evaluation.
type SimClock interface {
	// Now returns the current simulation time.
	Now() time.Time
	// WarpRate returns the current time-compression factor (1 = real time).
	WarpRate() float64
}

// TimeController advances simulation time and notifies listeners. It
// implements SimClock.
type TimeController struct {
	mu sync.RWMutex

	startTime   time.Time
	tick        time.Duration
	warp        float64
	currentTime time.Time

	listeners []func(simTime time.Time, simDelta time.Duration)
}

// NewTimeController constructs a controller starting at start, stepping
// by tick wall-clock intervals at the given warp factor.
func NewTimeController(start time.Time, tick time.Duration, warp float64) *TimeController {
	if warp <= 0 {
		warp = 1
	}
	return &TimeController{
		startTime:   start,
		tick:        tick,
		warp:        warp,
		currentTime: start,
	}
}

// Now returns the current simulation time. Implements SimClock.
func (tc *TimeController) Now() time.Time {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.currentTime
}

// WarpRate returns the current warp factor. Implements SimClock.
func (tc *TimeController) WarpRate() float64 {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.warp
}

// SetWarp changes the warp factor for subsequent ticks.
func (tc *TimeController) SetWarp(warp float64) {
	if warp <= 0 {
		warp = 1
	}
	tc.mu.Lock()
	tc.warp = warp
	tc.mu.Unlock()
}

// AddListener registers a callback invoked on every tick with the new
// simulation time and the simulated delta covered by the tick.
func (tc *TimeController) AddListener(fn func(simTime time.Time, simDelta time.Duration)) {
	tc.listeners = append(tc.listeners, fn)
}

// Step advances simulation time by one tick synchronously. Tests and the
// run loop share this path so a stepped simulation behaves exactly like a
// free-running one.
func (tc *TimeController) Step() time.Time {
	tc.mu.Lock()
	delta := time.Duration(float64(tc.tick) * tc.warp)
	tc.currentTime = tc.currentTime.Add(delta)
	simTime := tc.currentTime
	listeners := tc.listeners
	tc.mu.Unlock()

	for _, fn := range listeners {
		fn(simTime, delta)
	}
	return simTime
}

// Start runs the controller until the given amount of simulated time has
// elapsed (or forever when zero). The returned channel closes when the
// controller finishes.
func (tc *TimeController) Start(simDuration time.Duration) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)

		ticker := time.NewTicker(tc.tick)
		defer ticker.Stop()

		end := tc.startTime.Add(simDuration)
		for range ticker.C {
			simTime := tc.Step()
			if simDuration > 0 && !simTime.Before(end) {
				return
			}
		}
	}()
	return done
}
