package core

import (
	"time"

	"github.com/helioworks/solararray-simulator/model"
)

// CurveSource resolves a variant's reference degradation curve for
// vehicles that are not simulated. Curve shape is not expected to vary at
// runtime, so the never-simulated reference instance's curve is used for
// every collector of the variant.
type CurveSource func(variant string) *model.DegradationCurve

// BackgroundProducer is the dormant-vehicle production path. It operates
// on persisted scalars only: no adapter, no geometry. The same persisted
// exposure semantics anchor the loaded analytic path and this one, so a
// vehicle transitioning between loaded and dormant sees no output
// discontinuity.
type BackgroundProducer struct {
	store  *Store
	ledger EnergyLedger
	curves CurveSource
}

// NewBackgroundProducer wires the dormant path.
func NewBackgroundProducer(store *Store, ledger EnergyLedger, curves CurveSource) *BackgroundProducer {
	return &BackgroundProducer{store: store, ledger: ledger, curves: curves}
}

// ProcessVehicle evaluates every collector of a dormant vehicle for the
// elapsed interval and deposits the results.
func (bp *BackgroundProducer) ProcessVehicle(vehicleID string, now time.Time, elapsed time.Duration, sun model.SunContext) {
	if elapsed <= 0 {
		return
	}
	for _, rec := range bp.store.RecordsForVehicle(vehicleID) {
		var curve *model.DegradationCurve
		if rec.CurveOverride != nil {
			curve = rec.CurveOverride
		} else if bp.curves != nil {
			curve = bp.curves(rec.Variant)
		}
		rate := BackgroundRate(rec, curve, sun, now)
		if rate > 0 {
			bp.ledger.Produce(vehicleID, rate*elapsed.Seconds(), rec.ID)
		}
	}
}

// BackgroundRate computes a dormant collector's output in EC/s from
// persisted state alone. Matches the loaded analytic-mode formula so the
// two paths agree for identical persisted state and environment.
func BackgroundRate(rec *model.CollectorRecord, curve *model.DegradationCurve, sun model.SunContext, now time.Time) float64 {
	if rec == nil || rec.Disabled || !rec.State.Producing() {
		return 0
	}
	if sun.SunlightFraction <= 0 {
		return 0
	}

	wear := curve.Evaluate(rec.HoursSinceActivation(now))
	fluxScalar := sun.FluxWm2 / ReferenceFluxWm2
	return rec.NominalRate * rec.PersistedExposure * fluxScalar * wear
}

// ToggleDormantState applies the only legal externally-triggered
// transition for a dormant vehicle: a persisted-state flip between
// Retracted and Extended/ExtendedFixed. retractable decides which
// extended state the collector latches into, extendable gates the whole
// operation.
func ToggleDormantState(rec *model.CollectorRecord, extend, extendable, retractable bool) bool {
	if rec == nil || !extendable {
		return false
	}
	if extend {
		if rec.State != model.StateRetracted {
			return false
		}
		if retractable {
			rec.State = model.StateExtended
		} else {
			rec.State = model.StateExtendedFixed
		}
		return true
	}
	if rec.State != model.StateExtended || !retractable {
		return false
	}
	rec.State = model.StateRetracted
	return true
}
