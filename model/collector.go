package model

import "time"

// CollectorRecord is the per-collector state that survives vehicle
// load/unload and save/restore. It is owned exclusively by the collector it
// describes: only the production layer (geometry-derived writes) and the
// external reliability collaborator (forced failure) mutate it.
type CollectorRecord struct {
	ID        string
	VehicleID string
	PartID    string

	// Variant is the adapter variant name the collector was bound with.
	Variant string

	// NominalRate is the output at reference distance in EC/s. Immutable
	// after the first successful adapter initialization.
	NominalRate float64

	// PersistedExposure is the last-known-good exposure factor in [0,1].
	// It anchors both the analytic evaluation mode and the dormant
	// production path.
	PersistedExposure float64

	State       LifecycleState
	ActivatedAt time.Time

	// CurveOverride, when non-nil, wins over the adapter-discovered
	// degradation curve. Set only when restoring older save data that
	// carried its own curve.
	CurveOverride *DegradationCurve

	// Disabled marks a collector whose adapter failed to initialize; it
	// produces nothing for the rest of the session.
	Disabled bool
}

// HoursSinceActivation returns the elapsed simulation hours used to
// evaluate the degradation curve.
func (r *CollectorRecord) HoursSinceActivation(now time.Time) float64 {
	if r.ActivatedAt.IsZero() || now.Before(r.ActivatedAt) {
		return 0
	}
	return now.Sub(r.ActivatedAt).Hours()
}
