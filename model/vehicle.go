package model

import "gonum.org/v1/gonum/spatial/r3"

// Situation describes how a vehicle is currently supported.
type Situation string

const (
	SituationOrbiting Situation = "orbiting"
	SituationLanded   Situation = "landed"
)

// MotionSource selects how a vehicle's position is driven.
type MotionSource string

const (
	MotionSourceUnknown MotionSource = ""
	// MotionSourceTLE propagates the vehicle with SGP4 from two-line elements.
	MotionSourceTLE MotionSource = "tle"
	// MotionSourceFixed keeps the scenario-provided coordinates.
	MotionSourceFixed MotionSource = "fixed"
)

// Vehicle is one craft in the simulation. Position is kept in kilometres:
// ECI for orbiting vehicles, ECEF for landed ones. Only the environment
// service cares about the frame; collector geometry works in the vehicle's
// local frame.
type Vehicle struct {
	ID        string
	Name      string
	Situation Situation

	// Loaded marks the vehicle as under full per-tick simulation. Dormant
	// vehicles are evaluated from persisted scalars only.
	Loaded bool

	MotionSource MotionSource
	TLE1, TLE2   string
	PositionKm   r3.Vec
}

// Landed reports whether the vehicle rests on a surface.
func (v *Vehicle) Landed() bool {
	return v != nil && v.Situation == SituationLanded
}

// Part is a physical component mounted on a vehicle. Offset is the part's
// position in the vehicle's local frame (metres). BoundingRadius > 0 makes
// the part an occlusion candidate for other collectors on the same vehicle.
type Part struct {
	ID        string
	VehicleID string
	Name      string

	// ComponentType is the stable type identifier of the third-party
	// collector component carried by this part, used for adapter binding.
	// Empty for parts that are occluders only.
	ComponentType string

	OffsetM        r3.Vec
	BoundingRadius float64
}

// Occluder is a sphere that can block a collecting surface's view of the
// sun. PartID is set when the occluder is a physical part; scenery and
// terrain occluders leave it empty, which excludes them from persisted
// exposure tracking.
type Occluder struct {
	PartID  string
	Name    string
	CenterM r3.Vec
	Radius  float64
}

// SunContext is the read-only per-tick environment sample for a vehicle.
// SunlightFraction is 0 in full shadow, 1 in full sun, and fractional when
// the environment can only provide a time-averaged value (time
// compression).
type SunContext struct {
	SunDir           r3.Vec
	SunlightFraction float64
	FluxWm2          float64

	// Body names the star this context was computed against.
	Body string
}
