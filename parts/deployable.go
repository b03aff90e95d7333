// Package parts contains the third-party collector components this
// simulator integrates with. Each type mimics the public surface of one
// vendor's implementation: its own state representation, animation
// machinery, and energy-output path. The adapter layer normalizes these
// behind a single capability interface and suppresses the native output.
package parts

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// DeployState is the deployable array's native state enum.
type DeployState int

const (
	PanelRetracted DeployState = iota
	PanelExtending
	PanelExtended
	PanelRetracting
	PanelBroken
)

// DeployableArray is a retractable, optionally sun-tracking panel with a
// single collecting surface. The vendor exposes its rate field directly,
// so the adapter can zero it to take over production.
type DeployableArray struct {
	// ChargeRate is the vendor's own output in EC/s. The adapter caches
	// and zeroes it during initialization.
	ChargeRate float64

	State DeployState

	// SurfaceNormal is the current facing of the collecting surface in
	// the vehicle's local frame. The vendor's tracking code rotates it
	// about PivotAxis.
	SurfaceNormal r3.Vec
	PivotAxis     r3.Vec
	Tracking      bool

	// Retractable is false for arrays that latch once extended.
	Retractable bool

	// AnimationSecs is the duration of the extend/retract animation.
	AnimationSecs float64

	// TrackRateRadPerSec bounds how fast the pivot slews.
	TrackRateRadPerSec float64

	animRemaining float64
}

// Deploy starts the extend animation if the panel is retracted.
func (p *DeployableArray) Deploy() {
	if p.State != PanelRetracted {
		return
	}
	p.State = PanelExtending
	p.animRemaining = p.AnimationSecs
}

// Retract starts the retract animation if the panel is extended and the
// hinge supports it.
func (p *DeployableArray) Retract() {
	if p.State != PanelExtended || !p.Retractable {
		return
	}
	p.State = PanelRetracting
	p.animRemaining = p.AnimationSecs
}

// SetBroken flips the panel into or out of its broken state. Recovering
// from broken leaves the panel retracted, matching the vendor's repair
// behaviour.
func (p *DeployableArray) SetBroken(broken bool) {
	if broken {
		p.State = PanelBroken
		return
	}
	if p.State == PanelBroken {
		p.State = PanelRetracted
	}
}

// Animate advances the deploy/retract animation by dt seconds.
func (p *DeployableArray) Animate(dt float64) {
	if p.State != PanelExtending && p.State != PanelRetracting {
		return
	}
	p.animRemaining -= dt
	if p.animRemaining > 0 {
		return
	}
	p.animRemaining = 0
	if p.State == PanelExtending {
		p.State = PanelExtended
	} else {
		p.State = PanelRetracted
	}
}

// TrackSun slews the surface normal about the pivot axis toward the
// orientation that maximizes sun incidence, bounded by the slew rate.
func (p *DeployableArray) TrackSun(sunDir r3.Vec, dt float64) {
	if !p.Tracking || p.State != PanelExtended {
		return
	}
	axis := p.PivotAxis
	if r3.Norm(axis) == 0 {
		return
	}
	axis = r3.Unit(axis)

	// Best achievable normal: the component of the sun direction
	// perpendicular to the pivot axis.
	perp := r3.Sub(sunDir, r3.Scale(r3.Dot(sunDir, axis), axis))
	if r3.Norm(perp) < 1e-9 {
		return // sun along the pivot axis; nothing to track
	}
	target := r3.Unit(perp)

	cur := p.SurfaceNormal
	if r3.Norm(cur) == 0 {
		p.SurfaceNormal = target
		return
	}
	cur = r3.Unit(cur)

	cosAngle := r3.Dot(cur, target)
	if cosAngle > 1 {
		cosAngle = 1
	} else if cosAngle < -1 {
		cosAngle = -1
	}
	angle := math.Acos(cosAngle)
	maxStep := p.TrackRateRadPerSec * dt
	if maxStep <= 0 || angle <= maxStep {
		p.SurfaceNormal = target
		return
	}

	// Rotate the current normal toward the target by maxStep about the
	// pivot axis, picking the shorter direction.
	rot := r3.NewRotation(maxStep, axis)
	candidate := rot.Rotate(cur)
	if r3.Dot(candidate, target) < cosAngle {
		rot = r3.NewRotation(-maxStep, axis)
		candidate = rot.Rotate(cur)
	}
	p.SurfaceNormal = candidate
}
