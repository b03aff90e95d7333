package core

import (
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/helioworks/solararray-simulator/model"
)

// MotionModel updates a vehicle's position for a given simulation time.
type MotionModel interface {
	UpdatePosition(simTime time.Time, v *model.Vehicle)
}

// StaticMotionModel leaves the vehicle's position unchanged. Used for
// landed vehicles and anything without orbital elements.
type StaticMotionModel struct{}

func (m *StaticMotionModel) UpdatePosition(simTime time.Time, v *model.Vehicle) {
	// no-op
}

// OrbitalSGP4MotionModel propagates the vehicle from a TLE with SGP4.
type OrbitalSGP4MotionModel struct {
	sat satellite.Satellite
}

// NewOrbitalModelFromTLE constructs an orbital model from TLE lines.
func NewOrbitalModelFromTLE(line1, line2 string) *OrbitalSGP4MotionModel {
	sat := satellite.TLEToSat(line1, line2, satellite.GravityWGS72)
	return &OrbitalSGP4MotionModel{sat: sat}
}

// UpdatePosition propagates to the given simulation time and stores the
// ECI position in kilometres.
func (m *OrbitalSGP4MotionModel) UpdatePosition(simTime time.Time, v *model.Vehicle) {
	year, month, day := simTime.Date()
	hour, min, sec := simTime.Clock()

	posECI, _ := satellite.Propagate(m.sat, year, int(month), day, hour, min, sec)
	v.PositionKm = r3.Vec{X: posECI.X, Y: posECI.Y, Z: posECI.Z}
}

// NewMotionModel chooses a motion model for the vehicle: SGP4 when a TLE
// is available, static otherwise.
func NewMotionModel(v *model.Vehicle) MotionModel {
	if v.MotionSource == model.MotionSourceTLE && v.TLE1 != "" && v.TLE2 != "" {
		return NewOrbitalModelFromTLE(v.TLE1, v.TLE2)
	}
	return &StaticMotionModel{}
}
