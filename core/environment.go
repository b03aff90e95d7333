package core

import (
	"fmt"
	"math"
	"sync"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/helioworks/solararray-simulator/model"
)

const (
	// ReferenceFluxWm2 is the solar flux at the reference distance
	// (1 AU); nominal collector rates are quoted against it.
	ReferenceFluxWm2 = 1361.0

	// EarthRadiusKm is the mean Earth radius used for all shadow
	// geometry (kilometres).
	EarthRadiusKm = 6371.0

	// PrimaryBodyName is the designated primary sun.
	PrimaryBodyName = "Sun"
)

// SimClockSource is what the environment needs from the simulation clock.
type SimClockSource interface {
	Now() time.Time
	WarpRate() float64
}

// StarBody is an alternate radiation source a tracking collector may aim
// at. Directions are fixed unit vectors in ECI; only the primary sun gets
// a real ephemeris.
type StarBody struct {
	Name string

	DirECI r3.Vec

	// FluxFraction scales the body's flux relative to the primary sun
	// at reference distance.
	FluxFraction float64
}

// SunService computes the per-vehicle sun context each tick: sun
// direction in the vehicle's frame, sunlight fraction, and solar flux at
// the vehicle's position. The production core only reads the context and
// never mutates it.
type SunService struct {
	store *Store
	clock SimClockSource

	// AnalyticWarpThreshold is the warp rate at and above which sub-tick
	// sun motion can no longer be resolved; the service then reports a
	// fractional, time-averaged sunlight value.
	AnalyticWarpThreshold float64

	mu     sync.RWMutex
	bodies map[string]StarBody
}

// NewSunService builds the environment service over the vehicle store.
func NewSunService(store *Store, clock SimClockSource) *SunService {
	return &SunService{
		store:                 store,
		clock:                 clock,
		AnalyticWarpThreshold: 100,
		bodies:                make(map[string]StarBody),
	}
}

// RegisterStarBody adds an alternate tracking target.
func (s *SunService) RegisterStarBody(b StarBody) error {
	if b.Name == "" || b.Name == PrimaryBodyName {
		return fmt.Errorf("invalid star body name %q", b.Name)
	}
	if r3.Norm(b.DirECI) == 0 {
		return fmt.Errorf("star body %q has zero direction", b.Name)
	}
	b.DirECI = r3.Unit(b.DirECI)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.bodies[b.Name] = b
	return nil
}

// ContextFor returns the primary-sun context for a vehicle, or false when
// the vehicle is unknown.
func (s *SunService) ContextFor(vehicleID string) (model.SunContext, bool) {
	v := s.store.GetVehicle(vehicleID)
	if v == nil {
		return model.SunContext{}, false
	}

	now := s.clock.Now()
	sunECI, distAU := SolarDirectionECI(now)
	flux := ReferenceFluxWm2 / (distAU * distAU)

	dir := s.directionInVehicleFrame(v, sunECI, now)
	return model.SunContext{
		SunDir:           dir,
		SunlightFraction: s.sunlightFraction(v, dir),
		FluxWm2:          flux,
		Body:             PrimaryBodyName,
	}, true
}

// BodyContextFor recomputes the context against a specific target body.
// The second return reports whether that body is the designated primary
// sun; adapters blend their output with it.
func (s *SunService) BodyContextFor(vehicleID, body string) (ctx model.SunContext, primary bool, ok bool) {
	if body == "" || body == PrimaryBodyName {
		ctx, ok = s.ContextFor(vehicleID)
		return ctx, true, ok
	}

	s.mu.RLock()
	b, known := s.bodies[body]
	s.mu.RUnlock()
	if !known {
		return model.SunContext{}, false, false
	}

	v := s.store.GetVehicle(vehicleID)
	if v == nil {
		return model.SunContext{}, false, false
	}

	now := s.clock.Now()
	dir := s.directionInVehicleFrame(v, b.DirECI, now)
	return model.SunContext{
		SunDir:           dir,
		SunlightFraction: s.sunlightFraction(v, dir),
		FluxWm2:          ReferenceFluxWm2 * b.FluxFraction,
		Body:             body,
	}, false, true
}

// directionInVehicleFrame converts an ECI direction into the frame the
// vehicle's local geometry lives in: ECEF for landed vehicles, ECI
// otherwise.
func (s *SunService) directionInVehicleFrame(v *model.Vehicle, dirECI r3.Vec, now time.Time) r3.Vec {
	if !v.Landed() {
		return dirECI
	}
	year, month, day := now.Date()
	hour, min, sec := now.Clock()
	jd := satellite.JDay(year, int(month), day, hour, min, sec)
	gmst := satellite.ThetaG_JD(jd)
	ecef := satellite.ECIToECEF(satellite.Vector3{X: dirECI.X, Y: dirECI.Y, Z: dirECI.Z}, gmst)
	return r3.Vec{X: ecef.X, Y: ecef.Y, Z: ecef.Z}
}

// sunlightFraction is 0/1 from instantaneous shadow geometry at normal
// warp, and a time-averaged fraction once warp passes the analytic
// threshold.
func (s *SunService) sunlightFraction(v *model.Vehicle, sunDir r3.Vec) float64 {
	if s.clock.WarpRate() >= s.AnalyticWarpThreshold {
		if v.Landed() {
			// Day/night average over a full rotation.
			return 0.5
		}
		return orbitSunlitFraction(v.PositionKm)
	}

	if inShadow(v, sunDir) {
		return 0
	}
	return 1
}

// inShadow applies the instantaneous eclipse test. For a landed vehicle
// the sun must be above the local horizon; for an orbiting vehicle the
// segment toward the sun must clear the Earth sphere.
func inShadow(v *model.Vehicle, sunDir r3.Vec) bool {
	pos := v.PositionKm
	r := r3.Norm(pos)
	if r == 0 {
		return false
	}
	if v.Landed() {
		return r3.Dot(r3.Scale(1/r, pos), sunDir) <= 0
	}

	// Behind the Earth relative to the sun, and within the shadow
	// cylinder.
	if r3.Dot(pos, sunDir) >= 0 {
		return false
	}
	perp := r3.Sub(pos, r3.Scale(r3.Dot(pos, sunDir), sunDir))
	return r3.Norm(perp) < EarthRadiusKm
}

// orbitSunlitFraction approximates the sunlit fraction of a circular
// orbit at the vehicle's current radius: 1 minus the angular half-width
// of the Earth's shadow over a full revolution.
func orbitSunlitFraction(posKm r3.Vec) float64 {
	r := r3.Norm(posKm)
	if r <= EarthRadiusKm {
		return 0.5
	}
	beta := math.Asin(EarthRadiusKm / r)
	return 1 - beta/math.Pi
}

// SolarDirectionECI returns the unit vector from Earth to the sun in ECI
// and the Earth–sun distance in AU, from the low-precision solar
// ephemeris (Astronomical Almanac series truncation; a few arcminutes of
// error, far below what exposure scoring can resolve).
func SolarDirectionECI(t time.Time) (r3.Vec, float64) {
	year, month, day := t.UTC().Date()
	hour, min, sec := t.UTC().Clock()
	jd := satellite.JDay(year, int(month), day, hour, min, sec)

	n := jd - 2451545.0
	meanLon := math.Mod(280.460+0.9856474*n, 360)
	meanAnom := math.Mod(357.528+0.9856003*n, 360) * math.Pi / 180

	eclipticLon := (meanLon + 1.915*math.Sin(meanAnom) + 0.020*math.Sin(2*meanAnom)) * math.Pi / 180
	obliquity := (23.439 - 4e-7*n) * math.Pi / 180

	dir := r3.Vec{
		X: math.Cos(eclipticLon),
		Y: math.Cos(obliquity) * math.Sin(eclipticLon),
		Z: math.Sin(obliquity) * math.Sin(eclipticLon),
	}
	distAU := 1.00014 - 0.01671*math.Cos(meanAnom) - 0.00014*math.Cos(2*meanAnom)
	return dir, distAU
}
