package core

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// averagerReferenceAxis fixes the rotation plane for the landed exposure
// average. The sample rotation axis is perpendicular to both this axis
// and the sun direction, approximating the local-vertical rotation a
// landed vehicle sees over one day.
var averagerReferenceAxis = r3.Vec{Z: 1}

const (
	averagerSamples = 8
	averagerStepRad = 45 * math.Pi / 180
)

// AveragedExposure approximates the full-rotation time average of a
// collector's exposure for a stationary vehicle. Starting from the
// current sun direction it takes 8 samples at 45° increments, accumulates
// analytic alignment plus analytic occlusion at each, and divides by 16.
//
// Averaging the sum instead of the product is exact only when alignment
// and occlusion are uncorrelated; the bias is accepted. Deterministic for
// a given sun direction and static geometry.
func AveragedExposure(ad CollectorAdapter, sunDir r3.Vec) float64 {
	if r3.Norm(sunDir) == 0 {
		return 0
	}
	sunDir = r3.Unit(sunDir)

	axis := r3.Cross(averagerReferenceAxis, sunDir)
	if r3.Norm(axis) < 1e-9 {
		// Sun along the reference axis; any perpendicular works.
		axis = r3.Cross(r3.Vec{X: 1}, sunDir)
	}
	axis = r3.Unit(axis)

	sum := 0.0
	dir := sunDir
	for i := 0; i < averagerSamples; i++ {
		sum += ad.AlignmentFactor(dir, true)
		occ := ad.OcclusionFactor(dir, true)
		sum += occ.Factor
		dir = RotateAbout(dir, axis, averagerStepRad)
	}
	return sum / (2 * averagerSamples)
}
