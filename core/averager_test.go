package core

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestAveragedExposure_ConstantAdapter(t *testing.T) {
	ad := newStubAdapter()
	ad.analyticAlignment = 0.6
	ad.analyticOcclusion = OcclusionResult{Factor: 0.8}

	got := AveragedExposure(ad, r3.Vec{X: 1})
	if !approx(got, 0.7) {
		t.Fatalf("AveragedExposure = %v, want 0.7 ((0.6+0.8)/2)", got)
	}
}

func TestAveragedExposure_Deterministic(t *testing.T) {
	ad := newStubAdapter()
	ad.analyticAlignment = 0.3
	ad.analyticOcclusion = OcclusionResult{Factor: 0.9}

	first := AveragedExposure(ad, r3.Vec{X: 1, Z: 0.2})
	second := AveragedExposure(ad, r3.Vec{X: 1, Z: 0.2})
	if first != second {
		t.Fatalf("results differ: %v vs %v", first, second)
	}
}

func TestAveragedExposure_ZeroSunDirection(t *testing.T) {
	ad := newStubAdapter()
	if got := AveragedExposure(ad, r3.Vec{}); got != 0 {
		t.Fatalf("AveragedExposure = %v, want 0 for zero sun direction", got)
	}
}

func TestAveragedExposure_SunAlongReferenceAxis(t *testing.T) {
	// Degenerate cross product with the reference axis falls back to a
	// perpendicular axis instead of collapsing.
	ad := newStubAdapter()
	ad.analyticAlignment = 0.5
	ad.analyticOcclusion = OcclusionResult{Factor: 0.5}

	got := AveragedExposure(ad, r3.Vec{Z: 1})
	if !approx(got, 0.5) {
		t.Fatalf("AveragedExposure = %v, want 0.5", got)
	}
}

// directionalAdapter scores alignment against a fixed normal so the
// average actually varies over the sampled rotation.
type directionalAdapter struct {
	*stubAdapter
	normal r3.Vec
}

func (d *directionalAdapter) AlignmentFactor(sunDir r3.Vec, analytic bool) float64 {
	return CosineAlignment(d.normal, sunDir)
}

func TestAveragedExposure_WithinBounds(t *testing.T) {
	ad := &directionalAdapter{stubAdapter: newStubAdapter(), normal: r3.Vec{X: 1}}
	ad.analyticOcclusion = OcclusionResult{Factor: 1}

	got := AveragedExposure(ad, r3.Vec{X: 1})
	if got < 0 || got > 1 {
		t.Fatalf("AveragedExposure = %v, want within [0,1]", got)
	}
	// Occlusion contributes a constant 1; a rotating alignment can only
	// pull the average below facing-the-sun perfection.
	if got >= 1 {
		t.Fatalf("AveragedExposure = %v, want < 1 with rotating alignment", got)
	}
}
