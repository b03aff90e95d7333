package core

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/helioworks/solararray-simulator/model"
)

// OccluderSource yields the occlusion candidates around a vehicle. The
// vehicle store implements this; tests substitute fixtures.
type OccluderSource interface {
	Occluders(vehicleID string) []model.Occluder
}

// TraceSink receives every occlusion ray the evaluator casts. It replaces
// the always-on global debug-draw state of older implementations with an
// optional, injected diagnostic hook.
type TraceSink interface {
	Ray(origin, dir r3.Vec, blocked bool, occluder string)
}

// OcclusionResult is the outcome of an occlusion scan over a collector's
// surfaces.
type OcclusionResult struct {
	// Factor is the fraction of collecting area with a clear view of the
	// sun, averaged by surface.
	Factor float64

	// OccluderName is set only when the blocker is a distinct physical
	// part. Scenery and terrain blockers leave it empty so callers can
	// exclude them from persisted exposure tracking.
	OccluderName string

	// Terrain reports that at least one surface was blocked by a
	// non-part occluder.
	Terrain bool
}

// ExposureEvaluator scores collecting surfaces against the scene around a
// vehicle. Adapters own their surface geometry; the evaluator owns the
// occluder scan.
type ExposureEvaluator struct {
	source OccluderSource
	sink   TraceSink
}

// NewExposureEvaluator builds an evaluator over the given occluder source.
func NewExposureEvaluator(source OccluderSource) *ExposureEvaluator {
	return &ExposureEvaluator{source: source}
}

// SetTraceSink installs a diagnostic sink for cast rays. Nil disables it.
func (e *ExposureEvaluator) SetTraceSink(sink TraceSink) {
	e.sink = sink
}

// Occlusion scans one ray per collecting surface toward the sun and
// averages the outcomes. Surfaces are identified by their origins in the
// vehicle's local frame. ownPartID excludes the collector's own part from
// the candidate set.
func (e *ExposureEvaluator) Occlusion(vehicleID, ownPartID string, origins []r3.Vec, sunDir r3.Vec) OcclusionResult {
	if len(origins) == 0 {
		return OcclusionResult{Factor: 1}
	}

	var occluders []model.Occluder
	if e != nil && e.source != nil {
		occluders = e.source.Occluders(vehicleID)
	}

	clear := 0
	res := OcclusionResult{}
	for _, origin := range origins {
		blocker, blocked := firstBlocker(origin, sunDir, occluders, ownPartID)
		if e != nil && e.sink != nil {
			e.sink.Ray(origin, sunDir, blocked, blocker.Name)
		}
		if !blocked {
			clear++
			continue
		}
		if blocker.PartID != "" {
			if res.OccluderName == "" {
				res.OccluderName = blocker.Name
			}
		} else {
			res.Terrain = true
		}
	}
	res.Factor = float64(clear) / float64(len(origins))
	return res
}
