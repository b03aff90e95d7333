package adapter

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/helioworks/solararray-simulator/core"
	"github.com/helioworks/solararray-simulator/model"
	"github.com/helioworks/solararray-simulator/parts"
)

// concentratorAdapter wraps the non-deployable mirror array. The variant
// may be trimmed for a star other than the designated primary sun, so
// alignment is recomputed against the target body's context. Shadow
// gating and the flux scalar stay with the primary: the target body
// contributes direction and relative brightness only.
type concentratorAdapter struct {
	part *model.Part
	arr  *parts.ConcentratorArray
	deps Deps

	initialized bool
	nominal     float64
}

func newConcentratorAdapter(part *model.Part, native any, deps Deps) (core.CollectorAdapter, error) {
	arr, ok := native.(*parts.ConcentratorArray)
	if !ok {
		return nil, fmt.Errorf("%w: part %q carries %T", core.ErrNoCompatibleCollector, part.ID, native)
	}
	return &concentratorAdapter{part: part, arr: arr, deps: deps}, nil
}

func (a *concentratorAdapter) VariantName() string { return TypeConcentrator }

func (a *concentratorAdapter) Initialize() (float64, error) {
	if a.initialized {
		return a.nominal, nil
	}
	if a.arr.CollectionRate <= 0 {
		return 0, fmt.Errorf("%w: concentrator on %q has no output rate", core.ErrInitFailed, a.part.ID)
	}
	if len(a.arr.SurfaceNormals) == 0 {
		return 0, fmt.Errorf("%w: concentrator on %q has no collecting surfaces", core.ErrInitFailed, a.part.ID)
	}
	a.nominal = a.arr.CollectionRate
	a.arr.CollectionRate = 0
	a.initialized = true
	return a.nominal, nil
}

func (a *concentratorAdapter) CurrentState() model.LifecycleState {
	if a.arr.Failed {
		return model.StateFailure
	}
	return model.StateStatic
}

func (a *concentratorAdapter) AlignmentFactor(sunDir r3.Vec, analytic bool) float64 {
	dir := sunDir
	scale := 1.0
	if a.arr.TargetBody != "" && a.deps.Bodies != nil {
		if ctx, primary, ok := a.deps.Bodies.BodyContextFor(a.part.VehicleID, a.arr.TargetBody); ok && !primary {
			dir = ctx.SunDir
			scale = ctx.FluxWm2 / core.ReferenceFluxWm2
		}
	}
	f := scale * core.MeanAlignment(a.arr.SurfaceNormals, dir)
	// A target brighter than the reference flux still caps at full
	// alignment; the factor stays in [0,1].
	if f > 1 {
		f = 1
	}
	return f
}

func (a *concentratorAdapter) OcclusionFactor(sunDir r3.Vec, analytic bool) core.OcclusionResult {
	origins := surfaceOrigins(a.part, a.arr.SurfaceNormals)
	return a.deps.Evaluator.Occlusion(a.part.VehicleID, a.part.ID, origins, sunDir)
}

func (a *concentratorAdapter) DegradationCurve() *model.DegradationCurve {
	return concentratorWearCurve
}

func (a *concentratorAdapter) IsExtendable() bool { return false }
func (a *concentratorAdapter) Extend() error      { return core.ErrAutomationUnsupported }
func (a *concentratorAdapter) Retract() error     { return core.ErrAutomationUnsupported }

func (a *concentratorAdapter) SupportsLiveAutomation() bool { return false }

func (a *concentratorAdapter) SupportsDormantAutomation(model.LifecycleState) bool { return false }

func (a *concentratorAdapter) SetFailed(failed bool) {
	a.arr.Failed = failed
}

func (a *concentratorAdapter) OnTick(r3.Vec, time.Duration) {}

// surfaceOrigins places one occlusion-ray origin per collecting surface,
// pushed out of the part's own bounding sphere along the surface facing.
func surfaceOrigins(part *model.Part, normals []r3.Vec) []r3.Vec {
	origins := make([]r3.Vec, 0, len(normals))
	for _, n := range normals {
		origin := part.OffsetM
		if part.BoundingRadius > 0 && r3.Norm(n) > 0 {
			origin = r3.Add(origin, r3.Scale(part.BoundingRadius, r3.Unit(n)))
		}
		origins = append(origins, origin)
	}
	return origins
}
