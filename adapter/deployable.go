package adapter

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/helioworks/solararray-simulator/core"
	"github.com/helioworks/solararray-simulator/model"
	"github.com/helioworks/solararray-simulator/parts"
)

// deployableAdapter wraps the single-surface retractable tracking array.
// The vendor exposes its rate as a plain field, so suppression is a cache
// and zero.
type deployableAdapter struct {
	part *model.Part
	arr  *parts.DeployableArray
	deps Deps

	initialized bool
	nominal     float64
}

func newDeployableAdapter(part *model.Part, native any, deps Deps) (core.CollectorAdapter, error) {
	arr, ok := native.(*parts.DeployableArray)
	if !ok {
		return nil, fmt.Errorf("%w: part %q carries %T", core.ErrNoCompatibleCollector, part.ID, native)
	}
	return &deployableAdapter{part: part, arr: arr, deps: deps}, nil
}

func (a *deployableAdapter) VariantName() string { return TypeDeployable }

func (a *deployableAdapter) Initialize() (float64, error) {
	if a.initialized {
		return a.nominal, nil
	}
	if a.arr.ChargeRate <= 0 {
		return 0, fmt.Errorf("%w: deployable array on %q has no output rate", core.ErrInitFailed, a.part.ID)
	}
	if r3.Norm(a.arr.SurfaceNormal) == 0 {
		return 0, fmt.Errorf("%w: deployable array on %q has no surface normal", core.ErrInitFailed, a.part.ID)
	}
	a.nominal = a.arr.ChargeRate
	a.arr.ChargeRate = 0
	a.initialized = true
	return a.nominal, nil
}

func (a *deployableAdapter) CurrentState() model.LifecycleState {
	switch a.arr.State {
	case parts.PanelRetracted:
		return model.StateRetracted
	case parts.PanelExtending:
		return model.StateExtending
	case parts.PanelExtended:
		if a.arr.Retractable {
			return model.StateExtended
		}
		return model.StateExtendedFixed
	case parts.PanelRetracting:
		return model.StateRetracting
	case parts.PanelBroken:
		return model.StateBroken
	default:
		return model.StateUnknown
	}
}

func (a *deployableAdapter) AlignmentFactor(sunDir r3.Vec, analytic bool) float64 {
	if analytic && a.arr.Tracking {
		// The tracker is assumed to have reached its best attainable
		// orientation; the instantaneous normal is stale under
		// compression.
		return core.BestTrackedAlignment(a.arr.PivotAxis, sunDir)
	}
	return core.CosineAlignment(a.arr.SurfaceNormal, sunDir)
}

func (a *deployableAdapter) OcclusionFactor(sunDir r3.Vec, analytic bool) core.OcclusionResult {
	origins := surfaceOrigins(a.part, []r3.Vec{a.arr.SurfaceNormal})
	return a.deps.Evaluator.Occlusion(a.part.VehicleID, a.part.ID, origins, sunDir)
}

func (a *deployableAdapter) DegradationCurve() *model.DegradationCurve {
	return deployableWearCurve
}

func (a *deployableAdapter) IsExtendable() bool { return true }

func (a *deployableAdapter) Extend() error {
	if a.arr.State == parts.PanelBroken {
		return core.ErrAutomationUnsupported
	}
	a.arr.Deploy()
	return nil
}

func (a *deployableAdapter) Retract() error {
	if !a.arr.Retractable || a.arr.State == parts.PanelBroken {
		return core.ErrAutomationUnsupported
	}
	a.arr.Retract()
	return nil
}

func (a *deployableAdapter) SupportsLiveAutomation() bool { return true }

func (a *deployableAdapter) SupportsDormantAutomation(state model.LifecycleState) bool {
	if state == model.StateRetracted {
		return true
	}
	return state == model.StateExtended && a.arr.Retractable
}

func (a *deployableAdapter) SetFailed(failed bool) {
	a.arr.SetBroken(failed)
}

func (a *deployableAdapter) OnTick(sunDir r3.Vec, dt time.Duration) {
	secs := dt.Seconds()
	a.arr.Animate(secs)
	a.arr.TrackSun(sunDir, secs)
}
