package adapter

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/helioworks/solararray-simulator/core"
	"github.com/helioworks/solararray-simulator/model"
	"github.com/helioworks/solararray-simulator/parts"
)

// curvedAdapter wraps the multi-surface wraparound array. The vendor
// exposes everything through a free-form parameter map, so every field
// access is a named lookup and a missing key fails initialization.
type curvedAdapter struct {
	part *model.Part
	arr  *parts.CurvedArray
	deps Deps

	initialized bool
	nominal     float64
	retractable bool
}

func newCurvedAdapter(part *model.Part, native any, deps Deps) (core.CollectorAdapter, error) {
	arr, ok := native.(*parts.CurvedArray)
	if !ok {
		return nil, fmt.Errorf("%w: part %q carries %T", core.ErrNoCompatibleCollector, part.ID, native)
	}
	return &curvedAdapter{part: part, arr: arr, deps: deps}, nil
}

func (a *curvedAdapter) VariantName() string { return TypeCurved }

func (a *curvedAdapter) Initialize() (float64, error) {
	if a.initialized {
		return a.nominal, nil
	}

	rate, err := a.floatParam(parts.CurvedParamChargeRate)
	if err != nil {
		return 0, err
	}
	if rate <= 0 {
		return 0, fmt.Errorf("%w: curved array on %q has no output rate", core.ErrInitFailed, a.part.ID)
	}
	if _, ok := a.arr.Lookup(parts.CurvedParamDeployState); !ok {
		return 0, fmt.Errorf("%w: curved array on %q missing parameter %q",
			core.ErrInitFailed, a.part.ID, parts.CurvedParamDeployState)
	}
	if len(a.arr.SurfaceNormals) == 0 {
		return 0, fmt.Errorf("%w: curved array on %q has no collecting surfaces", core.ErrInitFailed, a.part.ID)
	}
	a.retractable, _ = a.arr.Params[parts.CurvedParamRetractable].(bool)

	a.nominal = rate
	a.arr.Set(parts.CurvedParamChargeRate, 0.0)
	a.initialized = true
	return a.nominal, nil
}

func (a *curvedAdapter) floatParam(name string) (float64, error) {
	v, ok := a.arr.Lookup(name)
	if !ok {
		return 0, fmt.Errorf("%w: curved array on %q missing parameter %q", core.ErrInitFailed, a.part.ID, name)
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("%w: curved array on %q parameter %q is %T, want float64",
			core.ErrInitFailed, a.part.ID, name, v)
	}
	return f, nil
}

func (a *curvedAdapter) CurrentState() model.LifecycleState {
	switch a.arr.DeployToken() {
	case parts.CurvedStateRetracted:
		return model.StateRetracted
	case parts.CurvedStateExtending:
		return model.StateExtending
	case parts.CurvedStateExtended:
		if a.retractable {
			return model.StateExtended
		}
		return model.StateExtendedFixed
	case parts.CurvedStateRetracting:
		return model.StateRetracting
	case parts.CurvedStateBroken:
		return model.StateBroken
	default:
		return model.StateUnknown
	}
}

func (a *curvedAdapter) AlignmentFactor(sunDir r3.Vec, analytic bool) float64 {
	return core.MeanAlignment(a.arr.SurfaceNormals, sunDir)
}

func (a *curvedAdapter) OcclusionFactor(sunDir r3.Vec, analytic bool) core.OcclusionResult {
	origins := surfaceOrigins(a.part, a.arr.SurfaceNormals)
	return a.deps.Evaluator.Occlusion(a.part.VehicleID, a.part.ID, origins, sunDir)
}

func (a *curvedAdapter) DegradationCurve() *model.DegradationCurve {
	return curvedWearCurve
}

func (a *curvedAdapter) IsExtendable() bool { return true }

func (a *curvedAdapter) Extend() error {
	if a.arr.DeployToken() == parts.CurvedStateBroken {
		return core.ErrAutomationUnsupported
	}
	a.arr.RequestDeploy()
	return nil
}

func (a *curvedAdapter) Retract() error {
	if !a.retractable || a.arr.DeployToken() == parts.CurvedStateBroken {
		return core.ErrAutomationUnsupported
	}
	a.arr.RequestRetract()
	return nil
}

func (a *curvedAdapter) SupportsLiveAutomation() bool { return true }

func (a *curvedAdapter) SupportsDormantAutomation(state model.LifecycleState) bool {
	if state == model.StateRetracted {
		return true
	}
	return state == model.StateExtended && a.retractable
}

func (a *curvedAdapter) SetFailed(failed bool) {
	if failed {
		a.arr.Set(parts.CurvedParamDeployState, parts.CurvedStateBroken)
		return
	}
	if a.arr.DeployToken() == parts.CurvedStateBroken {
		a.arr.Set(parts.CurvedParamDeployState, parts.CurvedStateRetracted)
	}
}

func (a *curvedAdapter) OnTick(sunDir r3.Vec, dt time.Duration) {
	a.arr.Animate(dt.Seconds())
}
