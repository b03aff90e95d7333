package adapter

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/helioworks/solararray-simulator/core"
	"github.com/helioworks/solararray-simulator/model"
	"github.com/helioworks/solararray-simulator/parts"
)

// fixedAdapter wraps the body-mounted static panel. The vendor gates its
// own update path with an enabled flag; clearing it hands production to
// the controller.
type fixedAdapter struct {
	part  *model.Part
	panel *parts.FixedPanel
	deps  Deps

	initialized bool
	nominal     float64
}

func newFixedAdapter(part *model.Part, native any, deps Deps) (core.CollectorAdapter, error) {
	panel, ok := native.(*parts.FixedPanel)
	if !ok {
		return nil, fmt.Errorf("%w: part %q carries %T", core.ErrNoCompatibleCollector, part.ID, native)
	}
	return &fixedAdapter{part: part, panel: panel, deps: deps}, nil
}

func (a *fixedAdapter) VariantName() string { return TypeFixed }

func (a *fixedAdapter) Initialize() (float64, error) {
	if a.initialized {
		return a.nominal, nil
	}
	if a.panel.OutputRate <= 0 {
		return 0, fmt.Errorf("%w: fixed panel on %q has no output rate", core.ErrInitFailed, a.part.ID)
	}
	if r3.Norm(a.panel.Normal) == 0 {
		return 0, fmt.Errorf("%w: fixed panel on %q has no surface normal", core.ErrInitFailed, a.part.ID)
	}
	a.nominal = a.panel.OutputRate
	a.panel.Enabled = false
	a.initialized = true
	return a.nominal, nil
}

func (a *fixedAdapter) CurrentState() model.LifecycleState {
	if a.panel.Broken {
		return model.StateBroken
	}
	return model.StateStatic
}

func (a *fixedAdapter) AlignmentFactor(sunDir r3.Vec, analytic bool) float64 {
	// No tracking pivot: the analytic best equals the instantaneous value.
	return core.CosineAlignment(a.panel.Normal, sunDir)
}

func (a *fixedAdapter) OcclusionFactor(sunDir r3.Vec, analytic bool) core.OcclusionResult {
	origins := surfaceOrigins(a.part, []r3.Vec{a.panel.Normal})
	return a.deps.Evaluator.Occlusion(a.part.VehicleID, a.part.ID, origins, sunDir)
}

func (a *fixedAdapter) DegradationCurve() *model.DegradationCurve { return nil }

func (a *fixedAdapter) IsExtendable() bool { return false }
func (a *fixedAdapter) Extend() error      { return core.ErrAutomationUnsupported }
func (a *fixedAdapter) Retract() error     { return core.ErrAutomationUnsupported }

func (a *fixedAdapter) SupportsLiveAutomation() bool { return false }

func (a *fixedAdapter) SupportsDormantAutomation(model.LifecycleState) bool { return false }

func (a *fixedAdapter) SetFailed(failed bool) {
	a.panel.Broken = failed
}

func (a *fixedAdapter) OnTick(r3.Vec, time.Duration) {}
