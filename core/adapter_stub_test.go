package core

import (
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/helioworks/solararray-simulator/model"
)

// stubAdapter is a controllable CollectorAdapter for controller and
// averager tests.
type stubAdapter struct {
	variant string
	nominal float64
	initErr error

	state model.LifecycleState

	alignment         float64
	analyticAlignment float64
	occlusion         OcclusionResult
	analyticOcclusion OcclusionResult

	curve *model.DegradationCurve

	extendable bool
	live       bool

	failed    bool
	tickCalls int
	initCalls int
}

func newStubAdapter() *stubAdapter {
	return &stubAdapter{
		variant:           "stub",
		nominal:           10,
		state:             model.StateExtended,
		alignment:         1,
		analyticAlignment: 1,
		occlusion:         OcclusionResult{Factor: 1},
		analyticOcclusion: OcclusionResult{Factor: 1},
		extendable:        true,
		live:              true,
	}
}

func (s *stubAdapter) VariantName() string { return s.variant }

func (s *stubAdapter) Initialize() (float64, error) {
	s.initCalls++
	if s.initErr != nil {
		return 0, s.initErr
	}
	return s.nominal, nil
}

func (s *stubAdapter) CurrentState() model.LifecycleState { return s.state }

func (s *stubAdapter) AlignmentFactor(sunDir r3.Vec, analytic bool) float64 {
	if analytic {
		return s.analyticAlignment
	}
	return s.alignment
}

func (s *stubAdapter) OcclusionFactor(sunDir r3.Vec, analytic bool) OcclusionResult {
	if analytic {
		return s.analyticOcclusion
	}
	return s.occlusion
}

func (s *stubAdapter) DegradationCurve() *model.DegradationCurve { return s.curve }

func (s *stubAdapter) IsExtendable() bool { return s.extendable }
func (s *stubAdapter) Extend() error {
	s.state = model.StateExtending
	return nil
}
func (s *stubAdapter) Retract() error {
	s.state = model.StateRetracting
	return nil
}

func (s *stubAdapter) SupportsLiveAutomation() bool { return s.live }

func (s *stubAdapter) SupportsDormantAutomation(model.LifecycleState) bool { return s.extendable }

func (s *stubAdapter) SetFailed(failed bool) {
	s.failed = failed
	if failed {
		s.state = model.StateFailure
	} else {
		s.state = model.StateExtended
	}
}

func (s *stubAdapter) OnTick(r3.Vec, time.Duration) { s.tickCalls++ }

func mustTestCurve(points ...model.CurvePoint) *model.DegradationCurve {
	c, err := model.NewDegradationCurve(points)
	if err != nil {
		panic(err)
	}
	return c
}

func fullSun() model.SunContext {
	return model.SunContext{
		SunDir:           r3.Vec{X: 1},
		SunlightFraction: 1,
		FluxWm2:          ReferenceFluxWm2,
		Body:             PrimaryBodyName,
	}
}
