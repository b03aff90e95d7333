package core

import (
	"errors"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/helioworks/solararray-simulator/model"
)

var (
	// ErrNoCompatibleCollector means no supported third-party collector
	// component was found on the part. The component is disabled, not
	// the vehicle.
	ErrNoCompatibleCollector = errors.New("no compatible collector component")

	// ErrInitFailed means a compatible component was found but adapter
	// initialization could not complete (missing fields or transforms,
	// zero collecting surfaces). The component stays disabled for the
	// rest of the session.
	ErrInitFailed = errors.New("collector initialization failed")

	// ErrAutomationUnsupported is returned by Extend/Retract on variants
	// or states that cannot honour the request.
	ErrAutomationUnsupported = errors.New("automation not supported for this collector")
)

// CollectorAdapter is the uniform capability contract over heterogeneous
// third-party collector variants. The production controller drives every
// variant through this interface and never branches on the concrete type.
//
// Binding happens in the variant's constructor; all other operations are
// valid only after a successful Initialize, except CurrentState which must
// reflect reality at all times.
type CollectorAdapter interface {
	// VariantName identifies the adapter variant for logging and
	// persistence.
	VariantName() string

	// Initialize performs one-time setup: it disables the third-party
	// component's own energy-output path, discovers surface geometry,
	// and returns the nominal rate at reference distance. It is
	// idempotent; a second call returns the cached rate without
	// re-applying destructive changes.
	Initialize() (float64, error)

	// CurrentState reports the normalized lifecycle state. Callable
	// before Initialize.
	CurrentState() model.LifecycleState

	// AlignmentFactor is the mean cosine alignment of all collecting
	// surfaces with the sun, in [0,1]. With analytic set, the best
	// achievable alignment given tracking pivots is returned instead,
	// because per-tick orientation cannot be trusted in analytic mode.
	AlignmentFactor(sunDir r3.Vec, analytic bool) float64

	// OcclusionFactor is the fraction of collecting area not blocked,
	// averaged by surface, plus the blocking part's name when the
	// occluder is a distinct physical part.
	OcclusionFactor(sunDir r3.Vec, analytic bool) OcclusionResult

	// DegradationCurve returns the variant's wear curve, or nil when the
	// variant does not model wear (constant 1.0).
	DegradationCurve() *model.DegradationCurve

	// IsExtendable reports whether extend/retract automation is
	// available at all for this variant.
	IsExtendable() bool
	Extend() error
	Retract() error

	// SupportsLiveAutomation gates user-triggered state changes on a
	// loaded vehicle given the current state.
	SupportsLiveAutomation() bool

	// SupportsDormantAutomation gates the persisted-state toggle for a
	// dormant vehicle in the given state.
	SupportsDormantAutomation(state model.LifecycleState) bool

	// SetFailed propagates an external failure or repair into the
	// variant's own suppression mechanism.
	SetFailed(failed bool)

	// OnTick runs variant-specific per-tick bookkeeping (animation,
	// tracking) that the suppressed native update would have done.
	OnTick(sunDir r3.Vec, dt time.Duration)
}
