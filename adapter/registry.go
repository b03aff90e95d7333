// Package adapter normalizes third-party collector components behind the
// core's capability interface. Each supported variant has one adapter; a
// registry maps the component's stable type identifier to its
// constructor. There is no default adapter: an unknown identifier is a
// binding failure and the part simply never produces.
package adapter

import (
	"fmt"

	"github.com/helioworks/solararray-simulator/core"
	"github.com/helioworks/solararray-simulator/model"
	"github.com/helioworks/solararray-simulator/parts"
)

// Type identifiers for the supported components, re-exported from the
// component package for registration and scenario use.
const (
	TypeDeployable   = parts.TypeDeployable
	TypeFixed        = parts.TypeFixed
	TypeCurved       = parts.TypeCurved
	TypeConcentrator = parts.TypeConcentrator
)

// BodySource resolves a sun context against a named target body, for
// variants that track something other than the primary sun. The
// environment service implements this.
type BodySource interface {
	BodyContextFor(vehicleID, body string) (ctx model.SunContext, primary bool, ok bool)
}

// Deps carries the collaborators every adapter needs: the occlusion
// evaluator over the vehicle's scene, and the per-body environment
// lookup.
type Deps struct {
	Evaluator *core.ExposureEvaluator
	Bodies    BodySource
}

// Constructor builds an adapter over a part's native component. It must
// reject a component of the wrong concrete type with
// ErrNoCompatibleCollector.
type Constructor func(part *model.Part, native any, deps Deps) (core.CollectorAdapter, error)

// Registry maps component type identifiers to adapter constructors and
// reference degradation curves.
type Registry struct {
	deps         Deps
	constructors map[string]Constructor
	curves       map[string]*model.DegradationCurve
}

// NewRegistry builds an empty registry with the given collaborators.
func NewRegistry(deps Deps) *Registry {
	return &Registry{
		deps:         deps,
		constructors: make(map[string]Constructor),
		curves:       make(map[string]*model.DegradationCurve),
	}
}

// DefaultRegistry returns a registry with all four supported variants.
func DefaultRegistry(deps Deps) *Registry {
	r := NewRegistry(deps)
	r.Register(TypeDeployable, newDeployableAdapter, deployableWearCurve)
	r.Register(TypeFixed, newFixedAdapter, nil)
	r.Register(TypeCurved, newCurvedAdapter, curvedWearCurve)
	r.Register(TypeConcentrator, newConcentratorAdapter, concentratorWearCurve)
	return r
}

// Register adds a variant. curve is the variant's reference degradation
// curve for the dormant path; nil means the variant does not wear.
func (r *Registry) Register(typeID string, c Constructor, curve *model.DegradationCurve) {
	r.constructors[typeID] = c
	if curve != nil {
		r.curves[typeID] = curve
	}
}

// Bind constructs the adapter for a part's native component, selected by
// the part's component type identifier.
func (r *Registry) Bind(part *model.Part, native any) (core.CollectorAdapter, error) {
	c, ok := r.constructors[part.ComponentType]
	if !ok {
		return nil, fmt.Errorf("%w: unknown component type %q", core.ErrNoCompatibleCollector, part.ComponentType)
	}
	return c(part, native, r.deps)
}

// Binder adapts the registry to the engine's binder hook.
func (r *Registry) Binder() core.AdapterBinder {
	return func(part *model.Part, native any) (core.CollectorAdapter, error) {
		return r.Bind(part, native)
	}
}

// ReferenceCurve resolves a variant's reference degradation curve for the
// dormant production path. Nil when the variant does not wear.
func (r *Registry) ReferenceCurve(variant string) *model.DegradationCurve {
	return r.curves[variant]
}

// Reference wear curves per variant. Curve shape does not vary per
// collector instance, so dormant vehicles read these directly.
var (
	deployableWearCurve   = mustCurve(0, 1.0, 8760, 0.8, 43800, 0.5)
	curvedWearCurve       = mustCurve(0, 1.0, 17520, 0.85, 87600, 0.6)
	concentratorWearCurve = mustCurve(0, 1.0, 8760, 0.95, 87600, 0.75)
)

func mustCurve(pairs ...float64) *model.DegradationCurve {
	points := make([]model.CurvePoint, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		points = append(points, model.CurvePoint{Hours: pairs[i], Multiplier: pairs[i+1]})
	}
	c, err := model.NewDegradationCurve(points)
	if err != nil {
		panic(err)
	}
	return c
}
