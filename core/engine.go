package core

import (
	"context"
	"errors"
	"time"

	"github.com/helioworks/solararray-simulator/internal/logging"
	"github.com/helioworks/solararray-simulator/model"
)

// SunSource is what the engine needs from the environment service.
type SunSource interface {
	ContextFor(vehicleID string) (model.SunContext, bool)
}

// StatusRecorder mirrors per-collector tick outcomes into an external
// sink (Prometheus gauges).
type StatusRecorder interface {
	SetCollectorStatus(vehicleID, collectorID string, state model.LifecycleState, ratePerSec float64)
}

// AdapterBinder locates a compatible third-party component on a part and
// returns its bound adapter. The adapter registry provides this.
type AdapterBinder func(part *model.Part, native any) (CollectorAdapter, error)

// Engine drives production for every collector in the store: one direct
// evaluation per loaded collector per tick, and interval-based background
// evaluation for dormant vehicles.
type Engine struct {
	store      *Store
	ledger     EnergyLedger
	env        SunSource
	log        logging.Logger
	background *BackgroundProducer

	controllers map[string]*ProductionController // by collector ID
	motion      map[string]MotionModel           // by vehicle ID

	recorder StatusRecorder

	tickListeners []func(time.Time)
}

// NewEngine assembles the production engine. curves supplies reference
// degradation curves for the dormant path.
func NewEngine(store *Store, ledger EnergyLedger, env SunSource, curves CurveSource, log logging.Logger) *Engine {
	if log == nil {
		log = logging.Noop()
	}
	return &Engine{
		store:       store,
		ledger:      ledger,
		env:         env,
		log:         log,
		background:  NewBackgroundProducer(store, ledger, curves),
		controllers: make(map[string]*ProductionController),
		motion:      make(map[string]MotionModel),
	}
}

// SetStatusRecorder installs a metrics mirror for tick outcomes.
func (e *Engine) SetStatusRecorder(rec StatusRecorder) {
	e.recorder = rec
}

// RegisterTickListener adds a callback invoked after every engine tick.
func (e *Engine) RegisterTickListener(fn func(time.Time)) {
	e.tickListeners = append(e.tickListeners, fn)
}

// BindCollector binds a part's native collector component through the
// given binder and wires a production controller for it. Binding and
// initialization failures disable the component for the session and are
// never fatal to the vehicle: the part simply produces nothing.
func (e *Engine) BindCollector(ctx context.Context, part *model.Part, native any, binder AdapterBinder, now time.Time) error {
	vehicle := e.store.GetVehicle(part.VehicleID)
	if vehicle == nil {
		return ErrVehicleNotFound
	}

	ad, err := binder(part, native)
	if err != nil {
		e.log.Warn(ctx, "collector binding failed",
			logging.String("part", part.ID),
			logging.String("error", err.Error()))
		return err
	}

	// Reuse a restored record when the snapshot carried one; otherwise
	// this is a fresh collector activated now.
	rec := e.store.GetCollectorRecord(part.ID)
	fresh := rec == nil
	if fresh {
		rec = &model.CollectorRecord{
			ID:          part.ID,
			VehicleID:   part.VehicleID,
			PartID:      part.ID,
			Variant:     ad.VariantName(),
			ActivatedAt: now,
		}
	}

	nominal, err := ad.Initialize()
	if err != nil {
		rec.Disabled = true
		if fresh {
			_ = e.store.AddCollectorRecord(rec)
		}
		e.log.Warn(ctx, "collector initialization failed; component disabled",
			logging.String("part", part.ID),
			logging.String("variant", ad.VariantName()),
			logging.String("error", err.Error()))
		return errors.Join(ErrInitFailed, err)
	}

	// Nominal rate is immutable after the first successful
	// initialization; a restored record's value wins.
	if rec.NominalRate == 0 {
		rec.NominalRate = nominal
	}
	rec.Variant = ad.VariantName()
	rec.State = ad.CurrentState()
	// A disable is per session; this rebind is the fresh attempt.
	rec.Disabled = false

	if fresh {
		if err := e.store.AddCollectorRecord(rec); err != nil {
			return err
		}
	}

	e.controllers[rec.ID] = NewProductionController(vehicle, rec, ad, e.ledger, e.store, e.log)
	e.log.Info(ctx, "collector bound",
		logging.String("part", part.ID),
		logging.String("variant", ad.VariantName()),
		logging.Float64("nominal_rate", rec.NominalRate))
	return nil
}

// SetMotionModel assigns the motion model driving a vehicle's position.
func (e *Engine) SetMotionModel(vehicleID string, m MotionModel) {
	e.motion[vehicleID] = m
}

// Controller returns the controller bound to a collector, or nil.
func (e *Engine) Controller(collectorID string) *ProductionController {
	return e.controllers[collectorID]
}

// Tick advances the whole fleet by one simulation step of length dt.
// Loaded vehicles get the full per-collector geometry evaluation; dormant
// vehicles get the persisted-scalar background path over the same
// interval.
func (e *Engine) Tick(now time.Time, dt time.Duration) {
	for _, v := range e.store.ListVehicles() {
		if m, ok := e.motion[v.ID]; ok {
			m.UpdatePosition(now, v)
		}

		sun, ok := e.env.ContextFor(v.ID)
		if !ok {
			continue
		}

		if !v.Loaded {
			e.background.ProcessVehicle(v.ID, now, dt, sun)
			continue
		}

		for _, rec := range e.store.RecordsForVehicle(v.ID) {
			pc, bound := e.controllers[rec.ID]
			if !bound {
				continue
			}
			st := pc.Tick(now, dt, sun)
			if e.recorder != nil {
				e.recorder.SetCollectorStatus(v.ID, rec.ID, rec.State, st.RatePerSec)
			}
		}
	}

	for _, fn := range e.tickListeners {
		fn(now)
	}
}
