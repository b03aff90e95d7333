package core

import (
	"context"
	"time"

	"github.com/helioworks/solararray-simulator/internal/logging"
	"github.com/helioworks/solararray-simulator/model"
)

// ProductionController owns one collector's per-tick evaluation: it reads
// geometry through the adapter, decides between direct and analytic
// evaluation, combines the result with persisted degradation and flux
// state, and deposits the outcome into the vehicle's energy ledger.
//
// It never drives animation timing itself: lifecycle transitions are only
// observed from the adapter, or requested on behalf of external
// automation.
type ProductionController struct {
	vehicle *model.Vehicle
	record  *model.CollectorRecord
	adapter CollectorAdapter
	ledger  EnergyLedger
	store   *Store
	log     logging.Logger

	// wasAnalytic tracks the previous tick's mode so entering analytic
	// mode can refresh the persisted exposure exactly once.
	wasAnalytic bool

	lastStatus Status
}

// NewProductionController wires a controller for one bound collector.
func NewProductionController(vehicle *model.Vehicle, record *model.CollectorRecord,
	adapter CollectorAdapter, ledger EnergyLedger, store *Store, log logging.Logger) *ProductionController {

	if log == nil {
		log = logging.Noop()
	}
	return &ProductionController{
		vehicle: vehicle,
		record:  record,
		adapter: adapter,
		ledger:  ledger,
		store:   store,
		log:     log,
	}
}

// Record exposes the controller's persisted record.
func (pc *ProductionController) Record() *model.CollectorRecord {
	return pc.record
}

// Adapter exposes the bound adapter, for automation collaborators.
func (pc *ProductionController) Adapter() CollectorAdapter {
	return pc.adapter
}

// LastStatus returns the most recent tick outcome for the status surface.
func (pc *ProductionController) LastStatus() Status {
	return pc.lastStatus
}

// Tick evaluates the collector for one fully-simulated step and deposits
// the produced energy. dt is elapsed simulated time.
func (pc *ProductionController) Tick(now time.Time, dt time.Duration, sun model.SunContext) Status {
	st := pc.evaluate(now, dt, sun)
	pc.lastStatus = st

	if st.Producing && st.RatePerSec > 0 && dt > 0 {
		pc.ledger.Produce(pc.vehicle.ID, st.RatePerSec*dt.Seconds(), pc.record.ID)
	}
	return st
}

func (pc *ProductionController) evaluate(now time.Time, dt time.Duration, sun model.SunContext) Status {
	if pc.record.Disabled {
		return Status{Reason: ReasonDisabled}
	}

	pc.adapter.OnTick(sun.SunDir, dt)

	state := pc.adapter.CurrentState()
	if state != pc.record.State {
		pc.record.State = state
		if pc.store != nil {
			pc.store.NotifyCollectorUpdated(pc.record.ID)
		}
	}

	if !state.Producing() {
		pc.wasAnalytic = false
		return Status{Reason: reasonForState(state)}
	}

	// Full shadow: zero output, and the persisted exposure keeps its
	// last reliable value.
	if sun.SunlightFraction <= 0 {
		pc.wasAnalytic = false
		return Status{Reason: ReasonShadow}
	}

	analytic := sun.SunlightFraction < 1

	var exposure float64
	var occluderName string

	if analytic {
		// Per-tick geometry cannot be trusted under time compression.
		// A stationary vehicle refreshes its persisted exposure from
		// the rotation average once, at the moment analytic mode is
		// entered; afterwards the frozen value stands in for
		// sun-tracking attitude keeping.
		if !pc.wasAnalytic && pc.vehicle.Landed() {
			pc.record.PersistedExposure = AveragedExposure(pc.adapter, sun.SunDir)
		}
		pc.wasAnalytic = true
		exposure = pc.record.PersistedExposure
	} else {
		pc.wasAnalytic = false

		alignment := pc.adapter.AlignmentFactor(sun.SunDir, false)
		if alignment <= ExposureEpsilon {
			pc.record.PersistedExposure = 0
			return Status{Reason: ReasonBadOrientation}
		}

		occ := pc.adapter.OcclusionFactor(sun.SunDir, false)
		exposure = alignment * occ.Factor
		occluderName = occ.OccluderName

		// Occlusion by a distinct, presumably static part is
		// representative and persists with the product; scenery and
		// terrain blockage is attitude- and position-dependent and is
		// excluded from the persisted value.
		if occ.OccluderName != "" {
			pc.record.PersistedExposure = exposure
		} else {
			pc.record.PersistedExposure = alignment
		}

		if occ.Factor <= ExposureEpsilon {
			if occluderName != "" {
				return Status{Reason: ReasonOccludedByPart, Occluder: occluderName}
			}
			return Status{Reason: ReasonOccludedByTerrain}
		}
	}

	wear := pc.effectiveCurve().Evaluate(pc.record.HoursSinceActivation(now))
	fluxScalar := sun.FluxWm2 / ReferenceFluxWm2

	return Status{
		Producing:  true,
		RatePerSec: pc.record.NominalRate * wear * fluxScalar * exposure,
		Exposure:   exposure,
		Wear:       wear,
		FluxScalar: fluxScalar,
		Analytic:   analytic,
		Occluder:   occluderName,
	}
}

// effectiveCurve prefers a curve carried in from older save data over the
// adapter-discovered one.
func (pc *ProductionController) effectiveCurve() *model.DegradationCurve {
	if pc.record.CurveOverride != nil {
		return pc.record.CurveOverride
	}
	return pc.adapter.DegradationCurve()
}

// RequestExtend asks the adapter to extend on behalf of external
// automation. The controller only forwards the request; the resulting
// state is whatever the adapter reports next tick.
func (pc *ProductionController) RequestExtend(ctx context.Context) error {
	if !pc.adapter.IsExtendable() || !pc.adapter.SupportsLiveAutomation() {
		return ErrAutomationUnsupported
	}
	err := pc.adapter.Extend()
	if err == nil {
		pc.log.Info(ctx, "collector extend requested",
			logging.String("collector", pc.record.ID))
	}
	return err
}

// RequestRetract asks the adapter to retract.
func (pc *ProductionController) RequestRetract(ctx context.Context) error {
	if !pc.adapter.IsExtendable() || !pc.adapter.SupportsLiveAutomation() {
		return ErrAutomationUnsupported
	}
	err := pc.adapter.Retract()
	if err == nil {
		pc.log.Info(ctx, "collector retract requested",
			logging.String("collector", pc.record.ID))
	}
	return err
}

// SetFailed propagates an externally-triggered failure or repair from the
// reliability collaborator.
func (pc *ProductionController) SetFailed(failed bool) {
	pc.adapter.SetFailed(failed)
	if failed {
		pc.record.State = model.StateFailure
	} else {
		pc.record.State = pc.adapter.CurrentState()
	}
	if pc.store != nil {
		pc.store.NotifyCollectorUpdated(pc.record.ID)
	}
}
