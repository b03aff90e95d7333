package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/helioworks/solararray-simulator/model"
)

// ProductionCollector bundles the Prometheus metrics for the production
// engine: energy deposits, per-collector state and rate, and tick
// latency. It mirrors the ledger and the engine's status surface.
type ProductionCollector struct {
	gatherer prometheus.Gatherer

	EnergyProduced *prometheus.CounterVec
	CollectorState *prometheus.GaugeVec
	ProductionRate *prometheus.GaugeVec
	TickDuration   prometheus.Histogram

	Vehicles   prometheus.Gauge
	Collectors prometheus.Gauge
}

// NewProductionCollector registers the production metrics against the
// provided registerer, defaulting to the global Prometheus registry when
// nil. Re-registration returns the existing collectors so repeated wiring
// in tests is harmless.
func NewProductionCollector(reg prometheus.Registerer) (*ProductionCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	energy := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "solararray_energy_produced_total",
		Help: "Total energy deposited into vehicle ledgers in EC, labeled by vehicle and source collector.",
	}, []string{"vehicle", "collector"})
	energy, err := registerCounterVec(reg, energy, "solararray_energy_produced_total")
	if err != nil {
		return nil, err
	}

	state := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "solararray_collector_state",
		Help: "Current normalized lifecycle state of each collector, as its enum value.",
	}, []string{"vehicle", "collector"})
	state, err = registerGaugeVec(reg, state, "solararray_collector_state")
	if err != nil {
		return nil, err
	}

	rate := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "solararray_production_rate_ec_per_second",
		Help: "Current production rate of each collector in EC/s.",
	}, []string{"vehicle", "collector"})
	rate, err = registerGaugeVec(reg, rate, "solararray_production_rate_ec_per_second")
	if err != nil {
		return nil, err
	}

	tick := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "solararray_tick_duration_seconds",
		Help:    "Wall-clock time spent evaluating one engine tick.",
		Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
	})
	tick, err = registerHistogram(reg, tick, "solararray_tick_duration_seconds")
	if err != nil {
		return nil, err
	}

	vehicles, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "solararray_vehicles",
		Help: "Current number of vehicles in the store.",
	}), "solararray_vehicles")
	if err != nil {
		return nil, err
	}
	collectors, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "solararray_collectors",
		Help: "Current number of bound collector records.",
	}), "solararray_collectors")
	if err != nil {
		return nil, err
	}

	return &ProductionCollector{
		gatherer:       gatherer,
		EnergyProduced: energy,
		CollectorState: state,
		ProductionRate: rate,
		TickDuration:   tick,
		Vehicles:       vehicles,
		Collectors:     collectors,
	}, nil
}

// AddEnergy mirrors a ledger deposit. Implements the ledger's recorder
// hook.
func (c *ProductionCollector) AddEnergy(vehicleID, sourceTag string, amount float64) {
	if c == nil || c.EnergyProduced == nil || amount <= 0 {
		return
	}
	c.EnergyProduced.WithLabelValues(vehicleID, sourceTag).Add(amount)
}

// SetCollectorStatus mirrors one collector's tick outcome. Implements the
// engine's status recorder hook.
func (c *ProductionCollector) SetCollectorStatus(vehicleID, collectorID string, state model.LifecycleState, ratePerSec float64) {
	if c == nil {
		return
	}
	if c.CollectorState != nil {
		c.CollectorState.WithLabelValues(vehicleID, collectorID).Set(float64(state))
	}
	if c.ProductionRate != nil {
		c.ProductionRate.WithLabelValues(vehicleID, collectorID).Set(ratePerSec)
	}
}

// ObserveTick records the wall-clock duration of one engine tick.
func (c *ProductionCollector) ObserveTick(d time.Duration) {
	if c == nil || c.TickDuration == nil {
		return
	}
	c.TickDuration.Observe(d.Seconds())
}

// SetFleetCounts updates the store population gauges.
func (c *ProductionCollector) SetFleetCounts(vehicles, collectors int) {
	if c == nil {
		return
	}
	if c.Vehicles != nil {
		c.Vehicles.Set(float64(vehicles))
	}
	if c.Collectors != nil {
		c.Collectors.Set(float64(collectors))
	}
}

// Handler exposes a ready-to-use /metrics handler.
func (c *ProductionCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGaugeVec(reg prometheus.Registerer, vec *prometheus.GaugeVec, name string) (*prometheus.GaugeVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.GaugeVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
