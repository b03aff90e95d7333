package core

import "sync"

// EnergyLedger accepts produced energy. Amounts are fractional EC;
// deposits are additive and commutative, and no upper bound is enforced
// here. Capacity and clamping are the consumer's responsibility.
type EnergyLedger interface {
	Produce(vehicleID string, amount float64, sourceTag string)
}

// ProducedRecorder mirrors ledger deposits into an external sink, e.g.
// Prometheus counters.
type ProducedRecorder interface {
	AddEnergy(vehicleID, sourceTag string, amount float64)
}

// Ledger is the in-memory per-vehicle energy accumulator.
type Ledger struct {
	mu sync.Mutex

	totals   map[string]float64
	bySource map[string]map[string]float64

	recorder ProducedRecorder
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		totals:   make(map[string]float64),
		bySource: make(map[string]map[string]float64),
	}
}

// SetRecorder installs an external deposit mirror. Nil disables it.
func (l *Ledger) SetRecorder(rec ProducedRecorder) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.recorder = rec
}

// Produce deposits energy for a vehicle, tagged with its source collector.
func (l *Ledger) Produce(vehicleID string, amount float64, sourceTag string) {
	if vehicleID == "" || amount == 0 {
		return
	}

	l.mu.Lock()
	l.totals[vehicleID] += amount
	m, ok := l.bySource[vehicleID]
	if !ok {
		m = make(map[string]float64)
		l.bySource[vehicleID] = m
	}
	m[sourceTag] += amount
	rec := l.recorder
	l.mu.Unlock()

	if rec != nil {
		rec.AddEnergy(vehicleID, sourceTag, amount)
	}
}

// Total returns the accumulated energy for a vehicle.
func (l *Ledger) Total(vehicleID string) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totals[vehicleID]
}

// BySource returns a copy of the vehicle's per-source totals.
func (l *Ledger) BySource(vehicleID string) map[string]float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make(map[string]float64, len(l.bySource[vehicleID]))
	for tag, v := range l.bySource[vehicleID] {
		out[tag] = v
	}
	return out
}
