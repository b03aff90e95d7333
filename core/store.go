package core

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/helioworks/solararray-simulator/model"
)

var (
	ErrVehicleExists   = errors.New("vehicle already exists")
	ErrVehicleNotFound = errors.New("vehicle not found")
	ErrPartExists      = errors.New("part already exists")
	ErrPartNotFound    = errors.New("part not found")
	ErrRecordExists    = errors.New("collector record already exists")
	ErrRecordNotFound  = errors.New("collector record not found")
	ErrStoreBadInput   = errors.New("invalid store input")
)

// EventType indicates what kind of change happened in the store.
type EventType int

const (
	EventCollectorUpdated EventType = iota
	EventVehicleUpdated
)

// Event is emitted to subscribers when persisted state changes. The
// automation/reliability collaborators consume these.
type Event struct {
	Type      EventType
	VehicleID string
	Collector model.CollectorRecord
}

// Store is the in-memory, mutex-guarded home of vehicles, parts, scenery
// occluders, and persisted collector records. All simulation-facing reads
// and writes go through it so the metrics endpoint and external
// collaborators can access state concurrently with the tick loop.
type Store struct {
	mu sync.RWMutex

	vehicles map[string]*model.Vehicle
	parts    map[string]*model.Part
	records  map[string]*model.CollectorRecord
	scenery  map[string][]model.Occluder

	subs    map[int]func(Event)
	nextSub int
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		vehicles: make(map[string]*model.Vehicle),
		parts:    make(map[string]*model.Part),
		records:  make(map[string]*model.CollectorRecord),
		scenery:  make(map[string][]model.Occluder),
		subs:     make(map[int]func(Event)),
	}
}

//
// ---------- Vehicles ----------
//

func (s *Store) AddVehicle(v *model.Vehicle) error {
	if v == nil || v.ID == "" {
		return fmt.Errorf("%w: nil or empty vehicle", ErrStoreBadInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.vehicles[v.ID]; exists {
		return fmt.Errorf("%w: %q", ErrVehicleExists, v.ID)
	}
	// Stored by pointer so motion models can update positions in place.
	s.vehicles[v.ID] = v
	return nil
}

// GetVehicle returns the vehicle with the given ID, or nil if not found.
func (s *Store) GetVehicle(id string) *model.Vehicle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vehicles[id]
}

// ListVehicles returns all vehicles sorted by ID for deterministic
// iteration order in the tick loop.
func (s *Store) ListVehicles() []*model.Vehicle {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Vehicle, 0, len(s.vehicles))
	for _, v := range s.vehicles {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SetVehicleLoaded flips a vehicle between full simulation and dormant
// evaluation.
func (s *Store) SetVehicleLoaded(id string, loaded bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.vehicles[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrVehicleNotFound, id)
	}
	v.Loaded = loaded
	return nil
}

//
// ---------- Parts ----------
//

func (s *Store) AddPart(p *model.Part) error {
	if p == nil || p.ID == "" {
		return fmt.Errorf("%w: nil or empty part", ErrStoreBadInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.parts[p.ID]; exists {
		return fmt.Errorf("%w: %q", ErrPartExists, p.ID)
	}
	if _, ok := s.vehicles[p.VehicleID]; !ok {
		return fmt.Errorf("%w: %q for part %q", ErrVehicleNotFound, p.VehicleID, p.ID)
	}
	s.parts[p.ID] = p
	return nil
}

// GetPart returns the part with the given ID, or nil if not found.
func (s *Store) GetPart(id string) *model.Part {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.parts[id]
}

// PartsForVehicle returns the vehicle's parts sorted by ID.
func (s *Store) PartsForVehicle(vehicleID string) []*model.Part {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*model.Part
	for _, p := range s.parts {
		if p.VehicleID == vehicleID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

//
// ---------- Scenery occluders ----------
//

// AddSceneryOccluder registers a non-part occluder (terrain feature,
// launch clamp, structure) near a vehicle.
func (s *Store) AddSceneryOccluder(vehicleID string, occ model.Occluder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.vehicles[vehicleID]; !ok {
		return fmt.Errorf("%w: %q", ErrVehicleNotFound, vehicleID)
	}
	occ.PartID = "" // scenery never carries a part identity
	s.scenery[vehicleID] = append(s.scenery[vehicleID], occ)
	return nil
}

// Occluders implements OccluderSource: every part with a bounding radius
// plus any scenery registered for the vehicle.
func (s *Store) Occluders(vehicleID string) []model.Occluder {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Occluder
	for _, p := range s.parts {
		if p.VehicleID != vehicleID || p.BoundingRadius <= 0 {
			continue
		}
		out = append(out, model.Occluder{
			PartID:  p.ID,
			Name:    p.Name,
			CenterM: p.OffsetM,
			Radius:  p.BoundingRadius,
		})
	}
	out = append(out, s.scenery[vehicleID]...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].PartID != out[j].PartID {
			return out[i].PartID < out[j].PartID
		}
		return out[i].Name < out[j].Name
	})
	return out
}

//
// ---------- Collector records ----------
//

func (s *Store) AddCollectorRecord(rec *model.CollectorRecord) error {
	if rec == nil || rec.ID == "" {
		return fmt.Errorf("%w: nil or empty collector record", ErrStoreBadInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[rec.ID]; exists {
		return fmt.Errorf("%w: %q", ErrRecordExists, rec.ID)
	}
	if rec.PartID != "" {
		if _, ok := s.parts[rec.PartID]; !ok {
			return fmt.Errorf("%w: %q for collector %q", ErrPartNotFound, rec.PartID, rec.ID)
		}
	}
	s.records[rec.ID] = rec
	return nil
}

// GetCollectorRecord returns the record with the given ID, or nil.
func (s *Store) GetCollectorRecord(id string) *model.CollectorRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records[id]
}

// RecordsForVehicle returns the vehicle's collector records sorted by ID.
func (s *Store) RecordsForVehicle(vehicleID string) []*model.CollectorRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*model.CollectorRecord
	for _, rec := range s.records {
		if rec.VehicleID == vehicleID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ListCollectorRecords returns every record sorted by ID.
func (s *Store) ListCollectorRecords() []*model.CollectorRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.CollectorRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// NotifyCollectorUpdated publishes a change to the given record. Called by
// the production layer after geometry-derived writes and by the
// reliability collaborator after forced state changes.
func (s *Store) NotifyCollectorUpdated(id string) {
	s.mu.RLock()
	rec, ok := s.records[id]
	var event Event
	if ok {
		event = Event{
			Type:      EventCollectorUpdated,
			VehicleID: rec.VehicleID,
			Collector: *rec, // copy for safety
		}
	}
	subs := make([]func(Event), 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.RUnlock()

	if !ok {
		return
	}
	// Notify outside the lock to avoid deadlocks.
	for _, sub := range subs {
		sub(event)
	}
}

// Subscribe registers a callback for store events. It returns an
// unsubscribe function; calling it more than once is harmless.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}
