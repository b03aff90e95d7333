package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/helioworks/solararray-simulator/model"
)

type stubSun struct {
	ctx model.SunContext
	ok  bool
}

func (s stubSun) ContextFor(string) (model.SunContext, bool) { return s.ctx, s.ok }

type recordedStatus struct {
	vehicleID   string
	collectorID string
	state       model.LifecycleState
	rate        float64
}

type stubStatusRecorder struct {
	statuses []recordedStatus
}

func (r *stubStatusRecorder) SetCollectorStatus(vehicleID, collectorID string, state model.LifecycleState, rate float64) {
	r.statuses = append(r.statuses, recordedStatus{vehicleID, collectorID, state, rate})
}

func engineFixture(t *testing.T, loaded bool) (*Engine, *Store, *Ledger, *model.Part) {
	t.Helper()
	store := NewStore()
	ledger := NewLedger()
	if err := store.AddVehicle(&model.Vehicle{
		ID:        "veh-1",
		Situation: model.SituationOrbiting,
		Loaded:    loaded,
	}); err != nil {
		t.Fatal(err)
	}
	part := &model.Part{ID: "panel-1", VehicleID: "veh-1", Name: "panel"}
	if err := store.AddPart(part); err != nil {
		t.Fatal(err)
	}

	env := stubSun{ctx: fullSun(), ok: true}
	eng := NewEngine(store, ledger, env, nil, nil)
	return eng, store, ledger, part
}

func stubBinder(ad CollectorAdapter, err error) AdapterBinder {
	return func(*model.Part, any) (CollectorAdapter, error) { return ad, err }
}

func TestBindCollector_CreatesRecord(t *testing.T) {
	eng, store, _, part := engineFixture(t, true)
	ad := newStubAdapter()

	now := productionEpoch
	if err := eng.BindCollector(context.Background(), part, nil, stubBinder(ad, nil), now); err != nil {
		t.Fatalf("BindCollector: %v", err)
	}

	rec := store.GetCollectorRecord("panel-1")
	if rec == nil {
		t.Fatal("no record created")
	}
	if rec.NominalRate != 10 {
		t.Errorf("nominal = %v, want 10", rec.NominalRate)
	}
	if rec.Variant != "stub" {
		t.Errorf("variant = %q, want %q", rec.Variant, "stub")
	}
	if !rec.ActivatedAt.Equal(now) {
		t.Errorf("activated at = %v, want %v", rec.ActivatedAt, now)
	}
	if eng.Controller("panel-1") == nil {
		t.Error("no controller wired for the new record")
	}
}

func TestBindCollector_BinderFailure(t *testing.T) {
	eng, store, _, part := engineFixture(t, true)
	bindErr := errors.New("no such component")

	err := eng.BindCollector(context.Background(), part, nil, stubBinder(nil, bindErr), productionEpoch)
	if !errors.Is(err, bindErr) {
		t.Fatalf("BindCollector error = %v, want the binder's error", err)
	}
	if store.GetCollectorRecord("panel-1") != nil {
		t.Error("binding failure must not create a record")
	}
}

func TestBindCollector_InitFailureDisables(t *testing.T) {
	eng, store, _, part := engineFixture(t, true)
	ad := newStubAdapter()
	ad.initErr = errors.New("zero surfaces")

	err := eng.BindCollector(context.Background(), part, nil, stubBinder(ad, nil), productionEpoch)
	if !errors.Is(err, ErrInitFailed) {
		t.Fatalf("BindCollector error = %v, want ErrInitFailed", err)
	}

	rec := store.GetCollectorRecord("panel-1")
	if rec == nil {
		t.Fatal("a disabled record should still be kept")
	}
	if !rec.Disabled {
		t.Error("record should be disabled after init failure")
	}
}

func TestBindCollector_RestoredNominalWins(t *testing.T) {
	eng, store, _, part := engineFixture(t, true)

	restored := &model.CollectorRecord{
		ID: "panel-1", VehicleID: "veh-1", PartID: "panel-1",
		Variant: "stub", NominalRate: 7, PersistedExposure: 0.3,
		State: model.StateExtended, ActivatedAt: productionEpoch.Add(-1000 * time.Hour),
	}
	if err := store.AddCollectorRecord(restored); err != nil {
		t.Fatal(err)
	}

	ad := newStubAdapter() // would report nominal 10
	if err := eng.BindCollector(context.Background(), part, nil, stubBinder(ad, nil), productionEpoch); err != nil {
		t.Fatalf("BindCollector: %v", err)
	}

	rec := store.GetCollectorRecord("panel-1")
	if rec.NominalRate != 7 {
		t.Errorf("nominal = %v, want restored 7", rec.NominalRate)
	}
	if rec.PersistedExposure != 0.3 {
		t.Errorf("persisted exposure = %v, want restored 0.3", rec.PersistedExposure)
	}
}

func TestBindCollector_ReenablesRestoredDisabledRecord(t *testing.T) {
	eng, store, ledger, part := engineFixture(t, true)

	// A collector disabled in a previous session: the disable is per
	// session, so a successful rebind is a fresh attempt.
	restored := &model.CollectorRecord{
		ID: "panel-1", VehicleID: "veh-1", PartID: "panel-1",
		Variant: "stub", NominalRate: 10, PersistedExposure: 1,
		State: model.StateExtended, ActivatedAt: productionEpoch,
		Disabled: true,
	}
	if err := store.AddCollectorRecord(restored); err != nil {
		t.Fatal(err)
	}

	ad := newStubAdapter()
	if err := eng.BindCollector(context.Background(), part, nil, stubBinder(ad, nil), productionEpoch); err != nil {
		t.Fatalf("BindCollector: %v", err)
	}

	rec := store.GetCollectorRecord("panel-1")
	if rec.Disabled {
		t.Fatal("record still disabled after a successful re-initialization")
	}

	eng.Tick(productionEpoch.Add(time.Second), time.Second)
	if got := ledger.Total("veh-1"); !approx(got, 10) {
		t.Fatalf("ledger total = %v, want 10 from the re-enabled collector", got)
	}
}

func TestTick_LoadedVehicleProduces(t *testing.T) {
	eng, _, ledger, part := engineFixture(t, true)
	ad := newStubAdapter()
	if err := eng.BindCollector(context.Background(), part, nil, stubBinder(ad, nil), productionEpoch); err != nil {
		t.Fatal(err)
	}

	recorder := &stubStatusRecorder{}
	eng.SetStatusRecorder(recorder)

	eng.Tick(productionEpoch.Add(time.Second), time.Second)

	if got := ledger.Total("veh-1"); !approx(got, 10) {
		t.Fatalf("ledger total = %v, want 10", got)
	}
	if len(recorder.statuses) != 1 {
		t.Fatalf("recorder saw %d statuses, want 1", len(recorder.statuses))
	}
	if !approx(recorder.statuses[0].rate, 10) {
		t.Errorf("mirrored rate = %v, want 10", recorder.statuses[0].rate)
	}
}

func TestTick_DormantVehicleUsesBackgroundPath(t *testing.T) {
	eng, store, ledger, _ := engineFixture(t, false)

	rec := &model.CollectorRecord{
		ID: "panel-1", VehicleID: "veh-1", PartID: "panel-1",
		Variant: "stub", NominalRate: 10, PersistedExposure: 0.5,
		State: model.StateExtended, ActivatedAt: productionEpoch,
	}
	if err := store.AddCollectorRecord(rec); err != nil {
		t.Fatal(err)
	}

	eng.Tick(productionEpoch.Add(time.Hour), time.Hour)

	if got := ledger.Total("veh-1"); !approx(got, 5*3600) {
		t.Fatalf("ledger total = %v, want %v via the dormant path", got, 5*3600.0)
	}
}

func TestTick_NoSunContextSkipsVehicle(t *testing.T) {
	store := NewStore()
	ledger := NewLedger()
	if err := store.AddVehicle(&model.Vehicle{ID: "veh-1", Situation: model.SituationOrbiting, Loaded: true}); err != nil {
		t.Fatal(err)
	}
	eng := NewEngine(store, ledger, stubSun{ok: false}, nil, nil)

	eng.Tick(productionEpoch.Add(time.Second), time.Second)
	if got := ledger.Total("veh-1"); got != 0 {
		t.Fatalf("ledger total = %v, want 0 without a sun context", got)
	}
}

func TestTick_ListenersInvoked(t *testing.T) {
	eng, _, _, _ := engineFixture(t, true)

	var seen []time.Time
	eng.RegisterTickListener(func(now time.Time) { seen = append(seen, now) })

	now := productionEpoch.Add(time.Second)
	eng.Tick(now, time.Second)
	if len(seen) != 1 || !seen[0].Equal(now) {
		t.Fatalf("listener saw %v, want one call at %v", seen, now)
	}
}

func TestSetMotionModel_DrivesPosition(t *testing.T) {
	eng, store, _, _ := engineFixture(t, true)

	moved := false
	eng.SetMotionModel("veh-1", motionFunc(func(simTime time.Time, v *model.Vehicle) {
		moved = true
		v.PositionKm.X = 7000
	}))

	eng.Tick(productionEpoch.Add(time.Second), time.Second)
	if !moved {
		t.Fatal("motion model not invoked")
	}
	if store.GetVehicle("veh-1").PositionKm.X != 7000 {
		t.Error("position update not applied")
	}
}

type motionFunc func(time.Time, *model.Vehicle)

func (f motionFunc) UpdatePosition(simTime time.Time, v *model.Vehicle) { f(simTime, v) }
