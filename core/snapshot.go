package core

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/helioworks/solararray-simulator/internal/logging"
	"github.com/helioworks/solararray-simulator/model"
)

// collectorSnapshot is the wire form of one persisted collector record.
// Lifecycle state travels as its string token so older and newer builds
// can exchange saves; an unrecognized token restores to Unknown.
type collectorSnapshot struct {
	ID                string             `json:"id"`
	VehicleID         string             `json:"vehicleId"`
	PartID            string             `json:"partId"`
	Variant           string             `json:"variant"`
	NominalRate       float64            `json:"nominalRate"`
	PersistedExposure float64            `json:"persistedExposure"`
	State             string             `json:"state"`
	ActivatedAt       time.Time          `json:"activatedAt"`
	Curve             []model.CurvePoint `json:"curve,omitempty"`
	Disabled          bool               `json:"disabled,omitempty"`
}

// Snapshot is the persisted collector state of the whole fleet.
type Snapshot struct {
	SavedAt    time.Time           `json:"savedAt"`
	Collectors []collectorSnapshot `json:"collectors"`
}

// TakeSnapshot captures every collector record in the store.
func TakeSnapshot(store *Store, now time.Time) *Snapshot {
	snap := &Snapshot{SavedAt: now}
	for _, rec := range store.ListCollectorRecords() {
		cs := collectorSnapshot{
			ID:                rec.ID,
			VehicleID:         rec.VehicleID,
			PartID:            rec.PartID,
			Variant:           rec.Variant,
			NominalRate:       rec.NominalRate,
			PersistedExposure: rec.PersistedExposure,
			State:             rec.State.String(),
			ActivatedAt:       rec.ActivatedAt,
			Disabled:          rec.Disabled,
		}
		if rec.CurveOverride != nil {
			cs.Curve = rec.CurveOverride.Points()
		}
		snap.Collectors = append(snap.Collectors, cs)
	}
	return snap
}

// WriteSnapshotFile saves the snapshot as JSON.
func WriteSnapshotFile(path string, snap *Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing snapshot %q: %w", path, err)
	}
	return nil
}

// ReadSnapshotFile loads a snapshot from disk.
func ReadSnapshotFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot %q: %w", path, err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot %q: %w", path, err)
	}
	return &snap, nil
}

// RestoreSnapshot replays saved collector records into the store. The
// store must already hold the scenario's vehicles and parts; records
// whose part no longer exists are skipped with a warning rather than
// failing the whole restore. A record that carried its own degradation
// curve keeps it as an override.
func RestoreSnapshot(ctx context.Context, store *Store, snap *Snapshot, log logging.Logger) error {
	if log == nil {
		log = logging.Noop()
	}
	for _, cs := range snap.Collectors {
		state, err := model.ParseLifecycleState(cs.State)
		if err != nil {
			log.Warn(ctx, "snapshot carries unrecognized lifecycle token; restoring as unknown",
				logging.String("collector", cs.ID),
				logging.String("token", cs.State))
		}

		rec := &model.CollectorRecord{
			ID:                cs.ID,
			VehicleID:         cs.VehicleID,
			PartID:            cs.PartID,
			Variant:           cs.Variant,
			NominalRate:       cs.NominalRate,
			PersistedExposure: cs.PersistedExposure,
			State:             state,
			ActivatedAt:       cs.ActivatedAt,
			Disabled:          cs.Disabled,
		}
		if len(cs.Curve) > 0 {
			curve, err := model.NewDegradationCurve(cs.Curve)
			if err != nil {
				log.Warn(ctx, "snapshot carries invalid degradation curve; using discovered curve",
					logging.String("collector", cs.ID),
					logging.String("error", err.Error()))
			} else {
				rec.CurveOverride = curve
			}
		}

		if err := store.AddCollectorRecord(rec); err != nil {
			log.Warn(ctx, "skipping snapshot record",
				logging.String("collector", cs.ID),
				logging.String("error", err.Error()))
		}
	}
	return nil
}
