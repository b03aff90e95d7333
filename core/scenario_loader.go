package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/helioworks/solararray-simulator/model"
	"github.com/helioworks/solararray-simulator/parts"
)

// ErrScenarioInvalid marks a scenario file that parsed but fails
// validation.
var ErrScenarioInvalid = errors.New("invalid scenario")

// Scenario is a parsed scenario ready to populate a store. Components
// holds the native collector component built for each part, keyed by part
// ID; the adapter registry binds them afterwards. A part whose component
// type is unknown gets a nil entry and fails at binding, never here.
type Scenario struct {
	Name     string
	Vehicles []*model.Vehicle
	Parts    []*model.Part
	Scenery  map[string][]model.Occluder

	Components map[string]any
}

type vecDTO struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v vecDTO) vec() r3.Vec { return r3.Vec{X: v.X, Y: v.Y, Z: v.Z} }

type componentDTO struct {
	Type string `json:"type"`

	// Rate is the component's nominal output in EC/s at reference
	// distance, in whatever field the vendor keeps it.
	Rate float64 `json:"rate"`

	SurfaceNormal  *vecDTO  `json:"surfaceNormal,omitempty"`
	SurfaceNormals []vecDTO `json:"surfaceNormals,omitempty"`

	PivotAxis          *vecDTO `json:"pivotAxis,omitempty"`
	Tracking           bool    `json:"tracking,omitempty"`
	Retractable        bool    `json:"retractable,omitempty"`
	AnimationSecs      float64 `json:"animationSecs,omitempty"`
	TrackRateRadPerSec float64 `json:"trackRateRadPerSec,omitempty"`

	TargetBody string `json:"targetBody,omitempty"`

	// Deployed starts the component extended instead of retracted.
	Deployed bool `json:"deployed,omitempty"`
}

type partDTO struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	OffsetM        vecDTO        `json:"offsetM"`
	BoundingRadius float64       `json:"boundingRadius,omitempty"`
	Component      *componentDTO `json:"component,omitempty"`
}

type sceneryDTO struct {
	Name    string  `json:"name"`
	CenterM vecDTO  `json:"centerM"`
	Radius  float64 `json:"radius"`
}

type vehicleDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Situation string `json:"situation"`
	Loaded    bool   `json:"loaded"`

	TLE1       string  `json:"tle1,omitempty"`
	TLE2       string  `json:"tle2,omitempty"`
	PositionKm *vecDTO `json:"positionKm,omitempty"`

	Parts   []partDTO    `json:"parts"`
	Scenery []sceneryDTO `json:"scenery,omitempty"`
}

type scenarioDTO struct {
	Name     string       `json:"name"`
	Vehicles []vehicleDTO `json:"vehicles"`
}

// LoadScenario reads and parses a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario %q: %w", path, err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario JSON.
func ParseScenario(data []byte) (*Scenario, error) {
	var dto scenarioDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScenarioInvalid, err)
	}
	if len(dto.Vehicles) == 0 {
		return nil, fmt.Errorf("%w: no vehicles", ErrScenarioInvalid)
	}

	sc := &Scenario{
		Name:       dto.Name,
		Scenery:    make(map[string][]model.Occluder),
		Components: make(map[string]any),
	}

	for _, vd := range dto.Vehicles {
		v, err := buildVehicle(vd)
		if err != nil {
			return nil, err
		}
		sc.Vehicles = append(sc.Vehicles, v)

		for _, pd := range vd.Parts {
			if pd.ID == "" {
				return nil, fmt.Errorf("%w: vehicle %q has a part without an id", ErrScenarioInvalid, vd.ID)
			}
			p := &model.Part{
				ID:             pd.ID,
				VehicleID:      vd.ID,
				Name:           pd.Name,
				OffsetM:        pd.OffsetM.vec(),
				BoundingRadius: pd.BoundingRadius,
			}
			if pd.Component != nil {
				p.ComponentType = pd.Component.Type
				sc.Components[pd.ID] = buildComponent(pd.Component)
			}
			sc.Parts = append(sc.Parts, p)
		}

		for _, sd := range vd.Scenery {
			sc.Scenery[vd.ID] = append(sc.Scenery[vd.ID], model.Occluder{
				Name:    sd.Name,
				CenterM: sd.CenterM.vec(),
				Radius:  sd.Radius,
			})
		}
	}
	return sc, nil
}

func buildVehicle(vd vehicleDTO) (*model.Vehicle, error) {
	if vd.ID == "" {
		return nil, fmt.Errorf("%w: vehicle without an id", ErrScenarioInvalid)
	}

	v := &model.Vehicle{
		ID:     vd.ID,
		Name:   vd.Name,
		Loaded: vd.Loaded,
	}

	switch model.Situation(vd.Situation) {
	case model.SituationOrbiting:
		v.Situation = model.SituationOrbiting
	case model.SituationLanded:
		v.Situation = model.SituationLanded
	default:
		return nil, fmt.Errorf("%w: vehicle %q has unknown situation %q", ErrScenarioInvalid, vd.ID, vd.Situation)
	}

	switch {
	case vd.TLE1 != "" && vd.TLE2 != "":
		if v.Landed() {
			return nil, fmt.Errorf("%w: landed vehicle %q carries TLEs", ErrScenarioInvalid, vd.ID)
		}
		v.MotionSource = model.MotionSourceTLE
		v.TLE1, v.TLE2 = vd.TLE1, vd.TLE2
	case vd.PositionKm != nil:
		v.MotionSource = model.MotionSourceFixed
		v.PositionKm = vd.PositionKm.vec()
	default:
		return nil, fmt.Errorf("%w: vehicle %q needs TLEs or a fixed position", ErrScenarioInvalid, vd.ID)
	}
	return v, nil
}

// buildComponent constructs the native component a part carries. Unknown
// types yield nil so the registry reports the binding failure.
func buildComponent(cd *componentDTO) any {
	switch cd.Type {
	case parts.TypeDeployable:
		arr := &parts.DeployableArray{
			ChargeRate:         cd.Rate,
			SurfaceNormal:      optVec(cd.SurfaceNormal),
			PivotAxis:          optVec(cd.PivotAxis),
			Tracking:           cd.Tracking,
			Retractable:        cd.Retractable,
			AnimationSecs:      cd.AnimationSecs,
			TrackRateRadPerSec: cd.TrackRateRadPerSec,
		}
		if cd.Deployed {
			arr.State = parts.PanelExtended
		}
		return arr

	case parts.TypeFixed:
		return &parts.FixedPanel{
			OutputRate: cd.Rate,
			Enabled:    true,
			Normal:     optVec(cd.SurfaceNormal),
		}

	case parts.TypeCurved:
		arr := parts.NewCurvedArray(cd.Rate, vecs(cd.SurfaceNormals))
		arr.Set(parts.CurvedParamRetractable, cd.Retractable)
		if cd.AnimationSecs > 0 {
			arr.Set(parts.CurvedParamAnimationSecs, cd.AnimationSecs)
		}
		if cd.Deployed {
			arr.Set(parts.CurvedParamDeployState, parts.CurvedStateExtended)
		}
		return arr

	case parts.TypeConcentrator:
		return &parts.ConcentratorArray{
			CollectionRate: cd.Rate,
			TargetBody:     cd.TargetBody,
			SurfaceNormals: vecs(cd.SurfaceNormals),
		}

	default:
		return nil
	}
}

func optVec(v *vecDTO) r3.Vec {
	if v == nil {
		return r3.Vec{}
	}
	return v.vec()
}

func vecs(in []vecDTO) []r3.Vec {
	out := make([]r3.Vec, 0, len(in))
	for _, v := range in {
		out = append(out, v.vec())
	}
	return out
}

// Populate loads the scenario's vehicles, parts, and scenery into the
// store.
func (sc *Scenario) Populate(store *Store) error {
	for _, v := range sc.Vehicles {
		if err := store.AddVehicle(v); err != nil {
			return err
		}
	}
	for _, p := range sc.Parts {
		if err := store.AddPart(p); err != nil {
			return err
		}
	}
	for vehicleID, occs := range sc.Scenery {
		for _, occ := range occs {
			if err := store.AddSceneryOccluder(vehicleID, occ); err != nil {
				return err
			}
		}
	}
	return nil
}
