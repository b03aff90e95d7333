package core

import (
	"errors"
	"testing"

	"github.com/helioworks/solararray-simulator/model"
	"github.com/helioworks/solararray-simulator/parts"
)

const testScenario = `{
  "name": "single lander",
  "vehicles": [
    {
      "id": "lander-1",
      "name": "Lander One",
      "situation": "landed",
      "loaded": true,
      "positionKm": {"x": 6371, "y": 0, "z": 0},
      "parts": [
        {
          "id": "panel-1",
          "name": "port panel",
          "offsetM": {"x": -2, "y": 0, "z": 0},
          "boundingRadius": 1.5,
          "component": {
            "type": "deployable-tracking-array",
            "rate": 10,
            "surfaceNormal": {"x": 0, "y": 0, "z": 1},
            "pivotAxis": {"x": 1, "y": 0, "z": 0},
            "tracking": true,
            "retractable": true,
            "animationSecs": 4
          }
        },
        {
          "id": "hull",
          "name": "hull",
          "offsetM": {"x": 0, "y": 0, "z": 0},
          "boundingRadius": 2
        }
      ],
      "scenery": [
        {"name": "crater wall", "centerM": {"x": 30, "y": 0, "z": 0}, "radius": 20}
      ]
    },
    {
      "id": "sat-1",
      "name": "Sat One",
      "situation": "orbiting",
      "tle1": "1 25544U 98067A   26058.54037539  .00016717  00000-0  10270-3 0  9000",
      "tle2": "2 25544  51.6442 147.0064 0004607 107.0270 253.1428 15.49644834334473",
      "parts": [
        {
          "id": "wrap-1",
          "name": "wraparound",
          "offsetM": {"x": 0, "y": 1, "z": 0},
          "component": {
            "type": "curved-array",
            "rate": 6,
            "surfaceNormals": [
              {"x": 1, "y": 0, "z": 0},
              {"x": 0, "y": 1, "z": 0},
              {"x": -1, "y": 0, "z": 0}
            ],
            "retractable": false,
            "deployed": true
          }
        }
      ]
    }
  ]
}`

func TestParseScenario(t *testing.T) {
	sc, err := ParseScenario([]byte(testScenario))
	if err != nil {
		t.Fatalf("ParseScenario: %v", err)
	}

	if sc.Name != "single lander" {
		t.Errorf("name = %q", sc.Name)
	}
	if len(sc.Vehicles) != 2 {
		t.Fatalf("got %d vehicles, want 2", len(sc.Vehicles))
	}

	lander := sc.Vehicles[0]
	if !lander.Landed() || lander.MotionSource != model.MotionSourceFixed {
		t.Errorf("lander = %+v", lander)
	}
	if lander.PositionKm.X != 6371 {
		t.Errorf("lander position = %+v", lander.PositionKm)
	}

	sat := sc.Vehicles[1]
	if sat.MotionSource != model.MotionSourceTLE || sat.TLE1 == "" {
		t.Errorf("sat = %+v", sat)
	}

	if len(sc.Parts) != 3 {
		t.Fatalf("got %d parts, want 3", len(sc.Parts))
	}

	arr, ok := sc.Components["panel-1"].(*parts.DeployableArray)
	if !ok {
		t.Fatalf("panel-1 component = %T, want *parts.DeployableArray", sc.Components["panel-1"])
	}
	if arr.ChargeRate != 10 || !arr.Tracking || !arr.Retractable {
		t.Errorf("deployable = %+v", arr)
	}

	wrap, ok := sc.Components["wrap-1"].(*parts.CurvedArray)
	if !ok {
		t.Fatalf("wrap-1 component = %T, want *parts.CurvedArray", sc.Components["wrap-1"])
	}
	if len(wrap.SurfaceNormals) != 3 {
		t.Errorf("curved surfaces = %d, want 3", len(wrap.SurfaceNormals))
	}
	if wrap.DeployToken() != parts.CurvedStateExtended {
		t.Errorf("deploy token = %q, want extended at scenario start", wrap.DeployToken())
	}

	if _, exists := sc.Components["hull"]; exists {
		t.Error("occluder-only part must not get a component")
	}
}

func TestParseScenario_Invalid(t *testing.T) {
	cases := []struct {
		name string
		json string
	}{
		{"empty", `{}`},
		{"no id", `{"vehicles":[{"situation":"landed","positionKm":{"x":1}}]}`},
		{"bad situation", `{"vehicles":[{"id":"v","situation":"swimming","positionKm":{"x":1}}]}`},
		{"no position", `{"vehicles":[{"id":"v","situation":"orbiting"}]}`},
		{"landed with tle", `{"vehicles":[{"id":"v","situation":"landed","tle1":"a","tle2":"b"}]}`},
		{"part without id", `{"vehicles":[{"id":"v","situation":"landed","positionKm":{"x":1},"parts":[{"name":"x"}]}]}`},
	}
	for _, tc := range cases {
		if _, err := ParseScenario([]byte(tc.json)); !errors.Is(err, ErrScenarioInvalid) {
			t.Errorf("%s: error = %v, want ErrScenarioInvalid", tc.name, err)
		}
	}
}

func TestParseScenario_UnknownComponentType(t *testing.T) {
	src := `{"vehicles":[{"id":"v","situation":"landed","positionKm":{"x":1},
		"parts":[{"id":"p","component":{"type":"antigravity-sail","rate":5}}]}]}`

	sc, err := ParseScenario([]byte(src))
	if err != nil {
		t.Fatalf("ParseScenario: %v", err)
	}
	// The part survives; the nil component makes binding fail later.
	if len(sc.Parts) != 1 {
		t.Fatalf("got %d parts, want 1", len(sc.Parts))
	}
	if sc.Parts[0].ComponentType != "antigravity-sail" {
		t.Errorf("component type = %q", sc.Parts[0].ComponentType)
	}
	if native, exists := sc.Components["p"]; !exists || native != nil {
		t.Errorf("component entry = (%v, %v), want recorded nil", native, exists)
	}
}

func TestScenario_Populate(t *testing.T) {
	sc, err := ParseScenario([]byte(testScenario))
	if err != nil {
		t.Fatalf("ParseScenario: %v", err)
	}

	store := NewStore()
	if err := sc.Populate(store); err != nil {
		t.Fatalf("Populate: %v", err)
	}

	if store.GetVehicle("lander-1") == nil || store.GetVehicle("sat-1") == nil {
		t.Fatal("vehicles not populated")
	}
	if store.GetPart("panel-1") == nil {
		t.Fatal("parts not populated")
	}

	occs := store.Occluders("lander-1")
	// The hull and the panel occlude by bounding radius, plus the crater
	// wall scenery.
	if len(occs) != 3 {
		t.Fatalf("got %d occluders, want 3", len(occs))
	}
}
