package core

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/helioworks/solararray-simulator/model"
)

type fixtureOccluders []model.Occluder

func (f fixtureOccluders) Occluders(string) []model.Occluder { return f }

func TestOcclusion_NoOccluders(t *testing.T) {
	e := NewExposureEvaluator(fixtureOccluders(nil))
	res := e.Occlusion("veh", "panel", []r3.Vec{{}}, r3.Vec{X: 1})
	if res.Factor != 1 {
		t.Fatalf("Factor = %v, want 1", res.Factor)
	}
	if res.OccluderName != "" || res.Terrain {
		t.Fatalf("unexpected blocker: %+v", res)
	}
}

func TestOcclusion_OwnPartNeverBlocks(t *testing.T) {
	e := NewExposureEvaluator(fixtureOccluders{
		{PartID: "panel", Name: "panel", CenterM: r3.Vec{X: 2}, Radius: 1},
	})
	res := e.Occlusion("veh", "panel", []r3.Vec{{}}, r3.Vec{X: 1})
	if res.Factor != 1 {
		t.Fatalf("Factor = %v, want 1 (self-occlusion excluded)", res.Factor)
	}
}

func TestOcclusion_PartBlockerCarriesName(t *testing.T) {
	e := NewExposureEvaluator(fixtureOccluders{
		{PartID: "dish", Name: "high-gain dish", CenterM: r3.Vec{X: 3}, Radius: 1},
	})
	res := e.Occlusion("veh", "panel", []r3.Vec{{}}, r3.Vec{X: 1})
	if res.Factor != 0 {
		t.Fatalf("Factor = %v, want 0", res.Factor)
	}
	if res.OccluderName != "high-gain dish" {
		t.Errorf("OccluderName = %q, want %q", res.OccluderName, "high-gain dish")
	}
	if res.Terrain {
		t.Error("part blocker must not be reported as terrain")
	}
}

func TestOcclusion_SceneryBlockerIsTerrain(t *testing.T) {
	e := NewExposureEvaluator(fixtureOccluders{
		{Name: "cliff face", CenterM: r3.Vec{X: 3}, Radius: 1},
	})
	res := e.Occlusion("veh", "panel", []r3.Vec{{}}, r3.Vec{X: 1})
	if res.Factor != 0 {
		t.Fatalf("Factor = %v, want 0", res.Factor)
	}
	if res.OccluderName != "" {
		t.Errorf("OccluderName = %q, want empty for scenery", res.OccluderName)
	}
	if !res.Terrain {
		t.Error("scenery blocker should be reported as terrain")
	}
}

func TestOcclusion_SurfaceAveraging(t *testing.T) {
	// Blocker sits in front of the first surface only.
	e := NewExposureEvaluator(fixtureOccluders{
		{PartID: "dish", Name: "dish", CenterM: r3.Vec{X: 3}, Radius: 1},
	})
	origins := []r3.Vec{{}, {Y: 10}}
	res := e.Occlusion("veh", "panel", origins, r3.Vec{X: 1})
	if res.Factor != 0.5 {
		t.Fatalf("Factor = %v, want 0.5", res.Factor)
	}
}

func TestOcclusion_NoSurfaces(t *testing.T) {
	e := NewExposureEvaluator(fixtureOccluders(nil))
	res := e.Occlusion("veh", "panel", nil, r3.Vec{X: 1})
	if res.Factor != 1 {
		t.Fatalf("Factor = %v, want 1 for no surfaces", res.Factor)
	}
}

type recordingSink struct {
	rays    int
	blocked int
}

func (s *recordingSink) Ray(origin, dir r3.Vec, blocked bool, occluder string) {
	s.rays++
	if blocked {
		s.blocked++
	}
}

func TestOcclusion_TraceSinkSeesEveryRay(t *testing.T) {
	e := NewExposureEvaluator(fixtureOccluders{
		{PartID: "dish", Name: "dish", CenterM: r3.Vec{X: 3}, Radius: 1},
	})
	sink := &recordingSink{}
	e.SetTraceSink(sink)

	e.Occlusion("veh", "panel", []r3.Vec{{}, {Y: 10}}, r3.Vec{X: 1})
	if sink.rays != 2 {
		t.Errorf("sink saw %d rays, want 2", sink.rays)
	}
	if sink.blocked != 1 {
		t.Errorf("sink saw %d blocked rays, want 1", sink.blocked)
	}
}
