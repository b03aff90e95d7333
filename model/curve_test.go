package model

import (
	"math"
	"testing"
)

func TestDegradationCurve_NilAndEmptyAreIdentity(t *testing.T) {
	var c *DegradationCurve
	if got := c.Evaluate(1000); got != 1.0 {
		t.Errorf("nil curve: got %v, want 1.0", got)
	}

	empty, err := NewDegradationCurve(nil)
	if err != nil {
		t.Fatalf("NewDegradationCurve(nil): %v", err)
	}
	if got := empty.Evaluate(1000); got != 1.0 {
		t.Errorf("empty curve: got %v, want 1.0", got)
	}
}

func TestDegradationCurve_Interpolation(t *testing.T) {
	c, err := NewDegradationCurve([]CurvePoint{
		{Hours: 0, Multiplier: 1.0},
		{Hours: 8760, Multiplier: 0.8},
	})
	if err != nil {
		t.Fatal(err)
	}

	if got := c.Evaluate(0); got != 1.0 {
		t.Errorf("at 0h: got %v, want 1.0", got)
	}
	if got := c.Evaluate(8760); math.Abs(got-0.8) > 1e-12 {
		t.Errorf("at 8760h: got %v, want 0.8", got)
	}
	if got := c.Evaluate(4380); math.Abs(got-0.9) > 1e-12 {
		t.Errorf("midpoint: got %v, want 0.9", got)
	}
}

func TestDegradationCurve_ClampsOutsideRange(t *testing.T) {
	c, err := NewDegradationCurve([]CurvePoint{
		{Hours: 100, Multiplier: 0.95},
		{Hours: 200, Multiplier: 0.90},
	})
	if err != nil {
		t.Fatal(err)
	}

	if got := c.Evaluate(0); math.Abs(got-0.95) > 1e-12 {
		t.Errorf("before first knot: got %v, want 0.95", got)
	}
	if got := c.Evaluate(1e6); math.Abs(got-0.90) > 1e-12 {
		t.Errorf("after last knot: got %v, want 0.90", got)
	}
}

func TestDegradationCurve_SinglePointIsConstant(t *testing.T) {
	c, err := NewDegradationCurve([]CurvePoint{{Hours: 500, Multiplier: 0.7}})
	if err != nil {
		t.Fatal(err)
	}
	for _, h := range []float64{0, 500, 99999} {
		if got := c.Evaluate(h); got != 0.7 {
			t.Errorf("at %vh: got %v, want 0.7", h, got)
		}
	}
}

func TestDegradationCurve_RejectsDuplicateKnots(t *testing.T) {
	_, err := NewDegradationCurve([]CurvePoint{
		{Hours: 10, Multiplier: 1},
		{Hours: 10, Multiplier: 0.5},
	})
	if err == nil {
		t.Fatal("expected error for duplicate knots")
	}
}
