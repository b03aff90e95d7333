package model

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/interp"
)

// CurvePoint is one knot of a degradation curve: output multiplier after
// the given number of hours since collector activation.
type CurvePoint struct {
	Hours      float64 `json:"hours" yaml:"hours"`
	Multiplier float64 `json:"multiplier" yaml:"multiplier"`
}

// DegradationCurve maps hours-since-activation to an output multiplier in
// [0,1]. The mapping is piecewise linear between knots and clamped to the
// first/last knot outside the fitted range. Monotonic decay is the
// convention but is not enforced.
type DegradationCurve struct {
	points []CurvePoint
	pl     interp.PiecewiseLinear
	fitted bool
}

// NewDegradationCurve builds a curve from the given knots. Knots are
// sorted by hours; duplicate hour values are rejected. An empty knot set
// is valid and evaluates to a constant 1.0.
func NewDegradationCurve(points []CurvePoint) (*DegradationCurve, error) {
	c := &DegradationCurve{points: append([]CurvePoint(nil), points...)}
	sort.Slice(c.points, func(i, j int) bool { return c.points[i].Hours < c.points[j].Hours })

	for i := 1; i < len(c.points); i++ {
		if c.points[i].Hours == c.points[i-1].Hours {
			return nil, fmt.Errorf("degradation curve: duplicate knot at %v hours", c.points[i].Hours)
		}
	}

	if len(c.points) >= 2 {
		xs := make([]float64, len(c.points))
		ys := make([]float64, len(c.points))
		for i, p := range c.points {
			xs[i] = p.Hours
			ys[i] = p.Multiplier
		}
		if err := c.pl.Fit(xs, ys); err != nil {
			return nil, fmt.Errorf("degradation curve: %w", err)
		}
		c.fitted = true
	}
	return c, nil
}

// Evaluate returns the multiplier at the given elapsed hours. A nil or
// empty curve is the identity (1.0).
func (c *DegradationCurve) Evaluate(hours float64) float64 {
	if c == nil || len(c.points) == 0 {
		return 1.0
	}
	if len(c.points) == 1 {
		return c.points[0].Multiplier
	}
	// Clamp into the fitted range; wear outside the configured knots
	// holds at the nearest knot value.
	if hours < c.points[0].Hours {
		hours = c.points[0].Hours
	}
	if last := c.points[len(c.points)-1].Hours; hours > last {
		hours = last
	}
	return c.pl.Predict(hours)
}

// Points returns a copy of the curve knots, sorted by hours.
func (c *DegradationCurve) Points() []CurvePoint {
	if c == nil {
		return nil
	}
	return append([]CurvePoint(nil), c.points...)
}
