package core

import (
	"fmt"

	"github.com/helioworks/solararray-simulator/model"
)

// Reason is a human-readable non-producing reason code. Zero-production
// outcomes are expected steady states, not errors.
type Reason string

const (
	ReasonNone              Reason = ""
	ReasonShadow            Reason = "shadow"
	ReasonBadOrientation    Reason = "bad-orientation"
	ReasonOccludedByPart    Reason = "occluded-by-part"
	ReasonOccludedByTerrain Reason = "occluded-by-terrain"
	ReasonRetracted         Reason = "retracted"
	ReasonExtending         Reason = "extending"
	ReasonRetracting        Reason = "retracting"
	ReasonBroken            Reason = "broken"
	ReasonFailure           Reason = "failure"
	ReasonUnknownState      Reason = "unknown-state"
	ReasonDisabled          Reason = "disabled"
)

// Status is the per-tick outcome of one collector's evaluation, feeding
// the UI/status reporting surface.
type Status struct {
	Producing bool
	Reason    Reason

	// Occluder is the blocking part's name when Reason is
	// ReasonOccludedByPart.
	Occluder string

	// RatePerSec is the current output in EC/s.
	RatePerSec float64
	Exposure   float64
	Wear       float64
	FluxScalar float64

	// Analytic reports which evaluation mode produced this status.
	Analytic bool
}

// Describe renders the status for display.
func (s Status) Describe() string {
	if s.Producing {
		return fmt.Sprintf("%.2f EC/s (exposure %.0f%%, wear %.0f%%)",
			s.RatePerSec, s.Exposure*100, (1-s.Wear)*100)
	}
	if s.Reason == ReasonOccludedByPart && s.Occluder != "" {
		return fmt.Sprintf("occluded by %s", s.Occluder)
	}
	if s.Reason == ReasonOccludedByTerrain {
		return "occluded by terrain"
	}
	return string(s.Reason)
}

// reasonForState maps a non-producing lifecycle state to its reason code.
func reasonForState(state model.LifecycleState) Reason {
	switch state {
	case model.StateRetracted:
		return ReasonRetracted
	case model.StateExtending:
		return ReasonExtending
	case model.StateRetracting:
		return ReasonRetracting
	case model.StateBroken:
		return ReasonBroken
	case model.StateFailure:
		return ReasonFailure
	default:
		return ReasonUnknownState
	}
}
