package alarm

import (
	"fmt"

	"github.com/dvoicu/process-simulator/internal/core"
)

// System classifies analog readings against a high and a low safety limit.
// Classification is a total function for any limit pair: the high limit is
// checked first, so Critical wins if the limits are ever inverted.
type System struct {
	highLimit float64
	lowLimit  float64
	triggered bool
}

// Evaluation is the outcome of classifying one analog reading
type Evaluation struct {
	State   core.AlarmState `json:"state"`
	Message string          `json:"message"`
	Color   string          `json:"color"` // severity color for display layers
}

// NewSystem creates an alarm system with the given limits
func NewSystem(highLimit, lowLimit float64) *System {
	return &System{
		highLimit: highLimit,
		lowLimit:  lowLimit,
	}
}

// Evaluate classifies a reading. Readings at or above the high limit are
// Critical, readings at or below the low limit are Warning, everything
// strictly between is Normal.
func (s *System) Evaluate(value float64) Evaluation {
	switch {
	case value >= s.highLimit:
		s.triggered = true
		return Evaluation{State: core.AlarmCritical, Message: "CRITICAL: HIGH TEMP", Color: "red"}
	case value <= s.lowLimit:
		s.triggered = true
		return Evaluation{State: core.AlarmWarning, Message: "WARNING: LOW TEMP", Color: "orange"}
	default:
		s.triggered = false
		return Evaluation{State: core.AlarmNormal, Message: "SYSTEM NORMAL", Color: "green"}
	}
}

// SetThresholds replaces both limits. The pair is rejected and the previous
// limits kept when high is not strictly above low.
func (s *System) SetThresholds(highLimit, lowLimit float64) error {
	if highLimit <= lowLimit {
		return fmt.Errorf("high limit must be above low limit, got high=%f low=%f", highLimit, lowLimit)
	}
	s.highLimit = highLimit
	s.lowLimit = lowLimit
	return nil
}

// Thresholds returns the current high and low limits
func (s *System) Thresholds() (highLimit, lowLimit float64) {
	return s.highLimit, s.lowLimit
}

// Triggered reports whether the most recent evaluation was non-Normal
func (s *System) Triggered() bool {
	return s.triggered
}
