package actuator

import (
	"fmt"
	"strings"
)

// Mode selects how the digital output is derived
type Mode int

const (
	// ModeAuto derives the output from the analog value and a threshold
	ModeAuto Mode = iota
	// ModeManual forces the output to an operator-set value
	ModeManual
)

func (m Mode) String() string {
	switch m {
	case ModeAuto:
		return "Auto"
	case ModeManual:
		return "Manual"
	default:
		return "Unknown"
	}
}

// ParseMode maps a configuration string to a Mode
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "auto":
		return ModeAuto, nil
	case "manual":
		return ModeManual, nil
	default:
		return ModeAuto, fmt.Errorf("unknown actuator mode %q", s)
	}
}

// Output derives the binary motor state for one tick. In auto mode the motor
// runs only while the analog value is strictly above the threshold; a value
// equal to the threshold keeps it off. In manual mode the override is
// returned verbatim and value and threshold are ignored.
func Output(value float64, mode Mode, override bool, threshold float64) int {
	if mode == ModeManual {
		if override {
			return 1
		}
		return 0
	}
	if value > threshold {
		return 1
	}
	return 0
}
