package core

import (
	"time"
)

// AlarmState classifies an analog reading against the configured safety thresholds
type AlarmState int

const (
	AlarmNormal AlarmState = iota
	AlarmWarning
	AlarmCritical
)

func (s AlarmState) String() string {
	switch s {
	case AlarmNormal:
		return "Normal"
	case AlarmWarning:
		return "Warning"
	case AlarmCritical:
		return "Critical"
	default:
		return "Unknown"
	}
}

// Sample is the immutable record produced by one simulation tick
type Sample struct {
	Time       float64    `json:"time"`       // simulation seconds
	Analog     float64    `json:"analog"`     // process temperature, degC
	Digital    int        `json:"digital"`    // motor state, 0 or 1
	Status     AlarmState `json:"status"`     // alarm classification
	StatusText string     `json:"statusText"` // operator-facing status message
	Timestamp  time.Time  `json:"timestamp"`  // wall clock at tick time
}

// WindowStats holds running statistics over the analog values in the history window
type WindowStats struct {
	Max  float64 `json:"max"`
	Min  float64 `json:"min"`
	Mean float64 `json:"mean"`
}
