package engine

import (
	"github.com/dvoicu/process-simulator/internal/actuator"
	"github.com/dvoicu/process-simulator/internal/core"
	"github.com/dvoicu/process-simulator/internal/waveform"
)

// State represents the run state of the tick orchestrator
type State int

const (
	StateIdle State = iota
	StateRunning
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateRunning:
		return "Running"
	case StatePaused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// TickResult is handed to rendering and publishing consumers after each tick
type TickResult struct {
	Sample   core.Sample
	Stats    core.WindowStats
	HasStats bool // false while the window is empty
}

// Recorder is an append-only sink for tick records. Append must not block;
// failures are reported by the engine and never abort a tick.
type Recorder interface {
	Name() string
	Append(core.Sample) error
}

// Callbacks for orchestrator events. They run synchronously on the caller's
// goroutine while the engine lock is held and must not call back into the
// engine.
type Callbacks struct {
	OnStateChange func(from, to State)
	OnAlarmChange func(from, to core.AlarmState)
	OnReset       func()
}

// Config holds the initial engine parameters
type Config struct {
	Waveform          waveform.Config
	AlarmHigh         float64
	AlarmLow          float64
	ActuatorMode      actuator.Mode
	ManualOverride    bool
	ActuatorThreshold float64
	HistoryLength     int
	LoggingEnabled    bool
}

// DefaultConfig returns the default engine parameters
func DefaultConfig() Config {
	return Config{
		Waveform:          waveform.DefaultConfig(),
		AlarmHigh:         32.0,
		AlarmLow:          -10.0,
		ActuatorMode:      actuator.ModeAuto,
		ManualOverride:    false,
		ActuatorThreshold: 20.0,
		HistoryLength:     100,
		LoggingEnabled:    false,
	}
}

// Snapshot is a copy of all observable engine state for pollers
type Snapshot struct {
	State             State
	SimulationTime    float64
	LoggingEnabled    bool
	Waveform          waveform.Config
	AlarmHigh         float64
	AlarmLow          float64
	AlarmTriggered    bool
	ActuatorMode      actuator.Mode
	ManualOverride    bool
	ActuatorThreshold float64
	TicksTotal        int
	WarningsTotal     int
	CriticalsTotal    int
	LastSample        core.Sample
	HasSample         bool
	Stats             core.WindowStats
	HasStats          bool
	WindowLen         int
	WindowCapacity    int
}
