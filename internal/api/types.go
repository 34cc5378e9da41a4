package api

import "github.com/dvoicu/process-simulator/internal/core"

// StatusResponse is returned by GET /api/status
type StatusResponse struct {
	Name           string       `json:"name"`
	RunID          string       `json:"runId"`
	State          int          `json:"state"`
	StateName      string       `json:"stateName"`
	SimulationTime float64      `json:"simulationTime"`
	TicksTotal     int          `json:"ticksTotal"`
	WarningsTotal  int          `json:"warningsTotal"`
	CriticalsTotal int          `json:"criticalsTotal"`
	LoggingEnabled bool         `json:"loggingEnabled"`
	OPCUAActive    bool         `json:"opcuaActive"`
	Signal         SignalInfo   `json:"signal"`
	Alarms         AlarmInfo    `json:"alarms"`
	Actuator       ActuatorInfo `json:"actuator"`
}

// SignalInfo describes the configured process signal
type SignalInfo struct {
	Waveform  string  `json:"waveform"`
	Amplitude float64 `json:"amplitude"`
	Frequency float64 `json:"frequency"`
	Offset    float64 `json:"offset"`
	Noise     float64 `json:"noise"`
}

// AlarmInfo describes the alarm thresholds and current trip state
type AlarmInfo struct {
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Triggered bool    `json:"triggered"`
}

// ActuatorInfo describes how the motor command is derived
type ActuatorInfo struct {
	Mode      string  `json:"mode"`
	Override  bool    `json:"override"`
	Threshold float64 `json:"threshold"`
}

// SampleResponse is returned by GET /api/sample
type SampleResponse struct {
	Sample core.Sample       `json:"sample"`
	Stats  *core.WindowStats `json:"stats,omitempty"`
}

// HistoryResponse is returned by GET /api/history
type HistoryResponse struct {
	Samples  []core.Sample `json:"samples"`
	Count    int           `json:"count"`
	Capacity int           `json:"capacity"`
}
