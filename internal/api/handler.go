// Package api serves the read-only REST endpoints the dashboard polls. All
// routes are GET; the process is observed over HTTP, never driven by it.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/dvoicu/process-simulator/internal/core"
	"github.com/dvoicu/process-simulator/internal/engine"
	"github.com/dvoicu/process-simulator/internal/opcua"
)

// Handler handles REST API requests for the simulator
type Handler struct {
	name  string
	runID string
	eng   *engine.Engine
	opc   *opcua.Server
}

// NewHandler creates an API handler. The OPC UA server may be nil when it is
// disabled in the configuration.
func NewHandler(name, runID string, eng *engine.Engine, opc *opcua.Server) *Handler {
	return &Handler{
		name:  name,
		runID: runID,
		eng:   eng,
		opc:   opc,
	}
}

// Register wires the API routes onto the given mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/status", h.HandleStatus)
	mux.HandleFunc("/api/sample", h.HandleSample)
	mux.HandleFunc("/api/history", h.HandleHistory)
}

// HandleStatus handles GET /api/status
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snap := h.eng.Snapshot()

	resp := StatusResponse{
		Name:           h.name,
		RunID:          h.runID,
		State:          int(snap.State),
		StateName:      snap.State.String(),
		SimulationTime: snap.SimulationTime,
		TicksTotal:     snap.TicksTotal,
		WarningsTotal:  snap.WarningsTotal,
		CriticalsTotal: snap.CriticalsTotal,
		LoggingEnabled: snap.LoggingEnabled,
		Signal: SignalInfo{
			Waveform:  snap.Waveform.Shape.String(),
			Amplitude: snap.Waveform.Amplitude,
			Frequency: snap.Waveform.Frequency,
			Offset:    snap.Waveform.Offset,
			Noise:     snap.Waveform.NoiseStdDev,
		},
		Alarms: AlarmInfo{
			High:      snap.AlarmHigh,
			Low:       snap.AlarmLow,
			Triggered: snap.AlarmTriggered,
		},
		Actuator: ActuatorInfo{
			Mode:      snap.ActuatorMode.String(),
			Override:  snap.ManualOverride,
			Threshold: snap.ActuatorThreshold,
		},
	}

	if h.opc != nil {
		resp.OPCUAActive = h.opc.Started()
	}

	h.writeJSON(w, resp)
}

// HandleSample handles GET /api/sample
func (h *Handler) HandleSample(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snap := h.eng.Snapshot()
	if !snap.HasSample {
		http.Error(w, "No data yet", http.StatusNotFound)
		return
	}

	resp := SampleResponse{Sample: snap.LastSample}
	if snap.HasStats {
		stats := snap.Stats
		resp.Stats = &stats
	}

	h.writeJSON(w, resp)
}

// HandleHistory handles GET /api/history
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	samples := h.eng.History()
	if samples == nil {
		samples = []core.Sample{}
	}

	resp := HistoryResponse{
		Samples:  samples,
		Count:    len(samples),
		Capacity: h.eng.Snapshot().WindowCapacity,
	}

	h.writeJSON(w, resp)
}

func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
