package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvoicu/process-simulator/internal/api"
	"github.com/dvoicu/process-simulator/internal/core"
	"github.com/dvoicu/process-simulator/internal/engine"
)

func newTestEngine() *engine.Engine {
	cfg := engine.DefaultConfig()
	cfg.Waveform.NoiseStdDev = 0
	cfg.Waveform.Frequency = 0
	return engine.New(cfg, core.NewSeededNoiseGenerator(1))
}

func serveRequest(t *testing.T, h *api.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	mux := http.NewServeMux()
	h.Register(mux)

	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestStatusBeforeFirstTick(t *testing.T) {
	eng := newTestEngine()
	h := api.NewHandler("TestMonitor", "run-1", eng, nil)

	rec := serveRequest(t, h, http.MethodGet, "/api/status")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp api.StatusResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	assert.Equal(t, "TestMonitor", resp.Name)
	assert.Equal(t, "run-1", resp.RunID)
	assert.Equal(t, "Idle", resp.StateName)
	assert.Equal(t, 0, resp.TicksTotal)
	assert.Equal(t, "Sine", resp.Signal.Waveform)
	assert.InDelta(t, 32.0, resp.Alarms.High, 1e-9)
	assert.Equal(t, "Auto", resp.Actuator.Mode)
	assert.False(t, resp.OPCUAActive, "no OPC UA server was attached")
}

func TestSampleBeforeFirstTickReturnsNotFound(t *testing.T) {
	h := api.NewHandler("TestMonitor", "run-1", newTestEngine(), nil)

	rec := serveRequest(t, h, http.MethodGet, "/api/sample")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSampleAfterTick(t *testing.T) {
	eng := newTestEngine()
	eng.Start()
	require.NotNil(t, eng.Tick())

	h := api.NewHandler("TestMonitor", "run-1", eng, nil)
	rec := serveRequest(t, h, http.MethodGet, "/api/sample")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.SampleResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	assert.InDelta(t, 0.1, resp.Sample.Time, 1e-9)
	assert.InDelta(t, 20.0, resp.Sample.Analog, 1e-9, "a flat noiseless signal sits at the offset")
	assert.Equal(t, "SYSTEM NORMAL", resp.Sample.StatusText)
	require.NotNil(t, resp.Stats, "stats should be present once the window has data")
	assert.InDelta(t, 20.0, resp.Stats.Mean, 1e-9)
}

func TestHistoryReturnsSamplesInOrder(t *testing.T) {
	eng := newTestEngine()
	eng.Start()
	for i := 0; i < 3; i++ {
		require.NotNil(t, eng.Tick())
	}

	h := api.NewHandler("TestMonitor", "run-1", eng, nil)
	rec := serveRequest(t, h, http.MethodGet, "/api/history")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.HistoryResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	require.Equal(t, 3, resp.Count)
	require.Len(t, resp.Samples, 3)
	assert.Equal(t, 100, resp.Capacity)
	assert.InDelta(t, 0.1, resp.Samples[0].Time, 1e-9, "history should be oldest first")
	assert.InDelta(t, 0.3, resp.Samples[2].Time, 1e-9)
}

func TestHistoryEmptyWindow(t *testing.T) {
	h := api.NewHandler("TestMonitor", "run-1", newTestEngine(), nil)

	rec := serveRequest(t, h, http.MethodGet, "/api/history")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.HistoryResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 0, resp.Count)
	assert.NotNil(t, resp.Samples, "an empty history should encode as [], not null")
}

func TestMethodNotAllowed(t *testing.T) {
	h := api.NewHandler("TestMonitor", "run-1", newTestEngine(), nil)

	for _, path := range []string{"/api/status", "/api/sample", "/api/history"} {
		rec := serveRequest(t, h, http.MethodPost, path)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, "POST %s should be rejected", path)
	}
}
