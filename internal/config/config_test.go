package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvoicu/process-simulator/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "simulator.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load(nil)
	require.NoError(t, err, "loading without a config file should succeed")

	assert.Equal(t, "ProcessMonitor-01", cfg.Name)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, 4840, cfg.OPCUAPort)
	assert.True(t, cfg.OPCUAEnabled)
	assert.True(t, cfg.Autostart)
	assert.Equal(t, 200, cfg.RefreshRateMs)
	assert.Equal(t, 100, cfg.HistoryLength)
	assert.Equal(t, "sine", cfg.Waveform)
	assert.InDelta(t, 10.0, cfg.Amplitude, 1e-9)
	assert.InDelta(t, 0.1, cfg.Frequency, 1e-9)
	assert.InDelta(t, 20.0, cfg.Offset, 1e-9)
	assert.InDelta(t, 0.5, cfg.Noise, 1e-9)
	assert.InDelta(t, 32.0, cfg.AlarmHigh, 1e-9)
	assert.InDelta(t, -10.0, cfg.AlarmLow, 1e-9)
	assert.InDelta(t, 20.0, cfg.ActuatorThreshold, 1e-9)
	assert.False(t, cfg.Logging, "CSV logging should be off by default")
	assert.False(t, cfg.Telemetry, "telemetry should be off by default")
	assert.Equal(t, "data/simulation_log.csv", cfg.LogFile)
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
name = "Boiler-07"
http_port = 9090
waveform = "square"
amplitude = 5.0
alarm_high = 40.0
alarm_low = 5.0
logging = true
`)

	cfg, err := config.Load([]string{"--config", path})
	require.NoError(t, err)

	assert.Equal(t, "Boiler-07", cfg.Name)
	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, "square", cfg.Waveform)
	assert.InDelta(t, 5.0, cfg.Amplitude, 1e-9)
	assert.InDelta(t, 40.0, cfg.AlarmHigh, 1e-9)
	assert.InDelta(t, 5.0, cfg.AlarmLow, 1e-9)
	assert.True(t, cfg.Logging)

	assert.Equal(t, 100, cfg.HistoryLength, "unset keys should keep their defaults")
	assert.InDelta(t, 0.1, cfg.Frequency, 1e-9)
}

func TestConfigPathFromEnv(t *testing.T) {
	path := writeConfig(t, `name = "EnvConfigured-01"`)
	t.Setenv("SIMULATOR_CONFIG", path)

	cfg, err := config.Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "EnvConfigured-01", cfg.Name)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `offset = 15.0`)
	t.Setenv("SIM_OFFSET", "25.5")
	t.Setenv("SIM_ALARM_HIGH", "50.0")

	cfg, err := config.Load([]string{"--config", path})
	require.NoError(t, err)

	assert.InDelta(t, 25.5, cfg.Offset, 1e-9, "env should override the file value")
	assert.InDelta(t, 50.0, cfg.AlarmHigh, 1e-9)
}

func TestFlagOverridesFile(t *testing.T) {
	path := writeConfig(t, `http_port = 9000`)

	cfg, err := config.Load([]string{"--config", path, "--http-port", "9999"})
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.HTTPPort, "flags should take precedence over the file")
}

func TestBrokenFileFallsBackToDefaults(t *testing.T) {
	path := writeConfig(t, `this is not [valid toml`)

	cfg, err := config.Load([]string{"--config", path})
	require.NoError(t, err, "a broken config file should not be fatal")
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "sine", cfg.Waveform)
}

func TestSanitizeInvalidValues(t *testing.T) {
	path := writeConfig(t, `
history_length = 0
refresh_rate_ms = -5
alarm_high = 1.0
alarm_low = 5.0
waveform = "triangle"
http_port = 70000
`)

	cfg, err := config.Load([]string{"--config", path})
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.HistoryLength, "non-positive history length should fall back")
	assert.Equal(t, 200, cfg.RefreshRateMs, "non-positive refresh rate should fall back")
	assert.InDelta(t, 32.0, cfg.AlarmHigh, 1e-9, "inverted limits should fall back as a pair")
	assert.InDelta(t, -10.0, cfg.AlarmLow, 1e-9)
	assert.Equal(t, "sine", cfg.Waveform, "unknown waveform should fall back")
	assert.Equal(t, 8080, cfg.HTTPPort, "out-of-range port should fall back")
}

func TestUnknownFlagFails(t *testing.T) {
	_, err := config.Load([]string{"--no-such-flag"})
	require.Error(t, err)
}

func TestRefreshRate(t *testing.T) {
	cfg, err := config.Load(nil)
	require.NoError(t, err)
	assert.Equal(t, 200*time.Millisecond, cfg.RefreshRate())
}
