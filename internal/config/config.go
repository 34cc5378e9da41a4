// Package config loads simulator settings from an optional TOML file,
// environment variables and command line flags. A missing or broken config
// file is never fatal; the simulator falls back to built-in defaults.
package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/dvoicu/process-simulator/internal/waveform"
)

// Config holds all configuration for the simulator
type Config struct {
	// Core settings
	Name      string `mapstructure:"name"`
	HTTPPort  int    `mapstructure:"http_port"`
	LogLevel  string `mapstructure:"log_level"`
	Autostart bool   `mapstructure:"autostart"`

	// OPC UA settings
	OPCUAEnabled bool `mapstructure:"opcua"`
	OPCUAPort    int  `mapstructure:"opcua_port"`

	// Timing settings
	RefreshRateMs int `mapstructure:"refresh_rate_ms"`
	HistoryLength int `mapstructure:"history_length"`

	// Signal settings
	Waveform  string  `mapstructure:"waveform"`
	Amplitude float64 `mapstructure:"amplitude"`
	Frequency float64 `mapstructure:"frequency"`
	Offset    float64 `mapstructure:"offset"`
	Noise     float64 `mapstructure:"noise"`

	// Alarm settings (degC)
	AlarmHigh float64 `mapstructure:"alarm_high"`
	AlarmLow  float64 `mapstructure:"alarm_low"`

	// Actuator settings
	ActuatorThreshold float64 `mapstructure:"actuator_threshold"`
	ManualMode        bool    `mapstructure:"manual_mode"`
	ManualValue       bool    `mapstructure:"manual_value"`

	// Data logging settings
	Logging bool   `mapstructure:"logging"`
	LogFile string `mapstructure:"log_file"`

	// Telemetry settings
	Telemetry   bool   `mapstructure:"telemetry"`
	TelemetryDB string `mapstructure:"telemetry_db"`
}

// DefaultConfig returns the built-in defaults used when no config file, env
// variable or flag overrides a setting.
func DefaultConfig() *Config {
	return &Config{
		Name:      "ProcessMonitor-01",
		HTTPPort:  8080,
		LogLevel:  "info",
		Autostart: true,

		OPCUAEnabled: true,
		OPCUAPort:    4840,

		RefreshRateMs: 200,
		HistoryLength: 100,

		Waveform:  "sine",
		Amplitude: 10.0,
		Frequency: 0.1,
		Offset:    20.0,
		Noise:     0.5,

		AlarmHigh: 32.0,
		AlarmLow:  -10.0,

		ActuatorThreshold: 20.0,
		ManualMode:        false,
		ManualValue:       false,

		Logging: false,
		LogFile: "data/simulation_log.csv",

		Telemetry:   false,
		TelemetryDB: "data/telemetry.db",
	}
}

// Load reads configuration with the usual precedence: flags override env
// variables, which override the config file, which overrides defaults. The
// args slice is the command line without the program name.
func Load(args []string) (*Config, error) {
	def := DefaultConfig()

	flags := pflag.NewFlagSet("simulator", pflag.ContinueOnError)
	configPath := flags.String("config", "", "Path to a simulator.toml config file")
	flags.Int("http-port", def.HTTPPort, "HTTP API listen port")
	flags.Int("opcua-port", def.OPCUAPort, "OPC UA server listen port")
	flags.String("log-level", def.LogLevel, "Log level (trace, debug, info, warn, error)")
	flags.Bool("autostart", def.Autostart, "Start the simulation immediately")
	if err := flags.Parse(args); err != nil {
		return nil, errors.Wrap(err, "parse flags")
	}

	v := viper.New()
	setDefaults(v, def)

	bindings := map[string]string{
		"http_port":  "http-port",
		"opcua_port": "opcua-port",
		"log_level":  "log-level",
		"autostart":  "autostart",
	}
	for key, name := range bindings {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return nil, errors.Wrapf(err, "bind flag %s", name)
		}
	}

	v.SetEnvPrefix("SIM")
	v.AutomaticEnv()

	v.SetConfigName("simulator")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/process-simulator")

	if *configPath == "" {
		*configPath = os.Getenv("SIMULATOR_CONFIG")
	}
	if *configPath != "" {
		v.SetConfigFile(*configPath)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Debug().Msg("No config file found, using defaults")
		} else {
			log.Warn().Err(err).Msg("Failed to read config file, using defaults")
		}
	} else {
		log.Info().Str("file", v.ConfigFileUsed()).Msg("Loaded configuration")
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}

	cfg.sanitize(def)
	return cfg, nil
}

// RefreshRate returns the wall clock interval between ticks.
func (c *Config) RefreshRate() time.Duration {
	return time.Duration(c.RefreshRateMs) * time.Millisecond
}

// sanitize replaces values the simulator cannot run with by their defaults,
// so a bad config file degrades to a runnable setup instead of a crash.
func (c *Config) sanitize(def *Config) {
	if c.HistoryLength < 1 {
		log.Warn().Int("history_length", c.HistoryLength).Int("default", def.HistoryLength).
			Msg("Invalid history length, using default")
		c.HistoryLength = def.HistoryLength
	}
	if c.RefreshRateMs < 1 {
		log.Warn().Int("refresh_rate_ms", c.RefreshRateMs).Int("default", def.RefreshRateMs).
			Msg("Invalid refresh rate, using default")
		c.RefreshRateMs = def.RefreshRateMs
	}
	if c.AlarmHigh <= c.AlarmLow {
		log.Warn().Float64("alarm_high", c.AlarmHigh).Float64("alarm_low", c.AlarmLow).
			Msg("Alarm high limit must be above low limit, using defaults")
		c.AlarmHigh = def.AlarmHigh
		c.AlarmLow = def.AlarmLow
	}
	if _, err := waveform.ParseShape(c.Waveform); err != nil {
		log.Warn().Str("waveform", c.Waveform).Str("default", def.Waveform).
			Msg("Unknown waveform, using default")
		c.Waveform = def.Waveform
	}
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		log.Warn().Int("http_port", c.HTTPPort).Int("default", def.HTTPPort).
			Msg("Invalid HTTP port, using default")
		c.HTTPPort = def.HTTPPort
	}
	if c.OPCUAPort < 1 || c.OPCUAPort > 65535 {
		log.Warn().Int("opcua_port", c.OPCUAPort).Int("default", def.OPCUAPort).
			Msg("Invalid OPC UA port, using default")
		c.OPCUAPort = def.OPCUAPort
	}
}

func setDefaults(v *viper.Viper, def *Config) {
	v.SetDefault("name", def.Name)
	v.SetDefault("http_port", def.HTTPPort)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("autostart", def.Autostart)
	v.SetDefault("opcua", def.OPCUAEnabled)
	v.SetDefault("opcua_port", def.OPCUAPort)
	v.SetDefault("refresh_rate_ms", def.RefreshRateMs)
	v.SetDefault("history_length", def.HistoryLength)
	v.SetDefault("waveform", def.Waveform)
	v.SetDefault("amplitude", def.Amplitude)
	v.SetDefault("frequency", def.Frequency)
	v.SetDefault("offset", def.Offset)
	v.SetDefault("noise", def.Noise)
	v.SetDefault("alarm_high", def.AlarmHigh)
	v.SetDefault("alarm_low", def.AlarmLow)
	v.SetDefault("actuator_threshold", def.ActuatorThreshold)
	v.SetDefault("manual_mode", def.ManualMode)
	v.SetDefault("manual_value", def.ManualValue)
	v.SetDefault("logging", def.Logging)
	v.SetDefault("log_file", def.LogFile)
	v.SetDefault("telemetry", def.Telemetry)
	v.SetDefault("telemetry_db", def.TelemetryDB)
}
