package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/dvoicu/process-simulator/internal/actuator"
	"github.com/dvoicu/process-simulator/internal/api"
	"github.com/dvoicu/process-simulator/internal/config"
	"github.com/dvoicu/process-simulator/internal/core"
	"github.com/dvoicu/process-simulator/internal/datalog"
	"github.com/dvoicu/process-simulator/internal/engine"
	"github.com/dvoicu/process-simulator/internal/health"
	"github.com/dvoicu/process-simulator/internal/opcua"
	"github.com/dvoicu/process-simulator/internal/telemetry"
	"github.com/dvoicu/process-simulator/internal/waveform"
)

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Recover from panics
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic")
		}
	}()

	log.Info().Msg("Starting Process Monitor Simulator")

	// Load configuration
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	} else {
		log.Warn().Str("log_level", cfg.LogLevel).Msg("Unknown log level, using info")
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	runID := uuid.NewString()

	log.Info().
		Str("name", cfg.Name).
		Str("runId", runID).
		Int("http_port", cfg.HTTPPort).
		Int("opcua_port", cfg.OPCUAPort).
		Str("waveform", cfg.Waveform).
		Int("refresh_rate_ms", cfg.RefreshRateMs).
		Msg("Configuration loaded")

	// Setup context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Build the engine from configuration
	shape, _ := waveform.ParseShape(cfg.Waveform)
	engCfg := engine.Config{
		Waveform: waveform.Config{
			Shape:       shape,
			Amplitude:   cfg.Amplitude,
			Frequency:   cfg.Frequency,
			Offset:      cfg.Offset,
			NoiseStdDev: cfg.Noise,
		},
		AlarmHigh:         cfg.AlarmHigh,
		AlarmLow:          cfg.AlarmLow,
		ActuatorMode:      actuator.ModeAuto,
		ManualOverride:    cfg.ManualValue,
		ActuatorThreshold: cfg.ActuatorThreshold,
		HistoryLength:     cfg.HistoryLength,
		LoggingEnabled:    cfg.Logging,
	}
	if cfg.ManualMode {
		engCfg.ActuatorMode = actuator.ModeManual
	}

	eng := engine.New(engCfg, core.NewNoiseGenerator())

	// Setup callbacks
	eng.SetCallbacks(engine.Callbacks{
		OnStateChange: func(from, to engine.State) {
			log.Info().
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Engine state changed")
		},
		OnAlarmChange: func(from, to core.AlarmState) {
			log.Info().
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Alarm state changed")
		},
		OnReset: func() {
			log.Info().Msg("Simulation reset")
		},
	})

	// Attach the CSV data log; samples are only written while logging is
	// enabled, but the recorder stays attached so the toggle works at runtime
	csvLog, err := datalog.New(cfg.LogFile)
	if err != nil {
		log.Warn().Err(err).Str("file", cfg.LogFile).Msg("CSV logging unavailable")
	} else {
		eng.AddRecorder(csvLog)
		log.Info().Str("file", csvLog.Path()).Bool("enabled", cfg.Logging).Msg("CSV data log attached")
	}

	// Attach the telemetry recorder when configured
	var telemetryRec *telemetry.Recorder
	if cfg.Telemetry {
		telemetryRec, err = telemetry.NewRecorder(cfg.TelemetryDB, runID)
		if err != nil {
			log.Warn().Err(err).Str("db", cfg.TelemetryDB).Msg("Telemetry unavailable")
			telemetryRec = nil
		} else {
			eng.AddRecorder(telemetryRec)
			log.Info().Str("db", cfg.TelemetryDB).Msg("Telemetry recorder attached")
			if !cfg.Logging {
				log.Info().Msg("Telemetry recorder idle until logging is enabled")
			}
		}
	}

	healthHandler := health.NewHandler(cfg.OPCUAEnabled)

	// Start OPC UA server
	var opcServer *opcua.Server
	if cfg.OPCUAEnabled {
		opcServer = opcua.NewServer(cfg.OPCUAPort, cfg.Name)
		if err := opcServer.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to start OPC UA server")
		}
		healthHandler.SetOPCUAReady(true)
	}

	// Start HTTP server (health checks + REST API)
	mux := http.NewServeMux()
	healthHandler.Register(mux)

	apiHandler := api.NewHandler(cfg.Name, runID, eng, opcServer)
	apiHandler.Register(mux)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("Starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("HTTP server error")
		}
	}()

	// Control signals: SIGUSR1 toggles run/pause, SIGUSR2 resets the run
	controlCh := make(chan os.Signal, 1)
	signal.Notify(controlCh, syscall.SIGUSR1, syscall.SIGUSR2)
	defer signal.Stop(controlCh)
	go func() {
		for sig := range controlCh {
			switch sig {
			case syscall.SIGUSR1:
				log.Info().Msg("Received SIGUSR1, toggling run state")
				eng.ToggleRunning()
			case syscall.SIGUSR2:
				log.Info().Msg("Received SIGUSR2, resetting simulation")
				eng.Reset()
			}
		}
	}()

	if cfg.Autostart {
		eng.Start()
	} else {
		log.Info().Msg("Autostart disabled, send SIGUSR1 to start the simulation")
	}

	healthHandler.SetEngineReady(true)

	// Main simulation loop
	ticker := time.NewTicker(cfg.RefreshRate())
	defer ticker.Stop()

	log.Info().
		Dur("interval", cfg.RefreshRate()).
		Msg("Starting simulation loop")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Shutdown signal received")
			goto shutdown

		case now := <-ticker.C:
			result := eng.Tick()

			snap := eng.Snapshot()
			if opcServer != nil {
				opcServer.UpdateValues(snap)
			}

			// Log periodic status
			if result != nil && now.Second()%10 == 0 {
				log.Debug().
					Str("state", snap.State.String()).
					Float64("simTime", snap.SimulationTime).
					Float64("temperature", result.Sample.Analog).
					Int("motor", result.Sample.Digital).
					Str("status", result.Sample.StatusText).
					Msg("Simulation tick")
			}
		}
	}

shutdown:
	log.Info().Msg("Shutting down...")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// Shutdown OPC UA server
	if opcServer != nil {
		if err := opcServer.Stop(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("OPC UA server shutdown error")
		}
	}

	// Drain and close the telemetry recorder
	if telemetryRec != nil {
		if err := telemetryRec.Close(); err != nil {
			log.Error().Err(err).Msg("Telemetry close error")
		}
	}

	log.Info().Msg("Simulator stopped")
}
