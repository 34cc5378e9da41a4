package engine

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dvoicu/process-simulator/internal/actuator"
	"github.com/dvoicu/process-simulator/internal/alarm"
	"github.com/dvoicu/process-simulator/internal/core"
	"github.com/dvoicu/process-simulator/internal/history"
	"github.com/dvoicu/process-simulator/internal/waveform"
)

// TimeStep is the fixed simulation time advance per tick, in seconds.
// It is independent of the wall-clock refresh interval driving Tick.
const TimeStep = 0.1

// Engine owns simulation time and drives the signal chain once per tick:
// advance the clock, sample the generator, derive the motor state, classify
// the alarm state, push the sample into the history window and fan it out to
// the registered recorders. All state access is serialized behind one lock so
// ticks, setters and snapshots can come from different goroutines.
type Engine struct {
	mu sync.Mutex

	generator *waveform.Generator
	alarms    *alarm.System
	window    *history.Window

	state State
	clock float64

	loggingEnabled    bool
	actuatorMode      actuator.Mode
	manualOverride    bool
	actuatorThreshold float64

	lastStatus core.AlarmState
	lastSample core.Sample
	hasSample  bool

	ticksTotal     int
	warningsTotal  int
	criticalsTotal int

	recorders []Recorder
	callbacks Callbacks
}

// New creates an engine in the Idle state
func New(cfg Config, noise core.NoiseSource) *Engine {
	return &Engine{
		generator:         waveform.NewGenerator(cfg.Waveform, noise),
		alarms:            alarm.NewSystem(cfg.AlarmHigh, cfg.AlarmLow),
		window:            history.New(cfg.HistoryLength),
		state:             StateIdle,
		loggingEnabled:    cfg.LoggingEnabled,
		actuatorMode:      cfg.ActuatorMode,
		manualOverride:    cfg.ManualOverride,
		actuatorThreshold: cfg.ActuatorThreshold,
	}
}

// SetCallbacks sets the event callbacks
func (e *Engine) SetCallbacks(cb Callbacks) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.callbacks = cb
}

// AddRecorder registers an append-only record sink
func (e *Engine) AddRecorder(r Recorder) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.recorders = append(e.recorders, r)
}

// Tick advances the simulation by one step and returns the produced record.
// It returns nil without side effects when the engine is not Running.
func (e *Engine) Tick() *TickResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateRunning {
		return nil
	}

	e.clock += TimeStep
	analog := e.generator.Sample(e.clock)
	digital := actuator.Output(analog, e.actuatorMode, e.manualOverride, e.actuatorThreshold)
	ev := e.alarms.Evaluate(analog)

	sample := core.Sample{
		Time:       e.clock,
		Analog:     analog,
		Digital:    digital,
		Status:     ev.State,
		StatusText: ev.Message,
		Timestamp:  time.Now(),
	}

	e.window.Push(sample)

	if e.loggingEnabled {
		e.appendLocked(sample)
	}

	e.ticksTotal++
	switch ev.State {
	case core.AlarmWarning:
		e.warningsTotal++
	case core.AlarmCritical:
		e.criticalsTotal++
	}

	if ev.State != e.lastStatus {
		if e.callbacks.OnAlarmChange != nil {
			e.callbacks.OnAlarmChange(e.lastStatus, ev.State)
		}
		e.lastStatus = ev.State
	}

	e.lastSample = sample
	e.hasSample = true

	stats, ok := e.window.Stats()
	return &TickResult{Sample: sample, Stats: stats, HasStats: ok}
}

// appendLocked fans a record out to all recorders. A failed write is reported
// and swallowed; the simulation never stops for a sink.
func (e *Engine) appendLocked(sample core.Sample) {
	for _, r := range e.recorders {
		if err := r.Append(sample); err != nil {
			log.Warn().Err(err).Str("recorder", r.Name()).Msg("Failed to append record")
		}
	}
}

// transitionTo changes the run state and fires the state change callback
func (e *Engine) transitionTo(newState State) {
	if e.state == newState {
		return
	}

	oldState := e.state
	e.state = newState

	if e.callbacks.OnStateChange != nil {
		e.callbacks.OnStateChange(oldState, newState)
	}
}

// Start moves the engine to Running
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.transitionTo(StateRunning)
}

// Pause suspends ticking. Pausing an engine that never ran keeps it Idle.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateRunning {
		e.transitionTo(StatePaused)
	}
}

// ToggleRunning flips between Running and Paused; from Idle it starts
func (e *Engine) ToggleRunning() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateRunning {
		e.transitionTo(StatePaused)
	} else {
		e.transitionTo(StateRunning)
	}
}

// Reset zeroes the clock, clears the history window and the session counters,
// and emits one sentinel record when logging is enabled. Generator parameters,
// thresholds and the run state are left untouched.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.clock = 0
	e.window.Clear()
	e.ticksTotal = 0
	e.warningsTotal = 0
	e.criticalsTotal = 0
	e.hasSample = false

	if e.loggingEnabled {
		e.appendLocked(core.Sample{StatusText: "SYSTEM RESET", Timestamp: time.Now()})
	}

	if e.callbacks.OnReset != nil {
		e.callbacks.OnReset()
	}
}

// State returns the current run state
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// SimulationTime returns the current simulation clock in seconds
func (e *Engine) SimulationTime() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clock
}

// SetLogging enables or disables record emission from the next tick on
func (e *Engine) SetLogging(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.loggingEnabled = enabled
}

// LoggingEnabled reports whether records are being emitted
func (e *Engine) LoggingEnabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loggingEnabled
}

// SetShape switches the waveform for subsequent ticks
func (e *Engine) SetShape(s waveform.Shape) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.generator.SetShape(s)
}

// SetAmplitude updates the signal amplitude for subsequent ticks
func (e *Engine) SetAmplitude(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.generator.SetAmplitude(v)
}

// SetFrequency updates the signal frequency for subsequent ticks
func (e *Engine) SetFrequency(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.generator.SetFrequency(v)
}

// SetOffset updates the signal baseline for subsequent ticks
func (e *Engine) SetOffset(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.generator.SetOffset(v)
}

// SetNoiseStdDev updates the noise level for subsequent ticks
func (e *Engine) SetNoiseStdDev(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.generator.SetNoiseStdDev(v)
}

// SetThresholds replaces the alarm limits; an inverted pair is rejected
func (e *Engine) SetThresholds(high, low float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.alarms.SetThresholds(high, low)
}

// SetActuatorMode switches between automatic and manual motor control
func (e *Engine) SetActuatorMode(m actuator.Mode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.actuatorMode = m
}

// SetManualOverride sets the forced motor state used in manual mode
func (e *Engine) SetManualOverride(on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.manualOverride = on
}

// SetActuatorThreshold updates the auto-mode switching threshold
func (e *Engine) SetActuatorThreshold(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.actuatorThreshold = v
}

// History returns a copy of the current window contents, oldest first
func (e *Engine) History() []core.Sample {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.window.Samples()
}

// Snapshot returns a copy of the observable engine state
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	high, low := e.alarms.Thresholds()
	stats, ok := e.window.Stats()

	return Snapshot{
		State:             e.state,
		SimulationTime:    e.clock,
		LoggingEnabled:    e.loggingEnabled,
		Waveform:          e.generator.Config(),
		AlarmHigh:         high,
		AlarmLow:          low,
		AlarmTriggered:    e.alarms.Triggered(),
		ActuatorMode:      e.actuatorMode,
		ManualOverride:    e.manualOverride,
		ActuatorThreshold: e.actuatorThreshold,
		TicksTotal:        e.ticksTotal,
		WarningsTotal:     e.warningsTotal,
		CriticalsTotal:    e.criticalsTotal,
		LastSample:        e.lastSample,
		HasSample:         e.hasSample,
		Stats:             stats,
		HasStats:          ok,
		WindowLen:         e.window.Len(),
		WindowCapacity:    e.window.Capacity(),
	}
}
