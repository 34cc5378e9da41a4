package waveform

import (
	"math"

	"github.com/dvoicu/process-simulator/internal/core"
)

// Generator synthesizes the analog process value as a pure function of
// simulation time plus one Gaussian noise draw per sample. Parameter changes
// apply to subsequent samples only; produced values are never recomputed.
//
// The generator performs no locking. The engine serializes sampling and
// parameter updates behind its own lock.
type Generator struct {
	cfg   Config
	noise core.NoiseSource
}

// NewGenerator creates a generator with the given parameters and noise source
func NewGenerator(cfg Config, noise core.NoiseSource) *Generator {
	return &Generator{
		cfg:   cfg,
		noise: noise,
	}
}

// Sample returns the analog value at simulation time t
func (g *Generator) Sample(t float64) float64 {
	var base float64

	switch g.cfg.Shape {
	case ShapeSquare:
		// sign(0) counts as +1, so the output is always exactly offset +/- amplitude
		if math.Sin(2*math.Pi*g.cfg.Frequency*t) >= 0 {
			base = g.cfg.Offset + g.cfg.Amplitude
		} else {
			base = g.cfg.Offset - g.cfg.Amplitude
		}

	case ShapeSawtooth:
		// A non-positive frequency falls back to a 1s period rather than failing the tick
		period := 1.0
		if g.cfg.Frequency > 0 {
			period = 1.0 / g.cfg.Frequency
		}
		fraction := math.Mod(t, period) / period
		base = g.cfg.Offset + 2*g.cfg.Amplitude*(fraction-0.5)

	default:
		base = g.cfg.Offset + g.cfg.Amplitude*math.Sin(2*math.Pi*g.cfg.Frequency*t)
	}

	// Exactly one draw per sample, even at zero stdDev, so draw ordering is stable
	return base + g.noise.Gaussian(0, g.cfg.NoiseStdDev)
}

// SetShape switches the base waveform for subsequent samples
func (g *Generator) SetShape(s Shape) {
	g.cfg.Shape = s
}

// SetAmplitude updates the signal amplitude for subsequent samples
func (g *Generator) SetAmplitude(v float64) {
	g.cfg.Amplitude = v
}

// SetFrequency updates the signal frequency for subsequent samples
func (g *Generator) SetFrequency(v float64) {
	g.cfg.Frequency = v
}

// SetOffset updates the signal baseline for subsequent samples
func (g *Generator) SetOffset(v float64) {
	g.cfg.Offset = v
}

// SetNoiseStdDev updates the noise level for subsequent samples.
// Negative values are clamped to zero.
func (g *Generator) SetNoiseStdDev(v float64) {
	g.cfg.NoiseStdDev = core.ClampPositive(v)
}

// Config returns a copy of the current generator parameters
func (g *Generator) Config() Config {
	return g.cfg
}
