package waveform

import (
	"fmt"
	"strings"
)

// Shape selects the base waveform of the synthesized process signal
type Shape int

const (
	ShapeSine Shape = iota
	ShapeSquare
	ShapeSawtooth
)

func (s Shape) String() string {
	switch s {
	case ShapeSine:
		return "Sine"
	case ShapeSquare:
		return "Square"
	case ShapeSawtooth:
		return "Sawtooth"
	default:
		return "Unknown"
	}
}

// ParseShape maps a configuration string to a Shape. Matching is
// case-insensitive and tolerates a trailing " wave" suffix.
func ParseShape(s string) (Shape, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	name = strings.TrimSuffix(name, " wave")

	switch name {
	case "sine":
		return ShapeSine, nil
	case "square":
		return ShapeSquare, nil
	case "sawtooth":
		return ShapeSawtooth, nil
	default:
		return ShapeSine, fmt.Errorf("unknown waveform %q", s)
	}
}

// Config holds the generator parameters
type Config struct {
	Shape       Shape
	Amplitude   float64 // degC around the offset
	Frequency   float64 // Hz in simulation time
	Offset      float64 // degC baseline
	NoiseStdDev float64 // degC, standard deviation of the Gaussian noise
}

// DefaultConfig returns the default process signal parameters
func DefaultConfig() Config {
	return Config{
		Shape:       ShapeSine,
		Amplitude:   10.0, // degC swing
		Frequency:   0.1,  // one period every 10 simulated seconds
		Offset:      20.0, // degC baseline
		NoiseStdDev: 0.5,  // degC
	}
}
