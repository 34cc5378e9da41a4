package core

import (
	"math/rand"
	"time"
)

// NoiseSource produces random draws for sensor noise. The simulation engine
// takes the source as a dependency so tests can substitute a seeded one.
type NoiseSource interface {
	// Gaussian returns a value from a Gaussian distribution with given mean and stdDev
	Gaussian(mean, stdDev float64) float64
}

// NoiseGenerator provides utilities for generating realistic sensor noise
type NoiseGenerator struct {
	rng *rand.Rand
}

// NewNoiseGenerator creates a noise generator seeded from the wall clock
func NewNoiseGenerator() *NoiseGenerator {
	return NewSeededNoiseGenerator(time.Now().UnixNano())
}

// NewSeededNoiseGenerator creates a noise generator with a fixed seed for
// reproducible runs and deterministic tests
func NewSeededNoiseGenerator(seed int64) *NoiseGenerator {
	return &NoiseGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// Gaussian returns a value from a Gaussian distribution with given mean and stdDev
func (ng *NoiseGenerator) Gaussian(mean, stdDev float64) float64 {
	return mean + ng.rng.NormFloat64()*stdDev
}

// Uniform returns a uniform random value in [min, max]
func (ng *NoiseGenerator) Uniform(min, max float64) float64 {
	return min + ng.rng.Float64()*(max-min)
}

// ClampPositive ensures a value is non-negative
func ClampPositive(value float64) float64 {
	if value < 0 {
		return 0
	}
	return value
}

// Clamp ensures a value is within bounds
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
