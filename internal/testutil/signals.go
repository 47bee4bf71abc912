// Package testutil provides deterministic test signals and slice assertions
// shared by the package tests.
package testutil

import (
	"math"
	"math/rand/v2"
)

// Real is the set of sample types the helpers generate.
type Real interface {
	~float32 | ~float64
}

// DeterministicSine generates a sine wave starting at phase 0.
func DeterministicSine[F Real](freqHz, sampleRate, amplitude float64, length int) []F {
	out := make([]F, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = F(amplitude * math.Sin(step*float64(i)))
	}
	return out
}

// DeterministicNoise generates uniform white noise in [-amplitude, amplitude)
// with a fixed seed for reproducibility.
func DeterministicNoise[F Real](seed uint64, amplitude float64, length int) []F {
	out := make([]F, length)
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	for i := range out {
		out[i] = F((rng.Float64()*2 - 1) * amplitude)
	}
	return out
}

// Impulse generates a unit impulse at the given position.
func Impulse[F Real](length, pos int) []F {
	out := make([]F, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}
	return out
}

// Step generates zeros up to pos and ones from pos on.
func Step[F Real](length, pos int) []F {
	out := make([]F, length)
	for i := max(pos, 0); i < length; i++ {
		out[i] = 1
	}
	return out
}

// DC generates a constant-valued signal.
func DC[F Real](value F, length int) []F {
	out := make([]F, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// Ones returns a slice of length n filled with 1.0.
func Ones(n int) []float64 {
	return DC(1.0, n)
}
