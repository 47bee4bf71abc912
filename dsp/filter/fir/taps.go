package fir

import (
	"fmt"
	"math"
	"math/cmplx"
)

// Taps is an immutable FIR coefficient table.
//
// A Taps value never changes after [NewTaps] returns, so a single table may
// back any number of filters processing independent channels concurrently.
type Taps struct {
	coeffs []float64 // newest-first: coeffs[k] pairs with x[n-k]
	rev    []float64 // oldest-first copy for the forward dot product
}

// NewTaps copies coeffs into a new coefficient table.
// It returns [ErrInvalidConfiguration] if coeffs is empty or holds a NaN or
// infinite value.
func NewTaps(coeffs []float64) (*Taps, error) {
	if len(coeffs) == 0 {
		return nil, fmt.Errorf("%w: empty coefficient table", ErrInvalidConfiguration)
	}

	n := len(coeffs)
	c := make([]float64, n)
	rev := make([]float64, n)

	for k, v := range coeffs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: coefficient %d is %v", ErrInvalidConfiguration, k, v)
		}

		c[k] = v
		rev[n-1-k] = v
	}

	return &Taps{coeffs: c, rev: rev}, nil
}

// Len returns the number of taps N.
func (t *Taps) Len() int {
	return len(t.coeffs)
}

// At returns tap k.
func (t *Taps) At(k int) float64 {
	return t.coeffs[k]
}

// Values returns a copy of the coefficients.
func (t *Taps) Values() []float64 {
	c := make([]float64, len(t.coeffs))
	copy(c, t.coeffs)
	return c
}

// Sum returns the sum of all taps, which is the filter's DC gain.
func (t *Taps) Sum() float64 {
	var s float64
	for _, c := range t.coeffs {
		s += c
	}
	return s
}

// IsSymmetric reports whether taps[i] and taps[N-1-i] agree within tol for
// every i. Symmetric tables give a linear-phase filter.
func (t *Taps) IsSymmetric(tol float64) bool {
	n := len(t.coeffs)
	for i := range n / 2 {
		if math.Abs(t.coeffs[i]-t.coeffs[n-1-i]) > tol {
			return false
		}
	}
	return true
}

// GroupDelay returns the constant group delay (N-1)/2 in samples and true
// when the table is exactly symmetric. For other tables the delay depends on
// frequency and ok is false.
func (t *Taps) GroupDelay() (delay float64, ok bool) {
	if !t.IsSymmetric(0) {
		return 0, false
	}
	return float64(len(t.coeffs)-1) / 2, true
}

// Response computes the complex frequency response H(e^{jw}) at the given
// frequency (Hz) and sample rate (Hz).
func (t *Taps) Response(freqHz, sampleRate float64) complex128 {
	w := 2 * math.Pi * freqHz / sampleRate
	var h complex128
	for k, c := range t.coeffs {
		h += complex(c, 0) * cmplx.Exp(complex(0, -w*float64(k)))
	}
	return h
}

// MagnitudeDB returns the magnitude response in dB at the given frequency.
func (t *Taps) MagnitudeDB(freqHz, sampleRate float64) float64 {
	return 20 * math.Log10(cmplx.Abs(t.Response(freqHz, sampleRate)))
}
