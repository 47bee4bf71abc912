package response

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"math/cmplx"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
	"github.com/mjibson/go-dsp/dsputils"

	"github.com/cwbudde/algo-antialias/dsp/filter/fir"
)

// ErrInvalidConfig is returned for unusable rates, cutoffs or grid sizes.
var ErrInvalidConfig = errors.New("response: invalid config")

const (
	defaultSampleRate = fir.AntiAliasSourceRate
	defaultTargetRate = fir.AntiAliasTargetRate
	defaultCutoff     = fir.AntiAliasCutoff
	defaultPoints     = 16384

	// Magnitudes are floored here before conversion to dB (-240 dB).
	magFloor = 1e-12
	// Below this |H| the group delay is numerically meaningless and set to 0.
	singularMag = 1e-12
)

// Config holds analysis parameters. Zero fields take the defaults of the
// reference 44.1 kHz to 16 kHz design.
type Config struct {
	SampleRate float64 // filter sample rate in Hz
	TargetRate float64 // rate after downsampling in Hz
	CutoffHz   float64 // design cutoff in Hz
	Points     int     // grid size on [0, SampleRate/2), rounded up to a power of two
}

func (c Config) normalized() Config {
	if c.SampleRate == 0 {
		c.SampleRate = defaultSampleRate
	}
	if c.TargetRate == 0 {
		c.TargetRate = defaultTargetRate
	}
	if c.CutoffHz == 0 {
		c.CutoffHz = defaultCutoff
	}
	if c.Points == 0 {
		c.Points = defaultPoints
	}
	return c
}

func (c Config) validate() error {
	switch {
	case !positiveFinite(c.SampleRate):
		return fmt.Errorf("%w: sample rate %v", ErrInvalidConfig, c.SampleRate)
	case !positiveFinite(c.TargetRate):
		return fmt.Errorf("%w: target rate %v", ErrInvalidConfig, c.TargetRate)
	case !positiveFinite(c.CutoffHz) || c.CutoffHz >= c.SampleRate/2:
		return fmt.Errorf("%w: cutoff %v Hz outside (0, %v)", ErrInvalidConfig, c.CutoffHz, c.SampleRate/2)
	case c.Points < 2:
		return fmt.Errorf("%w: %d grid points", ErrInvalidConfig, c.Points)
	}
	return nil
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

// Response is the sampled frequency response of a coefficient table.
// All slices have one entry per grid point.
type Response struct {
	SampleRate float64
	Freqs      []float64 // Hz
	Mag        []float64 // |H|
	MagDB      []float64 // 20*log10(|H|), floored at -240 dB
	Phase      []float64 // unwrapped, radians
	GroupDelay []float64 // samples
}

// Compute evaluates the frequency response of t on cfg.Points bins from DC
// up to (but excluding) the Nyquist frequency.
func Compute(t *fir.Taps, cfg Config) (*Response, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil coefficient table", ErrInvalidConfig)
	}

	cfg = cfg.normalized()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	taps := t.Values()
	points := nextPowerOf2(max(cfg.Points, (len(taps)+1)/2))
	fftSize := 2 * points

	// n*h[n] gives the derivative of H, see groupDelay.
	ramp := make([]float64, len(taps))
	for n := range ramp {
		ramp[n] = float64(n)
	}
	rampTaps := make([]float64, len(taps))
	vecmath.MulBlock(rampTaps, taps, ramp)

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("response: failed to create FFT plan: %w", err)
	}

	h := make([]complex128, fftSize)
	if err := plan.Forward(h, dsputils.ToComplex(dsputils.ZeroPadF(taps, fftSize))); err != nil {
		return nil, fmt.Errorf("response: FFT failed: %w", err)
	}
	dh := make([]complex128, fftSize)
	if err := plan.Forward(dh, dsputils.ToComplex(dsputils.ZeroPadF(rampTaps, fftSize))); err != nil {
		return nil, fmt.Errorf("response: FFT failed: %w", err)
	}

	r := &Response{
		SampleRate: cfg.SampleRate,
		Freqs:      make([]float64, points),
		Mag:        make([]float64, points),
		MagDB:      make([]float64, points),
		Phase:      make([]float64, points),
		GroupDelay: make([]float64, points),
	}

	re := make([]float64, points)
	im := make([]float64, points)
	for k := range points {
		re[k] = real(h[k])
		im[k] = imag(h[k])
		r.Freqs[k] = float64(k) * cfg.SampleRate / float64(fftSize)
		r.Phase[k] = cmplx.Phase(h[k])
		r.GroupDelay[k] = groupDelay(h[k], dh[k])
	}

	vecmath.Magnitude(r.Mag, re, im)
	for k, m := range r.Mag {
		r.MagDB[k] = 20 * math.Log10(math.Max(m, magFloor))
	}
	unwrap(r.Phase)

	return r, nil
}

// groupDelay returns Re(DH/H), the group delay in samples, where DH is the
// transform of n*h[n]. It is 0 where H is negligibly small.
func groupDelay(h, dh complex128) float64 {
	if cmplx.Abs(h) < singularMag {
		return 0
	}
	return real(dh / h)
}

// unwrap removes 2*pi jumps between consecutive phase values in place.
func unwrap(phase []float64) {
	var offset float64
	for i := 1; i < len(phase); i++ {
		d := phase[i] + offset - phase[i-1]
		switch {
		case d > math.Pi:
			offset -= 2 * math.Pi * math.Ceil((d-math.Pi)/(2*math.Pi))
		case d < -math.Pi:
			offset += 2 * math.Pi * math.Ceil((-d-math.Pi)/(2*math.Pi))
		}
		phase[i] += offset
	}
}

// Nearest returns the index of the grid point closest to freqHz.
func (r *Response) Nearest(freqHz float64) int {
	if len(r.Freqs) < 2 {
		return 0
	}
	step := r.Freqs[1] - r.Freqs[0]
	k := int(math.Round(freqHz / step))
	return min(max(k, 0), len(r.Freqs)-1)
}

func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}
