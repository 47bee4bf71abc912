package resample

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-antialias/dsp/filter/fir"
)

var (
	// ErrInvalidRate indicates an invalid input/output sample rate.
	ErrInvalidRate = errors.New("resample: invalid sample rate")
	// ErrInvalidFactor indicates a decimation factor below 1.
	ErrInvalidFactor = errors.New("resample: invalid decimation factor")
	// ErrOutputTooSmall indicates a destination slice that cannot hold the
	// samples a Process call may produce.
	ErrOutputTooSmall = errors.New("resample: output buffer too small")
)

// DefaultTargetRate is the output rate used when no WithTargetRate option is given.
const DefaultTargetRate = fir.AntiAliasTargetRate

type config struct {
	targetRate float64
	taps       *fir.Taps
}

// Option configures a Downsampler.
type Option func(*config)

// WithTargetRate sets the output sample rate in Hz.
func WithTargetRate(hz float64) Option {
	return func(cfg *config) {
		cfg.targetRate = hz
	}
}

// WithTaps replaces the anti-aliasing coefficient table.
func WithTaps(t *fir.Taps) Option {
	return func(cfg *config) {
		if t != nil {
			cfg.taps = t
		}
	}
}

func defaultConfig() config {
	return config{
		targetRate: DefaultTargetRate,
		taps:       fir.AntiAliasTaps(),
	}
}

func validRate(hz float64) bool {
	return hz > 0 && !math.IsInf(hz, 0) && !math.IsNaN(hz)
}

func checkRates(source, target float64) error {
	if !validRate(source) || !validRate(target) {
		return fmt.Errorf("%w: source %v Hz, target %v Hz", ErrInvalidRate, source, target)
	}
	if target > source {
		return fmt.Errorf("%w: target %v Hz above source %v Hz", ErrInvalidRate, target, source)
	}
	return nil
}

// Downsampler lowers the sample rate of a stream: anti-aliasing FIR filter
// followed by linear interpolation at fractional output positions.
//
// At most one output sample is produced per input sample. Like the FIR
// filter it wraps, a Downsampler is not safe for concurrent use.
type Downsampler[F fir.Sample] struct {
	filter *fir.Filter[F]

	sourceRate float64
	targetRate float64
	ratio      float64 // targetRate / sourceRate, in (0, 1]

	acc       float64 // output time accumulator, in [0, 1) between samples
	prev      float64 // previous filtered sample
	lastCount int
}

// NewDownsampler creates a downsampler for input at sourceRate Hz.
func NewDownsampler[F fir.Sample](sourceRate float64, opts ...Option) (*Downsampler[F], error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if err := checkRates(sourceRate, cfg.targetRate); err != nil {
		return nil, err
	}

	f, err := fir.NewWithTaps[F](cfg.taps)
	if err != nil {
		return nil, fmt.Errorf("resample: anti-aliasing filter: %w", err)
	}

	return &Downsampler[F]{
		filter:     f,
		sourceRate: sourceRate,
		targetRate: cfg.targetRate,
		ratio:      cfg.targetRate / sourceRate,
	}, nil
}

// Process filters and downsamples src into dst and returns the number of
// samples written. dst must hold at least MaxOutputSize(len(src)) samples,
// otherwise ErrOutputTooSmall is returned and no state changes.
func (d *Downsampler[F]) Process(dst, src []F) (int, error) {
	if need := d.MaxOutputSize(len(src)); len(dst) < need {
		return 0, fmt.Errorf("%w: need %d samples, have %d", ErrOutputTooSmall, need, len(dst))
	}

	n := 0
	for _, x := range src {
		curr := float64(d.filter.ProcessSample(x))

		d.acc += d.ratio
		if d.acc >= 1 {
			frac := min(max(1-(d.acc-1)/d.ratio, 0), 1)
			dst[n] = F(d.prev + frac*(curr-d.prev))
			n++
			d.acc--
		}

		d.prev = curr
	}

	d.lastCount = n
	return n, nil
}

// ExpectedOutputSize returns ceil(inputLen * ratio), the nominal number of
// output samples for inputLen input samples.
func (d *Downsampler[F]) ExpectedOutputSize(inputLen int) int {
	if inputLen <= 0 {
		return 0
	}
	return int(math.Ceil(float64(inputLen) * d.ratio))
}

// MaxOutputSize returns the number of output samples a single Process call
// over inputLen samples can produce in the worst case. It allows one sample
// of slack over ExpectedOutputSize for accumulator rounding.
func (d *Downsampler[F]) MaxOutputSize(inputLen int) int {
	if inputLen <= 0 {
		return 0
	}
	return min(inputLen, d.ExpectedOutputSize(inputLen)+1)
}

// LastOutputCount returns the number of samples written by the last Process call.
func (d *Downsampler[F]) LastOutputCount() int {
	return d.lastCount
}

// Reset clears the filter history and the interpolation state.
func (d *Downsampler[F]) Reset() {
	d.filter.Reset()
	d.acc = 0
	d.prev = 0
	d.lastCount = 0
}

// SetSourceRate changes the input sample rate, recomputes the ratio and
// resets all state.
func (d *Downsampler[F]) SetSourceRate(hz float64) error {
	if err := checkRates(hz, d.targetRate); err != nil {
		return err
	}
	d.sourceRate = hz
	d.ratio = d.targetRate / hz
	d.Reset()
	return nil
}

// SourceRate returns the input sample rate in Hz.
func (d *Downsampler[F]) SourceRate() float64 {
	return d.sourceRate
}

// TargetRate returns the output sample rate in Hz.
func (d *Downsampler[F]) TargetRate() float64 {
	return d.targetRate
}

// Ratio returns targetRate / sourceRate.
func (d *Downsampler[F]) Ratio() float64 {
	return d.ratio
}

// Fraction returns the rate ratio as a reduced fraction num/den, e.g.
// 160/441 for 44.1 kHz to 16 kHz.
func (d *Downsampler[F]) Fraction() (num, den int) {
	return approximateRatio(d.ratio, maxDenominator)
}

// Latency returns the group delay of the anti-aliasing filter in seconds.
// For non-symmetric tables the nominal (N-1)/2 delay is used.
func (d *Downsampler[F]) Latency() float64 {
	delay, ok := d.filter.GroupDelay()
	if !ok {
		delay = float64(d.filter.Order()) / 2
	}
	return delay / d.sourceRate
}

// Filter returns the underlying anti-aliasing filter.
func (d *Downsampler[F]) Filter() *fir.Filter[F] {
	return d.filter
}
