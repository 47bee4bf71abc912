package fir

import "fmt"

// Sample is the set of sample types a [Filter] can process.
type Sample interface {
	~float32 | ~float64
}

// Filter implements a direct-form FIR filter using a circular-buffer delay line.
//
// The delay line holds 2N slots and every input is written twice, at pos and
// pos+N, so the last N inputs always form one contiguous window. Products are
// accumulated in float64 regardless of F.
//
// A Filter is not safe for concurrent use. Use one Filter per channel; the
// underlying [Taps] may be shared.
type Filter[F Sample] struct {
	taps   *Taps
	delay  []F
	pos    int
	filled int
}

// New creates a FIR filter from the given coefficient slice.
// The coefficients are copied. The filter order is len(coeffs)-1.
func New[F Sample](coeffs []float64) (*Filter[F], error) {
	t, err := NewTaps(coeffs)
	if err != nil {
		return nil, err
	}
	return NewWithTaps[F](t)
}

// NewWithTaps creates a FIR filter that shares the coefficient table t.
func NewWithTaps[F Sample](t *Taps) (*Filter[F], error) {
	if t == nil || t.Len() == 0 {
		return nil, fmt.Errorf("%w: nil coefficient table", ErrInvalidConfiguration)
	}
	return &Filter[F]{
		taps:  t,
		delay: make([]F, 2*t.Len()),
	}, nil
}

// push shifts x into the delay line and returns the current window,
// oldest sample first.
func (f *Filter[F]) push(x F) []F {
	n := len(f.taps.rev)
	f.delay[f.pos] = x
	f.delay[f.pos+n] = x

	p := f.pos + 1
	win := f.delay[p : p+n]
	if p == n {
		p = 0
	}
	f.pos = p

	if f.filled < n {
		f.filled++
	}
	return win
}

// ProcessSample filters one input sample using direct convolution
// with a circular delay line.
//
//	y[n] = sum_{k=0}^{N-1} h[k] * x[n-k]
func (f *Filter[F]) ProcessSample(x F) F {
	win := f.push(x)
	rev := f.taps.rev
	win = win[:len(rev)]

	var y float64
	for i, c := range rev {
		y += c * float64(win[i])
	}
	return F(y)
}

// ProcessBlock filters a block of samples in-place.
func (f *Filter[F]) ProcessBlock(buf []F) {
	for i, x := range buf {
		buf[i] = f.ProcessSample(x)
	}
}

// ProcessBlockTo filters src into dst. It panics if dst is shorter than src.
func (f *Filter[F]) ProcessBlockTo(dst, src []F) {
	if len(src) == 0 {
		return
	}
	_ = dst[len(src)-1] // bounds check hint
	for i, x := range src {
		dst[i] = f.ProcessSample(x)
	}
}

// Process filters src into a newly allocated slice of the same length.
func (f *Filter[F]) Process(src []F) []F {
	dst := make([]F, len(src))
	f.ProcessBlockTo(dst, src)
	return dst
}

// Reset clears the delay line to zero.
func (f *Filter[F]) Reset() {
	clear(f.delay)
	f.pos = 0
	f.filled = 0
}

// Prime resets the filter and loads history into the delay line as if it
// had been processed, without producing output. Only the last N values of
// history are kept; a shorter history leaves the older slots zero.
func (f *Filter[F]) Prime(history []F) {
	f.Reset()
	if n := len(f.taps.rev); len(history) > n {
		history = history[len(history)-n:]
	}
	for _, x := range history {
		f.push(x)
	}
}

// Primed reports whether at least N samples have entered the delay line
// since construction or the last Reset. Until then outputs are part of the
// zero-padded startup transient.
func (f *Filter[F]) Primed() bool {
	return f.filled == len(f.taps.rev)
}

// Len returns the number of taps N.
func (f *Filter[F]) Len() int {
	return f.taps.Len()
}

// Order returns the filter order (len(coeffs) - 1).
func (f *Filter[F]) Order() int {
	return f.taps.Len() - 1
}

// Taps returns the shared coefficient table.
func (f *Filter[F]) Taps() *Taps {
	return f.taps
}

// Coefficients returns a copy of the filter coefficients.
func (f *Filter[F]) Coefficients() []float64 {
	return f.taps.Values()
}

// GroupDelay returns the filter's constant group delay in samples, see
// [Taps.GroupDelay].
func (f *Filter[F]) GroupDelay() (float64, bool) {
	return f.taps.GroupDelay()
}

// Response computes the complex frequency response H(e^{jw}) at the given
// frequency (Hz) and sample rate (Hz).
func (f *Filter[F]) Response(freqHz, sampleRate float64) complex128 {
	return f.taps.Response(freqHz, sampleRate)
}

// MagnitudeDB returns the magnitude response in dB at the given frequency.
func (f *Filter[F]) MagnitudeDB(freqHz, sampleRate float64) float64 {
	return f.taps.MagnitudeDB(freqHz, sampleRate)
}
