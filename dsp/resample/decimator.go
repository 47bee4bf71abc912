package resample

import (
	"fmt"

	"github.com/cwbudde/algo-antialias/dsp/filter/fir"
)

// Decimator keeps every factor-th sample of a stream: the first sample,
// then every factor-th one after it. The phase carries across Process
// calls. It performs no filtering.
type Decimator[F fir.Sample] struct {
	factor int
	phase  int // samples to skip before the next kept one
}

// NewDecimator creates a decimator that reduces the rate by factor.
func NewDecimator[F fir.Sample](factor int) (*Decimator[F], error) {
	if factor < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFactor, factor)
	}
	return &Decimator[F]{factor: factor}, nil
}

// Factor returns the decimation factor.
func (d *Decimator[F]) Factor() int {
	return d.factor
}

// OutputLen returns the exact number of samples the next Process call over
// inputLen samples will write.
func (d *Decimator[F]) OutputLen(inputLen int) int {
	if inputLen <= d.phase {
		return 0
	}
	return (inputLen-d.phase-1)/d.factor + 1
}

// Process copies the kept samples of src into dst and returns their count.
// It returns ErrOutputTooSmall without changing state if dst is shorter
// than OutputLen(len(src)).
func (d *Decimator[F]) Process(dst, src []F) (int, error) {
	if need := d.OutputLen(len(src)); len(dst) < need {
		return 0, fmt.Errorf("%w: need %d samples, have %d", ErrOutputTooSmall, need, len(dst))
	}

	n := 0
	i := d.phase
	for ; i < len(src); i += d.factor {
		dst[n] = src[i]
		n++
	}
	d.phase = i - len(src)
	return n, nil
}

// Reset makes the next input sample a kept one.
func (d *Decimator[F]) Reset() {
	d.phase = 0
}
