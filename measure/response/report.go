package response

import (
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"github.com/cwbudde/algo-antialias/dsp/filter/fir"
)

// Frequencies reported in the key-point table, skipped above Nyquist.
var keyFrequencies = []float64{100, 1000, 5000, 7200, 8000, 10000, 15000, 20000}

const (
	passbandEdge  = 0.9 // ripple measured up to passbandEdge * cutoff
	stopbandEdge  = 1.5 // attenuation measured from stopbandEdge * cutoff
	symmetryTol   = 1e-12
	markerCutoff  = "CUTOFF"
	markerNyquist = "TARGET NYQUIST"
)

// KeyPoint is the response at one reporting frequency.
type KeyPoint struct {
	FreqHz float64
	MagDB  float64
	Mag    float64
	Marker string // "CUTOFF", "TARGET NYQUIST" or empty
}

// Report holds the figures of merit of an anti-aliasing filter.
type Report struct {
	NumTaps       int
	SampleRate    float64
	TargetRate    float64
	TargetNyquist float64
	CutoffHz      float64

	DCGain                float64 // sum of taps
	DCGainDB              float64
	GainAtCutoffDB        float64
	PassbandRippleDB      float64 // max-min over f <= 0.9*cutoff
	StopbandAttenuationDB float64 // -max over f >= 1.5*cutoff

	Symmetric          bool
	ExpectedGroupDelay float64 // (N-1)/2 samples
	MeanGroupDelay     float64 // mean over f <= cutoff, samples
	GroupDelayMs       float64 // ExpectedGroupDelay in milliseconds

	Minus3dBHz  float64 // first frequency at or below -3 dB
	Minus6dBHz  float64
	Minus40dBHz float64

	KeyPoints []KeyPoint
}

// Analyze computes the response of t and derives a Report from it.
func Analyze(t *fir.Taps, cfg Config) (Report, error) {
	r, err := Compute(t, cfg)
	if err != nil {
		return Report{}, err
	}
	return r.Report(t, cfg), nil
}

// Report derives the figures of merit from r. t must be the table r was
// computed from.
func (r *Response) Report(t *fir.Taps, cfg Config) Report {
	cfg = cfg.normalized()
	cfg.SampleRate = r.SampleRate

	rep := Report{
		NumTaps:            t.Len(),
		SampleRate:         cfg.SampleRate,
		TargetRate:         cfg.TargetRate,
		TargetNyquist:      cfg.TargetRate / 2,
		CutoffHz:           cfg.CutoffHz,
		DCGain:             t.Sum(),
		DCGainDB:           r.MagDB[0],
		GainAtCutoffDB:     r.MagDB[r.Nearest(cfg.CutoffHz)],
		Symmetric:          t.IsSymmetric(symmetryTol),
		ExpectedGroupDelay: float64(t.Len()-1) / 2,
	}
	rep.GroupDelayMs = rep.ExpectedGroupDelay / cfg.SampleRate * 1000

	passMin, passMax := math.Inf(1), math.Inf(-1)
	stopMax := math.Inf(-1)
	var gdSum float64
	var gdCount int
	for k, f := range r.Freqs {
		db := r.MagDB[k]
		if f <= passbandEdge*cfg.CutoffHz {
			passMin = math.Min(passMin, db)
			passMax = math.Max(passMax, db)
		}
		if f >= stopbandEdge*cfg.CutoffHz {
			stopMax = math.Max(stopMax, db)
		}
		if f <= cfg.CutoffHz {
			gdSum += r.GroupDelay[k]
			gdCount++
		}
	}
	if passMax >= passMin {
		rep.PassbandRippleDB = passMax - passMin
	}
	if !math.IsInf(stopMax, -1) {
		rep.StopbandAttenuationDB = -stopMax
	}
	if gdCount > 0 {
		rep.MeanGroupDelay = gdSum / float64(gdCount)
	}

	rep.Minus3dBHz = r.firstBelow(-3)
	rep.Minus6dBHz = r.firstBelow(-6)
	rep.Minus40dBHz = r.firstBelow(-40)

	nyquist := cfg.SampleRate / 2
	for _, f := range keyFrequencies {
		if f > nyquist {
			continue
		}
		k := r.Nearest(f)
		kp := KeyPoint{FreqHz: f, MagDB: r.MagDB[k], Mag: r.Mag[k]}
		switch {
		case math.Abs(f-cfg.CutoffHz) < 1:
			kp.Marker = markerCutoff
		case math.Abs(f-rep.TargetNyquist) < 1:
			kp.Marker = markerNyquist
		}
		rep.KeyPoints = append(rep.KeyPoints, kp)
	}

	return rep
}

// firstBelow returns the first grid frequency whose magnitude is at or
// below levelDB, or NaN if the response never drops that far.
func (r *Response) firstBelow(levelDB float64) float64 {
	for k, db := range r.MagDB {
		if db <= levelDB {
			return r.Freqs[k]
		}
	}
	return math.NaN()
}

// StepResponse runs a fresh filter over a unit step of the given length.
// A length <= 0 selects 3*N samples.
func StepResponse(t *fir.Taps, length int) ([]float64, error) {
	f, err := fir.NewWithTaps[float64](t)
	if err != nil {
		return nil, err
	}
	if length <= 0 {
		length = 3 * t.Len()
	}
	out := make([]float64, length)
	for i := range out {
		out[i] = 1
	}
	f.ProcessBlock(out)
	return out, nil
}

// WriteSummary writes rep as a plain-text table.
func WriteSummary(w io.Writer, rep Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	rows := []struct {
		label, value string
	}{
		{"FILTER CHARACTERISTICS", ""},
		{"Number of Taps", fmt.Sprintf("%d", rep.NumTaps)},
		{"Source Sample Rate", fmt.Sprintf("%.1f kHz", rep.SampleRate/1000)},
		{"Target Sample Rate", fmt.Sprintf("%.1f kHz", rep.TargetRate/1000)},
		{"Target Nyquist", fmt.Sprintf("%.1f kHz", rep.TargetNyquist/1000)},
		{"Cutoff Frequency", fmt.Sprintf("%.0f Hz (%.3f * target Nyquist)", rep.CutoffHz, rep.CutoffHz/rep.TargetNyquist)},
		{"Symmetric", fmt.Sprintf("%t", rep.Symmetric)},
		{"", ""},
		{"PERFORMANCE METRICS", ""},
		{"DC Gain", fmt.Sprintf("%.6f (%.3f dB)", rep.DCGain, rep.DCGainDB)},
		{"Gain at Cutoff", fmt.Sprintf("%.3f dB", rep.GainAtCutoffDB)},
		{"Passband Ripple", fmt.Sprintf("%.3f dB", rep.PassbandRippleDB)},
		{"Stopband Atten", fmt.Sprintf("%.1f dB", rep.StopbandAttenuationDB)},
		{"", ""},
		{"GROUP DELAY", ""},
		{"Expected", fmt.Sprintf("%.1f samples", rep.ExpectedGroupDelay)},
		{"Actual (avg)", fmt.Sprintf("%.2f samples", rep.MeanGroupDelay)},
		{"Time Delay", fmt.Sprintf("%.3f ms", rep.GroupDelayMs)},
		{"", ""},
		{"TRANSITION BAND", ""},
		{"-3 dB freq", fmt.Sprintf("%.0f Hz", rep.Minus3dBHz)},
		{"-6 dB freq", fmt.Sprintf("%.0f Hz", rep.Minus6dBHz)},
		{"-40 dB freq", fmt.Sprintf("%.0f Hz", rep.Minus40dBHz)},
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(tw, "%s\t%s\n", row.label, row.value); err != nil {
			return fmt.Errorf("response: failed to write summary: %w", err)
		}
	}

	if _, err := fmt.Fprintf(tw, "\nFREQUENCY RESPONSE AT KEY POINTS\nFrequency\tMagnitude [dB]\tLinear\t\n"); err != nil {
		return fmt.Errorf("response: failed to write summary: %w", err)
	}
	for _, kp := range rep.KeyPoints {
		marker := ""
		if kp.Marker != "" {
			marker = "(" + kp.Marker + ")"
		}
		if _, err := fmt.Fprintf(tw, "%.0f Hz\t%.2f\t%.4f\t%s\n", kp.FreqHz, kp.MagDB, kp.Mag, marker); err != nil {
			return fmt.Errorf("response: failed to write summary: %w", err)
		}
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("response: failed to flush summary: %w", err)
	}
	return nil
}
