package response

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/cwbudde/algo-antialias/dsp/filter/fir"
)

// maxPlotPoints bounds the number of samples per frequency-domain series.
const maxPlotPoints = 1024

// RenderHTML writes an interactive HTML page with impulse, magnitude,
// phase, group delay and step response charts of t to w.
func RenderHTML(w io.Writer, t *fir.Taps, r *Response, rep Report) error {
	if t == nil || r == nil {
		return fmt.Errorf("%w: nothing to plot", ErrInvalidConfig)
	}

	step, err := StepResponse(t, 0)
	if err != nil {
		return err
	}

	page := components.NewPage()
	page.PageTitle = fmt.Sprintf("FIR anti-aliasing filter (%d taps)", rep.NumTaps)

	page.AddCharts(
		sampleChart("Impulse Response", "Coefficient", t.Values()),
		freqChart("Magnitude Response", "Magnitude [dB]", r, r.MagDB, 0, r.SampleRate/2, -120, 10),
		freqChart("Passband Detail", "Magnitude [dB]", r, r.MagDB, 0, 1.5*rep.CutoffHz, -10, 2),
		freqChart("Stopband Detail", "Magnitude [dB]", r, r.MagDB, 1.2*rep.CutoffHz, r.SampleRate/2, -120, -20),
		freqChart("Linear Magnitude", "|H|", r, r.Mag, 0, r.SampleRate/2, nil, nil),
		freqChart("Phase Response", "Phase [deg]", r, degrees(r.Phase), 0, r.SampleRate/2, nil, nil),
		freqChart("Group Delay", "Delay [samples]", r, r.GroupDelay, 0, 1.5*rep.CutoffHz, 0, 2*rep.ExpectedGroupDelay+1),
		sampleChart("Step Response", "Amplitude", step),
	)

	if err := page.Render(w); err != nil {
		return fmt.Errorf("response: failed to render HTML: %w", err)
	}
	return nil
}

func newLine(title, yName string, yMin, yMax any) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "1000px", Height: "420px"}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithYAxisOpts(opts.YAxis{Name: yName, Min: yMin, Max: yMax}),
	)
	return line
}

func sampleChart(title, yName string, values []float64) *charts.Line {
	line := newLine(title, yName, nil, nil)
	line.SetGlobalOptions(charts.WithXAxisOpts(opts.XAxis{Name: "Sample"}))

	x := make([]string, len(values))
	data := make([]opts.LineData, len(values))
	for i, v := range values {
		x[i] = strconv.Itoa(i)
		data[i] = opts.LineData{Value: v}
	}
	line.SetXAxis(x).AddSeries(title, data)
	return line
}

// freqChart plots values over the grid between loHz and hiHz, decimated to
// at most maxPlotPoints points.
func freqChart(title, yName string, r *Response, values []float64, loHz, hiHz float64, yMin, yMax any) *charts.Line {
	line := newLine(title, yName, yMin, yMax)
	line.SetGlobalOptions(charts.WithXAxisOpts(opts.XAxis{Name: "Hz"}))

	lo, hi := r.Nearest(loHz), r.Nearest(hiHz)
	stride := max(1, (hi-lo+1)/maxPlotPoints)

	var x []string
	var data []opts.LineData
	for k := lo; k <= hi; k += stride {
		x = append(x, strconv.FormatFloat(math.Round(r.Freqs[k]), 'f', 0, 64))
		data = append(data, opts.LineData{Value: values[k]})
	}
	line.SetXAxis(x).AddSeries(title, data)
	return line
}

func degrees(rad []float64) []float64 {
	out := make([]float64, len(rad))
	for i, v := range rad {
		out[i] = v * 180 / math.Pi
	}
	return out
}
