// Package response measures the frequency-domain behaviour of a FIR
// coefficient table: magnitude, unwrapped phase and group delay on a dense
// frequency grid, plus the figures of merit used to sign off an
// anti-aliasing filter.
//
// # Usage
//
//	taps := fir.AntiAliasTaps()
//	rep, _ := response.Analyze(taps, response.Config{})
//	_ = response.WriteSummary(os.Stdout, rep)
//
// The zero [Config] describes the reference design: 44.1 kHz input, 16 kHz
// target rate, 7200 Hz cutoff and a 16384-point grid.
//
// [RenderHTML] writes an interactive chart page with the impulse, magnitude,
// phase, group delay and step responses.
package response
