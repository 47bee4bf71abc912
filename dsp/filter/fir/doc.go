// Package fir provides a direct-form FIR filter runtime for streaming audio.
//
// A [Taps] value is an immutable coefficient table. It can be shared by any
// number of [Filter] engines, one per channel, running on different
// goroutines. Each [Filter] owns a fixed-size circular delay line and
// performs no heap allocation after construction.
//
// Tap order is newest-first: taps[k] multiplies the sample k steps in the
// past, so taps[0] pairs with the sample just passed to ProcessSample.
//
//	y[n] = sum_{k=0}^{N-1} h[k] * x[n-k]
//
// The delay line starts zero-padded, so the first N-1 outputs after
// construction or [Filter.Reset] are a startup transient computed against a
// partially empty history. [Filter.Primed] reports when the history is full
// and [Filter.Prime] preloads it.
//
// Non-finite input (NaN, ±Inf) is not clamped. It propagates through the
// convolution following IEEE-754 rules and affects the next N outputs, until
// it is evicted from the delay line or the filter is reset. Note that
// Inf*0 is NaN, so a zero tap turns an infinite input into NaN output.
//
// This package provides the processing runtime only. Coefficients are
// designed offline; [AntiAliasTaps] embeds the 64-tap table used ahead of
// 44.1 kHz to 16 kHz downsampling, and [ParseTaps] loads a table from a
// text file.
package fir
