// Package resample converts the output of an anti-aliasing FIR filter to a
// lower sample rate.
//
// Two stages are provided:
//   - [Decimator] keeps every k-th sample for integer rate ratios. It does no
//     filtering; feed it the output of a [fir.Filter].
//   - [Downsampler] is a complete streaming 44.1 kHz to 16 kHz path: every
//     input sample goes through the FIR anti-aliasing filter and output
//     samples are produced by linear interpolation between consecutive
//     filtered samples, driven by a fractional time accumulator.
//
// Both keep their state across calls, so a stream may be split into blocks
// of any size. Neither allocates while processing.
//
// Common workflows:
//   - NewDownsampler(44100) with the default 16 kHz target and the
//     reference [fir.AntiAliasTaps] table
//   - NewDownsampler(rate, WithTargetRate(hz), WithTaps(t))
//   - NewDecimator(k) after a custom fir.Filter
package resample
