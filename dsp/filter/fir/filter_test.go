package fir

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/cwbudde/algo-antialias/internal/testutil"
)

const eps = 1e-12

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func mustNew[F Sample](t *testing.T, coeffs []float64) *Filter[F] {
	t.Helper()
	f, err := New[F](coeffs)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return f
}

func mustNewWithTaps[F Sample](t *testing.T, taps *Taps) *Filter[F] {
	t.Helper()
	f, err := NewWithTaps[F](taps)
	if err != nil {
		t.Fatalf("NewWithTaps: %v", err)
	}
	return f
}

func TestNew(t *testing.T) {
	coeffs := []float64{0.25, 0.5, 0.25}
	f := mustNew[float64](t, coeffs)
	if f.Order() != 2 {
		t.Fatalf("Order: got %d, want 2", f.Order())
	}
	if f.Len() != 3 {
		t.Fatalf("Len: got %d, want 3", f.Len())
	}
	got := f.Coefficients()
	for i := range coeffs {
		if got[i] != coeffs[i] {
			t.Errorf("coeffs[%d]: got %v, want %v", i, got[i], coeffs[i])
		}
	}
	// Verify it's a copy.
	coeffs[0] = 999
	if f.Taps().At(0) == 999 {
		t.Error("New did not copy coefficients")
	}
}

func TestNew_InvalidConfiguration(t *testing.T) {
	tests := []struct {
		name   string
		coeffs []float64
	}{
		{"nil", nil},
		{"empty", []float64{}},
		{"nan", []float64{0.5, math.NaN()}},
		{"inf", []float64{math.Inf(1), 0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := New[float64](tt.coeffs)
			if !errors.Is(err, ErrInvalidConfiguration) {
				t.Fatalf("err = %v, want ErrInvalidConfiguration", err)
			}
			if f != nil {
				t.Fatal("got a filter alongside an error")
			}
		})
	}
}

func TestNewWithTaps_Nil(t *testing.T) {
	f, err := NewWithTaps[float32](nil)
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("err = %v, want ErrInvalidConfiguration", err)
	}
	if f != nil {
		t.Fatal("got a filter alongside an error")
	}
}

func TestProcessSample_MovingAverageScenario(t *testing.T) {
	f := mustNew[float64](t, []float64{0.25, 0.25, 0.25, 0.25})
	input := []float64{1, 1, 1, 1, 1, 1}
	want := []float64{0.25, 0.5, 0.75, 1.0, 1.0, 1.0}
	for i, x := range input {
		if y := f.ProcessSample(x); y != want[i] {
			t.Errorf("sample %d: got %v, want %v", i, y, want[i])
		}
	}
}

func TestProcessSample_Differentiator(t *testing.T) {
	// Simple differentiator: h = [1, -1]
	f := mustNew[float64](t, []float64{1, -1})
	input := []float64{0, 1, 3, 6, 10}
	// y[n] = x[n] - x[n-1], with x[-1] = 0
	want := []float64{0, 1, 2, 3, 4}
	for i, x := range input {
		y := f.ProcessSample(x)
		if !almostEqual(y, want[i], eps) {
			t.Errorf("sample %d: got %v, want %v", i, y, want[i])
		}
	}
}

func TestProcessSample_ImpulseReproducesTaps(t *testing.T) {
	taps := AntiAliasTaps()
	f := mustNewWithTaps[float64](t, taps)
	n := taps.Len()

	out := f.Process(testutil.Impulse[float64](3*n, 0))
	for i := range n {
		if out[i] != taps.At(i) {
			t.Errorf("output[%d] = %v, want tap %v", i, out[i], taps.At(i))
		}
	}
	// After the impulse response, output should be zero.
	for i := n; i < len(out); i++ {
		if out[i] != 0 {
			t.Errorf("post-IR sample %d: got %v, want 0", i, out[i])
		}
	}
}

func TestProcessSample_ImpulseFloat32(t *testing.T) {
	taps := AntiAliasTaps()
	f := mustNewWithTaps[float32](t, taps)
	out := f.Process(testutil.Impulse[float32](taps.Len(), 0))
	for i := range out {
		if want := float32(taps.At(i)); out[i] != want {
			t.Errorf("output[%d] = %v, want %v", i, out[i], want)
		}
	}
}

func TestProcessSample_DCGain(t *testing.T) {
	taps := AntiAliasTaps()
	n := taps.Len()
	const level = 0.5

	f := mustNewWithTaps[float64](t, taps)
	out := f.Process(testutil.DC(level, 3*n))

	want := level * taps.Sum()
	for i := n - 1; i < len(out); i++ {
		if math.Abs(out[i]-want) > 1e-6*math.Abs(want) {
			t.Fatalf("sample %d: got %v, want %v", i, out[i], want)
		}
	}
	// The reference table is normalised to unity DC gain.
	if !almostEqual(taps.Sum(), 1, 1e-6) {
		t.Errorf("Sum = %v, want ~1", taps.Sum())
	}
}

func TestProcessSample_StartupTransient(t *testing.T) {
	f := mustNew[float64](t, []float64{0.25, 0.25, 0.25, 0.25})
	for i := range 3 {
		f.ProcessSample(1)
		if f.Primed() {
			t.Fatalf("Primed after %d samples, want false", i+1)
		}
	}
	f.ProcessSample(1)
	if !f.Primed() {
		t.Fatal("not Primed after N samples")
	}
	f.Reset()
	if f.Primed() {
		t.Fatal("Primed after Reset")
	}
}

func TestProcessBlock_MatchesSample(t *testing.T) {
	taps := AntiAliasTaps()
	for _, length := range []int{0, 1, 2, 63, 64, 65, 1000} {
		input := testutil.DeterministicNoise[float64](uint64(length)+1, 1, length)

		f1 := mustNewWithTaps[float64](t, taps)
		ref := make([]float64, len(input))
		for i, x := range input {
			ref[i] = f1.ProcessSample(x)
		}

		f2 := mustNewWithTaps[float64](t, taps)
		block := make([]float64, len(input))
		copy(block, input)
		f2.ProcessBlock(block)
		testutil.RequireBitIdentical(t, block, ref)

		f3 := mustNewWithTaps[float64](t, taps)
		dst := make([]float64, len(input))
		f3.ProcessBlockTo(dst, input)
		testutil.RequireBitIdentical(t, dst, ref)

		f4 := mustNewWithTaps[float64](t, taps)
		testutil.RequireBitIdentical(t, f4.Process(input), ref)
	}
}

func TestProcessBlock_SplitBlocksMatchSample(t *testing.T) {
	taps := AntiAliasTaps()
	input := testutil.DeterministicNoise[float32](7, 1, 500)

	ref := mustNewWithTaps[float32](t, taps).Process(input)

	f := mustNewWithTaps[float32](t, taps)
	got := make([]float32, 0, len(input))
	for start, size := 0, 1; start < len(input); size = size*2 + 1 {
		end := min(start+size, len(input))
		got = append(got, f.Process(input[start:end])...)
		start = end
	}
	testutil.RequireBitIdentical(t, got, ref)
}

func TestProcessBlockTo_ShortDstPanics(t *testing.T) {
	f := mustNew[float64](t, []float64{1})
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for short dst")
		}
	}()
	f.ProcessBlockTo(make([]float64, 1), []float64{1, 2})
}

func TestReset(t *testing.T) {
	f := mustNew[float64](t, []float64{0.25, 0.5, 0.25})
	f.ProcessSample(1)
	f.ProcessSample(0.5)
	f.Reset()

	// After reset, impulse response should match coefficients again.
	for i, want := range f.Coefficients() {
		var x float64
		if i == 0 {
			x = 1
		}
		y := f.ProcessSample(x)
		if !almostEqual(y, want, eps) {
			t.Errorf("sample %d after reset: got %v, want %v", i, y, want)
		}
	}
}

func TestReset_FreshFilterIsNoOp(t *testing.T) {
	input := testutil.DeterministicNoise[float64](3, 1, 200)

	plain := mustNewWithTaps[float64](t, AntiAliasTaps())
	reset := mustNewWithTaps[float64](t, AntiAliasTaps())
	reset.Reset()

	testutil.RequireBitIdentical(t, reset.Process(input), plain.Process(input))
}

func TestDeterminism(t *testing.T) {
	input := testutil.DeterministicSine[float64](1000, 44100, 0.8, 300)
	a := mustNewWithTaps[float64](t, AntiAliasTaps()).Process(input)
	b := mustNew[float64](t, AntiAliasTaps().Values()).Process(input)
	testutil.RequireBitIdentical(t, a, b)
}

func TestSharedTapsParallel(t *testing.T) {
	taps := AntiAliasTaps()
	const channels = 8

	inputs := make([][]float32, channels)
	want := make([][]float32, channels)
	for ch := range channels {
		inputs[ch] = testutil.DeterministicNoise[float32](uint64(ch), 1, 4096)
		want[ch] = mustNewWithTaps[float32](t, taps).Process(inputs[ch])
	}

	got := make([][]float32, channels)
	var wg sync.WaitGroup
	for ch := range channels {
		f := mustNewWithTaps[float32](t, taps)
		wg.Add(1)
		go func() {
			defer wg.Done()
			out := make([]float32, len(inputs[ch]))
			for start := 0; start < len(out); start += 256 {
				f.ProcessBlockTo(out[start:start+256], inputs[ch][start:start+256])
			}
			got[ch] = out
		}()
	}
	wg.Wait()

	for ch := range channels {
		testutil.RequireBitIdentical(t, got[ch], want[ch])
	}
}

func TestLinearPhase_SineDelay(t *testing.T) {
	taps := AntiAliasTaps()
	delay, ok := taps.GroupDelay()
	if !ok || delay != 31.5 {
		t.Fatalf("GroupDelay = %v, %v; want 31.5, true", delay, ok)
	}

	const (
		sr   = 44100.0
		freq = 1000.0
	)
	// H(w) = A(w) e^{-jw*delay} with A real for a symmetric table.
	gain := real(taps.Response(freq, sr) * complexExp(2*math.Pi*freq/sr*delay))

	f := mustNewWithTaps[float64](t, taps)
	out := f.Process(testutil.DeterministicSine[float64](freq, sr, 1, 2048))

	w := 2 * math.Pi * freq / sr
	for n := taps.Len(); n < len(out); n++ {
		want := gain * math.Sin(w*(float64(n)-delay))
		if !almostEqual(out[n], want, 1e-9) {
			t.Fatalf("sample %d: got %v, want %v", n, out[n], want)
		}
	}
}

func complexExp(phi float64) complex128 {
	return complex(math.Cos(phi), math.Sin(phi))
}

func TestNonFiniteInputPropagates(t *testing.T) {
	taps := AntiAliasTaps()
	n := taps.Len()
	f := mustNewWithTaps[float64](t, taps)

	input := make([]float64, 3*n)
	input[10] = math.NaN()
	out := f.Process(input)

	for i := range out {
		inWindow := i >= 10 && i < 10+n
		if math.IsNaN(out[i]) != inWindow {
			t.Fatalf("sample %d: got %v, NaN expected: %v", i, out[i], inWindow)
		}
	}
}

func TestReset_ClearsNonFiniteHistory(t *testing.T) {
	f := mustNew[float64](t, []float64{0.5, 0.5})
	f.ProcessSample(math.Inf(1))
	f.Reset()
	if y := f.ProcessSample(1); y != 0.5 {
		t.Fatalf("after Reset: got %v, want 0.5", y)
	}
}

func TestPrime_MatchesProcessedHistory(t *testing.T) {
	taps := AntiAliasTaps()
	input := testutil.DeterministicNoise[float64](11, 1, 400)

	for _, k := range []int{0, 1, 10, 63, 64, 65, 200} {
		ref := mustNewWithTaps[float64](t, taps)
		ref.Process(input[:k])
		want := ref.Process(input[k:])

		primed := mustNewWithTaps[float64](t, taps)
		primed.ProcessSample(42) // stale state must be discarded
		primed.Prime(input[:k])
		if got := primed.Primed(); got != (k >= taps.Len()) {
			t.Errorf("k=%d: Primed = %v", k, got)
		}
		testutil.RequireBitIdentical(t, primed.Process(input[k:]), want)
	}
}

func TestProcess_NoAllocations(t *testing.T) {
	f := mustNewWithTaps[float32](t, AntiAliasTaps())
	buf := testutil.DeterministicNoise[float32](5, 1, 256)
	dst := make([]float32, len(buf))

	if allocs := testing.AllocsPerRun(100, func() { f.ProcessSample(0.5) }); allocs != 0 {
		t.Errorf("ProcessSample allocs = %v, want 0", allocs)
	}
	if allocs := testing.AllocsPerRun(100, func() { f.ProcessBlock(buf) }); allocs != 0 {
		t.Errorf("ProcessBlock allocs = %v, want 0", allocs)
	}
	if allocs := testing.AllocsPerRun(100, func() { f.ProcessBlockTo(dst, buf) }); allocs != 0 {
		t.Errorf("ProcessBlockTo allocs = %v, want 0", allocs)
	}
	if allocs := testing.AllocsPerRun(100, f.Reset); allocs != 0 {
		t.Errorf("Reset allocs = %v, want 0", allocs)
	}
}

func TestFloat32TracksFloat64(t *testing.T) {
	input64 := testutil.DeterministicSine[float64](3000, 44100, 0.9, 1024)
	input32 := testutil.DeterministicSine[float32](3000, 44100, 0.9, 1024)

	out64 := mustNewWithTaps[float64](t, AntiAliasTaps()).Process(input64)
	out32 := mustNewWithTaps[float32](t, AntiAliasTaps()).Process(input32)

	for i := range out64 {
		if !almostEqual(float64(out32[i]), out64[i], 1e-6) {
			t.Fatalf("sample %d: float32 %v vs float64 %v", i, out32[i], out64[i])
		}
	}
}

func TestSingleTap(t *testing.T) {
	// Single-tap FIR (gain only).
	f := mustNew[float64](t, []float64{0.5})
	if f.Order() != 0 {
		t.Fatalf("Order: got %d, want 0", f.Order())
	}
	for i, x := range []float64{1, 2, 3} {
		y := f.ProcessSample(x)
		if !almostEqual(y, x*0.5, eps) {
			t.Errorf("sample %d: got %v, want %v", i, y, x*0.5)
		}
	}
	if !f.Primed() {
		t.Error("single-tap filter not Primed after one sample")
	}
}

func TestMagnitudeDB_MatchesResponse(t *testing.T) {
	f := mustNew[float64](t, []float64{0.25, 0.5, 0.25})
	sr := 48000.0
	for _, freq := range []float64{100, 1000, 10000} {
		h := f.Response(freq, sr)
		fromResponse := 20 * math.Log10(math.Hypot(real(h), imag(h)))
		fromMethod := f.MagnitudeDB(freq, sr)
		if !almostEqual(fromMethod, fromResponse, 1e-10) {
			t.Errorf("freq=%v: MagnitudeDB=%.15f, ref=%.15f", freq, fromMethod, fromResponse)
		}
	}
}

func TestProcessSample_StepSettles(t *testing.T) {
	taps := AntiAliasTaps()
	n := taps.Len()

	out := mustNewWithTaps[float32](t, taps).Process(testutil.Step[float32](4*n, n))
	testutil.RequireFinite(t, out)
	testutil.RequireSliceNearlyEqual(t, out[:n], make([]float32, n), 0)
	testutil.RequireSliceNearlyEqual(t, out[2*n:], testutil.DC[float32](1, 2*n), 1e-6)
}
