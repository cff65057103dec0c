package analysis

import (
	"testing"

	"github.com/cwbudde/algo-hifi/internal/testutil"
)

func newAnalyzer(t *testing.T, opts ...Option) *Analyzer {
	t.Helper()
	a, err := New(opts...)
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func TestAnalyzer_NoResultUntilWindowFills(t *testing.T) {
	a := newAnalyzer(t)
	buf := testutil.Sine(1000, 44100, 1, DefaultFFTSize-1, 2)
	a.Process(buf, DefaultFFTSize-1, 2)

	if _, ok := a.Result(); ok {
		t.Fatal("result published before the window filled")
	}

	a.Process(buf[:2], 1, 2)
	if _, ok := a.Result(); !ok {
		t.Fatal("no result after a full window")
	}
}

func TestAnalyzer_SineLandsInItsBand(t *testing.T) {
	a := newAnalyzer(t)
	frames := 3 * DefaultFFTSize
	buf := testutil.Sine(1000, 44100, 1, frames, 2)
	orig := testutil.Copy(buf)

	a.Process(buf, frames, 2)

	testutil.RequireNearlyEqual(t, buf, orig, 0)

	r, ok := a.Result()
	if !ok {
		t.Fatal("no result")
	}

	if a.Windows() != 3 {
		t.Fatalf("windows = %d", a.Windows())
	}

	for i, e := range r.SpectrumEnergy {
		if i != 5 && e >= r.SpectrumEnergy[5] {
			t.Fatalf("band %d (%v dB) >= 1 kHz band (%v dB)", i, e, r.SpectrumEnergy[5])
		}
	}

	if r.SpectrumEnergy[5] < -30 {
		t.Fatalf("1 kHz band = %v dB", r.SpectrumEnergy[5])
	}

	if r.AverageLoudness < -3.2 || r.AverageLoudness > -2.8 {
		t.Fatalf("average loudness = %v, want about -3 dBFS", r.AverageLoudness)
	}

	if r.SpectralCentroid < 900 || r.SpectralCentroid > 1500 {
		t.Fatalf("centroid = %v", r.SpectralCentroid)
	}

	if r.Mode != ModeRealtime {
		t.Fatalf("mode = %v", r.Mode)
	}
}

func TestAnalyzer_NoiseFloor(t *testing.T) {
	a := newAnalyzer(t)
	frames := 4 * DefaultFFTSize

	a.Process(make([]float32, frames), frames, 1)
	r, _ := a.Result()
	if r.NeedsDenoising {
		t.Fatalf("silence flagged for denoising, floor %v", r.NoiseFloor)
	}

	a.Reset()
	noise := testutil.Noise(7, 0.5, frames, 1)
	a.Process(noise, frames, 1)

	r, _ = a.Result()
	if !r.NeedsDenoising || r.NoiseFloor <= DenoiseThresholdDB {
		t.Fatalf("noise floor %v, needsDenoising %v", r.NoiseFloor, r.NeedsDenoising)
	}
}

func TestAnalyzer_HistoryEviction(t *testing.T) {
	a := newAnalyzer(t, WithHistory(2))
	n := DefaultFFTSize

	a.Process(testutil.Sine(1000, 44100, 1, n, 1), n, 1)
	a.Process(make([]float32, n), n, 1)

	r, _ := a.Result()
	if r.DynamicRange < 50 {
		t.Fatalf("dynamic range with loud+silent windows = %v", r.DynamicRange)
	}

	a.Process(make([]float32, n), n, 1)

	r, _ = a.Result()
	if r.DynamicRange != 0 {
		t.Fatalf("dynamic range after eviction = %v, want 0", r.DynamicRange)
	}
}

func TestAnalyzer_UpdateSampleRate(t *testing.T) {
	a := newAnalyzer(t)
	n := DefaultFFTSize
	a.Process(testutil.Sine(1000, 44100, 1, n, 1), n, 1)

	if err := a.UpdateSampleRate(44100); err != nil {
		t.Fatal(err)
	}
	if _, ok := a.Result(); !ok {
		t.Fatal("same rate must not reset")
	}

	if err := a.UpdateSampleRate(48000); err != nil {
		t.Fatal(err)
	}
	if _, ok := a.Result(); ok {
		t.Fatal("rate change must reset")
	}
	if a.SampleRate() != 48000 {
		t.Fatalf("rate = %v", a.SampleRate())
	}

	if err := a.UpdateSampleRate(0); err == nil {
		t.Fatal("expected error for zero rate")
	}
}

func TestNew_Options(t *testing.T) {
	if _, err := New(WithFFTSize(1000)); err == nil {
		t.Fatal("non power of two accepted")
	}
	if _, err := New(WithHistory(0)); err == nil {
		t.Fatal("zero history accepted")
	}
	if _, err := New(WithSampleRate(-1)); err == nil {
		t.Fatal("negative rate accepted")
	}

	a := newAnalyzer(t, WithFFTSize(1024))
	if a.FFTSize() != 1024 {
		t.Fatalf("fft size = %d", a.FFTSize())
	}
}

func TestAnalyzer_ProcessDoesNotAllocate(t *testing.T) {
	a := newAnalyzer(t)
	buf := testutil.Sine(440, 44100, 0.5, 512, 2)

	allocs := testing.AllocsPerRun(40, func() {
		a.Process(buf, 512, 2)
	})
	if allocs != 0 {
		t.Fatalf("Process allocated %v times", allocs)
	}
}
