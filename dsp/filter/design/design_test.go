package design

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-hifi/dsp/filter/biquad"
)

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func magDB(c biquad.Coefficients, freq, sr float64) float64 {
	return c.MagnitudeDB(freq, sr)
}

func TestPeak_CenterGain(t *testing.T) {
	sr := 48000.0

	for _, gain := range []float64{-12, -6, -1, 3, 6, 12} {
		c := Peak(1000, gain, 1.41, sr)
		if got := magDB(c, 1000, sr); !almostEqual(got, gain, 1e-6) {
			t.Errorf("gain %v: |H(f0)| = %.9f dB", gain, got)
		}

		if got := magDB(c, 20, sr); math.Abs(got) > 0.1 {
			t.Errorf("gain %v: far-band response %.4f dB, want ~0", gain, got)
		}
	}
}

func TestPeak_ZeroGainIsUnity(t *testing.T) {
	c := Peak(1000, 0, 1.41, 44100)
	for _, f := range []float64{50, 1000, 15000} {
		if got := magDB(c, f, 44100); !almostEqual(got, 0, 1e-9) {
			t.Errorf("f=%v: %v dB", f, got)
		}
	}
}

func TestShelves_Tilt(t *testing.T) {
	sr := 44100.0

	ls := LowShelf(100, 6, 0.707, sr)
	if got := magDB(ls, 1, sr); !almostEqual(got, 6, 0.05) {
		t.Errorf("low shelf DC gain = %.4f dB", got)
	}

	if got := magDB(ls, 15000, sr); math.Abs(got) > 0.1 {
		t.Errorf("low shelf HF gain = %.4f dB", got)
	}

	hs := HighShelf(8000, -6, 0.707, sr)
	if got := magDB(hs, 22000, sr); !almostEqual(got, -6, 0.05) {
		t.Errorf("high shelf HF gain = %.4f dB", got)
	}

	if got := magDB(hs, 50, sr); math.Abs(got) > 0.1 {
		t.Errorf("high shelf LF gain = %.4f dB", got)
	}
}

func TestPassFilters_Shape(t *testing.T) {
	sr := 48000.0

	lp := Lowpass(1000, DefaultQ, sr)
	if got := magDB(lp, 1000, sr); !almostEqual(got, -3.0103, 0.01) {
		t.Errorf("lowpass |H(fc)| = %.4f dB", got)
	}

	if !(magDB(lp, 100, sr) > magDB(lp, 10000, sr)) {
		t.Fatal("lowpass shape check failed")
	}

	hp := Highpass(1000, DefaultQ, sr)
	if !(magDB(hp, 10000, sr) > magDB(hp, 100, sr)) {
		t.Fatal("highpass shape check failed")
	}
}

func TestInvalidFrequency_Identity(t *testing.T) {
	tests := []struct {
		name string
		c    biquad.Coefficients
	}{
		{"zero", Peak(0, 6, 1, 48000)},
		{"nyquist", LowShelf(24000, 6, 1, 48000)},
		{"above", HighShelf(30000, 6, 1, 48000)},
		{"bad rate", Lowpass(1000, 1, 0)},
		{"nan", Peak(math.NaN(), 6, 1, 48000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.c.IsIdentity() {
				t.Fatalf("got %+v, want identity", tt.c)
			}
		})
	}
}

func TestNonPositiveQ_UsesDefault(t *testing.T) {
	got := Lowpass(1000, 0, 48000)
	want := Lowpass(1000, DefaultQ, 48000)

	if got != want {
		t.Fatalf("q=0 got %+v, want %+v", got, want)
	}
}
