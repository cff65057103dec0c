package testutil

import (
	"math"
	"testing"
)

func TestSine(t *testing.T) {
	s := Sine(1000, 48000, 1.0, 48, 2)
	if len(s) != 96 {
		t.Fatalf("len = %d, want 96", len(s))
	}
	if s[0] != 0 || s[1] != 0 {
		t.Fatalf("first frame = %v, %v, want 0", s[0], s[1])
	}
	for i := 0; i < 48; i++ {
		if s[2*i] != s[2*i+1] {
			t.Fatalf("frame %d channels differ", i)
		}
		if math.Abs(float64(s[2*i])) > 1 {
			t.Fatalf("frame %d out of range: %v", i, s[2*i])
		}
	}
}

func TestNoiseReproducible(t *testing.T) {
	a := Noise(42, 1.0, 64, 1)
	b := Noise(42, 1.0, 64, 1)
	c := Noise(43, 1.0, 64, 1)

	same := true
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("non-deterministic at index %d", i)
		}
		if a[i] != c[i] {
			same = false
		}
	}
	if same {
		t.Fatal("different seeds produced identical noise")
	}
}

func TestStereo(t *testing.T) {
	got := Stereo([]float32{1, 2, 3}, []float32{-1, -2})
	want := []float32{1, -1, 2, -2}
	RequireNearlyEqual(t, got, want, 0)
}
