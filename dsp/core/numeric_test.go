package core

import (
	"math"
	"testing"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name            string
		v, lo, hi, want float64
	}{
		{"inside", 3, -12, 12, 3},
		{"below", -20, -12, 12, -12},
		{"above", 13.5, -12, 12, 12},
		{"swapped bounds", 5, 1, 0, 1},
		{"nan", math.NaN(), -1, 1, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clamp(tt.v, tt.lo, tt.hi); got != tt.want {
				t.Fatalf("Clamp(%v, %v, %v) = %v, want %v", tt.v, tt.lo, tt.hi, got, tt.want)
			}
		})
	}
}

func TestLinearToDBSilenceFloor(t *testing.T) {
	if got := LinearToDB(0); got != SilenceDB {
		t.Fatalf("LinearToDB(0) = %v, want %v", got, SilenceDB)
	}

	if got := LinearToDB(-1); got != SilenceDB {
		t.Fatalf("LinearToDB(-1) = %v, want %v", got, SilenceDB)
	}

	if got := LinearToDB(1); math.Abs(got) > 1e-12 {
		t.Fatalf("LinearToDB(1) = %v, want 0", got)
	}

	if got := LinearPowerToDB(0.01); math.Abs(got+20) > 1e-9 {
		t.Fatalf("LinearPowerToDB(0.01) = %v, want -20", got)
	}
}

func TestDBRoundTrip(t *testing.T) {
	for _, db := range []float64{-60, -6, 0, 3, 12} {
		if got := LinearToDB(DBToLinear(db)); !NearlyEqual(got, db, 1e-9) {
			t.Fatalf("round trip %v dB = %v", db, got)
		}
	}
}

func TestSoftClipBoundsAndSlope(t *testing.T) {
	limit := 1 / softClipDrive
	for _, x := range []float64{-100, -2, 2, 100} {
		if y := SoftClip(x); math.Abs(y) > limit {
			t.Fatalf("SoftClip(%v) = %v exceeds %v", x, y, limit)
		}
	}

	if y := SoftClip(1e-6); math.Abs(y-1e-6) > 1e-12 {
		t.Fatalf("SoftClip not unity-slope near zero: %v", y)
	}
}

func TestMeanVariance(t *testing.T) {
	vals := []float64{1, 2, 3, 4}
	if got := Mean(vals); got != 2.5 {
		t.Fatalf("Mean = %v, want 2.5", got)
	}

	if got := Variance(vals); got != 1.25 {
		t.Fatalf("Variance = %v, want 1.25", got)
	}

	if Mean(nil) != 0 || Variance(nil) != 0 {
		t.Fatal("empty input must yield 0")
	}
}

func TestFrames(t *testing.T) {
	buf := make([]float32, 10)
	if got := Frames(buf, 8, 2); got != 5 {
		t.Fatalf("Frames stereo = %d, want 5", got)
	}

	if got := Frames(buf, 4, 1); got != 4 {
		t.Fatalf("Frames mono = %d, want 4", got)
	}

	if got := Frames(buf, 4, 3); got != 0 {
		t.Fatalf("Frames 3ch = %d, want 0", got)
	}
}
