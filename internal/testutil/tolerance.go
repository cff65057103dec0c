package testutil

import (
	"fmt"
	"math"
	"testing"
)

// RequireNearlyEqual fails t if got and want differ in length or if any
// element pair exceeds eps (absolute tolerance).
func RequireNearlyEqual(t *testing.T, got, want []float32, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		diff := math.Abs(float64(got[i]) - float64(want[i]))
		if diff > eps {
			t.Fatalf("index %d: got %v, want %v (diff %v > eps %v)", i, got[i], want[i], diff, eps)
		}
	}
}

// RequireFinite fails t if any sample is NaN or Inf.
func RequireFinite(t *testing.T, data []float32) {
	t.Helper()
	for i, v := range data {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			t.Fatalf("index %d: non-finite value %v", i, v)
		}
	}
}

// MaxAbsDiff returns the maximum absolute difference between two buffers.
// Returns an error if the buffers differ in length.
func MaxAbsDiff(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("length mismatch: %d vs %d", len(a), len(b))
	}
	maxDiff := 0.0
	for i := range a {
		d := math.Abs(float64(a[i]) - float64(b[i]))
		if d > maxDiff {
			maxDiff = d
		}
	}
	return maxDiff, nil
}

// ErrorDB returns the peak error between got and want relative to the peak
// of want, in dB. Identical buffers yield -inf.
func ErrorDB(got, want []float32) (float64, error) {
	diff, err := MaxAbsDiff(got, want)
	if err != nil {
		return 0, err
	}
	peak := 0.0
	for _, v := range want {
		peak = math.Max(peak, math.Abs(float64(v)))
	}
	if peak == 0 {
		return 0, fmt.Errorf("reference buffer is silent")
	}
	return 20 * math.Log10(diff/peak), nil
}

// Peak returns the maximum absolute sample of buf starting at frame offset
// skip for the given channel.
func Peak(buf []float32, channels, ch, skip int) float64 {
	peak := 0.0
	for i := skip*channels + ch; i < len(buf); i += channels {
		peak = math.Max(peak, math.Abs(float64(buf[i])))
	}
	return peak
}

// RMS returns the root mean square of channel ch from frame offset skip.
func RMS(buf []float32, channels, ch, skip int) float64 {
	sum, n := 0.0, 0
	for i := skip*channels + ch; i < len(buf); i += channels {
		sum += float64(buf[i]) * float64(buf[i])
		n++
	}
	if n == 0 {
		return 0
	}
	return math.Sqrt(sum / float64(n))
}
