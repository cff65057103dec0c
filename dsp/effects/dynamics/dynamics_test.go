package dynamics

import (
	"math"
	"testing"
)

func TestCompressor_TargetGain(t *testing.T) {
	c, err := NewCompressor()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		peak, want float64
	}{
		{0.1, 1},
		{0.5, 1},
		{0.8, (0.5 + 0.3/3) / 0.8},
		{1.0, (0.5 + 0.5/3) / 1.0},
	}

	for _, tt := range tests {
		if got := c.TargetGain(tt.peak); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("TargetGain(%v) = %v, want %v", tt.peak, got, tt.want)
		}
	}
}

func TestCompressor_AsymmetricSmoothing(t *testing.T) {
	c, _ := NewCompressor()

	// One loud sample moves the gain 1% of the way toward the target.
	c.ProcessStereo(1, 0)
	want := 1 + ((0.5+0.5/3)-1)*0.01
	if got := c.Gain(); math.Abs(got-want) > 1e-12 {
		t.Fatalf("gain after attack step = %v, want %v", got, want)
	}

	// A quiet sample recovers 0.1% of the way back to unity.
	before := c.Gain()
	c.ProcessStereo(0.1, 0.1)
	want = before + (1-before)*0.001
	if got := c.Gain(); math.Abs(got-want) > 1e-12 {
		t.Fatalf("gain after release step = %v, want %v", got, want)
	}
}

func TestCompressor_ConvergesOnLoudInput(t *testing.T) {
	c, _ := NewCompressor()
	for i := 0; i < 5000; i++ {
		c.ProcessSample(1)
	}

	if got := c.ProcessSample(1); math.Abs(got-(0.5+0.5/3)) > 1e-6 {
		t.Fatalf("steady-state output = %v", got)
	}
}

func TestCompressor_Options(t *testing.T) {
	if _, err := NewCompressor(WithRatio(0.5)); err == nil {
		t.Fatal("expected error for ratio < 1")
	}

	if _, err := NewCompressor(WithThreshold(0)); err == nil {
		t.Fatal("expected error for zero threshold")
	}

	if _, err := NewCompressor(WithSmoothing(0, 0.1)); err == nil {
		t.Fatal("expected error for zero attack")
	}

	c, err := NewCompressor(WithThreshold(0.25), WithRatio(2))
	if err != nil {
		t.Fatal(err)
	}

	if got := c.TargetGain(0.5); math.Abs(got-0.75) > 1e-12 {
		t.Fatalf("TargetGain = %v, want 0.75", got)
	}
}

func TestNormalizer_NeutralAtTarget(t *testing.T) {
	n := NewNormalizer()
	for i := 0; i < 10000; i++ {
		n.ProcessStereo(0.25, -0.25)
	}

	if math.Abs(n.Gain()-1) > 1e-9 {
		t.Fatalf("gain drifted to %v on target-level input", n.Gain())
	}
}

func TestNormalizer_GainBounded(t *testing.T) {
	quiet := NewNormalizer()
	loud := NewNormalizer()

	for i := 0; i < 200000; i++ {
		quiet.ProcessSample(0.001)
		loud.ProcessStereo(1, 1)
	}

	if g := quiet.Gain(); g > normalizerMaxGain || g < 2.4 {
		t.Fatalf("quiet gain = %v, want close to %v", g, normalizerMaxGain)
	}

	if g := loud.Gain(); g < normalizerMinGain || g > 0.51 {
		t.Fatalf("loud gain = %v, want close to %v", g, normalizerMinGain)
	}
}

func TestNormalizer_SilenceStaysFinite(t *testing.T) {
	n := NewNormalizer()
	for i := 0; i < 100000; i++ {
		if y := n.ProcessSample(0); y != 0 {
			t.Fatalf("silence produced %v", y)
		}
	}

	if g := n.Gain(); math.IsNaN(g) || math.IsInf(g, 0) || g > normalizerMaxGain {
		t.Fatalf("gain = %v", g)
	}
}

func TestLimiter_NeverExceedsCeiling(t *testing.T) {
	l, err := NewLimiter(48000)
	if err != nil {
		t.Fatal(err)
	}

	ceiling := math.Pow(10, -0.5/20)
	for i := 0; i < 4800; i++ {
		x := 1.5 * math.Sin(2*math.Pi*440*float64(i)/48000)
		yl, yr := l.ProcessStereo(x, -0.5*x)
		if math.Abs(yl) > ceiling+1e-12 || math.Abs(yr) > ceiling+1e-12 {
			t.Fatalf("sample %d exceeded ceiling: %v %v", i, yl, yr)
		}
	}
}

func TestLimiter_TransparentBelowCeiling(t *testing.T) {
	l, _ := NewLimiter(44100)
	for _, x := range []float64{0.1, -0.5, 0.9, -0.94} {
		if y := l.ProcessSample(x); y != x {
			t.Fatalf("ProcessSample(%v) = %v", x, y)
		}
	}
}

func TestLimiter_Threshold(t *testing.T) {
	l, _ := NewLimiter(44100)
	if l.Threshold() != -0.5 {
		t.Fatalf("default threshold = %v", l.Threshold())
	}

	if err := l.SetThreshold(3); err == nil {
		t.Fatal("expected error for positive threshold")
	}

	if err := l.SetThreshold(-6); err != nil {
		t.Fatal(err)
	}

	if y := l.ProcessSample(1); math.Abs(y-math.Pow(10, -6.0/20)) > 1e-12 {
		t.Fatalf("limited output = %v", y)
	}
}
