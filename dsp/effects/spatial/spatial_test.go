package spatial

import (
	"math"
	"testing"
)

func TestWidener_SideScaling(t *testing.T) {
	tests := []struct {
		amount, wantL, wantR float64
	}{
		{0, 1, 0},
		{0.5, 1.5, -0.5},
		{1, 2, -1},
	}

	for _, tt := range tests {
		w, err := NewWidener(tt.amount)
		if err != nil {
			t.Fatal(err)
		}

		l, r := w.ProcessStereo(1, 0)
		if math.Abs(l-tt.wantL) > 1e-12 || math.Abs(r-tt.wantR) > 1e-12 {
			t.Errorf("amount %v: got (%v, %v), want (%v, %v)", tt.amount, l, r, tt.wantL, tt.wantR)
		}
	}
}

func TestWidener_MonoUnchanged(t *testing.T) {
	w, _ := NewWidener(1)
	if l, r := w.ProcessStereo(0.4, 0.4); l != 0.4 || r != 0.4 {
		t.Fatalf("centred signal moved: %v, %v", l, r)
	}
}

func TestWidener_RejectsOutOfRange(t *testing.T) {
	for _, v := range []float64{-0.1, 1.1, math.NaN()} {
		if _, err := NewWidener(v); err == nil {
			t.Errorf("amount %v accepted", v)
		}
	}
}

func TestCrossfeed_BlendsDelayedOpposite(t *testing.T) {
	c, err := NewCrossfeed(10000, 0.5, 0.3) // 3-sample delay
	if err != nil {
		t.Fatal(err)
	}

	if got := c.Amount(); math.Abs(got-0.3) > 1e-12 {
		t.Fatalf("amount = %v, want 0.3", got)
	}

	// Impulse on the left only.
	var outs [][2]float64
	for i := 0; i < 5; i++ {
		x := 0.0
		if i == 0 {
			x = 1
		}
		l, r := c.ProcessStereo(x, 0)
		outs = append(outs, [2]float64{l, r})
	}

	if math.Abs(outs[0][0]-0.7) > 1e-12 || outs[0][1] != 0 {
		t.Fatalf("frame 0 = %v", outs[0])
	}

	if math.Abs(outs[3][1]-0.3) > 1e-12 {
		t.Fatalf("delayed crossfeed at frame 3 = %v, want 0.3", outs[3][1])
	}

	for _, i := range []int{1, 2, 4} {
		if outs[i][1] != 0 {
			t.Fatalf("frame %d right = %v, want 0", i, outs[i][1])
		}
	}
}

func TestCrossfeed_SampleRateRebuild(t *testing.T) {
	c, _ := NewCrossfeed(44100, 1, 1)
	c.ProcessStereo(1, 1)

	if err := c.SetSampleRate(48000); err != nil {
		t.Fatal(err)
	}

	if c.left.Len() != 48 {
		t.Fatalf("delay = %d samples, want 48", c.left.Len())
	}

	for i := 0; i < 60; i++ {
		if _, r := c.ProcessStereo(0, 0); r != 0 {
			t.Fatalf("stale history leaked at %d", i)
		}
	}

	if err := c.SetSampleRate(0); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
}
