package reverb

import (
	"math"
	"testing"
)

func TestReverb_ZeroMixIsBypass(t *testing.T) {
	r, err := New(44100)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 100; i++ {
		x := math.Sin(float64(i))
		if l, rr := r.ProcessStereo(x, -x); l != x || rr != -x {
			t.Fatalf("sample %d changed with mix 0", i)
		}
	}
}

func TestReverb_TailAfterImpulse(t *testing.T) {
	r, _ := New(44100)
	if err := r.SetMix(0.5); err != nil {
		t.Fatal(err)
	}

	r.ProcessStereo(1, 1)

	energyL, energyR := 0.0, 0.0
	for i := 0; i < 44100; i++ {
		l, rr := r.ProcessStereo(0, 0)
		if math.IsNaN(l) || math.IsInf(l, 0) {
			t.Fatalf("non-finite output at %d", i)
		}
		energyL += l * l
		energyR += rr * rr
	}

	if energyL == 0 || energyR == 0 {
		t.Fatalf("no reverb tail: L=%v R=%v", energyL, energyR)
	}

	r.Reset()
	if l, rr := r.ProcessStereo(0, 0); l != 0 || rr != 0 {
		t.Fatalf("state survived reset: %v %v", l, rr)
	}
}

func TestReverb_TuningScalesWithRate(t *testing.T) {
	r, _ := New(88200)
	if got := len(r.left.combs[0].buffer); got != 2232 {
		t.Fatalf("comb length at 88.2 kHz = %d, want 2232", got)
	}

	if got := len(r.right.allpass[3].buffer); got != 2*(225+stereoSpread) {
		t.Fatalf("right allpass length = %d", got)
	}
}

func TestReverb_Validation(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Fatal("expected error for zero sample rate")
	}

	r, _ := New(48000)
	for _, bad := range []float64{-0.1, 1.5, math.NaN()} {
		if r.SetMix(bad) == nil || r.SetRoomSize(bad) == nil || r.SetDamp(bad) == nil {
			t.Fatalf("value %v accepted", bad)
		}
	}
}
