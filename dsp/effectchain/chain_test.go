package effectchain

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-hifi/internal/testutil"
)

const rate = 48000.0

func newChain(t *testing.T) *Chain {
	t.Helper()
	c, err := New(rate)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestNew_IsNeutral(t *testing.T) {
	c := newChain(t)
	buf := testutil.Noise(1, 0.9, 2048, 2)
	want := testutil.Copy(buf)

	c.Process(buf, 2048, 2)
	testutil.RequireNearlyEqual(t, buf, want, 0)

	p, ok := c.Params(TypeLimiter)
	if !ok || !p.Bypassed {
		t.Fatalf("limiter params = %+v, want bypassed", p)
	}
}

func TestPreamp(t *testing.T) {
	c := newChain(t)
	if err := c.SetPreamp(-6); err != nil {
		t.Fatal(err)
	}

	buf := testutil.DC(0.8, 64)
	c.Process(buf, 64, 1)

	want := 0.8 * math.Pow(10, -6.0/20)
	if math.Abs(float64(buf[10])-want) > 1e-6 {
		t.Fatalf("got %v, want %v", buf[10], want)
	}
}

func TestLimiterCeiling(t *testing.T) {
	c := newChain(t)
	if err := c.SetLimiter(true, -0.5); err != nil {
		t.Fatal(err)
	}

	buf := testutil.Sine(200, rate, 1.5, 9600, 2)
	c.Process(buf, 9600, 2)

	ceiling := math.Pow(10, -0.5/20)
	for ch := 0; ch < 2; ch++ {
		if p := testutil.Peak(buf, 2, ch, 0); p > ceiling+1e-6 {
			t.Fatalf("ch %d peak %v exceeds %v", ch, p, ceiling)
		}
	}
}

func TestTone_BassShelf(t *testing.T) {
	c := newChain(t)
	if err := c.SetTone(6, 0); err != nil {
		t.Fatal(err)
	}

	low := testutil.Sine(40, rate, 0.1, 24000, 1)
	c.Process(low, 24000, 1)
	if p := testutil.Peak(low, 1, 0, 12000); p < 0.15 {
		t.Fatalf("40 Hz peak %v, want boosted above 0.15", p)
	}

	c.Reset()
	high := testutil.Sine(8000, rate, 0.1, 4800, 1)
	dry := testutil.Copy(high)
	c.Process(high, 4800, 1)
	wet, ref := testutil.RMS(high, 1, 0, 2400), testutil.RMS(dry, 1, 0, 2400)
	if d := 20 * math.Log10(wet/ref); math.Abs(d) > 0.1 {
		t.Fatalf("8 kHz level changed by %.3f dB, want unchanged", d)
	}
}

func TestReverbMix(t *testing.T) {
	c := newChain(t)
	if err := c.SetReverbMix(0.3); err != nil {
		t.Fatal(err)
	}

	buf := make([]float32, 2*4800)
	buf[0], buf[1] = 1, 1
	c.Process(buf, 4800, 2)

	tail := testutil.Peak(buf, 2, 0, 2400)
	if tail == 0 {
		t.Fatal("no reverb tail")
	}
	testutil.RequireFinite(t, buf)
}

func TestConfigure_UnknownStage(t *testing.T) {
	c := newChain(t)
	err := c.Configure("chorus", func(*Params) {})
	if !errors.Is(err, ErrUnknownStage) {
		t.Fatalf("err = %v", err)
	}

	if _, err := New(rate, WithOrder(TypePreamp, "chorus")); !errors.Is(err, ErrUnknownStage) {
		t.Fatalf("New err = %v", err)
	}
	if _, err := New(rate, WithOrder(TypePreamp, TypePreamp)); err == nil {
		t.Fatal("duplicate stage accepted")
	}
	if _, err := New(0); err == nil {
		t.Fatal("zero rate accepted")
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(TypePreamp, newPreamp); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(TypePreamp, newPreamp); err == nil {
		t.Fatal("duplicate registration accepted")
	}
	if err := r.Register("", newPreamp); err == nil {
		t.Fatal("empty type accepted")
	}
	if r.Lookup(TypeTone) != nil {
		t.Fatal("unregistered type found")
	}

	c, err := New(rate, WithRegistry(r), WithOrder(TypePreamp))
	if err != nil {
		t.Fatal(err)
	}
	if err := c.SetTone(3, 3); !errors.Is(err, ErrUnknownStage) {
		t.Fatalf("tone on preamp-only chain: %v", err)
	}
}

func TestUpdateSampleRate(t *testing.T) {
	c := newChain(t)
	if err := c.SetReverbMix(0.5); err != nil {
		t.Fatal(err)
	}
	if err := c.UpdateSampleRate(44100); err != nil {
		t.Fatal(err)
	}
	if c.SampleRate() != 44100 {
		t.Fatalf("rate = %v", c.SampleRate())
	}
	if p, _ := c.Params(TypeReverb); p.GetNum(ParamMix, 0) != 0.5 {
		t.Fatalf("mix lost across rate change: %+v", p)
	}
	if err := c.UpdateSampleRate(-1); err == nil {
		t.Fatal("negative rate accepted")
	}
}

func TestProcess_DoesNotAllocate(t *testing.T) {
	c := newChain(t)
	_ = c.SetPreamp(-3)
	_ = c.SetTone(4, -2)
	_ = c.SetReverbMix(0.2)
	_ = c.SetLimiter(true, -1)

	buf := testutil.Noise(2, 0.5, 512, 2)
	allocs := testing.AllocsPerRun(20, func() {
		c.Process(buf, 512, 2)
	})
	if allocs != 0 {
		t.Fatalf("Process allocated %v times", allocs)
	}
}
