package pcm

import (
	"testing"
	"time"
)

func TestBuffer(t *testing.T) {
	b := &Buffer{Samples: []float32{1, 0, 0.5, 0.5, -1, 1}, Channels: 2, SampleRate: 3}

	if err := b.Validate(); err != nil {
		t.Fatal(err)
	}
	if b.Frames() != 3 {
		t.Fatalf("frames = %d", b.Frames())
	}
	if b.Duration() != time.Second {
		t.Fatalf("duration = %v", b.Duration())
	}

	mono := b.Mono()
	want := []float64{0.5, 0.5, 0}
	for i := range want {
		if mono[i] != want[i] {
			t.Fatalf("mono = %v, want %v", mono, want)
		}
	}

	if (&Buffer{Channels: 3, SampleRate: 1}).Validate() == nil {
		t.Fatal("3 channels accepted")
	}
	if (&Buffer{Channels: 1}).Validate() == nil {
		t.Fatal("zero rate accepted")
	}
}
