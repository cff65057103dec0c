package delay

import "testing"

func TestNewValidation(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Fatal("expected error for size=0")
	}

	if _, err := New(-1); err == nil {
		t.Fatal("expected error for size=-1")
	}
}

func TestFromMilliseconds(t *testing.T) {
	tests := []struct {
		ms, sr  float64
		wantLen int
		wantErr bool
	}{
		{0.3, 44100, 13, false},
		{0.5, 48000, 24, false},
		{0, 48000, 1, false},
		{MaxDelayMs, 48000, 2400, false},
		{-1, 48000, 0, true},
		{60, 48000, 0, true},
		{1, 0, 0, true},
	}

	for _, tt := range tests {
		d, err := FromMilliseconds(tt.ms, tt.sr)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ms=%v sr=%v: expected error", tt.ms, tt.sr)
			}
			continue
		}

		if err != nil {
			t.Fatalf("ms=%v sr=%v: %v", tt.ms, tt.sr, err)
		}

		if d.Len() != tt.wantLen {
			t.Errorf("ms=%v sr=%v: Len = %d, want %d", tt.ms, tt.sr, d.Len(), tt.wantLen)
		}
	}
}

func TestReadWrite(t *testing.T) {
	d, err := New(8)
	if err != nil {
		t.Fatal(err)
	}

	for i := 1; i <= 8; i++ {
		d.Write(float64(i))
	}

	for delay := 1; delay <= 8; delay++ {
		if got, want := d.Read(delay), float64(9-delay); got != want {
			t.Errorf("Read(%d) = %v, want %v", delay, got, want)
		}
	}
}

func TestProcessLagsByLen(t *testing.T) {
	d, _ := New(3)

	in := []float64{1, 2, 3, 4, 5, 6}
	want := []float64{0, 0, 0, 1, 2, 3}
	for i, x := range in {
		if got := d.Process(x); got != want[i] {
			t.Fatalf("step %d: got %v, want %v", i, got, want[i])
		}
	}

	d.Reset()
	if got := d.Process(9); got != 0 {
		t.Fatalf("after reset got %v", got)
	}
}
