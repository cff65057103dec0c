package wavio

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cwbudde/algo-hifi/audio/pcm"
	"github.com/cwbudde/algo-hifi/dsp/dither"
)

func tone(frames, channels int, rate float64) *pcm.Buffer {
	b := &pcm.Buffer{Channels: channels, SampleRate: rate, Samples: make([]float32, frames*channels)}
	for i := 0; i < frames; i++ {
		v := float32(0.5 * math.Sin(2*math.Pi*440*float64(i)/rate))
		for ch := 0; ch < channels; ch++ {
			b.Samples[i*channels+ch] = v
		}
	}
	return b
}

func TestWriteThenDecode(t *testing.T) {
	tests := []struct {
		name string
		opts []dither.Option
		tol  float64
	}{
		{name: "rounded", opts: []dither.Option{dither.WithType(dither.TypeNone)}, tol: 1.0 / 16384},
		{name: "dithered", opts: []dither.Option{dither.WithSeed(3)}, tol: 1.0 / 8192},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "tone.wav")
			in := tone(4410, 2, 44100)

			if err := WriteFile(path, in, 16, tt.opts...); err != nil {
				t.Fatal(err)
			}

			out, err := Decoder{}.Decode(context.Background(), path)
			if err != nil {
				t.Fatal(err)
			}

			if out.Channels != 2 || out.SampleRate != 44100 || out.Frames() != 4410 {
				t.Fatalf("decoded %d ch @ %v, %d frames", out.Channels, out.SampleRate, out.Frames())
			}

			for i, v := range out.Samples {
				if d := math.Abs(float64(v - in.Samples[i])); d > tt.tol {
					t.Fatalf("sample %d: %v vs %v", i, v, in.Samples[i])
				}
			}
		})
	}
}

func TestDecode_MaxDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "long.wav")
	if err := WriteFile(path, tone(8000*3, 1, 8000), 16); err != nil {
		t.Fatal(err)
	}

	out, err := Decoder{MaxDuration: time.Second}.Decode(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if out.Frames() != 8000 {
		t.Fatalf("frames = %d, want 8000", out.Frames())
	}
}

func TestDecode_StereoFrameLimits(t *testing.T) {
	tests := []struct {
		name   string
		max    time.Duration
		frames int
		want   int
	}{
		{name: "uncapped", frames: 100, want: 100},
		{name: "uncapped multi-chunk", frames: 3*chunkFrames + 7, want: 3*chunkFrames + 7},
		{name: "capped", max: 250 * time.Millisecond, frames: 8000, want: 2000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "stereo.wav")
			if err := WriteFile(path, tone(tt.frames, 2, 8000), 16); err != nil {
				t.Fatal(err)
			}

			out, err := Decoder{MaxDuration: tt.max}.Decode(context.Background(), path)
			if err != nil {
				t.Fatal(err)
			}
			if out.Channels != 2 || out.Frames() != tt.want {
				t.Fatalf("decoded %d ch, %d frames, want 2 ch, %d frames", out.Channels, out.Frames(), tt.want)
			}
		})
	}
}

func TestRead_Stereo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stereo.wav")
	if err := WriteFile(path, tone(100, 2, 8000), 16); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	out, err := Read(f)
	if err != nil {
		t.Fatal(err)
	}
	if out.Frames() != 100 {
		t.Fatalf("frames = %d, want 100", out.Frames())
	}
}

func TestDecode_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.wav")
	if err := os.WriteFile(path, []byte("definitely not a riff file"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := (Decoder{}).Decode(context.Background(), path); !errors.Is(err, ErrInvalidFile) {
		t.Fatalf("err = %v, want ErrInvalidFile", err)
	}
}

func TestWrite_Rejects(t *testing.T) {
	dir := t.TempDir()
	if err := WriteFile(filepath.Join(dir, "a.wav"), &pcm.Buffer{Channels: 3, SampleRate: 1}, 16); err == nil {
		t.Fatal("3 channels accepted")
	}
	if err := WriteFile(filepath.Join(dir, "b.wav"), tone(10, 1, 8000), 12); err == nil {
		t.Fatal("12-bit accepted")
	}
}
