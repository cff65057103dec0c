// Package wavio reads and writes PCM WAV files through go-audio.
package wavio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"go.uber.org/multierr"

	"github.com/cwbudde/algo-hifi/audio/pcm"
	"github.com/cwbudde/algo-hifi/dsp/dither"
)

// ErrInvalidFile is returned for input that is not a readable PCM WAV.
var ErrInvalidFile = errors.New("wavio: invalid wav file")

const (
	chunkFrames     = 4096
	defaultBitDepth = 16
	formatPCM       = 1
)

// Decoder decodes WAV files, bounded to MaxDuration when it is positive.
type Decoder struct {
	MaxDuration time.Duration
}

// Decode reads at most d.MaxDuration of path. Cancellation is checked
// between chunks.
func (d Decoder) Decode(ctx context.Context, path string) (buf *pcm.Buffer, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("wavio: open: %w", err)
	}
	defer func() { err = multierr.Append(err, f.Close()) }()

	return read(ctx, f, d.MaxDuration)
}

// Read decodes a whole WAV stream.
func Read(r io.ReadSeeker) (*pcm.Buffer, error) {
	return read(context.Background(), r, 0)
}

func read(ctx context.Context, r io.ReadSeeker, maxDuration time.Duration) (*pcm.Buffer, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, ErrInvalidFile
	}

	format := dec.Format()
	channels := format.NumChannels
	if channels != 1 && channels != 2 {
		return nil, fmt.Errorf("%w: %d channels", ErrInvalidFile, channels)
	}

	bitDepth := int(dec.BitDepth)
	if bitDepth <= 0 || bitDepth > 32 {
		return nil, fmt.Errorf("%w: bit depth %d", ErrInvalidFile, bitDepth)
	}

	maxFrames := math.MaxInt
	if maxDuration > 0 {
		maxFrames = int(maxDuration.Seconds() * float64(format.SampleRate))
	}

	scale := 1 / float32(int64(1)<<(bitDepth-1))
	chunk := &goaudio.IntBuffer{
		Format: format,
		Data:   make([]int, chunkFrames*channels),
	}

	out := &pcm.Buffer{Channels: channels, SampleRate: float64(format.SampleRate)}

	for out.Frames() < maxFrames {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n, err := dec.PCMBuffer(chunk)
		if err != nil {
			return nil, fmt.Errorf("wavio: read pcm: %w", err)
		}
		if n == 0 {
			break
		}

		n -= n % channels
		if remain := maxFrames - out.Frames(); n/channels > remain {
			n = remain * channels
		}

		for _, v := range chunk.Data[:n] {
			out.Samples = append(out.Samples, float32(v)*scale)
		}
	}

	return out, nil
}

// WriteFile encodes b as PCM WAV at bitDepth (16 when zero). Samples are
// clipped to [-1, 1] and quantized with triangular dither unless opts say
// otherwise.
func WriteFile(path string, b *pcm.Buffer, bitDepth int, opts ...dither.Option) (err error) {
	if err := b.Validate(); err != nil {
		return fmt.Errorf("wavio: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("wavio: create: %w", err)
	}
	defer func() { err = multierr.Append(err, f.Close()) }()

	return Write(f, b, bitDepth, opts...)
}

// Write encodes b to w. Each channel gets its own quantizer.
func Write(w io.WriteSeeker, b *pcm.Buffer, bitDepth int, opts ...dither.Option) error {
	if bitDepth == 0 {
		bitDepth = defaultBitDepth
	}
	if bitDepth != 16 && bitDepth != 24 && bitDepth != 32 {
		return fmt.Errorf("wavio: unsupported bit depth %d", bitDepth)
	}

	quant := make([]*dither.Quantizer, b.Channels)
	for ch := range quant {
		q, err := dither.NewQuantizer(bitDepth, opts...)
		if err != nil {
			return fmt.Errorf("wavio: %w", err)
		}
		quant[ch] = q
	}

	data := make([]int, len(b.Samples))
	for i, v := range b.Samples {
		x := math.Max(-1, math.Min(1, float64(v)))
		data[i] = quant[i%b.Channels].Quantize(x)
	}

	enc := wav.NewEncoder(w, int(b.SampleRate), bitDepth, b.Channels, formatPCM)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: b.Channels, SampleRate: int(b.SampleRate)},
		Data:           data,
		SourceBitDepth: bitDepth,
	}

	if err := enc.Write(buf); err != nil {
		return multierr.Append(fmt.Errorf("wavio: encode: %w", err), enc.Close())
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("wavio: finalize: %w", err)
	}

	return nil
}
