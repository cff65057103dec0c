package offline

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/cwbudde/algo-hifi/analysis"
	"github.com/cwbudde/algo-hifi/audio/pcm"
	"github.com/cwbudde/algo-hifi/audio/wavio"
)

type staticSnapshot struct {
	res analysis.Result
	ok  bool
}

func (s staticSnapshot) Result() (analysis.Result, bool) { return s.res, s.ok }

type failingFetcher struct{ err error }

func (f failingFetcher) Fetch(context.Context, string) (string, func() error, error) {
	return "", nil, f.err
}

type countingFetcher struct {
	path     string
	released int
}

func (f *countingFetcher) Fetch(context.Context, string) (string, func() error, error) {
	return f.path, func() error { f.released++; return nil }, nil
}

type failingDecoder struct{}

func (failingDecoder) Decode(context.Context, string) (*pcm.Buffer, error) {
	return nil, errors.New("unsupported codec")
}

func TestAnalyze_FallsBackToRealtime(t *testing.T) {
	rt := analysis.Result{Genre: analysis.GenreJazz, Mode: analysis.ModeRealtime}
	svc := NewService(
		WithFetcher(failingFetcher{err: errors.New("connection refused")}),
		WithRealtime(staticSnapshot{res: rt, ok: true}),
	)

	got, err := svc.Analyze(context.Background(), "https://example.invalid/song.wav")
	if !errors.Is(err, ErrFileAnalysis) {
		t.Fatalf("err = %v, want ErrFileAnalysis", err)
	}

	var ferr *Error
	if !errors.As(err, &ferr) || ferr.Stage != StageFetch {
		t.Fatalf("err = %#v, want fetch stage", err)
	}

	if got.Genre != analysis.GenreJazz || got.Mode != analysis.ModeRealtime {
		t.Fatalf("fallback result = %+v", got)
	}
}

func TestAnalyze_NoFallbackAvailable(t *testing.T) {
	svc := NewService(
		WithFetcher(failingFetcher{err: errors.New("down")}),
		WithRealtime(staticSnapshot{}),
	)

	got, err := svc.Analyze(context.Background(), "x")
	if !errors.Is(err, ErrFileAnalysis) {
		t.Fatalf("err = %v", err)
	}
	if got != (analysis.Result{}) {
		t.Fatalf("got %+v, want zero result", got)
	}
}

func TestAnalyze_DecodeErrorReleasesFetch(t *testing.T) {
	f := &countingFetcher{path: "ignored"}
	svc := NewService(WithFetcher(f), WithDecoder(failingDecoder{}))

	_, err := svc.Analyze(context.Background(), "x")

	var ferr *Error
	if !errors.As(err, &ferr) || ferr.Stage != StageDecode {
		t.Fatalf("err = %v, want decode stage", err)
	}
	if f.released != 1 {
		t.Fatalf("released %d times, want 1", f.released)
	}
}

func TestAnalyze_WavFile(t *testing.T) {
	const rate = 44100
	mono := clickTrack(120, rate, 12)

	buf := &pcm.Buffer{Channels: 2, SampleRate: rate, Samples: make([]float32, 2*len(mono))}
	for i, v := range mono {
		buf.Samples[2*i] = float32(v)
		buf.Samples[2*i+1] = float32(v)
	}

	path := filepath.Join(t.TempDir(), "clicks.wav")
	if err := wavio.WriteFile(path, buf, 16); err != nil {
		t.Fatal(err)
	}

	f := &countingFetcher{path: path}
	res, err := NewService(WithFetcher(f)).Analyze(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}

	if res.Mode != analysis.ModeFile {
		t.Fatalf("mode = %v", res.Mode)
	}
	if math.Abs(res.BPM-120) > 2 {
		t.Fatalf("bpm = %v", res.BPM)
	}
	if !(res.IntegratedLUFS < 0 && res.IntegratedLUFS > -70) {
		t.Fatalf("lufs = %v", res.IntegratedLUFS)
	}
	for i, g := range res.RecommendedEQ {
		if g < -12 || g > 12 {
			t.Fatalf("eq[%d] = %v", i, g)
		}
	}
	if f.released != 1 {
		t.Fatalf("released %d times", f.released)
	}
}

func TestAnalyzeBuffer_TooShort(t *testing.T) {
	svc := NewService()
	buf := &pcm.Buffer{Channels: 1, SampleRate: 44100, Samples: make([]float32, 100)}
	if _, err := svc.AnalyzeBuffer(context.Background(), buf); err == nil {
		t.Fatal("short buffer accepted")
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &Error{Stage: StageAnalyze, URI: "u", Cause: cause}

	if !errors.Is(err, ErrFileAnalysis) || !errors.Is(err, cause) {
		t.Fatal("Error must unwrap to both ErrFileAnalysis and its cause")
	}
}
