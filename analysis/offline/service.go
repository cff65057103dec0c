// Package offline is the higher-fidelity file analysis path. It fetches a
// bounded excerpt, decodes it, runs tempo, loudness, timbre and quality
// estimators and scores the genre with a weighted feature matrix. Failures
// fall back to the realtime analyzer's snapshot.
package offline

import (
	"context"
	"errors"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-hifi/analysis"
	"github.com/cwbudde/algo-hifi/audio/pcm"
	"github.com/cwbudde/algo-hifi/audio/wavio"
	"github.com/cwbudde/algo-hifi/internal/logging"
	"github.com/cwbudde/algo-hifi/preset"
)

// DefaultMaxDuration bounds how much audio is decoded per file.
const DefaultMaxDuration = 60 * time.Second

// Decoder turns a local file into PCM. Implementations must honour ctx.
type Decoder interface {
	Decode(ctx context.Context, path string) (*pcm.Buffer, error)
}

// Snapshotter exposes the realtime analyzer's latest result.
type Snapshotter interface {
	Result() (analysis.Result, bool)
}

// Service runs file analysis with realtime fallback.
type Service struct {
	fetcher  Fetcher
	decoder  Decoder
	realtime Snapshotter
	presets  *preset.Table
	logger   *logging.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithFetcher replaces the default http/local fetcher.
func WithFetcher(f Fetcher) Option { return func(s *Service) { s.fetcher = f } }

// WithDecoder replaces the default WAV decoder.
func WithDecoder(d Decoder) Option { return func(s *Service) { s.decoder = d } }

// WithRealtime sets the fallback snapshot source.
func WithRealtime(r Snapshotter) Option { return func(s *Service) { s.realtime = r } }

// WithPresets selects the genre curve table.
func WithPresets(t *preset.Table) Option { return func(s *Service) { s.presets = t } }

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option { return func(s *Service) { s.logger = l } }

// NewService returns a service with default collaborators.
func NewService(opts ...Option) *Service {
	s := &Service{}
	for _, opt := range opts {
		opt(s)
	}

	s.logger = logging.OrNop(s.logger).Named("offline")
	if s.fetcher == nil {
		s.fetcher = RouteFetcher{Remote: NewHTTPFetcher(s.logger), Local: LocalFetcher{}}
	}
	if s.decoder == nil {
		s.decoder = wavio.Decoder{MaxDuration: DefaultMaxDuration}
	}
	if s.presets == nil {
		s.presets = preset.Default()
	}

	return s
}

// Analyze runs file mode on uri. On failure it logs, returns the realtime
// snapshot when one exists and an *Error wrapping ErrFileAnalysis.
func (s *Service) Analyze(ctx context.Context, uri string) (analysis.Result, error) {
	res, err := s.analyzeFile(ctx, uri)
	if err == nil {
		return res, nil
	}

	log := s.logger.With(zap.String("uri", uri))
	var ferr *Error
	if errors.As(err, &ferr) {
		log = log.With(zap.String("stage", ferr.Stage))
	}

	if s.realtime != nil {
		if rt, ok := s.realtime.Result(); ok {
			log.Warn("file analysis failed, using realtime result", zap.Error(err))
			return rt, err
		}
	}

	log.Error("file analysis failed, no realtime result", zap.Error(err))
	return analysis.Result{}, err
}

func (s *Service) analyzeFile(ctx context.Context, uri string) (res analysis.Result, err error) {
	path, release, err := s.fetcher.Fetch(ctx, uri)
	if err != nil {
		return res, &Error{Stage: StageFetch, URI: uri, Cause: err}
	}
	defer func() {
		if rerr := release(); rerr != nil {
			s.logger.Warn("release fetched file", zap.String("path", path), zap.Error(rerr))
			if err == nil {
				err = &Error{Stage: StageFetch, URI: uri, Cause: rerr}
			} else {
				err = multierr.Append(err, rerr)
			}
		}
	}()

	buf, err := s.decoder.Decode(ctx, path)
	if err != nil {
		return res, &Error{Stage: StageDecode, URI: uri, Cause: err}
	}

	res, err = s.AnalyzeBuffer(ctx, buf)
	if err != nil {
		return res, &Error{Stage: StageAnalyze, URI: uri, Cause: err}
	}

	return res, nil
}

// AnalyzeBuffer runs every estimator on decoded audio.
func (s *Service) AnalyzeBuffer(ctx context.Context, buf *pcm.Buffer) (analysis.Result, error) {
	if err := buf.Validate(); err != nil {
		return analysis.Result{}, err
	}

	mono := buf.Mono()

	timbre, err := EstimateTimbre(mono, buf.SampleRate)
	if err != nil {
		return analysis.Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return analysis.Result{}, err
	}

	bpm := EstimateBPM(mono, buf.SampleRate)
	loud := EstimateLoudness(buf)
	quality := EstimateQuality(mono)

	f := analysis.Derive(timbre.Bands, loud.RangeLU)
	genre, score := ClassifyProfile(Profile{
		BPM:           bpm,
		Centroid:      timbre.Centroid,
		BassRatio:     f.BassRatio,
		VocalPresence: f.VocalPresence,
		Flatness:      timbre.Flatness,
		CrestFactorDB: quality.CrestFactorDB,
		RangeLU:       loud.RangeLU,
	})

	s.logger.Debug("file analysis",
		zap.String("genre", genre.String()),
		zap.Float64("score", score),
		zap.Float64("bpm", bpm),
		zap.Float64("lufs", loud.IntegratedLUFS),
		zap.Float64("cutoffHz", timbre.CutoffHz),
		zap.Float64("clipRatio", quality.ClipRatio),
	)

	return analysis.Result{
		SpectrumEnergy:   timbre.Bands,
		Genre:            genre,
		RecommendedEQ:    analysis.Recommend(s.presets, genre, timbre.Bands),
		DynamicRange:     loud.RangeLU,
		AverageLoudness:  quality.RMSDB,
		NoiseFloor:       timbre.NoiseFloor,
		NeedsDenoising:   timbre.NoiseFloor > analysis.DenoiseThresholdDB,
		BassRatio:        f.BassRatio,
		TrebleRatio:      f.TrebleRatio,
		VocalPresence:    f.VocalPresence,
		SpectralCentroid: timbre.Centroid,
		Mode:             analysis.ModeFile,
		BPM:              bpm,
		IntegratedLUFS:   loud.IntegratedLUFS,
	}, nil
}
