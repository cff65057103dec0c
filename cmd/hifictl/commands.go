package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cwbudde/algo-hifi/analysis/offline"
	"github.com/cwbudde/algo-hifi/audio/wavio"
	"github.com/cwbudde/algo-hifi/dsp/denoise"
	"github.com/cwbudde/algo-hifi/dsp/dither"
	"github.com/cwbudde/algo-hifi/dsp/effectchain"
	"github.com/cwbudde/algo-hifi/dsp/hifi"
	"github.com/cwbudde/algo-hifi/internal/cli"
	"github.com/cwbudde/algo-hifi/pipeline"
	"github.com/cwbudde/algo-hifi/preset"
	"github.com/cwbudde/algo-hifi/safety"
	"github.com/cwbudde/algo-hifi/store"
)

const renderBlock = 1024

// AnalyzeCmd runs file-mode analysis.
type AnalyzeCmd struct {
	URI         string        `arg:"" name:"uri" help:"WAV path, file:// or http(s) URL."`
	Timeout     time.Duration `default:"30s" help:"Download timeout."`
	MaxDuration time.Duration `default:"60s" help:"Longest stretch of audio to analyze."`
	JSON        bool          `help:"Print the result as JSON."`
}

func (c *AnalyzeCmd) Run(g *Globals) error {
	fetcher := offline.NewHTTPFetcher(g.logger)
	fetcher.Timeout = c.Timeout

	svc := offline.NewService(
		offline.WithFetcher(offline.RouteFetcher{Remote: fetcher, Local: offline.LocalFetcher{}}),
		offline.WithDecoder(wavio.Decoder{MaxDuration: c.MaxDuration}),
		offline.WithLogger(g.logger),
	)

	res, err := svc.Analyze(context.Background(), c.URI)
	if err != nil {
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	cli.PrintResult(os.Stdout, res)
	return nil
}

// ProcessCmd renders a WAV file through the pipeline.
type ProcessCmd struct {
	In  string `arg:"" name:"in" type:"existingfile" help:"Input WAV file."`
	Out string `arg:"" name:"out" help:"Output WAV file."`

	Preset   string    `help:"Preset id to apply."`
	Gains    []float64 `sep:"," help:"Ten comma-separated band gains in dB; overrides --preset."`
	NoEQ     bool      `name:"no-eq" help:"Disable the equalizer."`
	Denoise  string    `enum:"off,light,moderate,strong,adaptive" default:"off" help:"Noise reduction mode."`
	Width    float64   `help:"Stereo widening amount in [0,1]."`
	Reverb   float64   `help:"Reverb mix in [0,1]."`
	Cross    float64   `name:"crossfeed" help:"Crossfeed level in [0,1]."`
	Bass     float64   `help:"HiFi bass enhancement in dB."`
	Dynamics bool      `help:"Enable dynamic range compression."`
	Loudness bool      `help:"Enable loudness normalization."`
	Tone     []float64 `sep:"," help:"Bass and treble tone controls in dB, e.g. 3,-2."`
	Smart    bool      `help:"Apply recommended curves while rendering."`
	Settings string    `type:"path" help:"JSON settings file to load and update."`
	BitDepth int       `default:"16" enum:"16,24,32" help:"Output bit depth."`
	Dither   string    `default:"triangular" enum:"none,rectangular,triangular" help:"Output dither."`
	Shaping  bool      `help:"Noise-shape the output dither."`
}

func (c *ProcessCmd) Run(g *Globals) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	buf, err := wavio.Decoder{}.Decode(ctx, c.In)
	if err != nil {
		return err
	}

	chain, err := effectchain.New(buf.SampleRate)
	if err != nil {
		return err
	}

	orch, err := pipeline.New(pipeline.WithChain(chain), pipeline.WithLogger(g.logger))
	if err != nil {
		return err
	}

	kv, err := c.openStore()
	if err != nil {
		return err
	}

	mgr, err := safety.New(orch.Bank(),
		safety.WithChain(chain),
		safety.WithEnhancer(orch.HiFi()),
		safety.WithDenoiser(orch.Denoiser()),
		safety.WithAnalysis(orch.Analyzer()),
		safety.WithSmartSwitch(orch),
		safety.WithStore(kv),
		safety.WithLogger(g.logger),
	)
	if err != nil {
		return err
	}
	if err := mgr.Load(); err != nil {
		g.logger.Warn("settings partially restored", zap.Error(err))
	}

	if err := c.configure(mgr); err != nil {
		return err
	}

	proc, err := orch.Attach(buf.SampleRate, buf.Channels)
	if err != nil {
		return err
	}

	smartDone := make(chan error, 1)
	go func() { smartDone <- mgr.RunSmartMode(ctx, orch.SmartUpdates()) }()

	frames := buf.Frames()
	for off := 0; off < frames; off += renderBlock {
		n := min(renderBlock, frames-off)
		proc.Process(buf.Samples[off*buf.Channels:(off+n)*buf.Channels], n, buf.Channels)
	}

	cancel()
	if err := <-smartDone; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	dt, err := dither.ParseType(c.Dither)
	if err != nil {
		return err
	}
	if err := wavio.WriteFile(c.Out, buf, c.BitDepth, dither.WithType(dt), dither.WithShaping(c.Shaping)); err != nil {
		return err
	}

	cli.PrintTitle(os.Stdout, "Rendered "+c.Out)
	st := mgr.State()
	cli.PrintKV(os.Stdout, "Duration", buf.Duration().Round(time.Millisecond))
	cli.PrintKV(os.Stdout, "Preset", mgr.Settings().PresetID)
	cli.PrintKV(os.Stdout, "Pre-amp", fmt.Sprintf("%.2f dB", st.PreampDB))
	cli.PrintKV(os.Stdout, "Limiter", st.LimiterEnabled)
	fmt.Println()

	if res, ok := mgr.AnalysisResult(); ok {
		cli.PrintResult(os.Stdout, res)
	}

	return nil
}

func (c *ProcessCmd) openStore() (safety.Store, error) {
	if c.Settings == "" {
		return store.NewMemory(), nil
	}
	return store.OpenFile(c.Settings)
}

func (c *ProcessCmd) configure(mgr *safety.Manager) error {
	mgr.SetEnabled(!c.NoEQ)

	switch {
	case len(c.Gains) > 0:
		if len(c.Gains) != preset.Bands {
			return fmt.Errorf("--gains needs %d values, got %d", preset.Bands, len(c.Gains))
		}
		var g preset.Gains
		copy(g[:], c.Gains)
		mgr.ApplyPreset("custom", g)
	case c.Preset != "":
		if err := mgr.ApplyNamedPreset(c.Preset); err != nil {
			return err
		}
	}

	if len(c.Tone) > 0 {
		if len(c.Tone) != 2 {
			return fmt.Errorf("--tone needs bass,treble")
		}
		mgr.SetToneControls(c.Tone[0], c.Tone[1])
	}

	mode, err := denoise.ParseMode(c.Denoise)
	if err != nil {
		return err
	}
	mgr.SetNoiseReductionMode(mode)

	cfg := hifi.DefaultConfig()
	cfg.SpatialWidth = c.Width
	cfg.ReverbMix = c.Reverb
	cfg.CrossfeedLevel = c.Cross
	cfg.BassGainDB = c.Bass
	cfg.DynamicRangeEnabled = c.Dynamics
	cfg.LoudnessNormEnabled = c.Loudness
	mgr.SetEffectConfig(cfg)

	mgr.SetSmartMode(c.Smart)

	return nil
}

// PresetsCmd lists presets.
type PresetsCmd struct {
	JSON bool `help:"Print the table as JSON."`
}

func (c *PresetsCmd) Run(*Globals) error {
	all := preset.Default().All()
	if c.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(all)
	}

	cli.PrintPresets(os.Stdout, all)
	return nil
}

// CurveCmd draws one curve.
type CurveCmd struct {
	Preset string `xor:"curve" help:"Preset id."`
	Genre  string `xor:"curve" help:"Genre id for the recommendation base curve."`
}

func (c *CurveCmd) Run(*Globals) error {
	table := preset.Default()

	var (
		title string
		gains preset.Gains
	)

	switch {
	case c.Genre != "":
		g, ok := table.GenreCurve(c.Genre)
		if !ok {
			return fmt.Errorf("unknown genre %q", c.Genre)
		}
		title, gains = "Genre "+c.Genre, g
	default:
		id := c.Preset
		if id == "" {
			id = preset.FlatID
		}
		p, err := table.Get(id)
		if err != nil {
			return err
		}
		title, gains = p.Name, p.Gains
	}

	cli.PrintTitle(os.Stdout, title)
	fmt.Print(cli.RenderCurve(gains))

	st := safety.Compute(gains, 0, 0)
	cli.PrintKV(os.Stdout, "Pre-amp", fmt.Sprintf("%.2f dB", st.PreampDB))
	cli.PrintKV(os.Stdout, "Limiter", st.LimiterEnabled)

	return nil
}
