// Command hifictl runs the playback enhancement pipeline offline.
//
// Usage:
//
//	hifictl analyze <file|url>
//	hifictl process [flags] <in.wav> <out.wav>
//	hifictl presets
//	hifictl curve --preset rock
//
// Examples:
//
//	hifictl analyze track.wav
//	hifictl analyze --json https://example.com/track.wav
//	hifictl process --preset rock --width 0.3 in.wav out.wav
//	hifictl process --gains 3,2,1,0,0,0,0,1,2,3 --denoise moderate in.wav out.wav
package main

import (
	"os"

	"github.com/alecthomas/kong"

	"github.com/cwbudde/algo-hifi/internal/cli"
	"github.com/cwbudde/algo-hifi/internal/logging"
)

var version = "0.1.0"

// Globals are flags shared by every command.
type Globals struct {
	Debug   bool             `help:"Log at debug level to stderr."`
	Version kong.VersionFlag `short:"v" help:"Show version information."`

	logger *logging.Logger
}

// CLI is the command tree.
type CLI struct {
	Globals

	Analyze AnalyzeCmd `cmd:"" help:"Analyze a WAV file or URL and recommend an EQ curve."`
	Process ProcessCmd `cmd:"" help:"Run a WAV file through the enhancement pipeline."`
	Presets PresetsCmd `cmd:"" help:"List the built-in presets."`
	Curve   CurveCmd   `cmd:"" help:"Draw a preset or genre curve."`
}

func main() {
	var c CLI
	ctx := kong.Parse(&c,
		kong.Name("hifictl"),
		kong.Description("Playback enhancement pipeline: analysis, EQ, noise reduction, HiFi effects."),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)

	c.logger = logging.Nop()
	if c.Debug {
		logger, err := logging.New(true)
		if err != nil {
			cli.PrintError(os.Stderr, err.Error())
			os.Exit(1)
		}
		c.logger = logger
		defer func() { _ = logger.Sync() }()
	}

	if err := ctx.Run(&c.Globals); err != nil {
		cli.PrintError(os.Stderr, err.Error())
		os.Exit(1)
	}
}
