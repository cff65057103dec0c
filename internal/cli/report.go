package cli

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/cwbudde/algo-hifi/analysis"
	"github.com/cwbudde/algo-hifi/preset"
)

// barCells is the bar length for a full-scale gain.
const barCells = 12

// CurveLabels are the band centre labels of the ten-band equalizer.
var CurveLabels = [preset.Bands]string{"32", "64", "125", "250", "500", "1k", "2k", "4k", "8k", "16k"}

// RenderCurve draws one horizontal bar per band, boosts to the right of the
// axis and cuts to the left.
func RenderCurve(g preset.Gains) string {
	var sb strings.Builder

	for i, v := range g {
		n := int(math.Round(math.Abs(v) / preset.MaxGainDB * barCells))
		n = min(n, barCells)

		left := strings.Repeat(" ", barCells)
		right := ""
		if v < 0 {
			left = strings.Repeat(" ", barCells-n) + cutStyle.Render(strings.Repeat("█", n))
		} else {
			right = boostStyle.Render(strings.Repeat("█", n))
		}

		fmt.Fprintf(&sb, "%5s Hz %s│%s %+5.1f dB\n", CurveLabels[i], left, right, v)
	}

	return sb.String()
}

// PrintResult writes an analysis report.
func PrintResult(w io.Writer, r analysis.Result) {
	PrintTitle(w, fmt.Sprintf("Analysis (%s)", r.Mode))
	PrintKV(w, "Genre", r.Genre)
	if r.Mode == analysis.ModeFile {
		PrintKV(w, "Tempo", fmt.Sprintf("%.1f BPM", r.BPM))
		PrintKV(w, "Integrated", fmt.Sprintf("%.1f LUFS", r.IntegratedLUFS))
	}
	PrintKV(w, "Average loudness", fmt.Sprintf("%.1f dBFS", r.AverageLoudness))
	PrintKV(w, "Dynamic range", fmt.Sprintf("%.1f dB", r.DynamicRange))
	PrintKV(w, "Noise floor", fmt.Sprintf("%.1f dB", r.NoiseFloor))
	PrintKV(w, "Centroid", fmt.Sprintf("%.0f Hz", r.SpectralCentroid))
	PrintKV(w, "Bass/treble/vocal", fmt.Sprintf("%.2f / %.2f / %.2f", r.BassRatio, r.TrebleRatio, r.VocalPresence))
	if r.NeedsDenoising {
		PrintWarning(w, "Noise floor is high; noise reduction recommended.")
	}

	fmt.Fprintln(w)
	PrintTitle(w, "Recommended EQ")
	fmt.Fprint(w, RenderCurve(r.RecommendedEQ))
}

// PrintPresets writes the preset table.
func PrintPresets(w io.Writer, presets []preset.Preset) {
	PrintTitle(w, "Presets")
	for _, p := range presets {
		gains := make([]string, len(p.Gains))
		for i, g := range p.Gains {
			gains[i] = fmt.Sprintf("%+.0f", g)
		}
		PrintKV(w, p.ID, fmt.Sprintf("%-14s %-6s %s", p.Name, p.Category, strings.Join(gains, " ")))
	}
}
