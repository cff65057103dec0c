package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cwbudde/algo-hifi/analysis"
	"github.com/cwbudde/algo-hifi/preset"
)

func TestRenderCurve(t *testing.T) {
	out := RenderCurve(preset.Gains{12, -12, 0, 3})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != preset.Bands {
		t.Fatalf("%d lines, want %d", len(lines), preset.Bands)
	}

	if !strings.Contains(lines[0], strings.Repeat("█", barCells)) || !strings.Contains(lines[0], "+12.0 dB") {
		t.Fatalf("full boost line = %q", lines[0])
	}
	if !strings.Contains(lines[1], "-12.0 dB") {
		t.Fatalf("full cut line = %q", lines[1])
	}
	if strings.Contains(lines[2], "█") {
		t.Fatalf("flat band drew a bar: %q", lines[2])
	}
	if !strings.HasPrefix(strings.TrimSpace(lines[9]), "16k Hz") {
		t.Fatalf("last label = %q", lines[9])
	}
}

func TestPrintResult(t *testing.T) {
	var buf bytes.Buffer
	PrintResult(&buf, analysis.Result{
		Genre:          analysis.GenreJazz,
		Mode:           analysis.ModeFile,
		BPM:            118.4,
		NeedsDenoising: true,
	})

	out := buf.String()
	for _, want := range []string{"Analysis (file)", "jazz", "118.4 BPM", "noise reduction recommended", "Recommended EQ"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestPrintPresets(t *testing.T) {
	var buf bytes.Buffer
	PrintPresets(&buf, preset.Default().All())

	for _, id := range []string{"flat", "rock", "bass_boost"} {
		if !strings.Contains(buf.String(), id) {
			t.Errorf("preset list missing %q", id)
		}
	}
}
