package offline

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-hifi/analysis"
	"github.com/cwbudde/algo-hifi/audio/pcm"
	"github.com/cwbudde/algo-hifi/dsp/core"
	"github.com/cwbudde/algo-hifi/dsp/spectrum"
	"github.com/cwbudde/algo-hifi/dsp/window"
	"github.com/cwbudde/algo-hifi/measure/loudness"
	"github.com/cwbudde/algo-hifi/stats/frequency"
	timestats "github.com/cwbudde/algo-hifi/stats/time"
)

var errTooShort = errors.New("offline: signal shorter than one analysis frame")

const (
	timbreFrame = 2048

	onsetHop = 512
	minBPM   = 60.0
	maxBPM   = 200.0

	// Perceptual prior around 120 BPM against octave errors.
	bpmPrior      = 120.0
	bpmPriorWidth = 40.0
	octaveMargin  = 0.7

	cutoffFloorDB = -60.0
)

// Timbre describes the long-term average spectrum.
type Timbre struct {
	Bands      [analysis.NumBands]float64
	NoiseFloor float64
	Centroid   float64
	Flatness   float64
	Rolloff    float64
	CutoffHz   float64
}

// Quality describes level and encoding artefacts.
type Quality struct {
	PeakDB        float64
	RMSDB         float64
	CrestFactorDB float64
	ClipRatio     float64
}

// Loudness is the BS.1770 measurement.
type Loudness struct {
	IntegratedLUFS float64
	RangeLU        float64
}

// EstimateBPM returns the dominant tempo in [60, 200] BPM from the
// autocorrelation of a half-wave rectified energy-flux envelope. It
// returns 0 when the signal is too short for two beats at 60 BPM.
func EstimateBPM(mono []float64, sampleRate float64) float64 {
	env := timestats.Envelope(mono, onsetHop)
	if len(env) < 3 {
		return 0
	}

	onset := make([]float64, len(env)-1)
	for i := range onset {
		onset[i] = math.Max(0, env[i+1]-env[i])
	}

	framesPerMin := 60 * sampleRate / onsetHop
	minLag := int(math.Floor(framesPerMin / maxBPM))
	maxLag := int(math.Ceil(framesPerMin / minBPM))
	if maxLag+1 >= len(onset) {
		return 0
	}
	minLag = max(minLag, 1)

	corr := make([]float64, maxLag+2)
	for lag := max(minLag-1, 1); lag <= maxLag+1; lag++ {
		corr[lag] = onsetCorrelation(onset, lag)
	}

	// Onsets of a non-integer period land on two neighbouring lags.
	spread := func(lag int) float64 {
		return corr[lag] + math.Max(corr[lag-1], corr[lag+1])
	}

	best, bestScore := 0, 0.0
	for lag := max(minLag, 2); lag <= maxLag; lag++ {
		bpm := framesPerMin / float64(lag)
		if bpm < minBPM || bpm > maxBPM {
			continue
		}
		prior := math.Exp(-0.5 * math.Pow((bpm-bpmPrior)/bpmPriorWidth, 2))
		if s := spread(lag) * (0.8 + 0.2*prior); s > bestScore {
			best, bestScore = lag, s
		}
	}

	if best == 0 {
		return 0
	}

	// A peak at twice the beat period also matches every other beat. Step
	// up an octave while the half lag still carries most of the energy.
	for {
		half, halfScore := 0, 0.0
		for lag := best/2 - 1; lag <= (best+1)/2+1; lag++ {
			if lag < max(minLag, 2) || lag >= best || framesPerMin/float64(lag) > maxBPM {
				continue
			}
			if s := spread(lag); s > halfScore {
				half, halfScore = lag, s
			}
		}
		if half == 0 || halfScore < octaveMargin*spread(best) {
			break
		}
		best = half
	}
	if best+1 <= maxLag && corr[best+1] > corr[best] {
		best++
	} else if best-1 >= max(minLag, 2) && corr[best-1] > corr[best] {
		best--
	}

	// Parabolic refinement of the peak position.
	lag := float64(best)
	if best > 1 {
		y0, y1, y2 := corr[best-1], corr[best], corr[best+1]
		if d := y0 - 2*y1 + y2; d < 0 {
			lag += 0.5 * (y0 - y2) / d
		}
	}

	return core.Clamp(framesPerMin/lag, minBPM, maxBPM)
}

func onsetCorrelation(onset []float64, lag int) float64 {
	acc := 0.0
	for i := 0; i+lag < len(onset); i++ {
		acc += onset[i] * onset[i+lag]
	}
	return acc / float64(len(onset)-lag)
}

// EstimateLoudness meters the whole buffer.
func EstimateLoudness(b *pcm.Buffer) Loudness {
	m := loudness.NewMeter(loudness.WithSampleRate(b.SampleRate), loudness.WithChannels(b.Channels))
	m.ProcessInterleaved(b.Float64())

	return Loudness{IntegratedLUFS: m.Integrated(), RangeLU: m.LoudnessRange()}
}

// EstimateTimbre averages the magnitude spectrum over non-overlapping
// frames and derives banded energies and shape descriptors from it.
func EstimateTimbre(mono []float64, sampleRate float64) (Timbre, error) {
	frames := len(mono) / timbreFrame
	if frames == 0 {
		return Timbre{}, errTooShort
	}

	tr, err := spectrum.NewTransformer(timbreFrame, window.TypeHann)
	if err != nil {
		return Timbre{}, fmt.Errorf("offline: %w", err)
	}

	binHz := tr.BinHz(sampleRate)
	avg := make([]float64, tr.Bins())

	var edges [analysis.NumBands][2]float64
	for i, fc := range analysis.BandCenters {
		edges[i] = [2]float64{fc / math.Sqrt2, math.Min(fc*math.Sqrt2, sampleRate/2)}
	}

	var minBands [analysis.NumBands]float64
	for i := range minBands {
		minBands[i] = math.Inf(1)
	}

	for f := 0; f < frames; f++ {
		mag, err := tr.Magnitude(mono[f*timbreFrame : (f+1)*timbreFrame])
		if err != nil {
			return Timbre{}, fmt.Errorf("offline: %w", err)
		}

		for k, v := range mag {
			avg[k] += v
		}

		for i, e := range edges {
			db := core.LinearPowerToDB(frequency.BandEnergy(mag, binHz, e[0], e[1]))
			minBands[i] = math.Min(minBands[i], db)
		}
	}

	for k := range avg {
		avg[k] /= float64(frames)
	}

	st := frequency.Calculate(avg, binHz)
	t := Timbre{
		NoiseFloor: core.Mean(minBands[:]),
		Centroid:   st.Centroid,
		Flatness:   st.Flatness,
		Rolloff:    st.Rolloff,
		CutoffHz:   frequency.Cutoff(avg, binHz, cutoffFloorDB),
	}

	for i, e := range edges {
		t.Bands[i] = core.LinearPowerToDB(frequency.BandEnergy(avg, binHz, e[0], e[1]))
	}

	return t, nil
}

// EstimateQuality reports peak, RMS, crest factor and clipping.
func EstimateQuality(mono []float64) Quality {
	st := timestats.Calculate(mono)

	q := Quality{
		PeakDB:    st.PeakDB(),
		RMSDB:     st.RMSDB(),
		ClipRatio: st.ClipRatio,
	}
	if st.RMS > 0 {
		q.CrestFactorDB = st.CrestFactorDB()
	}

	return q
}
