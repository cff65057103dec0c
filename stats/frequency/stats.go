// Package frequency computes spectral shape descriptors from a one-sided
// linear magnitude spectrum. Bin i lies at i*binHz.
package frequency

import "math"

// DefaultRolloff is the energy fraction used by Stats.Rolloff.
const DefaultRolloff = 0.85

// Stats holds frequency-domain statistics computed from a magnitude spectrum.
type Stats struct {
	BinCount int
	Energy   float64 // sum of squared magnitudes
	PeakBin  int
	PeakHz   float64
	Centroid float64 // Hz
	Spread   float64 // Hz
	Flatness float64 // Wiener entropy, 0..1
	Rolloff  float64 // Hz below which 85% of the energy lies
}

// Calculate computes all descriptors from a magnitude spectrum (linear
// scale, NOT dB).
func Calculate(magnitude []float64, binHz float64) Stats {
	s := Stats{BinCount: len(magnitude)}
	if len(magnitude) < 2 {
		return s
	}

	sum := 0.0
	peak := magnitude[0]
	for i, v := range magnitude {
		sum += v
		s.Energy += v * v
		if v > peak {
			peak = v
			s.PeakBin = i
		}
	}

	s.PeakHz = float64(s.PeakBin) * binHz
	s.Centroid = centroid(magnitude, binHz, sum)
	s.Spread = spread(magnitude, binHz, s.Centroid, sum)
	s.Flatness = Flatness(magnitude)
	s.Rolloff = rolloff(magnitude, binHz, DefaultRolloff, s.Energy)

	return s
}

// Centroid returns the spectral centroid in Hz.
//
//	centroid = sum(f_i * |X_i|) / sum(|X_i|)
func Centroid(magnitude []float64, binHz float64) float64 {
	sum := 0.0
	for _, v := range magnitude {
		sum += v
	}
	return centroid(magnitude, binHz, sum)
}

func centroid(magnitude []float64, binHz, sumMag float64) float64 {
	if len(magnitude) < 2 || sumMag == 0 {
		return 0
	}
	weighted := 0.0
	for i, v := range magnitude {
		weighted += float64(i) * binHz * v
	}
	return weighted / sumMag
}

func spread(magnitude []float64, binHz, cent, sumMag float64) float64 {
	if sumMag == 0 {
		return 0
	}
	acc := 0.0
	for i, v := range magnitude {
		d := float64(i)*binHz - cent
		acc += d * d * v
	}
	return math.Sqrt(acc / sumMag)
}

// Flatness returns the spectral flatness (Wiener entropy) in the range 0..1.
//
// Flatness = exp(mean(log(|X_i|))) / mean(|X_i|)
//
// The DC bin is excluded. Zero bins are floored at 1e-12 so a sparse
// spectrum reads as tonal rather than undefined.
func Flatness(magnitude []float64) float64 {
	if len(magnitude) < 2 {
		return 0
	}

	const floor = 1e-12
	raw, sumLin, sumLog := 0.0, 0.0, 0.0
	for _, v := range magnitude[1:] {
		raw += v
		v = math.Max(v, floor)
		sumLin += v
		sumLog += math.Log(v)
	}

	n := float64(len(magnitude) - 1)
	if raw <= floor*n {
		return 0
	}
	meanLin := sumLin / n

	return math.Exp(sumLog/n) / meanLin
}

// Rolloff returns the frequency below which the given fraction (0..1) of
// spectral energy lies.
func Rolloff(magnitude []float64, binHz, fraction float64) float64 {
	energy := 0.0
	for _, v := range magnitude {
		energy += v * v
	}
	return rolloff(magnitude, binHz, fraction, energy)
}

func rolloff(magnitude []float64, binHz, fraction, total float64) float64 {
	if len(magnitude) < 2 || total == 0 {
		return 0
	}
	threshold := fraction * total
	cum := 0.0
	for i, v := range magnitude {
		cum += v * v
		if cum >= threshold {
			return float64(i) * binHz
		}
	}
	return float64(len(magnitude)-1) * binHz
}

// BandEnergy returns the mean squared magnitude of bins in [lowHz, highHz).
// Returns 0 when the band holds no bins.
func BandEnergy(magnitude []float64, binHz, lowHz, highHz float64) float64 {
	if binHz <= 0 || highHz <= lowHz {
		return 0
	}

	lo := int(math.Ceil(lowHz / binHz))
	hi := int(math.Ceil(highHz / binHz))
	lo = max(lo, 0)
	hi = min(hi, len(magnitude))
	if hi <= lo {
		return 0
	}

	acc := 0.0
	for _, v := range magnitude[lo:hi] {
		acc += v * v
	}
	return acc / float64(hi-lo)
}

// Cutoff returns the highest frequency whose magnitude is within floorDB of
// the spectral peak. Lossy encodes show a sharp cutoff well below Nyquist.
func Cutoff(magnitude []float64, binHz, floorDB float64) float64 {
	peak := 0.0
	for _, v := range magnitude {
		peak = math.Max(peak, v)
	}
	if peak == 0 {
		return 0
	}

	threshold := peak * math.Pow(10, floorDB/20)
	for i := len(magnitude) - 1; i >= 0; i-- {
		if magnitude[i] >= threshold {
			return float64(i) * binHz
		}
	}
	return 0
}
