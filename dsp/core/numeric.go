package core

import "math"

const (
	defaultEpsilon = 1e-12

	// SilenceDB is the level reported for digital silence instead of -Inf.
	SilenceDB = -200.0

	softClipDrive = 0.9
)

// Clamp limits value to the inclusive range [min, max].
// NaN collapses to min so that render paths never propagate it.
func Clamp(value, min, max float64) float64 {
	if min > max {
		min, max = max, min
	}

	if value < min || math.IsNaN(value) {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// NearlyEqual reports whether a and b are equal within eps.
func NearlyEqual(a, b, eps float64) bool {
	if eps <= 0 {
		eps = defaultEpsilon
	}

	diff := math.Abs(a - b)
	if diff <= eps {
		return true
	}

	largest := math.Max(math.Abs(a), math.Abs(b))
	if largest == 0 {
		return diff <= eps
	}

	return diff/largest <= eps
}

// FlushDenormals converts tiny denormal-like values to exact zero.
func FlushDenormals(x float64) float64 {
	const epsilon = 1e-30
	if x > -epsilon && x < epsilon {
		return 0
	}

	return x
}

// IsFinite reports whether x is neither NaN nor Inf.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// DBToLinear converts dB to linear amplitude (20*log10 convention).
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// LinearToDB converts linear amplitude to dB (20*log10 convention).
// Zero and negative input report SilenceDB rather than -Inf or NaN.
func LinearToDB(linear float64) float64 {
	if linear <= 0 || math.IsNaN(linear) {
		return SilenceDB
	}

	return math.Max(20*math.Log10(linear), SilenceDB)
}

// LinearPowerToDB converts linear power to dB (10*log10 convention).
// Zero and negative input report SilenceDB.
func LinearPowerToDB(power float64) float64 {
	if power <= 0 || math.IsNaN(power) {
		return SilenceDB
	}

	return math.Max(10*math.Log10(power), SilenceDB)
}

// SoftClip bounds x smoothly with tanh(0.9x)/0.9.
func SoftClip(x float64) float64 {
	return math.Tanh(x*softClipDrive) / softClipDrive
}

// Mean returns the arithmetic mean of values, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}

// Variance returns the population variance of values.
func Variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	m := Mean(values)
	acc := 0.0

	for _, v := range values {
		d := v - m
		acc += d * d
	}

	return acc / float64(len(values))
}
