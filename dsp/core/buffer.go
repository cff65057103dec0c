package core

// EnsureLen returns a slice with the requested length, reusing buf capacity if possible.
func EnsureLen(buf []float64, n int) []float64 {
	if n <= 0 {
		return buf[:0]
	}
	if cap(buf) >= n {
		return buf[:n]
	}
	return make([]float64, n)
}

// Zero sets all values in buf to 0.
func Zero(buf []float64) {
	for i := range buf {
		buf[i] = 0
	}
}

// Frames returns the number of whole frames held by an interleaved buffer,
// bounded by the frame count the caller declared. Channel counts outside
// [1, 2] yield 0 so callers treat the buffer as a no-op.
func Frames(buf []float32, frames, channels int) int {
	if channels < 1 || channels > 2 || frames <= 0 {
		return 0
	}

	if avail := len(buf) / channels; frames > avail {
		frames = avail
	}

	return frames
}

// MonoSample returns the average of the channels of frame i.
func MonoSample(buf []float32, i, channels int) float64 {
	if channels == 1 {
		return float64(buf[i])
	}

	return 0.5 * (float64(buf[2*i]) + float64(buf[2*i+1]))
}
