package biquad

// Coefficients holds the transfer function coefficients for a single
// second-order section (biquad). a0 is normalized to 1 and not stored.
//
// The sign convention follows Direct Form II Transposed:
//
//	y  = B0*x + z1
//	z1 = B1*x - A1*y + z2
//	z2 = B2*x - A2*y
type Coefficients struct {
	B0, B1, B2 float64 // feedforward (numerator)
	A1, A2     float64 // feedback (denominator)
}

// Identity returns the exact pass-through section (B0=1, all else 0).
func Identity() Coefficients {
	return Coefficients{B0: 1}
}

// IsIdentity reports whether c passes input through unchanged.
func (c Coefficients) IsIdentity() bool {
	return c == Identity()
}

// State is the two-sample delay memory of one channel.
type State struct {
	Z1, Z2 float64
}

// Reset clears the delay memory.
func (s *State) Reset() {
	s.Z1 = 0
	s.Z2 = 0
}

// Process filters one input sample through c using and updating st.
func (c *Coefficients) Process(x float64, st *State) float64 {
	y := c.B0*x + st.Z1
	st.Z1 = c.B1*x - c.A1*y + st.Z2
	st.Z2 = c.B2*x - c.A2*y

	return y
}

// ProcessInterleaved filters channel ch of an interleaved float32 buffer in
// place. Zero-alloc.
func (c *Coefficients) ProcessInterleaved(buf []float32, frames, channels, ch int, st *State) {
	b0, b1, b2 := c.B0, c.B1, c.B2
	a1, a2 := c.A1, c.A2
	z1, z2 := st.Z1, st.Z2

	for i := ch; i < frames*channels; i += channels {
		x := float64(buf[i])
		y := b0*x + z1
		z1 = b1*x - a1*y + z2
		z2 = b2*x - a2*y
		buf[i] = float32(y)
	}

	st.Z1, st.Z2 = flushDenormal(z1), flushDenormal(z2)
}

// Section is a single biquad filter with coefficients and internal state.
// It implements Direct Form II Transposed processing.
type Section struct {
	Coefficients

	state State
}

// NewSection returns a Section initialized with the given coefficients
// and zero state.
func NewSection(c Coefficients) *Section {
	return &Section{Coefficients: c}
}

// ProcessSample filters one input sample and returns the output.
func (s *Section) ProcessSample(x float64) float64 {
	return s.Coefficients.Process(x, &s.state)
}

// ProcessBlock filters a block of samples in-place. Zero-alloc.
func (s *Section) ProcessBlock(buf []float64) {
	for i, x := range buf {
		buf[i] = s.Coefficients.Process(x, &s.state)
	}
}

// Reset clears the delay line to zero.
func (s *Section) Reset() {
	s.state.Reset()
}

// State returns the current delay-line state.
func (s *Section) State() State {
	return s.state
}

func flushDenormal(x float64) float64 {
	const epsilon = 1e-30
	if x > -epsilon && x < epsilon {
		return 0
	}

	return x
}
