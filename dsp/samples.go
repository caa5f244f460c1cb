// Package dsp implements the real-time demodulation primitives shared by
// every modulation scheme: FIR filtering, polyphase downsampling, the FM/AM
// discriminators, stereo pilot recovery and de-emphasis.
package dsp

// Mono is an ordered sequence of real samples carrying its own rate.
type Mono struct {
	Samples []float32
	Rate    int
}

// Stereo is two equal-length mono channels sharing a rate.
type Stereo struct {
	Left, Right []float32
	Rate        int
}

// IQ is a deinterlaced complex-baseband stream: two equal-length ordered
// sequences of in-phase/quadrature samples in roughly [-1, 1].
type IQ struct {
	I, Q []float32
	Rate int
}

// Len returns the number of IQ sample pairs.
func (s IQ) Len() int { return len(s.I) }
