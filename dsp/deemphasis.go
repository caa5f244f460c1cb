package dsp

import "math"

// Deemphasizer applies a single-pole IIR lowpass compensating for
// broadcaster pre-emphasis: y = (1-alpha)*x + alpha*y, alpha =
// exp(-1e6/(tc*rate)), tc in microseconds (50us for most of the world, 75us
// in the Americas and South Korea).
type Deemphasizer struct {
	mult float64
	val  float64
}

// NewDeemphasizer builds a de-emphasis filter for the given sample rate
// and time constant in microseconds.
func NewDeemphasizer(sampleRate int, timeConstantUs float64) *Deemphasizer {
	return &Deemphasizer{mult: math.Exp(-1e6 / (timeConstantUs * float64(sampleRate)))}
}

// InPlace de-emphasizes samples in place.
func (d *Deemphasizer) InPlace(samples []float32) {
	for i, x := range samples {
		d.val = (1-d.mult)*float64(x) + d.mult*d.val
		samples[i] = float32(d.val)
	}
}
