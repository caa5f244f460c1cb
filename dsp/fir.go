package dsp

import "math"

// LowpassFIRCoeffs computes windowed-sinc lowpass coefficients normalized
// to unity DC gain. length is forced to the next odd number. The window is
// a Blackman-Harris-like function: 0.42 - 0.5*cos(theta) + 0.08*cos(2*theta).
func LowpassFIRCoeffs(sampleRate int, halfAmplFreq float64, length int) []float64 {
	length += (length + 1) % 2
	freq := halfAmplFreq / float64(sampleRate)
	center := length / 2
	coefs := make([]float64, length)
	var sum float64
	for i := 0; i < length; i++ {
		var val float64
		if i == center {
			val = 2 * math.Pi * freq
		} else {
			angle := 2 * math.Pi * float64(i+1) / float64(length+1)
			val = math.Sin(2*math.Pi*freq*float64(i-center)) / float64(i-center)
			val *= 0.42 - 0.5*math.Cos(angle) + 0.08*math.Cos(2*angle)
		}
		sum += val
		coefs[i] = val
	}
	for i := range coefs {
		coefs[i] /= sum
	}
	return coefs
}

// HilbertFIR returns an odd-tap windowed-sinc Hilbert transformer: a
// lowpass kernel with every even-indexed coefficient (relative to the
// center tap) zeroed and the sign of every other odd tap flipped, giving
// the alternating-signed, odd-index-only response a 90-degree phase
// shifter needs.
func HilbertFIR(sampleRate int, halfAmplFreq float64, length int) []float64 {
	coefs := LowpassFIRCoeffs(sampleRate, halfAmplFreq, length)
	center := len(coefs) / 2
	for i := range coefs {
		offset := i - center
		if offset%2 == 0 {
			coefs[i] = 0
			continue
		}
		if (offset/2)%2 != 0 {
			coefs[i] = -coefs[i]
		}
	}
	return coefs
}

// FIRFilter applies a finite-impulse-response filter to consecutive blocks
// of samples. It owns a history ring of length (len(coef)-1)*step; the
// coefficients are immutable after construction and are stored reversed so
// that Get's inner loop is a straight dot product.
type FIRFilter struct {
	coefs   []float64
	history []float64
	step    int
	offset  int
}

// NewFIRFilter constructs a filter with the given coefficients and stepping
// interval between consecutive history samples consumed by Get.
func NewFIRFilter(coefs []float64, step int) *FIRFilter {
	if step <= 0 {
		step = 1
	}
	rev := make([]float64, len(coefs))
	for i, c := range coefs {
		rev[len(coefs)-1-i] = c
	}
	offset := (len(coefs) - 1) * step
	return &FIRFilter{
		coefs:   rev,
		history: make([]float64, offset),
		step:    step,
		offset:  offset,
	}
}

// Load appends a new block of samples after the retained filter history,
// discarding everything before it. Subsequent calls to Get index into the
// concatenation of (retained history, samples).
func (f *FIRFilter) Load(samples []float64) {
	fullLen := len(samples) + f.offset
	buf := make([]float64, fullLen)
	copy(buf, f.history[len(f.history)-f.offset:])
	copy(buf[f.offset:], samples)
	f.history = buf
}

// Get returns the filtered sample at index, corresponding to the same
// index in the most recently loaded block. The inner loop is the single
// CPU hotspot of the whole DSP chain (per the source it is ported from,
// ~85% of total runtime) and is kept branch-free and allocation-free.
func (f *FIRFilter) Get(index int) float64 {
	var out float64
	is := index
	for _, c := range f.coefs {
		out += c * f.history[is]
		is += f.step
	}
	return out
}
