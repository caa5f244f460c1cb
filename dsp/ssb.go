package dsp

import "math"

// ssbHilbertLen is the Hilbert transformer's tap count; its group delay
// (half its length) is how far the in-phase channel must be delayed to
// stay time-aligned with the phase-shifted quadrature channel.
const ssbHilbertLen = 65

// SSBDemodulator recovers a single sideband by downsampling both I and Q,
// phase-shifting Q through a Hilbert transform, delaying I to match the
// Hilbert filter's group delay, and adding (upper sideband) or subtracting
// (lower sideband) the two to cancel the unwanted image. A bandpass filter
// at filterFreq then isolates the audio passband, and a dual-time-constant
// AGC normalizes the output level.
type SSBDemodulator struct {
	downsampler *IQDownsampler
	hilbert     *FIRFilter
	bandpass    *Downsampler
	delay       []float64
	upper       bool
	agc         *AGC
}

// NewSSBDemodulator builds an SSB demodulator from inRate down to outRate,
// selecting the upper or lower sideband, with a bandpass filter of
// filterFreq half-amplitude frequency and kernelLen taps.
func NewSSBDemodulator(inRate, outRate int, filterFreq float64, kernelLen int, upper bool) *SSBDemodulator {
	antiAlias := LowpassFIRCoeffs(inRate, filterFreq*2, kernelLen)
	hilbertCoefs := HilbertFIR(outRate, float64(outRate)/2, ssbHilbertLen)
	bandpassCoefs := LowpassFIRCoeffs(outRate, filterFreq, kernelLen)
	return &SSBDemodulator{
		downsampler: NewIQDownsampler(inRate, outRate, antiAlias),
		hilbert:     NewFIRFilter(hilbertCoefs, 1),
		bandpass:    NewDownsampler(outRate, outRate, bandpassCoefs),
		delay:       make([]float64, len(hilbertCoefs)/2),
		upper:       upper,
		agc:         NewAGC(),
	}
}

// Demodulate recovers one block of audio samples at outRate.
func (s *SSBDemodulator) Demodulate(iq IQ) Mono {
	down := s.downsampler.Downsample(iq)
	n := len(down.I)

	qf := toFloat64(down.Q)
	s.hilbert.Load(qf)
	shiftedQ := make([]float64, n)
	for i := 0; i < n; i++ {
		shiftedQ[i] = s.hilbert.Get(i)
	}

	delayedI := make([]float64, n)
	full := append(append([]float64{}, s.delay...), toFloat64(down.I)...)
	for i := 0; i < n; i++ {
		delayedI[i] = full[i]
	}
	if len(full) >= len(s.delay) {
		s.delay = full[len(full)-len(s.delay):]
	}

	combined := make([]float64, n)
	for i := 0; i < n; i++ {
		if s.upper {
			combined[i] = delayedI[i] - shiftedQ[i]
		} else {
			combined[i] = delayedI[i] + shiftedQ[i]
		}
	}

	filtered := s.bandpass.Downsample(combined)
	out := make([]float32, len(filtered))
	for i, v := range filtered {
		out[i] = float32(s.agc.Apply(v))
	}
	return Mono{Samples: out, Rate: down.Rate}
}

// AGC normalizes signal level using a fast-attack/slow-decay pair of power
// envelopes: gain tracks the ratio of the slow (long-term target) envelope
// to the fast (instantaneous) one, clamped to avoid runaway gain on silence.
type AGC struct {
	fast, slow *ExpAverage
	minGain    float64
	maxGain    float64
}

// NewAGC builds an AGC with reasonable defaults for audio-rate envelopes.
func NewAGC() *AGC {
	return &AGC{
		fast:    NewExpAverage(8),
		slow:    NewExpAverage(4000),
		minGain: 0.1,
		maxGain: 10,
	}
}

// Apply folds x's magnitude into both envelopes and returns x scaled by the
// resulting gain.
func (a *AGC) Apply(x float64) float64 {
	mag := math.Abs(x)
	fast := a.fast.Add(mag)
	slow := a.slow.Add(mag)
	gain := 1.0
	if fast > 1e-9 {
		gain = slow / fast
	}
	gain = math.Max(a.minGain, math.Min(a.maxGain, gain))
	return x * gain
}
