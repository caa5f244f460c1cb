package dsp

import "math"

// AMDemodulator recovers amplitude from an IQ stream: downsample, subtract
// the per-block DC average from I and Q, take the modulus, then
// DC-normalize the result by its own mean amplitude.
type AMDemodulator struct {
	downsampler *IQDownsampler
	hasCarrier  bool
	relPower    float64
}

// NewAMDemodulator builds an AM demodulator from inRate down to outRate
// using a lowpass anti-alias filter with half-amplitude frequency
// filterFreq and kernelLen taps.
func NewAMDemodulator(inRate, outRate int, filterFreq float64, kernelLen int) *AMDemodulator {
	coefs := LowpassFIRCoeffs(inRate, filterFreq, kernelLen)
	return &AMDemodulator{downsampler: NewIQDownsampler(inRate, outRate, coefs)}
}

// Demodulate envelope-detects one block, returning mono samples at outRate.
func (a *AMDemodulator) Demodulate(iq IQ) Mono {
	down := a.downsampler.Downsample(iq)
	n := len(down.I)
	var iSum, qSum float64
	for i := 0; i < n; i++ {
		iSum += float64(down.I[i])
		qSum += float64(down.Q[i])
	}
	iAvg, qAvg := iSum/float64(n), qSum/float64(n)

	out := make([]float64, n)
	var sigSum, sigSqrSum float64
	for i := 0; i < n; i++ {
		I := float64(down.I[i]) - iAvg
		Q := float64(down.Q[i]) - qAvg
		power := I*I + Q*Q
		ampl := math.Sqrt(power)
		out[i] = ampl
		sigSum += ampl
		sigSqrSum += power
	}

	halfPoint := sigSum / float64(n)
	outf := make([]float32, n)
	if halfPoint != 0 {
		for i, o := range out {
			outf[i] = float32((o - halfPoint) / halfPoint)
		}
	}
	a.hasCarrier = sigSqrSum > carrierThreshold*float64(n)
	a.relPower = sigSqrSum / float64(n)
	return Mono{Samples: outf, Rate: down.Rate}
}

// HasCarrier reports whether the most recently demodulated block exceeded
// the carrier-present power threshold.
func (a *AMDemodulator) HasCarrier() bool { return a.hasCarrier }

// RelativePower returns the mean per-sample power of the most recently
// demodulated block, before DC normalization; demod.AM derives signalLevel
// from it.
func (a *AMDemodulator) RelativePower() float64 { return a.relPower }
