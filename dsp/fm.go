package dsp

import "math"

// carrierThreshold is the per-sample average power below which a block is
// considered to carry no signal.
const carrierThreshold = 0.002

// FMDemodulator discriminates frequency from an IQ stream: delta-phi via
// atan2(I*Q' - Q*I'), I'/Q' being the previous sample's I/Q. It downsamples
// to an intermediate rate first (the anti-aliasing/channel filter) and
// then differentiates sample to sample.
type FMDemodulator struct {
	downsampler *IQDownsampler
	amplConv    float64
	lastI, lastQ float64
	hasCarrier  bool
	fastAtan    bool
	avgPower    float64
}

// NewFMDemodulator builds an FM discriminator from inRate down to
// interRate, with maxF the maximum frequency deviation used to scale the
// discriminator output to roughly [-1, 1], and a lowpass anti-alias filter
// with half-amplitude frequency filterFreq and kernelLen taps.
func NewFMDemodulator(inRate, interRate, maxF int, filterFreq float64, kernelLen int) *FMDemodulator {
	coefs := LowpassFIRCoeffs(inRate, filterFreq, kernelLen)
	return &FMDemodulator{
		downsampler: NewIQDownsampler(inRate, interRate, coefs),
		amplConv:    float64(interRate) / (2 * math.Pi * float64(maxF)),
	}
}

// UseFastAtan2 switches the discriminator to the polynomial first-quadrant
// atan approximation from the reference implementation instead of the
// standard library's math.Atan2. Both are accurate to within the spec's
// tolerance; math.Atan2 is the default.
func (f *FMDemodulator) UseFastAtan2(use bool) { f.fastAtan = use }

// Demodulate discriminates one block, returning mono samples at interRate.
func (f *FMDemodulator) Demodulate(iq IQ) Mono {
	down := f.downsampler.Downsample(iq)
	out := make([]float32, len(down.I))
	var sigSqrSum float64
	for i := range down.I {
		I, Q := float64(down.I[i]), float64(down.Q[i])
		real := f.lastI*I + f.lastQ*Q
		imag := f.lastI*Q - I*f.lastQ
		var angle float64
		if f.fastAtan {
			angle = fastAtan2(imag, real)
		} else {
			angle = math.Atan2(imag, real)
		}
		out[i] = float32(angle * f.amplConv)
		f.lastI, f.lastQ = I, Q
		sigSqrSum += f.lastI * f.lastI
	}
	f.hasCarrier = sigSqrSum > carrierThreshold*float64(len(out))
	f.avgPower = sigSqrSum / float64(len(out))
	return Mono{Samples: out, Rate: down.Rate}
}

// HasCarrier reports whether the most recently demodulated block exceeded
// the carrier-present power threshold.
func (f *FMDemodulator) HasCarrier() bool { return f.hasCarrier }

// AvgPower returns the mean per-sample carrier power of the most recently
// demodulated block; demod.WBFM/demod.NBFM derive signalLevel from it.
func (f *FMDemodulator) AvgPower() float64 { return f.avgPower }

// fastAtan2 is the first-quadrant polynomial atan approximation from the
// reference decoder, extended to all four quadrants by sign/reciprocal
// tricks. It trades a little accuracy for avoiding a standard library
// trig call in the hottest part of the FM path.
func fastAtan2(y, x float64) float64 {
	sgn := 1.0
	if y < 0 {
		sgn = -1
		y = -y
	}
	var ang, div float64
	switch {
	case x == y:
		div = 1
	case x > y:
		div = y / x
	default:
		ang = -math.Pi / 2
		div = x / y
		sgn = -sgn
	}
	ang += div / (0.98419158358617365 + div*(0.093485702629671305+div*0.19556307900617517))
	return sgn * ang
}
