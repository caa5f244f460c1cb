package demod

import "github.com/google/radioreceiver/dsp"

const (
	amInterRate    = 336000
	amFilterFreq   = 10000
	amFilterLen    = 41
	amDemodLen     = 351
)

// AM demodulates double-sideband amplitude modulation.
type AM struct {
	demodulator *dsp.AMDemodulator
	downSampler *dsp.Downsampler
}

// NewAM builds an AM demodulator for an input stream at inRate, with
// bandwidth the signal's occupied bandwidth in Hz.
func NewAM(inRate, bandwidth int) *AM {
	coefs := dsp.LowpassFIRCoeffs(amInterRate, amFilterFreq, amFilterLen)
	return &AM{
		demodulator: dsp.NewAMDemodulator(inRate, amInterRate, float64(bandwidth)/2, amDemodLen),
		downSampler: dsp.NewDownsampler(amInterRate, OutRate, coefs),
	}
}

// Demodulate implements Mode. AM never produces stereo.
func (a *AM) Demodulate(iq dsp.IQ, inStereo bool) Result {
	demodulated := a.demodulator.Demodulate(iq)
	left := a.downSampler.Downsample(toFloat64(demodulated.Samples))
	leftF := toFloat32(left)
	rightF := make([]float32, len(leftF))
	copy(rightF, leftF)
	return Result{
		Left:        leftF,
		Right:       rightF,
		Stereo:      false,
		SignalLevel: signalLevel(a.demodulator.RelativePower()),
	}
}
