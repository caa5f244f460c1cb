package demod

import "github.com/google/radioreceiver/dsp"

const (
	nbfmFinalFilterFreq = 8000
	nbfmFinalFilterLen  = 41
	nbfmDemodLen        = 351
)

// NBFM demodulates narrowband FM (e.g. ham/PMR/marine VHF), with no stereo
// or de-emphasis stage.
type NBFM struct {
	demodulator *dsp.FMDemodulator
	downSampler *dsp.Downsampler
}

// nbfmInterRate follows the mode's "inter = 48000 * multiple" rule, where
// multiple = 1 + floor((maxF-1)*7/75000).
func nbfmInterRate(maxF int) int {
	multiple := 1 + (maxF-1)*7/75000
	return 48000 * multiple
}

// NewNBFM builds an NBFM demodulator for an input stream at inRate, with
// maxF the maximum frequency deviation.
func NewNBFM(inRate, maxF int) *NBFM {
	interRate := nbfmInterRate(maxF)
	coefs := dsp.LowpassFIRCoeffs(interRate, nbfmFinalFilterFreq, nbfmFinalFilterLen)
	return &NBFM{
		demodulator: dsp.NewFMDemodulator(inRate, interRate, maxF, float64(maxF)*0.8, nbfmDemodLen),
		downSampler: dsp.NewDownsampler(interRate, OutRate, coefs),
	}
}

// Demodulate implements Mode. NBFM never produces stereo.
func (n *NBFM) Demodulate(iq dsp.IQ, inStereo bool) Result {
	demodulated := n.demodulator.Demodulate(iq)
	left := n.downSampler.Downsample(toFloat64(demodulated.Samples))
	leftF := toFloat32(left)
	rightF := make([]float32, len(leftF))
	copy(rightF, leftF)
	return Result{
		Left:        leftF,
		Right:       rightF,
		Stereo:      false,
		SignalLevel: signalLevel(n.demodulator.AvgPower()),
	}
}
