package demod

import "github.com/google/radioreceiver/dsp"

const (
	wbfmInterRate   = 336000
	wbfmMaxF        = 75000
	wbfmPilotFreq   = 19000
	wbfmDeemphTcUs  = 50
	wbfmFilterFreq  = 10000
	wbfmFilterLen   = 41
	wbfmDemodLen    = 101
)

// WBFM demodulates wideband (broadcast) FM, with pilot-locked stereo
// recovery and de-emphasis.
type WBFM struct {
	demodulator    *dsp.FMDemodulator
	monoSampler    *dsp.Downsampler
	stereoSampler  *dsp.Downsampler
	stereoSep      *dsp.StereoSeparator
	leftDeemph     *dsp.Deemphasizer
	rightDeemph    *dsp.Deemphasizer
}

// NewWBFM builds a WBFM demodulator for an input stream at inRate. The
// de-emphasis time constant defaults to 50us; call SetDeemphasisTc(75) for
// the Americas/South Korea convention.
func NewWBFM(inRate int) *WBFM {
	coefs := dsp.LowpassFIRCoeffs(wbfmInterRate, wbfmFilterFreq, wbfmFilterLen)
	return &WBFM{
		demodulator:   dsp.NewFMDemodulator(inRate, wbfmInterRate, wbfmMaxF, wbfmMaxF*0.9, wbfmDemodLen),
		monoSampler:   dsp.NewDownsampler(wbfmInterRate, OutRate, coefs),
		stereoSampler: dsp.NewDownsampler(wbfmInterRate, OutRate, coefs),
		stereoSep:     dsp.NewStereoSeparator(wbfmInterRate, wbfmPilotFreq),
		leftDeemph:    dsp.NewDeemphasizer(OutRate, wbfmDeemphTcUs),
		rightDeemph:   dsp.NewDeemphasizer(OutRate, wbfmDeemphTcUs),
	}
}

// SetDeemphasisTc replaces both channels' de-emphasis time constant
// (microseconds), for regions that use 75us instead of the 50us default.
func (w *WBFM) SetDeemphasisTc(tcUs float64) {
	w.leftDeemph = dsp.NewDeemphasizer(OutRate, tcUs)
	w.rightDeemph = dsp.NewDeemphasizer(OutRate, tcUs)
}

// Demodulate implements Mode.
func (w *WBFM) Demodulate(iq dsp.IQ, inStereo bool) Result {
	demodulated := w.demodulator.Demodulate(iq)

	left := toFloat64(demodulated.Samples)
	leftOut := w.monoSampler.Downsample(left)
	rightOut := make([]float64, len(leftOut))
	copy(rightOut, leftOut)

	var stereo bool
	if inStereo {
		sep := w.stereoSep.Separate(demodulated.Samples)
		if sep.Found {
			diff := w.stereoSampler.Downsample(toFloat64(sep.Diff))
			n := minInt(len(diff), len(leftOut))
			for i := 0; i < n; i++ {
				leftOut[i] += 2 * diff[i]
				rightOut[i] -= 2 * diff[i]
			}
			stereo = true
		}
	}

	leftF := toFloat32(leftOut)
	rightF := toFloat32(rightOut)
	w.leftDeemph.InPlace(leftF)
	w.rightDeemph.InPlace(rightF)

	return Result{
		Left:        leftF,
		Right:       rightF,
		Stereo:      stereo,
		SignalLevel: signalLevel(w.demodulator.AvgPower()),
	}
}

func toFloat64(in []float32) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}

func toFloat32(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
