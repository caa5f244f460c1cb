package demod

import "github.com/google/radioreceiver/dsp"

const (
	ssbInterRate = 48000
	ssbDemodLen  = 151
)

// SSB demodulates single-sideband voice, upper or lower.
type SSB struct {
	demodulator *dsp.SSBDemodulator
}

// NewSSB builds an SSB demodulator for an input stream at inRate, with
// bandwidth the voice passband width in Hz and upper selecting USB (true)
// or LSB (false).
func NewSSB(inRate, bandwidth int, upper bool) *SSB {
	return &SSB{
		demodulator: dsp.NewSSBDemodulator(inRate, ssbInterRate, float64(bandwidth), ssbDemodLen, upper),
	}
}

// Demodulate implements Mode. SSB never produces stereo.
func (s *SSB) Demodulate(iq dsp.IQ, inStereo bool) Result {
	demodulated := s.demodulator.Demodulate(iq)
	leftF := demodulated.Samples
	rightF := make([]float32, len(leftF))
	copy(rightF, leftF)
	var power float64
	for _, v := range leftF {
		power += float64(v) * float64(v)
	}
	if len(leftF) > 0 {
		power /= float64(len(leftF))
	}
	return Result{
		Left:        leftF,
		Right:       rightF,
		Stereo:      false,
		SignalLevel: signalLevel(power),
	}
}
