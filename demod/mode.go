// Package demod implements the modulation demodulators (WBFM, NBFM, AM,
// SSB) that turn a downconverted IQ stream into stereo audio at 48kHz.
package demod

import (
	"math"

	"github.com/google/radioreceiver/dsp"
)

// OutRate is the fixed output audio rate every demodulator produces.
const OutRate = 48000

// Result is what every Mode.Demodulate call produces for one IQ block.
type Result struct {
	Left, Right []float32
	Stereo      bool
	SignalLevel float32
}

// Mode is the tagged-variant interface every modulation scheme satisfies.
// A mode switch (radio.Controller.SetMode) replaces the instance wholesale
// rather than mutating one in place.
type Mode interface {
	// Demodulate consumes one block of IQ samples at the mode's configured
	// input rate and returns a block of stereo audio at OutRate.
	Demodulate(iq dsp.IQ, inStereo bool) Result
}

// signalLevel turns an average per-sample power into the roughly-[0,1+]
// scale the spec's scan/squelch logic compares against 0.5.
func signalLevel(avgPower float64) float32 {
	if avgPower <= 0 {
		return 0
	}
	return float32(3.5 * math.Sqrt(avgPower))
}
