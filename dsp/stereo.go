package dsp

import "math"

// corrThreshold is the running variance of the correlation signal below
// which the pilot tone is considered locked.
const corrThreshold = 4

// pilotTableSize spans the pilot lock range at 0.01 Hz resolution: +/-40
// bins around the nominal pilot frequency, one entry per 1/100 Hz.
const pilotTableSize = 8001

// StereoSeparator locks on to the 19kHz FM stereo pilot tone using an
// internal oscillator phase-corrected by the demodulated signal, and
// extracts the L-R subcarrier product.
type StereoSeparator struct {
	sinTable, cosTable [pilotTableSize]float64
	sin, cos           float64
	iavg, qavg, cavg   *ExpAverage
}

// NewStereoSeparator builds a separator for the given sample rate and
// pilot frequency (19000 Hz for FM broadcast stereo).
func NewStereoSeparator(sampleRate, pilotFreq int) *StereoSeparator {
	s := &StereoSeparator{
		sin:  0,
		cos:  1,
		iavg: NewExpAverage(float64(sampleRate) * 0.03),
		qavg: NewExpAverage(float64(sampleRate) * 0.03),
		cavg: NewExpAverage(float64(sampleRate) * 0.15),
	}
	for i := 0; i < pilotTableSize; i++ {
		freq := (float64(pilotFreq) + float64(i)/100 - 40) * 2 * math.Pi / float64(sampleRate)
		s.sinTable[i] = math.Sin(freq)
		s.cosTable[i] = math.Cos(freq)
	}
	return s
}

// StereoSignal carries the L-R side-band signal recovered by Separate,
// plus whether the pilot tone was locked while recovering it.
type StereoSignal struct {
	Found bool
	Diff  []float32
}

// Separate locks to the pilot tone in samples (a demodulated FM signal at
// the decoder's intermediate rate) and returns the L-R difference signal.
func (s *StereoSeparator) Separate(samples []float32) StereoSignal {
	out := make([]float32, len(samples))
	for i, x := range samples {
		v := float64(x)
		hdev := s.qavg.Add(v * s.cos)
		vdev := s.iavg.Add(v * s.sin)
		out[i] = float32(v * s.sin * s.cos * 2)

		var corr float64
		switch {
		case vdev > 0:
			corr = math.Max(-4, math.Min(4, hdev/vdev))
		case hdev == 0:
			corr = 0
		case hdev > 0:
			corr = 4
		default:
			corr = -4
		}

		idx := int(math.Round((corr + 4) * 1000))
		newSin := s.sin*s.cosTable[idx] + s.cos*s.sinTable[idx]
		s.cos = s.cos*s.cosTable[idx] - s.sin*s.sinTable[idx]
		s.sin = newSin
		s.cavg.Add(corr * corr)
	}
	return StereoSignal{Found: s.cavg.Get() < corrThreshold, Diff: out}
}
