package demod

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/radioreceiver/dsp"
)

const testInRate = 1_024_000

// sineIQ builds a block of inRate samples of a carrier offset by toneHz,
// i.e. a pure complex exponential at that frequency - a harmless non-zero
// input every demodulator in this package should be able to chew through
// without producing NaNs or mismatched channel lengths.
func sineIQ(n, inRate int, toneHz float64) dsp.IQ {
	i := make([]float32, n)
	q := make([]float32, n)
	for k := 0; k < n; k++ {
		phase := 2 * math.Pi * toneHz * float64(k) / float64(inRate)
		i[k] = float32(math.Cos(phase))
		q[k] = float32(math.Sin(phase))
	}
	return dsp.IQ{I: i, Q: q, Rate: inRate}
}

func assertCleanResult(t *testing.T, r Result) {
	t.Helper()
	require.Equal(t, len(r.Left), len(r.Right))
	for i, v := range r.Left {
		assert.False(t, math.IsNaN(float64(v)), "left[%d] is NaN", i)
	}
	assert.False(t, math.IsNaN(float64(r.SignalLevel)))
}

func TestWBFMDemodulateProducesCleanMonoFallback(t *testing.T) {
	mode := NewWBFM(testInRate)
	iq := sineIQ(40000, testInRate, 1000)
	r := mode.Demodulate(iq, false)
	assertCleanResult(t, r)
	assert.False(t, r.Stereo, "no pilot present, must fall back to mono")
}

func TestNBFMDemodulateNeverStereo(t *testing.T) {
	mode := NewNBFM(testInRate, 5000)
	iq := sineIQ(20000, testInRate, 500)
	r := mode.Demodulate(iq, true)
	assertCleanResult(t, r)
	assert.False(t, r.Stereo)
}

func TestAMDemodulateNeverStereo(t *testing.T) {
	mode := NewAM(testInRate, 10000)
	iq := sineIQ(20000, testInRate, 1000)
	r := mode.Demodulate(iq, true)
	assertCleanResult(t, r)
	assert.False(t, r.Stereo)
}

func TestSSBDemodulateNeverStereo(t *testing.T) {
	mode := NewSSB(testInRate, 2700, true)
	iq := sineIQ(20000, testInRate, 1000)
	r := mode.Demodulate(iq, true)
	assertCleanResult(t, r)
	assert.False(t, r.Stereo)
}

func TestNBFMInterRateScalesWithMaxF(t *testing.T) {
	assert.Equal(t, 48000, nbfmInterRate(1))
	assert.Greater(t, nbfmInterRate(75000), nbfmInterRate(1))
}

func TestDescriptorNewDispatchesToMatchingMode(t *testing.T) {
	cases := []struct {
		desc Descriptor
		want any
	}{
		{WBFMDescriptor(), &WBFM{}},
		{NBFMDescriptor(5000), &NBFM{}},
		{AMDescriptor(10000), &AM{}},
		{SSBDescriptor(2700, true), &SSB{}},
	}
	for _, c := range cases {
		got := c.desc.New(testInRate)
		assert.IsType(t, c.want, got)
	}
}

func TestSignalLevelMonotonicInPower(t *testing.T) {
	assert.Equal(t, float32(0), signalLevel(0))
	assert.Less(t, signalLevel(0.01), signalLevel(0.1))
}
