package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLowpassFIRCoeffsUnityDCGain(t *testing.T) {
	coefs := LowpassFIRCoeffs(48000, 4000, 63)
	var sum float64
	for _, c := range coefs {
		sum += c
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestLowpassFIRCoeffsForcesOddLength(t *testing.T) {
	coefs := LowpassFIRCoeffs(48000, 4000, 64)
	assert.Equal(t, 65, len(coefs))
}

func TestFIRFilterPassesConstantThrough(t *testing.T) {
	coefs := LowpassFIRCoeffs(48000, 4000, 31)
	f := NewFIRFilter(coefs, 1)

	block := make([]float64, 200)
	for i := range block {
		block[i] = 1.0
	}
	f.Load(block)

	// Far enough into the block that filter history has filled with the
	// same constant, the output should settle back to the input value
	// (unity DC gain).
	out := f.Get(100)
	assert.InDelta(t, 1.0, out, 1e-6)
}

func TestHilbertFIRZeroesEvenTaps(t *testing.T) {
	coefs := HilbertFIR(48000, 4000, 31)
	center := len(coefs) / 2
	for i, c := range coefs {
		if (i-center)%2 == 0 {
			assert.Zero(t, c, "tap %d should be zeroed", i)
		}
	}
}

func TestDownsamplerHalvesLength(t *testing.T) {
	coefs := LowpassFIRCoeffs(48000, 4000, 31)
	d := NewDownsampler(48000, 24000, coefs)
	in := make([]float64, 1000)
	out := d.Downsample(in)
	assert.Equal(t, 500, len(out))
}

func TestIQDownsamplerTracksRate(t *testing.T) {
	coefs := LowpassFIRCoeffs(1024000, 100000, 31)
	d := NewIQDownsampler(1024000, 256000, coefs)
	iq := IQ{I: make([]float32, 4096), Q: make([]float32, 4096), Rate: 1024000}
	out := d.Downsample(iq)
	assert.Equal(t, 256000, out.Rate)
	assert.Equal(t, len(out.I), len(out.Q))
}

func TestExpAverageConvergesToConstantInput(t *testing.T) {
	avg := NewExpAverage(10)
	var last float64
	for i := 0; i < 1000; i++ {
		last = avg.Add(5.0)
	}
	assert.InDelta(t, 5.0, last, 1e-6)
	assert.InDelta(t, 5.0, avg.Get(), 1e-6)
}

func TestExpAverageStdIsZeroForConstantInput(t *testing.T) {
	avg := NewExpAverageWithStd(10)
	for i := 0; i < 1000; i++ {
		avg.Add(3.0)
	}
	assert.InDelta(t, 0, avg.Std(), 1e-9)
}

func TestDeemphasizerIsLowpass(t *testing.T) {
	d := NewDeemphasizer(48000, 50)
	samples := make([]float32, 2000)
	for i := range samples {
		if i%2 == 0 {
			samples[i] = 1
		} else {
			samples[i] = -1
		}
	}
	d.InPlace(samples)

	var maxAbs float32
	for _, s := range samples[len(samples)-100:] {
		if abs32(s) > maxAbs {
			maxAbs = abs32(s)
		}
	}
	assert.Less(t, maxAbs, float32(0.5), "a high-frequency alternating signal should be heavily attenuated")
}

func abs32(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}

func TestFastAtan2AgreesWithStdlib(t *testing.T) {
	cases := []struct{ y, x float64 }{
		{0, 1}, {1, 0}, {-1, 0}, {0, -1}, {1, 1}, {-1, -1}, {0.3, -0.7},
	}
	for _, c := range cases {
		got := fastAtan2(c.y, c.x)
		want := math.Atan2(c.y, c.x)
		assert.InDelta(t, want, got, 0.01, "y=%v x=%v", c.y, c.x)
	}
}
