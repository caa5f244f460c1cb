// Package decoder turns raw 8-bit I/Q sample blocks into demodulated
// audio: byte-to-float conversion, a coarse frequency-offset heterodyne
// carried across blocks, and dispatch into the installed modulation
// demodulator.
package decoder

import (
	"math"

	"github.com/google/radioreceiver/demod"
	"github.com/google/radioreceiver/dsp"
)

// InRate is the sample rate the dongle streams at and every demodulator is
// sized for, per spec §4.7/§4.8.
const InRate = 1_024_000

// sampleOffset and sampleScale implement I = byte/128 - 0.995 (and the same
// for Q), per spec §4.7.
const (
	sampleScale  = 1.0 / 128
	sampleOffset = 0.995
)

// Request is one block submitted to a Decoder: raw interleaved I/Q bytes,
// whether the caller wants stereo output, a heterodyne offset in Hz, and an
// opaque echo value carried through to the matching Result unchanged.
//
// Bytes is considered consumed: the caller must not read or write it again
// after submitting a Request.
type Request struct {
	Bytes      []byte
	InStereo   bool
	FreqOffset float64
	Echo       any
}

// Result is the output of processing one Request.
type Result struct {
	Left        []float32
	Right       []float32
	Stereo      bool
	SignalLevel float32
	Echo        any
}

// Decoder owns the currently installed demodulator and the heterodyne
// oscillator's running phase. It is not safe for concurrent use; Worker
// wraps it with the single-producer/single-consumer discipline spec §4.7
// requires.
type Decoder struct {
	mode     demod.Mode
	cosPhase float64
	sinPhase float64
}

// New builds a Decoder with WBFM installed as a default mode, matching the
// controller's own default before the first SetMode.
func New() *Decoder {
	return &Decoder{
		mode:     demod.WBFMDescriptor().New(InRate),
		cosPhase: 1,
		sinPhase: 0,
	}
}

// SetMode replaces the installed demodulator with a fresh instance sized
// for InRate/demod.OutRate, per spec §4.7.
func (d *Decoder) SetMode(desc demod.Descriptor) {
	d.mode = desc.New(InRate)
}

// Process converts req.Bytes to I/Q floats, heterodynes by req.FreqOffset,
// demodulates through the installed mode, and returns the result with
// req.Echo carried through.
func (d *Decoder) Process(req Request) Result {
	iq := bytesToIQ(req.Bytes)
	d.heterodyne(iq, req.FreqOffset)

	out := d.mode.Demodulate(iq, req.InStereo)
	return Result{
		Left:        out.Left,
		Right:       out.Right,
		Stereo:      out.Stereo,
		SignalLevel: out.SignalLevel,
		Echo:        req.Echo,
	}
}

// bytesToIQ deinterleaves raw 8-bit samples (I, Q, I, Q, ...) into centered
// floats, per spec §4.7's exact byte/128 - 0.995 formula (distinct from the
// generic "centered at 127.5" description elsewhere in the protocol).
func bytesToIQ(b []byte) dsp.IQ {
	n := len(b) / 2
	i := make([]float32, n)
	q := make([]float32, n)
	for k := 0; k < n; k++ {
		i[k] = float32(b[2*k])*sampleScale - sampleOffset
		q[k] = float32(b[2*k+1])*sampleScale - sampleOffset
	}
	return dsp.IQ{I: i, Q: q, Rate: InRate}
}

// heterodyne rotates iq by a coarse complex oscillator running at
// freqOffset Hz, carrying the running {cos,sin} phase across calls so the
// rotation stays continuous from one block to the next.
func (d *Decoder) heterodyne(iq dsp.IQ, freqOffset float64) {
	if freqOffset == 0 {
		return
	}
	dTheta := 2 * math.Pi * freqOffset / float64(InRate)
	dcos, dsin := math.Cos(dTheta), math.Sin(dTheta)

	cos, sin := d.cosPhase, d.sinPhase
	for k := range iq.I {
		i, q := float64(iq.I[k]), float64(iq.Q[k])
		iq.I[k] = float32(i*cos - q*sin)
		iq.Q[k] = float32(i*sin + q*cos)

		cos, sin = cos*dcos-sin*dsin, cos*dsin+sin*dcos
	}

	// Renormalize so floating-point error doesn't let the oscillator's
	// magnitude drift away from 1 over a long run.
	if norm := math.Hypot(cos, sin); norm > 0 {
		cos, sin = cos/norm, sin/norm
	}
	d.cosPhase, d.sinPhase = cos, sin
}
