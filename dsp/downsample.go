package dsp

// Downsampler applies a lowpass FIR filter and then resamples to a lower
// rate by reading the filter at a fractional stride.
type Downsampler struct {
	filter  *FIRFilter
	rateMul float64
}

// NewDownsampler builds a downsampler for the given input/output rates
// using coefs as the anti-aliasing lowpass filter.
func NewDownsampler(inRate, outRate int, coefs []float64) *Downsampler {
	return &Downsampler{
		filter:  NewFIRFilter(coefs, 1),
		rateMul: float64(inRate) / float64(outRate),
	}
}

// Downsample filters and decimates one block of samples.
func (d *Downsampler) Downsample(samples []float64) []float64 {
	d.filter.Load(samples)
	outLen := int(float64(len(samples)) / d.rateMul)
	out := make([]float64, outLen)
	readFrom := 0.0
	for i := 0; i < outLen; i++ {
		out[i] = d.filter.Get(int(readFrom))
		readFrom += d.rateMul
	}
	return out
}

// IQDownsampler downsamples an already-deinterlaced I/Q pair using two
// independent single-step filters, one per channel. This is equivalent to
// running a single step=2 filter across an interleaved I,Q,I,Q,... stream
// (the representation used upstream of sample conversion) but works
// directly on the split dsp.IQ representation the decoder hands to every
// modulation scheme.
type IQDownsampler struct {
	i, q    *Downsampler
	rateMul float64
}

// NewIQDownsampler builds an IQ downsampler for the given rates and
// anti-aliasing coefficients.
func NewIQDownsampler(inRate, outRate int, coefs []float64) *IQDownsampler {
	return &IQDownsampler{
		i:       NewDownsampler(inRate, outRate, coefs),
		q:       NewDownsampler(inRate, outRate, coefs),
		rateMul: float64(inRate) / float64(outRate),
	}
}

// Downsample filters and decimates one IQ block.
func (d *IQDownsampler) Downsample(iq IQ) IQ {
	i := d.i.Downsample(toFloat64(iq.I))
	q := d.q.Downsample(toFloat64(iq.Q))
	return IQ{I: toFloat32(i), Q: toFloat32(q), Rate: int(float64(iq.Rate) / d.rateMul)}
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
