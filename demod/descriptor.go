package demod

// Kind tags which modulation a Descriptor selects.
type Kind int

const (
	KindWBFM Kind = iota
	KindNBFM
	KindAM
	KindSSB
)

// Descriptor is the tagged-variant mode the radio's public API accepts
// from SetMode: it names a modulation scheme and its parameters without
// committing to an instantiated demodulator until New is called. Replacing
// the installed mode always replaces the Descriptor (and the demodulator
// it builds) wholesale, never mutates one in place.
type Descriptor struct {
	Kind Kind

	// MaxF is NBFM's maximum frequency deviation in Hz.
	MaxF int

	// Bandwidth is AM's or SSB's occupied bandwidth in Hz.
	Bandwidth int

	// Upper selects SSB's upper (true) or lower (false) sideband.
	Upper bool
}

// WBFMDescriptor is the Descriptor for wideband broadcast FM.
func WBFMDescriptor() Descriptor { return Descriptor{Kind: KindWBFM} }

// NBFMDescriptor is the Descriptor for narrowband FM with the given
// maximum frequency deviation.
func NBFMDescriptor(maxF int) Descriptor { return Descriptor{Kind: KindNBFM, MaxF: maxF} }

// AMDescriptor is the Descriptor for AM with the given bandwidth.
func AMDescriptor(bandwidth int) Descriptor { return Descriptor{Kind: KindAM, Bandwidth: bandwidth} }

// SSBDescriptor is the Descriptor for SSB with the given bandwidth and
// sideband selection.
func SSBDescriptor(bandwidth int, upper bool) Descriptor {
	return Descriptor{Kind: KindSSB, Bandwidth: bandwidth, Upper: upper}
}

// New instantiates the demodulator this Descriptor describes, sized for a
// sample stream at inRate.
func (d Descriptor) New(inRate int) Mode {
	switch d.Kind {
	case KindNBFM:
		return NewNBFM(inRate, d.MaxF)
	case KindAM:
		return NewAM(inRate, d.Bandwidth)
	case KindSSB:
		return NewSSB(inRate, d.Bandwidth, d.Upper)
	default:
		return NewWBFM(inRate)
	}
}
