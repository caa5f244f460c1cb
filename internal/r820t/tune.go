package r820t

import "math"

// SetFrequency tunes the R820T to freqHz, selecting the mux table row for
// the band, computing the PLL divider/fractional-N values, and verifying
// PLL lock (with one charge-pump retry) per spec §4.3.
//
// It returns ErrPLLNotLocked if the PLL never locks; the shadow and device
// registers are left in whatever state the last attempt produced, since a
// caller that gets this error is expected to report failure upward rather
// than keep using the tuner.
func (t *Tuner) SetFrequency(freqHz int) error {
	mux := selectMux(freqHz / 1_000_000)
	for _, w := range mux.writes {
		if err := t.writeRegMask(w.reg, w.value, w.mask); err != nil {
			return err
		}
	}

	divNum, err := t.setDivider(freqHz)
	if err != nil {
		return err
	}

	mixDiv := 1 << uint(divNum+1)
	vcoFreq := float64(freqHz) * float64(mixDiv)
	pllRef := float64(t.pllRefFreq)

	nint := int(math.Floor(vcoFreq / (2 * pllRef)))
	if nint > 63 {
		return ErrPLLNotLocked
	}
	vcoFra := math.Floor((vcoFreq - 2*pllRef*float64(nint)) / 1000)

	ni := (nint - 13) / 4
	si := nint - 4*ni - 13
	if err := t.writeRegMask(0x14, byte(ni)|byte(si<<6), 0x7F); err != nil {
		return err
	}

	pllRefKHz := pllRef / 1000
	sdm := int(math.Floor(32768 * vcoFra / pllRefKHz))
	if sdm > 65535 {
		sdm = 65535
	}
	if err := t.writeReg(0x16, byte(sdm>>8)); err != nil {
		return err
	}
	if err := t.writeReg(0x15, byte(sdm)); err != nil {
		return err
	}

	if locked, err := t.pollLock(); err != nil {
		return err
	} else if locked {
		return nil
	}

	// Not locked: bump the charge pump current and poll once more.
	if err := t.writeRegMask(0x12, 0x60, 0xE0); err != nil {
		return err
	}
	locked, err := t.pollLock()
	if err != nil {
		return err
	}
	if !locked {
		return ErrPLLNotLocked
	}
	return nil
}

// setDivider computes the base LO divider for freqHz, reads back the VCO
// fine-tune bits, nudges the divider ±1 accordingly, and writes it to
// register 0x10 bits 5-7. It returns the final divNum.
func (t *Tuner) setDivider(freqHz int) (int, error) {
	freqKHz := float64(freqHz) / 1000
	divNum := int(math.Floor(math.Log2(1770000 / freqKHz)))
	if divNum > 6 {
		divNum = 6
	}
	if divNum < 0 {
		divNum = 0
	}

	if err := t.writeRegMask(0x10, byte(divNum<<5), 0xE0); err != nil {
		return 0, err
	}

	b4, err := t.readReg(0x04)
	if err != nil {
		return 0, err
	}
	fineTune := (b4 >> 4) & 0x03
	switch {
	case fineTune == 0x03 && divNum > 0:
		divNum--
	case fineTune == 0x00 && divNum < 6:
		divNum++
	default:
		return divNum, nil
	}
	if err := t.writeRegMask(0x10, byte(divNum<<5), 0xE0); err != nil {
		return 0, err
	}
	return divNum, nil
}

// pollLock reads register 0x02 and reports whether bit 6 (PLL locked) is
// set.
func (t *Tuner) pollLock() (bool, error) {
	b2, err := t.readReg(0x02)
	if err != nil {
		return false, err
	}
	return b2&0x40 != 0, nil
}
