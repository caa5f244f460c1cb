package r820t

// gainSteps is the number of discrete manual gain steps the LNA/mixer gain
// ladder exposes, per spec §4.3.
const gainSteps = 28

// gainStepForDB maps a manual gain request in dB to a 0..28 gain step using
// three piecewise polynomials, fit over low (<=15dB), mid (<=41.5dB) and
// saturated (>41.5dB) ranges. The breakpoints come from spec §4.3/§9; no
// tuner source for the exact fit survives, so the coefficients here are
// this driver's own monotonic curve through those breakpoints (documented
// in DESIGN.md).
func gainStepForDB(db float64) int {
	var step float64
	switch {
	case db <= 15:
		step = 0.0363*db*db + 0.7062*db
	case db <= 41.5:
		step = -0.0074*db*db + 1.1136*db - 5.3
	default:
		step = gainSteps
	}
	return clampInt(round(step), 0, gainSteps)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SetAutoGain re-enables the LNA's and mixer's internal AGC loops,
// releasing any manual gain step previously applied.
func (t *Tuner) SetAutoGain() error {
	if err := t.writeRegMask(0x05, 0x00, 0x80); err != nil {
		return err
	}
	return t.writeRegMask(0x07, 0x00, 0x40)
}

// SetManualGain disables AGC and applies gainDB, split between the LNA and
// mixer gain ladders as lnaValue=(step+1)/2, mixerValue=step/2.
func (t *Tuner) SetManualGain(gainDB float64) error {
	step := gainStepForDB(gainDB)
	lnaValue := (step + 1) / 2
	mixerValue := step / 2

	if err := t.writeRegMask(0x05, 0x80, 0x80); err != nil { // LNA manual
		return err
	}
	if err := t.writeRegMask(0x07, 0x40, 0x40); err != nil { // mixer manual
		return err
	}
	if err := t.writeRegMask(0x05, byte(lnaValue), 0x0F); err != nil {
		return err
	}
	return t.writeRegMask(0x07, byte(mixerValue), 0x0F)
}
