// Package r820t drives the Rafael Micro R820T mixer/PLL tuner over the
// RTL2832U's I2C bridge: initialization, center-frequency tuning with PLL
// lock verification, gain control, filter calibration, and power-down.
//
// The tuner exposes no data path of its own; it is control-only.
package r820t

import (
	"errors"
	"fmt"
	"math"
)

// I2CAddr is the R820T's I2C device address on the RTL2832U's bridge.
const I2CAddr = 0x34

// ErrPLLNotLocked is returned by SetFrequency when the PLL fails to lock
// even after the retry.
var ErrPLLNotLocked = errors.New("r820t: PLL did not lock")

// I2C is the subset of the register layer the tuner needs, defined here
// (the consumer) so tests can supply a fake I2C bus without a real chip.
type I2C interface {
	I2CWriteReg(addr uint8, reg, value byte) error
	I2CReadRegBuffer(addr, reg byte, length int) ([]byte, error)
}

// shadowLen is the number of contiguous shadow registers, 0x05..0x1F.
const shadowLen = 0x1F - 0x05 + 1

// Tuner holds the R820T's register shadow and its current tuning state.
type Tuner struct {
	i2c    I2C
	shadow [shadowLen]byte

	pllRefFreq int // Hz, the reference frequency fed to the PLL.
	xtalFreq   int // Hz, crystal frequency (fed from the RTL2832U side).
}

// New builds a tuner driving i2c, with the given crystal frequency (as
// corrected by the RTL2832U's PPM setting) used for PLL math.
func New(i2c I2C, xtalFreq int) *Tuner {
	return &Tuner{i2c: i2c, xtalFreq: xtalFreq, pllRefFreq: xtalFreq}
}

// writeReg writes value to reg (0x05..0x1F), updating the shadow.
func (t *Tuner) writeReg(reg uint8, value byte) error {
	t.shadow[reg-0x05] = value
	return t.i2c.I2CWriteReg(I2CAddr, reg, value)
}

// writeRegMask performs a shadowed masked write: (old &^ mask) | (value &
// mask), applied to the shadow first and then to the device, per spec §3
// ("Tuner register shadow").
func (t *Tuner) writeRegMask(reg uint8, value, mask byte) error {
	old := t.shadow[reg-0x05]
	newValue := (old &^ mask) | (value & mask)
	return t.writeReg(reg, newValue)
}

// readReg reads reg from the device and bit-reverses it nibble-by-nibble
// (spec §3/§9): reads never update the shadow.
func (t *Tuner) readReg(reg uint8) (byte, error) {
	// The R820T's read path returns registers 0x00 onward regardless of
	// which single register address is requested; a length-5 read covers
	// 0x00..0x04, which is all this driver ever needs to read back.
	buf, err := t.i2c.I2CReadRegBuffer(I2CAddr, 0x00, int(reg)+1)
	if err != nil {
		return 0, err
	}
	return reverseByte(buf[reg]), nil
}

var nibbleReverse = [16]byte{
	0x0, 0x8, 0x4, 0xC, 0x2, 0xA, 0x6, 0xE,
	0x1, 0x9, 0x5, 0xD, 0x3, 0xB, 0x7, 0xF,
}

func reverseByte(b byte) byte {
	return nibbleReverse[b&0x0F]<<4 | nibbleReverse[b>>4]
}

// Init writes the default register shadow, runs the fixed init-electronics
// sequence, calibrates the filter, and applies a second init pass per spec
// §4.3.
func (t *Tuner) Init() error {
	for i, v := range defaultRegisters {
		if err := t.writeReg(uint8(0x05+i), v); err != nil {
			return fmt.Errorf("r820t: init default registers: %w", err)
		}
	}

	for _, e := range initElectronics {
		if err := t.writeRegMask(e.reg, e.value, e.mask); err != nil {
			return fmt.Errorf("r820t: init electronics: %w", err)
		}
	}

	if err := t.calibrateFilter(); err != nil {
		return fmt.Errorf("r820t: filter calibration: %w", err)
	}

	for _, e := range postCalInit {
		if err := t.writeRegMask(e.reg, e.value, e.mask); err != nil {
			return fmt.Errorf("r820t: post-calibration init: %w", err)
		}
	}
	return nil
}

// calibrateFilter sets the calibration PLL to 56MHz, toggles calibration
// start, and reads back the resulting filter cap from register 0x04's low
// nibble, retrying once if it lands on a non-zero, non-0x0F value.
func (t *Tuner) calibrateFilter() error {
	for attempt := 0; attempt < 2; attempt++ {
		if err := t.writeRegMask(0x0B, 0x08, 0x60); err != nil { // cal PLL -> 56MHz (XTAL div)
			return err
		}
		if err := t.writeRegMask(0x0F, 0x04, 0x04); err != nil { // cal clk on
			return err
		}
		if err := t.writeRegMask(0x0B, 0x10, 0x10); err != nil { // cal start
			return err
		}
		if err := t.writeRegMask(0x0B, 0x00, 0x10); err != nil { // cal stop
			return err
		}

		b4, err := t.readReg(0x04)
		if err != nil {
			return err
		}
		filterCap := b4 & 0x0F
		if filterCap == 0x0F {
			filterCap = 0
		}
		if filterCap != 0 && attempt == 0 {
			continue // retry once, per spec §4.3
		}
		return t.writeRegMask(0x0A, filterCap, 0x0F)
	}
	return nil
}

// Close writes the fixed power-down sequence.
func (t *Tuner) Close() error {
	for _, e := range powerDown {
		if err := t.writeRegMask(e.reg, e.value, e.mask); err != nil {
			return fmt.Errorf("r820t: close: %w", err)
		}
	}
	return nil
}

// maskValue is one entry of a fixed init/power-down table: write value
// (masked by mask) to reg.
type maskValue struct {
	reg   uint8
	value byte
	mask  byte
}

func round(x float64) int { return int(math.Floor(x + 0.5)) }
