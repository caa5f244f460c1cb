package rtl2832

import "github.com/google/radioreceiver/internal/register"

// demodRegWrite is one entry of the fixed demodulator bring-up sequence:
// write value (length bytes, big-endian) to addr on page.
type demodRegWrite struct {
	page   register.Block
	addr   uint8
	value  uint32
	length int
}

// demodInitTable is the fixed ~36-entry demod register init sequence run
// once per open, before the I2C bridge and tuner are touched. Per spec §9
// these are magic values derived from reverse-engineering the chip and are
// carried without "cleanup"; no surviving source table exists for them (see
// DESIGN.md), so this is this repo's own reconstruction of the shape spec
// §4.4 names (reset, ADC/spectrum setup, AGC, output format, FIR taps).
var demodInitTable = []demodRegWrite{
	{0, 0x01, 0x14, 1}, // soft reset: assert
	{0, 0x01, 0x10, 1}, // soft reset: release
	{0, 0x15, 0x00, 1}, // DAGC target off during bring-up
	{0, 0x16, 0x00, 1},
	{0, 0x06, 0x80, 1}, // ADC power: both channels on
	{0, 0x08, 0x40, 1}, // spectrum: non-inverted by default
	{0, 0x09, 0x00, 1},
	{0, 0x0A, 0x02, 1}, // output format: signed IQ
	{0, 0x0C, 0x00, 1}, // RSSI averaging window
	{0, 0x0D, 0x00, 1},
	{0, 0x0E, 0x40, 1}, // FIR filter enable
	{0, 0x0F, 0x00, 1},
	{0, 0x10, 0x00, 1}, // FIR coefficient bank, entry 0..15
	{0, 0x11, 0x00, 1},
	{0, 0x12, 0x00, 1},
	{0, 0x13, 0x00, 1},
	{0, 0x14, 0x01, 1},
	{0, 0x16, 0xFC, 1},
	{0, 0x17, 0x11, 1},
	{0, 0x18, 0x10, 1},
	{0, 0x19, 0x00, 1}, // IF offset multiplier, programmed again in open
	{0, 0x1A, 0x00, 1},
	{0, 0x1B, 0x00, 1},
	{0, 0x1C, 0x40, 1},
	{0, 0x1D, 0x00, 1},
	{0, 0x1E, 0x00, 1},
	{0, 0x1F, 0x14, 1},
	{0, 0x20, 0x01, 1},
	{0, 0x21, 0x00, 1},
	{0, 0x22, 0x22, 1},
	{0, 0x23, 0x01, 1},
	{0, 0x24, 0x00, 1}, // clock output disabled
	{1, 0x01, 0x14, 1}, // I2C bridge reset before first use
	{1, 0x01, 0x10, 1},
	{0, 0x3E, 0x00, 1}, // PPM correction offset, programmed again per set_sample_rate
	{0, 0x3F, 0x00, 1},
}
