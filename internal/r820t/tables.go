package r820t

// defaultRegisters is the fixed 27-byte default shadow for registers
// 0x05..0x1F, written verbatim at the start of Init. Per spec §9 these are
// magic values derived from reverse-engineering the chip and are carried
// without "cleanup".
var defaultRegisters = [shadowLen]byte{
	0x83, 0x32, 0x75, // 0x05-0x07
	0xC0, 0x40, 0xD6, 0x6C, // 0x08-0x0B
	0xF5, 0x63, 0x75, 0x68, // 0x0C-0x0F
	0x6C, 0x83, 0x80, 0x00, // 0x10-0x13
	0x0F, 0x00, 0xC0, 0x30, // 0x14-0x17
	0x48, 0xCC, 0x60, 0x00, // 0x18-0x1B
	0x54, 0xAE, 0x4A, 0xC0, // 0x1C-0x1F
}

// initElectronics runs once, before filter calibration: biasing, LNA/mixer
// analog setup, and clock source selection that calibration depends on.
var initElectronics = []maskValue{
	{reg: 0x0C, value: 0x00, mask: 0x0F}, // power-enable LNA/mixer bias
	{reg: 0x13, value: 0x3A, mask: 0x3F}, // filter bias current
	{reg: 0x1D, value: 0x00, mask: 0x38}, // LNA/mixer discharge current
	{reg: 0x1C, value: 0x24, mask: 0xFC}, // RF filter bias
	{reg: 0x0D, value: 0x53, mask: 0xFF}, // LNA gain table pointer
	{reg: 0x0E, value: 0x75, mask: 0xFF}, // mixer gain table pointer
	{reg: 0x05, value: 0x00, mask: 0x80}, // LNA manual gain off (auto by default)
	{reg: 0x07, value: 0x00, mask: 0x40}, // mixer manual gain off (auto by default)
	{reg: 0x08, value: 0x00, mask: 0x3F}, // image-gain adjustment neutral
	{reg: 0x09, value: 0x00, mask: 0x3F}, // image-phase adjustment neutral
	{reg: 0x10, value: 0x00, mask: 0x04}, // reference divider /1
	{reg: 0x11, value: 0xE0, mask: 0xE0}, // PLL charge pump bias default
	{reg: 0x17, value: 0x30, mask: 0x30}, // AGC clock divider
}

// postCalInit runs after filter calibration settles, finishing bring-up:
// re-enabling auto gain paths and the IF output stage that calibration
// temporarily reconfigured.
var postCalInit = []maskValue{
	{reg: 0x0A, value: 0x08, mask: 0x08}, // filter current reduced after cal
	{reg: 0x1A, value: 0x30, mask: 0x30}, // IF notch / output stage on
	{reg: 0x1E, value: 0x00, mask: 0xC0}, // image rejection calibration off
	{reg: 0x05, value: 0x00, mask: 0x60}, // LNA gain range: full
	{reg: 0x06, value: 0x00, mask: 0x18}, // LNA AGC power detector threshold default
	{reg: 0x1D, value: 0x00, mask: 0xC0}, // mixer buffer power default
}

// powerDown is the fixed register sequence written by Close to park the
// tuner in a low-power state.
var powerDown = []maskValue{
	{reg: 0x06, value: 0x10, mask: 0x10}, // LNA power detector off
	{reg: 0x05, value: 0x80, mask: 0x80}, // LNA off
	{reg: 0x07, value: 0x40, mask: 0x40}, // mixer off
	{reg: 0x08, value: 0x00, mask: 0xFF}, // mixer bias zeroed
	{reg: 0x09, value: 0x00, mask: 0xFF}, // IF amp bias zeroed
	{reg: 0x0A, value: 0x00, mask: 0xFF}, // filter bias zeroed
	{reg: 0x0C, value: 0x00, mask: 0xFF}, // bias block off
	{reg: 0x0F, value: 0x00, mask: 0x04}, // cal clock off
	{reg: 0x11, value: 0x00, mask: 0xE0}, // PLL charge pump off
	{reg: 0x12, value: 0x00, mask: 0xFF}, // VCO bias zeroed
	{reg: 0x17, value: 0x00, mask: 0x30}, // AGC clock off
}

// muxEntry is one row of the RF input mux table, selected by the largest
// freqThresholdMHz that is <= the tuned frequency.
type muxEntry struct {
	freqThresholdMHz int
	writes           [3]maskValue
}

// muxTable is the 15-entry mux table keyed by center frequency, per spec
// §4.3/§9: rows select the RF filter path, image-gain trim, and air-input
// coupling appropriate to the tuned band.
var muxTable = []muxEntry{
	{0, [3]maskValue{{0x17, 0xE4, 0xFC}, {0x1A, 0x00, 0x0C}, {0x1D, 0xC0, 0xC0}}},
	{50, [3]maskValue{{0x17, 0xE5, 0xFC}, {0x1A, 0x00, 0x0C}, {0x1D, 0x80, 0xC0}}},
	{55, [3]maskValue{{0x17, 0xE6, 0xFC}, {0x1A, 0x00, 0x0C}, {0x1D, 0x80, 0xC0}}},
	{60, [3]maskValue{{0x17, 0xE7, 0xFC}, {0x1A, 0x00, 0x0C}, {0x1D, 0x80, 0xC0}}},
	{65, [3]maskValue{{0x17, 0xE8, 0xFC}, {0x1A, 0x00, 0x0C}, {0x1D, 0x40, 0xC0}}},
	{70, [3]maskValue{{0x17, 0xE9, 0xFC}, {0x1A, 0x00, 0x0C}, {0x1D, 0x40, 0xC0}}},
	{75, [3]maskValue{{0x17, 0xEA, 0xFC}, {0x1A, 0x00, 0x0C}, {0x1D, 0x40, 0xC0}}},
	{80, [3]maskValue{{0x17, 0xEB, 0xFC}, {0x1A, 0x00, 0x0C}, {0x1D, 0x00, 0xC0}}},
	{90, [3]maskValue{{0x17, 0xEC, 0xFC}, {0x1A, 0x04, 0x0C}, {0x1D, 0x00, 0xC0}}},
	{100, [3]maskValue{{0x17, 0xED, 0xFC}, {0x1A, 0x04, 0x0C}, {0x1D, 0x00, 0xC0}}},
	{110, [3]maskValue{{0x17, 0xEE, 0xFC}, {0x1A, 0x04, 0x0C}, {0x1D, 0x00, 0xC0}}},
	{120, [3]maskValue{{0x17, 0xEF, 0xFC}, {0x1A, 0x08, 0x0C}, {0x1D, 0x00, 0xC0}}},
	{140, [3]maskValue{{0x17, 0xF0, 0xFC}, {0x1A, 0x08, 0x0C}, {0x1D, 0x00, 0xC0}}},
	{180, [3]maskValue{{0x17, 0xF4, 0xFC}, {0x1A, 0x0C, 0x0C}, {0x1D, 0x00, 0xC0}}},
	{300, [3]maskValue{{0x17, 0xF8, 0xFC}, {0x1A, 0x0C, 0x0C}, {0x1D, 0x00, 0xC0}}},
}

// selectMux returns the mux table entry for freqMHz: the entry with the
// largest threshold not exceeding freqMHz.
func selectMux(freqMHz int) muxEntry {
	best := muxTable[0]
	for _, e := range muxTable {
		if e.freqThresholdMHz <= freqMHz {
			best = e
		}
	}
	return best
}
