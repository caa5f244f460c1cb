package r820t

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeI2C is an in-memory stand-in for the RTL2832U's I2C bridge, used so
// these tests never touch libusb.
type fakeI2C struct {
	regs      [256]byte
	lockAfter int // number of reg 0x02 reads before reporting locked
	reads     int
}

func (f *fakeI2C) I2CWriteReg(addr uint8, reg, value byte) error {
	f.regs[reg] = value
	return nil
}

func (f *fakeI2C) I2CReadRegBuffer(addr, reg byte, length int) ([]byte, error) {
	buf := make([]byte, length)
	for i := range buf {
		v := f.regs[i]
		if i == 0x02 {
			f.reads++
			if f.reads >= f.lockAfter {
				v |= 0x40 // bit 6 unreversed; reverseByte flips it into place
			}
		}
		buf[i] = reverseByte(v)
	}
	return buf, nil
}

func TestInitWritesDefaultShadow(t *testing.T) {
	i2c := &fakeI2C{lockAfter: 1}
	tuner := New(i2c, 28_800_000)
	require.NoError(t, tuner.Init())

	// reg 0x1F is not touched by any later init step, so its shadow value
	// should still match the seeded default.
	assert.Equal(t, defaultRegisters[0x1F-0x05], tuner.shadow[0x1F-0x05])
}

func TestReadRegBitReversal(t *testing.T) {
	i2c := &fakeI2C{}
	i2c.regs[0x02] = 0x01 // 0b00000001
	tuner := New(i2c, 28_800_000)
	v, err := tuner.readReg(0x02)
	require.NoError(t, err)
	assert.Equal(t, byte(0x80), v) // bit-reversed 0x01 -> 0x80
}

func TestPLLLockGateSucceedsOnSecondPoll(t *testing.T) {
	i2c := &fakeI2C{lockAfter: 2}
	tuner := New(i2c, 28_800_000)
	require.NoError(t, tuner.Init())

	err := tuner.SetFrequency(100_000_000)
	assert.NoError(t, err)
}

func TestPLLLockGateFailsWhenNeverLocked(t *testing.T) {
	i2c := &fakeI2C{lockAfter: 1_000_000}
	tuner := New(i2c, 28_800_000)
	require.NoError(t, tuner.Init())

	err := tuner.SetFrequency(100_000_000)
	assert.ErrorIs(t, err, ErrPLLNotLocked)
}

func TestSelectMuxPicksLargestThresholdBelowFreq(t *testing.T) {
	e := selectMux(95)
	assert.Equal(t, 90, e.freqThresholdMHz)

	e = selectMux(3)
	assert.Equal(t, 0, e.freqThresholdMHz)

	e = selectMux(1000)
	assert.Equal(t, 300, e.freqThresholdMHz)
}

func TestGainStepMonotonic(t *testing.T) {
	prev := -1
	for db := 0.0; db <= 50; db += 1.0 {
		step := gainStepForDB(db)
		assert.GreaterOrEqual(t, step, prev)
		assert.GreaterOrEqual(t, step, 0)
		assert.LessOrEqual(t, step, gainSteps)
		prev = step
	}
}

func TestSetManualGainSplitsLnaAndMixer(t *testing.T) {
	i2c := &fakeI2C{lockAfter: 1}
	tuner := New(i2c, 28_800_000)
	require.NoError(t, tuner.Init())
	require.NoError(t, tuner.SetManualGain(20))

	step := gainStepForDB(20)
	assert.Equal(t, byte((step+1)/2), i2c.regs[0x05]&0x0F)
	assert.Equal(t, byte(step/2), i2c.regs[0x07]&0x0F)
}
