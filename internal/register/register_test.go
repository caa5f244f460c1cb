package register

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTransport stands in for usbtransport.Transport: reads return whatever
// was last written to the same (value, index) pair, defaulting to zero.
type fakeTransport struct {
	mem map[[2]uint16][]byte

	lastWriteValue, lastWriteIndex uint16
	lastWriteData                 []byte
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{mem: make(map[[2]uint16][]byte)}
}

func (f *fakeTransport) ControlWrite(value, index uint16, data []byte) error {
	f.lastWriteValue, f.lastWriteIndex, f.lastWriteData = value, index, append([]byte(nil), data...)
	f.mem[[2]uint16{value, index}] = append([]byte(nil), data...)
	return nil
}

func (f *fakeTransport) ControlRead(value, index uint16, length int) ([]byte, error) {
	got := f.mem[[2]uint16{value, index}]
	out := make([]byte, length)
	copy(out, got)
	return out, nil
}

func TestWriteRegMaskPlainWriteOnFullMask(t *testing.T) {
	ft := newFakeTransport()
	r := New(ft)

	require.NoError(t, r.WriteRegMask(BlockSys, 0x01, 0x5A, 0xFF))
	assert.Equal(t, []byte{0x5A}, ft.lastWriteData)
}

// TestWriteRegMaskDoesNotReproduceOrOnlyBug pins the read-modify-write fix:
// (old &^ mask) | (value & mask), not a plain OR of value into old.
func TestWriteRegMaskDoesNotReproduceOrOnlyBug(t *testing.T) {
	ft := newFakeTransport()
	r := New(ft)

	require.NoError(t, r.WriteReg(BlockSys, 0x10, 0xF0, 1))
	require.NoError(t, r.WriteRegMask(BlockSys, 0x10, 0x00, 0x0F))

	got, err := r.ReadReg(BlockSys, 0x10, 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xF0), got, "low nibble must be cleared, not OR'd with 0x00")
}

func TestWriteRegMaskPreservesUnmaskedBits(t *testing.T) {
	ft := newFakeTransport()
	r := New(ft)

	require.NoError(t, r.WriteReg(BlockSys, 0x20, 0b1010_1010, 1))
	require.NoError(t, r.WriteRegMask(BlockSys, 0x20, 0b0000_1111, 0x0F))

	got, err := r.ReadReg(BlockSys, 0x20, 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(0b1010_1111), got)
}

func TestWriteReg16And32LittleEndian(t *testing.T) {
	ft := newFakeTransport()
	r := New(ft)

	require.NoError(t, r.WriteReg(BlockUSB, 0x02, 0x1234, 2))
	assert.Equal(t, []byte{0x34, 0x12}, ft.lastWriteData)

	require.NoError(t, r.WriteReg(BlockUSB, 0x04, 0x01020304, 4))
	assert.Equal(t, []byte{0x04, 0x03, 0x02, 0x01}, ft.lastWriteData)
}

func TestWriteDemodRegAddressingFormula(t *testing.T) {
	ft := newFakeTransport()
	r := New(ft)

	require.NoError(t, r.WriteDemodReg(BlockDemod, 0x19, 0x42, 1))
	assert.Equal(t, uint16(0x19<<8|0x20), ft.lastWriteValue)
	assert.Equal(t, uint16(BlockDemod), ft.lastWriteIndex)
}

func TestWriteDemodRegBigEndian(t *testing.T) {
	ft := newFakeTransport()
	r := New(ft)

	require.NoError(t, r.WriteDemodReg(BlockDemod, 0x19, 0x010203, 3))
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, ft.lastWriteData)
}

func TestOpenCloseI2CWriteExpectedValues(t *testing.T) {
	ft := newFakeTransport()
	r := New(ft)

	require.NoError(t, r.OpenI2C())
	assert.Equal(t, []byte{0x18}, ft.lastWriteData)

	require.NoError(t, r.CloseI2C())
	assert.Equal(t, []byte{0x10}, ft.lastWriteData)
}

func TestI2CReadRegWritesAddrByteBeforeReading(t *testing.T) {
	ft := newFakeTransport()
	r := New(ft)

	_, err := r.I2CReadReg(0x34, 0x00)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00}, ft.lastWriteData, "the read must write [reg] to select it before reading back")
	assert.Equal(t, uint16(0x34), ft.lastWriteValue)
}

func TestI2CReadRegBufferLength(t *testing.T) {
	ft := newFakeTransport()
	r := New(ft)

	buf, err := r.I2CReadRegBuffer(0x34, 0x05, 4)
	require.NoError(t, err)
	assert.Len(t, buf, 4)
}
