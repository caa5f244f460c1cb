package audiosink

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWavRecorderWritesValidHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	rec, err := NewWavRecorder(path, 48000)
	require.NoError(t, err)

	left := []float32{0, 0.5, -0.5, 1}
	right := []float32{0, -0.5, 0.5, -1}
	require.NoError(t, rec.Write(left, right))
	require.NoError(t, rec.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var chunkID [4]byte
	require.NoError(t, binary.Read(f, binary.LittleEndian, &chunkID))
	assert.Equal(t, "RIFF", string(chunkID[:]))

	var chunkSize uint32
	require.NoError(t, binary.Read(f, binary.LittleEndian, &chunkSize))
	assert.Equal(t, uint32(36+len(left)*4), chunkSize)

	info, err := f.Stat()
	require.NoError(t, err)
	assert.Equal(t, int64(44+len(left)*4), info.Size())
}

func TestFloatToPCM16Clamps(t *testing.T) {
	assert.Equal(t, int16(32767), floatToPCM16(2.0))
	assert.Equal(t, int16(-32768), floatToPCM16(-2.0))
	assert.Equal(t, int16(0), floatToPCM16(0))
}
