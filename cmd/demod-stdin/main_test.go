package main

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/radioreceiver/demod"
)

func TestBytesToIQCentering(t *testing.T) {
	iq := bytesToIQ([]byte{128, 128, 0, 255})
	assert.InDelta(t, 0.005, iq.I[0], 1e-6)
	assert.InDelta(t, 0.005, iq.Q[0], 1e-6)
	assert.InDelta(t, -0.995, iq.I[1], 1e-6)
	assert.InDelta(t, 0.99609375-0.995, iq.Q[1], 1e-6)
}

func TestDescriptorForUnknownModeErrors(t *testing.T) {
	_, err := descriptorFor("BOGUS", defaultMaxF, defaultBandwidth)
	assert.Error(t, err)
}

func TestDescriptorForKnownModes(t *testing.T) {
	for _, mod := range []string{"AM", "WBFM", "NBFM"} {
		_, err := descriptorFor(mod, defaultMaxF, defaultBandwidth)
		assert.NoError(t, err)
	}
}

func TestRunProducesInterleavedPCMAndEOF(t *testing.T) {
	in := bytes.NewReader(make([]byte, 4096))
	var out bytes.Buffer

	mode := demod.WBFMDescriptor().New(defaultInRate)
	err := run(in, &out, mode, 1024, true)
	require.Equal(t, io.EOF, err)

	assert.True(t, out.Len() > 0)
	assert.Zero(t, out.Len()%4, "output must be whole 16-bit stereo frames")

	var sample int16
	require.NoError(t, binary.Read(bytes.NewReader(out.Bytes()[:2]), binary.LittleEndian, &sample))
}
