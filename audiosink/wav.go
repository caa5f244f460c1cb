package audiosink

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

// WavRecorder writes decoded stereo audio to a 16-bit PCM WAVE file. It
// implements radio.RecordingSink.
type WavRecorder struct {
	f          *os.File
	sampleRate int
	dataBytes  uint32
}

// NewWavRecorder creates (or truncates) path and writes a placeholder
// RIFF/WAVE header; the header's size fields are patched in on Close once
// the real sample count is known, following the teacher's pattern of
// deferred-but-explicit file finalization in outputState.routine.
func NewWavRecorder(path string, sampleRate int) (*WavRecorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("audiosink: unable to create %s: %w", path, err)
	}
	r := &WavRecorder{f: f, sampleRate: sampleRate}
	if err := r.writeHeader(0); err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

const (
	bitsPerSample = 16
	numChannels   = 2
)

func (r *WavRecorder) writeHeader(dataBytes uint32) error {
	if _, err := r.f.Seek(0, io.SeekStart); err != nil {
		return err
	}
	byteRate := r.sampleRate * numChannels * bitsPerSample / 8
	blockAlign := numChannels * bitsPerSample / 8

	hdr := struct {
		ChunkID       [4]byte
		ChunkSize     uint32
		Format        [4]byte
		Subchunk1ID   [4]byte
		Subchunk1Size uint32
		AudioFormat   uint16
		NumChannels   uint16
		SampleRate    uint32
		ByteRate      uint32
		BlockAlign    uint16
		BitsPerSample uint16
		Subchunk2ID   [4]byte
		Subchunk2Size uint32
	}{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     36 + dataBytes,
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		Subchunk1ID:   [4]byte{'f', 'm', 't', ' '},
		Subchunk1Size: 16,
		AudioFormat:   1, // PCM
		NumChannels:   numChannels,
		SampleRate:    uint32(r.sampleRate),
		ByteRate:      uint32(byteRate),
		BlockAlign:    uint16(blockAlign),
		BitsPerSample: bitsPerSample,
		Subchunk2ID:   [4]byte{'d', 'a', 't', 'a'},
		Subchunk2Size: dataBytes,
	}
	return binary.Write(r.f, binary.LittleEndian, &hdr)
}

// Write interleaves left/right into 16-bit PCM frames and appends them to
// the file.
func (r *WavRecorder) Write(left, right []float32) error {
	n := len(left)
	if len(right) < n {
		n = len(right)
	}
	frame := make([]int16, 0, n*2)
	for i := 0; i < n; i++ {
		frame = append(frame, floatToPCM16(left[i]), floatToPCM16(right[i]))
	}
	if _, err := r.f.Seek(0, io.SeekEnd); err != nil {
		return err
	}
	if err := binary.Write(r.f, binary.LittleEndian, frame); err != nil {
		return err
	}
	r.dataBytes += uint32(len(frame)) * 2
	return nil
}

// Close patches the RIFF header with the final byte counts and closes the
// file.
func (r *WavRecorder) Close() error {
	if err := r.writeHeader(r.dataBytes); err != nil {
		r.f.Close()
		return err
	}
	return r.f.Close()
}

func floatToPCM16(f float32) int16 {
	v := f * 32767
	switch {
	case v > 32767:
		v = 32767
	case v < -32768:
		v = -32768
	}
	return int16(math.Round(float64(v)))
}
