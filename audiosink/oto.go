// Package audiosink implements radio.AudioSink and radio.RecordingSink:
// live playback through the host's audio device, and WAV file recording.
package audiosink

import (
	"fmt"
	"io"
	"math"

	"github.com/ebitengine/oto/v3"
)

// OtoSink plays decoded stereo audio through the system's default audio
// device via oto/v3.
type OtoSink struct {
	ctx    *oto.Context
	player *oto.Player
	pipeW  *pipeWriter
}

// NewOtoSink opens an oto playback context at sampleRate (Hz, mono-per-
// channel rate; decoded audio is always delivered as two channels).
func NewOtoSink(sampleRate int) (*OtoSink, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("audiosink: unable to open oto context: %w", err)
	}
	<-ready

	pw := newPipeWriter()
	player := ctx.NewPlayer(pw)
	player.Play()

	return &OtoSink{ctx: ctx, player: player, pipeW: pw}, nil
}

// Write interleaves left/right into a float32LE frame and blocks until the
// player has accepted it. len(left) must equal len(right).
func (s *OtoSink) Write(left, right []float32) error {
	frame := interleave(left, right)
	_, err := s.pipeW.Write(frame)
	return err
}

// Close stops playback and releases the underlying player.
func (s *OtoSink) Close() error {
	s.player.Close()
	return s.pipeW.Close()
}

// pipeWriter adapts push-style Write calls to the io.Reader oto.NewPlayer
// wants, via an in-memory ring buffer with a small fixed capacity: decoded
// blocks arrive faster than real time, so back-pressure here is expected
// and deliberate.
type pipeWriter struct {
	r      *io.PipeReader
	w      *io.PipeWriter
	closed bool
}

func newPipeWriter() *pipeWriter {
	r, w := io.Pipe()
	return &pipeWriter{r: r, w: w}
}

func (p *pipeWriter) Write(b []byte) (int, error) {
	return p.w.Write(b)
}

func (p *pipeWriter) Read(b []byte) (int, error) {
	return p.r.Read(b)
}

func (p *pipeWriter) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	p.w.Close()
	return p.r.Close()
}

func interleave(left, right []float32) []byte {
	n := len(left)
	if len(right) < n {
		n = len(right)
	}
	out := make([]byte, 0, n*8)
	for i := 0; i < n; i++ {
		out = appendFloat32LE(out, left[i])
		out = appendFloat32LE(out, right[i])
	}
	return out
}

func appendFloat32LE(b []byte, f float32) []byte {
	bits := math.Float32bits(f)
	return append(b, byte(bits), byte(bits>>8), byte(bits>>16), byte(bits>>24))
}
