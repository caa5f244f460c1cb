// Command demod-stdin demodulates raw u8 I/Q samples read from stdin and
// writes 16-bit signed little-endian interleaved stereo PCM to stdout. It
// exists for the same reason the teacher's own testing binaries do: a
// pipe-friendly way to exercise the demodulators without a dongle
// attached, per spec §6.
package main

import (
	"bufio"
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/radioreceiver/demod"
	"github.com/google/radioreceiver/dsp"
)

const (
	defaultBlockSize = 65536
	defaultInRate    = 1_024_000
	defaultOutRate   = 48_000
	defaultMaxF      = 75_000
	defaultBandwidth = 10_000
)

func main() {
	// ContinueOnError (rather than flag.Parse's default ExitOnError) lets
	// us exit 1 on an unknown flag per spec §6, instead of flag's own
	// default exit code of 2.
	fs := flag.NewFlagSet("demod-stdin", flag.ContinueOnError)
	var (
		modFlag   = fs.String("mod", "WBFM", "demodulation mode: AM, WBFM, or NBFM")
		mono      = fs.Bool("mono", false, "force mono output")
		blockSize = fs.Int("blocksize", defaultBlockSize, "I/Q samples read per block")
		inRate    = fs.Int("inrate", defaultInRate, "input sample rate in Hz")
		outRate   = fs.Int("outrate", defaultOutRate, "output sample rate in Hz (informational; demodulators pick their own)")
		maxF      = fs.Int("maxf", defaultMaxF, "NBFM maximum frequency deviation in Hz")
		bandwidth = fs.Int("bandwidth", defaultBandwidth, "AM/SSB occupied bandwidth in Hz")
	)
	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(1)
	}
	_ = outRate

	desc, err := descriptorFor(*modFlag, *maxF, *bandwidth)
	if err != nil {
		fmt.Fprintf(os.Stderr, "demod-stdin: %s\n", err)
		os.Exit(1)
	}

	mode := desc.New(*inRate)
	if err := run(os.Stdin, os.Stdout, mode, *blockSize, !*mono); err != nil && err != io.EOF {
		fmt.Fprintf(os.Stderr, "demod-stdin: %s\n", err)
		os.Exit(1)
	}
}

func descriptorFor(mod string, maxF, bandwidth int) (demod.Descriptor, error) {
	switch mod {
	case "AM":
		return demod.AMDescriptor(bandwidth), nil
	case "WBFM":
		return demod.WBFMDescriptor(), nil
	case "NBFM":
		return demod.NBFMDescriptor(maxF), nil
	default:
		return demod.Descriptor{}, fmt.Errorf("unknown -mod %q", mod)
	}
}

// run reads blockSize I/Q sample pairs (2*blockSize bytes) at a time,
// demodulates each block through mode, and writes interleaved 16-bit PCM.
// It returns io.EOF on a clean end of input.
func run(r io.Reader, w io.Writer, mode demod.Mode, blockSize int, stereo bool) error {
	in := bufio.NewReaderSize(r, 2*blockSize)
	out := bufio.NewWriterSize(w, 4*blockSize)
	defer out.Flush()

	buf := make([]byte, 2*blockSize)
	for {
		n, err := io.ReadFull(in, buf)
		if n == 0 {
			if err == io.EOF {
				return io.EOF
			}
			return err
		}
		if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
			return err
		}

		iq := bytesToIQ(buf[:n])
		result := mode.Demodulate(iq, stereo)
		if err := writePCM(out, result); err != nil {
			return err
		}

		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return out.Flush()
		}
	}
}

// bytesToIQ converts interleaved u8 I/Q samples to [-1, 1]-ish floats,
// matching the conversion internal/decoder.Decoder applies to dongle
// samples: I/Q = byte/128 - 0.995.
func bytesToIQ(b []byte) dsp.IQ {
	n := len(b) / 2
	i := make([]float32, n)
	q := make([]float32, n)
	for k := 0; k < n; k++ {
		i[k] = float32(b[2*k])/128 - 0.995
		q[k] = float32(b[2*k+1])/128 - 0.995
	}
	return dsp.IQ{I: i, Q: q}
}

func writePCM(w io.Writer, r demod.Result) error {
	n := len(r.Left)
	frame := make([]int16, 0, n*2)
	for k := 0; k < n; k++ {
		left := r.Left[k]
		right := left
		if k < len(r.Right) {
			right = r.Right[k]
		}
		frame = append(frame, floatToPCM16(left), floatToPCM16(right))
	}
	return binary.Write(w, binary.LittleEndian, frame)
}

func floatToPCM16(f float32) int16 {
	v := f * 32767
	switch {
	case v > 32767:
		v = 32767
	case v < -32768:
		v = -32768
	}
	return int16(v)
}
