package decoder

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/radioreceiver/demod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBytesToIQCentering(t *testing.T) {
	iq := bytesToIQ([]byte{127, 129, 0, 255})
	require.Len(t, iq.I, 2)
	assert.InDelta(t, float64(127)/128-0.995, float64(iq.I[0]), 1e-6)
	assert.InDelta(t, float64(129)/128-0.995, float64(iq.Q[0]), 1e-6)
	assert.InDelta(t, float64(0)/128-0.995, float64(iq.I[1]), 1e-6)
	assert.InDelta(t, float64(255)/128-0.995, float64(iq.Q[1]), 1e-6)
}

func TestHeterodyneZeroOffsetIsNoop(t *testing.T) {
	d := New()
	iq := bytesToIQ(make([]byte, 20))
	before := append([]float32{}, iq.I...)
	d.heterodyne(iq, 0)
	assert.Equal(t, before, iq.I)
}

func TestHeterodynePreservesEnergy(t *testing.T) {
	d := New()
	b := make([]byte, 200)
	for i := range b {
		b[i] = byte(128 + i%16)
	}
	iq := bytesToIQ(b)

	var before float64
	for k := range iq.I {
		before += float64(iq.I[k])*float64(iq.I[k]) + float64(iq.Q[k])*float64(iq.Q[k])
	}

	d.heterodyne(iq, 1000)

	var after float64
	for k := range iq.I {
		after += float64(iq.I[k])*float64(iq.I[k]) + float64(iq.Q[k])*float64(iq.Q[k])
	}

	assert.InDelta(t, before, after, before*0.01)
}

func TestProcessReturnsEchoUnchanged(t *testing.T) {
	d := New()
	req := Request{
		Bytes:      make([]byte, 4096),
		InStereo:   false,
		FreqOffset: 0,
		Echo:       "marker",
	}
	res := d.Process(req)
	assert.Equal(t, "marker", res.Echo)
}

func TestWorkerPreservesSubmissionOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	resCh := make(chan Result, 8)
	w := NewWorker(ctx, resCh)
	var wg sync.WaitGroup
	w.Start(&wg)

	for i := 0; i < 5; i++ {
		w.Submit(Request{Bytes: make([]byte, 4096), Echo: i})
		select {
		case res := <-resCh:
			assert.Equal(t, i, res.Echo)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for result")
		}
	}

	w.SetMode(demod.NBFMDescriptor(5000))
	w.Submit(Request{Bytes: make([]byte, 4096), Echo: "after-mode-change"})
	select {
	case res := <-resCh:
		assert.Equal(t, "after-mode-change", res.Echo)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for result")
	}
}

// TestWorkerModeChangeAppliesBeforeLaterSubmit actually races a SetMode
// against a Submit issued immediately after it by the same goroutine, the
// way the controller's run loop does (SetFrequency/Scan can interleave
// with Submit between two enqueued callbacks). With two independent
// channels, Go's select could let the worker pick up the queued Submit
// before the SetMode sent first, decoding with the stale mode. Each
// iteration alternates the mode and checks w.decoder.mode's concrete type
// right after the matching Result arrives — safe because the channel
// receive happens-after the worker goroutine's Process call, which
// happens-after its SetMode call for the same iteration.
func TestWorkerModeChangeAppliesBeforeLaterSubmit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	resCh := make(chan Result, 1)
	w := NewWorker(ctx, resCh)
	var wg sync.WaitGroup
	w.Start(&wg)

	wbfm := demod.WBFMDescriptor()
	nbfm := demod.NBFMDescriptor(5000)

	for i := 0; i < 200; i++ {
		wantNBFM := i%2 == 0
		mode := wbfm
		if wantNBFM {
			mode = nbfm
		}
		w.SetMode(mode)
		w.Submit(Request{Bytes: make([]byte, 4096), Echo: i})

		select {
		case res := <-resCh:
			assert.Equal(t, i, res.Echo, "result order must match submission order")
			_, isNBFM := w.decoder.mode.(*demod.NBFM)
			assert.Equal(t, wantNBFM, isNBFM, "mode change must apply before the Submit issued right after it")
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for result")
		}
	}
}
