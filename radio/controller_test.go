package radio

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDevice is a Device that never touches USB: ReadSamples blocks until
// fed by the test, and every other call just counts invocations.
type fakeDevice struct {
	mu sync.Mutex

	setCenterFreqCalls int
	resetBufferCalls   int
	closeCalls         int

	readSamples chan []byte
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{readSamples: make(chan []byte, 16)}
}

func (f *fakeDevice) SetSampleRate(rateHz int) (int, error) { return rateHz, nil }

func (f *fakeDevice) SetCenterFrequency(hz int) error {
	f.mu.Lock()
	f.setCenterFreqCalls++
	f.mu.Unlock()
	return nil
}

func (f *fakeDevice) ResetBuffer() error {
	f.mu.Lock()
	f.resetBufferCalls++
	f.mu.Unlock()
	return nil
}

func (f *fakeDevice) ReadSamples(n int) ([]byte, error) {
	buf := <-f.readSamples
	if buf == nil {
		buf = make([]byte, n)
		for i := range buf {
			buf[i] = 128
		}
	}
	return buf, nil
}

func (f *fakeDevice) SetAutoGain() error           { return nil }
func (f *fakeDevice) SetManualGain(db float64) error { return nil }

func (f *fakeDevice) Close() error {
	f.mu.Lock()
	f.closeCalls++
	f.mu.Unlock()
	return nil
}

func (f *fakeDevice) feed(n int) {
	for i := 0; i < n; i++ {
		f.readSamples <- nil
	}
}

type fakeSink struct {
	mu    sync.Mutex
	calls int
}

func (s *fakeSink) Write(left, right []float32) error {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return nil
}

func newTestController(dev *fakeDevice, sink *fakeSink) *Controller {
	opener := func(ppm int, gainDB *float64) (Device, error) { return dev, nil }
	return New(opener, sink)
}

func startAndWait(t *testing.T, c *Controller) {
	t.Helper()
	done := make(chan error, 1)
	c.Start(func(err error) { done <- err })
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(200 * time.Millisecond):
		t.Fatal("start did not complete within 200ms")
	}
}

// S1: start/stop with a fake USB that always succeeds.
func TestStartStop(t *testing.T) {
	dev := newFakeDevice()
	dev.feed(4)
	c := newTestController(dev, &fakeSink{})
	defer c.Shutdown()

	startAndWait(t, c)
	assert.True(t, c.IsPlaying())

	stopped := make(chan error, 1)
	c.Stop(func(err error) { stopped <- err })
	select {
	case err := <-stopped:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("stop did not complete")
	}

	assert.False(t, c.IsPlaying())
	dev.mu.Lock()
	assert.Equal(t, 1, dev.closeCalls)
	dev.mu.Unlock()
}

// S2: a small retune (<= 300 kHz) does not issue a hardware retune or
// buffer reset.
func TestRetuneSmallSkipsHardwareTune(t *testing.T) {
	dev := newFakeDevice()
	dev.feed(4)
	c := newTestController(dev, &fakeSink{})
	defer c.Shutdown()
	startAndWait(t, c)

	c.SetFrequency(88_700_000) // 88.5 -> 88.7 MHz, delta 200 kHz
	dev.feed(4)

	require.Eventually(t, func() bool {
		return c.GetFrequency() == 88_700_000
	}, time.Second, 5*time.Millisecond)

	dev.mu.Lock()
	assert.Equal(t, 0, dev.setCenterFreqCalls)
	assert.Equal(t, 0, dev.resetBufferCalls)
	dev.mu.Unlock()
}

// S3: a large retune issues exactly one set_center_frequency and one
// reset_buffer.
func TestRetuneLargeIssuesHardwareTune(t *testing.T) {
	dev := newFakeDevice()
	dev.feed(4)
	c := newTestController(dev, &fakeSink{})
	defer c.Shutdown()
	startAndWait(t, c)

	c.SetFrequency(100_100_000) // 88.5 -> 100.1 MHz
	dev.feed(4)

	require.Eventually(t, func() bool {
		return c.GetFrequency() == 100_100_000
	}, time.Second, 5*time.Millisecond)

	dev.mu.Lock()
	assert.Equal(t, 1, dev.setCenterFreqCalls)
	assert.Equal(t, 1, dev.resetBufferCalls)
	dev.mu.Unlock()
}
