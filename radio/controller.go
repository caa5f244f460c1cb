// Package radio implements the supervisor that owns the dongle, the
// decoder worker, and the audio sink: the public start/stop/tune/scan
// surface and the state machine backing it.
package radio

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/google/radioreceiver/demod"
	"github.com/google/radioreceiver/internal/decoder"
)

// blockReadResult is what a read goroutine reports back to the run loop.
type blockReadResult struct {
	data []byte
	err  error
	freq int
	gen  int
}

// Controller is the public radio supervisor. All fields below this
// comment are owned exclusively by the run loop goroutine; reach them only
// from inside a closure sent through enqueue. Public getters instead read
// a separate, mutex-guarded snapshot the run loop keeps up to date.
type Controller struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	opener DeviceOpener
	sink   AudioSink

	cmdCh     chan func(*Controller)
	readCh    chan blockReadResult
	decodedCh chan decoder.Result

	snapMu   sync.Mutex
	snapshot snapshot

	state    State
	dev      Device
	worker   *decoder.Worker
	recorder RecordingSink

	freq           int
	pendingFreq    int
	hasPendingFreq bool
	tuneGen        int

	mode          demod.Descriptor
	squelch       float64
	volume        float64
	stereoEnabled bool
	stereoActive  bool

	ppm          int
	manualGainDB *float64

	onError func(error)
	startCB func(error)
	stopCB  func(error)

	requestingBlocks int
	playingBlocks    int

	scanning            bool
	scanMin, scanMax    int
	scanStep            int
	scanFreq            int

	ppmEstimating bool
	ppmAccum      float64
	ppmBlocks     int
	ppmEstimate   int
}

type snapshot struct {
	freq         int
	mode         demod.Descriptor
	playing      bool
	scanning     bool
	stereoActive bool
	ppmEstimate  int
}

// New builds a Controller that opens dongles via opener and plays
// demodulated audio into sink. The run loop goroutine starts immediately,
// in StateOff; the caller drives it with Start.
func New(opener DeviceOpener, sink AudioSink) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		ctx:       ctx,
		cancel:    cancel,
		opener:    opener,
		sink:      sink,
		cmdCh:     make(chan func(*Controller), 8),
		readCh:    make(chan blockReadResult, maxInFlight),
		state:     StateOff,
		mode:      demod.WBFMDescriptor(),
		freq:      88_500_000,
		volume:    1,
		stereoEnabled: true,
	}
	c.updateSnapshot()
	c.wg.Add(1)
	go c.run()
	return c
}

// Shutdown stops the controller's run loop and any decoder worker
// goroutine, for use during process teardown or test cleanup. It does not
// attempt a graceful radio Stop first; callers that want the dongle closed
// cleanly should call Stop and wait for its callback before Shutdown.
func (c *Controller) Shutdown() {
	c.cancel()
	c.wg.Wait()
}

func (c *Controller) enqueue(fn func(*Controller)) {
	select {
	case c.cmdCh <- fn:
	case <-c.ctx.Done():
	}
}

func (c *Controller) run() {
	defer c.wg.Done()
	for {
		select {
		case <-c.ctx.Done():
			fmt.Fprintf(os.Stderr, "[radio] returning from controller run loop\n")
			return
		case fn := <-c.cmdCh:
			fn(c)
		case br := <-c.readCh:
			c.handleBlockRead(br)
		case res := <-c.decodedCh:
			c.handleDecoded(res)
		}
	}
}

func (c *Controller) updateSnapshot() {
	c.snapMu.Lock()
	c.snapshot = snapshot{
		freq:         c.freq,
		mode:         c.mode,
		playing:      c.state == StatePlaying,
		scanning:     c.scanning,
		stereoActive: c.stereoActive,
		ppmEstimate:  c.ppmEstimate,
	}
	c.snapMu.Unlock()
}

func (c *Controller) raiseError(err error) {
	if c.onError != nil {
		c.onError(err)
		return
	}
	// No handler installed: spec §7 calls this "raised as fatal". Panicking
	// on the run loop goroutine surfaces it loudly instead of swallowing it.
	panic(err)
}

// Start requests the device and walks STARTING/USB -> STARTING/TUNER ->
// STARTING/ALL_ON -> PLAYING. cb, if non-nil, is invoked exactly once with
// the outcome (nil on success).
func (c *Controller) Start(cb func(error)) {
	c.enqueue(func(c *Controller) {
		if c.state != StateOff {
			if cb != nil {
				cb(&InvalidStateError{Op: "Start", State: c.state})
			}
			return
		}
		c.startCB = cb
		c.state = StateStartingUSB
		c.updateSnapshot()

		opener, ppm, gain := c.opener, c.ppm, c.manualGainDB
		go func() {
			dev, err := opener(ppm, gain)
			c.enqueue(func(c *Controller) { c.onDeviceOpened(dev, err) })
		}()
	})
}

func (c *Controller) onDeviceOpened(dev Device, err error) {
	if err != nil {
		c.failStart(err)
		return
	}
	c.dev = dev
	c.state = StateStartingTuner
	c.updateSnapshot()

	dev2, freq := c.dev, c.freq
	go func() {
		_, err := dev2.SetSampleRate(SampleRate)
		if err == nil {
			err = dev2.SetCenterFrequency(freq)
		}
		if err != nil {
			err = classifyDeviceError(err)
		}
		c.enqueue(func(c *Controller) { c.onTunerReady(err) })
	}()
}

func (c *Controller) onTunerReady(err error) {
	if err != nil {
		c.failStart(err)
		return
	}
	c.state = StateStartingAllOn
	c.updateSnapshot()

	dev := c.dev
	go func() {
		err := dev.ResetBuffer()
		c.enqueue(func(c *Controller) { c.onBufferReset(err) })
	}()
}

func (c *Controller) onBufferReset(err error) {
	if err != nil {
		c.failStart(err)
		return
	}
	c.state = StatePlaying
	c.tuneGen++
	c.updateSnapshot()
	c.startWorker()
	c.issueRead()
	c.issueRead()

	cb := c.startCB
	c.startCB = nil
	if cb != nil {
		cb(nil)
	}
}

func (c *Controller) failStart(err error) {
	c.state = StateOff
	c.updateSnapshot()
	if c.dev != nil {
		c.dev.Close()
		c.dev = nil
	}
	cb := c.startCB
	c.startCB = nil
	if cb != nil {
		cb(err)
	} else {
		c.raiseError(err)
	}
}

func (c *Controller) startWorker() {
	if c.worker != nil {
		return
	}
	c.decodedCh = make(chan decoder.Result, maxInFlight)
	c.worker = decoder.NewWorker(c.ctx, c.decodedCh)
	c.worker.Start(&c.wg)
	c.worker.SetMode(c.mode)
}

// issueRead starts one bulk read goroutine if fewer than maxInFlight reads
// are outstanding, per spec §4.8's requestingBlocks<=2 invariant.
func (c *Controller) issueRead() {
	if c.requestingBlocks >= maxInFlight || c.dev == nil {
		return
	}
	c.requestingBlocks++
	dev, freq, gen := c.dev, c.freq, c.tuneGen
	go func() {
		data, err := dev.ReadSamples(SamplesPerBuf)
		select {
		case c.readCh <- blockReadResult{data: data, err: err, freq: freq, gen: gen}:
		case <-c.ctx.Done():
		}
	}()
}

func (c *Controller) handleBlockRead(br blockReadResult) {
	c.requestingBlocks--
	if br.err != nil {
		c.enterStopping(&TransportError{Err: br.err})
		return
	}

	switch c.state {
	case StatePlaying, StateScanningDetecting:
		if c.playingBlocks < maxInFlight && c.worker != nil {
			c.playingBlocks++
			c.worker.Submit(decoder.Request{
				Bytes:      br.data,
				InStereo:   c.stereoEnabled,
				FreqOffset: 0,
				Echo:       br,
			})
		}
	}

	switch c.state {
	case StatePlaying:
		c.issueRead()
	case StateChgFreq:
		c.checkChgFreqDrained()
	case StateStoppingAllOn:
		c.checkStopDrained()
	case StateScanningTuning:
		c.checkScanTuningDrained()
	}
}

func (c *Controller) handleDecoded(res decoder.Result) {
	c.playingBlocks--
	br, _ := res.Echo.(blockReadResult)

	c.stereoActive = res.Stereo
	c.updateSnapshot()

	if c.ppmEstimating {
		c.accumulatePPM(res.Left)
	}

	switch c.state {
	case StatePlaying:
		c.deliver(res)
		if c.hasPendingFreq {
			c.state = StateChgFreq
			c.updateSnapshot()
			c.checkChgFreqDrained()
		}
	case StateScanningDetecting:
		c.onScanDetected(res.SignalLevel, br.freq)
	case StateChgFreq:
		c.checkChgFreqDrained()
	case StateStoppingAllOn:
		c.checkStopDrained()
	}
}

// deliver applies squelch and volume and writes the block to the audio
// sink (and the recorder, if one is attached).
func (c *Controller) deliver(res decoder.Result) {
	if float64(res.SignalLevel) < c.squelch {
		return
	}
	left := scaleSamples(res.Left, c.volume)
	right := scaleSamples(res.Right, c.volume)
	if c.sink != nil {
		c.sink.Write(left, right)
	}
	if c.recorder != nil {
		c.recorder.Write(left, right)
	}
}

func scaleSamples(in []float32, gain float64) []float32 {
	if gain == 1 {
		return in
	}
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = v * float32(gain)
	}
	return out
}

// Stop drains in-flight blocks, closes the tuner and the USB handle, and
// returns to OFF. cb, if non-nil, is invoked exactly once with the outcome.
func (c *Controller) Stop(cb func(error)) {
	c.enqueue(func(c *Controller) {
		if c.state == StateOff {
			if cb != nil {
				cb(nil)
			}
			return
		}
		c.stopCB = cb
		c.scanning = false
		c.state = StateStoppingAllOn
		c.updateSnapshot()
		c.checkStopDrained()
	})
}

func (c *Controller) checkStopDrained() {
	if c.state != StateStoppingAllOn || c.requestingBlocks != 0 || c.playingBlocks != 0 {
		return
	}
	var err error
	if c.worker != nil {
		c.worker.Stop()
		c.worker = nil
	}
	if c.dev != nil {
		if cerr := c.dev.Close(); cerr != nil {
			err = cerr
		}
		c.dev = nil
	}
	c.state = StateOff
	c.updateSnapshot()

	cb := c.stopCB
	c.stopCB = nil
	if cb != nil {
		cb(err)
	} else if err != nil {
		c.raiseError(err)
	}
}

// enterStopping reports err and, unless already tearing down, drives the
// state machine to STOPPING/ALL_ON so the dongle still gets closed, per
// spec §7's "errors during PLAYING move the state machine to STOPPING"
// policy.
func (c *Controller) enterStopping(err error) {
	c.raiseError(err)
	if c.state == StateOff || c.state == StateStoppingAllOn {
		return
	}
	c.scanning = false
	c.state = StateStoppingAllOn
	c.updateSnapshot()
	c.checkStopDrained()
}
