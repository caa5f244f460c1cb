package radio

import "github.com/google/radioreceiver/demod"

// GetFrequency returns the currently tuned center frequency in Hz.
func (c *Controller) GetFrequency() int {
	c.snapMu.Lock()
	defer c.snapMu.Unlock()
	return c.snapshot.freq
}

// SetMode installs desc as the active demodulator. It takes effect on the
// next decoded block; in-flight blocks still use the previous mode.
func (c *Controller) SetMode(desc demod.Descriptor) {
	c.enqueue(func(c *Controller) {
		c.mode = desc
		if c.worker != nil {
			c.worker.SetMode(desc)
		}
		c.updateSnapshot()
	})
}

// GetMode returns the currently installed demodulator descriptor.
func (c *Controller) GetMode() demod.Descriptor {
	c.snapMu.Lock()
	defer c.snapMu.Unlock()
	return c.snapshot.mode
}

// SetSquelch sets the minimum signal level (same scale as demod.Result's
// SignalLevel) below which decoded audio is dropped instead of delivered.
func (c *Controller) SetSquelch(level float64) {
	c.enqueue(func(c *Controller) { c.squelch = level })
}

// IsScanning reports whether a Scan sweep is in progress.
func (c *Controller) IsScanning() bool {
	c.snapMu.Lock()
	defer c.snapMu.Unlock()
	return c.snapshot.scanning
}

// IsPlaying reports whether the controller is in the PLAYING state.
func (c *Controller) IsPlaying() bool {
	c.snapMu.Lock()
	defer c.snapMu.Unlock()
	return c.snapshot.playing
}

// IsStereo reports whether the most recently decoded block carried a
// locked stereo pilot.
func (c *Controller) IsStereo() bool {
	c.snapMu.Lock()
	defer c.snapMu.Unlock()
	return c.snapshot.stereoActive
}

// EnableStereo enables or disables requesting stereo decoding from the
// installed demodulator (WBFM only; other modes ignore it).
func (c *Controller) EnableStereo(enable bool) {
	c.enqueue(func(c *Controller) { c.stereoEnabled = enable })
}

// SetVolume sets the linear gain applied to decoded audio before it
// reaches the sink and recorder.
func (c *Controller) SetVolume(v float64) {
	c.enqueue(func(c *Controller) { c.volume = v })
}

// SetCorrectionPPM sets the crystal correction applied the next time the
// dongle is opened.
func (c *Controller) SetCorrectionPPM(ppm int) {
	c.enqueue(func(c *Controller) { c.ppm = ppm })
}

// SetAutoGain switches the tuner to automatic gain control.
func (c *Controller) SetAutoGain() {
	c.enqueue(func(c *Controller) {
		c.manualGainDB = nil
		if c.dev != nil {
			if err := c.dev.SetAutoGain(); err != nil {
				c.raiseError(&TransportError{Err: err})
			}
		}
	})
}

// SetManualGain switches the tuner to a fixed manual gain in dB.
func (c *Controller) SetManualGain(db float64) {
	c.enqueue(func(c *Controller) {
		c.manualGainDB = &db
		if c.dev != nil {
			if err := c.dev.SetManualGain(db); err != nil {
				c.raiseError(&TransportError{Err: err})
			}
		}
	})
}

// GetPPMEstimate returns the most recently completed PPM estimate (0 if
// EstimatePPM has never finished a pass).
func (c *Controller) GetPPMEstimate() int {
	c.snapMu.Lock()
	defer c.snapMu.Unlock()
	return c.snapshot.ppmEstimate
}

// StartRecording tees decoded audio into sink until StopRecording is
// called.
func (c *Controller) StartRecording(sink RecordingSink) {
	c.enqueue(func(c *Controller) { c.recorder = sink })
}

// StopRecording detaches and closes the current recording sink, if any.
func (c *Controller) StopRecording() {
	c.enqueue(func(c *Controller) {
		if c.recorder != nil {
			c.recorder.Close()
			c.recorder = nil
		}
	})
}

// SetOnError installs the handler invoked when the controller encounters
// an error it cannot recover from inline. Per spec §7, if no handler is
// installed, such errors are instead treated as fatal.
func (c *Controller) SetOnError(h func(error)) {
	c.enqueue(func(c *Controller) { c.onError = h })
}
