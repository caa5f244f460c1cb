package radio

// SetFrequency requests a center-frequency change. In PLAYING it enters
// CHG_FREQ and waits for in-flight blocks to drain before retuning; while
// already in CHG_FREQ, the latest call wins (coalesced), per spec §4.8.
func (c *Controller) SetFrequency(hz int) {
	c.enqueue(func(c *Controller) {
		switch c.state {
		case StatePlaying:
			c.pendingFreq = hz
			c.hasPendingFreq = true
			c.state = StateChgFreq
			c.updateSnapshot()
			c.checkChgFreqDrained()
		case StateChgFreq:
			c.pendingFreq = hz
			c.hasPendingFreq = true
		default:
			c.raiseError(&InvalidStateError{Op: "SetFrequency", State: c.state})
		}
	})
}

// checkChgFreqDrained performs the pending retune once every in-flight
// block has been accounted for.
func (c *Controller) checkChgFreqDrained() {
	if c.state != StateChgFreq || c.requestingBlocks != 0 || c.playingBlocks != 0 {
		return
	}
	c.performRetune()
}

// performRetune applies c.pendingFreq, re-tuning the hardware and
// resetting the USB buffer only when the jump exceeds retuneThreshold, per
// spec §8 S2/S3.
func (c *Controller) performRetune() {
	newFreq := c.pendingFreq
	c.hasPendingFreq = false

	var err error
	if absInt(newFreq-c.freq) > retuneThreshold {
		if c.dev != nil {
			err = c.dev.SetCenterFrequency(newFreq)
			if err == nil {
				err = c.dev.ResetBuffer()
			}
		}
	}

	c.freq = newFreq
	c.tuneGen++
	c.updateSnapshot()

	if err != nil {
		c.enterStopping(classifyDeviceError(err))
		return
	}

	c.state = StatePlaying
	c.updateSnapshot()
	c.issueRead()
	c.issueRead()
}
