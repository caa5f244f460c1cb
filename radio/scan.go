package radio

// Scan starts sweeping from the current frequency between min and max in
// step increments (wrapping at the ends), stopping once a block's signal
// level exceeds 0.5, per spec §4.8/§8 S4.
func (c *Controller) Scan(min, max, step int) {
	c.enqueue(func(c *Controller) {
		if c.state != StatePlaying {
			c.raiseError(&InvalidStateError{Op: "Scan", State: c.state})
			return
		}
		c.scanMin, c.scanMax, c.scanStep = min, max, step
		c.scanFreq = c.freq
		c.scanning = true
		c.state = StateScanningTuning
		c.updateSnapshot()
		c.checkScanTuningDrained()
	})
}

func (c *Controller) checkScanTuningDrained() {
	if c.state != StateScanningTuning || c.requestingBlocks != 0 || c.playingBlocks != 0 {
		return
	}
	c.advanceScan()
}

// advanceScan steps to the next candidate frequency, retuning if the jump
// exceeds retuneThreshold, then reads exactly one block to evaluate it.
func (c *Controller) advanceScan() {
	next := c.scanFreq + c.scanStep
	if c.scanStep >= 0 {
		if next > c.scanMax {
			next = c.scanMin
		}
	} else {
		if next < c.scanMin {
			next = c.scanMax
		}
	}

	var err error
	if absInt(next-c.scanFreq) > retuneThreshold {
		if c.dev != nil {
			err = c.dev.SetCenterFrequency(next)
			if err == nil {
				err = c.dev.ResetBuffer()
			}
		}
	}

	c.scanFreq = next
	c.freq = next
	c.tuneGen++
	c.updateSnapshot()

	if err != nil {
		c.enterStopping(classifyDeviceError(err))
		return
	}

	c.state = StateScanningDetecting
	c.updateSnapshot()
	c.issueRead()
}

// onScanDetected evaluates one scanned block: a strong enough signal ends
// the scan and settles on that frequency; otherwise the sweep continues.
func (c *Controller) onScanDetected(signalLevel float32, freq int) {
	if signalLevel > 0.5 {
		c.scanning = false
		c.freq = freq
		c.pendingFreq = freq
		c.hasPendingFreq = true
		c.state = StateChgFreq
		c.updateSnapshot()
		c.checkChgFreqDrained()
		return
	}
	c.state = StateScanningTuning
	c.updateSnapshot()
	c.checkScanTuningDrained()
}
