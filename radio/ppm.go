package radio

import "math"

// ppmEstimationBlocks is how many decoded blocks' left-channel mean is
// accumulated before EstimatePPM settles on a correction, per spec §4.8.
const ppmEstimationBlocks = 50

// EstimatePPM starts (true) or cancels (false) accumulating a crystal PPM
// correction estimate from decoded audio.
func (c *Controller) EstimatePPM(enable bool) {
	c.enqueue(func(c *Controller) {
		c.ppmEstimating = enable
		if enable {
			c.ppmAccum = 0
			c.ppmBlocks = 0
		}
	})
}

// accumulatePPM folds one decoded block's left-channel mean into the
// running PPM estimate, finalizing it after ppmEstimationBlocks blocks.
func (c *Controller) accumulatePPM(left []float32) {
	if len(left) == 0 {
		return
	}
	var sum float64
	for _, v := range left {
		sum += float64(v)
	}
	c.ppmAccum += sum / float64(len(left))
	c.ppmBlocks++

	if c.ppmBlocks < ppmEstimationBlocks {
		return
	}
	meanOffset := c.ppmAccum / float64(ppmEstimationBlocks)
	if c.freq != 0 {
		c.ppmEstimate = int(math.Round(float64(c.ppm) - 1e6*(75000*meanOffset)/float64(c.freq)))
	}
	c.ppmEstimating = false
	c.updateSnapshot()
}
