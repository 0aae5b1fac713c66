package audio

// Sample is one decoded 8-bit PCM waveform with its loop region, in
// sample-index units (not bytes).
type Sample struct {
	Data      []int8
	LoopStart uint32
	LoopLen   uint32
}

// Channel is one of the mixer's four playback voices.
type Channel struct {
	sample   Sample
	position uint32 // Q16.16 fixed point, integer part indexes Data
	step     uint32 // Q16.16 per-output-frame advance
	volume   uint8  // 0..64
	active   bool
}

// advance moves position by step and returns the sample value to mix
// in for the frame just produced, handling loop wrap / deactivation
// per §4.6's render() wording.
func (c *Channel) advance() int8 {
	idx := c.position >> 16
	var v int8
	if int(idx) < len(c.sample.Data) {
		v = c.sample.Data[idx]
	}

	c.position += c.step

	length := uint32(len(c.sample.Data))
	if (c.position >> 16) >= length {
		if c.sample.LoopLen > 0 {
			over := c.position - length<<16
			c.position = c.sample.LoopStart<<16 + over%(c.sample.LoopLen<<16)
		} else {
			c.active = false
		}
	}
	return v
}
