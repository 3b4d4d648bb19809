package apu

// channel holds the generator state shared (with some fields only meaningful
// for specific channels) by all four sound channels.
type channel struct {
	enabled    bool
	dacEnabled bool

	left, right bool // NR51 panning

	duty      uint8  // channels 1/2: duty selector, 0..3
	volume    uint8  // current (post-envelope) volume, 0..15
	lengthMax uint16 // 64 for ch1/2/4, 256 for ch3
	length    uint16 // current length counter

	envelopePace    uint8
	envelopeUp      bool
	envelopeCounter uint8
	envelopeLatched bool

	period    uint16 // 11-bit frequency period (NRx3/NRx4)
	freqTimer int     // cycles remaining until the next period reload

	// channel 1 sweep
	sweepPace    uint8
	sweepDown    bool
	sweepSlope   uint8
	sweepEnabled bool
	sweepTimer   uint8
	shadowFreq   uint16
	sweepNegUsed bool

	dutyStep uint8

	// channel 3 wave
	waveIndex  uint8
	waveSample uint8

	// channel 4 noise
	lfsr        uint16
	shortMode   bool
	clockShift  uint8
	divisorCode uint8
	noiseTimer  int

	lengthEnable bool

	muted bool // debug-only solo/mute, not part of hardware state
}

// sweepTarget computes period ± (period >> slope),
// reporting whether the result overflows 11 bits.
func (c *channel) sweepTarget() (next uint16, overflow bool) {
	delta := c.shadowFreq >> c.sweepSlope
	if c.sweepDown {
		if delta > c.shadowFreq {
			next = 0
		} else {
			next = c.shadowFreq - delta
		}
	} else {
		next = c.shadowFreq + delta
	}
	return next, next > 0x7FF
}
