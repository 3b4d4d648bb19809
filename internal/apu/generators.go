package apu

import "github.com/dmgo-emu/dmgo/internal/bit"

// dutyPatterns gives, for each of the four duty selectors, the high/low
// amplitude across an 8-step cycle.
var dutyPatterns = [4][8]uint8{
	{0, 0, 0, 0, 0, 0, 0, 1}, // 12.5%
	{1, 0, 0, 0, 0, 0, 0, 1}, // 25%
	{1, 0, 0, 0, 0, 1, 1, 1}, // 50%
	{0, 1, 1, 1, 1, 1, 1, 0}, // 75%
}

// noiseDivisors maps NR43 bits 2:0 to the noise channel's base divisor.
var noiseDivisors = [8]int{8, 16, 32, 48, 64, 80, 96, 112}

func squarePeriodCycles(c *channel) int {
	p := 2048 - int(c.period&0x7FF)
	if p <= 0 {
		return 0
	}
	return p * 4
}

func wavePeriodCycles(c *channel) int {
	p := 2048 - int(c.period&0x7FF)
	if p <= 0 {
		return 0
	}
	return p * 2
}

func noisePeriodCycles(c *channel) int {
	p := noiseDivisors[c.divisorCode&0x7] << c.clockShift
	if p <= 0 {
		return 0
	}
	return p
}

// stepSquare advances a pulse channel's duty-step counter and returns its
// current amplitude in [0,15].
func stepSquare(c *channel, cycles int) uint8 {
	period := squarePeriodCycles(c)
	if period == 0 {
		return 0
	}
	if c.freqTimer <= 0 {
		c.freqTimer = period
	}
	c.freqTimer -= cycles
	for c.freqTimer <= 0 {
		c.freqTimer += period
		c.dutyStep = (c.dutyStep + 1) & 0x7
	}

	if dutyPatterns[c.duty&0x3][c.dutyStep] == 0 {
		return 0
	}
	return c.volume
}

// stepWave advances channel 3's 32-step sample index into waveRAM and
// returns the shifted-down nibble.
func (a *Apu) stepWave(c *channel, cycles int) uint8 {
	period := wavePeriodCycles(c)
	if period == 0 {
		return 0
	}
	if c.freqTimer <= 0 {
		c.freqTimer = period
	}
	c.freqTimer -= cycles
	for c.freqTimer <= 0 {
		c.freqTimer += period
		c.waveIndex = (c.waveIndex + 1) & 0x1F
	}

	sample := a.waveNibble(c.waveIndex)
	c.waveSample = sample

	switch c.volume & 0x3 {
	case 0:
		return 0
	case 1:
		return sample
	case 2:
		return sample >> 1
	case 3:
		return sample >> 2
	default:
		return sample
	}
}

func (a *Apu) waveNibble(index uint8) uint8 {
	b := a.waveRAM[index>>1]
	if index&1 == 0 {
		return b >> 4
	}
	return b & 0x0F
}

// stepNoise advances channel 4's LFSR: the register is shifted right and
// lsb XOR bit1 (taken before the shift, not inverted) is written into bit
// 14, and also into bit 6 in short mode. triggerChannel seeds the register
// with 0x7FFF.
func stepNoise(c *channel, cycles int) uint8 {
	period := noisePeriodCycles(c)
	if period == 0 {
		return 0
	}
	if c.noiseTimer <= 0 {
		c.noiseTimer = period
	}
	c.noiseTimer -= cycles
	for c.noiseTimer <= 0 {
		c.noiseTimer += period
		newBit := (c.lfsr ^ (c.lfsr >> 1)) & 1
		c.lfsr = (c.lfsr >> 1) | (newBit << 14)
		if c.shortMode {
			c.lfsr = (c.lfsr &^ (1 << 6)) | (newBit << 6)
		}
	}

	if bit.IsSet(0, uint8(c.lfsr)) {
		return c.volume
	}
	return 0
}
