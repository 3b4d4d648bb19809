// Package apu implements the DMG Audio Processing Unit: four channel
// generators, a DIV-APU-clocked frame sequencer, and a stereo mixer/
// downsampler.
package apu

import (
	"github.com/dmgo-emu/dmgo/internal/addr"
	"github.com/dmgo-emu/dmgo/internal/bit"
	"github.com/dmgo-emu/dmgo/internal/ioregs"
)

const (
	cpuClockHz   = 4194304
	hostSampleHz = 44100
)

// Apu owns the NR10-NR52/wave-RAM register bank directly (see bus.AudioRegs)
// so it can observe trigger writes without routing through IoRegisters.
type Apu struct {
	enabled  bool
	channels [4]channel

	nr10, nr11, nr12, nr13, nr14 byte
	nr21, nr22, nr23, nr24       byte
	nr30, nr31, nr32, nr33, nr34 byte
	nr41, nr42, nr43, nr44       byte
	nr50, nr51, nr52             byte
	waveRAM                      [16]byte

	vinLeft, vinRight bool
	volLeft, volRight uint8 // NR50 master volume, 0..7 per side

	seqStep int

	mixLeftAcc, mixRightAcc float64
	mixAccumCycles          int

	sampleBuffer    []float32
	cycleAccum      float64
	cyclesPerSample float64
}

// New returns an Apu already powered on with the documented DMG post-boot
// register values, reached by replaying those register writes through the
// normal write path. Channel 1 ends up enabled, the same way the boot
// ROM's own startup-chime writes leave it on real hardware; channels 2-4
// have their trigger bit set too but their DACs are off, so they stay
// silent until software writes fresh envelope/volume settings.
func New() *Apu {
	a := &Apu{cyclesPerSample: float64(cpuClockHz) / float64(hostSampleHz)}
	for i := range a.channels {
		if i == 2 {
			a.channels[i].lengthMax = 256
		} else {
			a.channels[i].lengthMax = 64
		}
	}

	a.enabled = true
	a.Write(addr.NR10, 0x80)
	a.Write(addr.NR11, 0xBF)
	a.Write(addr.NR12, 0xF3)
	a.Write(addr.NR13, 0xFF)
	a.Write(addr.NR14, 0xBF)
	a.Write(addr.NR21, 0x3F)
	a.Write(addr.NR22, 0x00)
	a.Write(addr.NR23, 0x00)
	a.Write(addr.NR24, 0xBF)
	a.Write(addr.NR30, 0x7F)
	a.Write(addr.NR31, 0xFF)
	a.Write(addr.NR32, 0x9F)
	a.Write(addr.NR33, 0x00)
	a.Write(addr.NR34, 0xBF)
	a.Write(addr.NR41, 0xFF)
	a.Write(addr.NR42, 0x00)
	a.Write(addr.NR43, 0x00)
	a.Write(addr.NR44, 0xBF)
	a.Write(addr.NR50, 0x77)
	a.Write(addr.NR51, 0xF3)

	return a
}

func (a *Apu) waveRAMLocked() bool {
	return a.enabled && a.channels[2].enabled && a.channels[2].dacEnabled
}

// Tick advances the Apu by one machine cycle (4 T-cycles), as driven by
// Engine, clocking the frame sequencer whenever the timer's DIV-APU edge
// fires this cycle.
func (a *Apu) Tick(io *ioregs.IoRegisters) {
	if !a.enabled {
		return
	}

	const tcycles = 4
	a.stepGenerators(tcycles)

	if io.Timer.DivApuEdge() {
		a.tickFrameSequencer()
	}
}

func (a *Apu) stepGenerators(cycles int) {
	var left, right float64

	for i := range a.channels {
		c := &a.channels[i]
		if !c.enabled || !c.dacEnabled || c.muted {
			continue
		}

		var sample uint8
		switch i {
		case 0, 1:
			sample = stepSquare(c, cycles)
		case 2:
			sample = a.stepWave(c, cycles)
		case 3:
			sample = stepNoise(c, cycles)
		}

		level := (15.0 - float64(sample)) / 15.0 * 2.0 - 1.0
		if c.left {
			left += level
		}
		if c.right {
			right += level
		}
	}

	left *= (1 + float64(a.volLeft)) * 0.125
	right *= (1 + float64(a.volRight)) * 0.125

	a.mixLeftAcc += left * float64(cycles)
	a.mixRightAcc += right * float64(cycles)
	a.mixAccumCycles += cycles

	a.cycleAccum += float64(cycles)
	for a.cycleAccum >= a.cyclesPerSample {
		a.cycleAccum -= a.cyclesPerSample
		a.pushSample()
	}
}

func (a *Apu) pushSample() {
	if a.mixAccumCycles == 0 {
		a.sampleBuffer = append(a.sampleBuffer, 0, 0)
		return
	}
	left := float32(a.mixLeftAcc / float64(a.mixAccumCycles))
	right := float32(a.mixRightAcc / float64(a.mixAccumCycles))
	a.mixLeftAcc, a.mixRightAcc, a.mixAccumCycles = 0, 0, 0
	a.sampleBuffer = append(a.sampleBuffer, left, right)
}

// DrainSamples returns, and clears, every interleaved stereo sample pair
// accumulated since the last call
func (a *Apu) DrainSamples() []float32 {
	out := a.sampleBuffer
	a.sampleBuffer = nil
	return out
}

// Read implements the bus.AudioRegs read side, applying the read-only/
// write-only bit masks each register has on real hardware.
func (a *Apu) Read(address uint16) byte {
	switch address {
	case addr.NR10:
		return a.nr10 | 0x80
	case addr.NR11:
		return a.nr11 | 0x3F
	case addr.NR12:
		return a.nr12
	case addr.NR13:
		return 0xFF
	case addr.NR14:
		return a.nr14 | 0xBF
	case addr.NR21:
		return a.nr21 | 0x3F
	case addr.NR22:
		return a.nr22
	case addr.NR23:
		return 0xFF
	case addr.NR24:
		return a.nr24 | 0xBF
	case addr.NR30:
		return a.nr30 | 0x7F
	case addr.NR31:
		return 0xFF
	case addr.NR32:
		return a.nr32 | 0x9F
	case addr.NR33:
		return 0xFF
	case addr.NR34:
		return a.nr34 | 0xBF
	case addr.NR41:
		return 0xFF
	case addr.NR42:
		return a.nr42
	case addr.NR43:
		return a.nr43
	case addr.NR44:
		return a.nr44 | 0xBF
	case addr.NR50:
		return a.nr50
	case addr.NR51:
		return a.nr51
	case addr.NR52:
		status := a.nr52Status()
		return status
	}
	if address >= addr.WaveRAMStart && address <= addr.WaveRAMEnd {
		if a.waveRAMLocked() {
			return a.channels[2].waveSample
		}
		return a.waveRAM[address-addr.WaveRAMStart]
	}
	return 0xFF
}

func (a *Apu) nr52Status() byte {
	status := byte(0x70)
	status = bit.SetTo(7, status, a.enabled)
	for i := range a.channels {
		status = bit.SetTo(uint8(i), status, a.channels[i].enabled)
	}
	return status
}

// Write implements the bus.AudioRegs write side, including channel-trigger
// handling on NRx4 bit-7 writes.
func (a *Apu) Write(address uint16, value byte) {
	isWaveRAM := address >= addr.WaveRAMStart && address <= addr.WaveRAMEnd

	if !a.enabled && address != addr.NR52 && !isWaveRAM {
		return
	}

	switch address {
	case addr.NR10:
		a.nr10 = value
		a.writeSweepControl(value)
	case addr.NR11:
		a.nr11 = value
		a.channels[0].duty = bit.ExtractBits(value, 7, 6)
		a.channels[0].length = 64 - uint16(bit.ExtractBits(value, 5, 0))
	case addr.NR12:
		a.nr12 = value
		a.writeEnvelope(&a.channels[0], value)
	case addr.NR13:
		a.nr13 = value
		a.channels[0].period = bit.Combine(a.nr14&0x07, a.nr13)
	case addr.NR14:
		a.writeFreqHighAndControl(&a.channels[0], 0, value)
	case addr.NR21:
		a.nr21 = value
		a.channels[1].duty = bit.ExtractBits(value, 7, 6)
		a.channels[1].length = 64 - uint16(bit.ExtractBits(value, 5, 0))
	case addr.NR22:
		a.nr22 = value
		a.writeEnvelope(&a.channels[1], value)
	case addr.NR23:
		a.nr23 = value
		a.channels[1].period = bit.Combine(a.nr24&0x07, a.nr23)
	case addr.NR24:
		a.writeFreqHighAndControl(&a.channels[1], 1, value)
	case addr.NR30:
		a.nr30 = value
		a.channels[2].dacEnabled = bit.IsSet(7, value)
		if !a.channels[2].dacEnabled {
			a.channels[2].enabled = false
		}
	case addr.NR31:
		a.nr31 = value
		a.channels[2].length = 256 - uint16(value)
	case addr.NR32:
		a.nr32 = value
		a.channels[2].volume = bit.ExtractBits(value, 6, 5)
	case addr.NR33:
		a.nr33 = value
		a.channels[2].period = bit.Combine(a.nr34&0x07, a.nr33)
	case addr.NR34:
		a.writeFreqHighAndControl(&a.channels[2], 2, value)
	case addr.NR41:
		a.nr41 = value
		a.channels[3].length = 64 - uint16(bit.ExtractBits(value, 5, 0))
	case addr.NR42:
		a.nr42 = value
		a.writeEnvelope(&a.channels[3], value)
	case addr.NR43:
		a.nr43 = value
		a.channels[3].clockShift = bit.ExtractBits(value, 7, 4)
		a.channels[3].shortMode = bit.IsSet(3, value)
		a.channels[3].divisorCode = bit.ExtractBits(value, 2, 0)
	case addr.NR44:
		a.writeFreqHighAndControl(&a.channels[3], 3, value)
	case addr.NR50:
		a.nr50 = value
		a.vinLeft, a.vinRight = bit.IsSet(7, value), bit.IsSet(3, value)
		a.volLeft = bit.ExtractBits(value, 6, 4)
		a.volRight = bit.ExtractBits(value, 2, 0)
	case addr.NR51:
		a.nr51 = value
		for i := range a.channels {
			a.channels[i].right = bit.IsSet(uint8(i), value)
			a.channels[i].left = bit.IsSet(uint8(i+4), value)
		}
	case addr.NR52:
		a.writePowerControl(value)
	}

	if isWaveRAM {
		offset := address - addr.WaveRAMStart
		if a.waveRAMLocked() {
			a.waveRAM[a.channels[2].waveIndex>>1] = value
			a.channels[2].waveSample = value
		} else {
			a.waveRAM[offset] = value
		}
	}
}

func (a *Apu) writeEnvelope(c *channel, value byte) {
	c.volume = bit.ExtractBits(value, 7, 4)
	c.envelopeUp = bit.IsSet(3, value)
	c.envelopePace = bit.ExtractBits(value, 2, 0)
	c.dacEnabled = c.volume > 0 || c.envelopeUp
	if !c.dacEnabled {
		c.enabled = false
	}
	c.envelopeLatched = false
}

func (a *Apu) writeSweepControl(value byte) {
	c := &a.channels[0]
	prevDown := c.sweepDown
	c.sweepPace = bit.ExtractBits(value, 6, 4)
	c.sweepDown = bit.IsSet(3, value)
	c.sweepSlope = bit.ExtractBits(value, 2, 0)
	if !c.sweepDown && prevDown && c.sweepNegUsed {
		c.enabled = false
	}
}

// writeFreqHighAndControl implements NRx4: upper 3 period bits, length
// enable, and (on a 0->1 bit-7 write) the channel trigger sequence.
func (a *Apu) writeFreqHighAndControl(c *channel, idx int, value byte) {
	switch idx {
	case 0:
		a.nr14 = value
		c.period = bit.Combine(value&0x07, a.nr13)
	case 1:
		a.nr24 = value
		c.period = bit.Combine(value&0x07, a.nr23)
	case 2:
		a.nr34 = value
		c.period = bit.Combine(value&0x07, a.nr33)
	case 3:
		a.nr44 = value
	}

	c.lengthEnable = bit.IsSet(6, value)
	if c.length == 0 {
		c.length = c.lengthMax
	}

	if bit.IsSet(7, value) {
		a.triggerChannel(c, idx)
	}
}

func (a *Apu) triggerChannel(c *channel, idx int) {
	if c.dacEnabled {
		c.enabled = true
	}
	c.envelopeLatched = false
	if c.envelopePace == 0 {
		c.envelopeCounter = 8
	} else {
		c.envelopeCounter = c.envelopePace
	}

	switch idx {
	case 0:
		c.dutyStep = 0
		c.freqTimer = squarePeriodCycles(c)
		c.sweepEnabled = c.sweepPace > 0 || c.sweepSlope > 0
		c.sweepTimer = c.sweepPace
		if c.sweepTimer == 0 {
			c.sweepTimer = 8
		}
		c.shadowFreq = c.period
		c.sweepNegUsed = false
		if c.sweepSlope != 0 {
			if _, overflow := c.sweepTarget(); overflow {
				c.enabled = false
			}
		}
	case 1:
		c.dutyStep = 0
		c.freqTimer = squarePeriodCycles(c)
	case 2:
		c.freqTimer = wavePeriodCycles(c)
		c.waveIndex = 0
		c.waveSample = a.waveNibble(0)
	case 3:
		c.lfsr = 0x7FFF
		c.noiseTimer = noisePeriodCycles(c)
	}
}

// writePowerControl implements NR52 bit 7: powering off zeroes every other
// audio register and disables all channels
func (a *Apu) writePowerControl(value byte) {
	a.enabled = bit.IsSet(7, value)
	if a.enabled {
		return
	}

	a.nr10, a.nr11, a.nr12, a.nr13, a.nr14 = 0, 0, 0, 0, 0
	a.nr21, a.nr22, a.nr23, a.nr24 = 0, 0, 0, 0
	a.nr30, a.nr31, a.nr32, a.nr33, a.nr34 = 0, 0, 0, 0, 0
	a.nr41, a.nr42, a.nr43, a.nr44 = 0, 0, 0, 0
	a.nr50, a.nr51 = 0, 0
	a.vinLeft, a.vinRight = false, false
	a.volLeft, a.volRight = 0, 0
	a.channels = [4]channel{}
	for i := range a.channels {
		a.channels[i].lengthMax = 64
	}
	a.channels[2].lengthMax = 256
}
