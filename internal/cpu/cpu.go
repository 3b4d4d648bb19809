// Package cpu implements the DMG instruction set interpreter: fetch-decode-
// execute, interrupt dispatch, HALT, and OAM DMA stepping.
package cpu

import "github.com/dmgo-emu/dmgo/internal/addr"

// Bus is the memory-and-peripherals contract the CPU drives each tick.
// It covers ordinary reads/writes plus the two pieces of state that the
// CPU, rather than the bus, is responsible for stepping: OAM DMA and the
// interrupt-request register (routed through ordinary Read/Write at
// addr.IE/addr.IF, exactly like real hardware).
type Bus interface {
	Read(address uint16) byte
	Write(address uint16, value byte)
	DMAActive() bool
	StepDMA()
}

// CPU holds the SM83 register file and execution state.
type CPU struct {
	Registers

	IME          bool
	imeScheduled bool // EI executed this tick; arms imeArmed for the tick after next
	imeArmed     bool // the instruction following EI has now run; IME goes live after it
	halted       bool
	stopped      bool

	bus Bus
}

// New creates a CPU wired to bus with power-up register values.
func New(bus Bus) *CPU {
	c := &CPU{bus: bus}
	c.Registers.PowerUp()
	return c
}

// Tick executes one logical step (a DMA byte copy, an interrupt dispatch,
// a HALT no-op, or one instruction) and returns the number of machine
// cycles it consumed.
func (c *CPU) Tick() int {
	if c.bus.DMAActive() {
		c.bus.StepDMA()
		return 1
	}

	if cycles, handled := c.serviceInterrupts(); handled {
		return cycles
	}

	if c.halted {
		return 1
	}

	enableIME := c.imeArmed
	c.imeArmed = false

	cycles := c.step() / 4

	if c.imeScheduled {
		c.imeScheduled = false
		c.imeArmed = true
	}
	if enableIME {
		c.IME = true
	}

	return cycles
}

// serviceInterrupts dispatches the lowest-numbered pending interrupt when
// IME is set, or silently wakes a halted CPU when IME is clear.
func (c *CPU) serviceInterrupts() (cycles int, handled bool) {
	ie := c.bus.Read(addr.IE)
	ifr := c.bus.Read(addr.IF) & 0x1F
	pending := ie & ifr
	if pending == 0 {
		return 0, false
	}

	if !c.IME {
		if c.halted {
			c.halted = false
		}
		return 0, false
	}

	var bitIdx uint8
	for bitIdx = 0; bitIdx < 5; bitIdx++ {
		if pending&(1<<bitIdx) != 0 {
			break
		}
	}

	c.IME = false
	c.bus.Write(addr.IF, ifr&^(1<<bitIdx))
	c.push16(c.PC)
	c.PC = addr.Interrupt(bitIdx).Vector()
	c.halted = false
	// IME is set back to true as the handler starts, so another pending
	// enabled interrupt is dispatched on the next Tick.
	c.imeArmed = false
	c.imeScheduled = false
	c.IME = true

	return 5, true
}

func (c *CPU) fetch8() byte {
	v := c.bus.Read(c.PC)
	c.PC++
	return v
}

func (c *CPU) fetch16() uint16 {
	lo := c.fetch8()
	hi := c.fetch8()
	return uint16(hi)<<8 | uint16(lo)
}

func (c *CPU) push16(v uint16) {
	c.SP--
	c.bus.Write(c.SP, byte(v>>8))
	c.SP--
	c.bus.Write(c.SP, byte(v))
}

func (c *CPU) pop16() uint16 {
	lo := c.bus.Read(c.SP)
	c.SP++
	hi := c.bus.Read(c.SP)
	c.SP++
	return uint16(hi)<<8 | uint16(lo)
}

// get8/set8 implement the standard SM83 3-bit register index used
// throughout the opcode table: 0=B 1=C 2=D 3=E 4=H 5=L 6=(HL) 7=A.
func (c *CPU) get8(idx uint8) byte {
	switch idx {
	case 0:
		return c.B
	case 1:
		return c.C
	case 2:
		return c.D
	case 3:
		return c.E
	case 4:
		return c.H
	case 5:
		return c.L
	case 6:
		return c.bus.Read(c.HL())
	default:
		return c.A
	}
}

func (c *CPU) set8(idx uint8, v byte) {
	switch idx {
	case 0:
		c.B = v
	case 1:
		c.C = v
	case 2:
		c.D = v
	case 3:
		c.E = v
	case 4:
		c.H = v
	case 5:
		c.L = v
	case 6:
		c.bus.Write(c.HL(), v)
	default:
		c.A = v
	}
}

// rp16 implements the 2-bit register-pair index used by LD rp,nn / ADD
// HL,rp / INC rp / DEC rp: 0=BC 1=DE 2=HL 3=SP.
func (c *CPU) rp16(idx uint8) uint16 {
	switch idx {
	case 0:
		return c.BC()
	case 1:
		return c.DE()
	case 2:
		return c.HL()
	default:
		return c.SP
	}
}

func (c *CPU) setRp16(idx uint8, v uint16) {
	switch idx {
	case 0:
		c.SetBC(v)
	case 1:
		c.SetDE(v)
	case 2:
		c.SetHL(v)
	default:
		c.SP = v
	}
}

func (c *CPU) condition(idx uint8) bool {
	switch idx {
	case 0:
		return !c.flag(flagZ)
	case 1:
		return c.flag(flagZ)
	case 2:
		return !c.flag(flagC)
	default:
		return c.flag(flagC)
	}
}
