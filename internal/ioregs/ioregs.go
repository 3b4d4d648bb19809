// Package ioregs is the bit-exact register file for joypad, timers, LCD
// control, DMA and interrupts. Bus forwards every FF00-FF7F/FFFF access
// here except the audio range (NR10 through wave RAM), which goes to the
// Apu; Ppu and Apu are handed the same instance each tick.
package ioregs

import "github.com/dmgo-emu/dmgo/internal/addr"

// IoRegisters owns the raw FF00-FF7F register bank plus the interrupt
// enable register, and the richer sub-objects (Joypad, Timer) that need
// more than byte storage to behave correctly.
type IoRegisters struct {
	regs [0x80]byte
	ie   byte

	Joypad Joypad
	Timer  Timer
}

// New returns a register file with the documented power-up values.
func New() *IoRegisters {
	io := &IoRegisters{}
	io.Timer.io = io
	io.PowerUp()
	return io
}

// PowerUp resets every register to its documented post-boot value.
func (io *IoRegisters) PowerUp() {
	io.regs = [0x80]byte{}
	io.ie = 0x00
	io.Joypad = Joypad{actionNibble: 0x0F, directionNibble: 0x0F, selectBits: 0x00}
	io.Joypad.requestInterrupt = func() { io.RequestInterrupt(addr.Joypad) }
	io.Timer = Timer{io: io, clock: 0xAB00}
	io.regs[addr.LCDC-addr.IOStart] = 0x91
	io.regs[addr.BGP-addr.IOStart] = 0xFC
	io.regs[addr.IF-addr.IOStart] = 0x01
	io.regs[addr.STAT-addr.IOStart] = 0x85
}

func (io *IoRegisters) raw(a uint16) byte       { return io.regs[a-addr.IOStart] }
func (io *IoRegisters) setRaw(a uint16, v byte) { io.regs[a-addr.IOStart] = v }

// Read implements the Bus-facing register read, applying each register's
// read-only masks and write-only blackouts.
func (io *IoRegisters) Read(a uint16) byte {
	switch a {
	case addr.IEAddr:
		return io.ie
	case addr.P1:
		return io.Joypad.Read()
	case addr.DIV:
		return io.Timer.ReadDIV()
	case addr.TIMA:
		return io.Timer.tima
	case addr.TMA:
		return io.Timer.tma
	case addr.TAC:
		return io.Timer.tac | 0xF8
	case addr.IF:
		return io.raw(a) | 0xE0
	case addr.STAT:
		return io.raw(a) | 0x80
	case addr.LY:
		return io.raw(a)
	default:
		return io.raw(a)
	}
}

// Write implements the Bus-facing register write.
func (io *IoRegisters) Write(a uint16, v byte) {
	switch a {
	case addr.IEAddr:
		io.ie = v & 0x1F
	case addr.P1:
		io.Joypad.WriteSelect(v)
	case addr.DIV:
		io.Timer.WriteDIV()
	case addr.TIMA:
		io.Timer.tima = v
	case addr.TMA:
		io.Timer.tma = v
	case addr.TAC:
		io.Timer.WriteTAC(v)
	case addr.IF:
		io.setRaw(a, v&0x1F)
	case addr.LY:
		// read-only; ignored.
	case addr.STAT:
		io.setRaw(a, (io.raw(a)&0x07)|(v&0x78))
	default:
		io.setRaw(a, v)
	}
}

// RequestInterrupt sets the IF bit for the given source.
func (io *IoRegisters) RequestInterrupt(i addr.Interrupt) {
	cur := io.raw(addr.IF)
	io.setRaw(addr.IF, cur|(1<<i.Bit()))
}

// SetLY bypasses the LY read-only gate; only the Ppu may call this.
func (io *IoRegisters) SetLY(v byte) {
	io.setRaw(addr.LY, v)
	io.updateCoincidence()
}

// SetSTATMode bypasses the STAT read-only gate for the low two mode bits;
// only the Ppu may call this.
func (io *IoRegisters) SetSTATMode(mode byte) {
	io.setRaw(addr.STAT, (io.raw(addr.STAT)&0xFC)|(mode&0x03))
}

func (io *IoRegisters) updateCoincidence() {
	ly := io.raw(addr.LY)
	lyc := io.raw(addr.LYC)
	stat := io.raw(addr.STAT) &^ 0x04
	if ly == lyc {
		stat |= 0x04
	}
	io.setRaw(addr.STAT, stat)
}

// STATInterruptEnabled reports whether the given STAT source bit (3=hblank,
// 4=vblank, 5=oam, 6=lyc) is enabled.
func (io *IoRegisters) STATInterruptEnabled(bit uint8) bool {
	return io.raw(addr.STAT)&(1<<bit) != 0
}

func (io *IoRegisters) LCDC() byte { return io.raw(addr.LCDC) }
func (io *IoRegisters) SCY() byte  { return io.raw(addr.SCY) }
func (io *IoRegisters) SCX() byte  { return io.raw(addr.SCX) }
func (io *IoRegisters) LY() byte   { return io.raw(addr.LY) }
func (io *IoRegisters) LYC() byte  { return io.raw(addr.LYC) }
func (io *IoRegisters) BGP() byte  { return io.raw(addr.BGP) }
func (io *IoRegisters) OBP0() byte { return io.raw(addr.OBP0) }
func (io *IoRegisters) OBP1() byte { return io.raw(addr.OBP1) }
func (io *IoRegisters) WY() byte   { return io.raw(addr.WY) }
func (io *IoRegisters) WX() byte   { return io.raw(addr.WX) }
