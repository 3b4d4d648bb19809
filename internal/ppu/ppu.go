// Package ppu implements the dot-driven scanline state machine: OAM scan,
// the background/window pixel fetcher and FIFO, sprite mixing, and the
// 160x144 framebuffer.
package ppu

import (
	"github.com/dmgo-emu/dmgo/internal/addr"
	"github.com/dmgo-emu/dmgo/internal/bit"
	"github.com/dmgo-emu/dmgo/internal/ioregs"
)

const (
	ScreenWidth  = 160
	ScreenHeight = 144

	dotsPerLine  = 456
	oamScanDots  = 80
	linesPerFrame = 154
)

// Mode is the STAT low-two-bit PPU mode.
type Mode uint8

const (
	ModeHBlank Mode = 0
	ModeVBlank Mode = 1
	ModeOAM    Mode = 2
	ModeTransfer Mode = 3
)

// PPU holds the full rendering state: VRAM/OAM, the dot and line counters,
// the selected-sprite buffer, the fetcher state machine, the FIFOs and the
// output framebuffer.
type PPU struct {
	vram [0x2000]byte
	oam  [0xA0]byte

	mode    Mode
	lineDot int

	windowLine        int
	windowTriggered   bool

	spriteBuffer [10]sprite
	spriteCount  int
	objLine      [ScreenWidth]objPixel

	fetcher fetcher
	bgFifo  pixelFifo

	screenX      int
	scxDiscard   int
	windowActive bool

	framebuffer [ScreenWidth * ScreenHeight]byte
}

type sprite struct {
	x, y       int
	tileIndex  byte
	attributes byte
	oamIndex   int
}

type objPixel struct {
	present  bool
	color    byte
	palette  byte
	priority bool // true = BG-over-OBJ (sprite drawn behind bg colors 1-3)
}

// New returns a Ppu with LY=0 and Mode=OAMScan, as if freshly powered on.
func New() *PPU {
	return &PPU{mode: ModeOAM}
}

func (p *PPU) ReadVRAM(offset uint16) byte     { return p.vram[offset] }
func (p *PPU) WriteVRAM(offset uint16, v byte) { p.vram[offset] = v }
func (p *PPU) ReadOAM(offset uint16) byte      { return p.oam[offset] }
func (p *PPU) WriteOAM(offset uint16, v byte)  { p.oam[offset] = v }

// Framebuffer returns the last-completed frame as 2-bit color indices.
func (p *PPU) Framebuffer() *[ScreenWidth * ScreenHeight]byte { return &p.framebuffer }

// Tick advances the Ppu by one dot and reports whether the frame just
// completed (LY wrapped from 153 back to 0).
func (p *PPU) Tick(io *ioregs.IoRegisters) bool {
	if io.LCDC()&0x80 == 0 {
		return false
	}

	frameReady := false

	switch p.mode {
	case ModeOAM:
		if p.lineDot == 0 {
			p.scanOAM(io)
		}
		if p.lineDot+1 >= oamScanDots {
			p.beginPixelTransfer(io)
			p.setMode(io, ModeTransfer)
		}
	case ModeTransfer:
		p.stepFetcher(io)
		if p.screenX >= ScreenWidth {
			p.setMode(io, ModeHBlank)
			if io.STATInterruptEnabled(3) {
				io.RequestInterrupt(addr.LCDStat)
			}
		}
	case ModeHBlank, ModeVBlank:
		// nothing to do per-dot; transitions happen at line boundaries below.
	}

	p.lineDot++
	if p.lineDot >= dotsPerLine {
		p.lineDot = 0
		frameReady = p.advanceLine(io)
	}

	return frameReady
}

func (p *PPU) setMode(io *ioregs.IoRegisters, m Mode) {
	p.mode = m
	io.SetSTATMode(uint8(m))
}

// advanceLine moves LY forward, handling the OAM/HBlank/VBlank transitions
// and the frame-wrap signal.
func (p *PPU) advanceLine(io *ioregs.IoRegisters) bool {
	ly := int(io.LY()) + 1
	frameReady := false

	if ly == ScreenHeight {
		p.setMode(io, ModeVBlank)
		io.RequestInterrupt(addr.VBlank)
		if io.STATInterruptEnabled(4) {
			io.RequestInterrupt(addr.LCDStat)
		}
	} else if ly >= ScreenHeight+10 {
		ly = 0
		p.windowLine = 0
		frameReady = true
		p.setMode(io, ModeOAM)
		if io.STATInterruptEnabled(5) {
			io.RequestInterrupt(addr.LCDStat)
		}
	} else if ly < ScreenHeight {
		p.setMode(io, ModeOAM)
		if io.STATInterruptEnabled(5) {
			io.RequestInterrupt(addr.LCDStat)
		}
	}

	io.SetLY(byte(ly))
	if byte(ly) == io.LYC() && io.STATInterruptEnabled(6) {
		io.RequestInterrupt(addr.LCDStat)
	}

	return frameReady
}

func (p *PPU) bgWindowEnabled(io *ioregs.IoRegisters) bool { return bit.IsSet(0, io.LCDC()) }
func (p *PPU) objEnabled(io *ioregs.IoRegisters) bool      { return bit.IsSet(1, io.LCDC()) }
func (p *PPU) windowEnabled(io *ioregs.IoRegisters) bool   { return bit.IsSet(5, io.LCDC()) }
