package ppu

import (
	"github.com/dmgo-emu/dmgo/internal/bit"
	"github.com/dmgo-emu/dmgo/internal/ioregs"
)

// fetchStep is the background/window fetcher's coroutine-like state
// machine during pixel transfer.
type fetchStep uint8

const (
	stepGetTileID fetchStep = iota
	stepGetTileRowLow
	stepGetTileRowHigh
	stepPushPixels
)

type fetcher struct {
	step     fetchStep
	dotCount int
	col      int // tile column within the current fetch pass
	tileID   byte
	rowLow   byte
	rowHigh  byte
	inWindow bool
}

// beginPixelTransfer resets per-scanline fetch state when OAM scan ends and
// pixel transfer begins.
func (p *PPU) beginPixelTransfer(io *ioregs.IoRegisters) {
	p.screenX = 0
	p.scxDiscard = int(io.SCX()) % 8
	p.windowActive = false
	p.bgFifo.Clear()
	p.fetcher = fetcher{}
}

// stepFetcher advances the pixel-transfer pipeline by one dot: the
// background/window fetcher state machine, the window-trigger check, and
// one pixel pop-and-mix into the framebuffer.
func (p *PPU) stepFetcher(io *ioregs.IoRegisters) {
	p.maybeTriggerWindow(io)
	p.advanceFetchStep(io)
	p.popAndMixPixel(io)
}

func (p *PPU) maybeTriggerWindow(io *ioregs.IoRegisters) {
	if p.windowActive || !p.windowEnabled(io) {
		return
	}
	if int(io.LY()) < int(io.WY()) {
		return
	}
	windowX := int(io.WX()) - 7
	if p.screenX < windowX {
		return
	}
	p.windowActive = true
	p.windowTriggered = true
	p.bgFifo.Clear()
	p.fetcher = fetcher{inWindow: true}
}

func (p *PPU) advanceFetchStep(io *ioregs.IoRegisters) {
	switch p.fetcher.step {
	case stepGetTileID:
		if p.fetcher.dotCount == 0 {
			p.fetcher.tileID = p.fetchTileID(io)
		}
		p.fetcher.dotCount++
		if p.fetcher.dotCount >= 2 {
			p.fetcher.step, p.fetcher.dotCount = stepGetTileRowLow, 0
		}
	case stepGetTileRowLow:
		if p.fetcher.dotCount == 0 {
			p.fetcher.rowLow = p.fetchTileRow(io, 0)
		}
		p.fetcher.dotCount++
		if p.fetcher.dotCount >= 2 {
			p.fetcher.step, p.fetcher.dotCount = stepGetTileRowHigh, 0
		}
	case stepGetTileRowHigh:
		if p.fetcher.dotCount == 0 {
			p.fetcher.rowHigh = p.fetchTileRow(io, 1)
		}
		p.fetcher.dotCount++
		if p.fetcher.dotCount >= 2 {
			p.fetcher.step, p.fetcher.dotCount = stepPushPixels, 0
		}
	case stepPushPixels:
		if p.bgFifo.Len() <= 8 {
			for col := 0; col < 8; col++ {
				bitIdx := uint8(7 - col)
				colorIdx := bit.ExtractBits(p.fetcher.rowHigh, bitIdx, bitIdx)<<1 | bit.ExtractBits(p.fetcher.rowLow, bitIdx, bitIdx)
				p.bgFifo.Push(colorIdx)
			}
			p.fetcher.col++
			p.fetcher.step, p.fetcher.dotCount = stepGetTileID, 0
		}
	}
}

func (p *PPU) fetchTileID(io *ioregs.IoRegisters) byte {
	var mapBase uint16
	var row, col int

	if p.fetcher.inWindow {
		if bit.IsSet(6, io.LCDC()) {
			mapBase = 0x9C00
		} else {
			mapBase = 0x9800
		}
		row = (p.windowLine / 8) * 32
		col = p.fetcher.col
	} else {
		if bit.IsSet(3, io.LCDC()) {
			mapBase = 0x9C00
		} else {
			mapBase = 0x9800
		}
		row = (((int(io.LY()) + int(io.SCY())) / 8) & 31) * 32
		col = (int(io.SCX())/8 + p.fetcher.col) & 31
	}

	addr := mapBase + uint16(row) + uint16(col&31)
	return p.vram[addr-0x8000]
}

func (p *PPU) fetchTileRow(io *ioregs.IoRegisters, plane int) byte {
	var rowInTile int
	if p.fetcher.inWindow {
		rowInTile = p.windowLine % 8
	} else {
		rowInTile = (int(io.LY()) + int(io.SCY())) % 8
	}

	var base uint16
	var index int16
	if bit.IsSet(4, io.LCDC()) {
		base = 0x8000
		index = int16(p.fetcher.tileID)
	} else {
		base = 0x9000
		index = int16(int8(p.fetcher.tileID))
	}

	addr := uint16(int32(base) + int32(index)*16 + int32(rowInTile)*2)
	return p.vram[addr-0x8000+uint16(plane)]
}

// popAndMixPixel pops one pixel from the background FIFO (dropping the
// first SCX%8 per scanline), mixes it with any sprite pixel at the same
// column, and writes the result to the framebuffer.
func (p *PPU) popAndMixPixel(io *ioregs.IoRegisters) {
	if p.bgFifo.Len() == 0 {
		return
	}
	bg := p.bgFifo.Pop()

	if p.scxDiscard > 0 {
		p.scxDiscard--
		return
	}
	if p.screenX >= ScreenWidth {
		return
	}

	color := mixPixel(io, bg, p.objLine[p.screenX], p.bgWindowEnabled(io), p.objEnabled(io))
	ly := int(io.LY())
	p.framebuffer[ly*ScreenWidth+p.screenX] = color
	p.screenX++

	if p.screenX >= ScreenWidth && p.windowTriggered {
		p.windowLine++
		p.windowTriggered = false
	}
}
