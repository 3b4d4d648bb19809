package ppu

import (
	"sort"

	"github.com/dmgo-emu/dmgo/internal/bit"
	"github.com/dmgo-emu/dmgo/internal/ioregs"
)

// scanOAM selects up to 10 sprites intersecting the current scanline and
// precomputes their contribution to objLine in a single pass, rather than
// spreading the scan across the OAM-scan window one entry at a time. Real
// hardware advances one OAM entry every two dots across the 80-dot
// OAM-scan window; the selection result is independent of that pacing,
// and tested behavior (ordering, 10-sprite cap) depends only on the
// outcome, not the intermediate per-dot state.
func (p *PPU) scanOAM(io *ioregs.IoRegisters) {
	p.spriteCount = 0
	p.objLine = [ScreenWidth]objPixel{}

	height := 8
	if bit.IsSet(2, io.LCDC()) {
		height = 16
	}
	ly := int(io.LY())

	for i := 0; i < 40 && p.spriteCount < 10; i++ {
		base := i * 4
		y := int(p.oam[base])
		x := int(p.oam[base+1])
		tile := p.oam[base+2]
		attrs := p.oam[base+3]

		if x == 0 {
			continue
		}
		top := y - 16
		if ly < top || ly >= top+height {
			continue
		}

		p.spriteBuffer[p.spriteCount] = sprite{x: x, y: y, tileIndex: tile, attributes: attrs, oamIndex: i}
		p.spriteCount++
	}

	buf := p.spriteBuffer[:p.spriteCount]
	sort.SliceStable(buf, func(a, b int) bool {
		if buf[a].x != buf[b].x {
			return buf[a].x < buf[b].x
		}
		return buf[a].oamIndex < buf[b].oamIndex
	})

	for i := 0; i < p.spriteCount; i++ {
		p.mergeSpriteIntoObjLine(buf[i], height, ly)
	}
}

// mergeSpriteIntoObjLine fetches one sprite's row and writes its non-
// transparent pixels into objLine, skipping columns a higher-priority
// sprite already claimed.
func (p *PPU) mergeSpriteIntoObjLine(s sprite, height, ly int) {
	row := ly - (s.y - 16)
	if bit.IsSet(6, s.attributes) { // Y flip
		row = height - 1 - row
	}

	tile := s.tileIndex
	rowInTile := row
	if height == 16 {
		tile &^= 0x01
		if row >= 8 {
			tile++
			rowInTile = row - 8
		}
	}

	tileAddr := uint16(tile)*16 + uint16(rowInTile)*2
	low := p.vram[tileAddr]
	high := p.vram[tileAddr+1]

	xFlip := bit.IsSet(5, s.attributes)
	palette := uint8(0)
	if bit.IsSet(4, s.attributes) {
		palette = 1
	}
	bgPriority := bit.IsSet(7, s.attributes)

	screenLeft := s.x - 8
	for col := 0; col < 8; col++ {
		screenCol := screenLeft + col
		if screenCol < 0 || screenCol >= ScreenWidth {
			continue
		}
		if p.objLine[screenCol].present {
			continue
		}

		bitIdx := uint8(7 - col)
		if xFlip {
			bitIdx = uint8(col)
		}
		colorIdx := bit.ExtractBits(high, bitIdx, bitIdx)<<1 | bit.ExtractBits(low, bitIdx, bitIdx)
		if colorIdx == 0 {
			continue
		}
		p.objLine[screenCol] = objPixel{present: true, color: colorIdx, palette: palette, priority: bgPriority}
	}
}
