package ppu

import "github.com/dmgo-emu/dmgo/internal/ioregs"

// mixPixel implements the per-pixel background/object priority and mixing
// rules.
func mixPixel(io *ioregs.IoRegisters, bg byte, obj objPixel, bgWindowEnabled, objEnabled bool) byte {
	if !bgWindowEnabled {
		bg = 0
	}

	if !objEnabled || !obj.present || obj.color == 0 {
		return applyPalette(io.BGP(), bg)
	}
	if obj.priority && bg != 0 {
		return applyPalette(io.BGP(), bg)
	}

	palette := io.OBP0()
	if obj.palette == 1 {
		palette = io.OBP1()
	}
	return applyPalette(palette, obj.color)
}

func applyPalette(palette byte, colorIdx byte) byte {
	return (palette >> (colorIdx * 2)) & 0x03
}
