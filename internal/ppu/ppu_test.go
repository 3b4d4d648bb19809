package ppu

import (
	"testing"

	"github.com/dmgo-emu/dmgo/internal/ioregs"
	"github.com/stretchr/testify/require"
)

func TestFramePeriodIs70224Dots(t *testing.T) {
	p := New()
	io := ioregs.New()

	dots := 0
	for !p.Tick(io) {
		dots++
	}
	require.Equal(t, 70223, dots) // the dot that returns true is itself the 70224th

	dots = 0
	for !p.Tick(io) {
		dots++
	}
	require.Equal(t, 70223, dots)
}

func TestOAMScanSelectsAtMostTenSortedByXThenIndex(t *testing.T) {
	p := New()
	io := ioregs.New()
	io.SetLY(10)

	for i := 0; i < 15; i++ {
		base := i * 4
		p.oam[base] = 26     // Y: visible at LY=10 (26-16=10, height 8 -> [10,18))
		p.oam[base+1] = byte(100 - i)
		p.oam[base+2] = byte(i)
		p.oam[base+3] = 0
	}

	p.scanOAM(io)
	// only the first 10 in OAM order are retained.
	require.Equal(t, 10, p.spriteCount)

	for i := 1; i < p.spriteCount; i++ {
		require.LessOrEqual(t, p.spriteBuffer[i-1].x, p.spriteBuffer[i].x)
	}
	// OAM indices 0..9 were retained (X = 100..91); ascending-X sort puts
	// index 9 (X=91) first.
	require.Equal(t, 9, p.spriteBuffer[0].oamIndex)
}

func TestSimpleBackgroundScanlineUsesBGPPalette(t *testing.T) {
	p := New()
	io := ioregs.New()
	io.Write(0xFF40, 0x91) // LCDC: LCD on, BG on, tile data 0x8000 mode
	io.Write(0xFF42, 0)    // SCY
	io.Write(0xFF43, 0)    // SCX
	io.Write(0xFF47, 0xE4) // BGP

	// tile map entry (0,0) -> tile 0
	p.vram[0x9800-0x8000] = 0x00
	// tile 0, row 0: both bitplanes all 1s -> color index 3 for all 8 pixels
	p.vram[0x8000-0x8000] = 0xFF
	p.vram[0x8001-0x8000] = 0xFF

	for !p.Tick(io) {
		if io.LY() > 0 {
			break
		}
	}

	for x := 0; x < 8; x++ {
		require.Equal(t, byte(3), p.framebuffer[x], "pixel %d", x)
	}
}
