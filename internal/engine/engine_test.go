package engine

import (
	"testing"

	"github.com/dmgo-emu/dmgo/internal/addr"
	"github.com/dmgo-emu/dmgo/internal/ioregs"
	"github.com/stretchr/testify/require"
)

// makeROM returns a minimal valid 32KiB ROM-only image with program bytes
// placed at the entry point (0x0100), header checksum computed the same
// way cartridge.Load verifies it.
func makeROM(program ...byte) []byte {
	data := make([]byte, 32*1024)
	copy(data[0x0100:], program)

	var sum uint8
	for i := 0x0134; i <= 0x014C; i++ {
		sum = sum - data[i] - 1
	}
	data[0x014D] = sum
	return data
}

func TestLoadAndTickExecutesProgram(t *testing.T) {
	// LD BC,0x1234; NOP
	e := New(nil)
	require.NoError(t, e.Load(makeROM(0x01, 0x34, 0x12, 0x00)))

	e.Tick()
	e.Tick()
	require.Equal(t, uint16(0x1234), e.cpu.BC())
}

func TestTickEventuallyCompletesAFrame(t *testing.T) {
	// JR -2 (an infinite loop at the entry point) is enough to drive the
	// Ppu/Apu through a full frame via repeated Cpu ticks.
	e := New(nil)
	require.NoError(t, e.Load(makeROM(0x18, 0xFE)))

	completed := false
	for i := 0; i < 200000 && !completed; i++ {
		completed = e.Tick()
	}
	require.True(t, completed, "expected a frame to complete within the tick budget")
}

func TestButtonPressSurfacesOnJoypadRegister(t *testing.T) {
	e := New(nil)
	require.NoError(t, e.Load(makeROM(0x00)))

	e.io.Write(addr.P1, 0x20) // select the direction nibble
	e.ButtonDown(ioregs.ButtonRight)
	require.Equal(t, byte(0x0E), e.io.Joypad.Read()&0x0F, "right button bit clears on press")
}
