package ioregs

import (
	"testing"

	"github.com/dmgo-emu/dmgo/internal/addr"
	"github.com/stretchr/testify/require"
)

func TestDivWriteResetsToZero(t *testing.T) {
	io := New()
	io.Timer.Step(1000)
	require.NotEqual(t, byte(0), io.Read(addr.DIV))
	io.Write(addr.DIV, 0x55)
	require.Equal(t, byte(0), io.Read(addr.DIV))
}

func TestTimaOverflowReloadsFromTmaAndRequestsInterrupt(t *testing.T) {
	io := New()
	io.Write(addr.TMA, 0x10)
	io.Write(addr.TAC, 0x05) // enabled, rate 16 T-cycles
	io.Write(addr.TIMA, 0xFF)

	io.Timer.Step(16)
	require.Equal(t, byte(0x10), io.Read(addr.TIMA))
	require.NotEqual(t, byte(0), io.Read(addr.IF)&(1<<addr.Timer.Bit()))
}

func TestJoypadReadReflectsSelectedNibble(t *testing.T) {
	io := New()
	io.Joypad.ButtonDown(ButtonRight) // clears bit0 of the direction nibble

	io.Write(addr.P1, 0x20) // bit4=0: direction nibble selected
	require.Equal(t, byte(0x0E), io.Read(addr.P1)&0x0F)

	io.Write(addr.P1, 0x10) // bit5=0: action nibble selected, no action buttons pressed
	require.Equal(t, byte(0x0F), io.Read(addr.P1)&0x0F)
}

func TestJoypadPressRequestsInterruptWhenSelected(t *testing.T) {
	io := New()
	io.Write(addr.P1, 0x20) // direction nibble selected
	io.Joypad.ButtonDown(ButtonUp)
	require.NotEqual(t, byte(0), io.Read(addr.IF)&(1<<addr.Joypad.Bit()))
}

func TestPowerUpMatchesDocumentedDefaults(t *testing.T) {
	io := New()
	require.Equal(t, byte(0xAB), io.Read(addr.DIV))
	require.Equal(t, byte(0xE1), io.Read(addr.IF))
	require.Equal(t, byte(0x85), io.Read(addr.STAT))
	require.Equal(t, byte(0x91), io.Read(addr.LCDC))
	require.Equal(t, byte(0xFC), io.Read(addr.BGP))
	require.Equal(t, byte(0xCF), io.Read(addr.P1))
}

func TestStatCoincidenceFlagTracksLYC(t *testing.T) {
	io := New()
	io.Write(addr.LYC, 42)
	io.SetLY(42)
	require.NotEqual(t, byte(0), io.Read(addr.STAT)&0x04)
	io.SetLY(43)
	require.Equal(t, byte(0), io.Read(addr.STAT)&0x04)
}
