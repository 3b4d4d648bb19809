package cpu

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDaaAfterAddCorrectsToBCD(t *testing.T) {
	c := &CPU{}
	c.A = c.add8(0x45, 0x38)
	c.daa()
	require.Equal(t, byte(0x83), c.A)
	require.False(t, c.flag(flagC))
}

func TestDaaAfterAddWithCarryOut(t *testing.T) {
	c := &CPU{}
	c.A = c.add8(0x90, 0x90)
	c.daa()
	require.Equal(t, byte(0x80), c.A)
	require.True(t, c.flag(flagC))
}

func TestDaaAfterSub(t *testing.T) {
	c := &CPU{}
	c.A = c.sub8(0x83, 0x38)
	c.daa()
	require.Equal(t, byte(0x45), c.A)
	require.False(t, c.flag(flagC))
}

func TestAddHLHalfCarryOnBit11(t *testing.T) {
	c := &CPU{}
	c.SetHL(0x0FFF)
	c.addHL(0x0001)
	require.Equal(t, uint16(0x1000), c.HL())
	require.True(t, c.flag(flagH))
	require.False(t, c.flag(flagC))
}

func TestAddSPSignedNegativeOffset(t *testing.T) {
	c := &CPU{}
	c.SP = 0x0005
	res := c.addSPSigned(-1)
	require.Equal(t, uint16(0x0004), res)
	require.False(t, c.flag(flagZ))
	require.False(t, c.flag(flagN))
}

func TestIncDecHalfCarryBoundaries(t *testing.T) {
	c := &CPU{}
	require.Equal(t, byte(0x10), c.inc8(0x0F))
	require.True(t, c.flag(flagH))

	require.Equal(t, byte(0x0F), c.dec8(0x10))
	require.True(t, c.flag(flagH))
}
