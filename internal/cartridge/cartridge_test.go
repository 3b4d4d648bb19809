package cartridge

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func makeImage(size int, cartType, romSizeCode, ramSizeCode byte) []byte {
	data := make([]byte, size)
	copy(data[titleAddr:], []byte("TESTROM"))
	data[cartTypeAddr] = cartType
	data[romSizeAddr] = romSizeCode
	data[ramSizeAddr] = ramSizeCode

	var sum uint8
	for i := 0x0134; i <= 0x014C; i++ {
		sum = sum - data[i] - 1
	}
	data[headerChecksumAddr] = sum
	return data
}

func TestLoadRejectsTruncatedImage(t *testing.T) {
	_, err := Load(make([]byte, 100), nil)
	require.ErrorIs(t, err, ErrTruncatedImage)
}

func TestLoadRejectsUnsupportedType(t *testing.T) {
	data := makeImage(minImageSize, 0x05, 0, 0)
	_, err := Load(data, nil)
	require.ErrorIs(t, err, ErrUnsupportedCartridgeType)
}

func TestLoadROMOnly(t *testing.T) {
	data := makeImage(minImageSize, 0x00, 0, 0)
	data[0x4000] = 0x42
	c, err := Load(data, nil)
	require.NoError(t, err)
	require.Equal(t, "TESTROM", c.Title)
	require.Equal(t, uint8(0x42), c.Read(0x4000))
}

func TestMBC1BankZeroAlias(t *testing.T) {
	// 2 MiB ROM -> 128 banks, so both secondary-register bits (bank bits 5
	// and 6) select banks that exist.
	data := makeImage(2*1024*1024, 0x01, 6, 0)
	for bank := 0; bank < 128; bank++ {
		data[bank*0x4000] = byte(bank)
	}
	c, err := Load(data, nil)
	require.NoError(t, err)

	cases := []struct {
		secondary  byte
		writeValue byte
		wantBank   byte
	}{
		{0, 0x00, 0x01},
		{1, 0x20, 0x21},
		{2, 0x40, 0x41},
		{3, 0x60, 0x61},
	}
	for _, tc := range cases {
		c.Write(0x4000, tc.secondary)
		c.Write(0x2000, tc.writeValue)
		got := c.Read(0x4000)
		require.Equal(t, tc.wantBank, got, "secondary=%d value=0x%02X", tc.secondary, tc.writeValue)
	}
}

func TestMBC1RAMEnableGate(t *testing.T) {
	data := makeImage(minImageSize*2, 0x02, 1, 3) // MBC1+RAM, 32KiB RAM
	c, err := Load(data, nil)
	require.NoError(t, err)

	require.Equal(t, uint8(0xFF), c.Read(0xA000), "disabled RAM reads 0xFF")
	c.Write(0xA000, 0x55)
	require.Equal(t, uint8(0xFF), c.Read(0xA000), "write while disabled is dropped")

	c.Write(0x0000, 0x0A) // enable RAM
	c.Write(0xA000, 0x55)
	require.Equal(t, uint8(0x55), c.Read(0xA000))
}

func TestMBC1RAMBankingRequiresAdvancedMode(t *testing.T) {
	data := makeImage(minImageSize*2, 0x03, 1, 3)
	c, err := Load(data, nil)
	require.NoError(t, err)
	c.Write(0x0000, 0x0A)

	c.Write(0xA000, 0x11) // bank 0 (simple mode default)
	c.Write(0x4000, 0x01) // secondary register := 1, but still Simple mode
	require.Equal(t, uint8(0x11), c.Read(0xA000), "still bank 0 in Simple mode")

	c.Write(0x6000, 0x01) // switch to Advanced mode
	require.NotEqual(t, uint8(0x11), c.Read(0xA000), "now reading bank 1, which is unwritten")
	c.Write(0xA000, 0x22)
	require.Equal(t, uint8(0x22), c.Read(0xA000))

	c.Write(0x6000, 0x00) // back to Simple
	require.Equal(t, uint8(0x11), c.Read(0xA000), "bank 0 restored")
}
