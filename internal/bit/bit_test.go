package bit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCombine(t *testing.T) {
	assert.Equal(t, uint16(0x1234), Combine(0x12, 0x34))
}

func TestSetResetIsSet(t *testing.T) {
	var v uint8
	v = Set(3, v)
	assert.True(t, IsSet(3, v))
	v = Reset(3, v)
	assert.False(t, IsSet(3, v))
}

func TestSetTo(t *testing.T) {
	var v uint8 = 0xFF
	v = SetTo(2, v, false)
	assert.False(t, IsSet(2, v))
	v = SetTo(2, v, true)
	assert.True(t, IsSet(2, v))
}

func TestHighLow(t *testing.T) {
	assert.Equal(t, uint8(0x12), High(0x1234))
	assert.Equal(t, uint8(0x34), Low(0x1234))
}

func TestExtractBits(t *testing.T) {
	assert.Equal(t, uint8(0b101), ExtractBits(0b11010110, 6, 4))
}
