package ioregs

// Button enumerates the eight physical buttons.
type Button uint8

const (
	ButtonRight Button = iota
	ButtonLeft
	ButtonUp
	ButtonDown
	ButtonA
	ButtonB
	ButtonSelect
	ButtonStart
)

// Joypad holds the shadow button state and the P1 register's nibble
// selection. Both nibbles read 0xF (all bits set) when no
// button in that group is pressed; a button press clears its bit.
type Joypad struct {
	directionNibble byte // bit0=Right bit1=Left bit2=Up bit3=Down
	actionNibble    byte // bit0=A bit1=B bit2=Select bit3=Start
	selectBits      byte // P1 bits 4-5 as last written

	requestInterrupt func()
}

func (j *Joypad) directionSelected() bool { return j.selectBits&0x10 == 0 }
func (j *Joypad) actionSelected() bool    { return j.selectBits&0x20 == 0 }

// Read returns the full P1 byte: bits 6-7 fixed high, bits 4-5 the last
// written selection, bits 0-3 the nibble(s) currently surfaced.
func (j *Joypad) Read() byte {
	nibble := byte(0x0F)
	switch {
	case j.directionSelected() && j.actionSelected():
		nibble = j.directionNibble & j.actionNibble
	case j.directionSelected():
		nibble = j.directionNibble
	case j.actionSelected():
		nibble = j.actionNibble
	}
	return 0xC0 | j.selectBits | nibble
}

// WriteSelect stores the nibble-selection bits written to P1's upper bits.
func (j *Joypad) WriteSelect(v byte) {
	j.selectBits = v & 0x30
}

// setBit updates a button's bit in its nibble and requests the JOYPAD
// interrupt on a 1->0 edge of a currently-surfaced bit.
func (j *Joypad) setBit(nibble *byte, bit uint8, pressed bool, selected bool) {
	before := *nibble
	if pressed {
		*nibble &^= 1 << bit
	} else {
		*nibble |= 1 << bit
	}
	if selected && before&(1<<bit) != 0 && *nibble&(1<<bit) == 0 {
		if j.requestInterrupt != nil {
			j.requestInterrupt()
		}
	}
}

// ButtonDown marks button as pressed.
func (j *Joypad) ButtonDown(b Button) { j.setButton(b, true) }

// ButtonUp marks button as released.
func (j *Joypad) ButtonUp(b Button) { j.setButton(b, false) }

func (j *Joypad) setButton(b Button, pressed bool) {
	switch b {
	case ButtonRight:
		j.setBit(&j.directionNibble, 0, pressed, j.directionSelected())
	case ButtonLeft:
		j.setBit(&j.directionNibble, 1, pressed, j.directionSelected())
	case ButtonUp:
		j.setBit(&j.directionNibble, 2, pressed, j.directionSelected())
	case ButtonDown:
		j.setBit(&j.directionNibble, 3, pressed, j.directionSelected())
	case ButtonA:
		j.setBit(&j.actionNibble, 0, pressed, j.actionSelected())
	case ButtonB:
		j.setBit(&j.actionNibble, 1, pressed, j.actionSelected())
	case ButtonSelect:
		j.setBit(&j.actionNibble, 2, pressed, j.actionSelected())
	case ButtonStart:
		j.setBit(&j.actionNibble, 3, pressed, j.actionSelected())
	}
}
