package cpu

// step fetches and executes one instruction, returning its cost in
// T-cycles (4 per machine cycle). The opcode space is decoded with the standard SM83 bit groupings
// (x = op>>6, y = (op>>3)&7, z = op&7) so the repetitive LD/ALU/INC/DEC
// blocks share one implementation instead of 200 one-off functions; opcodes
// that don't fit a uniform pattern (control flow, stack ops, misc) are
// handled individually below.
func (c *CPU) step() int {
	op := c.fetch8()

	if op == 0xCB {
		return c.stepCB()
	}

	switch {
	case op&0xC0 == 0x40 && op != 0x76:
		// LD r,r'
		src := op & 0x07
		dst := (op >> 3) & 0x07
		c.set8(dst, c.get8(src))
		if src == 6 || dst == 6 {
			return 8
		}
		return 4

	case op == 0x76:
		c.halted = true
		return 4

	case op&0xC0 == 0x80:
		// ALU A,r
		return c.aluOp((op>>3)&0x07, c.get8(op&0x07)) + alu8Extra(op&0x07)

	case op&0xC7 == 0x04:
		r := (op >> 3) & 0x07
		c.set8(r, c.inc8(c.get8(r)))
		if r == 6 {
			return 12
		}
		return 4

	case op&0xC7 == 0x05:
		r := (op >> 3) & 0x07
		c.set8(r, c.dec8(c.get8(r)))
		if r == 6 {
			return 12
		}
		return 4

	case op&0xC7 == 0x06:
		r := (op >> 3) & 0x07
		v := c.fetch8()
		c.set8(r, v)
		if r == 6 {
			return 12
		}
		return 8
	}

	switch op {
	case 0x00: // NOP
		return 4
	case 0x10: // STOP
		c.fetch8() // STOP is followed by an ignored operand byte
		c.stopped = true
		return 4
	case 0x76: // HALT (handled above; kept for completeness of the table)
		c.halted = true
		return 4
	case 0xF3: // DI
		c.IME = false
		c.imeScheduled = false
		c.imeArmed = false
		return 4
	case 0xFB: // EI
		c.imeScheduled = true
		return 4
	case 0x27: // DAA
		c.daa()
		return 4
	case 0x2F: // CPL
		c.A = ^c.A
		c.setFlag(flagN, true)
		c.setFlag(flagH, true)
		return 4
	case 0x37: // SCF
		c.setFlag(flagN, false)
		c.setFlag(flagH, false)
		c.setFlag(flagC, true)
		return 4
	case 0x3F: // CCF
		c.setFlag(flagN, false)
		c.setFlag(flagH, false)
		c.setFlag(flagC, !c.flag(flagC))
		return 4

	// 16-bit loads
	case 0x01, 0x11, 0x21, 0x31: // LD rp,nn
		rp := (op >> 4) & 0x03
		c.setRp16(rp, c.fetch16())
		return 12
	case 0x08: // LD (a16),SP
		a := c.fetch16()
		c.bus.Write(a, byte(c.SP))
		c.bus.Write(a+1, byte(c.SP>>8))
		return 20
	case 0xF9: // LD SP,HL
		c.SP = c.HL()
		return 8
	case 0xF8: // LD HL,SP+e8
		e := int8(c.fetch8())
		c.SetHL(c.addSPSigned(e))
		return 12
	case 0xE8: // ADD SP,e8
		e := int8(c.fetch8())
		c.SP = c.addSPSigned(e)
		return 16

	// 16-bit INC/DEC
	case 0x03, 0x13, 0x23, 0x33:
		rp := (op >> 4) & 0x03
		c.setRp16(rp, c.rp16(rp)+1)
		return 8
	case 0x0B, 0x1B, 0x2B, 0x3B:
		rp := (op >> 4) & 0x03
		c.setRp16(rp, c.rp16(rp)-1)
		return 8

	// ADD HL,rp
	case 0x09, 0x19, 0x29, 0x39:
		rp := (op >> 4) & 0x03
		c.addHL(c.rp16(rp))
		return 8

	// indirect loads/stores
	case 0x02: // LD (BC),A
		c.bus.Write(c.BC(), c.A)
		return 8
	case 0x12: // LD (DE),A
		c.bus.Write(c.DE(), c.A)
		return 8
	case 0x0A: // LD A,(BC)
		c.A = c.bus.Read(c.BC())
		return 8
	case 0x1A: // LD A,(DE)
		c.A = c.bus.Read(c.DE())
		return 8
	case 0x22: // LD (HL+),A
		c.bus.Write(c.HL(), c.A)
		c.SetHL(c.HL() + 1)
		return 8
	case 0x32: // LD (HL-),A
		c.bus.Write(c.HL(), c.A)
		c.SetHL(c.HL() - 1)
		return 8
	case 0x2A: // LD A,(HL+)
		c.A = c.bus.Read(c.HL())
		c.SetHL(c.HL() + 1)
		return 8
	case 0x3A: // LD A,(HL-)
		c.A = c.bus.Read(c.HL())
		c.SetHL(c.HL() - 1)
		return 8
	case 0xE0: // LDH (a8),A
		c.bus.Write(0xFF00+uint16(c.fetch8()), c.A)
		return 12
	case 0xF0: // LDH A,(a8)
		c.A = c.bus.Read(0xFF00 + uint16(c.fetch8()))
		return 12
	case 0xE2: // LD (C),A
		c.bus.Write(0xFF00+uint16(c.C), c.A)
		return 8
	case 0xF2: // LD A,(C)
		c.A = c.bus.Read(0xFF00 + uint16(c.C))
		return 8
	case 0xEA: // LD (a16),A
		c.bus.Write(c.fetch16(), c.A)
		return 16
	case 0xFA: // LD A,(a16)
		c.A = c.bus.Read(c.fetch16())
		return 16

	// rotates on A (clear Z unconditionally)
	case 0x07: // RLCA
		res, carry := rlc(c.A)
		c.A = res
		c.setFlag(flagZ, false)
		c.setFlag(flagN, false)
		c.setFlag(flagH, false)
		c.setFlag(flagC, carry)
		return 4
	case 0x0F: // RRCA
		res, carry := rrc(c.A)
		c.A = res
		c.setFlag(flagZ, false)
		c.setFlag(flagN, false)
		c.setFlag(flagH, false)
		c.setFlag(flagC, carry)
		return 4
	case 0x17: // RLA
		res, carry := rl(c.A, c.flag(flagC))
		c.A = res
		c.setFlag(flagZ, false)
		c.setFlag(flagN, false)
		c.setFlag(flagH, false)
		c.setFlag(flagC, carry)
		return 4
	case 0x1F: // RRA
		res, carry := rr(c.A, c.flag(flagC))
		c.A = res
		c.setFlag(flagZ, false)
		c.setFlag(flagN, false)
		c.setFlag(flagH, false)
		c.setFlag(flagC, carry)
		return 4

	// control flow
	case 0x18: // JR e8
		e := int8(c.fetch8())
		c.PC = uint16(int32(c.PC) + int32(e))
		return 12
	case 0x20, 0x28, 0x30, 0x38: // JR cc,e8
		cc := (op >> 3) & 0x03
		e := int8(c.fetch8())
		if c.condition(cc) {
			c.PC = uint16(int32(c.PC) + int32(e))
			return 12
		}
		return 8
	case 0xC3: // JP a16
		c.PC = c.fetch16()
		return 16
	case 0xC2, 0xCA, 0xD2, 0xDA: // JP cc,a16
		cc := (op >> 3) & 0x03
		target := c.fetch16()
		if c.condition(cc) {
			c.PC = target
			return 16
		}
		return 12
	case 0xE9: // JP HL
		c.PC = c.HL()
		return 4
	case 0xCD: // CALL a16
		target := c.fetch16()
		c.push16(c.PC)
		c.PC = target
		return 24
	case 0xC4, 0xCC, 0xD4, 0xDC: // CALL cc,a16
		cc := (op >> 3) & 0x03
		target := c.fetch16()
		if c.condition(cc) {
			c.push16(c.PC)
			c.PC = target
			return 24
		}
		return 12
	case 0xC9: // RET
		c.PC = c.pop16()
		return 16
	case 0xC0, 0xC8, 0xD0, 0xD8: // RET cc
		cc := (op >> 3) & 0x03
		if c.condition(cc) {
			c.PC = c.pop16()
			return 20
		}
		return 8
	case 0xD9: // RETI
		c.PC = c.pop16()
		c.IME = true
		c.imeScheduled = false
		c.imeArmed = false
		return 16
	case 0xC7, 0xCF, 0xD7, 0xDF, 0xE7, 0xEF, 0xF7, 0xFF: // RST n
		c.push16(c.PC)
		c.PC = uint16(op & 0x38)
		return 16

	// stack
	case 0xC5, 0xD5, 0xE5, 0xF5: // PUSH rp2
		c.push16(c.rp2((op >> 4) & 0x03))
		return 16
	case 0xC1, 0xD1, 0xE1, 0xF1: // POP rp2
		v := c.pop16()
		if (op>>4)&0x03 == 3 {
			v &= 0xFFF0 // POP AF masks the low nibble of F
		}
		c.setRp2((op>>4)&0x03, v)
		return 12

	// ALU A,n (immediate)
	case 0xC6, 0xCE, 0xD6, 0xDE, 0xE6, 0xEE, 0xF6, 0xFE:
		n := c.fetch8()
		return c.aluOp((op>>3)&0x07, n) + 4

	// undefined opcodes: no-ops at the engine level.
	case 0xD3, 0xDB, 0xDD, 0xE3, 0xE4, 0xEB, 0xEC, 0xED, 0xF4, 0xFC, 0xFD:
		return 4
	}

	return 4
}

// aluOp applies one of the eight ALU operations selected by the standard
// y-field encoding (0..7 = ADD,ADC,SUB,SBC,AND,XOR,OR,CP) and returns the
// base cycle cost (4, extended by callers for (HL)/immediate operands).
func (c *CPU) aluOp(which uint8, operand byte) int {
	switch which {
	case 0:
		c.A = c.add8(c.A, operand)
	case 1:
		c.A = c.adc8(c.A, operand)
	case 2:
		c.A = c.sub8(c.A, operand)
	case 3:
		c.A = c.sbc8(c.A, operand)
	case 4:
		c.A = c.and8(c.A, operand)
	case 5:
		c.A = c.xor8(c.A, operand)
	case 6:
		c.A = c.or8(c.A, operand)
	case 7:
		c.cp8(c.A, operand)
	}
	return 4
}

// alu8Extra returns the extra cycles ALU A,r costs when r selects (HL).
func alu8Extra(r uint8) int {
	if r == 6 {
		return 4
	}
	return 0
}

// rp2 implements the PUSH/POP register-pair index: 0=BC 1=DE 2=HL 3=AF.
func (c *CPU) rp2(idx uint8) uint16 {
	if idx == 3 {
		return c.AF()
	}
	return c.rp16(idx)
}

func (c *CPU) setRp2(idx uint8, v uint16) {
	if idx == 3 {
		c.SetAF(v)
		return
	}
	c.setRp16(idx, v)
}

func rlc(v byte) (result byte, carry bool) {
	carry = v&0x80 != 0
	result = v<<1 | v>>7
	return
}

func rrc(v byte) (result byte, carry bool) {
	carry = v&0x01 != 0
	result = v>>1 | v<<7
	return
}

func rl(v byte, carryIn bool) (result byte, carry bool) {
	carry = v&0x80 != 0
	var ci byte
	if carryIn {
		ci = 1
	}
	result = v<<1 | ci
	return
}

func rr(v byte, carryIn bool) (result byte, carry bool) {
	carry = v&0x01 != 0
	var ci byte
	if carryIn {
		ci = 0x80
	}
	result = v>>1 | ci
	return
}
