package i8088

// execALU implements the 8 two-operand ALU mnemonics (ADD/OR/ADC/SBB/
// AND/SUB/XOR/CMP) sharing one decode shape: dst op= src, flags set,
// and for CMP the result discarded.
func (c *CPU) execALU(inst *Instruction) {
	sz := inst.OpSize
	dst := c.readOperand(inst.Op1, sz)
	src := c.readOperand(inst.Op2, sz)

	var result uint16
	switch inst.Mnemonic {
	case ADD:
		result = dst + src
		c.setFlagsAdd(src, dst, result, sz)
	case ADC:
		carry := uint16(0)
		if c.reg.Flags&flagCF != 0 {
			carry = 1
		}
		result = dst + src + carry
		c.setFlagsAdd(src+carry, dst, result, sz)
	case SUB:
		result = dst - src
		c.setFlagsSub(src, dst, result, sz)
	case SBB:
		borrow := uint16(0)
		if c.reg.Flags&flagCF != 0 {
			borrow = 1
		}
		result = dst - src - borrow
		c.setFlagsSub(src+borrow, dst, result, sz)
	case CMP:
		result = dst - src
		c.setFlagsSub(src, dst, result, sz)
		return
	case AND:
		result = dst & src
		c.setFlagsLogical(result, sz)
	case OR:
		result = dst | src
		c.setFlagsLogical(result, sz)
	case XOR:
		result = dst ^ src
		c.setFlagsLogical(result, sz)
	}
	c.writeOperand(inst.Op1, sz, result)
}

func (c *CPU) execTest(inst *Instruction) {
	sz := inst.OpSize
	a := c.readOperand(inst.Op1, sz)
	b := c.readOperand(inst.Op2, sz)
	c.setFlagsLogical(a&b, sz)
}

// execIncDec implements INC/DEC. Unlike ADD/SUB by 1, these leave CF
// untouched, so flags are computed via the add/sub helpers and CF is
// restored afterward.
func (c *CPU) execIncDec(inst *Instruction) {
	sz := inst.OpSize
	v := c.readOperand(inst.Op1, sz)
	savedCF := c.reg.Flags & flagCF
	if inst.Mnemonic == INC {
		result := v + 1
		c.setFlagsAdd(1, v, result, sz)
		c.writeOperand(inst.Op1, sz, result)
	} else {
		result := v - 1
		c.setFlagsSub(1, v, result, sz)
		c.writeOperand(inst.Op1, sz, result)
	}
	c.reg.Flags = (c.reg.Flags &^ flagCF) | savedCF
}

func (c *CPU) execNeg(inst *Instruction) {
	sz := inst.OpSize
	v := c.readOperand(inst.Op1, sz)
	result := (0 - v) & sz.Mask()
	c.setFlagsSub(v, 0, result, sz)
	if v != 0 {
		c.reg.Flags |= flagCF
	} else {
		c.reg.Flags &^= flagCF
	}
	c.writeOperand(inst.Op1, sz, result)
}

func (c *CPU) execMul(inst *Instruction) {
	sz := inst.OpSize
	src := c.readOperand(inst.Op1, sz)

	if inst.Mnemonic == MUL {
		if sz == Byte {
			result := al(c.reg.AX) * src
			c.reg.AX = result
			if ah(result) != 0 {
				c.reg.Flags |= flagCF | flagOF
			} else {
				c.reg.Flags &^= flagCF | flagOF
			}
		} else {
			result := uint32(c.reg.AX) * uint32(src)
			c.reg.AX = uint16(result)
			c.reg.DX = uint16(result >> 16)
			if c.reg.DX != 0 {
				c.reg.Flags |= flagCF | flagOF
			} else {
				c.reg.Flags &^= flagCF | flagOF
			}
		}
		return
	}

	if sz == Byte {
		result := int16(int8(al(c.reg.AX))) * int16(int8(src))
		c.reg.AX = uint16(result)
		if result > 127 || result < -128 {
			c.reg.Flags |= flagCF | flagOF
		} else {
			c.reg.Flags &^= flagCF | flagOF
		}
	} else {
		result := int32(int16(c.reg.AX)) * int32(int16(src))
		c.reg.AX = uint16(result)
		c.reg.DX = uint16(result >> 16)
		if result > 32767 || result < -32768 {
			c.reg.Flags |= flagCF | flagOF
		} else {
			c.reg.Flags &^= flagCF | flagOF
		}
	}
}

func (c *CPU) execDiv(inst *Instruction) {
	sz := inst.OpSize
	src := c.readOperand(inst.Op1, sz)

	if inst.Mnemonic == DIV {
		if src == 0 {
			c.serviceInterrupt(0)
			return
		}
		if sz == Byte {
			dividend := c.reg.AX
			q, r := dividend/src, dividend%src
			if q > 0xFF {
				c.serviceInterrupt(0)
				return
			}
			setAL(&c.reg.AX, q)
			setAH(&c.reg.AX, r)
		} else {
			dividend := uint32(c.reg.DX)<<16 | uint32(c.reg.AX)
			d := uint32(src)
			q, r := dividend/d, dividend%d
			if q > 0xFFFF {
				c.serviceInterrupt(0)
				return
			}
			c.reg.AX = uint16(q)
			c.reg.DX = uint16(r)
		}
		return
	}

	if int16(src) == 0 {
		c.serviceInterrupt(0)
		return
	}
	if sz == Byte {
		dividend := int16(c.reg.AX)
		divisor := int16(int8(src))
		q, r := dividend/divisor, dividend%divisor
		if q > 127 || q < -128 {
			c.serviceInterrupt(0)
			return
		}
		setAL(&c.reg.AX, uint16(q))
		setAH(&c.reg.AX, uint16(r))
	} else {
		dividend := int32(uint32(c.reg.DX)<<16 | uint32(c.reg.AX))
		divisor := int32(int16(src))
		q, r := dividend/divisor, dividend%divisor
		if q > 32767 || q < -32768 {
			c.serviceInterrupt(0)
			return
		}
		c.reg.AX = uint16(q)
		c.reg.DX = uint16(r)
	}
}
