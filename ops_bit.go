package i8088

// execShift implements ROL/ROR/RCL/RCR/SHL/SHR/SAR for a count of 1, CL,
// or an immediate, masked to 5 bits as the real hardware's shifter does
// (count & 0x1F) before it loops; counts above the operand width wrap
// to the documented modulo behavior of each op.
func (c *CPU) execShift(inst *Instruction) {
	sz := inst.OpSize
	count := c.readOperand(inst.Op2, Byte) & 0x1F
	v := c.readOperand(inst.Op1, sz)
	if count == 0 {
		return
	}

	bits := sz.Bits()
	msb := sz.MSB()

	switch inst.Mnemonic {
	case ROL:
		for i := uint16(0); i < count; i++ {
			top := v&msb != 0
			v = (v << 1) & sz.Mask()
			if top {
				v |= 1
				c.reg.Flags |= flagCF
			} else {
				c.reg.Flags &^= flagCF
			}
		}
		if count == 1 {
			c.setOFShift(v&1 != 0, v&msb != 0)
		}
	case ROR:
		for i := uint16(0); i < count; i++ {
			bot := v&1 != 0
			v >>= 1
			if bot {
				v |= msb
				c.reg.Flags |= flagCF
			} else {
				c.reg.Flags &^= flagCF
			}
		}
		if count == 1 {
			c.setOFShift(v&msb != 0, (v<<1)&msb != 0)
		}
	case RCL:
		for i := uint16(0); i < count; i++ {
			top := v&msb != 0
			oldCF := c.reg.Flags&flagCF != 0
			v = (v << 1) & sz.Mask()
			if oldCF {
				v |= 1
			}
			if top {
				c.reg.Flags |= flagCF
			} else {
				c.reg.Flags &^= flagCF
			}
		}
		if count == 1 {
			c.setOFShift(v&msb != 0, c.reg.Flags&flagCF != 0)
		}
	case RCR:
		for i := uint16(0); i < count; i++ {
			bot := v&1 != 0
			oldCF := c.reg.Flags&flagCF != 0
			if count == 1 {
				c.setOFShift(v&msb != 0, oldCF)
			}
			v >>= 1
			if oldCF {
				v |= msb
			}
			if bot {
				c.reg.Flags |= flagCF
			} else {
				c.reg.Flags &^= flagCF
			}
		}
	case SHL:
		var last uint16
		for i := uint16(0); i < count; i++ {
			last = v & msb
			v = (v << 1) & sz.Mask()
		}
		c.setFlagsLogical(v, sz)
		if last != 0 {
			c.reg.Flags |= flagCF
		} else {
			c.reg.Flags &^= flagCF
		}
		if count == 1 {
			c.setOFShift(v&msb != 0, last != 0)
		}
	case SHR:
		msbBefore := v & msb
		var last uint16
		for i := uint16(0); i < count; i++ {
			last = v & 1
			v >>= 1
		}
		c.setFlagsLogical(v, sz)
		if last != 0 {
			c.reg.Flags |= flagCF
		} else {
			c.reg.Flags &^= flagCF
		}
		if count == 1 {
			c.setOFShift(msbBefore != 0, false)
		}
	case SAR:
		signed := int16(v)
		if sz == Byte {
			signed = int16(int8(v))
		}
		var last uint16
		for i := uint16(0); i < count; i++ {
			last = uint16(signed) & 1
			signed >>= 1
		}
		v = uint16(signed) & sz.Mask()
		c.setFlagsLogical(v, sz)
		if last != 0 {
			c.reg.Flags |= flagCF
		} else {
			c.reg.Flags &^= flagCF
		}
		if count == 1 {
			c.reg.Flags &^= flagOF
		}
	}

	_ = bits
	c.writeOperand(inst.Op1, sz, v)
}

// setOFShift sets OF for single-bit rotate/shift operations, which is
// defined only when the count is exactly 1: OF is the XOR of the new
// top bit against the bit shifted out.
func (c *CPU) setOFShift(newTop, shiftedOut bool) {
	if newTop != shiftedOut {
		c.reg.Flags |= flagOF
	} else {
		c.reg.Flags &^= flagOF
	}
}
