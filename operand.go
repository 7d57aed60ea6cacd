package i8088

// OperandKind tags the variant an Operand resolves to. Instruction
// records carry up to two of these, fully decoded (no re-parsing of the
// instruction stream needed at execute time).
type OperandKind uint8

const (
	OpNone OperandKind = iota
	OpReg8
	OpReg16
	OpSegReg
	OpMem
	OpImm
	OpRel
	OpFarPtr
	OpMoffs
	OpOne  // implicit shift/rotate count of 1
	OpCL   // implicit shift/rotate count in CL
	OpDX   // implicit port number in DX
	OpAL   // implicit accumulator low byte
	OpAX   // implicit accumulator word
)

// Operand is a fully decoded instruction operand: which kind it is, and
// whatever immediate/register/EA data that kind needs to be read or
// written at execute time.
type Operand struct {
	Kind   OperandKind
	Reg    uint8  // register index, for OpReg8/OpReg16/OpSegReg
	MRM    modRM  // for OpMem
	Imm    uint16 // immediate, or offset for OpRel/OpMoffs/OpFarPtr
	FarSeg uint16 // segment half, for OpFarPtr
}

// readReg8 returns the 8-bit register selected by the 8086 8-bit
// register encoding (0=AL,1=CL,2=DL,3=BL,4=AH,5=CH,6=DH,7=BH).
func (c *CPU) readReg8(i uint8) uint16 {
	switch i {
	case 0:
		return al(c.reg.AX)
	case 1:
		return al(c.reg.CX)
	case 2:
		return al(c.reg.DX)
	case 3:
		return al(c.reg.BX)
	case 4:
		return ah(c.reg.AX)
	case 5:
		return ah(c.reg.CX)
	case 6:
		return ah(c.reg.DX)
	case 7:
		return ah(c.reg.BX)
	}
	return 0
}

func (c *CPU) writeReg8(i uint8, v uint16) {
	switch i {
	case 0:
		setAL(&c.reg.AX, v)
	case 1:
		setAL(&c.reg.CX, v)
	case 2:
		setAL(&c.reg.DX, v)
	case 3:
		setAL(&c.reg.BX, v)
	case 4:
		setAH(&c.reg.AX, v)
	case 5:
		setAH(&c.reg.CX, v)
	case 6:
		setAH(&c.reg.DX, v)
	case 7:
		setAH(&c.reg.BX, v)
	}
}

func (c *CPU) readReg16(i uint8) uint16 {
	switch i {
	case 0:
		return c.reg.AX
	case 1:
		return c.reg.CX
	case 2:
		return c.reg.DX
	case 3:
		return c.reg.BX
	case 4:
		return c.reg.SP
	case 5:
		return c.reg.BP
	case 6:
		return c.reg.SI
	case 7:
		return c.reg.DI
	}
	return 0
}

func (c *CPU) writeReg16(i uint8, v uint16) {
	switch i {
	case 0:
		c.reg.AX = v
	case 1:
		c.reg.CX = v
	case 2:
		c.reg.DX = v
	case 3:
		c.reg.BX = v
	case 4:
		c.reg.SP = v
	case 5:
		c.reg.BP = v
	case 6:
		c.reg.SI = v
	case 7:
		c.reg.DI = v
	}
}

func (c *CPU) readSegReg(i uint8) uint16 {
	switch i {
	case segES:
		return c.reg.ES
	case segCS:
		return c.reg.CS
	case segSS:
		return c.reg.SS
	case segDS:
		return c.reg.DS
	}
	return 0
}

func (c *CPU) writeSegReg(i uint8, v uint16) {
	switch i {
	case segES:
		c.reg.ES = v
	case segCS:
		c.reg.CS = v
		c.flushQueue()
	case segSS:
		c.reg.SS = v
		c.interruptInhibit = true
	case segDS:
		c.reg.DS = v
	}
	c.lastSegWrite = int8(i)
}

// memAddr resolves a ModRM memory operand to a segment:offset pair,
// applying the instruction's segment override if one was decoded,
// otherwise the BP-implies-SS / else-DS default rule.
func (c *CPU) memAddr(m modRM) (seg, off uint16) {
	if m.isReg {
		// Illegal reg,reg encoding of an instruction whose only memory
		// form is implied (LDS/LES): the EA-calculation logic never ran
		// for this ModRM byte, so fall back to the last address it did
		// latch, matching real 8088 behavior.
		return c.lastEA.seg, c.lastEA.off
	}
	off = c.effectiveOffset(m)
	seg = c.defaultSeg(m.mode.usesBP())
	c.lastEA.seg, c.lastEA.off = seg, off
	return seg, off
}

// readOperand returns the value of an operand, fetching memory/port/register
// contents as appropriate.
func (c *CPU) readOperand(op Operand, sz Size) uint16 {
	switch op.Kind {
	case OpReg8:
		return c.readReg8(op.Reg)
	case OpReg16:
		return c.readReg16(op.Reg)
	case OpSegReg:
		return c.readSegReg(op.Reg)
	case OpMem:
		seg, off := c.memAddr(op.MRM)
		return c.readMem(seg, off, sz)
	case OpImm, OpRel:
		return op.Imm
	case OpMoffs:
		seg := c.defaultSeg(false)
		if s, ok := c.effectiveSegOverride(); ok {
			seg = s
		}
		return c.readMem(seg, op.Imm, sz)
	case OpOne:
		return 1
	case OpCL:
		return al(c.reg.CX)
	case OpDX:
		return c.reg.DX
	case OpAL:
		return al(c.reg.AX)
	case OpAX:
		return c.reg.AX
	}
	return 0
}

// writeOperand stores a value into an operand, writing memory/register
// contents as appropriate. Memory-byte writes via OpMem only touch the
// low byte when sz is Byte.
func (c *CPU) writeOperand(op Operand, sz Size, val uint16) {
	switch op.Kind {
	case OpReg8:
		c.writeReg8(op.Reg, val)
	case OpReg16:
		c.writeReg16(op.Reg, val)
	case OpSegReg:
		c.writeSegReg(op.Reg, val)
	case OpMem:
		seg, off := c.memAddr(op.MRM)
		c.writeMem(seg, off, sz, val)
	case OpMoffs:
		seg := c.defaultSeg(false)
		if s, ok := c.effectiveSegOverride(); ok {
			seg = s
		}
		c.writeMem(seg, op.Imm, sz, val)
	case OpAL:
		setAL(&c.reg.AX, val)
	case OpAX:
		c.reg.AX = val
	}
}
