package i8088

// execMove implements MOV: dst = src, no flags affected.
func (c *CPU) execMove(inst *Instruction) {
	v := c.readOperand(inst.Op2, inst.OpSize)
	c.writeOperand(inst.Op1, inst.OpSize, v)
}

// execPush implements PUSH. All pushes are word-sized on the 8088; sz
// defaults to Word whenever the decoded size is unset.
func (c *CPU) execPush(inst *Instruction) {
	sz := inst.OpSize
	if sz == 0 {
		sz = Word
	}
	c.push(c.readOperand(inst.Op1, sz))
}

func (c *CPU) execPop(inst *Instruction) {
	sz := inst.OpSize
	if sz == 0 {
		sz = Word
	}
	c.writeOperand(inst.Op1, sz, c.pop())
}

func (c *CPU) execXchg(inst *Instruction) {
	a := c.readOperand(inst.Op1, inst.OpSize)
	b := c.readOperand(inst.Op2, inst.OpSize)
	c.writeOperand(inst.Op1, inst.OpSize, b)
	c.writeOperand(inst.Op2, inst.OpSize, a)
}

// execLEA loads the effective address of a memory operand into a
// general register, without touching the segment or reading memory.
func (c *CPU) execLEA(inst *Instruction) {
	_, off := c.memAddr(inst.Op2.MRM)
	c.writeReg16(inst.Op1.Reg, off)
}

// execLoadFarPtr implements LDS/LES: load a 32-bit far pointer from
// memory, the offset into the destination register and the segment
// into DS or ES.
func (c *CPU) execLoadFarPtr(inst *Instruction) {
	seg, off := c.memAddr(inst.Op2.MRM)
	word := c.readMem(seg, off, Word)
	hiSeg := c.readMem(seg, off+2, Word)
	c.writeReg16(inst.Op1.Reg, word)
	if inst.Mnemonic == LDS {
		c.reg.DS = hiSeg
	} else {
		c.reg.ES = hiSeg
	}
}

// execXLAT implements XLAT: AL = [segment:BX+AL].
func (c *CPU) execXLAT() {
	seg := c.defaultSeg(false)
	if s, ok := c.effectiveSegOverride(); ok {
		seg = s
	}
	off := c.reg.BX + al(c.reg.AX)
	setAL(&c.reg.AX, uint16(c.readMem(seg, off, Byte)))
}

func (c *CPU) execIn(inst *Instruction) {
	port := c.readOperand(inst.Op2, Word)
	v := c.readPort(port, inst.OpSize)
	c.writeOperand(inst.Op1, inst.OpSize, v)
}

func (c *CPU) execOut(inst *Instruction) {
	port := c.readOperand(inst.Op1, Word)
	v := c.readOperand(inst.Op2, inst.OpSize)
	c.writePort(port, inst.OpSize, v)
}
