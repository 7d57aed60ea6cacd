package i8088

// execString implements the string instruction family (MOVS/CMPS/STOS/
// LODS/SCAS, byte and word forms), including REP/REPE/REPNE repetition.
// SI/DI advance by the operand size, forward or backward depending on DF.
func (c *CPU) execString(inst *Instruction) {
	sz := inst.OpSize
	step := int16(sz)
	if c.reg.Flags&flagDF != 0 {
		step = -step
	}

	srcSeg := c.defaultSeg(false)
	if s, ok := c.effectiveSegOverride(); ok {
		srcSeg = s
	}

	repeating := inst.Flags&FlagRep != 0
	repZ := inst.Flags&FlagRepZ != 0

	accOp := Operand{Kind: OpAL}
	if sz == Word {
		accOp = Operand{Kind: OpAX}
	}

	if repeating && c.reg.CX == 0 {
		return
	}
	for {
		switch inst.Mnemonic {
		case MOVSB, MOVSW:
			v := c.readMem(srcSeg, c.reg.SI, sz)
			c.writeMem(c.reg.ES, c.reg.DI, sz, v)
			c.reg.SI = uint16(int16(c.reg.SI) + step)
			c.reg.DI = uint16(int16(c.reg.DI) + step)
		case STOSB, STOSW:
			c.writeMem(c.reg.ES, c.reg.DI, sz, c.readOperand(accOp, sz))
			c.reg.DI = uint16(int16(c.reg.DI) + step)
		case LODSB, LODSW:
			v := c.readMem(srcSeg, c.reg.SI, sz)
			c.writeOperand(accOp, sz, v)
			c.reg.SI = uint16(int16(c.reg.SI) + step)
		case CMPSB, CMPSW:
			a := c.readMem(srcSeg, c.reg.SI, sz)
			b := c.readMem(c.reg.ES, c.reg.DI, sz)
			c.setFlagsSub(b, a, a-b, sz)
			c.reg.SI = uint16(int16(c.reg.SI) + step)
			c.reg.DI = uint16(int16(c.reg.DI) + step)
		case SCASB, SCASW:
			acc := c.readOperand(accOp, sz)
			v := c.readMem(c.reg.ES, c.reg.DI, sz)
			c.setFlagsSub(v, acc, acc-v, sz)
			c.reg.DI = uint16(int16(c.reg.DI) + step)
		}

		if !repeating {
			return
		}
		c.reg.CX--
		if c.reg.CX == 0 {
			return
		}
		switch inst.Mnemonic {
		case CMPSB, CMPSW, SCASB, SCASW:
			z := c.reg.Flags&flagZF != 0
			if repZ && !z {
				return
			}
			if !repZ && z {
				return
			}
		}
	}
}
