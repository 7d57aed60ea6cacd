package i8088

// execute carries out the decoded instruction against live CPU state.
// Unlike decode, which is purely a function of the byte stream, execute
// reads and writes registers, memory and ports, and may flush the
// prefetch queue (branches) or request the EU halt (HLT).
func (c *CPU) execute(inst *Instruction) {
	switch inst.Mnemonic {
	case ADD, OR, ADC, SBB, AND, SUB, XOR, CMP:
		c.execALU(inst)
	case TEST:
		c.execTest(inst)
	case INC, DEC:
		c.execIncDec(inst)
	case NOT:
		v := c.readOperand(inst.Op1, inst.OpSize)
		c.writeOperand(inst.Op1, inst.OpSize, ^v&inst.OpSize.Mask())
	case NEG:
		c.execNeg(inst)
	case MUL, IMUL:
		c.execMul(inst)
	case DIV, IDIV:
		c.execDiv(inst)

	case MOV:
		c.execMove(inst)
	case PUSH:
		c.execPush(inst)
	case POP:
		c.execPop(inst)
	case XCHG:
		c.execXchg(inst)
	case LEA:
		c.execLEA(inst)
	case LDS, LES:
		c.execLoadFarPtr(inst)
	case XLAT:
		c.execXLAT()
	case IN:
		c.execIn(inst)
	case OUT:
		c.execOut(inst)

	case MOVSB, MOVSW, CMPSB, CMPSW, STOSB, STOSW, LODSB, LODSW, SCASB, SCASW:
		c.execString(inst)

	case CLC, STC, CMC, CLD, STD, CLI, STI:
		c.execFlagCtrl(inst.Mnemonic)
	case NOP, WAIT, ESC:
		// no architectural effect modeled
	case HLT:
		c.execHlt()
	case SAHF:
		c.execSahf()
	case LAHF:
		c.execLahf()
	case PUSHF:
		c.execPushf()
	case POPF:
		c.execPopf()
	case CBW:
		c.execCbw()
	case CWD:
		c.execCwd()
	case DAA:
		c.execDAA()
	case DAS:
		c.execDAS()
	case AAA:
		c.execAAA()
	case AAS:
		c.execAAS()
	case AAM:
		c.execAAM(byte(inst.Op1.Imm))
	case AAD:
		c.execAAD(byte(inst.Op1.Imm))
	case SALC:
		c.execSalc()

	case CALL:
		c.execCall(inst)
	case CALLF:
		c.execCallFar(inst)
	case JMP:
		c.execJmp(inst)
	case JMPF:
		c.execJmpFar(inst)
	case RETN:
		c.execRetn(inst)
	case RETF:
		c.execRetFar(inst)
	case JCC:
		c.execJcc(inst)
	case LOOP, LOOPE, LOOPNE, JCXZ:
		c.execLoop(inst)
	case INT, INT3, INTO, IRET:
		c.execInt(inst)

	case ROL, ROR, RCL, RCR, SHL, SHR, SAR:
		c.execShift(inst)
	}
}
