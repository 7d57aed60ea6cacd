package i8088

import "fmt"

// DecodeFlags is a bitmask of structural properties of a decoded
// instruction, set by decode() and consulted by execute() and the
// validator without needing to re-inspect the opcode byte.
type DecodeFlags uint16

const (
	FlagHasModRM DecodeFlags = 1 << iota
	FlagUsesMemory
	FlagLoadsEA
	FlagRelativeJump
	FlagGroupFetchDelay
	FlagLock
	FlagRep
	FlagRepZ // distinguishes REPZ (0xF3) from REPNZ (0xF2) when FlagRep is set
)

// Instruction is the immutable record produced by decode(): everything
// execute() needs, with no further bytes to fetch.
type Instruction struct {
	Opcode         byte
	Mnemonic       Mnemonic
	Op1            Operand
	Op2            Operand
	OpSize         Size
	Size           int // total encoded length in bytes, including prefixes
	Flags          DecodeFlags
	HasSegOverride bool
	SegOverride    int8
	CC             CC // valid when Mnemonic == JCC
}

// DecodeError reports that decode() could not interpret a byte sequence
// as a valid 8088 instruction.
type DecodeError struct {
	Opcode byte
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("i8088: illegal opcode %02X: %s", e.Opcode, e.Reason)
}

// decode reads one instruction from bq, consuming exactly the bytes that
// belong to it (prefixes, opcode, ModRM, displacement, immediate) and
// returns an immutable Instruction. decode never computes a linear
// address: a BP-based EA's default segment depends on whether a segment
// override prefix preceded the opcode, which decode records but leaves
// for execute to resolve.
func decode(bq ByteQueue) (Instruction, error) {
	var inst Instruction
	inst.SegOverride = -1
	size := 0

	// Prefix loop: segment overrides, REP/REPNE, LOCK. The last segment
	// override before the opcode wins if more than one is given.
prefixLoop:
	for {
		b := bq.ReadU8()
		switch b {
		case 0x26:
			inst.HasSegOverride, inst.SegOverride = true, segES
		case 0x2E:
			inst.HasSegOverride, inst.SegOverride = true, segCS
		case 0x36:
			inst.HasSegOverride, inst.SegOverride = true, segSS
		case 0x3E:
			inst.HasSegOverride, inst.SegOverride = true, segDS
		case 0xF0:
			inst.Flags |= FlagLock
		case 0xF2:
			inst.Flags |= FlagRep
			inst.Flags &^= FlagRepZ
		case 0xF3:
			inst.Flags |= FlagRep | FlagRepZ
		default:
			break prefixLoop
		}
		bq.Q8()
		size++
	}

	opcode := bq.Q8()
	size++
	inst.Opcode = opcode

	if err := decodeOpcode(bq, &inst, opcode, &size); err != nil {
		inst.Size = size
		return inst, err
	}

	inst.Size = size
	return inst, nil
}

// aluOps names the 8 ALU operations selected by bits 5:3 of opcodes
// 0x00-0x3D, in encoding order.
var aluOps = [8]Mnemonic{ADD, OR, ADC, SBB, AND, SUB, XOR, CMP}

// jccTable maps a Jcc opcode's low nibble (0x70-0x7F) to a condition code.
var jccTable = [16]CC{ccO, ccNO, ccB, ccNB, ccZ, ccNZ, ccBE, ccA, ccS, ccNS, ccP, ccNP, ccL, ccGE, ccLE, ccG}

func decodeOpcode(bq ByteQueue, inst *Instruction, opcode byte, size *int) error {
	// The 8088 has no PUSHA/POPA/BOUND (those are 80186+), so 0x60-0x6F
	// decode as undocumented aliases of the Jcc range 0x70-0x7F; 0xC0/0xC1
	// alias RETN-imm16/RETN (0xC2/0xC3), and 0xF1 aliases NOP (0x90). All
	// four are real silicon behavior, not illegal opcodes. inst.Opcode
	// already holds the byte actually fetched; only the dispatch below
	// uses the aliased value.
	switch {
	case opcode >= 0x60 && opcode <= 0x6F:
		opcode = 0x70 + (opcode - 0x60)
	case opcode == 0xC0:
		opcode = 0xC2
	case opcode == 0xC1:
		opcode = 0xC3
	case opcode == 0xF1:
		opcode = 0x90
	}

	if opcode <= 0x3D && opcode != 0x0F && opcode&7 <= 5 {
		return decodeALUGroup(bq, inst, opcode, size)
	}

	switch opcode {
	case 0x06, 0x0E, 0x16, 0x1E: // PUSH seg
		inst.Mnemonic, inst.OpSize = PUSH, Word
		inst.Op1 = Operand{Kind: OpSegReg, Reg: segRegFromPushPop(opcode)}
		return nil
	case 0x07, 0x17, 0x1F: // POP seg (CS has no pop encoding on 8086/8088)
		inst.Mnemonic, inst.OpSize = POP, Word
		inst.Op1 = Operand{Kind: OpSegReg, Reg: segRegFromPushPop(opcode)}
		return nil

	case 0x27:
		inst.Mnemonic = DAA
		return nil
	case 0x2F:
		inst.Mnemonic = DAS
		return nil
	case 0x37:
		inst.Mnemonic = AAA
		return nil
	case 0x3F:
		inst.Mnemonic = AAS
		return nil

	case 0xD4:
		inst.Mnemonic = AAM
		inst.Op1 = Operand{Kind: OpImm, Imm: uint16(bq.Q8())}
		*size++
		return nil
	case 0xD5:
		inst.Mnemonic = AAD
		inst.Op1 = Operand{Kind: OpImm, Imm: uint16(bq.Q8())}
		*size++
		return nil
	case 0xD6:
		inst.Mnemonic = SALC
		return nil
	case 0xD7:
		inst.Mnemonic = XLAT
		return nil

	case 0x90:
		inst.Mnemonic = NOP
		return nil
	case 0x91, 0x92, 0x93, 0x94, 0x95, 0x96, 0x97: // XCHG AX, reg16
		inst.Mnemonic, inst.OpSize = XCHG, Word
		inst.Op1 = Operand{Kind: OpAX}
		inst.Op2 = Operand{Kind: OpReg16, Reg: opcode - 0x90}
		return nil

	case 0x98:
		inst.Mnemonic = CBW
		return nil
	case 0x99:
		inst.Mnemonic = CWD
		return nil
	case 0x9A: // CALLF ptr16:16
		inst.Mnemonic = CALLF
		off := bq.Q16()
		seg := bq.Q16()
		*size += 4
		inst.Op1 = Operand{Kind: OpFarPtr, Imm: off, FarSeg: seg}
		return nil
	case 0x9B:
		inst.Mnemonic = WAIT
		return nil
	case 0x9C:
		inst.Mnemonic = PUSHF
		return nil
	case 0x9D:
		inst.Mnemonic = POPF
		return nil
	case 0x9E:
		inst.Mnemonic = SAHF
		return nil
	case 0x9F:
		inst.Mnemonic = LAHF
		return nil

	case 0xA0, 0xA1, 0xA2, 0xA3: // MOV AL/AX, moffs and reverse
		inst.Mnemonic = MOV
		off := bq.Q16()
		*size += 2
		sz := Byte
		if opcode == 0xA1 || opcode == 0xA3 {
			sz = Word
		}
		inst.OpSize = sz
		acc := Operand{Kind: OpAL}
		if sz == Word {
			acc = Operand{Kind: OpAX}
		}
		moffs := Operand{Kind: OpMoffs, Imm: off}
		if opcode == 0xA0 || opcode == 0xA1 {
			inst.Op1, inst.Op2 = acc, moffs
		} else {
			inst.Op1, inst.Op2 = moffs, acc
		}
		inst.Flags |= FlagUsesMemory
		return nil

	case 0xA4:
		inst.Mnemonic, inst.OpSize = MOVSB, Byte
		inst.Flags |= FlagUsesMemory
		return nil
	case 0xA5:
		inst.Mnemonic, inst.OpSize = MOVSW, Word
		inst.Flags |= FlagUsesMemory
		return nil
	case 0xA6:
		inst.Mnemonic, inst.OpSize = CMPSB, Byte
		inst.Flags |= FlagUsesMemory
		return nil
	case 0xA7:
		inst.Mnemonic, inst.OpSize = CMPSW, Word
		inst.Flags |= FlagUsesMemory
		return nil
	case 0xA8:
		inst.Mnemonic, inst.OpSize = TEST, Byte
		inst.Op1 = Operand{Kind: OpAL}
		inst.Op2 = Operand{Kind: OpImm, Imm: uint16(bq.Q8())}
		*size++
		return nil
	case 0xA9:
		inst.Mnemonic, inst.OpSize = TEST, Word
		inst.Op1 = Operand{Kind: OpAX}
		inst.Op2 = Operand{Kind: OpImm, Imm: bq.Q16()}
		*size += 2
		return nil
	case 0xAA:
		inst.Mnemonic, inst.OpSize = STOSB, Byte
		inst.Flags |= FlagUsesMemory
		return nil
	case 0xAB:
		inst.Mnemonic, inst.OpSize = STOSW, Word
		inst.Flags |= FlagUsesMemory
		return nil
	case 0xAC:
		inst.Mnemonic, inst.OpSize = LODSB, Byte
		inst.Flags |= FlagUsesMemory
		return nil
	case 0xAD:
		inst.Mnemonic, inst.OpSize = LODSW, Word
		inst.Flags |= FlagUsesMemory
		return nil
	case 0xAE:
		inst.Mnemonic, inst.OpSize = SCASB, Byte
		inst.Flags |= FlagUsesMemory
		return nil
	case 0xAF:
		inst.Mnemonic, inst.OpSize = SCASW, Word
		inst.Flags |= FlagUsesMemory
		return nil

	case 0xC2: // RETN imm16
		inst.Mnemonic = RETN
		inst.Op1 = Operand{Kind: OpImm, Imm: bq.Q16()}
		*size += 2
		return nil
	case 0xC3:
		inst.Mnemonic = RETN
		return nil
	case 0xC4, 0xC5: // LES/LDS r16, m16:16
		m := readModRM(bq)
		*size += modRMSize(m)
		inst.Mnemonic = LES
		if opcode == 0xC5 {
			inst.Mnemonic = LDS
		}
		inst.OpSize = Word
		inst.Op1 = Operand{Kind: OpReg16, Reg: m.reg}
		inst.Op2 = Operand{Kind: OpMem, MRM: m}
		inst.Flags |= FlagHasModRM | FlagUsesMemory
		return nil
	case 0xC6, 0xC7: // MOV r/m, imm
		sz := Byte
		if opcode == 0xC7 {
			sz = Word
		}
		m := readModRM(bq)
		*size += modRMSize(m)
		inst.Mnemonic, inst.OpSize = MOV, sz
		inst.Op1 = modrmOperand(m, sz)
		inst.Flags |= FlagHasModRM
		if !m.isReg {
			inst.Flags |= FlagUsesMemory
		}
		inst.Op2 = Operand{Kind: OpImm, Imm: readImm(bq, sz, size)}
		return nil
	case 0xCA: // RETF imm16
		inst.Mnemonic = RETF
		inst.Op1 = Operand{Kind: OpImm, Imm: bq.Q16()}
		*size += 2
		return nil
	case 0xCB:
		inst.Mnemonic = RETF
		return nil
	case 0xCC:
		inst.Mnemonic = INT3
		return nil
	case 0xCD:
		inst.Mnemonic = INT
		inst.Op1 = Operand{Kind: OpImm, Imm: uint16(bq.Q8())}
		*size++
		return nil
	case 0xCE:
		inst.Mnemonic = INTO
		return nil
	case 0xCF:
		inst.Mnemonic = IRET
		return nil

	case 0xD8, 0xD9, 0xDA, 0xDB, 0xDC, 0xDD, 0xDE, 0xDF: // ESC (no FPU present)
		m := readModRM(bq)
		*size += modRMSize(m)
		inst.Mnemonic = ESC
		inst.Flags |= FlagHasModRM
		if !m.isReg {
			inst.Flags |= FlagUsesMemory
		}
		inst.Op1 = modrmOperand(m, Word)
		return nil

	case 0xE0:
		inst.Mnemonic = LOOPNE
		inst.Op1 = Operand{Kind: OpRel, Imm: readRel8(bq, size)}
		inst.Flags |= FlagRelativeJump
		return nil
	case 0xE1:
		inst.Mnemonic = LOOPE
		inst.Op1 = Operand{Kind: OpRel, Imm: readRel8(bq, size)}
		inst.Flags |= FlagRelativeJump
		return nil
	case 0xE2:
		inst.Mnemonic = LOOP
		inst.Op1 = Operand{Kind: OpRel, Imm: readRel8(bq, size)}
		inst.Flags |= FlagRelativeJump
		return nil
	case 0xE3:
		inst.Mnemonic = JCXZ
		inst.Op1 = Operand{Kind: OpRel, Imm: readRel8(bq, size)}
		inst.Flags |= FlagRelativeJump
		return nil
	case 0xE4:
		inst.Mnemonic, inst.OpSize = IN, Byte
		inst.Op1 = Operand{Kind: OpAL}
		inst.Op2 = Operand{Kind: OpImm, Imm: uint16(bq.Q8())}
		*size++
		return nil
	case 0xE5:
		inst.Mnemonic, inst.OpSize = IN, Word
		inst.Op1 = Operand{Kind: OpAX}
		inst.Op2 = Operand{Kind: OpImm, Imm: uint16(bq.Q8())}
		*size++
		return nil
	case 0xE6:
		inst.Mnemonic, inst.OpSize = OUT, Byte
		inst.Op1 = Operand{Kind: OpImm, Imm: uint16(bq.Q8())}
		inst.Op2 = Operand{Kind: OpAL}
		*size++
		return nil
	case 0xE7:
		inst.Mnemonic, inst.OpSize = OUT, Word
		inst.Op1 = Operand{Kind: OpImm, Imm: uint16(bq.Q8())}
		inst.Op2 = Operand{Kind: OpAX}
		*size++
		return nil
	case 0xE8: // CALL rel16
		inst.Mnemonic = CALL
		inst.Op1 = Operand{Kind: OpRel, Imm: bq.Q16()}
		*size += 2
		inst.Flags |= FlagRelativeJump
		return nil
	case 0xE9: // JMP rel16
		inst.Mnemonic = JMP
		inst.Op1 = Operand{Kind: OpRel, Imm: bq.Q16()}
		*size += 2
		inst.Flags |= FlagRelativeJump
		return nil
	case 0xEA: // JMPF ptr16:16
		inst.Mnemonic = JMPF
		off := bq.Q16()
		seg := bq.Q16()
		*size += 4
		inst.Op1 = Operand{Kind: OpFarPtr, Imm: off, FarSeg: seg}
		return nil
	case 0xEB: // JMP rel8
		inst.Mnemonic = JMP
		inst.Op1 = Operand{Kind: OpRel, Imm: readRel8(bq, size)}
		inst.Flags |= FlagRelativeJump
		return nil
	case 0xEC:
		inst.Mnemonic, inst.OpSize = IN, Byte
		inst.Op1 = Operand{Kind: OpAL}
		inst.Op2 = Operand{Kind: OpDX}
		return nil
	case 0xED:
		inst.Mnemonic, inst.OpSize = IN, Word
		inst.Op1 = Operand{Kind: OpAX}
		inst.Op2 = Operand{Kind: OpDX}
		return nil
	case 0xEE:
		inst.Mnemonic, inst.OpSize = OUT, Byte
		inst.Op1 = Operand{Kind: OpDX}
		inst.Op2 = Operand{Kind: OpAL}
		return nil
	case 0xEF:
		inst.Mnemonic, inst.OpSize = OUT, Word
		inst.Op1 = Operand{Kind: OpDX}
		inst.Op2 = Operand{Kind: OpAX}
		return nil

	case 0xF4:
		inst.Mnemonic = HLT
		return nil
	case 0xF5:
		inst.Mnemonic = CMC
		return nil
	case 0xF8:
		inst.Mnemonic = CLC
		return nil
	case 0xF9:
		inst.Mnemonic = STC
		return nil
	case 0xFA:
		inst.Mnemonic = CLI
		return nil
	case 0xFB:
		inst.Mnemonic = STI
		return nil
	case 0xFC:
		inst.Mnemonic = CLD
		return nil
	case 0xFD:
		inst.Mnemonic = STD
		return nil
	}

	switch {
	case opcode >= 0x40 && opcode <= 0x47:
		inst.Mnemonic, inst.OpSize = INC, Word
		inst.Op1 = Operand{Kind: OpReg16, Reg: opcode - 0x40}
		return nil
	case opcode >= 0x48 && opcode <= 0x4F:
		inst.Mnemonic, inst.OpSize = DEC, Word
		inst.Op1 = Operand{Kind: OpReg16, Reg: opcode - 0x48}
		return nil
	case opcode >= 0x50 && opcode <= 0x57:
		inst.Mnemonic, inst.OpSize = PUSH, Word
		inst.Op1 = Operand{Kind: OpReg16, Reg: opcode - 0x50}
		return nil
	case opcode >= 0x58 && opcode <= 0x5F:
		inst.Mnemonic, inst.OpSize = POP, Word
		inst.Op1 = Operand{Kind: OpReg16, Reg: opcode - 0x58}
		return nil
	case opcode >= 0x70 && opcode <= 0x7F:
		inst.Mnemonic = JCC
		inst.CC = jccTable[opcode-0x70]
		inst.Op1 = Operand{Kind: OpRel, Imm: readRel8(bq, size)}
		inst.Flags |= FlagRelativeJump
		return nil
	case opcode == 0x80 || opcode == 0x81 || opcode == 0x82 || opcode == 0x83:
		return decodeGroup1(bq, inst, opcode, size)
	case opcode >= 0x84 && opcode <= 0x8D:
		return decodeMovXchgGroup(bq, inst, opcode, size)
	case opcode == 0x8E: // MOV segreg, r/m16
		m := readModRM(bq)
		*size += modRMSize(m)
		inst.Mnemonic, inst.OpSize = MOV, Word
		inst.Op1 = Operand{Kind: OpSegReg, Reg: m.reg}
		inst.Op2 = modrmOperand(m, Word)
		inst.Flags |= FlagHasModRM
		if !m.isReg {
			inst.Flags |= FlagUsesMemory
		}
		return nil
	case opcode == 0x8F: // POP r/m16
		m := readModRM(bq)
		*size += modRMSize(m)
		inst.Mnemonic, inst.OpSize = POP, Word
		inst.Op1 = modrmOperand(m, Word)
		inst.Flags |= FlagHasModRM
		if !m.isReg {
			inst.Flags |= FlagUsesMemory
		}
		return nil
	case opcode >= 0xB0 && opcode <= 0xB7:
		inst.Mnemonic, inst.OpSize = MOV, Byte
		inst.Op1 = Operand{Kind: OpReg8, Reg: opcode - 0xB0}
		inst.Op2 = Operand{Kind: OpImm, Imm: uint16(bq.Q8())}
		*size++
		return nil
	case opcode >= 0xB8 && opcode <= 0xBF:
		inst.Mnemonic, inst.OpSize = MOV, Word
		inst.Op1 = Operand{Kind: OpReg16, Reg: opcode - 0xB8}
		inst.Op2 = Operand{Kind: OpImm, Imm: bq.Q16()}
		*size += 2
		return nil
	case opcode == 0xD0 || opcode == 0xD1 || opcode == 0xD2 || opcode == 0xD3:
		return decodeShiftGroup(bq, inst, opcode, size)
	case opcode == 0xF6 || opcode == 0xF7:
		return decodeGroup3(bq, inst, opcode, size)
	case opcode == 0xFE || opcode == 0xFF:
		return decodeGroup5(bq, inst, opcode, size)
	}

	return &DecodeError{opcode, "unassigned opcode"}
}

// decodeALUGroup handles the 8 ALU mnemonics' 4 standard encodings
// (r/m,reg / reg,r/m / AL,imm8 / AX,imm16) spanning 0x00-0x3D.
func decodeALUGroup(bq ByteQueue, inst *Instruction, opcode byte, size *int) error {
	mnem := aluOps[(opcode>>3)&7]
	form := opcode & 7

	switch form {
	case 0, 1: // r/m,reg (direction: reg -> r/m)
		sz := Byte
		if form == 1 {
			sz = Word
		}
		m := readModRM(bq)
		*size += modRMSize(m)
		inst.Mnemonic, inst.OpSize = mnem, sz
		inst.Op1 = modrmOperand(m, sz)
		inst.Op2 = regOperand(m.reg, sz)
		inst.Flags |= FlagHasModRM
		if !m.isReg {
			inst.Flags |= FlagUsesMemory
		}
		return nil
	case 2, 3: // reg,r/m (direction: r/m -> reg)
		sz := Byte
		if form == 3 {
			sz = Word
		}
		m := readModRM(bq)
		*size += modRMSize(m)
		inst.Mnemonic, inst.OpSize = mnem, sz
		inst.Op1 = regOperand(m.reg, sz)
		inst.Op2 = modrmOperand(m, sz)
		inst.Flags |= FlagHasModRM
		if !m.isReg {
			inst.Flags |= FlagUsesMemory
		}
		return nil
	case 4: // AL, imm8
		inst.Mnemonic, inst.OpSize = mnem, Byte
		inst.Op1 = Operand{Kind: OpAL}
		inst.Op2 = Operand{Kind: OpImm, Imm: uint16(bq.Q8())}
		*size++
		return nil
	case 5: // AX, imm16
		inst.Mnemonic, inst.OpSize = mnem, Word
		inst.Op1 = Operand{Kind: OpAX}
		inst.Op2 = Operand{Kind: OpImm, Imm: bq.Q16()}
		*size += 2
		return nil
	}
	return &DecodeError{opcode, "unreachable ALU form"}
}

// group1Ops are the 8 ALU mnemonics selected by ModRM.reg for the
// 0x80-0x83 immediate-to-r/m group.
var group1Ops = aluOps

func decodeGroup1(bq ByteQueue, inst *Instruction, opcode byte, size *int) error {
	m := readModRM(bq)
	*size += modRMSize(m)
	sz := Byte
	if opcode != 0x80 && opcode != 0x82 {
		sz = Word
	}
	inst.Mnemonic, inst.OpSize = group1Ops[m.reg], sz
	inst.Op1 = modrmOperand(m, sz)
	inst.Flags |= FlagHasModRM
	if !m.isReg {
		inst.Flags |= FlagUsesMemory
	}
	if opcode == 0x83 {
		imm := uint16(int16(int8(bq.Q8())))
		*size++
		inst.Op2 = Operand{Kind: OpImm, Imm: imm}
	} else {
		inst.Op2 = Operand{Kind: OpImm, Imm: readImm(bq, sz, size)}
	}
	return nil
}

func decodeMovXchgGroup(bq ByteQueue, inst *Instruction, opcode byte, size *int) error {
	switch opcode {
	case 0x84, 0x85: // TEST r/m, reg
		sz := Byte
		if opcode == 0x85 {
			sz = Word
		}
		m := readModRM(bq)
		*size += modRMSize(m)
		inst.Mnemonic, inst.OpSize = TEST, sz
		inst.Op1 = modrmOperand(m, sz)
		inst.Op2 = regOperand(m.reg, sz)
		inst.Flags |= FlagHasModRM
		if !m.isReg {
			inst.Flags |= FlagUsesMemory
		}
		return nil
	case 0x86, 0x87: // XCHG r/m, reg
		sz := Byte
		if opcode == 0x87 {
			sz = Word
		}
		m := readModRM(bq)
		*size += modRMSize(m)
		inst.Mnemonic, inst.OpSize = XCHG, sz
		inst.Op1 = modrmOperand(m, sz)
		inst.Op2 = regOperand(m.reg, sz)
		inst.Flags |= FlagHasModRM
		if !m.isReg {
			inst.Flags |= FlagUsesMemory
		}
		return nil
	case 0x88, 0x89, 0x8A, 0x8B: // MOV, all four directions/sizes
		sz := Byte
		if opcode == 0x89 || opcode == 0x8B {
			sz = Word
		}
		m := readModRM(bq)
		*size += modRMSize(m)
		inst.Mnemonic, inst.OpSize = MOV, sz
		if opcode == 0x88 || opcode == 0x89 {
			inst.Op1 = modrmOperand(m, sz)
			inst.Op2 = regOperand(m.reg, sz)
		} else {
			inst.Op1 = regOperand(m.reg, sz)
			inst.Op2 = modrmOperand(m, sz)
		}
		inst.Flags |= FlagHasModRM
		if !m.isReg {
			inst.Flags |= FlagUsesMemory
		}
		return nil
	case 0x8D: // LEA reg16, m
		m := readModRM(bq)
		*size += modRMSize(m)
		inst.Mnemonic, inst.OpSize = LEA, Word
		inst.Op1 = Operand{Kind: OpReg16, Reg: m.reg}
		inst.Op2 = Operand{Kind: OpMem, MRM: m}
		inst.Flags |= FlagHasModRM | FlagLoadsEA
		return nil
	}
	return &DecodeError{opcode, "unreachable mov/xchg form"}
}

// shiftOps are the rotate/shift mnemonics selected by ModRM.reg for the
// 0xD0-0xD3 group. Encoding 6 has no assigned mnemonic on real hardware
// and aliases SHL; we preserve that rather than rejecting it.
var shiftOps = [8]Mnemonic{ROL, ROR, RCL, RCR, SHL, SHR, SHL, SAR}

func decodeShiftGroup(bq ByteQueue, inst *Instruction, opcode byte, size *int) error {
	m := readModRM(bq)
	*size += modRMSize(m)
	sz := Byte
	if opcode == 0xD1 || opcode == 0xD3 {
		sz = Word
	}
	inst.Mnemonic, inst.OpSize = shiftOps[m.reg], sz
	inst.Op1 = modrmOperand(m, sz)
	inst.Flags |= FlagHasModRM
	if !m.isReg {
		inst.Flags |= FlagUsesMemory
	}
	if opcode == 0xD0 || opcode == 0xD1 {
		inst.Op2 = Operand{Kind: OpOne}
	} else {
		inst.Op2 = Operand{Kind: OpCL}
	}
	return nil
}

func decodeGroup3(bq ByteQueue, inst *Instruction, opcode byte, size *int) error {
	m := readModRM(bq)
	*size += modRMSize(m)
	sz := Byte
	if opcode == 0xF7 {
		sz = Word
	}
	inst.OpSize = sz
	inst.Op1 = modrmOperand(m, sz)
	inst.Flags |= FlagHasModRM
	if !m.isReg {
		inst.Flags |= FlagUsesMemory
	}
	switch m.reg {
	case 0, 1: // TEST r/m, imm
		inst.Mnemonic = TEST
		inst.Op2 = Operand{Kind: OpImm, Imm: readImm(bq, sz, size)}
	case 2:
		inst.Mnemonic = NOT
	case 3:
		inst.Mnemonic = NEG
	case 4:
		inst.Mnemonic = MUL
	case 5:
		inst.Mnemonic = IMUL
	case 6:
		inst.Mnemonic = DIV
	case 7:
		inst.Mnemonic = IDIV
	}
	if m.reg >= 2 {
		inst.Flags |= FlagGroupFetchDelay
	}
	return nil
}

func decodeGroup5(bq ByteQueue, inst *Instruction, opcode byte, size *int) error {
	m := readModRM(bq)
	*size += modRMSize(m)
	sz := Byte
	if opcode == 0xFF {
		sz = Word
	}
	inst.Flags |= FlagHasModRM
	if !m.isReg {
		inst.Flags |= FlagUsesMemory
	}
	switch m.reg {
	case 0:
		inst.Mnemonic, inst.OpSize = INC, sz
		inst.Op1 = modrmOperand(m, sz)
	case 1:
		inst.Mnemonic, inst.OpSize = DEC, sz
		inst.Op1 = modrmOperand(m, sz)
	case 2:
		inst.Mnemonic, inst.OpSize = CALL, Word
		inst.Op1 = modrmOperand(m, Word)
	case 3:
		inst.Mnemonic, inst.OpSize = CALLF, Word
		inst.Op1 = Operand{Kind: OpMem, MRM: m}
		inst.Flags |= FlagUsesMemory
	case 4:
		inst.Mnemonic, inst.OpSize = JMP, Word
		inst.Op1 = modrmOperand(m, Word)
	case 5:
		inst.Mnemonic, inst.OpSize = JMPF, Word
		inst.Op1 = Operand{Kind: OpMem, MRM: m}
		inst.Flags |= FlagUsesMemory
	case 6:
		inst.Mnemonic, inst.OpSize = PUSH, Word
		inst.Op1 = modrmOperand(m, Word)
	case 7:
		return &DecodeError{opcode, "group 5 /7 has no valid instruction"}
	}
	return nil
}

func segRegFromPushPop(opcode byte) uint8 {
	switch opcode {
	case 0x06, 0x07:
		return segES
	case 0x0E, 0x0F:
		return segCS
	case 0x16, 0x17:
		return segSS
	case 0x1E, 0x1F:
		return segDS
	}
	return segES
}

// modrmOperand turns a decoded ModRM into an Operand: a register operand
// of the given size if mod==3, otherwise a memory operand.
func modrmOperand(m modRM, sz Size) Operand {
	if m.isReg {
		return regOperand(m.rm, sz)
	}
	return Operand{Kind: OpMem, MRM: m}
}

func regOperand(reg uint8, sz Size) Operand {
	if sz == Byte {
		return Operand{Kind: OpReg8, Reg: reg}
	}
	return Operand{Kind: OpReg16, Reg: reg}
}

// modRMSize returns the total number of bytes a decoded ModRM consumed:
// the ModRM byte itself plus any displacement bytes.
func modRMSize(m modRM) int {
	switch m.mod {
	case 0:
		if m.rm == 6 {
			return 3
		}
		return 1
	case 1:
		return 2
	case 2:
		return 3
	}
	return 1
}

func readImm(bq ByteQueue, sz Size, size *int) uint16 {
	if sz == Byte {
		*size++
		return uint16(bq.Q8())
	}
	*size += 2
	return bq.Q16()
}

func readRel8(bq ByteQueue, size *int) uint16 {
	*size++
	return uint16(int16(int8(bq.Q8())))
}
