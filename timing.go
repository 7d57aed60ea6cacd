package i8088

// eaCycles returns the number of bus cycles the BIU spends computing the
// effective address for a ModRM memory operand, per the 8088's documented
// EA-calculation timing table. Register-direct operands cost nothing;
// this is only consulted for modes readModRM decoded as memory.
func eaCycles(mode AddrMode) int {
	switch mode {
	case modeDisp16:
		return 6
	case modeSi, modeDi, modeBx:
		return 5
	case modeBxSi:
		return 7
	case modeBpDi:
		return 7
	case modeBxDi:
		return 8
	case modeBpSi:
		return 8
	case modeSiDisp8, modeSiDisp16,
		modeDiDisp8, modeDiDisp16,
		modeBpDisp8, modeBpDisp16,
		modeBxDisp8, modeBxDisp16:
		return 9
	case modeBxSiDisp8, modeBxSiDisp16:
		return 11
	case modeBpDiDisp8, modeBpDiDisp16:
		return 11
	case modeBxDiDisp8, modeBxDiDisp16:
		return 12
	case modeBpSiDisp8, modeBpSiDisp16:
		return 12
	}
	return 0
}

// segOverrideCycles is the fixed extra bus-cycle cost of a segment
// override prefix byte, charged once per instruction that carries one.
const segOverrideCycles = 2

// eaCost totals the cycles a decoded memory ModRM operand adds to an
// instruction: the addressing-mode table lookup, plus a segment-override
// surcharge when the instruction carried one.
func eaCost(m modRM, hasSegOverride bool) int {
	if m.isReg {
		return 0
	}
	n := eaCycles(m.mode)
	if hasSegOverride {
		n += segOverrideCycles
	}
	return n
}

// chargeEA looks up whichever operand of inst decoded to a memory ModRM
// and charges its EA-calculation cost against the CPU's cycle counter.
// String instructions and XLAT address memory implicitly, with no ModRM
// byte, and are left to their own execution cost instead.
func (c *CPU) chargeEA(inst *Instruction) {
	if inst.Flags&FlagHasModRM == 0 {
		return
	}
	var m modRM
	switch {
	case inst.Op1.Kind == OpMem:
		m = inst.Op1.MRM
	case inst.Op2.Kind == OpMem:
		m = inst.Op2.MRM
	default:
		return
	}
	c.cycles += uint64(eaCost(m, inst.HasSegOverride))
}
