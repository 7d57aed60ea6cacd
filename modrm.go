package i8088

// AddrMode enumerates the 8088's 24 memory addressing modes selected by
// a ModRM byte's mod/rm fields (mod in {00,01,10}). Register-direct forms
// (mod==11) never produce an AddrMode; they resolve straight to a
// register index.
type AddrMode uint8

const (
	modeBxSi AddrMode = iota
	modeBxDi
	modeBpSi
	modeBpDi
	modeSi
	modeDi
	modeDisp16
	modeBx
	modeBxSiDisp8
	modeBxDiDisp8
	modeBpSiDisp8
	modeBpDiDisp8
	modeSiDisp8
	modeDiDisp8
	modeBpDisp8
	modeBxDisp8
	modeBxSiDisp16
	modeBxDiDisp16
	modeBpSiDisp16
	modeBpDiDisp16
	modeSiDisp16
	modeDiDisp16
	modeBpDisp16
	modeBxDisp16
)

// usesBP reports whether this addressing mode's base register is BP,
// which selects SS as the default segment instead of DS.
func (m AddrMode) usesBP() bool {
	switch m {
	case modeBpSi, modeBpDi, modeBpSiDisp8, modeBpDiDisp8, modeBpDisp8,
		modeBpSiDisp16, modeBpDiDisp16, modeBpDisp16:
		return true
	default:
		return false
	}
}

// modRM is the decoded form of a ModRM byte plus any displacement bytes.
type modRM struct {
	mod    uint8
	reg    uint8 // reg/opcode-extension field
	rm     uint8
	isReg  bool // mod == 3: rm names a register directly
	mode   AddrMode
	disp   uint16
	raw    byte
}

// readModRM consumes a ModRM byte, and any displacement bytes it implies,
// from bq. It does not compute a linear address: BP-relative forms resolve
// to SS by default only at operand-load time, since a segment override
// prefix earlier in the instruction can replace that default.
func readModRM(bq ByteQueue) modRM {
	raw := bq.Q8()
	m := modRM{raw: raw, mod: raw >> 6, reg: (raw >> 3) & 7, rm: raw & 7}

	if m.mod == 3 {
		m.isReg = true
		return m
	}

	switch m.rm {
	case 0:
		m.mode = modeBxSi
	case 1:
		m.mode = modeBxDi
	case 2:
		m.mode = modeBpSi
	case 3:
		m.mode = modeBpDi
	case 4:
		m.mode = modeSi
	case 5:
		m.mode = modeDi
	case 6:
		if m.mod == 0 {
			m.mode = modeDisp16
		} else {
			m.mode = modeBpDisp8 // promoted to modeBpDisp16 below if mod==2
		}
	case 7:
		m.mode = modeBx
	}

	switch m.mod {
	case 0:
		if m.rm == 6 {
			m.disp = bq.Q16()
		}
	case 1:
		d := uint16(int16(int8(bq.Q8())))
		m.disp = d
		m.mode = m.mode.toDisp8()
	case 2:
		m.disp = bq.Q16()
		m.mode = m.mode.toDisp16()
	}

	return m
}

// toDisp8/toDisp16 map a bare indirect mode to its disp8/disp16 variant.
func (m AddrMode) toDisp8() AddrMode {
	switch m {
	case modeBxSi:
		return modeBxSiDisp8
	case modeBxDi:
		return modeBxDiDisp8
	case modeBpSi:
		return modeBpSiDisp8
	case modeBpDi:
		return modeBpDiDisp8
	case modeSi:
		return modeSiDisp8
	case modeDi:
		return modeDiDisp8
	case modeBpDisp8:
		return modeBpDisp8
	case modeBx:
		return modeBxDisp8
	}
	return m
}

func (m AddrMode) toDisp16() AddrMode {
	switch m {
	case modeBxSi:
		return modeBxSiDisp16
	case modeBxDi:
		return modeBxDiDisp16
	case modeBpSi:
		return modeBpSiDisp16
	case modeBpDi:
		return modeBpDiDisp16
	case modeSi:
		return modeSiDisp16
	case modeDi:
		return modeDiDisp16
	case modeBpDisp8:
		return modeBpDisp16
	case modeBx:
		return modeBxDisp16
	}
	return m
}

// effectiveOffset computes the 16-bit (wrapping) offset portion of the
// effective address for a decoded memory ModRM, given live register
// state. The segment half is resolved separately by the caller via
// CPU.defaultSeg, since a segment-override prefix can replace it.
func (c *CPU) effectiveOffset(m modRM) uint16 {
	r := &c.reg
	switch m.mode {
	case modeBxSi:
		return r.BX + r.SI
	case modeBxDi:
		return r.BX + r.DI
	case modeBpSi:
		return r.BP + r.SI
	case modeBpDi:
		return r.BP + r.DI
	case modeSi:
		return r.SI
	case modeDi:
		return r.DI
	case modeDisp16:
		return m.disp
	case modeBx:
		return r.BX
	case modeBxSiDisp8, modeBxSiDisp16:
		return r.BX + r.SI + m.disp
	case modeBxDiDisp8, modeBxDiDisp16:
		return r.BX + r.DI + m.disp
	case modeBpSiDisp8, modeBpSiDisp16:
		return r.BP + r.SI + m.disp
	case modeBpDiDisp8, modeBpDiDisp16:
		return r.BP + r.DI + m.disp
	case modeSiDisp8, modeSiDisp16:
		return r.SI + m.disp
	case modeDiDisp8, modeDiDisp16:
		return r.DI + m.disp
	case modeBpDisp8, modeBpDisp16:
		return r.BP + m.disp
	case modeBxDisp8, modeBxDisp16:
		return r.BX + m.disp
	}
	return 0
}
