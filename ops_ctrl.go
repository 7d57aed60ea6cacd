package i8088

// execFlagCtrl implements the single-flag set/clear/complement
// instructions: CLC/STC/CMC/CLD/STD/CLI/STI.
func (c *CPU) execFlagCtrl(mnemonic Mnemonic) {
	switch mnemonic {
	case CLC:
		c.reg.Flags &^= flagCF
	case STC:
		c.reg.Flags |= flagCF
	case CMC:
		c.reg.Flags ^= flagCF
	case CLD:
		c.reg.Flags &^= flagDF
	case STD:
		c.reg.Flags |= flagDF
	case CLI:
		c.reg.Flags &^= flagIF
	case STI:
		c.reg.Flags |= flagIF
	}
}

func (c *CPU) execHlt() {
	c.halted = true
}

func (c *CPU) execSahf() {
	c.reg.Flags = normalizeFlags((c.reg.Flags &^ 0xFF) | ah(c.reg.AX))
}

func (c *CPU) execLahf() {
	setAH(&c.reg.AX, c.reg.Flags&0xFF)
}

func (c *CPU) execPushf() {
	c.push(c.reg.Flags)
}

func (c *CPU) execPopf() {
	c.reg.Flags = normalizeFlags(c.pop())
}

// execCbw implements CBW: sign-extend AL into AH.
func (c *CPU) execCbw() {
	if al(c.reg.AX)&0x80 != 0 {
		setAH(&c.reg.AX, 0xFF)
	} else {
		setAH(&c.reg.AX, 0)
	}
}

// execCwd implements CWD: sign-extend AX into DX.
func (c *CPU) execCwd() {
	if c.reg.AX&0x8000 != 0 {
		c.reg.DX = 0xFFFF
	} else {
		c.reg.DX = 0
	}
}

// execSalc implements the undocumented SALC (0xD6): AL = 0xFF if CF
// else 0x00.
func (c *CPU) execSalc() {
	if c.reg.Flags&flagCF != 0 {
		setAL(&c.reg.AX, 0xFF)
	} else {
		setAL(&c.reg.AX, 0)
	}
}
