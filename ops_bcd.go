package i8088

// execDAA adjusts AL after a BCD addition, per the Intel decimal
// adjustment algorithm.
func (c *CPU) execDAA() {
	al8 := byte(al(c.reg.AX))
	oldAL := al8
	oldCF := c.reg.Flags&flagCF != 0
	c.reg.Flags &^= flagCF

	if al8&0xF > 9 || c.reg.Flags&flagAF != 0 {
		newCF := oldCF || al8 > 0xF9
		al8 += 6
		c.reg.Flags |= flagAF
		if newCF {
			c.reg.Flags |= flagCF
		}
	} else {
		c.reg.Flags &^= flagAF
	}

	if oldAL > 0x99 || oldCF {
		al8 += 0x60
		c.reg.Flags |= flagCF
	}

	setAL(&c.reg.AX, uint16(al8))
	adjusted := c.reg.Flags & (flagCF | flagAF)
	c.setFlagsLogical(uint16(al8), Byte)
	c.reg.Flags |= adjusted
}

// execDAS adjusts AL after a BCD subtraction.
func (c *CPU) execDAS() {
	al8 := byte(al(c.reg.AX))
	oldAL := al8
	oldCF := c.reg.Flags&flagCF != 0
	c.reg.Flags &^= flagCF

	if al8&0xF > 9 || c.reg.Flags&flagAF != 0 {
		newCF := oldCF || al8 < 6
		al8 -= 6
		c.reg.Flags |= flagAF
		if newCF {
			c.reg.Flags |= flagCF
		}
	} else {
		c.reg.Flags &^= flagAF
	}

	if oldAL > 0x99 || oldCF {
		al8 -= 0x60
		c.reg.Flags |= flagCF
	}

	setAL(&c.reg.AX, uint16(al8))
	adjusted := c.reg.Flags & (flagCF | flagAF)
	c.setFlagsLogical(uint16(al8), Byte)
	c.reg.Flags |= adjusted
}

// execAAA adjusts AL after a BCD addition of unpacked digits.
func (c *CPU) execAAA() {
	if al(c.reg.AX)&0xF > 9 || c.reg.Flags&flagAF != 0 {
		c.reg.AX += 0x106
		c.reg.Flags |= flagAF | flagCF
	} else {
		c.reg.Flags &^= flagAF | flagCF
	}
	setAL(&c.reg.AX, al(c.reg.AX)&0xF)
}

// execAAS adjusts AL after a BCD subtraction of unpacked digits.
func (c *CPU) execAAS() {
	if al(c.reg.AX)&0xF > 9 || c.reg.Flags&flagAF != 0 {
		c.reg.AX -= 6
		setAH(&c.reg.AX, ah(c.reg.AX)-1)
		c.reg.Flags |= flagAF | flagCF
	} else {
		c.reg.Flags &^= flagAF | flagCF
	}
	setAL(&c.reg.AX, al(c.reg.AX)&0xF)
}

// execAAM adjusts AX after a multiply of unpacked BCD digits, dividing
// AL by the given base (conventionally 10).
func (c *CPU) execAAM(base byte) {
	a := byte(al(c.reg.AX))
	setAH(&c.reg.AX, uint16(a/base))
	setAL(&c.reg.AX, uint16(a%base))
	c.setFlagsLogical(al(c.reg.AX), Byte)
}

// execAAD adjusts AX before a divide of unpacked BCD digits, combining
// AH and AL into AL with the given base (conventionally 10).
func (c *CPU) execAAD(base byte) {
	a := byte(al(c.reg.AX))
	h := byte(ah(c.reg.AX))
	setAL(&c.reg.AX, uint16(a+h*base))
	setAH(&c.reg.AX, 0)
	c.setFlagsLogical(al(c.reg.AX), Byte)
}
