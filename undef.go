package i8088

// undefMask returns the FLAGS bits a given mnemonic leaves architecturally
// undefined, on top of the always-reserved bits normalizeFlags already
// fixes. Two implementations (this emulator, a physical 8088) are free to
// disagree on these bits without either being wrong; MaskUndefinedFlags
// clears them before a validator compares two flag snapshots.
func undefMask(mnemonic Mnemonic) uint16 {
	switch mnemonic {
	case AND, OR, XOR, TEST:
		// Logical ops leave AF undefined; only CF/OF are defined (both
		// cleared) besides the result-derived SF/ZF/PF.
		return flagAF
	case SHL, SHR, SAR, ROL, ROR, RCL, RCR:
		// OF is only defined for single-bit shifts/rotates. The mnemonic
		// does not carry the count, so OF is masked for count-1 forms
		// as well as for variable (CL) counts.
		return flagOF
	case MUL, IMUL:
		// Only CF/OF are defined; SF/ZF/AF/PF are whatever the result
		// register bits happen to look like.
		return flagSF | flagZF | flagAF | flagPF
	case DIV, IDIV:
		// No flags are defined by a successful divide.
		return flagCF | flagPF | flagAF | flagZF | flagSF | flagOF
	case DAA, DAS:
		return flagOF
	case AAA, AAS:
		return flagOF | flagSF | flagZF | flagPF
	case AAM, AAD:
		return flagAF | flagOF
	}
	return 0
}

// MaskUndefinedFlags clears, from flags, both the bits the 8088 never
// defines (the reserved bits normalizeFlags fixes) and the bits the given
// mnemonic leaves architecturally undefined, so a validator comparing an
// emulated and a physical flags word doesn't fail on a bit neither
// implementation is obligated to agree on.
func MaskUndefinedFlags(mnemonic Mnemonic, flags uint16) uint16 {
	return flags &^ (reservedFlagsMask | undefMask(mnemonic))
}
