package i8088

// Registers holds the programmer-visible state of the 8088.
type Registers struct {
	AX, BX, CX, DX uint16
	SI, DI, BP, SP uint16
	CS, DS, ES, SS uint16
	IP             uint16
	Flags          uint16
}

// 8088 FLAGS bits. Bits 1, 3, 5, 12-15 are undefined/reserved and are
// masked out of every comparison by MaskUndefinedFlags, whatever the
// mnemonic.
const (
	flagCF uint16 = 1 << 0
	flagPF uint16 = 1 << 2
	flagAF uint16 = 1 << 4
	flagZF uint16 = 1 << 6
	flagSF uint16 = 1 << 7
	flagTF uint16 = 1 << 8
	flagIF uint16 = 1 << 9
	flagDF uint16 = 1 << 10
	flagOF uint16 = 1 << 11
)

// reservedFlagsSet and reservedFlagsMask fix the reserved bits to their fixed 8088 power-on pattern
// (bit 1 = 1, bits 3,5,12-15 = 0) regardless of what an instruction
// computes, matching real hardware.
const reservedFlagsSet = 1 << 1
const reservedFlagsMask = (1 << 1) | (1 << 3) | (1 << 5) | (0xF << 12)

func normalizeFlags(f uint16) uint16 {
	return (f &^ reservedFlagsMask) | reservedFlagsSet
}

func al(ax uint16) uint16 { return ax & 0xFF }
func ah(ax uint16) uint16 { return ax >> 8 }

func setAL(ax *uint16, v uint16) { *ax = (*ax &^ 0xFF) | (v & 0xFF) }
func setAH(ax *uint16, v uint16) { *ax = (*ax & 0xFF) | (v&0xFF)<<8 }
