package i8088

import (
	"encoding/binary"
	"errors"
)

// regBufSize is the number of bytes in the register buffer the remote
// bridge protocol exchanges with the physical CPU: fourteen 16-bit
// registers, little-endian, in the fixed order below.
const regBufSize = 28

// RegBufSize returns the number of bytes RegsToBuf writes and BufToRegs
// expects.
func RegBufSize() int { return regBufSize }

// RegsToBuf packs r into buf in the wire order the validator and serial
// bridge use to exchange register state with the physical CPU: AX, BX,
// CX, DX, SS, SP, FLAGS, IP, CS, DS, ES, BP, SI, DI. buf must be at least
// RegBufSize() bytes.
func RegsToBuf(r Registers, buf []byte) error {
	if len(buf) < regBufSize {
		return errors.New("i8088: register buffer too small")
	}
	le := binary.LittleEndian
	le.PutUint16(buf[0:], r.AX)
	le.PutUint16(buf[2:], r.BX)
	le.PutUint16(buf[4:], r.CX)
	le.PutUint16(buf[6:], r.DX)
	le.PutUint16(buf[8:], r.SS)
	le.PutUint16(buf[10:], r.SP)
	le.PutUint16(buf[12:], r.Flags)
	le.PutUint16(buf[14:], r.IP)
	le.PutUint16(buf[16:], r.CS)
	le.PutUint16(buf[18:], r.DS)
	le.PutUint16(buf[20:], r.ES)
	le.PutUint16(buf[22:], r.BP)
	le.PutUint16(buf[24:], r.SI)
	le.PutUint16(buf[26:], r.DI)
	return nil
}

// BufToRegs unpacks a register buffer in the same wire order RegsToBuf
// writes. FLAGS is normalized through normalizeFlags so reserved bits
// always read back in their fixed hardware pattern, matching what
// SetState does for directly-installed state.
func BufToRegs(buf []byte) (Registers, error) {
	if len(buf) < regBufSize {
		return Registers{}, errors.New("i8088: register buffer too small")
	}
	le := binary.LittleEndian
	return Registers{
		AX:    le.Uint16(buf[0:]),
		BX:    le.Uint16(buf[2:]),
		CX:    le.Uint16(buf[4:]),
		DX:    le.Uint16(buf[6:]),
		SS:    le.Uint16(buf[8:]),
		SP:    le.Uint16(buf[10:]),
		Flags: normalizeFlags(le.Uint16(buf[12:])),
		IP:    le.Uint16(buf[14:]),
		CS:    le.Uint16(buf[16:]),
		DS:    le.Uint16(buf[18:]),
		ES:    le.Uint16(buf[20:]),
		BP:    le.Uint16(buf[22:]),
		SI:    le.Uint16(buf[24:]),
		DI:    le.Uint16(buf[26:]),
	}, nil
}
