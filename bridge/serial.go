package bridge

import (
	"encoding/binary"
	"io"

	vx88 "github.com/8088lab/vx88"
)

// Wire command bytes sent to the microcontroller fixture ahead of their
// payload. Framing beyond this is the hardware vendor's, reproduced here
// only to the depth needed to drive the RemoteCPU contract: one command
// byte, a fixed-size payload, one status byte and a fixed-size response.
const (
	cmdReset byte = 0x01
	cmdLoad  byte = 0x02
	cmdStep  byte = 0x03
	cmdStore byte = 0x04

	statusOK        byte = 0x00
	statusCycleOver byte = 0x01
)

// cycleRecordSize is the wire size of one CycleState record: a 20-bit
// address latch (3 bytes), data byte, a packed control-line byte, and a
// byte holding queue length (low nibble) and queue-op (high nibble).
const cycleRecordSize = 6

// SerialCPU drives a physical 8088 development board over a byte stream,
// using the command bytes above and the 28-byte register buffer; no
// separate program/finalize discriminator is sent.
type SerialCPU struct {
	rw           io.ReadWriter
	instrEndAddr uint32
	programEnd   uint32
	finalized    bool
}

// NewSerialCPU wraps an already-open, already-configured transport (see
// OpenSerialPort on Linux) in a RemoteCPU.
func NewSerialCPU(rw io.ReadWriter) *SerialCPU {
	return &SerialCPU{rw: rw}
}

func (s *SerialCPU) writeCmd(cmd byte, payload []byte) error {
	if _, err := s.rw.Write([]byte{cmd}); err != nil {
		return &BridgeError{Kind: BridgeTransportFailure, Err: err}
	}
	if len(payload) > 0 {
		if _, err := s.rw.Write(payload); err != nil {
			return &BridgeError{Kind: BridgeTransportFailure, Err: err}
		}
	}
	return nil
}

func (s *SerialCPU) readStatus() error {
	var status [1]byte
	if _, err := io.ReadFull(s.rw, status[:]); err != nil {
		return &BridgeError{Kind: BridgeTransportFailure, Err: err}
	}
	if status[0] == statusCycleOver {
		return &BridgeError{Kind: BridgeCycleLimit}
	}
	if status[0] != statusOK {
		return &BridgeError{Kind: BridgeProtocolViolation}
	}
	return nil
}

func (s *SerialCPU) Reset() error {
	if err := s.writeCmd(cmdReset, nil); err != nil {
		return err
	}
	s.finalized = false
	return s.readStatus()
}

func (s *SerialCPU) Load(regs vx88.Registers) error {
	buf := make([]byte, vx88.RegBufSize())
	if err := vx88.RegsToBuf(regs, buf); err != nil {
		return err
	}
	if err := s.writeCmd(cmdLoad, buf); err != nil {
		return err
	}
	return s.readStatus()
}

func (s *SerialCPU) Step(instrBytes []byte, instrAddr uint32) ([]vx88.CycleState, bool, error) {
	payload := make([]byte, 4+2+len(instrBytes))
	binary.LittleEndian.PutUint32(payload[0:], instrAddr)
	binary.LittleEndian.PutUint16(payload[4:], uint16(len(instrBytes)))
	copy(payload[6:], instrBytes)

	if err := s.writeCmd(cmdStep, payload); err != nil {
		return nil, false, err
	}
	if err := s.readStatus(); err != nil {
		return nil, false, err
	}

	var header [3]byte
	if _, err := io.ReadFull(s.rw, header[:]); err != nil {
		return nil, false, &BridgeError{Kind: BridgeTransportFailure, Err: err}
	}
	count := binary.LittleEndian.Uint16(header[0:])
	discard := header[2] != 0

	cycles := make([]vx88.CycleState, count)
	rec := make([]byte, cycleRecordSize)
	for i := range cycles {
		if _, err := io.ReadFull(s.rw, rec); err != nil {
			return nil, false, &BridgeError{Kind: BridgeTransportFailure, Err: err}
		}
		addr := uint32(rec[0]) | uint32(rec[1])<<8 | uint32(rec[2])<<16
		flags := rec[4]
		cycles[i] = vx88.CycleState{
			AddressLatch: addr,
			Data:         rec[3],
			ALE:          flags&0x01 != 0,
			RD:           flags&0x02 != 0,
			WR:           flags&0x04 != 0,
			IOM:          flags&0x08 != 0,
			BusActive:    flags&0x10 != 0,
			QueueLen:     int(rec[5] & 0x0F),
			QueueOp:      vx88.QueueOp(rec[5] >> 4),
		}
	}

	if instrAddr+uint32(len(instrBytes)) >= s.instrEndAddr && s.instrEndAddr != 0 {
		s.finalized = instrAddr+uint32(len(instrBytes)) >= s.programEnd
	}

	return cycles, discard, nil
}

func (s *SerialCPU) Store() (vx88.Registers, error) {
	if err := s.writeCmd(cmdStore, nil); err != nil {
		return vx88.Registers{}, err
	}
	if err := s.readStatus(); err != nil {
		return vx88.Registers{}, err
	}
	buf := make([]byte, vx88.RegBufSize())
	if _, err := io.ReadFull(s.rw, buf); err != nil {
		return vx88.Registers{}, &BridgeError{Kind: BridgeTransportFailure, Err: err}
	}
	return vx88.BufToRegs(buf)
}

// AdjustIP returns regs unchanged: no correction for bytes the physical
// CPU's prefetch queue still holds is applied to the IP that Store
// reads back.
func (s *SerialCPU) AdjustIP(regs vx88.Registers) vx88.Registers {
	return regs
}

func (s *SerialCPU) InFinalize() bool { return s.finalized }

func (s *SerialCPU) SetInstrEndAddr(addr uint32)   { s.instrEndAddr = addr }
func (s *SerialCPU) SetProgramEndAddr(addr uint32) { s.programEnd = addr }

func (s *SerialCPU) CalcLinearAddress(cs, ip uint16) uint32 {
	return (uint32(cs)<<4 + uint32(ip)) & 0xFFFFF
}

func (s *SerialCPU) PrintRegs(regs vx88.Registers) string { return formatRegs(regs) }

func (s *SerialCPU) GetCycleStateStr(cs vx88.CycleState) string { return formatCycleState(cs) }
