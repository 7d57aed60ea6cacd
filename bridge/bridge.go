// Package bridge drives a remote CPU — real or simulated — in lockstep
// with the local emulator, for the validator to compare against.
package bridge

import vx88 "github.com/8088lab/vx88"

// Protocol constants shared by every RemoteCPU implementation.
const (
	MemSize        = 0x100000  // flat 20-bit address space
	UpperMemory    = 0xA0000   // BIOS/upper-memory boundary for visit-once discard
	CycleLimit     = 1000      // runaway-instruction guard, per instruction
	InvalidPointer = 0xFFFFFFFF

	// Bus-op origin tags, as exchanged with the wire protocol.
	OriginEmulatorTag = 0x01
	OriginPhysicalTag = 0x02
)

// RemoteCPU is the behavioral contract a physical 8088 (over a serial
// bridge) or an in-process stand-in exposes to the validator. Every
// method may block; there is no cancellation once Step has begun.
type RemoteCPU interface {
	// Reset re-initializes the remote CPU to its power-on state.
	Reset() error

	// Load installs regs as the remote CPU's starting register state.
	Load(regs vx88.Registers) error

	// Step feeds instrBytes to the remote CPU, positioned at instrAddr,
	// and drives it to completion, returning the bus cycles it observed
	// and whether the leading bus op is a stray code-read that should
	// be discarded before comparison.
	Step(instrBytes []byte, instrAddr uint32) (cycles []vx88.CycleState, discard bool, err error)

	// Store reads back the remote CPU's current register state.
	Store() (vx88.Registers, error)

	// AdjustIP compensates regs.IP for the remote CPU's own prefetch
	// bias, so it compares equal to the emulator's post-instruction IP.
	AdjustIP(regs vx88.Registers) vx88.Registers

	// InFinalize reports whether the remote CPU has reached the
	// configured program end address and has no further instruction to
	// drive.
	InFinalize() bool

	// SetInstrEndAddr and SetProgramEndAddr bound where Step should stop
	// driving bus cycles and where InFinalize begins reporting true.
	SetInstrEndAddr(addr uint32)
	SetProgramEndAddr(addr uint32)

	// CalcLinearAddress computes the 20-bit physical address for a
	// segment:offset pair the way the remote CPU itself would.
	CalcLinearAddress(cs, ip uint16) uint32

	// PrintRegs and GetCycleStateStr render diagnostic strings for trace
	// output; they do not affect remote CPU state.
	PrintRegs(regs vx88.Registers) string
	GetCycleStateStr(cs vx88.CycleState) string
}
