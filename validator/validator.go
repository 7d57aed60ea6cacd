// Package validator drives per-instruction lockstep execution between
// the local emulator and a bridge.RemoteCPU, comparing bus operations,
// cycle states, and register/flag endings.
package validator

import (
	"fmt"

	"github.com/8088lab/vx88/bridge"
	vx88 "github.com/8088lab/vx88"
)

// Mode selects how finely the validator compares the two CPUs.
type Mode uint8

const (
	// ModeCycle compares per bus cycle; the visit-once discard never
	// applies, though instructions before a trigger address are skipped.
	ModeCycle Mode = iota
	// ModeInstruction compares once per instruction and may discard
	// already-visited upper-memory (BIOS) instructions.
	ModeInstruction
)

// State is the validator's per-instruction state machine position.
type State uint8

const (
	StateSetup State = iota
	StateExecute
	StateReadback
	StateFinished
)

// ErrorKind classifies a ValidatorError.
type ErrorKind uint8

const (
	ErrParameter ErrorKind = iota
	ErrMemOpMismatch
	ErrCycleMismatch
	ErrRegisterMismatch
	ErrCPUError
)

func (k ErrorKind) String() string {
	switch k {
	case ErrParameter:
		return "parameter error"
	case ErrMemOpMismatch:
		return "memory-op mismatch"
	case ErrCycleMismatch:
		return "cycle mismatch"
	case ErrRegisterMismatch:
		return "register mismatch"
	case ErrCPUError:
		return "cpu error"
	default:
		return "unknown validator error"
	}
}

// Error reports why validate_instruction or validate_regs failed.
type Error struct {
	Kind  ErrorKind
	Msg   string
	Index int // mismatching cycle or bus-op index, -1 if not applicable
}

func (e *Error) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("validator: %s at index %d: %s", e.Kind, e.Index, e.Msg)
	}
	return fmt.Sprintf("validator: %s: %s", e.Kind, e.Msg)
}

// Outcome is returned by ValidateInstruction on success.
type Outcome uint8

const (
	Ok Outcome = iota
	OkEnd
)

// Validator compares an emulator's bus activity against a bridge.RemoteCPU
// driven through the same instruction, per spec §4.7.
type Validator struct {
	remote bridge.RemoteCPU

	mode       Mode
	maskFlags  bool
	cycleTrace bool
	visitOnce  bool

	state State

	regsBefore vx88.Registers
	instrAddr  uint32
	discard    bool

	triggerAddr    uint32
	triggerEnabled bool
	triggerReached bool

	visited [bridge.MemSize]bool

	emuBusOps []vx88.BusOp
}

// New creates a Validator that will drive remote through the lockstep
// protocol. Call Init before the first BeginInstruction.
func New(remote bridge.RemoteCPU) *Validator {
	return &Validator{remote: remote}
}

// Init configures comparison mode and options, and resets the remote CPU.
// Returns false if the remote CPU failed to reset.
func (v *Validator) Init(mode Mode, maskFlags, cycleTrace, visitOnce bool) bool {
	v.mode = mode
	v.maskFlags = maskFlags
	v.cycleTrace = cycleTrace
	v.visitOnce = visitOnce
	v.state = StateSetup
	return v.remote.Reset() == nil
}

// SetTrigger configures a trigger address: instructions are discarded
// (not validated) until IP first reaches it.
func (v *Validator) SetTrigger(addr uint32) {
	v.triggerAddr = addr
	v.triggerEnabled = true
	v.triggerReached = false
}

// BeginInstruction records the starting register snapshot and decides
// whether this instruction should be discarded rather than validated.
func (v *Validator) BeginInstruction(regsBefore vx88.Registers, endInstr, endProgram uint32) {
	v.regsBefore = regsBefore
	v.instrAddr = v.remote.CalcLinearAddress(regsBefore.CS, regsBefore.IP)
	v.remote.SetInstrEndAddr(endInstr)
	v.remote.SetProgramEndAddr(endProgram)
	v.state = StateExecute

	v.discard = false
	if v.triggerEnabled && !v.triggerReached {
		if v.instrAddr == v.triggerAddr {
			v.triggerReached = true
		} else {
			v.discard = true
		}
	}
	if v.mode == ModeInstruction && v.visitOnce &&
		v.instrAddr >= bridge.UpperMemory && v.visited[v.instrAddr] {
		v.discard = true
	}
}

// ResetInstruction clears the recorded emulator bus-op sequence ahead of
// a fresh instruction.
func (v *Validator) ResetInstruction() {
	v.emuBusOps = v.emuBusOps[:0]
}

// EmuReadByte records a byte the emulator read from memory or I/O during
// the instruction currently executing, and marks the address visited.
func (v *Validator) EmuReadByte(addr uint32, data byte, kind vx88.BusOpKind) {
	v.emuBusOps = append(v.emuBusOps, vx88.BusOp{Kind: kind, Address: addr, Data: data, Origin: vx88.OriginEmulator})
	v.visited[addr&0xFFFFF] = true
}

// EmuWriteByte records a byte the emulator wrote, and invalidates the
// visited bit at that address (self-modifying-code discovery).
func (v *Validator) EmuWriteByte(addr uint32, data byte, kind vx88.BusOpKind) {
	v.emuBusOps = append(v.emuBusOps, vx88.BusOp{Kind: kind, Address: addr, Data: data, Origin: vx88.OriginEmulator})
	v.visited[addr&0xFFFFF] = false
}

// DiscardOp reports whether the validator is currently discarding
// (not comparing) the in-flight instruction.
func (v *Validator) DiscardOp() bool { return v.discard }

// Flush is a no-op hook matching the CpuValidator surface; there is no
// buffered trace state in this implementation beyond what ResetInstruction
// already clears.
func (v *Validator) Flush() {}

// ValidateInstruction drives instrBytes through the remote CPU and
// compares its observed bus ops and cycle states against the emulator's.
// mnemonic and opcode identify the instruction just decoded and executed
// by the caller: opcode selects PUSHF's memory-op exemption, mnemonic
// selects which flag bits vx88.MaskUndefinedFlags treats as
// architecturally undefined during register comparison.
func (v *Validator) ValidateInstruction(mnemonic vx88.Mnemonic, opcode byte, instrBytes []byte, regsAfter vx88.Registers, emuCycles []vx88.CycleState) (Outcome, error) {
	v.state = StateReadback
	if v.discard {
		return Ok, nil
	}
	if len(instrBytes) == 0 {
		return Ok, &Error{Kind: ErrParameter, Msg: "empty instruction byte sequence", Index: -1}
	}

	if err := v.remote.Load(v.regsBefore); err != nil {
		return Ok, &Error{Kind: ErrCPUError, Msg: err.Error(), Index: -1}
	}

	physCycles, physDiscard, err := v.remote.Step(instrBytes, v.instrAddr)
	if err != nil {
		return Ok, &Error{Kind: ErrCPUError, Msg: err.Error(), Index: -1}
	}

	physOps := busOpsFromCycles(physCycles)
	if physDiscard && len(physOps) > 0 && physOps[0].Kind == vx88.BusCodeRead {
		physOps = physOps[1:]
	}

	if opcode != 0x9C { // PUSHF: memory write carries undefined bits, exempt
		if err := validateMemOps(v.emuBusOps, physOps); err != nil {
			return Ok, err
		}
	}

	if v.mode == ModeCycle {
		corrected := correctQueueCounts(physCycles)
		if err := validateCycles(emuCycles, corrected); err != nil {
			return Ok, err
		}
	}

	if err := v.validateRegs(mnemonic, regsAfter); err != nil {
		return Ok, err
	}

	if v.mode == ModeInstruction && v.instrAddr >= bridge.UpperMemory {
		v.visited[v.instrAddr] = true
	}

	v.state = StateFinished
	if v.remote.InFinalize() {
		return OkEnd, nil
	}
	return Ok, nil
}

// ValidateRegs reads back the remote CPU's registers, adjusts for its
// prefetch bias, and compares against the emulator's post-instruction
// state. It is the standalone half of what ValidateInstruction already
// does inline, exposed separately per the CpuValidator surface.
func (v *Validator) ValidateRegs(mnemonic vx88.Mnemonic, regsAfter vx88.Registers) error {
	return v.validateRegs(mnemonic, regsAfter)
}

func (v *Validator) validateRegs(mnemonic vx88.Mnemonic, regsAfter vx88.Registers) error {
	physRegs, err := v.remote.Store()
	if err != nil {
		return &Error{Kind: ErrCPUError, Msg: err.Error(), Index: -1}
	}
	physRegs = v.remote.AdjustIP(physRegs)
	if !v.maskFlags {
		mnemonic = ""
	}
	return validateRegisters(regsAfter, physRegs, mnemonic)
}
