package validator

import (
	"fmt"
	"strings"

	vx88 "github.com/8088lab/vx88"
	"github.com/davecgh/go-spew/spew"
)

// busOpsFromCycles extracts the bus-transfer-carrying cycles (RD or WR
// asserted) from a physical cycle-state sequence, in order, as BusOps
// comparable against the emulator's own recorded sequence.
func busOpsFromCycles(cycles []vx88.CycleState) []vx88.BusOp {
	var ops []vx88.BusOp
	for _, cs := range cycles {
		if !cs.RD && !cs.WR {
			continue
		}
		kind := vx88.BusMemRead
		switch {
		case cs.RD && cs.IOM:
			kind = vx88.BusIORead
		case cs.WR && cs.IOM:
			kind = vx88.BusIOWrite
		case cs.WR:
			kind = vx88.BusMemWrite
		case cs.QueueOp != vx88.QueueIdle:
			kind = vx88.BusCodeRead
		}
		ops = append(ops, vx88.BusOp{Kind: kind, Address: cs.AddressLatch, Data: cs.Data, Origin: vx88.OriginPhysical})
	}
	return ops
}

// validateMemOps compares emulator and physical bus-op sequences
// pairwise on {kind, addr, data}, per §4.7's comparison rule. The
// sequences must already have had any leading stray CodeRead discarded.
func validateMemOps(emu, phys []vx88.BusOp) error {
	if len(emu) != len(phys) {
		return &Error{
			Kind:  ErrMemOpMismatch,
			Msg:   fmt.Sprintf("bus-op count mismatch: emulator %d, physical %d\n%s", len(emu), len(phys), diffBusOps(emu, phys)),
			Index: -1,
		}
	}
	for i := range emu {
		if emu[i].Kind != phys[i].Kind || emu[i].Address != phys[i].Address || emu[i].Data != phys[i].Data {
			return &Error{
				Kind:  ErrMemOpMismatch,
				Msg:   fmt.Sprintf("bus op %d differs:\n%s", i, diffBusOps(emu[i:i+1], phys[i:i+1])),
				Index: i,
			}
		}
	}
	return nil
}

// correctQueueCounts retroactively fixes the QueueLen field physical
// cycle states carry: a First/Subsequent queue-op on cycle i means the
// length recorded on cycle i-1 should be one less than reported, and a
// Flush on cycle i means cycle i-1's length should read zero. The
// physical fixture reports queue length as sampled at the start of the
// next cycle, one cycle stale relative to the op that just happened.
func correctQueueCounts(cycles []vx88.CycleState) []vx88.CycleState {
	corrected := make([]vx88.CycleState, len(cycles))
	copy(corrected, cycles)
	for i := 1; i < len(corrected); i++ {
		switch corrected[i].QueueOp {
		case vx88.QueueFirst, vx88.QueueSubsequent:
			if corrected[i-1].QueueLen > 0 {
				corrected[i-1].QueueLen--
			}
		case vx88.QueueFlush:
			corrected[i-1].QueueLen = 0
		}
	}
	return corrected
}

// validateCycles compares two cycle-state sequences index by index,
// requiring equal length and equal records, per §4.7's comparison rule.
func validateCycles(emu, phys []vx88.CycleState) error {
	if len(emu) != len(phys) {
		return &Error{
			Kind:  ErrCycleMismatch,
			Msg:   fmt.Sprintf("cycle count mismatch: emulator %d, physical %d", len(emu), len(phys)),
			Index: -1,
		}
	}
	for i := range emu {
		if emu[i] != phys[i] {
			return &Error{
				Kind:  ErrCycleMismatch,
				Msg:   printCycleDiff(emu[i], phys[i]),
				Index: i,
			}
		}
	}
	return nil
}

// validateRegisters compares every register exactly, and FLAGS after
// vx88.MaskUndefinedFlags is applied to both sides, per §4.7.
func validateRegisters(emu, phys vx88.Registers, mnemonic vx88.Mnemonic) error {
	var diffs []string
	check := func(name string, a, b uint16) {
		if a != b {
			diffs = append(diffs, fmt.Sprintf("%s: emulator=%04X physical=%04X", name, a, b))
		}
	}
	check("AX", emu.AX, phys.AX)
	check("BX", emu.BX, phys.BX)
	check("CX", emu.CX, phys.CX)
	check("DX", emu.DX, phys.DX)
	check("SI", emu.SI, phys.SI)
	check("DI", emu.DI, phys.DI)
	check("BP", emu.BP, phys.BP)
	check("SP", emu.SP, phys.SP)
	check("CS", emu.CS, phys.CS)
	check("DS", emu.DS, phys.DS)
	check("ES", emu.ES, phys.ES)
	check("SS", emu.SS, phys.SS)
	check("IP", emu.IP, phys.IP)

	emuFlags := vx88.MaskUndefinedFlags(mnemonic, emu.Flags)
	physFlags := vx88.MaskUndefinedFlags(mnemonic, phys.Flags)
	if emuFlags != physFlags {
		diffs = append(diffs, diffFlags(emuFlags, physFlags))
	}

	if len(diffs) == 0 {
		return nil
	}
	return &Error{
		Kind:  ErrRegisterMismatch,
		Msg:   strings.Join(diffs, "\n") + "\n" + spew.Sdump(emu) + spew.Sdump(phys),
		Index: -1,
	}
}

// flagNames is every named FLAGS bit, in the order the 8088 documents
// them, for per-flag diff reporting.
var flagNames = []struct {
	name string
	bit  uint16
}{
	{"CF", 1 << 0},
	{"PF", 1 << 2},
	{"AF", 1 << 4},
	{"ZF", 1 << 6},
	{"SF", 1 << 7},
	{"TF", 1 << 8},
	{"IF", 1 << 9},
	{"DF", 1 << 10},
	{"OF", 1 << 11},
}

func diffFlags(emu, phys uint16) string {
	var b strings.Builder
	fmt.Fprintf(&b, "FLAGS: emulator=%04X physical=%04X", emu, phys)
	for _, f := range flagNames {
		a := emu&f.bit != 0
		p := phys&f.bit != 0
		if a != p {
			fmt.Fprintf(&b, " %s(emu=%v,phys=%v)", f.name, a, p)
		}
	}
	return b.String()
}

func diffBusOps(emu, phys []vx88.BusOp) string {
	return "emulator:\n" + spew.Sdump(emu) + "physical:\n" + spew.Sdump(phys)
}

// printCycleDiff renders a two-column side-by-side comparison of one
// emulated and one physical cycle state.
func printCycleDiff(emu, phys vx88.CycleState) string {
	var b strings.Builder
	b.WriteString("cycle mismatch:\n")
	fmt.Fprintf(&b, "  %-40s | %-40s\n", "emulated", "physical")
	fmt.Fprintf(&b, "  %-40s | %-40s\n", spew.Sprintf("%+v", emu), spew.Sprintf("%+v", phys))
	return b.String()
}
