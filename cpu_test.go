package i8088

import "testing"

// recordingObserver captures every bus operation and cycle snapshot for a
// test to inspect after a Step.
type recordingObserver struct {
	ops    []BusOp
	cycles []CycleState
}

func (r *recordingObserver) OnBusOp(op BusOp)       { r.ops = append(r.ops, op) }
func (r *recordingObserver) OnCycleState(cs CycleState) { r.cycles = append(r.cycles, cs) }

func (r *recordingObserver) codeReads() []BusOp {
	var out []BusOp
	for _, op := range r.ops {
		if op.Kind == BusCodeRead {
			out = append(out, op)
		}
	}
	return out
}

// TestNOPAtResetVector exercises a fresh CPU after Reset: NOP sits at the
// reset vector FFFF:0000, physical address 0xFFFF0.
func TestNOPAtResetVector(t *testing.T) {
	bus := &testBus{}
	bus.mem[0xFFFF0] = 0x90 // NOP

	cpu := New(bus)
	obs := &recordingObserver{}
	cpu.AttachObserver(obs)

	before := cpu.Registers()
	cpu.Step()
	after := cpu.Registers()

	reads := obs.codeReads()
	if len(reads) != 1 {
		t.Fatalf("got %d code reads, want 1", len(reads))
	}
	if reads[0].Address != 0xFFFF0 || reads[0].Data != 0x90 {
		t.Errorf("code read = %+v, want address 0xFFFF0 data 0x90", reads[0])
	}

	want := before
	want.IP = 1
	if after != want {
		t.Errorf("registers after NOP = %+v, want %+v", after, want)
	}
}

// TestMovALImm8 covers opcode 0xB0 (MOV AL, imm8).
func TestMovALImm8(t *testing.T) {
	bus := &testBus{}
	bus.mem[0xFFFF0] = 0xB0
	bus.mem[0xFFFF1] = 0x42

	cpu := New(bus)
	obs := &recordingObserver{}
	cpu.AttachObserver(obs)
	cpu.Step()

	if got := al(cpu.Registers().AX); got != 0x42 {
		t.Errorf("AL = 0x%02X, want 0x42", got)
	}

	reads := obs.codeReads()
	if len(reads) != 2 {
		t.Fatalf("got %d code reads, want 2", len(reads))
	}
	for _, op := range obs.ops {
		if op.Kind == BusMemRead || op.Kind == BusMemWrite || op.Kind == BusIORead || op.Kind == BusIOWrite {
			t.Errorf("unexpected non-code bus op %+v", op)
		}
	}
}

// TestAddMemESOverride covers opcode 0x00 (ADD r/m8, r8) addressing
// [BX+SI+0x10] through an ES: segment-override prefix (0x26).
func TestAddMemESOverride(t *testing.T) {
	bus := &testBus{}
	prog := []byte{0x26, 0x00, 0x40, 0x10}
	copy(bus.mem[0xFFFF0:], prog)
	bus.mem[0x20120] = 0x05

	cpu := New(bus)
	regs := cpu.Registers()
	regs.BX = 0x0100
	regs.SI = 0x0010
	setAL(&regs.AX, 0x01)
	regs.ES = 0x2000
	cpu.SetState(regs)

	obs := &recordingObserver{}
	cpu.AttachObserver(obs)
	cpu.Step()

	var reads, writes []BusOp
	for _, op := range obs.ops {
		switch op.Kind {
		case BusMemRead:
			reads = append(reads, op)
		case BusMemWrite:
			writes = append(writes, op)
		}
	}
	if len(reads) != 1 || reads[0].Address != 0x20120 || reads[0].Data != 0x05 {
		t.Errorf("mem reads = %+v, want one read of 0x05 at 0x20120", reads)
	}
	if len(writes) != 1 || writes[0].Address != 0x20120 || writes[0].Data != 0x06 {
		t.Errorf("mem writes = %+v, want one write of 0x06 at 0x20120", writes)
	}

	f := cpu.Registers().Flags
	if f&flagCF != 0 {
		t.Error("CF set, want clear")
	}
	if f&flagZF != 0 {
		t.Error("ZF set, want clear")
	}
	if f&flagSF != 0 {
		t.Error("SF set, want clear")
	}
}

// TestPushfSkipsUndefinedBits ensures PUSHF writes FLAGS with the fixed
// reserved-bit pattern, independent of whatever garbage bits a caller may
// have set directly via SetState.
func TestPushfSkipsUndefinedBits(t *testing.T) {
	bus := &testBus{}
	bus.mem[0xFFFF0] = 0x9C // PUSHF

	cpu := New(bus)
	regs := cpu.Registers()
	regs.SP = 0x0100
	regs.Flags = flagCF | flagZF | 0xF028 // reserved bits 3, 5 and 12-15 set, bit 1 clear
	cpu.SetState(regs)

	cpu.Step()

	after := cpu.Registers()
	if after.SP != 0x00FE {
		t.Fatalf("SP = 0x%04X, want 0x00FE", after.SP)
	}
	pushed := cpu.readMem(after.SS, after.SP, Word)
	if want := normalizeFlags(regs.Flags); pushed != want {
		t.Errorf("pushed flags = 0x%04X, want 0x%04X", pushed, want)
	}
}

// TestQueueFlushOnNearJMP covers opcode 0xEB (JMP rel8): the prefetch
// queue must flush at the jump, and decoding resumes at the new IP rather
// than continuing through the bytes skipped over.
func TestQueueFlushOnNearJMP(t *testing.T) {
	bus := &testBus{}
	prog := []byte{0xEB, 0x02, 0x90, 0x90, 0x90}
	copy(bus.mem[0xFFFF0:], prog)

	cpu := New(bus)
	obs := &recordingObserver{}
	cpu.AttachObserver(obs)
	cpu.Step()

	if got := cpu.Registers().IP; got != 4 {
		t.Fatalf("IP after JMP rel8 +2 = %d, want 4", got)
	}

	flushed := false
	for _, cs := range obs.cycles {
		if cs.QueueOp == QueueFlush {
			flushed = true
		}
	}
	if !flushed {
		t.Error("expected a QueueFlush cycle state on the jump, got none")
	}

	cpu.Step()
	if got := cpu.Registers().IP; got != 5 {
		t.Errorf("IP after following NOP = %d, want 5", got)
	}
}
