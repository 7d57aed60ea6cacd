package validator

import (
	"testing"

	vx88 "github.com/8088lab/vx88"
	"github.com/8088lab/vx88/bridge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runOneInstruction drives a local emulator and a FakeCPU (a second,
// independent emulator instance) through the same program bytes, and
// returns whatever the validator decided. Since both sides run identical
// logic, every comparison should agree; this exercises the validator's
// plumbing rather than genuine hardware divergence.
func runOneInstruction(t *testing.T, prog []byte, mode Mode) (Outcome, error) {
	t.Helper()

	bus := &testBus{}
	copy(bus.mem[0xFFFF0:], prog)

	cpu := vx88.New(bus)
	fc := bridge.NewFakeCPU()
	v := New(fc)
	require.True(t, v.Init(mode, true, false, false))

	obs := &capturingObserver{}
	cpu.AttachObserver(obs)

	regsBefore := cpu.Registers()
	v.BeginInstruction(regsBefore, 0, 0)
	v.ResetInstruction()

	cpu.Step()
	regsAfter := cpu.Registers()

	for _, op := range obs.ops {
		switch op.Kind {
		case vx88.BusMemRead, vx88.BusIORead, vx88.BusCodeRead:
			v.EmuReadByte(op.Address, op.Data, op.Kind)
		default:
			v.EmuWriteByte(op.Address, op.Data, op.Kind)
		}
	}

	return v.ValidateInstruction(vx88.Mnemonic(""), prog[0], prog, regsAfter, obs.cycles)
}

type testBus struct {
	mem [1 << 20]byte
}

func (b *testBus) ReadByte(addr uint32) byte      { return b.mem[addr&0xFFFFF] }
func (b *testBus) WriteByte(addr uint32, v byte)  { b.mem[addr&0xFFFFF] = v }
func (b *testBus) ReadPort(uint16) byte           { return 0 }
func (b *testBus) WritePort(uint16, byte)         {}
func (b *testBus) Reset()                         {}

type capturingObserver struct {
	ops    []vx88.BusOp
	cycles []vx88.CycleState
}

func (o *capturingObserver) OnBusOp(op vx88.BusOp)          { o.ops = append(o.ops, op) }
func (o *capturingObserver) OnCycleState(cs vx88.CycleState) { o.cycles = append(o.cycles, cs) }

func TestValidateInstructionNOP(t *testing.T) {
	outcome, err := runOneInstruction(t, []byte{0x90}, ModeInstruction)
	require.NoError(t, err)
	assert.Equal(t, Ok, outcome)
}

func TestValidateInstructionMovALImm8(t *testing.T) {
	outcome, err := runOneInstruction(t, []byte{0xB0, 0x42}, ModeInstruction)
	require.NoError(t, err)
	assert.Equal(t, Ok, outcome)
}

func TestCorrectQueueCounts(t *testing.T) {
	in := []vx88.CycleState{
		{QueueLen: 3, QueueOp: vx88.QueueIdle},
		{QueueLen: 3, QueueOp: vx88.QueueFirst},
		{QueueLen: 2, QueueOp: vx88.QueueSubsequent},
		{QueueLen: 0, QueueOp: vx88.QueueFlush},
	}
	out := correctQueueCounts(in)
	assert.Equal(t, 2, out[0].QueueLen)
	assert.Equal(t, 2, out[1].QueueLen)
	assert.Equal(t, 0, out[2].QueueLen)
	assert.Equal(t, 0, out[3].QueueLen)
}

func TestValidateRegistersMasksUndefinedFlags(t *testing.T) {
	emu := vx88.Registers{Flags: 0x0002 | 1<<4} // AF set
	phys := vx88.Registers{Flags: 0x0002}       // AF clear

	err := validateRegisters(emu, phys, vx88.AND) // AND leaves AF undefined
	assert.NoError(t, err)

	err = validateRegisters(emu, phys, vx88.ADD) // ADD defines AF
	assert.Error(t, err)
}
