package i8088

import "testing"

// testBus is a flat 1 MiB memory bus for testing, with a small I/O port
// space backed by the same kind of flat array.
type testBus struct {
	mem   [1 << 20]byte
	ports [0x10000]byte
}

func (b *testBus) ReadByte(addr uint32) byte        { return b.mem[addr&0xFFFFF] }
func (b *testBus) WriteByte(addr uint32, val byte)  { b.mem[addr&0xFFFFF] = val }
func (b *testBus) ReadPort(port uint16) byte        { return b.ports[port] }
func (b *testBus) WritePort(port uint16, val byte)  { b.ports[port] = val }
func (b *testBus) Reset()                           {}

// writeWord stores a little-endian 16-bit word into the test bus memory.
func writeWord(bus *testBus, addr uint32, val uint16) {
	bus.mem[addr&0xFFFFF] = byte(val)
	bus.mem[(addr+1)&0xFFFFF] = byte(val >> 8)
}

// fillNOPs writes NOP (0x90) bytes starting at addr.
func fillNOPs(bus *testBus, addr uint32, count int) {
	for i := 0; i < count; i++ {
		bus.mem[(addr+uint32(i))&0xFFFFF] = 0x90
	}
}

// newNOPCPU creates a CPU whose code segment is filled with NOPs starting
// at CS:0, ready to single-step.
func newNOPCPU(nopCount int) (*CPU, *testBus) {
	bus := &testBus{}
	cs := uint16(0x0100)
	fillNOPs(bus, uint32(cs)<<4, nopCount)
	cpu := New(bus)
	cpu.SetState(Registers{CS: cs, Flags: normalizeFlags(0)})
	return cpu, bus
}

// runTest installs init as the CPU's starting state, executes one Step,
// and compares the resulting registers against want. Fields of want left
// at their zero value are still checked; callers should fill in every
// register they care about, starting from init where state is unchanged
// (e.g. want := init; want.AX = 0x1234).
func runTest(t *testing.T, bus *testBus, init, want Registers) {
	t.Helper()

	cpu := New(bus)
	cpu.SetState(init)
	cpu.Step()

	got := cpu.Registers()
	if got != want {
		t.Errorf("registers = %+v, want %+v", got, want)
	}
}
