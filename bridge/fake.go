package bridge

import vx88 "github.com/8088lab/vx88"

// flatBus is a 1 MiB byte-addressable memory and port space, the
// simplest thing satisfying vx88.Bus.
type flatBus struct {
	mem   [MemSize]byte
	ports [0x10000]byte
}

func (b *flatBus) ReadByte(addr uint32) byte       { return b.mem[addr&0xFFFFF] }
func (b *flatBus) WriteByte(addr uint32, v byte)   { b.mem[addr&0xFFFFF] = v }
func (b *flatBus) ReadPort(port uint16) byte       { return b.ports[port] }
func (b *flatBus) WritePort(port uint16, v byte)   { b.ports[port] = v }
func (b *flatBus) Reset()                          {}

// fakeObserver collects the cycle states a FakeCPU's embedded emulator
// produces while stepping, the same role the real bridge's ALE/RD/WR
// sampling plays for a physical chip.
type fakeObserver struct {
	cycles []vx88.CycleState
}

func (o *fakeObserver) OnBusOp(vx88.BusOp)             {}
func (o *fakeObserver) OnCycleState(cs vx88.CycleState) { o.cycles = append(o.cycles, cs) }

// FakeCPU is an in-process RemoteCPU backed by a second vx88.CPU
// instance. It exists so the validator's comparison logic can be tested
// without a physical 8088 attached: driving two identical emulators
// through the same instruction always agrees, which exercises every
// comparison path except genuine hardware divergence.
type FakeCPU struct {
	bus          *flatBus
	cpu          *vx88.CPU
	instrEndAddr uint32
	programEnd   uint32
}

// NewFakeCPU creates a FakeCPU ready for Reset/Load/Step.
func NewFakeCPU() *FakeCPU {
	f := &FakeCPU{bus: &flatBus{}}
	f.cpu = vx88.New(f.bus)
	return f
}

func (f *FakeCPU) Reset() error {
	f.cpu.Reset()
	return nil
}

func (f *FakeCPU) Load(regs vx88.Registers) error {
	f.cpu.SetState(regs)
	return nil
}

func (f *FakeCPU) Step(instrBytes []byte, instrAddr uint32) ([]vx88.CycleState, bool, error) {
	for i, b := range instrBytes {
		f.bus.mem[(instrAddr+uint32(i))&0xFFFFF] = b
	}

	obs := &fakeObserver{}
	f.cpu.AttachObserver(obs)
	f.cpu.Step()
	f.cpu.AttachObserver(nil)

	if len(obs.cycles) > CycleLimit {
		return nil, false, &BridgeError{Kind: BridgeCycleLimit}
	}
	return obs.cycles, false, nil
}

func (f *FakeCPU) Store() (vx88.Registers, error) {
	return f.cpu.Registers(), nil
}

// AdjustIP is the identity transform: the in-process emulator has no
// prefetch bias of its own to compensate for, unlike a physical chip
// whose IP is read back mid-prefetch.
func (f *FakeCPU) AdjustIP(regs vx88.Registers) vx88.Registers { return regs }

func (f *FakeCPU) InFinalize() bool {
	return f.instrEndAddr != 0 && uint32(f.cpu.Registers().CS)<<4+uint32(f.cpu.Registers().IP) >= f.programEnd
}

func (f *FakeCPU) SetInstrEndAddr(addr uint32)   { f.instrEndAddr = addr }
func (f *FakeCPU) SetProgramEndAddr(addr uint32) { f.programEnd = addr }

func (f *FakeCPU) CalcLinearAddress(cs, ip uint16) uint32 {
	return (uint32(cs)<<4 + uint32(ip)) & 0xFFFFF
}

func (f *FakeCPU) PrintRegs(regs vx88.Registers) string {
	return formatRegs(regs)
}

func (f *FakeCPU) GetCycleStateStr(cs vx88.CycleState) string {
	return formatCycleState(cs)
}
