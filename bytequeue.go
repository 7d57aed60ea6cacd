package i8088

// ByteQueue is the decoder's view of the instruction byte stream. It is
// implemented two ways: PrefetchQueue-backed, which drives real code-fetch
// bus cycles as the BIU's queue drains, and flat-memory-backed, which
// reads straight off a Bus for disassembly and debug tooling where cycle
// effects are meaningless.
type ByteQueue interface {
	// ReadU8 returns the next byte without consuming it.
	ReadU8() byte
	// ReadU16 returns the next two bytes, little-endian, without consuming them.
	ReadU16() uint16
	// Q8 consumes and returns the next byte, advancing the cursor/queue.
	Q8() byte
	// Q16 consumes and returns the next little-endian word.
	Q16() uint16
	// Wait accounts for n bus cycles elapsing without any queue effect.
	// Flat-memory-backed queues ignore this.
	Wait(n int)
}

// flatByteQueue is a ByteQueue backed directly by a Bus, with no prefetch
// or cycle modeling. Used by Disassemble and other debug-only call sites.
type flatByteQueue struct {
	bus  Bus
	addr uint32
}

// NewFlatByteQueue returns a ByteQueue that reads directly from bus
// starting at the given linear address, with no cycle or queue effects.
func NewFlatByteQueue(bus Bus, addr uint32) ByteQueue {
	return &flatByteQueue{bus: bus, addr: addr}
}

func (f *flatByteQueue) ReadU8() byte {
	return f.bus.ReadByte(f.addr & 0xFFFFF)
}

func (f *flatByteQueue) ReadU16() uint16 {
	lo := uint16(f.bus.ReadByte(f.addr & 0xFFFFF))
	hi := uint16(f.bus.ReadByte((f.addr + 1) & 0xFFFFF))
	return lo | hi<<8
}

func (f *flatByteQueue) Q8() byte {
	b := f.ReadU8()
	f.addr++
	return b
}

func (f *flatByteQueue) Q16() uint16 {
	w := f.ReadU16()
	f.addr += 2
	return w
}

func (f *flatByteQueue) Wait(n int) {}

// Disassemble decodes one instruction straight from bus at addr, with no
// cycle or prefetch-queue effects. Used by debug tooling and by the
// validator frontend to know an instruction's mnemonic, opcode and byte
// length ahead of driving it through a CPU.
func Disassemble(bus Bus, addr uint32) (Instruction, error) {
	return decode(NewFlatByteQueue(bus, addr))
}
