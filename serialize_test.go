package i8088

import "testing"

func TestRegsToBufRoundTrip(t *testing.T) {
	want := Registers{
		AX: 0x1122, BX: 0x3344, CX: 0x5566, DX: 0x7788,
		SS: 0x0100, SP: 0xFFFE, Flags: normalizeFlags(0x8246),
		IP: 0x1234, CS: 0xF000, DS: 0x0200, ES: 0x0300,
		BP: 0x9ABC, SI: 0xDEF0, DI: 0x1357,
	}

	buf := make([]byte, RegBufSize())
	if err := RegsToBuf(want, buf); err != nil {
		t.Fatalf("RegsToBuf: %v", err)
	}

	got, err := BufToRegs(buf)
	if err != nil {
		t.Fatalf("BufToRegs: %v", err)
	}
	if got != want {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestRegsToBufWireOrder(t *testing.T) {
	r := Registers{AX: 0x0201, BX: 0x0403, CX: 0x0605, DX: 0x0807,
		SS: 0x0A09, SP: 0x0C0B, Flags: 0x0E0D, IP: 0x100F,
		CS: 0x1211, DS: 0x1413, ES: 0x1615, BP: 0x1817, SI: 0x1A19, DI: 0x1C1B}

	buf := make([]byte, RegBufSize())
	if err := RegsToBuf(r, buf); err != nil {
		t.Fatalf("RegsToBuf: %v", err)
	}

	for i := 0; i < regBufSize; i++ {
		want := byte(i + 1)
		if buf[i] != want {
			t.Errorf("buf[%d] = 0x%02X, want 0x%02X", i, buf[i], want)
		}
	}
}

func TestRegsToBufTooSmall(t *testing.T) {
	if err := RegsToBuf(Registers{}, make([]byte, regBufSize-1)); err == nil {
		t.Error("expected error for undersized buffer")
	}
	if _, err := BufToRegs(make([]byte, regBufSize-1)); err == nil {
		t.Error("expected error for undersized buffer")
	}
}
