package bridge

import (
	"testing"

	vx88 "github.com/8088lab/vx88"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeCPULoadStoreRoundTrip(t *testing.T) {
	fc := NewFakeCPU()
	want := vx88.Registers{AX: 0x1234, BX: 0x5678, CS: 0x0100, Flags: 0x0002}

	require.NoError(t, fc.Load(want))

	got, err := fc.Store()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFakeCPUStepRunsNOP(t *testing.T) {
	fc := NewFakeCPU()
	require.NoError(t, fc.Load(vx88.Registers{CS: 0x0100, Flags: 0x0002}))

	cycles, discard, err := fc.Step([]byte{0x90}, 0x1000)
	require.NoError(t, err)
	assert.False(t, discard)
	assert.NotEmpty(t, cycles)

	regs, err := fc.Store()
	require.NoError(t, err)
	assert.Equal(t, uint16(1), regs.IP)
}

func TestFakeCPUCalcLinearAddress(t *testing.T) {
	fc := NewFakeCPU()
	assert.Equal(t, uint32(0xFFFF0), fc.CalcLinearAddress(0xFFFF, 0x0000))
	assert.Equal(t, uint32(0x00000), fc.CalcLinearAddress(0xFFFF, 0x0010))
}
