package bridge

import (
	"fmt"

	vx88 "github.com/8088lab/vx88"
)

// formatRegs renders a register snapshot the way trace output wants it:
// one line, hex, in the 28-byte buffer's field order.
func formatRegs(r vx88.Registers) string {
	return fmt.Sprintf("AX=%04X BX=%04X CX=%04X DX=%04X SS=%04X SP=%04X FLAGS=%04X IP=%04X CS=%04X DS=%04X ES=%04X BP=%04X SI=%04X DI=%04X",
		r.AX, r.BX, r.CX, r.DX, r.SS, r.SP, r.Flags, r.IP, r.CS, r.DS, r.ES, r.BP, r.SI, r.DI)
}

// formatCycleState renders one bus cycle's externally visible signals.
func formatCycleState(cs vx88.CycleState) string {
	rw := "--"
	if cs.RD {
		rw = "RD"
	} else if cs.WR {
		rw = "WR"
	}
	space := "MEM"
	if cs.IOM {
		space = "IO "
	}
	return fmt.Sprintf("%05X %02X %s %s q=%d op=%s", cs.AddressLatch, cs.Data, rw, space, cs.QueueLen, cs.QueueOp)
}
