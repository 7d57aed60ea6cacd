package i8088

import (
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var sstPath = flag.String("sstpath", "", "directory containing SingleStepTests-style JSON test files")
var sstStrict = flag.Bool("sststrict", false, "run all SST tests including known failures")

// sstSkip lists JSON files that fail due to documented design choices.
// Remove entries as features are implemented to re-enable those tests.
var sstSkip = map[string]string{
	// runSSTTest compares FLAGS without MaskUndefinedFlags, so the
	// undefined flag bits AAM/AAD leave can differ from the vectors.
	"AAM.json": "undefined-flag coverage not verified against hardware vectors",
	"AAD.json": "undefined-flag coverage not verified against hardware vectors",
}

type sstJSONRegs struct {
	AX    uint16 `json:"ax"`
	BX    uint16 `json:"bx"`
	CX    uint16 `json:"cx"`
	DX    uint16 `json:"dx"`
	SP    uint16 `json:"sp"`
	BP    uint16 `json:"bp"`
	SI    uint16 `json:"si"`
	DI    uint16 `json:"di"`
	ES    uint16 `json:"es"`
	CS    uint16 `json:"cs"`
	SS    uint16 `json:"ss"`
	DS    uint16 `json:"ds"`
	IP    uint16 `json:"ip"`
	Flags uint16 `json:"flags"`
}

func (r sstJSONRegs) toRegisters() Registers {
	return Registers{
		AX: r.AX, BX: r.BX, CX: r.CX, DX: r.DX,
		SP: r.SP, BP: r.BP, SI: r.SI, DI: r.DI,
		ES: r.ES, CS: r.CS, SS: r.SS, DS: r.DS,
		IP: r.IP, Flags: r.Flags,
	}
}

type sstJSONState struct {
	Regs sstJSONRegs `json:"regs"`
	RAM  [][2]uint32 `json:"ram"`
}

type sstJSONTest struct {
	Name    string        `json:"name"`
	Initial sstJSONState  `json:"initial"`
	Final   sstJSONState  `json:"final"`
	Cycles  int           `json:"cycles"`
}

// runSSTTest loads init into a fresh CPU, steps once, and compares the
// resulting registers and touched RAM cells against want.
func runSSTTest(t *testing.T, init, want sstJSONState, wantCycles int) {
	t.Helper()

	bus := &testBus{}
	for _, entry := range init.RAM {
		bus.mem[entry[0]&0xFFFFF] = byte(entry[1])
	}

	cpu := New(bus)
	cpu.SetState(init.Regs.toRegisters())

	gotCycles := cpu.Step()

	reg := cpu.Registers()
	wantRegs := want.Regs.toRegisters()
	wantRegs.Flags = normalizeFlags(wantRegs.Flags)
	gotFlags := normalizeFlags(reg.Flags)

	if reg.AX != wantRegs.AX || reg.BX != wantRegs.BX || reg.CX != wantRegs.CX || reg.DX != wantRegs.DX {
		t.Errorf("AX/BX/CX/DX = %04X/%04X/%04X/%04X, want %04X/%04X/%04X/%04X",
			reg.AX, reg.BX, reg.CX, reg.DX, wantRegs.AX, wantRegs.BX, wantRegs.CX, wantRegs.DX)
	}
	if reg.SP != wantRegs.SP || reg.BP != wantRegs.BP || reg.SI != wantRegs.SI || reg.DI != wantRegs.DI {
		t.Errorf("SP/BP/SI/DI = %04X/%04X/%04X/%04X, want %04X/%04X/%04X/%04X",
			reg.SP, reg.BP, reg.SI, reg.DI, wantRegs.SP, wantRegs.BP, wantRegs.SI, wantRegs.DI)
	}
	if reg.ES != wantRegs.ES || reg.CS != wantRegs.CS || reg.SS != wantRegs.SS || reg.DS != wantRegs.DS {
		t.Errorf("ES/CS/SS/DS = %04X/%04X/%04X/%04X, want %04X/%04X/%04X/%04X",
			reg.ES, reg.CS, reg.SS, reg.DS, wantRegs.ES, wantRegs.CS, wantRegs.SS, wantRegs.DS)
	}
	if reg.IP != wantRegs.IP {
		t.Errorf("IP = %04X, want %04X", reg.IP, wantRegs.IP)
	}
	if gotFlags != wantRegs.Flags {
		t.Errorf("FLAGS = %04X, want %04X (diff %04X)", gotFlags, wantRegs.Flags, gotFlags^wantRegs.Flags)
	}

	for _, entry := range want.RAM {
		addr := entry[0] & 0xFFFFF
		wantVal := byte(entry[1])
		if got := bus.mem[addr]; got != wantVal {
			t.Errorf("RAM[%05X] = %02X, want %02X", addr, got, wantVal)
		}
	}

	if wantCycles > 0 && gotCycles != wantCycles {
		t.Errorf("cycles = %d, want %d", gotCycles, wantCycles)
	}
}

// TestSST runs the full SingleStepTests-style JSON corpus against the
// core decoder/executor when -sstpath points at a directory of fixtures.
// No such fixtures ship in this repository; this is a harness for
// hardware-verified vectors supplied externally.
func TestSST(t *testing.T) {
	if *sstPath == "" {
		t.Skip("no -sstpath provided")
	}

	entries, err := os.ReadDir(*sstPath)
	if err != nil {
		t.Fatalf("reading sstpath: %v", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		fname := entry.Name()
		if reason, ok := sstSkip[fname]; ok && !*sstStrict {
			t.Run(fname, func(t *testing.T) {
				t.Skipf("known failure: %s (use -sststrict to run)", reason)
			})
			continue
		}
		t.Run(fname, func(t *testing.T) {
			t.Parallel()
			data, err := os.ReadFile(filepath.Join(*sstPath, fname))
			if err != nil {
				t.Fatalf("reading %s: %v", fname, err)
			}

			var tests []sstJSONTest
			if err := json.Unmarshal(data, &tests); err != nil {
				t.Fatalf("parsing %s: %v", fname, err)
			}

			for i := range tests {
				jt := &tests[i]
				t.Run(jt.Name, func(t *testing.T) {
					runSSTTest(t, jt.Initial, jt.Final, jt.Cycles)
				})
			}
		})
	}
}
