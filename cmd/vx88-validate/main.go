// Command vx88-validate drives a program file through the local emulator
// and a bridge.RemoteCPU instruction by instruction, reporting the first
// validator error it hits. It is the host program of the validated
// lockstep protocol: it decides whether to keep going after a mismatch,
// not the validator itself.
package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"

	vx88 "github.com/8088lab/vx88"
	"github.com/8088lab/vx88/bridge"
	"github.com/8088lab/vx88/validator"
	"gopkg.in/urfave/cli.v2"
)

// flatBus is a 1 MiB byte-addressable bus with no I/O side effects,
// enough to host a program image for single-stepping.
type flatBus struct {
	mem [1 << 20]byte
}

func (b *flatBus) ReadByte(addr uint32) byte       { return b.mem[addr&0xFFFFF] }
func (b *flatBus) WriteByte(addr uint32, v byte)    { b.mem[addr&0xFFFFF] = v }
func (b *flatBus) ReadPort(uint16) byte             { return 0xFF }
func (b *flatBus) WritePort(uint16, byte)           {}
func (b *flatBus) Reset()                           {}

// traceObserver mirrors every bus op and cycle state into the validator,
// accumulates the per-instruction cycle sequence for ModeCycle
// comparisons, and, when requested, writes both into a trace log.
type traceObserver struct {
	v      *validator.Validator
	trace  *bufio.Writer
	cycles []vx88.CycleState
}

func (o *traceObserver) reset() { o.cycles = o.cycles[:0] }

func (o *traceObserver) OnBusOp(op vx88.BusOp) {
	switch op.Kind {
	case vx88.BusMemRead, vx88.BusIORead, vx88.BusCodeRead:
		o.v.EmuReadByte(op.Address, op.Data, op.Kind)
	default:
		o.v.EmuWriteByte(op.Address, op.Data, op.Kind)
	}
	if o.trace != nil {
		fmt.Fprintf(o.trace, "busop kind=%d addr=%05X data=%02X\n", op.Kind, op.Address, op.Data)
	}
}

func (o *traceObserver) OnCycleState(cs vx88.CycleState) {
	o.cycles = append(o.cycles, cs)
	if o.trace != nil {
		fmt.Fprintf(o.trace, "cycle addr=%05X data=%02X rd=%v wr=%v qlen=%d qop=%v\n",
			cs.AddressLatch, cs.Data, cs.RD, cs.WR, cs.QueueLen, cs.QueueOp)
	}
}

func parseHexAddr(s string) (uint32, bool, error) {
	if s == "" {
		return 0, false, nil
	}
	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, false, fmt.Errorf("invalid hex address %q: %w", s, err)
	}
	return uint32(n), true, nil
}

func main() {
	app := &cli.App{
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "port", Usage: "serial device path to the physical 8088 fixture"},
			&cli.IntFlag{Name: "baud", Usage: "serial baud rate", Value: 115200},
			&cli.StringFlag{Name: "program", Usage: "binary image to load at 0000:0100 and single-step"},
			&cli.StringFlag{Name: "trigger", Usage: "hex linear address to begin validating at"},
			&cli.StringFlag{Name: "mode", Usage: "comparison granularity: cycle or instruction", Value: "instruction"},
			&cli.BoolFlag{Name: "mask-flags", Usage: "mask architecturally undefined FLAGS bits before comparing", Value: true},
			&cli.BoolFlag{Name: "visit-once", Usage: "discard repeat BIOS-region instructions in instruction mode"},
			&cli.BoolFlag{Name: "cycle-trace", Usage: "stored by the validator; does not change what is compared or traced (per-cycle lines go to --trace-out whenever it is set)"},
			&cli.StringFlag{Name: "trace-out", Usage: "path to write the trace log to"},
		},
		Name:    "vx88-validate",
		Usage:   "co-validate the i8088 emulator against a physical 8088 over a serial bridge",
		Version: "v0.0.1",
		Action:  run,
	}

	sort.Sort(cli.FlagsByName(app.Flags))
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	programPath := c.String("program")
	if programPath == "" {
		cli.ShowAppHelp(c)
		return cli.Exit("--program is required", 86)
	}

	program, err := os.ReadFile(programPath)
	if err != nil {
		return fmt.Errorf("reading program: %w", err)
	}

	const loadOffset = 0x0100
	bus := &flatBus{}
	copy(bus.mem[loadOffset:], program)

	var remote bridge.RemoteCPU
	if port := c.String("port"); port != "" {
		remote, err = openRemote(port, c.Int("baud"))
		if err != nil {
			return err
		}
	} else {
		log.Println("vx88-validate: --port not given, validating against an in-process reference CPU")
		remote = bridge.NewFakeCPU()
	}

	mode := validator.ModeInstruction
	if c.String("mode") == "cycle" {
		mode = validator.ModeCycle
	}

	v := validator.New(remote)
	if !v.Init(mode, c.Bool("mask-flags"), c.Bool("cycle-trace"), c.Bool("visit-once")) {
		return fmt.Errorf("remote CPU failed to reset")
	}

	if addr, ok, err := parseHexAddr(c.String("trigger")); err != nil {
		return err
	} else if ok {
		v.SetTrigger(addr)
	}

	var traceFile *os.File
	var trace *bufio.Writer
	if path := c.String("trace-out"); path != "" {
		traceFile, err = os.Create(path)
		if err != nil {
			return fmt.Errorf("creating trace file: %w", err)
		}
		defer traceFile.Close()
		trace = bufio.NewWriter(traceFile)
		defer trace.Flush()
	}

	cpu := vx88.New(bus)
	cpu.SetState(vx88.Registers{CS: 0, IP: loadOffset, SP: 0xFFFE, SS: 0})

	obs := &traceObserver{v: v, trace: trace}
	cpu.AttachObserver(obs)

	programEnd := uint32(loadOffset + len(program))
	count := 0
	for {
		regsBefore := cpu.Registers()
		addr := uint32(regsBefore.CS)<<4 + uint32(regsBefore.IP)
		if addr >= programEnd {
			break
		}

		inst, err := vx88.Disassemble(bus, addr)
		if err != nil {
			return fmt.Errorf("decode at %05X: %w", addr, err)
		}
		instrBytes := make([]byte, inst.Size)
		for i := range instrBytes {
			instrBytes[i] = bus.ReadByte(addr + uint32(i))
		}

		v.BeginInstruction(regsBefore, addr+uint32(inst.Size), programEnd)
		v.ResetInstruction()
		obs.reset()

		cpu.Step()
		regsAfter := cpu.Registers()

		outcome, err := v.ValidateInstruction(inst.Mnemonic, inst.Opcode, instrBytes, regsAfter, obs.cycles)
		if err != nil {
			log.Printf("vx88-validate: mismatch at %05X (%s): %v", addr, inst.Mnemonic, err)
			return err
		}
		count++
		if outcome == validator.OkEnd {
			break
		}
	}

	log.Printf("vx88-validate: validated %d instructions, no mismatch", count)
	return nil
}
