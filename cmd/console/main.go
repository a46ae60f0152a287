package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/logrusorgru/aurora"

	"hackvm/pkg/cpu"
	"hackvm/pkg/isa"
	"hackvm/pkg/utils"
	"hackvm/pkg/vm"
)

func main() {
	cycles := flag.Int("cycles", 10_000_000, "cycle limit (0 = run until halted)")
	trace := flag.Bool("trace", false, "print every executed instruction")
	dump := flag.String("dump", "0:16", "RAM range start:end to print when done")
	screenshot := flag.String("screenshot", "", "write the screen to this PNG when done")
	save := flag.String("save", "", "write a snapshot of the machine when done")
	restore := flag.String("restore", "", "resume from a snapshot instead of loading a program")
	flag.Parse()

	log.SetFlags(0)

	start, end, err := parseRange(*dump)
	if err != nil {
		log.Fatalf("bad -dump: %v", err)
	}

	machine := cpu.NewCPU()
	switch {
	case *restore != "":
		if err := machine.RestoreFromFile(*restore); err != nil {
			log.Fatalf("Restore failed: %v", err)
		}
	case flag.NArg() > 0:
		fullPath, baseDir, err := utils.GetPathInfo(flag.Arg(0))
		if err != nil {
			log.Fatalf("Bad path: %v", err)
		}
		log.Print("Loading:", fullPath)
		log.Print("Base directory:", baseDir)

		program, err := vm.LoadProgram(fullPath)
		if err != nil {
			log.Fatalf("Build failed: %v", err)
		}
		if err := machine.Load(program); err != nil {
			log.Fatal(err)
		}
	default:
		fmt.Fprintln(os.Stderr, "usage: console [flags] <file.hack|file.asm|file.vm|dir>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	if *trace {
		machine.Trace = traceTo(os.Stdout, machine)
	}

	runErr := machine.Run(*cycles)
	if runErr != nil && !errors.Is(runErr, cpu.ErrCycleLimit) {
		log.Fatal(runErr)
	}
	if runErr != nil {
		fmt.Println(aurora.Yellow(runErr.Error()))
	} else {
		fmt.Println(aurora.Green(fmt.Sprintf("halted after %d cycles", machine.Cycles)))
	}

	dumpRAM(os.Stdout, machine, start, end)

	if *screenshot != "" {
		if err := machine.SaveScreenshot(*screenshot); err != nil {
			log.Fatalf("Screenshot failed: %v", err)
		}
	}
	if *save != "" {
		if err := machine.HibernateToFile(*save); err != nil {
			log.Fatalf("Snapshot failed: %v", err)
		}
	}
}

// parseRange reads "start:end" with end exclusive.
func parseRange(s string) (int, int, error) {
	lo, hi, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("want start:end, got %q", s)
	}
	start, err := strconv.Atoi(lo)
	if err != nil {
		return 0, 0, err
	}
	end, err := strconv.Atoi(hi)
	if err != nil {
		return 0, 0, err
	}
	if start < 0 || end > cpu.RAMSize || start > end {
		return 0, 0, fmt.Errorf("range %d:%d outside RAM", start, end)
	}
	return start, end, nil
}

func traceTo(w io.Writer, c *cpu.CPU) func(pc, instr uint16) {
	return func(pc, instr uint16) {
		mnemonic := aurora.Blue(isa.Disassemble(instr)).String()
		if isa.IsCompute(instr) {
			mnemonic = aurora.Brown(isa.Disassemble(instr)).String()
		}
		fmt.Fprintf(w, "%05d  %s  %-24s %s\n", pc, isa.FormatWord(instr), mnemonic,
			aurora.Magenta(fmt.Sprintf("A=%d D=%d M=%d", c.A, int16(c.D), int16(c.M()))))
	}
}

func dumpRAM(w io.Writer, c *cpu.CPU, start, end int) {
	for addr := start; addr < end; addr++ {
		fmt.Fprintf(w, "RAM[%d] = %d\n", addr, int16(c.RAM[addr]))
	}
}
