//go:build !js

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/logrusorgru/aurora"

	"hackvm/pkg/asm"
	"hackvm/pkg/cpu"
	"hackvm/pkg/isa"
	"hackvm/pkg/utils"
	"hackvm/pkg/vm"
)

func main() {
	inPath := flag.String("in", "", "input .vm file, directory of .vm files, or .asm file")
	outPath := flag.String("out", "", "output path (default: derived from -in)")
	emit := flag.String("emit", "both", "what to write: asm, hack or both")
	runProgram := flag.Bool("run", false, "run the program on the simulator after building it")
	cycles := flag.Int("cycles", 1_000_000, "cycle limit for -run (0 = no limit)")
	dump := flag.Int("dump", 16, "number of RAM words to print after -run")
	flag.Parse()

	log.SetFlags(0)

	if *inPath == "" {
		fmt.Fprintln(os.Stderr, "nothing to do: provide -in <file.vm|dir|file.asm>")
		flag.Usage()
		os.Exit(2)
	}
	if *emit != "asm" && *emit != "hack" && *emit != "both" {
		fmt.Fprintf(os.Stderr, "unknown -emit %q: want asm, hack or both\n", *emit)
		os.Exit(2)
	}

	assembly, words, err := build(*inPath)
	if err != nil {
		fail("build failed: %v", err)
	}

	isAsmInput := strings.EqualFold(filepath.Ext(*inPath), ".asm")
	if *emit != "hack" && !isAsmInput {
		output, err := outputFor(*inPath, *outPath, ".asm", *emit)
		if err != nil {
			fail("%v", err)
		}
		if err := writeFile(output, assembly); err != nil {
			fail("failed to write %q: %v", output, err)
		}
		log.Printf("translated -> %s", output)
	}
	if *emit != "asm" || isAsmInput {
		output, err := outputFor(*inPath, *outPath, ".hack", *emit)
		if err != nil {
			fail("%v", err)
		}
		if err := writeFile(output, isa.FormatWords(words)); err != nil {
			fail("failed to write %q: %v", output, err)
		}
		log.Printf("assembled %d words -> %s", len(words), output)
	}

	if *runProgram {
		if err := runWords(words, *cycles, *dump); err != nil {
			fail("run failed: %v", err)
		}
	}
}

func fail(format string, args ...any) {
	fmt.Fprintln(os.Stderr, aurora.Red(fmt.Sprintf(format, args...)))
	os.Exit(1)
}

// build produces assembly text and machine words for inPath. Nothing is
// written until both stages succeed.
func build(inPath string) (string, []uint16, error) {
	if strings.EqualFold(filepath.Ext(inPath), ".asm") {
		source, err := os.ReadFile(inPath)
		if err != nil {
			return "", nil, err
		}
		words, _, err := asm.Assemble(string(source))
		if err != nil {
			return "", nil, err
		}
		return string(source), words, nil
	}

	res, err := vm.CompilePath(inPath)
	if err != nil {
		return "", nil, err
	}
	return res.Assembly, res.Words, nil
}

// outputFor honours -out only when a single file is being written.
func outputFor(inPath, outPath, ext, emit string) (string, error) {
	if outPath != "" && emit != "both" {
		return outPath, nil
	}
	if outPath != "" {
		return defaultOutputPath(outPath, ext), nil
	}
	return utils.OutputPath(inPath, ext)
}

func defaultOutputPath(path, ext string) string {
	old := filepath.Ext(path)
	if old == "" {
		return path + ext
	}
	return strings.TrimSuffix(path, old) + ext
}

func writeFile(path string, data string) error {
	return os.WriteFile(path, []byte(data), 0o644)
}

func runWords(words []uint16, cycles, dump int) error {
	c := cpu.NewCPU()
	if err := c.Load(words); err != nil {
		return err
	}
	if err := c.Run(cycles); err != nil {
		return err
	}

	fmt.Printf("run complete: PC=%d A=%d D=%d cycles=%d\n", c.PC, c.A, c.D, c.Cycles)
	for addr := 0; addr < dump && addr < cpu.RAMSize; addr++ {
		fmt.Printf("RAM[%d] = %d\n", addr, int16(c.RAM[addr]))
	}
	return nil
}
