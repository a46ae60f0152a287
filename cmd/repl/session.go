package main

import (
	"fmt"
	"strings"

	"github.com/logrusorgru/aurora"

	"hackvm/pkg/asm"
	"hackvm/pkg/cpu"
	"hackvm/pkg/isa"
	"hackvm/pkg/vm"
)

// Initial pointer values for :run, matching the usual test harness layout.
var seedRAM = map[int]uint16{
	0: 256,  // SP
	1: 300,  // LCL
	2: 400,  // ARG
	3: 3000, // THIS
	4: 3010, // THAT
}

const runLimit = 1_000_000

// session keeps the code generator and everything typed so far.
type session struct {
	cg    *vm.CodeGen
	lines []isa.Line
}

func newSession() *session {
	return &session{cg: vm.NewCodeGen()}
}

// eval translates one VM line and returns its coloured assembly.
func (s *session) eval(line string) (string, error) {
	cmd, ok, err := vm.ParseLine(line)
	if err != nil || !ok {
		return "", err
	}
	code, err := s.cg.Generate(cmd)
	if err != nil {
		return "", err
	}
	s.lines = append(s.lines, code...)
	return colorize(code), nil
}

// command handles a ':' meta command. exit reports whether to leave the REPL.
func (s *session) command(line string) (out string, exit bool, err error) {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":quit", ":q":
		return "", true, nil
	case ":file":
		if len(fields) != 2 {
			return "", false, fmt.Errorf("usage: :file <Name>")
		}
		if !vm.IsName(fields[1]) {
			return "", false, fmt.Errorf("%w: %s", vm.ErrInvalidName, fields[1])
		}
		s.cg.SetFile(fields[1])
		return "file is now " + fields[1], false, nil
	case ":asm":
		return colorize(s.lines), false, nil
	case ":symbols":
		a := asm.NewAssembler()
		if _, _, err := a.AssembleLines(s.program()); err != nil {
			return "", false, err
		}
		return a.Symbols().String(), false, nil
	case ":run":
		out, err := s.run()
		return out, false, err
	case ":reset":
		*s = *newSession()
		return "cleared", false, nil
	default:
		return "", false, fmt.Errorf("unknown command %s. Try :file :asm :symbols :run :reset :quit", fields[0])
	}
}

// program is the typed code followed by a halt loop.
func (s *session) program() []isa.Line {
	prog := append([]isa.Line(nil), s.lines...)
	return append(prog, isa.L("REPL_END"), isa.At("REPL_END"), isa.C("", "0", "JMP"))
}

// run executes the session on a fresh machine and shows the stack.
func (s *session) run() (string, error) {
	words, _, err := asm.AssembleLines(s.program())
	if err != nil {
		return "", err
	}
	c := cpu.NewCPU()
	if err := c.Load(words); err != nil {
		return "", err
	}
	for addr, v := range seedRAM {
		c.RAM[addr] = v
	}
	if err := c.Run(runLimit); err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d cycles, SP=%d\n", c.Cycles, c.RAM[0])
	for addr := int(seedRAM[0]); addr < int(c.RAM[0]) && addr < cpu.ScreenBase; addr++ {
		fmt.Fprintf(&sb, "  [%d] %d\n", addr, int16(c.RAM[addr]))
	}
	return strings.TrimSuffix(sb.String(), "\n"), nil
}

func colorize(lines []isa.Line) string {
	var sb strings.Builder
	for _, l := range lines {
		switch l.Kind {
		case isa.Comment:
			sb.WriteString(aurora.Green(l.String()).String())
		case isa.Label:
			sb.WriteString(aurora.Magenta(l.String()).String())
		case isa.Address:
			sb.WriteString(aurora.Blue(l.String()).String())
		default:
			sb.WriteString(aurora.Brown(l.String()).String())
		}
		sb.WriteByte('\n')
	}
	return strings.TrimSuffix(sb.String(), "\n")
}
