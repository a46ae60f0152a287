// Package cpu simulates the Hack computer: a 32K-word instruction ROM, a
// 32K-word data RAM with the screen and keyboard mapped into it, and the A,
// D and PC registers.
package cpu

import (
	"errors"
	"fmt"

	"hackvm/pkg/isa"
)

const (
	ROMSize = 1 << 15
	RAMSize = 1 << 15

	ScreenBase   = 0x4000
	ScreenWords  = 8192
	KeyboardAddr = 0x6000

	ScreenWidth  = 512
	ScreenHeight = 256
	WordsPerRow  = ScreenWidth / 16
)

var (
	ErrProgramTooLarge = errors.New("program does not fit in ROM")
	ErrCycleLimit      = errors.New("cycle limit reached")
)

// ALU control bits, c1..c6 of a compute instruction.
const (
	zx = 1 << 5
	nx = 1 << 4
	zy = 1 << 3
	ny = 1 << 2
	fn = 1 << 1
	no = 1 << 0
)

type CPU struct {
	A  uint16
	D  uint16
	PC uint16

	RAM [RAMSize]uint16
	ROM []uint16

	// Halted is set when the program parks itself in an (END) @END 0;JMP
	// loop or runs off the end of ROM.
	Halted bool

	Cycles uint64

	// Trace, when set, is called before each instruction executes.
	Trace func(pc, instr uint16)
}

func NewCPU() *CPU {
	return &CPU{}
}

// Load replaces ROM with program and resets the registers. RAM is kept.
func (c *CPU) Load(program []uint16) error {
	if len(program) > ROMSize {
		return fmt.Errorf("%w: %d words", ErrProgramTooLarge, len(program))
	}
	c.ROM = append(c.ROM[:0], program...)
	c.Reset()
	return nil
}

func (c *CPU) Reset() {
	c.A, c.D, c.PC = 0, 0, 0
	c.Halted = false
	c.Cycles = 0
}

func (c *CPU) ReadMem(addr uint16) uint16 {
	return c.RAM[addr&(RAMSize-1)]
}

func (c *CPU) WriteMem(addr uint16, val uint16) {
	c.RAM[addr&(RAMSize-1)] = val
}

// M is the RAM word addressed by A.
func (c *CPU) M() uint16 {
	return c.ReadMem(c.A)
}

func (c *CPU) Step() {
	if c.Halted {
		return
	}
	if int(c.PC) >= len(c.ROM) {
		c.Halted = true
		return
	}

	instr := c.ROM[c.PC]
	if c.Trace != nil {
		c.Trace(c.PC, instr)
	}
	c.Cycles++

	if !isa.IsCompute(instr) {
		c.A = instr
		c.PC++
		return
	}

	comp, dest, jump := isa.Fields(instr)
	y := c.A
	if comp&0x40 != 0 {
		y = c.ReadMem(c.A)
	}
	out := ALU(c.D, y, comp&0x3F)

	// M and the jump target both use A as it was before this instruction.
	addr := c.A
	if dest&0b001 != 0 {
		c.WriteMem(addr, out)
	}
	if dest&0b100 != 0 {
		c.A = out
	}
	if dest&0b010 != 0 {
		c.D = out
	}

	if !jumps(out, jump) {
		c.PC++
		return
	}
	if jump == 0b111 && c.isParked(addr) {
		c.PC = addr
		c.Halted = true
		return
	}
	c.PC = addr
}

// isParked reports whether jumping to target re-enters the @target 0;JMP
// pair that is executing now.
func (c *CPU) isParked(target uint16) bool {
	return c.PC > 0 && target == c.PC-1 && c.ROM[target] == target
}

// ALU computes a Hack computation on x (D) and y (A or M) under the six
// control bits zx nx zy ny f no.
func ALU(x, y uint16, ctrl uint16) uint16 {
	if ctrl&zx != 0 {
		x = 0
	}
	if ctrl&nx != 0 {
		x = ^x
	}
	if ctrl&zy != 0 {
		y = 0
	}
	if ctrl&ny != 0 {
		y = ^y
	}
	var out uint16
	if ctrl&fn != 0 {
		out = x + y
	} else {
		out = x & y
	}
	if ctrl&no != 0 {
		out = ^out
	}
	return out
}

func jumps(out uint16, jump uint16) bool {
	v := int16(out)
	return (jump&0b100 != 0 && v < 0) ||
		(jump&0b010 != 0 && v == 0) ||
		(jump&0b001 != 0 && v > 0)
}

// Run executes until the program halts or maxCycles instructions have run.
// A non-positive maxCycles means no limit.
func (c *CPU) Run(maxCycles int) error {
	for i := 0; !c.Halted; i++ {
		if maxCycles > 0 && i >= maxCycles {
			return fmt.Errorf("%w after %d cycles (pc=%d)", ErrCycleLimit, maxCycles, c.PC)
		}
		c.Step()
	}
	return nil
}

func (c *CPU) RunUntilDone() {
	for !c.Halted {
		c.Step()
	}
}
