package vm

import (
	"fmt"
	"strconv"

	"hackvm/pkg/isa"
)

// CodeGen lowers VM commands to Hack assembly records. One instance is shared
// by every file of a program so that generated labels stay unique.
//
// Sequences use R13 and R14 as scratch registers. A CodeGen is not safe for
// concurrent use.
type CodeGen struct {
	file        string
	nextCompare int
	nextReturn  int
	out         []isa.Line
}

// NewCodeGen returns a generator whose current file is "Main".
func NewCodeGen() *CodeGen {
	return &CodeGen{file: "Main"}
}

// SetFile sets the base name used to qualify statics and labels.
func (cg *CodeGen) SetFile(base string) {
	cg.file = base
}

// File is the base name set by SetFile.
func (cg *CodeGen) File() string {
	return cg.file
}

func (cg *CodeGen) emit(lines ...isa.Line) {
	cg.out = append(cg.out, lines...)
}

// Generate returns the assembly for cmd, preceded by a comment echoing it.
func (cg *CodeGen) Generate(cmd Command) ([]isa.Line, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	cg.out = nil
	cg.emit(isa.Note(cmd.String()))

	switch cmd.Kind {
	case Arithmetic:
		cg.genArithmetic(cmd.Op)
	case Push:
		cg.genPush(cmd.Segment, cmd.Index)
	case Pop:
		cg.genPop(cmd.Segment, cmd.Index)
	case Label:
		cg.emit(isa.L(cg.qualify(cmd.Name)))
	case Goto:
		cg.emit(isa.At(cg.qualify(cmd.Name)), isa.C("", "0", "JMP"))
	case IfGoto:
		cg.popD()
		cg.emit(isa.At(cg.qualify(cmd.Name)), isa.C("", "D", "JNE"))
	case Function:
		cg.genFunction(cmd.Name, cmd.N)
	case Call:
		cg.genCall(cmd.Name, cmd.N)
	case Return:
		cg.genReturn()
	}

	out := cg.out
	cg.out = nil
	return out, nil
}

func (cg *CodeGen) qualify(label string) string {
	return cg.file + "$" + label
}

func (cg *CodeGen) static(index int) string {
	return cg.file + "." + strconv.Itoa(index)
}

func (cg *CodeGen) newCompareLabels() (string, string) {
	n := cg.nextCompare
	cg.nextCompare++
	return fmt.Sprintf("CMP_TRUE_%d", n), fmt.Sprintf("CMP_END_%d", n)
}

func (cg *CodeGen) newReturnLabel() string {
	l := fmt.Sprintf("RETURN_ADDRESS_%d", cg.nextReturn)
	cg.nextReturn++
	return l
}

// pushD pushes D and advances SP.
func (cg *CodeGen) pushD() {
	cg.emit(
		isa.At("SP"),
		isa.C("A", "M", ""),
		isa.C("M", "D", ""),
		isa.At("SP"),
		isa.C("M", "M+1", ""),
	)
}

// popD pops the top of the stack into D.
func (cg *CodeGen) popD() {
	cg.emit(
		isa.At("SP"),
		isa.C("AM", "M-1", ""),
		isa.C("D", "M", ""),
	)
}

var binaryComp = map[string]string{
	"add": "D+M",
	"sub": "M-D",
	"and": "D&M",
	"or":  "D|M",
}

var unaryComp = map[string]string{
	"neg": "-M",
	"not": "!M",
}

var compareJump = map[string]string{
	"eq": "JEQ",
	"gt": "JGT",
	"lt": "JLT",
}

func (cg *CodeGen) genArithmetic(op string) {
	if comp, ok := unaryComp[op]; ok {
		cg.emit(isa.At("SP"), isa.C("A", "M-1", ""), isa.C("M", comp, ""))
		return
	}

	// D = y, A addresses x.
	cg.popD()
	cg.emit(isa.C("A", "A-1", ""))

	if comp, ok := binaryComp[op]; ok {
		cg.emit(isa.C("M", comp, ""))
		return
	}

	isTrue, end := cg.newCompareLabels()
	cg.emit(
		isa.C("D", "M-D", ""),
		isa.At(isTrue),
		isa.C("", "D", compareJump[op]),
		isa.At("SP"),
		isa.C("A", "M-1", ""),
		isa.C("M", "0", ""),
		isa.At(end),
		isa.C("", "0", "JMP"),
		isa.L(isTrue),
		isa.At("SP"),
		isa.C("A", "M-1", ""),
		isa.C("M", "-1", ""),
		isa.L(end),
	)
}

// directAddress returns the symbol or address of a segment that does not go
// through a base pointer.
func (cg *CodeGen) directAddress(segment string, index int) string {
	if segment == "static" {
		return cg.static(index)
	}
	return strconv.Itoa(fixedSegments[segment].base + index)
}

func (cg *CodeGen) genPush(segment string, index int) {
	switch {
	case segment == "constant":
		cg.emit(isa.AtInt(index), isa.C("D", "A", ""))
	case indirectSegments[segment] != "":
		cg.emit(
			isa.AtInt(index),
			isa.C("D", "A", ""),
			isa.At(indirectSegments[segment]),
			isa.C("A", "D+M", ""),
			isa.C("D", "M", ""),
		)
	default:
		cg.emit(isa.At(cg.directAddress(segment, index)), isa.C("D", "M", ""))
	}
	cg.pushD()
}

func (cg *CodeGen) genPop(segment string, index int) {
	base, indirect := indirectSegments[segment]
	if !indirect {
		cg.popD()
		cg.emit(isa.At(cg.directAddress(segment, index)), isa.C("M", "D", ""))
		return
	}

	// The target address is staged in R13 while the value is popped.
	cg.emit(
		isa.AtInt(index),
		isa.C("D", "A", ""),
		isa.At(base),
		isa.C("D", "D+M", ""),
		isa.At("R13"),
		isa.C("M", "D", ""),
	)
	cg.popD()
	cg.emit(
		isa.At("R13"),
		isa.C("A", "M", ""),
		isa.C("M", "D", ""),
	)
}

func (cg *CodeGen) genFunction(name string, locals int) {
	cg.emit(isa.L(name))
	if locals == 0 {
		return
	}
	cg.emit(isa.At("SP"), isa.C("A", "M", ""))
	for i := 0; i < locals; i++ {
		cg.emit(isa.C("M", "0", ""), isa.C("A", "A+1", ""))
	}
	cg.emit(isa.C("D", "A", ""), isa.At("SP"), isa.C("M", "D", ""))
}

func (cg *CodeGen) genCall(name string, args int) {
	ret := cg.newReturnLabel()

	cg.emit(isa.At(ret), isa.C("D", "A", ""))
	cg.pushD()
	for _, reg := range []string{"LCL", "ARG", "THIS", "THAT"} {
		cg.emit(isa.At(reg), isa.C("D", "M", ""))
		cg.pushD()
	}

	cg.emit(
		// ARG = SP - args - 5
		isa.At("SP"),
		isa.C("D", "M", ""),
		isa.AtInt(args+5),
		isa.C("D", "D-A", ""),
		isa.At("ARG"),
		isa.C("M", "D", ""),
		// LCL = SP
		isa.At("SP"),
		isa.C("D", "M", ""),
		isa.At("LCL"),
		isa.C("M", "D", ""),
		isa.At(name),
		isa.C("", "0", "JMP"),
		isa.L(ret),
	)
}

func (cg *CodeGen) genReturn() {
	cg.emit(
		// R13 = frame
		isa.At("LCL"),
		isa.C("D", "M", ""),
		isa.At("R13"),
		isa.C("M", "D", ""),
		// R14 = return address, read before *ARG can overwrite it
		isa.AtInt(5),
		isa.C("A", "D-A", ""),
		isa.C("D", "M", ""),
		isa.At("R14"),
		isa.C("M", "D", ""),
	)
	cg.popD()
	cg.emit(
		isa.At("ARG"),
		isa.C("A", "M", ""),
		isa.C("M", "D", ""),
		isa.At("ARG"),
		isa.C("D", "M+1", ""),
		isa.At("SP"),
		isa.C("M", "D", ""),
	)
	for _, reg := range []string{"THAT", "THIS", "ARG", "LCL"} {
		cg.emit(
			isa.At("R13"),
			isa.C("AM", "M-1", ""),
			isa.C("D", "M", ""),
			isa.At(reg),
			isa.C("M", "D", ""),
		)
	}
	cg.emit(isa.At("R14"), isa.C("A", "M", ""), isa.C("", "0", "JMP"))
}
