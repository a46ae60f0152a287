// Package asm is a two-pass assembler for Hack assembly. Pass one records
// the instruction address of every label; pass two encodes each instruction
// into a 16-bit word, allocating variables as they are first referenced.
package asm

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"hackvm/pkg/isa"
)

var ErrInvalidLabel = errors.New("invalid symbol")

// ErrAddressRange is returned for address literals that do not fit in 15 bits.
var ErrAddressRange = isa.ErrAddressRange

type Assembler struct {
	labels  *SymbolTable // pass one, read-only afterwards
	symbols *SymbolTable // pass two
}

func NewAssembler() *Assembler {
	return &Assembler{}
}

// Assemble assembles source text. The returned map takes a word index to the
// 1-based source line it came from.
func Assemble(code string) ([]uint16, map[int]int, error) {
	return NewAssembler().Assemble(code)
}

// AssembleLines assembles records produced by a code generator.
func AssembleLines(lines []isa.Line) ([]uint16, map[int]int, error) {
	return NewAssembler().AssembleLines(lines)
}

func (a *Assembler) Assemble(code string) ([]uint16, map[int]int, error) {
	raw := strings.Split(code, "\n")
	lines := make([]isa.Line, 0, len(raw))
	for i, text := range raw {
		lineNo := i + 1
		l, ok, err := parseLine(text, lineNo)
		if err != nil {
			return nil, nil, err
		}
		if ok {
			lines = append(lines, l)
		}
	}
	return a.assemble(lines)
}

func (a *Assembler) AssembleLines(lines []isa.Line) ([]uint16, map[int]int, error) {
	numbered := make([]isa.Line, 0, len(lines))
	for i, l := range lines {
		if l.Kind == isa.Comment {
			continue
		}
		if l.SourceLine == 0 {
			l.SourceLine = i + 1
		}
		numbered = append(numbered, l)
	}
	return a.assemble(numbered)
}

// Symbols returns the table built by the last successful run.
func (a *Assembler) Symbols() *SymbolTable {
	return a.symbols
}

func (a *Assembler) assemble(lines []isa.Line) ([]uint16, map[int]int, error) {
	if err := a.pass1(lines); err != nil {
		return nil, nil, err
	}
	return a.pass2(lines)
}

func (a *Assembler) pass1(lines []isa.Line) error {
	a.labels = NewSymbolTable()
	address := 0

	for _, l := range lines {
		switch l.Kind {
		case isa.Label:
			if !isIdentifier(l.Symbol) {
				return fmt.Errorf("%w '%s' on line %d", ErrInvalidLabel, l.Symbol, l.SourceLine)
			}
			if address > isa.MaxAddress {
				return fmt.Errorf("label '%s' on line %d points past instruction memory", l.Symbol, l.SourceLine)
			}
			if err := a.labels.Define(l.Symbol, address); err != nil {
				return fmt.Errorf("%w on line %d", err, l.SourceLine)
			}
		case isa.Address, isa.Compute:
			address++
		}
	}
	return nil
}

func (a *Assembler) pass2(lines []isa.Line) ([]uint16, map[int]int, error) {
	symbols := a.labels.Clone()
	program := make([]uint16, 0, len(lines))
	sourceMap := make(map[int]int)

	for _, l := range lines {
		var word uint16
		var err error

		switch l.Kind {
		case isa.Address:
			word, err = encodeAddress(l.Symbol, symbols)
		case isa.Compute:
			word, err = isa.EncodeC(l.Dest, l.Comp, l.Jump)
		default:
			continue
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%w on line %d", err, l.SourceLine)
		}

		sourceMap[len(program)] = l.SourceLine
		program = append(program, word)
	}

	a.symbols = symbols
	return program, sourceMap, nil
}

func encodeAddress(operand string, symbols *SymbolTable) (uint16, error) {
	if operand == "" {
		return 0, fmt.Errorf("%w: empty address", ErrInvalidLabel)
	}
	if unicode.IsDigit(rune(operand[0])) {
		v, err := strconv.Atoi(operand)
		if err != nil {
			return 0, fmt.Errorf("%w '%s'", ErrInvalidLabel, operand)
		}
		return isa.EncodeA(v)
	}
	if !isIdentifier(operand) {
		return 0, fmt.Errorf("%w '%s'", ErrInvalidLabel, operand)
	}
	addr, err := symbols.Resolve(operand)
	if err != nil {
		return 0, err
	}
	return isa.EncodeA(addr)
}

// parseLine turns one line of source text into a record. ok is false for
// lines holding nothing but whitespace and comments.
func parseLine(raw string, lineNo int) (l isa.Line, ok bool, err error) {
	line := removeWhitespace(stripComments(raw))
	if line == "" {
		return l, false, nil
	}
	l.SourceLine = lineNo

	switch {
	case line[0] == '(':
		if len(line) < 3 || line[len(line)-1] != ')' {
			return l, false, fmt.Errorf("%w '%s' on line %d", ErrInvalidLabel, line, lineNo)
		}
		l.Kind = isa.Label
		l.Symbol = line[1 : len(line)-1]
	case line[0] == '@':
		l.Kind = isa.Address
		l.Symbol = line[1:]
	default:
		l.Kind = isa.Compute
		rest := line
		if eq := strings.IndexByte(rest, '='); eq >= 0 {
			l.Dest, rest = rest[:eq], rest[eq+1:]
			if l.Dest == "" {
				return l, false, fmt.Errorf("%w '' on line %d", isa.ErrUnknownDest, lineNo)
			}
		}
		if semi := strings.IndexByte(rest, ';'); semi >= 0 {
			l.Jump = rest[semi+1:]
			rest = rest[:semi]
			if l.Jump == "" {
				return l, false, fmt.Errorf("%w '' on line %d", isa.ErrUnknownJump, lineNo)
			}
		}
		l.Comp = rest
	}
	return l, true, nil
}

func stripComments(line string) string {
	if cut := strings.Index(line, "//"); cut >= 0 {
		return line[:cut]
	}
	return line
}

func removeWhitespace(line string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, line)
}

// isIdentifier reports whether s is a legal symbol: letters, digits and
// _ . $ :, not starting with a digit.
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '.' || r == '$' || r == ':':
		case unicode.IsLetter(r):
		case unicode.IsDigit(r) && i > 0:
		default:
			return false
		}
	}
	return true
}
