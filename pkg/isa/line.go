package isa

import (
	"strconv"
	"strings"
)

// Kind classifies an assembly line.
type Kind int

const (
	Address Kind = iota
	Compute
	Label
	Comment
)

func (k Kind) String() string {
	switch k {
	case Address:
		return "address"
	case Compute:
		return "compute"
	case Label:
		return "label"
	case Comment:
		return "comment"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Line is one typed assembly record. Code generators build slices of these
// and only turn them into text with Render.
type Line struct {
	Kind Kind

	// Symbol is the operand of an address instruction (a decimal literal
	// or a symbol) or the name of a label.
	Symbol string

	Dest string
	Comp string
	Jump string

	// Text holds the comment body.
	Text string

	// SourceLine is the 1-based line the record was read from, if any.
	SourceLine int
}

// At builds an address instruction loading a symbol or literal.
func At(symbol string) Line {
	return Line{Kind: Address, Symbol: symbol}
}

// AtInt builds an address instruction loading a literal.
func AtInt(value int) Line {
	return Line{Kind: Address, Symbol: strconv.Itoa(value)}
}

// C builds a compute instruction.
func C(dest, comp, jump string) Line {
	return Line{Kind: Compute, Dest: dest, Comp: comp, Jump: jump}
}

// L builds a label definition.
func L(name string) Line {
	return Line{Kind: Label, Symbol: name}
}

// Note builds a comment line.
func Note(text string) Line {
	return Line{Kind: Comment, Text: text}
}

func (l Line) String() string {
	switch l.Kind {
	case Address:
		return "@" + l.Symbol
	case Label:
		return "(" + l.Symbol + ")"
	case Comment:
		return "// " + l.Text
	}

	var sb strings.Builder
	if l.Dest != "" {
		sb.WriteString(l.Dest)
		sb.WriteByte('=')
	}
	sb.WriteString(l.Comp)
	if l.Jump != "" {
		sb.WriteByte(';')
		sb.WriteString(l.Jump)
	}
	return sb.String()
}

// Render produces assembly source text, one record per line.
func Render(lines []Line) string {
	var sb strings.Builder
	for _, l := range lines {
		sb.WriteString(l.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
