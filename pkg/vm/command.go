package vm

import (
	"errors"
	"fmt"
	"strconv"

	"hackvm/pkg/isa"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUnknownSegment = errors.New("unknown segment")
	ErrPopConstant    = errors.New("cannot pop to constant")
	ErrIndexRange     = errors.New("index out of range")
	ErrMalformed      = errors.New("malformed command")
	ErrInvalidName    = errors.New("invalid name")
)

// SyntaxError reports a command that could not be translated, with enough
// context to find it in the source.
type SyntaxError struct {
	File string
	Line int
	Text string
	Err  error
}

func (e *SyntaxError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("%s: %v", e.File, e.Err)
	}
	return fmt.Sprintf("%s:%d: %v: %q", e.File, e.Line, e.Err, e.Text)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

type CommandKind int

const (
	Arithmetic CommandKind = iota
	Push
	Pop
	Label
	Goto
	IfGoto
	Function
	Call
	Return
)

var kindNames = [...]string{
	Arithmetic: "arithmetic",
	Push:       "push",
	Pop:        "pop",
	Label:      "label",
	Goto:       "goto",
	IfGoto:     "if-goto",
	Function:   "function",
	Call:       "call",
	Return:     "return",
}

func (k CommandKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Command is one VM instruction.
type Command struct {
	Kind CommandKind

	Op string // arithmetic only

	Segment string
	Index   int

	Name string // label, goto, if-goto, function, call
	N    int    // locals for function, arguments for call

	Line int
	Text string
}

// String renders the command in VM source syntax.
func (c Command) String() string {
	switch c.Kind {
	case Arithmetic:
		return c.Op
	case Push, Pop:
		return fmt.Sprintf("%s %s %d", c.Kind, c.Segment, c.Index)
	case Label, Goto, IfGoto:
		return fmt.Sprintf("%s %s", c.Kind, c.Name)
	case Function, Call:
		return fmt.Sprintf("%s %s %d", c.Kind, c.Name, c.N)
	case Return:
		return "return"
	}
	return c.Kind.String()
}

var arithmeticOps = map[string]bool{
	"add": true, "sub": true, "neg": true,
	"eq": true, "gt": true, "lt": true,
	"and": true, "or": true, "not": true,
}

// indirectSegments are addressed through a base pointer register.
var indirectSegments = map[string]string{
	"local":    "LCL",
	"argument": "ARG",
	"this":     "THIS",
	"that":     "THAT",
}

// fixedSegments live at a fixed RAM base and have a fixed size.
var fixedSegments = map[string]struct{ base, size int }{
	"temp":    {5, 8},
	"pointer": {3, 2},
}

// Validate checks the command against the machine layout.
func (c Command) Validate() error {
	switch c.Kind {
	case Arithmetic:
		if !arithmeticOps[c.Op] {
			return fmt.Errorf("%w '%s'", ErrUnknownCommand, c.Op)
		}
	case Push, Pop:
		if c.Index < 0 || c.Index > isa.MaxAddress {
			return fmt.Errorf("%w: %s %d", ErrIndexRange, c.Segment, c.Index)
		}
		if seg, ok := fixedSegments[c.Segment]; ok {
			if c.Index >= seg.size {
				return fmt.Errorf("%w: %s %d (max %d)", ErrIndexRange, c.Segment, c.Index, seg.size-1)
			}
			return nil
		}
		switch {
		case c.Segment == "constant":
			if c.Kind == Pop {
				return ErrPopConstant
			}
		case c.Segment == "static":
		case indirectSegments[c.Segment] != "":
		default:
			return fmt.Errorf("%w '%s'", ErrUnknownSegment, c.Segment)
		}
	case Label, Goto, IfGoto, Function, Call:
		if c.Name == "" {
			return fmt.Errorf("%w: %s without a name", ErrMalformed, c.Kind)
		}
		if !IsName(c.Name) {
			return fmt.Errorf("%w '%s'", ErrInvalidName, c.Name)
		}
		if c.N < 0 {
			return fmt.Errorf("%w: %s %s %d", ErrIndexRange, c.Kind, c.Name, c.N)
		}
	case Return:
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCommand, c.Kind)
	}
	return nil
}

// IsName reports whether s can be used as an assembly symbol: letters,
// digits, '_', '.', '$' and ':', not starting with a digit.
func IsName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r == '_' || r == '.' || r == '$' || r == ':':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
