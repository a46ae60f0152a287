package vm

import (
	"errors"
	"reflect"
	"testing"

	"github.com/davecgh/go-spew/spew"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		line string
		want Command
	}{
		{"add", Command{Kind: Arithmetic, Op: "add"}},
		{"  not  ", Command{Kind: Arithmetic, Op: "not"}},
		{"push constant 7", Command{Kind: Push, Segment: "constant", Index: 7}},
		{"pop local 0 // store", Command{Kind: Pop, Segment: "local", Index: 0}},
		{"push static 12", Command{Kind: Push, Segment: "static", Index: 12}},
		{"pop pointer 1", Command{Kind: Pop, Segment: "pointer", Index: 1}},
		{"push temp 7", Command{Kind: Push, Segment: "temp", Index: 7}},
		{"label LOOP_START", Command{Kind: Label, Name: "LOOP_START"}},
		{"goto END", Command{Kind: Goto, Name: "END"}},
		{"if-goto COMPUTE_ELEMENT", Command{Kind: IfGoto, Name: "COMPUTE_ELEMENT"}},
		{"function Main.fibonacci 2", Command{Kind: Function, Name: "Main.fibonacci", N: 2}},
		{"call Math.multiply 2", Command{Kind: Call, Name: "Math.multiply", N: 2}},
		{"return", Command{Kind: Return}},
	}

	for _, tc := range tests {
		got, ok, err := ParseLine(tc.line)
		if err != nil || !ok {
			t.Errorf("ParseLine(%q) = ok %v, err %v", tc.line, ok, err)
			continue
		}
		got.Text = ""
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("ParseLine(%q) =\n%swant\n%s", tc.line, spew.Sdump(got), spew.Sdump(tc.want))
		}
	}
}

func TestParseLineSkips(t *testing.T) {
	for _, line := range []string{"", "   ", "// comment only", "\t// indented"} {
		if _, ok, err := ParseLine(line); ok || err != nil {
			t.Errorf("ParseLine(%q) = ok %v, err %v; want skip", line, ok, err)
		}
	}
}

func TestParseLineErrors(t *testing.T) {
	tests := []struct {
		line string
		want error
	}{
		{"mul", ErrUnknownCommand},
		{"Push constant 1", ErrUnknownCommand},
		{"jump END", ErrUnknownCommand},
		{"push heap 3", ErrUnknownSegment},
		{"pop constant 3", ErrPopConstant},
		{"push temp 8", ErrIndexRange},
		{"pop pointer 2", ErrIndexRange},
		{"push constant 32768", ErrIndexRange},
		{"push constant", ErrMalformed},
		{"push constant -1", ErrMalformed},
		{"add 5", ErrMalformed},
		{"function Main.main", ErrMalformed},
		{"label 1BAD", ErrMalformed},
	}

	for _, tc := range tests {
		_, _, err := ParseLine(tc.line)
		if !errors.Is(err, tc.want) {
			t.Errorf("ParseLine(%q) error = %v; want %v", tc.line, err, tc.want)
		}
	}
}

func TestParse(t *testing.T) {
	src := `// Adds two numbers
push constant 7
push constant 8

add // sum
`
	cmds, err := Parse("SimpleAdd", src)
	if err != nil {
		t.Fatal(err)
	}
	if len(cmds) != 3 {
		t.Fatalf("got %d commands: %s", len(cmds), spew.Sdump(cmds))
	}
	lines := []int{cmds[0].Line, cmds[1].Line, cmds[2].Line}
	if !reflect.DeepEqual(lines, []int{2, 3, 5}) {
		t.Errorf("lines = %v; want [2 3 5]", lines)
	}
	if cmds[2].Text != "add" {
		t.Errorf("Text = %q; want %q", cmds[2].Text, "add")
	}
}

func TestParseErrorContext(t *testing.T) {
	_, err := Parse("Broken", "push constant 1\n  pop constant 0  \n")
	var se *SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("error %v is not a *SyntaxError", err)
	}
	if se.File != "Broken" || se.Line != 2 || se.Text != "pop constant 0" {
		t.Errorf("SyntaxError = %+v", se)
	}
	if !errors.Is(err, ErrPopConstant) {
		t.Errorf("error %v does not wrap ErrPopConstant", err)
	}
	if got := err.Error(); got != `Broken:2: cannot pop to constant: "pop constant 0"` {
		t.Errorf("Error() = %q", got)
	}
}

func TestCommandString(t *testing.T) {
	for _, line := range []string{
		"push argument 3",
		"pop that 0",
		"if-goto LOOP",
		"function Sys.init 0",
		"call Main.main 0",
		"return",
		"lt",
	} {
		cmd, _, err := ParseLine(line)
		if err != nil {
			t.Fatal(err)
		}
		if got := cmd.String(); got != line {
			t.Errorf("String() = %q; want %q", got, line)
		}
	}
}
