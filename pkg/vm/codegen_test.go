package vm

import (
	"errors"
	"strings"
	"testing"

	"hackvm/pkg/isa"
)

func assertContains(t *testing.T, code, expected string) {
	t.Helper()
	if !strings.Contains(code, expected) {
		t.Errorf("Expected code to contain %q, but it didn't.\nCode:\n%s", expected, code)
	}
}

func generate(t *testing.T, cg *CodeGen, lines ...string) string {
	t.Helper()
	var out []isa.Line
	for _, l := range lines {
		cmd, ok, err := ParseLine(l)
		if err != nil || !ok {
			t.Fatalf("ParseLine(%q): %v", l, err)
		}
		code, err := cg.Generate(cmd)
		if err != nil {
			t.Fatalf("Generate(%q): %v", l, err)
		}
		out = append(out, code...)
	}
	return isa.Render(out)
}

func TestGenerate_EchoesCommand(t *testing.T) {
	cg := NewCodeGen()
	lines, err := cg.Generate(Command{Kind: Push, Segment: "constant", Index: 7})
	if err != nil {
		t.Fatal(err)
	}
	if lines[0].Kind != isa.Comment || lines[0].Text != "push constant 7" {
		t.Errorf("first line = %v; want comment echo", lines[0])
	}
}

func TestGenerate_PushConstant(t *testing.T) {
	code := generate(t, NewCodeGen(), "push constant 7")
	assertContains(t, code, "@7\nD=A\n@SP\nA=M\nM=D\n@SP\nM=M+1\n")
}

func TestGenerate_Segments(t *testing.T) {
	cg := NewCodeGen()
	cg.SetFile("Foo")

	assertContains(t, generate(t, cg, "push local 2"), "@2\nD=A\n@LCL\nA=D+M\nD=M\n")
	assertContains(t, generate(t, cg, "push that 5"), "@THAT\nA=D+M\n")
	assertContains(t, generate(t, cg, "push temp 3"), "@8\nD=M\n")
	assertContains(t, generate(t, cg, "push pointer 1"), "@4\nD=M\n")
	assertContains(t, generate(t, cg, "push static 4"), "@Foo.4\nD=M\n")

	assertContains(t, generate(t, cg, "pop argument 1"), "@1\nD=A\n@ARG\nD=D+M\n@R13\nM=D\n@SP\nAM=M-1\nD=M\n@R13\nA=M\nM=D\n")
	assertContains(t, generate(t, cg, "pop temp 0"), "@SP\nAM=M-1\nD=M\n@5\nM=D\n")
	assertContains(t, generate(t, cg, "pop pointer 0"), "@3\nM=D\n")
	assertContains(t, generate(t, cg, "pop static 0"), "@Foo.0\nM=D\n")
}

func TestGenerate_Arithmetic(t *testing.T) {
	tests := []struct {
		op   string
		want string
	}{
		{"add", "@SP\nAM=M-1\nD=M\nA=A-1\nM=D+M\n"},
		{"sub", "A=A-1\nM=M-D\n"},
		{"and", "M=D&M\n"},
		{"or", "M=D|M\n"},
		{"neg", "@SP\nA=M-1\nM=-M\n"},
		{"not", "@SP\nA=M-1\nM=!M\n"},
	}
	for _, tc := range tests {
		assertContains(t, generate(t, NewCodeGen(), tc.op), tc.want)
	}
}

func TestGenerate_ComparisonLabelsAreUnique(t *testing.T) {
	cg := NewCodeGen()
	code := generate(t, cg, "eq", "gt", "lt")

	assertContains(t, code, "D=M-D\n@CMP_TRUE_0\nD;JEQ\n")
	assertContains(t, code, "@CMP_TRUE_1\nD;JGT\n")
	assertContains(t, code, "@CMP_TRUE_2\nD;JLT\n")
	for _, l := range []string{"(CMP_TRUE_0)", "(CMP_END_0)", "(CMP_TRUE_2)", "(CMP_END_2)"} {
		if strings.Count(code, l) != 1 {
			t.Errorf("label %s defined %d times", l, strings.Count(code, l))
		}
	}

	// Counters keep running after a file switch.
	cg.SetFile("Other")
	assertContains(t, generate(t, cg, "eq"), "(CMP_TRUE_3)")
}

func TestGenerate_Branching(t *testing.T) {
	cg := NewCodeGen()
	cg.SetFile("Main")
	code := generate(t, cg, "label LOOP", "goto LOOP", "if-goto LOOP")

	assertContains(t, code, "(Main$LOOP)\n")
	assertContains(t, code, "@Main$LOOP\n0;JMP\n")
	assertContains(t, code, "@SP\nAM=M-1\nD=M\n@Main$LOOP\nD;JNE\n")
}

func TestGenerate_Function(t *testing.T) {
	code := generate(t, NewCodeGen(), "function Main.f 2")
	assertContains(t, code, "(Main.f)\n@SP\nA=M\nM=0\nA=A+1\nM=0\nA=A+1\nD=A\n@SP\nM=D\n")

	code = generate(t, NewCodeGen(), "function Main.g 0")
	if strings.Contains(code, "M=0") {
		t.Errorf("function with no locals should not clear slots:\n%s", code)
	}
}

func TestGenerate_Call(t *testing.T) {
	cg := NewCodeGen()
	code := generate(t, cg, "call Math.multiply 2", "call Math.multiply 2")

	assertContains(t, code, "@RETURN_ADDRESS_0\nD=A\n")
	assertContains(t, code, "@SP\nD=M\n@7\nD=D-A\n@ARG\nM=D\n")
	assertContains(t, code, "@SP\nD=M\n@LCL\nM=D\n@Math.multiply\n0;JMP\n(RETURN_ADDRESS_0)\n")
	assertContains(t, code, "(RETURN_ADDRESS_1)\n")

	// Saved registers go in standard order.
	iLCL := strings.Index(code, "@LCL\nD=M")
	iARG := strings.Index(code, "@ARG\nD=M")
	iTHIS := strings.Index(code, "@THIS\nD=M")
	iTHAT := strings.Index(code, "@THAT\nD=M")
	if !(iLCL < iARG && iARG < iTHIS && iTHIS < iTHAT) {
		t.Errorf("push order LCL=%d ARG=%d THIS=%d THAT=%d", iLCL, iARG, iTHIS, iTHAT)
	}
}

func TestGenerate_Return(t *testing.T) {
	code := generate(t, NewCodeGen(), "return")

	assertContains(t, code, "@LCL\nD=M\n@R13\nM=D\n@5\nA=D-A\nD=M\n@R14\nM=D\n")
	assertContains(t, code, "@ARG\nA=M\nM=D\n@ARG\nD=M+1\n@SP\nM=D\n")
	assertContains(t, code, "@R13\nAM=M-1\nD=M\n@THAT\nM=D\n@R13\nAM=M-1\nD=M\n@THIS\nM=D\n")
	assertContains(t, code, "@R14\nA=M\n0;JMP\n")

	// The return address is saved before *ARG is written.
	if strings.Index(code, "@R14\nM=D") > strings.Index(code, "@ARG\nA=M\nM=D") {
		t.Error("return address must be saved before *ARG is written")
	}
}

func TestGenerate_RejectsInvalid(t *testing.T) {
	cg := NewCodeGen()
	tests := []struct {
		cmd  Command
		want error
	}{
		{Command{Kind: Pop, Segment: "constant", Index: 1}, ErrPopConstant},
		{Command{Kind: Push, Segment: "stack", Index: 1}, ErrUnknownSegment},
		{Command{Kind: Push, Segment: "local", Index: -1}, ErrIndexRange},
		{Command{Kind: Arithmetic, Op: "mul"}, ErrUnknownCommand},
		{Command{Kind: CommandKind(42)}, ErrUnknownCommand},
		{Command{Kind: Call, Name: "2fast"}, ErrInvalidName},
		{Command{Kind: Goto, Name: "my-loop"}, ErrInvalidName},
	}
	for _, tc := range tests {
		if _, err := cg.Generate(tc.cmd); !errors.Is(err, tc.want) {
			t.Errorf("Generate(%+v) error = %v; want %v", tc.cmd, err, tc.want)
		}
	}
}

func TestBootstrap(t *testing.T) {
	cg := NewCodeGen()
	boot, err := cg.Bootstrap("Sys.init")
	if err != nil {
		t.Fatal(err)
	}
	code := isa.Render(boot)

	if !strings.HasPrefix(code, "// bootstrap\n@256\nD=A\n@SP\nM=D\n// call Sys.init 0\n@RETURN_ADDRESS_0\n") {
		t.Errorf("unexpected bootstrap prefix:\n%s", code)
	}
	assertContains(t, code, "@5\nD=D-A\n@ARG\nM=D\n")
	assertContains(t, code, "@Sys.init\n0;JMP\n")
}

func TestBootstrapRejectsBadEntry(t *testing.T) {
	for _, entry := range []string{"", "9lives", "Sys init"} {
		lines, err := NewCodeGen().Bootstrap(entry)
		if err == nil {
			t.Errorf("Bootstrap(%q) = %d lines, nil error; want error", entry, len(lines))
		}
		if lines != nil {
			t.Errorf("Bootstrap(%q) returned a partial prefix", entry)
		}
	}
}

func TestIsName(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"Main", true},
		{"Sys.init", true},
		{"Foo$bar_1:x", true},
		{"", false},
		{"2fast", false},
		{"my-prog", false},
		{"a b", false},
	}
	for _, tc := range tests {
		if got := IsName(tc.in); got != tc.want {
			t.Errorf("IsName(%q) = %v; want %v", tc.in, got, tc.want)
		}
	}
}
