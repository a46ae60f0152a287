package vm

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle"
	"github.com/alecthomas/participle/lexer"
)

// LexerRegex tokenises a single VM source line. Whitespace and comments are
// matched by the unnamed groups and dropped.
const LexerRegex = `(\s+)|` +
	`(//[^\n]*)|` +
	`(?P<Keyword>if-goto)|` +
	`(?P<Int>\d+)|` +
	`(?P<Ident>[A-Za-z_.$:][A-Za-z0-9_.$:]*)|` +
	`(?P<Invalid>\S)`

type vmLine struct {
	Pos lexer.Position

	Arithmetic *string       `  @("add"|"sub"|"neg"|"eq"|"gt"|"lt"|"and"|"or"|"not")`
	Push       *memoryAccess `| "push" @@`
	Pop        *memoryAccess `| "pop" @@`
	Label      *string       `| "label" @Ident`
	Goto       *string       `| "goto" @Ident`
	IfGoto     *string       `| "if-goto" @Ident`
	Function   *routine      `| "function" @@`
	Call       *routine      `| "call" @@`
	Return     bool          `| @"return"`
}

type memoryAccess struct {
	Segment string `@Ident`
	Index   int    `@Int`
}

type routine struct {
	Name string `@Ident`
	N    int    `@Int`
}

var lineParser = participle.MustBuild(
	&vmLine{},
	participle.Lexer(lexer.Must(lexer.Regexp(LexerRegex))),
	participle.UseLookahead(2))

// commandWords are the first words of every valid command.
var commandWords = map[string]bool{
	"push": true, "pop": true,
	"label": true, "goto": true, "if-goto": true,
	"function": true, "call": true, "return": true,
}

// Parse reads VM source text. file names the unit in error messages.
func Parse(file, src string) ([]Command, error) {
	var cmds []Command
	for i, raw := range strings.Split(src, "\n") {
		cmd, ok, err := ParseLine(raw)
		if err != nil {
			return nil, &SyntaxError{File: file, Line: i + 1, Text: strings.TrimSpace(raw), Err: err}
		}
		if !ok {
			continue
		}
		cmd.Line = i + 1
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}

// ParseLine parses one line of VM source. ok is false for blank and
// comment-only lines.
func ParseLine(raw string) (cmd Command, ok bool, err error) {
	text := strings.TrimSpace(stripComment(raw))
	if text == "" {
		return cmd, false, nil
	}
	cmd.Text = text

	word := strings.Fields(text)[0]
	if !commandWords[word] && !arithmeticOps[word] {
		return cmd, false, fmt.Errorf("%w '%s'", ErrUnknownCommand, word)
	}

	var l vmLine
	if err := lineParser.ParseString(text, &l); err != nil {
		return cmd, false, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	switch {
	case l.Arithmetic != nil:
		cmd.Kind, cmd.Op = Arithmetic, *l.Arithmetic
	case l.Push != nil:
		cmd.Kind, cmd.Segment, cmd.Index = Push, l.Push.Segment, l.Push.Index
	case l.Pop != nil:
		cmd.Kind, cmd.Segment, cmd.Index = Pop, l.Pop.Segment, l.Pop.Index
	case l.Label != nil:
		cmd.Kind, cmd.Name = Label, *l.Label
	case l.Goto != nil:
		cmd.Kind, cmd.Name = Goto, *l.Goto
	case l.IfGoto != nil:
		cmd.Kind, cmd.Name = IfGoto, *l.IfGoto
	case l.Function != nil:
		cmd.Kind, cmd.Name, cmd.N = Function, l.Function.Name, l.Function.N
	case l.Call != nil:
		cmd.Kind, cmd.Name, cmd.N = Call, l.Call.Name, l.Call.N
	case l.Return:
		cmd.Kind = Return
	default:
		return cmd, false, fmt.Errorf("%w '%s'", ErrUnknownCommand, word)
	}

	if err := cmd.Validate(); err != nil {
		return cmd, false, err
	}
	return cmd, true, nil
}

func stripComment(line string) string {
	if cut := strings.Index(line, "//"); cut >= 0 {
		return line[:cut]
	}
	return line
}
