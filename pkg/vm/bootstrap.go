package vm

import (
	"fmt"

	"hackvm/pkg/isa"
)

const (
	DefaultStackBase = 256
	DefaultEntry     = "Sys.init"
)

// Options control how a program is translated.
type Options struct {
	// Bootstrap prepends stack setup and a call to Entry.
	Bootstrap bool
	Entry     string
	StackBase int
}

// DefaultOptions bootstraps into Sys.init with the stack at 256.
func DefaultOptions() Options {
	return Options{
		Bootstrap: true,
		Entry:     DefaultEntry,
		StackBase: DefaultStackBase,
	}
}

// Bootstrap returns the program prefix: SP = 256, then call entry with no
// arguments.
func (cg *CodeGen) Bootstrap(entry string) ([]isa.Line, error) {
	return cg.bootstrapAt(DefaultStackBase, entry)
}

func (cg *CodeGen) bootstrapAt(stackBase int, entry string) ([]isa.Line, error) {
	out := []isa.Line{
		isa.Note("bootstrap"),
		isa.AtInt(stackBase),
		isa.C("D", "A", ""),
		isa.At("SP"),
		isa.C("M", "D", ""),
	}
	call, err := cg.Generate(Command{Kind: Call, Name: entry})
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	return append(out, call...), nil
}
