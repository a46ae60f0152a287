package vm

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"hackvm/pkg/asm"
	"hackvm/pkg/isa"
	"hackvm/pkg/utils"
)

// Source is one translation unit. Name is the file base name without the
// .vm extension.
type Source struct {
	Name string
	Text string
}

// Result holds every stage of a compiled program.
type Result struct {
	Lines     []isa.Line
	Assembly  string
	Words     []uint16
	SourceMap map[int]int // word index → line of Assembly
	Symbols   *asm.SymbolTable
}

// Translate lowers sources, in order, to assembly records. All sources share
// one CodeGen.
func Translate(sources []Source, opts Options) ([]isa.Line, error) {
	cg := NewCodeGen()
	var out []isa.Line

	if opts.Bootstrap {
		entry, base := opts.Entry, opts.StackBase
		if entry == "" {
			entry = DefaultEntry
		}
		if base == 0 {
			base = DefaultStackBase
		}
		boot, err := cg.bootstrapAt(base, entry)
		if err != nil {
			return nil, err
		}
		out = append(out, boot...)
	}

	for _, src := range sources {
		if !IsName(src.Name) {
			return nil, &SyntaxError{File: src.Name, Err: fmt.Errorf("%w: file name '%s' cannot qualify labels and statics", ErrInvalidName, src.Name)}
		}
		cmds, err := Parse(src.Name, src.Text)
		if err != nil {
			return nil, err
		}
		cg.SetFile(src.Name)
		for _, cmd := range cmds {
			lines, err := cg.Generate(cmd)
			if err != nil {
				return nil, &SyntaxError{File: src.Name, Line: cmd.Line, Text: cmd.Text, Err: err}
			}
			out = append(out, lines...)
		}
	}
	return out, nil
}

// Compile translates and assembles sources.
func Compile(sources []Source, opts Options) (*Result, error) {
	lines, err := Translate(sources, opts)
	if err != nil {
		return nil, err
	}

	a := asm.NewAssembler()
	words, sourceMap, err := a.AssembleLines(lines)
	if err != nil {
		return nil, fmt.Errorf("assembly error: %w", err)
	}

	return &Result{
		Lines:     lines,
		Assembly:  isa.Render(lines),
		Words:     words,
		SourceMap: sourceMap,
		Symbols:   a.Symbols(),
	}, nil
}

// CompilePath compiles a single .vm file, or every .vm file in a directory.
// Only directories get the bootstrap prefix.
func CompilePath(path string) (*Result, error) {
	files, isDir, err := utils.VMSources(path)
	if err != nil {
		return nil, err
	}
	sources, err := LoadSources(files)
	if err != nil {
		return nil, err
	}
	opts := DefaultOptions()
	opts.Bootstrap = isDir
	return Compile(sources, opts)
}

// LoadProgram returns the machine words for a .hack, .asm or .vm file, or a
// directory of .vm files.
func LoadProgram(path string) ([]uint16, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hack":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return isa.ParseWords(string(data))
	case ".asm":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		words, _, err := asm.Assemble(string(data))
		if err != nil {
			return nil, fmt.Errorf("assembly error: %w", err)
		}
		return words, nil
	}

	res, err := CompilePath(path)
	if err != nil {
		return nil, err
	}
	return res.Words, nil
}

// LoadSources reads the named files in the order given.
func LoadSources(paths []string) ([]Source, error) {
	sources := make([]Source, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		name := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
		sources = append(sources, Source{Name: name, Text: string(data)})
	}
	return sources, nil
}
