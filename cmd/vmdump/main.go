package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"hackvm/pkg/isa"
	"hackvm/pkg/vm"
)

const testSource = `push constant 7
push constant 8
add
pop local 0
`

func main() {
	src := testSource
	name := "Main"
	if len(os.Args) > 1 {
		data, err := os.ReadFile(os.Args[1])
		if err != nil {
			fmt.Fprintln(os.Stderr, "read error:", err)
			os.Exit(1)
		}
		src = string(data)
		name = strings.TrimSuffix(filepath.Base(os.Args[1]), filepath.Ext(os.Args[1]))
	}

	fmt.Printf("Source:\n%s\n", src)

	// Parse
	cmds, err := vm.Parse(name, src)
	if err != nil {
		fmt.Fprintln(os.Stderr, "parse error:", err)
		os.Exit(1)
	}

	cfg := spew.ConfigState{Indent: "  ", DisableMethods: true, DisablePointerAddresses: true}
	fmt.Printf("Commands (%d)\n", len(cmds))
	for _, c := range cmds {
		fmt.Printf("  %-28s %s", c.String(), cfg.Sdump(c))
	}
	fmt.Println()

	// Translate and assemble
	res, err := vm.Compile([]vm.Source{{Name: name, Text: src}}, vm.Options{})
	if err != nil {
		fmt.Fprintln(os.Stderr, "compile error:", err)
		os.Exit(1)
	}

	fmt.Println("Generated Assembly")
	fmt.Print(res.Assembly)
	fmt.Println()

	asmLines := strings.Split(res.Assembly, "\n")
	fmt.Printf("Machine Code (%d words)\n", len(res.Words))
	for i, w := range res.Words {
		text := ""
		if ln, ok := res.SourceMap[i]; ok && ln-1 < len(asmLines) {
			text = asmLines[ln-1]
		}
		fmt.Printf("  %05d  %s  %-16s %s\n", i, isa.FormatWord(w), isa.Disassemble(w), text)
	}
	fmt.Println()
	fmt.Print(res.Symbols)
}
