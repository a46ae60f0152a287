package asm

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

const (
	// VariableBase is the first data address handed to a variable.
	VariableBase = 16
	// ScreenBase is the start of the memory-mapped screen.
	ScreenBase = 0x4000
	// KeyboardAddr is the memory-mapped keyboard register.
	KeyboardAddr = 0x6000
)

var (
	ErrDuplicateLabel = errors.New("duplicate label")
	ErrReservedSymbol = errors.New("reserved symbol")
	ErrOutOfMemory    = errors.New("out of variable memory")
)

// predefined holds the architectural names. They are never reassigned.
var predefined = func() map[string]int {
	m := map[string]int{
		"SP":     0,
		"LCL":    1,
		"ARG":    2,
		"THIS":   3,
		"THAT":   4,
		"SCREEN": ScreenBase,
		"KBD":    KeyboardAddr,
	}
	for i := 0; i < 16; i++ {
		m[fmt.Sprintf("R%d", i)] = i
	}
	return m
}()

// SymbolTable maps names to addresses for one assembly unit. Labels resolve
// to instruction addresses, variables to data addresses starting at 16.
// Entries are append-only.
type SymbolTable struct {
	labels    map[string]int
	variables map[string]int
	order     []string // variables in allocation order
	next      int
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		labels:    make(map[string]int),
		variables: make(map[string]int),
		next:      VariableBase,
	}
}

// Define records a label at an instruction address.
func (s *SymbolTable) Define(label string, addr int) error {
	if _, ok := predefined[label]; ok {
		return fmt.Errorf("%w '%s'", ErrReservedSymbol, label)
	}
	if _, ok := s.labels[label]; ok {
		return fmt.Errorf("%w '%s'", ErrDuplicateLabel, label)
	}
	if _, ok := s.variables[label]; ok {
		return fmt.Errorf("%w '%s' (already a variable)", ErrDuplicateLabel, label)
	}
	s.labels[label] = addr
	return nil
}

// Lookup returns the address bound to name, if any.
func (s *SymbolTable) Lookup(name string) (int, bool) {
	if addr, ok := predefined[name]; ok {
		return addr, true
	}
	if addr, ok := s.labels[name]; ok {
		return addr, true
	}
	addr, ok := s.variables[name]
	return addr, ok
}

// Resolve returns the address of name, allocating the next free variable
// slot if the name is unknown. Resolving the same name twice yields the
// same address.
func (s *SymbolTable) Resolve(name string) (int, error) {
	if addr, ok := s.Lookup(name); ok {
		return addr, nil
	}
	if s.next >= ScreenBase {
		return 0, fmt.Errorf("%w allocating '%s'", ErrOutOfMemory, name)
	}
	addr := s.next
	s.next++
	s.variables[name] = addr
	s.order = append(s.order, name)
	return addr, nil
}

// Clone returns an independent copy. Pass two extends a clone of the label
// map built by pass one.
func (s *SymbolTable) Clone() *SymbolTable {
	c := &SymbolTable{
		labels:    make(map[string]int, len(s.labels)),
		variables: make(map[string]int, len(s.variables)),
		order:     append([]string(nil), s.order...),
		next:      s.next,
	}
	for k, v := range s.labels {
		c.labels[k] = v
	}
	for k, v := range s.variables {
		c.variables[k] = v
	}
	return c
}

// Labels returns a copy of the label bindings.
func (s *SymbolTable) Labels() map[string]int {
	out := make(map[string]int, len(s.labels))
	for k, v := range s.labels {
		out[k] = v
	}
	return out
}

// Variables returns the allocated variables in allocation order.
func (s *SymbolTable) Variables() []string {
	return append([]string(nil), s.order...)
}

// String returns a deterministically ordered dump of the table.
func (s *SymbolTable) String() string {
	var sb strings.Builder
	if len(s.labels) > 0 {
		sb.WriteString("Labels:\n")
		names := make([]string, 0, len(s.labels))
		for name := range s.labels {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&sb, "  %-30s  ROM[%d]\n", name, s.labels[name])
		}
	} else {
		sb.WriteString("Labels: (empty)\n")
	}

	if len(s.order) > 0 {
		sb.WriteString("Variables:\n")
		for _, name := range s.order {
			fmt.Fprintf(&sb, "  %-30s  RAM[%d]\n", name, s.variables[name])
		}
	}
	return sb.String()
}
