// Package isa describes the Hack instruction set: the computation,
// destination and jump tables, the two 16-bit instruction encodings and the
// textual form of both.
package isa

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MaxAddress is the largest value an address instruction can carry.
const MaxAddress = 1<<15 - 1

// computePrefix marks a compute instruction (the three leading ones).
const computePrefix uint16 = 0b111 << 13

var (
	ErrAddressRange = errors.New("address out of range")
	ErrUnknownComp  = errors.New("unknown computation")
	ErrUnknownDest  = errors.New("unknown destination")
	ErrUnknownJump  = errors.New("unknown jump")
)

// compCodes maps a computation mnemonic to its a+c1..c6 bits.
var compCodes = map[string]uint16{
	"0":   0b0101010,
	"1":   0b0111111,
	"-1":  0b0111010,
	"D":   0b0001100,
	"A":   0b0110000,
	"!D":  0b0001101,
	"!A":  0b0110001,
	"-D":  0b0001111,
	"-A":  0b0110011,
	"D+1": 0b0011111,
	"A+1": 0b0110111,
	"D-1": 0b0001110,
	"A-1": 0b0110010,
	"D+A": 0b0000010,
	"D-A": 0b0010011,
	"A-D": 0b0000111,
	"D&A": 0b0000000,
	"D|A": 0b0010101,

	"M":   0b1110000,
	"!M":  0b1110001,
	"-M":  0b1110011,
	"M+1": 0b1110111,
	"M-1": 0b1110010,
	"D+M": 0b1000010,
	"D-M": 0b1010011,
	"M-D": 0b1000111,
	"D&M": 0b1000000,
	"D|M": 0b1010101,
}

// compAliases accepts the commuted spelling of the symmetric operations.
var compAliases = map[string]string{
	"A+D": "D+A",
	"M+D": "D+M",
	"A&D": "D&A",
	"M&D": "D&M",
	"A|D": "D|A",
	"M|D": "D|M",
	"1+D": "D+1",
	"1+A": "A+1",
	"1+M": "M+1",
}

var destCodes = map[string]uint16{
	"":    0b000,
	"M":   0b001,
	"D":   0b010,
	"MD":  0b011,
	"A":   0b100,
	"AM":  0b101,
	"AD":  0b110,
	"AMD": 0b111,
}

var destBits = map[rune]uint16{
	'A': 0b100,
	'D': 0b010,
	'M': 0b001,
}

var jumpCodes = map[string]uint16{
	"":    0b000,
	"JGT": 0b001,
	"JEQ": 0b010,
	"JGE": 0b011,
	"JLT": 0b100,
	"JNE": 0b101,
	"JLE": 0b110,
	"JMP": 0b111,
}

var (
	compNames = invert(compCodes)
	destNames = invert(destCodes)
	jumpNames = invert(jumpCodes)
)

func invert(m map[string]uint16) map[uint16]string {
	out := make(map[uint16]string, len(m))
	for name, code := range m {
		out[code] = name
	}
	return out
}

// Comp returns the 7-bit code of a computation mnemonic.
func Comp(mnemonic string) (uint16, error) {
	if canonical, ok := compAliases[mnemonic]; ok {
		mnemonic = canonical
	}
	code, ok := compCodes[mnemonic]
	if !ok {
		return 0, fmt.Errorf("%w '%s'", ErrUnknownComp, mnemonic)
	}
	return code, nil
}

// Dest returns the 3-bit destination mask. The registers may be listed in
// any order, each at most once.
func Dest(mnemonic string) (uint16, error) {
	var code uint16
	for _, r := range mnemonic {
		bit, ok := destBits[r]
		if !ok || code&bit != 0 {
			return 0, fmt.Errorf("%w '%s'", ErrUnknownDest, mnemonic)
		}
		code |= bit
	}
	return code, nil
}

// Jump returns the 3-bit jump condition.
func Jump(mnemonic string) (uint16, error) {
	code, ok := jumpCodes[mnemonic]
	if !ok {
		return 0, fmt.Errorf("%w '%s'", ErrUnknownJump, mnemonic)
	}
	return code, nil
}

// EncodeA encodes an address instruction carrying value.
func EncodeA(value int) (uint16, error) {
	if value < 0 || value > MaxAddress {
		return 0, fmt.Errorf("%w: %d", ErrAddressRange, value)
	}
	return uint16(value), nil
}

// EncodeC encodes a compute instruction. Empty dest and jump mean "none".
func EncodeC(dest, comp, jump string) (uint16, error) {
	c, err := Comp(comp)
	if err != nil {
		return 0, err
	}
	d, err := Dest(dest)
	if err != nil {
		return 0, err
	}
	j, err := Jump(jump)
	if err != nil {
		return 0, err
	}
	return computePrefix | c<<6 | d<<3 | j, nil
}

// IsCompute reports whether w is a compute instruction.
func IsCompute(w uint16) bool {
	return w&0x8000 != 0
}

// Fields splits a compute instruction into its comp, dest and jump bits.
func Fields(w uint16) (comp, dest, jump uint16) {
	return (w >> 6) & 0x7F, (w >> 3) & 0x07, w & 0x07
}

// Disassemble renders a word back into assembly. Computation bit patterns
// outside the table are shown in binary.
func Disassemble(w uint16) string {
	if !IsCompute(w) {
		return "@" + strconv.Itoa(int(w))
	}

	c, d, j := Fields(w)
	comp, ok := compNames[c]
	if !ok {
		comp = fmt.Sprintf("comp(%07b)", c)
	}

	var sb strings.Builder
	if dest := destNames[d]; dest != "" {
		sb.WriteString(dest)
		sb.WriteByte('=')
	}
	sb.WriteString(comp)
	if jump := jumpNames[j]; jump != "" {
		sb.WriteByte(';')
		sb.WriteString(jump)
	}
	return sb.String()
}

// FormatWord renders w as sixteen '0'/'1' characters, most significant first.
func FormatWord(w uint16) string {
	return fmt.Sprintf("%016b", w)
}

// FormatWords renders a program in the .hack text format, one word per line.
func FormatWords(words []uint16) string {
	var sb strings.Builder
	for _, w := range words {
		sb.WriteString(FormatWord(w))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// ParseWords reads the .hack text format. Blank lines are ignored.
func ParseWords(text string) ([]uint16, error) {
	var words []uint16
	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if len(line) != 16 {
			return nil, fmt.Errorf("word on line %d is %d characters, want 16", i+1, len(line))
		}
		v, err := strconv.ParseUint(line, 2, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid word on line %d: %s", i+1, line)
		}
		words = append(words, uint16(v))
	}
	return words, nil
}
