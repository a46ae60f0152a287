package main

import (
	"testing"

	"hackvm/pkg/cpu"
	"hackvm/pkg/vm"
)

// Waits for a key, then blacks out the first screen word.
const screenSource = `
function Sys.init 0
label WAIT
push constant 24576
pop pointer 0
push this 0
push constant 0
eq
if-goto WAIT
push constant 16384
pop pointer 1
push constant 0
not
pop that 0
label HALT
goto HALT
`

func TestScreenAndKeyboard(t *testing.T) {
	res, err := vm.Compile([]vm.Source{{Name: "Sys", Text: screenSource}}, vm.DefaultOptions())
	if err != nil {
		t.Fatalf("Compilation failed: %v", err)
	}

	c := cpu.NewCPU()
	if err := c.Load(res.Words); err != nil {
		t.Fatal(err)
	}

	// No key yet: the program spins in WAIT.
	if err := c.Run(5_000); err == nil {
		t.Fatal("program halted without a key press")
	}
	if c.RAM[cpu.ScreenBase] != 0 {
		t.Fatalf("screen written before key press")
	}

	c.PushKey('G')
	if err := c.Run(5_000); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if c.RAM[cpu.ScreenBase] != 0xFFFF {
		t.Errorf("Expected SCREEN[0] to be 0xFFFF, got 0x%04X", c.RAM[cpu.ScreenBase])
	}

	pixels := c.GetFramebufferRGBA()
	ink := pixels[0:4]
	paper := pixels[16*4 : 16*4+4]
	if ink[0] == paper[0] {
		t.Errorf("pixel 0 and pixel 16 share a colour: %v", ink)
	}
	for x := 0; x < 16; x++ {
		if pixels[x*4] != ink[0] {
			t.Errorf("pixel %d is not ink", x)
		}
	}
}
