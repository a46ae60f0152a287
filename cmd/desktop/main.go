package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"

	"hackvm/pkg/cpu"
	"hackvm/pkg/utils"
	"hackvm/pkg/vm"
)

const statusHeight = 16

// specialKeys maps non-printing keys to their Hack keyboard codes.
var specialKeys = map[ebiten.Key]uint16{
	ebiten.KeyEnter:      cpu.KeyNewline,
	ebiten.KeyBackspace:  cpu.KeyBackspace,
	ebiten.KeyArrowLeft:  cpu.KeyLeft,
	ebiten.KeyArrowUp:    cpu.KeyUp,
	ebiten.KeyArrowRight: cpu.KeyRight,
	ebiten.KeyArrowDown:  cpu.KeyDown,
	ebiten.KeyHome:       cpu.KeyHome,
	ebiten.KeyEnd:        cpu.KeyEnd,
	ebiten.KeyPageUp:     cpu.KeyPageUp,
	ebiten.KeyPageDown:   cpu.KeyPageDown,
	ebiten.KeyInsert:     cpu.KeyInsert,
	ebiten.KeyDelete:     cpu.KeyDelete,
	ebiten.KeyEscape:     cpu.KeyEscape,
	ebiten.KeyF1:         cpu.KeyF1,
	ebiten.KeyF2:         cpu.KeyF1 + 1,
	ebiten.KeyF3:         cpu.KeyF1 + 2,
	ebiten.KeyF4:         cpu.KeyF1 + 3,
	ebiten.KeyF5:         cpu.KeyF1 + 4,
	ebiten.KeyF6:         cpu.KeyF1 + 5,
	ebiten.KeyF7:         cpu.KeyF1 + 6,
	ebiten.KeyF8:         cpu.KeyF1 + 7,
	ebiten.KeyF9:         cpu.KeyF1 + 8,
	ebiten.KeyF10:        cpu.KeyF1 + 9,
	ebiten.KeyF11:        cpu.KeyF1 + 10,
	ebiten.KeyF12:        cpu.KeyF1 + 11,
}

// keyCode returns the value KBD should hold for one frame. The keyboard
// register reports the key while it is held, so a printable character
// typed earlier stays visible until every key is released.
func keyCode(pressed []ebiten.Key, typed []rune, held uint16) uint16 {
	if len(pressed) == 0 {
		return 0
	}
	for _, k := range pressed {
		if code, ok := specialKeys[k]; ok {
			return code
		}
	}
	if n := len(typed); n > 0 && typed[n-1] > 0 && typed[n-1] < 128 {
		return uint16(typed[n-1])
	}
	return held
}

type Game struct {
	vm             *cpu.CPU
	screenImg      *ebiten.Image // reused 512×256 framebuffer
	face           text.Face
	cyclesPerFrame int
	key            uint16
}

func (g *Game) Update() error {
	g.key = keyCode(inpututil.AppendPressedKeys(nil), ebiten.AppendInputChars(nil), g.key)
	if g.key == 0 {
		g.vm.ReleaseKey()
	} else {
		g.vm.PushKey(g.key)
	}

	for i := 0; i < g.cyclesPerFrame; i++ {
		if g.vm.Halted {
			break
		}
		g.vm.Step()
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.screenImg == nil {
		g.screenImg = ebiten.NewImage(cpu.ScreenWidth, cpu.ScreenHeight)
	}
	g.screenImg.WritePixels(g.vm.GetFramebufferRGBA())
	screen.DrawImage(g.screenImg, nil)

	status := fmt.Sprintf("PC=%05d A=%05d D=%06d KBD=%03d cycles=%d",
		g.vm.PC, g.vm.A, int16(g.vm.D), g.key, g.vm.Cycles)
	op := &text.DrawOptions{}
	op.GeoM.Translate(4, cpu.ScreenHeight+2)
	op.ColorScale.ScaleWithColor(color.White)
	text.Draw(screen, status, g.face, op)

	if g.vm.Halted {
		ebitenutil.DebugPrintAt(screen, "HALTED", cpu.ScreenWidth-48, cpu.ScreenHeight)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return cpu.ScreenWidth, cpu.ScreenHeight + statusHeight
}

func main() {
	cyclesPerFrame := flag.Int("speed", 20000, "instructions executed per frame")
	scale := flag.Int("scale", 2, "window scale")
	restore := flag.String("restore", "", "resume from a snapshot written by console -save")
	flag.Parse()

	if flag.NArg() < 1 && *restore == "" {
		fmt.Fprintln(os.Stderr, "usage: desktop [flags] <file.hack|file.asm|file.vm|dir>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	machine := cpu.NewCPU()
	if *restore != "" {
		if err := machine.RestoreFromFile(*restore); err != nil {
			log.Fatalf("Restore failed: %v", err)
		}
	} else {
		fullPath, _, err := utils.GetPathInfo(flag.Arg(0))
		if err != nil {
			log.Fatalf("Bad path: %v", err)
		}
		program, err := vm.LoadProgram(fullPath)
		if err != nil {
			log.Fatalf("Build failed: %v", err)
		}
		if err := machine.Load(program); err != nil {
			log.Fatal(err)
		}
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(cpu.ScreenWidth**scale, (cpu.ScreenHeight+statusHeight)**scale)
	ebiten.SetWindowTitle("Hack Desktop")

	game := &Game{
		vm:             machine,
		face:           text.NewGoXFace(basicfont.Face7x13),
		cyclesPerFrame: *cyclesPerFrame,
	}
	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
