package cpu

import (
	"image"
	"image/png"
	"os"

	"hackvm/pkg/grid"
)

// Pixel colours. A set bit in screen memory is black.
var (
	inkRGBA   = [4]byte{0x10, 0x10, 0x10, 0xFF}
	paperRGBA = [4]byte{0xF0, 0xF0, 0xE8, 0xFF}
)

// GetFramebufferRGBA decodes the screen map into a 512×256 RGBA8888 byte
// slice. Bit 0 of each word is its leftmost pixel.
func (c *CPU) GetFramebufferRGBA() []byte {
	pixels := make([]byte, ScreenWidth*ScreenHeight*4)
	for i := 0; i < ScreenWords; i++ {
		word := c.RAM[ScreenBase+i]
		for bit := 0; bit < 16; bit++ {
			x, y := grid.WordPixel(i, bit, WordsPerRow)
			colour := paperRGBA
			if word&(1<<bit) != 0 {
				colour = inkRGBA
			}
			copy(pixels[(y*ScreenWidth+x)*4:], colour[:])
		}
	}
	return pixels
}

// GetFramebufferImage returns the screen as an *image.RGBA.
func (c *CPU) GetFramebufferImage() *image.RGBA {
	return &image.RGBA{
		Pix:    c.GetFramebufferRGBA(),
		Stride: ScreenWidth * 4,
		Rect:   image.Rect(0, 0, ScreenWidth, ScreenHeight),
	}
}

// SaveScreenshot encodes the screen as a PNG and writes it to filename.
func (c *CPU) SaveScreenshot(filename string) error {
	img := c.GetFramebufferImage()
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
