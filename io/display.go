package io

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/colornames"

	"github.com/ezrec/bytepusher/machine"
)

const (
	COLOR_CUBE  = 216  // Number of colors in the palette cube.
	COLOR_STEPS = 6    // Levels per channel.
	COLOR_LEVEL = 0x33 // Channel intensity per level.
)

// Palette is the 256 entry BytePusher palette: a 6x6x6 color cube, with
// every value past the cube black.
var Palette = func() (palette color.Palette) {
	palette = make(color.Palette, 256)
	for n := range palette {
		palette[n] = Color(uint8(n))
	}
	return
}()

// Color returns the display color of a pixel value.
func Color(value uint8) color.RGBA {
	if value >= COLOR_CUBE {
		return colornames.Black
	}

	return color.RGBA{
		R: (value / (COLOR_STEPS * COLOR_STEPS)) % COLOR_STEPS * COLOR_LEVEL,
		G: (value / COLOR_STEPS) % COLOR_STEPS * COLOR_LEVEL,
		B: value % COLOR_STEPS * COLOR_LEVEL,
		A: 0xff,
	}
}

// Display presents the machine framebuffer.
type Display struct {
	Frames int // Frames presented.

	frame machine.Framebuffer
}

// Update replaces the displayed frame.
func (disp *Display) Update(fb *machine.Framebuffer) {
	disp.frame = *fb
	disp.Frames++
}

// Image renders the displayed frame. Pixel values index Palette directly.
func (disp *Display) Image() (img *image.Paletted) {
	img = image.NewPaletted(image.Rect(0, 0, machine.SCREEN_WIDTH, machine.SCREEN_HEIGHT), Palette)
	for y := range machine.SCREEN_HEIGHT {
		copy(img.Pix[y*img.Stride:], disp.frame[y][:])
	}
	return
}

// FormatOf returns the image format for a file name: "png" or "bmp".
func FormatOf(name string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
}

// Encode writes the displayed frame as an image of the given format.
func (disp *Display) Encode(w io.Writer, format string) (err error) {
	img := disp.Image()

	switch format {
	case "png":
		err = png.Encode(w, img)
	case "bmp":
		err = bmp.Encode(w, img)
	default:
		err = ErrImageFormat
	}

	return
}
