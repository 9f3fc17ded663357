/*
Package sprite implements conversion between decoded sprite data and the
standard library image types.

Colours are stored by the console as packed 15-bit values, 0BBBBBGGGGGRRRRR.
Palette index 0 is always transparent.
*/
package sprite

import (
	"image"
	"image/color"

	"github.com/bodgit/smsprite/framemap"
)

const (
	// ColorsPerPalette is the number of colours in a sprite palette
	ColorsPerPalette = 16

	channelMask  = 0x1f
	channelShift = 3
)

// Transparent is the colour used for palette index 0
var Transparent = color.RGBA{}

// Color converts a packed BGR555 value to a colour
func Color(bgr uint16) color.RGBA {
	return color.RGBA{
		R: uint8(bgr&channelMask) << channelShift,
		G: uint8(bgr>>5&channelMask) << channelShift,
		B: uint8(bgr>>10&channelMask) << channelShift,
		A: 0xff,
	}
}

// Pack converts a colour to a packed BGR555 value
func Pack(c color.Color) uint16 {
	r, g, b, _ := c.RGBA()
	return uint16(r>>11) | uint16(g>>11)<<5 | uint16(b>>11)<<10
}

// Palette converts packed colours to a palette with index 0 transparent
func Palette(colours []uint16) color.Palette {
	p := make(color.Palette, len(colours))
	for i, c := range colours {
		if i == 0 {
			p[i] = Transparent
			continue
		}
		p[i] = Color(c)
	}
	return p
}

// Bounds returns the rectangle covered by f when its origin is placed at
// (0, 0)
func Bounds(f *framemap.Frame) image.Rectangle {
	return image.Rect(0, 0, int(f.Width), int(f.Height)).Sub(image.Pt(int(f.ZeroX), int(f.ZeroY)))
}

// Image returns f as a paletted image with its origin at (0, 0)
func Image(f *framemap.Frame, p color.Palette) *image.Paletted {
	m := image.NewPaletted(Bounds(f), p)
	copy(m.Pix, f.Buffer)
	return m
}

// Union returns the smallest rectangle holding every frame when their
// origins are aligned
func Union(frames []*framemap.Frame) image.Rectangle {
	var r image.Rectangle
	for _, f := range frames {
		r = r.Union(Bounds(f))
	}
	return r
}
