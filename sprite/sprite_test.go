package sprite

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"testing"

	"github.com/bodgit/smsprite/bitplane"
	"github.com/bodgit/smsprite/framemap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func grey() []uint16 {
	colours := make([]uint16, ColorsPerPalette)
	for i := range colours {
		colours[i] = uint16(i) * 0x0421
	}
	return colours
}

func TestColor(t *testing.T) {
	tables := []struct {
		bgr uint16
		rgb color.RGBA
	}{
		{0x0000, color.RGBA{0, 0, 0, 0xff}},
		{0x001f, color.RGBA{0xf8, 0, 0, 0xff}},
		{0x03e0, color.RGBA{0, 0xf8, 0, 0xff}},
		{0x7c00, color.RGBA{0, 0, 0xf8, 0xff}},
		{0x7fff, color.RGBA{0xf8, 0xf8, 0xf8, 0xff}},
		{0x2d6b, color.RGBA{0x58, 0x58, 0x58, 0xff}},
	}

	for _, table := range tables {
		assert.Equal(t, table.rgb, Color(table.bgr))
		assert.Equal(t, table.bgr, Pack(table.rgb))
	}
}

func TestPalette(t *testing.T) {
	p := Palette(grey())
	require.Len(t, p, ColorsPerPalette)
	assert.Equal(t, Transparent, p[0])
	assert.Equal(t, color.RGBA{0x08, 0x08, 0x08, 0xff}, p[1])
}

func TestImage(t *testing.T) {
	f := &framemap.Frame{
		Buffer: []byte{1, 2, 3, 4, 5, 6},
		Width:  3,
		Height: 2,
		ZeroX:  1,
		ZeroY:  2,
	}

	assert.Equal(t, image.Rect(-1, -2, 2, 0), Bounds(f))

	m := Image(f, Palette(grey()))
	assert.Equal(t, uint8(1), m.ColorIndexAt(-1, -2))
	assert.Equal(t, uint8(6), m.ColorIndexAt(1, -1))

	other := &framemap.Frame{Buffer: make([]byte, 64), Width: 8, Height: 8, ZeroX: 4, ZeroY: 4}
	assert.Equal(t, image.Rect(-4, -4, 4, 4), Union([]*framemap.Frame{f, other}))
}

func TestEncodeGIF(t *testing.T) {
	frames := []*framemap.Frame{
		{Buffer: []byte{1, 1, 1, 1}, Width: 2, Height: 2, Duration: 6},
		{Buffer: []byte{2, 0, 0, 2}, Width: 2, Height: 2, ZeroX: 1, ZeroY: 1, Duration: 120},
	}

	b := new(bytes.Buffer)
	require.NoError(t, EncodeGIF(b, frames, Palette(grey()), 2))

	g, err := gif.DecodeAll(b)
	require.NoError(t, err)
	require.Len(t, g.Image, 2)
	assert.Equal(t, []int{10, 200}, g.Delay)
	assert.Equal(t, 6, g.Config.Width)
	assert.Equal(t, 6, g.Config.Height)

	// The first frame sits bottom right of the origin, scaled up
	m := g.Image[0]
	assert.Equal(t, uint8(0), m.ColorIndexAt(0, 0))
	assert.Equal(t, uint8(1), m.ColorIndexAt(2, 2))
	assert.Equal(t, uint8(1), m.ColorIndexAt(5, 5))

	m = g.Image[1]
	assert.Equal(t, uint8(2), m.ColorIndexAt(0, 0))
	assert.Equal(t, uint8(0), m.ColorIndexAt(2, 0))
	assert.Equal(t, uint8(2), m.ColorIndexAt(3, 3))

	assert.Error(t, EncodeGIF(b, nil, Palette(grey()), 1))
}

func TestSheet(t *testing.T) {
	var tiles []bitplane.Tile
	for i := 0; i < 20; i++ {
		var tile bitplane.Tile
		for j := range tile {
			tile[j] = byte((i + j) % ColorsPerPalette)
		}
		tiles = append(tiles, tile)
	}

	m := Sheet(tiles, Palette(grey()))
	assert.Equal(t, image.Rect(0, 0, 128, 16), m.Bounds())
	assert.Equal(t, tiles[17][9], m.ColorIndexAt(8+1, 8+1))

	b := new(bytes.Buffer)
	require.NoError(t, EncodeSheet(b, m))
	assert.Equal(t, 2*rowBytes+paletteBytes, b.Len())

	got, err := DecodeSheet(b)
	require.NoError(t, err)
	assert.Equal(t, m.Pix, got.Pix)
	assert.Equal(t, m.Palette, got.Palette)
}

func TestSheetErrors(t *testing.T) {
	assert.Equal(t, errSheetSize, EncodeSheet(new(bytes.Buffer), image.NewRGBA(image.Rect(0, 0, 64, 8))))
	assert.Equal(t, errSheetSize, EncodeSheet(new(bytes.Buffer), image.NewRGBA(image.Rect(0, 0, 128, 7))))

	_, err := DecodeSheet(bytes.NewReader(make([]byte, 100)))
	assert.Equal(t, errNotEnough, err)
}

func TestQuantize(t *testing.T) {
	m := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			if x < 8 {
				continue
			}
			m.Set(x, y, color.RGBA{uint8(y * 16), 0x80, uint8(x * 16), 0xff})
		}
	}

	pm := Quantize(m)
	assert.True(t, len(pm.Palette) <= ColorsPerPalette)
	assert.Equal(t, Transparent, pm.Palette[0])
	assert.Equal(t, uint8(0), pm.ColorIndexAt(0, 0))
	assert.NotEqual(t, uint8(0), pm.ColorIndexAt(12, 12))
}
