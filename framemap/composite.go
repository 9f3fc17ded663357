package framemap

import (
	"fmt"

	"github.com/bodgit/smsprite/bitplane"
)

// Frame is a composited frame: a buffer of palette indices where 0 is
// transparent, its dimensions, and the position of the origin the parts were
// placed around
type Frame struct {
	Buffer   []byte
	Width    uint16
	Height   uint16
	ZeroX    uint16
	ZeroY    uint16
	Duration uint16
}

// At returns the palette index at x, y
func (f *Frame) At(x, y int) byte {
	return f.Buffer[y*int(f.Width)+x]
}

// dimensions returns the origin and size of the smallest canvas holding
// every part; the origin itself is always on the canvas
func dimensions(parts []Part) (zx, zy, width, height int) {
	var top, bottom, left, right int
	for _, p := range parts {
		size := p.Size()
		if x := int(p.X); x < left {
			left = x
		}
		if x := int(p.X) + size; x > right {
			right = x
		}
		if y := int(p.Y); y < top {
			top = y
		}
		if y := int(p.Y) + size; y > bottom {
			bottom = y
		}
	}
	return -left, -top, right - left, bottom - top
}

type canvas struct {
	buffer []byte
	width  int
	zx, zy int
}

func (c *canvas) offset(x, y int8) int {
	return (c.zy+int(y))*c.width + c.zx + int(x)
}

func (c *canvas) paintRow(row []byte, offset int, flipH bool) {
	for n := range row {
		px := row[n]
		if flipH {
			px = row[len(row)-1-n]
		}
		if px == 0 {
			continue
		}
		c.buffer[offset+n] = px
	}
}

func (c *canvas) paintTile(t *bitplane.Tile, offset int, flipH, flipV bool) {
	for y := 0; y < bitplane.TileHeight; y++ {
		row := y
		if flipV {
			row = bitplane.TileHeight - 1 - y
		}
		c.paintRow(t.Row(row), offset+y*c.width, flipH)
	}
}

func checkTiles(p Part, count int) error {
	for _, i := range p.Tiles() {
		if i >= count {
			return fmt.Errorf("%w: part wants tile %d but only %d are available", ErrTileRange, i, count)
		}
	}
	return nil
}

// Composite paints parts onto a new canvas sized to fit them all. Parts are
// painted from last to first so earlier parts end up on top; transparent
// pixels never overwrite what is already there.
func Composite(parts []Part, tiles []bitplane.Tile, duration uint16) (*Frame, error) {
	zx, zy, width, height := dimensions(parts)

	c := canvas{
		buffer: make([]byte, width*height),
		width:  width,
		zx:     zx,
		zy:     zy,
	}

	for i := len(parts) - 1; i >= 0; i-- {
		p := parts[i]
		if err := checkTiles(p, len(tiles)); err != nil {
			return nil, err
		}

		offset := c.offset(p.X, p.Y)

		if !p.Double {
			c.paintTile(&tiles[p.Tile], offset, p.FlipH, p.FlipV)
			continue
		}

		n := p.Tiles()
		t0, t1, t2, t3 := &tiles[n[0]], &tiles[n[1]], &tiles[n[2]], &tiles[n[3]]
		if p.FlipH {
			t0, t1 = t1, t0
			t2, t3 = t3, t2
		}
		if p.FlipV {
			t0, t2 = t2, t0
			t1, t3 = t3, t1
		}

		c.paintTile(t0, offset, p.FlipH, p.FlipV)
		c.paintTile(t1, offset+tileSize, p.FlipH, p.FlipV)
		c.paintTile(t2, offset+tileSize*width, p.FlipH, p.FlipV)
		c.paintTile(t3, offset+tileSize*width+tileSize, p.FlipH, p.FlipV)
	}

	return &Frame{
		Buffer:   c.buffer,
		Width:    uint16(width),
		Height:   uint16(height),
		ZeroX:    uint16(zx),
		ZeroY:    uint16(zy),
		Duration: duration,
	}, nil
}
