/*
Package bitplane implements a decoder for 4 bits per pixel planar graphics
as used by the Super NES.

Each 8 by 8 tile is stored in 32 bytes. The first 16 bytes hold bit planes 0
and 1 interleaved a row at a time, the second 16 bytes hold planes 2 and 3 in
the same way. The most significant bit of each plane byte is the leftmost
pixel. Decoding inflates every tile to 64 bytes, one palette index per pixel
with the upper nibble always clear.
*/
package bitplane

import (
	"errors"
	"fmt"
)

const (
	// TileWidth is the width of a tile in pixels
	TileWidth = 8
	// TileHeight is the height of a tile in pixels
	TileHeight = TileWidth
	// TilePixels is the number of pixels, and decoded bytes, in a tile
	TilePixels = TileWidth * TileHeight
	// TileBytes is the number of encoded bytes per tile
	TileBytes = 32

	planeBytes = TileBytes >> 1
)

// ErrAlignment is returned when the encoded data is not a whole number of tiles
var ErrAlignment = errors.New("bitplane: data is not a multiple of 32 bytes")

// Tile is a decoded 8 by 8 block of palette indices stored row by row
type Tile [TilePixels]byte

// Row returns row y of the tile
func (t *Tile) Row(y int) []byte {
	return t[y*TileWidth : (y+1)*TileWidth]
}

// Decoder lazily decodes tiles from planar data
type Decoder struct {
	b []byte
}

// NewDecoder returns a Decoder reading tiles from b. Each call starts a new
// sequence from the first tile.
func NewDecoder(b []byte) (*Decoder, error) {
	if len(b)%TileBytes != 0 {
		return nil, fmt.Errorf("%w: got %d", ErrAlignment, len(b))
	}
	return &Decoder{b: b}, nil
}

// Len returns the number of tiles left to decode
func (d *Decoder) Len() int {
	return len(d.b) / TileBytes
}

// Next decodes the next tile. The boolean is false once every tile has been
// returned.
func (d *Decoder) Next() (Tile, bool) {
	var t Tile
	if len(d.b) == 0 {
		return t, false
	}
	decodeTile(&t, d.b[:TileBytes])
	d.b = d.b[TileBytes:]
	return t, true
}

func decodeTile(t *Tile, chunk []byte) {
	planes01, planes23 := chunk[:planeBytes], chunk[planeBytes:]
	i := 0
	for y := 0; y < TileHeight; y++ {
		p0, p1 := planes01[y<<1], planes01[y<<1+1]
		p2, p3 := planes23[y<<1], planes23[y<<1+1]
		for bit := 7; bit >= 0; bit-- {
			var px byte
			px |= (p3 >> uint(bit) & 1) << 3
			px |= (p2 >> uint(bit) & 1) << 2
			px |= (p1 >> uint(bit) & 1) << 1
			px |= p0 >> uint(bit) & 1
			t[i] = px
			i++
		}
	}
}

// Decode returns every tile held in b
func Decode(b []byte) ([]Tile, error) {
	d, err := NewDecoder(b)
	if err != nil {
		return nil, err
	}
	tiles := make([]Tile, 0, d.Len())
	for t, ok := d.Next(); ok; t, ok = d.Next() {
		tiles = append(tiles, t)
	}
	return tiles, nil
}

// Encode packs tiles back into planar form. Only the low 4 bits of each
// pixel are kept.
func Encode(tiles []Tile) []byte {
	b := make([]byte, len(tiles)*TileBytes)
	for n := range tiles {
		encodeTile(&tiles[n], b[n*TileBytes:(n+1)*TileBytes])
	}
	return b
}

func encodeTile(t *Tile, chunk []byte) {
	planes01, planes23 := chunk[:planeBytes], chunk[planeBytes:]
	i := 0
	for y := 0; y < TileHeight; y++ {
		for bit := 7; bit >= 0; bit-- {
			px := t[i]
			planes01[y<<1] |= (px & 1) << uint(bit)
			planes01[y<<1+1] |= (px >> 1 & 1) << uint(bit)
			planes23[y<<1] |= (px >> 2 & 1) << uint(bit)
			planes23[y<<1+1] |= (px >> 3 & 1) << uint(bit)
			i++
		}
	}
}
