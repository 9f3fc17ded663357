/*
Package framemap implements frame maps, the placement records that position
8 by 8 tiles, or 2 by 2 blocks of them, around a shared origin to build one
frame of a sprite.

Each record is 5 bytes:

	x     signed horizontal offset from the origin
	a     bit 7 set for a 16 by 16 block
	y     signed vertical offset from the origin
	tile  index of the (top left) tile
	b     bit 7 vertical flip, bit 6 horizontal flip, bit 0 next page

A frame map is a little-endian 16-bit count followed by that many records.
*/
package framemap

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/bodgit/smsprite/rom"
)

// PartSize is the size in bytes of one encoded Part
const PartSize = 5

const (
	blockRowStride = 16
	tileSize       = 8
	blockSize      = tileSize << 1
)

var (
	// ErrTileRange is returned when a part refers to a tile that was not decoded
	ErrTileRange = errors.New("framemap: tile index out of range")

	errShortPart = errors.New("framemap: short part record")
)

// Part places a tile or block of tiles relative to the frame origin
type Part struct {
	X, Y     int8
	Tile     uint8
	Double   bool
	FlipH    bool
	FlipV    bool
	NextPage bool
}

// Size returns the width and height of the part in pixels
func (p Part) Size() int {
	if p.Double {
		return blockSize
	}
	return tileSize
}

// Tiles returns the tile indices covered by the part, in top left, top right,
// bottom left, bottom right order before any flipping
func (p Part) Tiles() []int {
	n := int(p.Tile)
	if p.Double {
		return []int{n, n + 1, n + blockRowStride, n + blockRowStride + 1}
	}
	return []int{n}
}

func (p Part) String() string {
	return fmt.Sprintf("Part{x: %d, y: %d, tile: %02X, double: %t, flip_x: %t, flip_y: %t, next_page: %t}", p.X, p.Y, p.Tile, p.Double, p.FlipH, p.FlipV, p.NextPage)
}

// Parse decodes a single 5 byte record
func Parse(b []byte) (Part, error) {
	if len(b) < PartSize {
		return Part{}, errShortPart
	}
	return Part{
		X:        int8(b[0]),
		Double:   b[1]&0x80 != 0,
		Y:        int8(b[2]),
		Tile:     b[3],
		FlipV:    b[4]&0x80 != 0,
		FlipH:    b[4]&0x40 != 0,
		NextPage: b[4]&0x01 != 0,
	}, nil
}

// MarshalBinary encodes the part back into its 5 byte record
func (p Part) MarshalBinary() ([]byte, error) {
	b := []byte{byte(p.X), 0, byte(p.Y), p.Tile, 0}
	if p.Double {
		b[1] |= 0x80
	}
	if p.FlipV {
		b[4] |= 0x80
	}
	if p.FlipH {
		b[4] |= 0x40
	}
	if p.NextPage {
		b[4] |= 0x01
	}
	return b, nil
}

// Read reads the counted frame map stored at flat offset pc
func Read(img *rom.Image, pc int) ([]Part, error) {
	count, err := img.Uint16(pc)
	if err != nil {
		return nil, err
	}

	b, err := img.Read(pc+2, int(count)*PartSize)
	if err != nil {
		return nil, err
	}

	parts := make([]Part, 0, count)
	for len(b) > 0 {
		p, err := Parse(b)
		if err != nil {
			return nil, err
		}
		parts = append(parts, p)
		b = b[PartSize:]
	}

	return parts, nil
}

// Encode returns the counted binary form of parts
func Encode(parts []Part) []byte {
	b := make([]byte, 2, 2+len(parts)*PartSize)
	binary.LittleEndian.PutUint16(b, uint16(len(parts)))
	for _, p := range parts {
		r, _ := p.MarshalBinary()
		b = append(b, r...)
	}
	return b
}
