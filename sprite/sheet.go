package sprite

import (
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"io"
	"io/ioutil"

	"github.com/bodgit/smsprite/bitplane"
	"github.com/ericpauley/go-quantize/quantize"
)

// A sheet is the layout tiles are loaded into video memory with: rows of
// SheetTiles tiles of 4bpp planar data followed by a 16 colour palette of
// packed values. There is no header; the number of rows follows from the
// size.
const (
	// SheetTiles is the number of tiles in a sheet row
	SheetTiles = 16

	sheetWidth   = SheetTiles * bitplane.TileWidth
	rowBytes     = SheetTiles * bitplane.TileBytes
	paletteBytes = ColorsPerPalette * 2
)

var (
	errSheetSize = errors.New("sprite: image is not a whole number of sheet rows")
	errNotEnough = errors.New("sprite: not enough sheet data")
)

// Sheet lays tiles out in rows of SheetTiles, padding the last row with
// empty tiles
func Sheet(tiles []bitplane.Tile, p color.Palette) *image.Paletted {
	rows := (len(tiles) + SheetTiles - 1) / SheetTiles
	m := image.NewPaletted(image.Rect(0, 0, sheetWidth, rows*bitplane.TileHeight), p)
	for n := range tiles {
		tx, ty := n%SheetTiles*bitplane.TileWidth, n/SheetTiles*bitplane.TileHeight
		for y := 0; y < bitplane.TileHeight; y++ {
			copy(m.Pix[m.PixOffset(tx, ty+y):], tiles[n].Row(y))
		}
	}
	return m
}

// DecodeSheet reads a sheet from r
func DecodeSheet(r io.Reader) (*image.Paletted, error) {
	b, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(b) < paletteBytes || (len(b)-paletteBytes)%rowBytes != 0 {
		return nil, errNotEnough
	}

	split := len(b) - paletteBytes
	tiles, err := bitplane.Decode(b[:split])
	if err != nil {
		return nil, err
	}

	colours := make([]uint16, ColorsPerPalette)
	for i := range colours {
		colours[i] = binary.LittleEndian.Uint16(b[split+i*2:])
	}

	return Sheet(tiles, Palette(colours)), nil
}

// cut splits m into tiles, reading sheet rows left to right
func cut(m *image.Paletted) []bitplane.Tile {
	b := m.Bounds()
	var tiles []bitplane.Tile
	for ty := b.Min.Y; ty < b.Max.Y; ty += bitplane.TileHeight {
		for tx := b.Min.X; tx < b.Max.X; tx += bitplane.TileWidth {
			var t bitplane.Tile
			for y := 0; y < bitplane.TileHeight; y++ {
				for x := 0; x < bitplane.TileWidth; x++ {
					t[y*bitplane.TileWidth+x] = m.ColorIndexAt(tx+x, ty+y)
				}
			}
			tiles = append(tiles, t)
		}
	}
	return tiles
}

// Quantize returns m as a paletted image of at most 16 colours with index 0
// transparent. Images that already qualify are returned unchanged.
func Quantize(m image.Image) *image.Paletted {
	b := m.Bounds()

	if pm, ok := m.(*image.Paletted); ok && len(pm.Palette) <= ColorsPerPalette {
		return pm
	}

	// Median cut the opaque colours, transparency gets index 0
	q := quantize.MedianCutQuantizer{}
	p := q.Quantize(make(color.Palette, 0, ColorsPerPalette-1), m)
	p = append(color.Palette{Transparent}, p...)

	pm := image.NewPaletted(b, p)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := m.At(x, y)
			if _, _, _, a := c.RGBA(); a < 0x8000 {
				continue
			}
			pm.SetColorIndex(x, y, uint8(p[1:].Index(c)+1))
		}
	}
	return pm
}

// EncodeSheet writes m to w as a sheet. The image must be SheetTiles tiles
// wide and a whole number of tiles high; it is reduced to 16 colours first
// if needed.
func EncodeSheet(w io.Writer, m image.Image) error {
	b := m.Bounds()
	if b.Dx() != sheetWidth || b.Dy() == 0 || b.Dy()%bitplane.TileHeight != 0 {
		return errSheetSize
	}

	pm := Quantize(m)

	// Adjust image so that top-left corner is at (0, 0)
	if pm.Rect.Min != (image.Point{}) {
		dup := *pm
		dup.Rect = dup.Rect.Sub(dup.Rect.Min)
		pm = &dup
	}

	if _, err := w.Write(bitplane.Encode(cut(pm))); err != nil {
		return err
	}

	var tmp [paletteBytes]byte
	for i, c := range pm.Palette {
		binary.LittleEndian.PutUint16(tmp[i*2:], Pack(c))
	}
	_, err := w.Write(tmp[:])
	return err
}
