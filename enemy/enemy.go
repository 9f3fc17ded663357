/*
Package enemy implements decoding of enemy sprites from the 64 byte species
header, or DNA, every enemy type has in the cartridge image.
*/
package enemy

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/bodgit/smsprite/bitplane"
	"github.com/bodgit/smsprite/framemap"
	"github.com/bodgit/smsprite/rom"
)

const (
	dnaSize     = 64
	nameBank    = 0x34
	nameLength  = 16
	paletteSize = 16
	indexSize   = 4

	// maxFrames bounds the animation list when no end marker is found
	maxFrames = 256
)

var endMarker = []byte{0xED, 0x80}

// ErrUnterminated is returned when an animation list has no end marker
var ErrUnterminated = errors.New("enemy: animation list not terminated")

// Known maps enemy names to the address of their DNA
var Known = map[string]rom.Address{
	"ebi": 0xA0E63F,
}

// DNA is the decoded species header of an enemy
type DNA struct {
	Address  rom.Address
	Size     uint16
	Palette  uint16
	Bank     uint8
	Piece    uint16
	Graphics rom.Address
	NameAt   uint16

	img *rom.Image
}

// Frame is one undecoded animation frame
type Frame struct {
	Duration uint16
	Parts    []framemap.Part
}

// Read decodes the DNA at a
func Read(img *rom.Image, a rom.Address) (*DNA, error) {
	b, err := img.ReadAt(a, dnaSize)
	if err != nil {
		return nil, err
	}

	return &DNA{
		Address:  a,
		Size:     binary.LittleEndian.Uint16(b[0:2]),
		Palette:  binary.LittleEndian.Uint16(b[2:4]),
		Bank:     b[12],
		Piece:    binary.LittleEndian.Uint16(b[20:22]),
		Graphics: rom.Address(binary.LittleEndian.Uint32(b[54:58]) & 0xFFFFFF),
		NameAt:   binary.LittleEndian.Uint16(b[62:64]),
		img:      img,
	}, nil
}

func (d *DNA) String() string {
	return fmt.Sprintf("DNA{size: %04X, palette: %04X, bank: %02X, piece: %04X, graphics: %s, name: %04X}", d.Size, d.Palette, d.Bank, d.Piece, d.Graphics, d.NameAt)
}

func (d *DNA) paletteAddress() rom.Address {
	return rom.NewAddress(d.Bank, d.Palette)
}

// Name returns the enemy's name
func (d *DNA) Name() (string, error) {
	pc, err := rom.NewAddress(nameBank, d.NameAt).Pak()
	if err != nil {
		return "", err
	}
	return d.img.String(pc, nameLength)
}

// Colours returns the enemy's 16 BGR555 colours
func (d *DNA) Colours() ([]uint16, error) {
	b, err := d.img.ReadAt(d.paletteAddress(), paletteSize*2)
	if err != nil {
		return nil, err
	}
	colours := make([]uint16, paletteSize)
	for i := range colours {
		colours[i] = binary.LittleEndian.Uint16(b[i*2:])
	}
	return colours, nil
}

// Frames returns the animation following the palette. Each entry is a
// duration and the in-bank address of a frame map.
func (d *DNA) Frames() ([]Frame, error) {
	pc, err := d.paletteAddress().Pak()
	if err != nil {
		return nil, err
	}
	pc += paletteSize * 2

	var frames []Frame
	for i := 0; i < maxFrames; i, pc = i+1, pc+indexSize {
		b, err := d.img.Read(pc, indexSize)
		if err != nil {
			return nil, err
		}
		if bytes.Equal(b[0:2], endMarker) || bytes.Equal(b[2:4], endMarker) {
			return frames, nil
		}

		at, err := rom.NewAddress(d.Bank, binary.LittleEndian.Uint16(b[2:4])).Pak()
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		parts, err := framemap.Read(d.img, at)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}

		frames = append(frames, Frame{
			Duration: binary.LittleEndian.Uint16(b[0:2]),
			Parts:    parts,
		})
	}
	return nil, fmt.Errorf("%w: after %d frames", ErrUnterminated, maxFrames)
}

// Tiles decodes the enemy's graphics
func (d *DNA) Tiles() ([]bitplane.Tile, error) {
	b, err := d.img.ReadAt(d.Graphics, int(d.Size))
	if err != nil {
		return nil, err
	}
	return bitplane.Decode(b)
}

// Composite returns every frame of the animation painted with the enemy's
// graphics
func (d *DNA) Composite() ([]*framemap.Frame, error) {
	frames, err := d.Frames()
	if err != nil {
		return nil, err
	}

	tiles, err := d.Tiles()
	if err != nil {
		return nil, err
	}

	composited := make([]*framemap.Frame, 0, len(frames))
	for i, f := range frames {
		c, err := framemap.Composite(f.Parts, tiles, f.Duration)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		composited = append(composited, c)
	}
	return composited, nil
}
