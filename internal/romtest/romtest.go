/*
Package romtest builds small synthetic cartridge images holding a handful of
player poses and one enemy, laid out at the same addresses a real image
uses.

Player poses:

	0x01  two frames, Backtrack(1), Right|Jump -> 0x09
	0x02  no frames, TransitionTo(0x01)
	0x09  one frame, Loop

Frame 0 of pose 0x01 and the only frame of pose 0x09 are a single 8x8 tile
of colour 1. Frame 1 of pose 0x01 is 16x16: colour 3 top left, colour 4 top
right, colour 2 bottom left and transparent bottom right.

The enemy at EnemyDNA is named "EBI" and has two 8x8 frames centred on the
origin, the second flipped horizontally.
*/
package romtest

import (
	"encoding/binary"

	"github.com/bodgit/smsprite/rom"
)

// Size is the size of the built image
const Size = 0x200000

// EnemyDNA is the address of the enemy's DNA
const EnemyDNA rom.Address = 0xA0E63F

// Builder writes into a zero filled image
type Builder struct {
	b []byte
}

// NewBuilder returns a Builder for an empty image
func NewBuilder() *Builder {
	return &Builder{b: make([]byte, Size)}
}

// Put writes data at flat offset pc
func (b *Builder) Put(pc int, data ...byte) *Builder {
	copy(b.b[pc:], data)
	return b
}

// PutUint16 writes the little-endian values at flat offset pc
func (b *Builder) PutUint16(pc int, values ...uint16) *Builder {
	for i, v := range values {
		binary.LittleEndian.PutUint16(b.b[pc+i*2:], v)
	}
	return b
}

// Bytes returns the image
func (b *Builder) Bytes() []byte {
	return b.b
}

// Image returns the image wrapped for reading
func (b *Builder) Image() *rom.Image {
	return rom.New(b.b)
}

// SolidTile returns a packed 4bpp tile with every pixel set to v
func SolidTile(v byte) []byte {
	t := make([]byte, 32)
	for y := 0; y < 8; y++ {
		for plane := 0; plane < 4; plane++ {
			if v&(1<<uint(plane)) == 0 {
				continue
			}
			t[(plane>>1)*16+y*2+plane&1] = 0xFF
		}
	}
	return t
}

func pc(a rom.Address) int {
	return a.ToPC()
}

// Samus returns a builder holding the player poses and palette
func Samus() *Builder {
	b := NewBuilder()

	// Durations and terminators
	b.PutUint16(pc(0x91B010)+0x01*2, 0xC000)
	b.PutUint16(pc(0x91B010)+0x02*2, 0xC020)
	b.PutUint16(pc(0x91B010)+0x09*2, 0xC010)
	b.Put(pc(0x91C000), 4, 6, 0xFE, 0x01)
	b.Put(pc(0x91C010), 8, 0xFF)
	b.Put(pc(0x91C020), 0xFD, 0x01)

	// Transitions
	b.PutUint16(pc(0x919EE2)+0x01*2, 0xD000)
	b.PutUint16(pc(0x919EE2)+0x02*2, 0xD100)
	b.PutUint16(pc(0x919EE2)+0x09*2, 0xD100)
	b.PutUint16(pc(0x91D000), 0x0100, 0x0080, 0x0009, 0xFFFF)
	b.PutUint16(pc(0x91D100), 0xFFFF)

	// Frame map pointer lists, relative to the tilemap base in words
	b.PutUint16(pc(0x929263)+0x01*2, 0x1000)
	b.PutUint16(pc(0x929263)+0x09*2, 0x1000)
	b.PutUint16(pc(0x92945D)+0x01*2, 0x1010)
	b.PutUint16(pc(0x92945D)+0x09*2, 0x1010)
	b.PutUint16(pc(0x92808D)+0x1000*2, 0x9000, 0x9000)
	b.PutUint16(pc(0x92808D)+0x1010*2, 0x0000, 0x9010)

	// Frame maps, relative to the frame map base
	b.PutUint16(pc(0x918000)+0x9000, 1)
	b.Put(pc(0x918000)+0x9002, 0x00, 0x00, 0x00, 0x00, 0x00)
	b.PutUint16(pc(0x918000)+0x9010, 2)
	b.Put(pc(0x918000)+0x9012,
		0x08, 0x00, 0x00, 0x10, 0x00,
		0x00, 0x00, 0x08, 0x08, 0x00,
	)

	// Frame progression
	b.PutUint16(pc(0x92D94E)+0x01*2, 0xE000)
	b.PutUint16(pc(0x92D94E)+0x09*2, 0xE000)
	b.Put(pc(0x92E000), 0, 0, 0, 0, 0, 1, 0, 0)

	// DMA tables
	b.PutUint16(pc(0x92D91E), 0xE800)
	b.PutUint16(pc(0x92D938), 0xE900)
	b.Put(pc(0x92E800),
		0x00, 0x80, 0x9B, 0x20, 0x00, 0x00, 0x00,
		0x40, 0x80, 0x9B, 0x20, 0x00, 0x20, 0x00,
	)
	b.Put(pc(0x92E900), 0x00, 0x81, 0x9B, 0x20, 0x00, 0x00, 0x00)

	// Graphics
	b.Put(pc(0x9B8000), SolidTile(1)...)
	b.Put(pc(0x9B8040), SolidTile(3)...)
	b.Put(pc(0x9B8060), SolidTile(4)...)
	b.Put(pc(0x9B8100), SolidTile(2)...)

	// Palette, a grey ramp
	for i := 0; i < 16; i++ {
		b.PutUint16(0xD9400+i*2, uint16(i)*0x0421)
	}

	return b
}

// Enemy adds the enemy to b
func Enemy(b *Builder) *Builder {
	dna := make([]byte, 64)
	binary.LittleEndian.PutUint16(dna[0:], 0x40)
	binary.LittleEndian.PutUint16(dna[2:], 0x9000)
	dna[12] = 0xA0
	binary.LittleEndian.PutUint32(dna[54:], 0x9B8200)
	binary.LittleEndian.PutUint16(dna[62:], 0xC000)
	b.Put(pc(EnemyDNA), dna...)

	for i := 0; i < 16; i++ {
		b.PutUint16(pc(0xA09000)+i*2, uint16(15-i)*0x0421)
	}
	b.PutUint16(pc(0xA09020), 5, 0x9100, 7, 0x9110, 0x80ED, 0x9000)

	b.PutUint16(pc(0xA09100), 1)
	b.Put(pc(0xA09102), 0xFC, 0x00, 0xFC, 0x00, 0x00)
	b.PutUint16(pc(0xA09110), 1)
	b.Put(pc(0xA09112), 0xFC, 0x00, 0xFC, 0x01, 0x40)

	b.Put(pc(0x9B8200), SolidTile(5)...)
	b.Put(pc(0x9B8220), SolidTile(6)...)

	b.Put(pc(0x34C000), 'E', 'B', 'I', 0x20)

	return b
}
