/*
Package rom implements access to a LoROM cartridge image using the banked
addresses seen by the console's CPU.

The image is never written to. Every lookup translates a 24-bit bus address
(bank byte followed by a 16-bit offset) into a flat offset into the image
before reading from it.
*/
package rom

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/alttpo/snes/mapping/lorom"
)

const bankWindow = 0x8000

var (
	// ErrOutOfRange is returned when a read falls outside the image
	ErrOutOfRange = errors.New("rom: read out of range")
	// ErrUnmapped is returned for bus addresses that do not select the
	// cartridge, such as the lower half of a bank
	ErrUnmapped = errors.New("rom: address not mapped to the image")
)

// Address is a 24-bit banked bus address, the bank in the upper byte
type Address uint32

// NewAddress builds an Address from a bank and an in-bank offset
func NewAddress(bank uint8, offset uint16) Address {
	return Address(uint32(bank)<<16 | uint32(offset))
}

// Bank returns the bank byte
func (a Address) Bank() uint8 {
	return uint8(a >> 16)
}

// Offset returns the in-bank offset
func (a Address) Offset() uint16 {
	return uint16(a)
}

// Add returns the address n bytes further on without carrying into the bank
func (a Address) Add(n uint16) Address {
	return a&0xff0000 | Address(a.Offset()+n)
}

// Pak translates the address to a flat offset into the image. Each bank
// maps 32 KiB of the image into its upper half; the mirror bit of the bank is
// ignored.
func (a Address) Pak() (int, error) {
	pak, err := lorom.BusAddressToPak(uint32(a))
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrUnmapped, a, err)
	}
	return int(pak), nil
}

// ToPC is Pak for addresses known to be mapped, such as fixed table
// locations. An unmapped address returns -1, which every read rejects.
func (a Address) ToPC() int {
	pc, err := a.Pak()
	if err != nil {
		return -1
	}
	return pc
}

func (a Address) String() string {
	return fmt.Sprintf("$%02X:%04X", a.Bank(), a.Offset())
}

// Image is a read-only cartridge image
type Image struct {
	b []byte
}

// New wraps b as an Image. The slice must not be modified afterwards.
func New(b []byte) *Image {
	return &Image{b: b}
}

// Len returns the size of the image in bytes
func (img *Image) Len() int {
	return len(img.b)
}

// Bytes returns the underlying image
func (img *Image) Bytes() []byte {
	return img.b
}

// Read returns n bytes starting at flat offset pc
func (img *Image) Read(pc, n int) ([]byte, error) {
	if pc < 0 || n < 0 || pc+n > len(img.b) {
		return nil, fmt.Errorf("%w: %d bytes at 0x%06X (image is 0x%06X bytes)", ErrOutOfRange, n, pc, len(img.b))
	}
	return img.b[pc : pc+n : pc+n], nil
}

// From returns everything from flat offset pc to the end of the image
func (img *Image) From(pc int) ([]byte, error) {
	if pc < 0 || pc > len(img.b) {
		return nil, fmt.Errorf("%w: offset 0x%06X", ErrOutOfRange, pc)
	}
	return img.b[pc:], nil
}

// ReadAt reads n bytes at the bus address a
func (img *Image) ReadAt(a Address, n int) ([]byte, error) {
	pc, err := a.Pak()
	if err != nil {
		return nil, err
	}
	b, err := img.Read(pc, n)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", a, err)
	}
	return b, nil
}

// Uint16 reads a little-endian 16-bit value at flat offset pc
func (img *Image) Uint16(pc int) (uint16, error) {
	b, err := img.Read(pc, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// Uint24 reads a little-endian 24-bit value at flat offset pc
func (img *Image) Uint24(pc int) (uint32, error) {
	b, err := img.Read(pc, 3)
	if err != nil {
		return 0, err
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16, nil
}

// String reads at most max bytes of text at flat offset pc, stopping at the
// first space or NUL
func (img *Image) String(pc, max int) (string, error) {
	b, err := img.Read(pc, max)
	if err != nil {
		return "", err
	}
	for i, c := range b {
		if c == 0x20 || c == 0x00 {
			return string(b[:i]), nil
		}
	}
	return string(b), nil
}
