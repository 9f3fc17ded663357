/*
Package checksum implements the 16-bit checksum stored in the internal header
of a Super NES cartridge.

The checksum is the sum of every byte in the image truncated to 16 bits. An
image whose size is not a power of two is summed as the console sees it: the
largest power of two that fits, followed by the remainder mirrored until it
is the same size again. A 24 Mbit image therefore counts its last 1 MiB twice.
The header stores the checksum alongside its one's complement so that the two
always sum to 0xFFFF.
*/
package checksum

import (
	"encoding/binary"
	"errors"
	"hash"
	"math/bits"
)

// Size of a checksum in bytes
const Size = 2

const (
	loROMHeader    = 0x7fb0
	complementOffs = 0x7fdc
	checksumOffs   = 0x7fde
)

var errShort = errors.New("checksum: image too short for a LoROM header")

type digest struct {
	n     uint64
	sum   uint16
	marks [64]uint16
}

// New creates a new hash.Hash computing the cartridge checksum. Its Sum
// method will lay the value out in little-endian byte order, as stored in the
// header.
func New() hash.Hash {
	return &digest{}
}

func (d *digest) Size() int { return Size }

func (d *digest) BlockSize() int { return 1 }

func (d *digest) Reset() { *d = digest{} }

func update(sum uint16, p []byte) uint16 {
	for _, b := range p {
		sum += uint16(b)
	}
	return sum
}

func (d *digest) Write(p []byte) (n int, err error) {
	n = len(p)
	for len(p) > 0 {
		// Remember the running sum at every power of two boundary
		next := uint64(1) << bits.Len64(d.n)
		m := uint64(len(p))
		if m > next-d.n {
			m = next - d.n
		}
		d.sum = update(d.sum, p[:m])
		d.n += m
		if d.n == next {
			d.marks[bits.Len64(next)-1] = d.sum
		}
		p = p[m:]
	}
	return n, nil
}

// Sum16 returns the checksum of everything written so far
func (d *digest) Sum16() uint16 {
	if d.n == 0 {
		return 0
	}
	k := bits.Len64(d.n) - 1
	base := uint64(1) << k
	if base == d.n {
		return d.sum
	}
	head := d.marks[k]
	return head + (d.sum-head)*uint16(base/(d.n-base))
}

func (d *digest) Sum(in []byte) []byte {
	s := d.Sum16()
	return append(in, byte(s), byte(s>>8))
}

// Checksum returns the cartridge checksum of data.
func Checksum(data []byte) uint16 {
	d := new(digest)
	_, _ = d.Write(data)
	return d.Sum16()
}

// Header holds the checksum pair read from a LoROM internal header
type Header struct {
	Complement uint16
	Checksum   uint16
}

// Valid reports whether the checksum and its complement agree
func (h Header) Valid() bool {
	return h.Complement^h.Checksum == 0xffff
}

// ReadHeader returns the stored checksum pair of a LoROM image
func ReadHeader(data []byte) (Header, error) {
	if len(data) < loROMHeader+0x50 {
		return Header{}, errShort
	}
	return Header{
		Complement: binary.LittleEndian.Uint16(data[complementOffs:]),
		Checksum:   binary.LittleEndian.Uint16(data[checksumOffs:]),
	}, nil
}

// Verify computes the checksum of data and compares it to the value stored
// in its header
func Verify(data []byte) (bool, error) {
	h, err := ReadHeader(data)
	if err != nil {
		return false, err
	}
	return h.Valid() && h.Checksum == Checksum(data), nil
}
