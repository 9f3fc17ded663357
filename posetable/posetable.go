/*
Package posetable implements a compact binary encoding of a decoded pose
table, suitable for writing next to a program or embedding in it so poses do
not need decoding from a cartridge image at runtime.

All values are little-endian. The file starts with a fixed header, followed
by every frame, then every pose, and ends with a 16-bit additive checksum of
everything before it. Pose names are stored in a fixed width field padded
with 0xFF.
*/
package posetable

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/bodgit/smsprite/checksum"
	"github.com/bodgit/smsprite/controller"
	"github.com/bodgit/smsprite/framemap"
	"github.com/bodgit/smsprite/pose"
)

const (
	// Filename is the default filename used when writing to disk
	Filename = "poses.bin"

	version    = 1
	maxPoses   = 256
	nameLength = 64
	sourceSize = 8
)

var magic = [4]byte{'S', 'M', 'P', 'T'}

var (
	errMagic    = errors.New("posetable: bad magic")
	errVersion  = errors.New("posetable: unsupported version")
	errChecksum = errors.New("posetable: checksum mismatch")
	errShort    = errors.New("posetable: insufficient data")
	errKind     = errors.New("posetable: unknown terminator kind")
)

type header struct {
	Magic   [4]byte
	Version uint8
	Source  [sourceSize]byte
	Frames  uint32
	Poses   uint16
}

type frameHeader struct {
	Width    uint16
	Height   uint16
	ZeroX    uint16
	ZeroY    uint16
	Duration uint16
}

type poseHeader struct {
	ID          uint8
	Name        [nameLength]byte
	Kind        uint8
	Arg         uint8
	Frames      uint16
	Transitions uint8
}

type transition struct {
	Input uint16
	To    uint8
}

// Table is a pose table that implements the encoding.BinaryMarshaler and
// encoding.BinaryUnmarshaler interfaces. Source records the CRC-32 of the
// cartridge image the poses were decoded from.
type Table struct {
	*pose.Table
	Source string
}

var _ pose.Repository = (*Table)(nil)

// New returns an empty table
func New() *Table {
	return &Table{
		Table: pose.NewTable(),
	}
}

// Wrap returns a table for encoding t
func Wrap(t *pose.Table, source string) *Table {
	return &Table{
		Table:  t,
		Source: source,
	}
}

func padName(name string) ([nameLength]byte, error) {
	var b [nameLength]byte
	if len(name) > nameLength {
		return b, fmt.Errorf("posetable: name %q longer than %d bytes", name, nameLength)
	}
	copy(b[:], bytes.Repeat([]byte{0xff}, nameLength))
	copy(b[:], name)
	return b, nil
}

// unpad returns b up to the first 0xFF
func unpad(b []byte) string {
	if i := bytes.IndexByte(b, 0xff); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}

// MarshalBinary encodes the table into binary form and returns the result
func (t *Table) MarshalBinary() ([]byte, error) {
	ids := t.IDs()
	if len(ids) > maxPoses {
		return nil, fmt.Errorf("posetable: more than %d poses", maxPoses)
	}

	h := header{
		Magic:   magic,
		Version: version,
		Frames:  uint32(t.Frames()),
		Poses:   uint16(len(ids)),
	}
	copy(h.Source[:], bytes.Repeat([]byte{0xff}, sourceSize))
	copy(h.Source[:], t.Source)

	b := new(bytes.Buffer)

	if err := binary.Write(b, binary.LittleEndian, &h); err != nil {
		return nil, err
	}

	// Write out frames
	for i := 0; i < t.Frames(); i++ {
		f := t.Frame(i)
		fh := frameHeader{
			Width:    f.Width,
			Height:   f.Height,
			ZeroX:    f.ZeroX,
			ZeroY:    f.ZeroY,
			Duration: f.Duration,
		}
		if err := binary.Write(b, binary.LittleEndian, &fh); err != nil {
			return nil, err
		}
		if _, err := b.Write(f.Buffer); err != nil {
			return nil, err
		}
	}

	// Write out poses
	for _, id := range ids {
		p, _ := t.Pose(id)
		name, err := padName(p.Name)
		if err != nil {
			return nil, err
		}
		ph := poseHeader{
			ID:          uint8(p.ID),
			Name:        name,
			Kind:        uint8(p.Terminator.Kind),
			Arg:         p.Terminator.Arg,
			Frames:      uint16(p.Len()),
			Transitions: uint8(len(p.Transitions)),
		}
		if err := binary.Write(b, binary.LittleEndian, &ph); err != nil {
			return nil, err
		}

		frames := make([]uint32, len(p.Frames))
		for i, f := range p.Frames {
			frames[i] = uint32(f)
		}
		if err := binary.Write(b, binary.LittleEndian, frames); err != nil {
			return nil, err
		}
		if _, err := b.Write(p.Durations); err != nil {
			return nil, err
		}

		for _, tr := range p.Transitions {
			if err := binary.Write(b, binary.LittleEndian, &transition{Input: tr.Input.Bits(), To: uint8(tr.To)}); err != nil {
				return nil, err
			}
		}
	}

	// Trailing checksum
	sum := checksum.Checksum(b.Bytes())
	if err := binary.Write(b, binary.LittleEndian, &sum); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

func read(r io.Reader, v interface{}) error {
	if err := binary.Read(r, binary.LittleEndian, v); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return errShort
		}
		return err
	}
	return nil
}

// UnmarshalBinary decodes the table from binary form
func (t *Table) UnmarshalBinary(b []byte) error {
	if len(b) < checksum.Size {
		return errShort
	}
	body := b[:len(b)-checksum.Size]
	if sum := binary.LittleEndian.Uint16(b[len(body):]); sum != checksum.Checksum(body) {
		return errChecksum
	}

	r := bytes.NewReader(body)

	var h header
	if err := read(r, &h); err != nil {
		return err
	}
	if h.Magic != magic {
		return errMagic
	}
	if h.Version != version {
		return fmt.Errorf("%w: %d", errVersion, h.Version)
	}

	table := pose.NewTable()

	for i := uint32(0); i < h.Frames; i++ {
		var fh frameHeader
		if err := read(r, &fh); err != nil {
			return err
		}
		if int(fh.Width)*int(fh.Height) > r.Len() {
			return errShort
		}
		f := framemap.Frame{
			Buffer:   make([]byte, int(fh.Width)*int(fh.Height)),
			Width:    fh.Width,
			Height:   fh.Height,
			ZeroX:    fh.ZeroX,
			ZeroY:    fh.ZeroY,
			Duration: fh.Duration,
		}
		if _, err := io.ReadFull(r, f.Buffer); err != nil {
			return errShort
		}
		table.AddFrame(f)
	}

	for i := uint16(0); i < h.Poses; i++ {
		var ph poseHeader
		if err := read(r, &ph); err != nil {
			return err
		}
		if int(ph.Frames)*5 > r.Len() {
			return errShort
		}
		if pose.Kind(ph.Kind) > pose.Stop {
			return fmt.Errorf("%w: pose 0x%02X", errKind, ph.ID)
		}

		frames32 := make([]uint32, ph.Frames)
		if err := read(r, frames32); err != nil {
			return err
		}
		frames := make([]int, len(frames32))
		for j, f := range frames32 {
			frames[j] = int(f)
		}

		durations := make([]uint8, ph.Frames)
		if _, err := io.ReadFull(r, durations); err != nil {
			return errShort
		}

		transitions := make([]pose.Transition, 0, ph.Transitions)
		for j := uint8(0); j < ph.Transitions; j++ {
			var tr transition
			if err := read(r, &tr); err != nil {
				return err
			}
			transitions = append(transitions, pose.Transition{
				Input: controller.FromBitsTruncate(tr.Input),
				To:    int(tr.To),
			})
		}

		p, err := pose.New(int(ph.ID), unpad(ph.Name[:]), frames, durations, pose.Terminator{Kind: pose.Kind(ph.Kind), Arg: ph.Arg}, transitions)
		if err != nil {
			return err
		}
		if err := table.Add(p); err != nil {
			return err
		}
	}

	if r.Len() != 0 {
		return fmt.Errorf("posetable: %d trailing bytes", r.Len())
	}

	t.Table = table
	t.Source = unpad(h.Source[:])

	return nil
}
