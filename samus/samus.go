/*
Package samus implements extraction of the player sprite's poses from a
cartridge image.

Every pose is described by a handful of tables indexed by pose id: a frame
duration sequence ending in an opcode, a list of controller transitions, top
and bottom half frame maps for each frame and the DMA transfers that load
the graphics each frame needs.
*/
package samus

import (
	"errors"
	"fmt"

	"github.com/bodgit/smsprite/controller"
	"github.com/bodgit/smsprite/pose"
	"github.com/bodgit/smsprite/rom"
)

// Table addresses
const (
	DurationTable    rom.Address = 0x91B010
	DurationBase     rom.Address = 0x910000
	TransitionTable  rom.Address = 0x919EE2
	TilemapBase      rom.Address = 0x92808D
	BottomHalfTable  rom.Address = 0x92945D
	TopHalfTable     rom.Address = 0x929263
	FrameMapBase     rom.Address = 0x918000
	ProgressionTable rom.Address = 0x92D94E
	ProgressionBase  rom.Address = 0x920000
	TopDMATable      rom.Address = 0x92D91E
	BottomDMATable   rom.Address = 0x92D938
)

// PalettePC is the flat offset of the 16 colour palette
const PalettePC = 0xD9400

const (
	opcodeFirst    = 0xF0
	transitionSize = 6
	transitionEnd  = 0xFFFF
)

var (
	// ErrOpcode is returned for a sequence opcode with no known meaning
	ErrOpcode = errors.New("samus: unknown sequence opcode")
	// ErrDMATable is returned when a frame selects a DMA table that does
	// not exist
	ErrDMATable = errors.New("samus: DMA table out of range")
)

// lookup reads the 16-bit pointer for pose id from the table at base and
// returns the flat offset it points to within bank
func lookup(img *rom.Image, table, bank rom.Address, id int) (int, error) {
	ptr, err := img.Uint16(table.ToPC() + id*2)
	if err != nil {
		return 0, err
	}
	return bank.Add(ptr).Pak()
}

func terminator(op, arg byte) (pose.Terminator, error) {
	switch op {
	case 0xF0:
		return pose.Terminator{Kind: pose.Stop}, nil
	case 0xFE:
		return pose.Terminator{Kind: pose.Backtrack, Arg: arg}, nil
	case 0xFD, 0xF8:
		return pose.Terminator{Kind: pose.TransitionTo, Arg: arg}, nil
	case 0xF1, 0xF2, 0xF3, 0xF4, 0xF5, 0xF6, 0xF7, 0xF9, 0xFA, 0xFB, 0xFC, 0xFF:
		return pose.Terminator{Kind: pose.Loop}, nil
	default:
		return pose.Terminator{}, fmt.Errorf("%w: 0x%02X", ErrOpcode, op)
	}
}

// Sequence returns the frame durations of pose id and how the pose ends
func Sequence(img *rom.Image, id int) ([]uint8, pose.Terminator, error) {
	pc, err := lookup(img, DurationTable, DurationBase, id)
	if err != nil {
		return nil, pose.Terminator{}, err
	}

	b, err := img.From(pc)
	if err != nil {
		return nil, pose.Terminator{}, err
	}

	for i, c := range b {
		if c < opcodeFirst {
			continue
		}

		var arg byte
		switch c {
		case 0xFE, 0xFD, 0xF8:
			if i+1 >= len(b) {
				return nil, pose.Terminator{}, fmt.Errorf("%w: opcode 0x%02X argument at 0x%06X", rom.ErrOutOfRange, c, pc+i+1)
			}
			arg = b[i+1]
		}

		term, err := terminator(c, arg)
		if err != nil {
			return nil, pose.Terminator{}, fmt.Errorf("sequence at 0x%06X: %w", pc+i, err)
		}

		durations := make([]uint8, i)
		copy(durations, b[:i])
		return durations, term, nil
	}

	return nil, pose.Terminator{}, fmt.Errorf("%w: unterminated sequence at 0x%06X", rom.ErrOutOfRange, pc)
}

// Transitions returns the controller transitions of pose id
func Transitions(img *rom.Image, id int) ([]pose.Transition, error) {
	pc, err := lookup(img, TransitionTable, DurationBase, id)
	if err != nil {
		return nil, err
	}

	var transitions []pose.Transition
	for ; ; pc += transitionSize {
		w0, err := img.Uint16(pc)
		if err != nil {
			return nil, err
		}
		if w0 == transitionEnd {
			return transitions, nil
		}

		b, err := img.Read(pc, transitionSize)
		if err != nil {
			return nil, err
		}
		w1 := uint16(b[2]) | uint16(b[3])<<8

		transitions = append(transitions, pose.Transition{
			Input: controller.FromBitsTruncate(w0 | w1),
			To:    int(b[4]),
		})
	}
}
