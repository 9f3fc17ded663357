/*
Package pose implements poses, the named animation units a sprite is built
from, and the read-only tables they are looked up in.

A pose is an ordered list of frames with a duration for each, a terminator
saying what happens once the last frame has been shown, and a list of
controller inputs that switch to another pose. Frames are stored once in a
table and poses refer to them by index, so a pose is cheap to copy.
*/
package pose

import (
	"errors"
	"fmt"

	"github.com/bodgit/smsprite/controller"
)

// Kind selects the behaviour of a Terminator
type Kind uint8

// Terminator kinds
const (
	Loop Kind = iota
	Backtrack
	TransitionTo
	Stop
)

func (k Kind) String() string {
	switch k {
	case Loop:
		return "Loop"
	case Backtrack:
		return "Backtrack"
	case TransitionTo:
		return "TransitionTo"
	case Stop:
		return "Stop"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Terminator is applied when a pose runs out of frames. Arg is the number of
// frames to rewind for Backtrack and the destination pose for TransitionTo.
type Terminator struct {
	Kind Kind
	Arg  uint8
}

func (t Terminator) String() string {
	switch t.Kind {
	case Backtrack, TransitionTo:
		return fmt.Sprintf("%s(0x%02X)", t.Kind, t.Arg)
	default:
		return t.Kind.String()
	}
}

// Transition switches to pose To when exactly Input is held
type Transition struct {
	Input controller.Input
	To    int
}

// Next is the result of advancing a pose. When Switch is set the pose has
// finished and the owner should continue with pose Pose, otherwise Frame
// should be shown for Duration ticks.
type Next struct {
	Frame    int
	Duration uint8
	Switch   bool
	Pose     int
}

var (
	errMismatch = errors.New("pose: frame and duration counts differ")
	errEmpty    = errors.New("pose: a pose without frames must transition to another")
	errKind     = errors.New("pose: unknown terminator kind")
)

// Pose is one animation unit. Everything but the cursor is shared read-only
// data.
type Pose struct {
	ID          int
	Name        string
	Frames      []int
	Durations   []uint8
	Terminator  Terminator
	Transitions []Transition

	cursor int
}

// New returns a Pose after checking it can always produce a result
func New(id int, name string, frames []int, durations []uint8, term Terminator, transitions []Transition) (*Pose, error) {
	if term.Kind > Stop {
		return nil, fmt.Errorf("%w: pose 0x%02X ends with %s", errKind, id, term.Kind)
	}
	if len(frames) != len(durations) {
		return nil, fmt.Errorf("%w: pose 0x%02X has %d frames and %d durations", errMismatch, id, len(frames), len(durations))
	}
	if len(frames) == 0 && term.Kind != TransitionTo {
		return nil, fmt.Errorf("%w: pose 0x%02X ends with %s", errEmpty, id, term)
	}
	return &Pose{
		ID:          id,
		Name:        name,
		Frames:      frames,
		Durations:   durations,
		Terminator:  term,
		Transitions: transitions,
	}, nil
}

// Len returns the number of frames
func (p *Pose) Len() int {
	return len(p.Frames)
}

// Cursor returns the position of the next frame
func (p *Pose) Cursor() int {
	return p.cursor
}

// Clone returns a copy of the pose rewound to its first frame. The copy
// shares the read-only slices of p.
func (p *Pose) Clone() *Pose {
	c := *p
	c.cursor = 0
	return &c
}

// Transition returns the destination for exactly input, if there is one
func (p *Pose) Transition(input controller.Input) (int, bool) {
	for _, t := range p.Transitions {
		if t.Input == input {
			return t.To, true
		}
	}
	return 0, false
}

func (p *Pose) emit(i int) Next {
	return Next{Frame: p.Frames[i], Duration: p.Durations[i]}
}

// Next advances the pose by one frame
func (p *Pose) Next() Next {
	if p.cursor < len(p.Frames) {
		n := p.emit(p.cursor)
		p.cursor++
		return n
	}

	switch p.Terminator.Kind {
	case Backtrack:
		p.cursor -= int(p.Terminator.Arg)
		switch {
		case p.cursor < 0:
			p.cursor = 0
		case p.cursor >= len(p.Frames):
			p.cursor = len(p.Frames) - 1
		}
		n := p.emit(p.cursor)
		p.cursor++
		return n
	case Stop:
		return p.emit(len(p.Frames) - 1)
	case TransitionTo:
		return Next{Switch: true, Pose: int(p.Terminator.Arg)}
	default:
		p.cursor = 1
		return p.emit(0)
	}
}
