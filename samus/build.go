package samus

import (
	"fmt"

	"github.com/bodgit/smsprite/framemap"
	"github.com/bodgit/smsprite/pose"
	"github.com/bodgit/smsprite/rom"
)

// PaletteSize is the number of colours in the sprite palette
const PaletteSize = 16

// BuildPose decodes every frame of pose id into table and adds the pose to it
func BuildPose(img *rom.Image, id int, name string, table *pose.Table) (*pose.Pose, error) {
	p, err := buildPose(img, id, name, table)
	if err != nil {
		return nil, fmt.Errorf("decoding pose 0x%02X: %w", id, err)
	}
	return p, nil
}

func buildPose(img *rom.Image, id int, name string, table *pose.Table) (*pose.Pose, error) {
	durations, term, err := Sequence(img, id)
	if err != nil {
		return nil, err
	}

	transitions, err := Transitions(img, id)
	if err != nil {
		return nil, err
	}

	n := len(durations)

	maps, err := Tilemaps(img, id, n)
	if err != nil {
		return nil, err
	}

	graphics, err := Graphics(img, id, n)
	if err != nil {
		return nil, err
	}

	frames := make([]framemap.Frame, n)
	for i := range frames {
		f, err := framemap.Composite(maps[i], graphics[i], uint16(durations[i]))
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		frames[i] = *f
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = table.Frames() + i
	}

	p, err := pose.New(id, name, indices, durations, term, transitions)
	if err != nil {
		return nil, err
	}

	for _, f := range frames {
		table.AddFrame(f)
	}
	if err := table.Add(p); err != nil {
		return nil, err
	}

	return p, nil
}

// Palette returns the sprite's 16 BGR555 colours
func Palette(img *rom.Image) ([]uint16, error) {
	palette := make([]uint16, PaletteSize)
	for i := range palette {
		c, err := img.Uint16(PalettePC + i*2)
		if err != nil {
			return nil, err
		}
		palette[i] = c
	}
	return palette, nil
}
