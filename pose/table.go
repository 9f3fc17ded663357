package pose

import (
	"fmt"
	"sort"

	"github.com/bodgit/smsprite/framemap"
)

// Repository is read-only access to a set of poses and the frames they
// refer to
type Repository interface {
	// Pose returns the pose with the given id. The returned pose must not
	// be advanced; callers Clone it first.
	Pose(id int) (*Pose, bool)
	// Frame returns the frame with the given index
	Frame(i int) *framemap.Frame
}

// Table owns decoded frames and the poses referring to them
type Table struct {
	frames []framemap.Frame
	poses  map[int]*Pose
}

var _ Repository = (*Table)(nil)

// NewTable returns an empty table
func NewTable() *Table {
	return &Table{
		poses: make(map[int]*Pose),
	}
}

// AddFrame stores f and returns its index
func (t *Table) AddFrame(f framemap.Frame) int {
	t.frames = append(t.frames, f)
	return len(t.frames) - 1
}

// Add stores p, replacing any pose with the same id. Every frame p refers to
// must already be in the table.
func (t *Table) Add(p *Pose) error {
	for _, i := range p.Frames {
		if i < 0 || i >= len(t.frames) {
			return fmt.Errorf("pose: pose 0x%02X refers to frame %d of %d", p.ID, i, len(t.frames))
		}
	}
	t.poses[p.ID] = p
	return nil
}

// Merge copies every pose and frame of o into t, renumbering frames
func (t *Table) Merge(o *Table) error {
	base := len(t.frames)
	t.frames = append(t.frames, o.frames...)
	for _, id := range o.IDs() {
		p := o.poses[id].Clone()
		p.Frames = make([]int, len(o.poses[id].Frames))
		for i, f := range o.poses[id].Frames {
			p.Frames[i] = base + f
		}
		if err := t.Add(p); err != nil {
			return err
		}
	}
	return nil
}

// Pose implements Repository
func (t *Table) Pose(id int) (*Pose, bool) {
	p, ok := t.poses[id]
	return p, ok
}

// Frame implements Repository
func (t *Table) Frame(i int) *framemap.Frame {
	return &t.frames[i]
}

// Frames returns the number of stored frames
func (t *Table) Frames() int {
	return len(t.frames)
}

// IDs returns the ids of every stored pose in ascending order
func (t *Table) IDs() []int {
	ids := make([]int, 0, len(t.poses))
	for id := range t.poses {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
