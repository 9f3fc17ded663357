package machine

import (
	"bytes"
	"errors"
	"log"
	"testing"

	"github.com/bodgit/smsprite/controller"
	"github.com/bodgit/smsprite/framemap"
	"github.com/bodgit/smsprite/pose"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPose struct {
	id          int
	frames      int
	term        pose.Terminator
	transitions []pose.Transition
}

// newTable builds a table where every frame is 1x1 and its single pixel is
// the frame index
func newTable(t *testing.T, poses ...testPose) *pose.Table {
	table := pose.NewTable()
	for _, tp := range poses {
		frames := make([]int, tp.frames)
		durations := make([]uint8, tp.frames)
		for i := range frames {
			frames[i] = table.AddFrame(framemap.Frame{
				Buffer:   []byte{byte(table.Frames())},
				Width:    1,
				Height:   1,
				Duration: uint16(tp.id),
			})
			durations[i] = uint8(i + 1)
		}
		p, err := pose.New(tp.id, "", frames, durations, tp.term, tp.transitions)
		require.NoError(t, err)
		require.NoError(t, table.Add(p))
	}
	return table
}

func TestNew(t *testing.T) {
	table := newTable(t, testPose{id: 0x00, frames: 1})

	m, err := New(0x00, table)
	require.NoError(t, err)
	assert.Equal(t, 0x00, m.PoseID())
	assert.Equal(t, controller.Empty, m.CurrentInput())

	_, err = New(0x01, table)
	assert.True(t, errors.Is(err, ErrPoseNotFound))
}

func TestInput(t *testing.T) {
	table := newTable(t,
		testPose{id: 0x00, frames: 1, transitions: []pose.Transition{{Input: controller.Right, To: 0x09}}},
		testPose{id: 0x09, frames: 3},
	)

	m, err := New(0x00, table)
	require.NoError(t, err)

	assert.True(t, m.Input(controller.Right))
	assert.Equal(t, 0x09, m.PoseID())
	assert.Equal(t, controller.Right, m.CurrentInput())

	// Same input again does nothing
	assert.False(t, m.Input(controller.Right))
	assert.Equal(t, 0x09, m.PoseID())

	// No transition, but the input is still recorded
	assert.False(t, m.Input(controller.Left))
	assert.Equal(t, 0x09, m.PoseID())
	assert.Equal(t, controller.Left, m.CurrentInput())
}

func TestInputExact(t *testing.T) {
	table := newTable(t,
		testPose{id: 0x00, frames: 1, transitions: []pose.Transition{{Input: controller.Right, To: 0x09}}},
		testPose{id: 0x09, frames: 1},
	)

	m, err := New(0x00, table)
	require.NoError(t, err)

	assert.False(t, m.Input(controller.Right|controller.Jump))
	assert.Equal(t, 0x00, m.PoseID())
}

func TestInputSelf(t *testing.T) {
	table := newTable(t,
		testPose{id: 0x01, frames: 2, transitions: []pose.Transition{{Input: controller.Right, To: 0x01}}},
	)

	m, err := New(0x01, table)
	require.NoError(t, err)

	f, _, err := m.Next()
	require.NoError(t, err)
	assert.Equal(t, []byte{0}, f.Buffer)

	assert.False(t, m.Input(controller.Right))

	// The pose was not restarted
	f, _, err = m.Next()
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, f.Buffer)
}

func TestInputMissing(t *testing.T) {
	table := newTable(t,
		testPose{id: 0x00, frames: 1, transitions: []pose.Transition{{Input: controller.Right, To: 0x09}}},
	)

	m, err := New(0x00, table)
	require.NoError(t, err)

	assert.False(t, m.Input(controller.Right))
	assert.Equal(t, 0x00, m.PoseID())
}

func TestNext(t *testing.T) {
	table := newTable(t,
		testPose{id: 0x01, frames: 2, term: pose.Terminator{Kind: pose.TransitionTo, Arg: 0x02}},
		testPose{id: 0x02, frames: 1},
	)

	m, err := New(0x01, table)
	require.NoError(t, err)

	var got []byte
	var durations []uint8
	for i := 0; i < 4; i++ {
		f, d, err := m.Next()
		require.NoError(t, err)
		got = append(got, f.Buffer[0])
		durations = append(durations, d)
	}
	assert.Equal(t, []byte{0, 1, 2, 2}, got)
	assert.Equal(t, []uint8{1, 2, 1, 1}, durations)
	assert.Equal(t, 0x02, m.PoseID())
}

func TestNextHeldInput(t *testing.T) {
	table := newTable(t,
		testPose{id: 0x01, frames: 1, term: pose.Terminator{Kind: pose.TransitionTo, Arg: 0x02}},
		testPose{id: 0x02, frames: 1, transitions: []pose.Transition{{Input: controller.Jump, To: 0x03}}},
		testPose{id: 0x03, frames: 1},
	)

	m, err := New(0x01, table)
	require.NoError(t, err)

	// Pose 0x01 has no transition for Jump
	assert.False(t, m.Input(controller.Jump))

	f, _, err := m.Next()
	require.NoError(t, err)
	assert.Equal(t, []byte{0}, f.Buffer)

	// Pose 0x01 ends, 0x02 takes over and Jump is still held
	f, _, err = m.Next()
	require.NoError(t, err)
	assert.Equal(t, 0x03, m.PoseID())
	assert.Equal(t, []byte{2}, f.Buffer)
}

func TestNextMissing(t *testing.T) {
	table := newTable(t,
		testPose{id: 0x01, frames: 1, term: pose.Terminator{Kind: pose.TransitionTo, Arg: 0x7F}},
	)

	m, err := New(0x01, table)
	require.NoError(t, err)

	_, _, err = m.Next()
	require.NoError(t, err)

	_, _, err = m.Next()
	assert.True(t, errors.Is(err, ErrPoseNotFound))
	assert.Equal(t, 0x01, m.PoseID())
}

func TestNextLoop(t *testing.T) {
	table := newTable(t,
		testPose{id: 0x01, term: pose.Terminator{Kind: pose.TransitionTo, Arg: 0x02}},
		testPose{id: 0x02, term: pose.Terminator{Kind: pose.TransitionTo, Arg: 0x01}},
	)

	m, err := New(0x01, table)
	require.NoError(t, err)

	_, _, err = m.Next()
	assert.True(t, errors.Is(err, ErrTransitionLoop))
}

func TestGoto(t *testing.T) {
	table := newTable(t,
		testPose{id: 0x01, frames: 2},
		testPose{id: 0x02, frames: 1},
	)

	m, err := New(0x01, table)
	require.NoError(t, err)

	assert.True(t, m.Goto(0x02))
	assert.Equal(t, 0x02, m.PoseID())
	assert.False(t, m.Goto(0x03))
	assert.Equal(t, 0x02, m.PoseID())

	// Goto restarts the pose
	assert.True(t, m.Goto(0x01))
	f, _, err := m.Next()
	require.NoError(t, err)
	assert.Equal(t, []byte{0}, f.Buffer)
}

func TestFallLand(t *testing.T) {
	table := newTable(t,
		testPose{id: 0x01, frames: 1},
		testPose{id: 0x27, frames: 1},
		testPose{id: 0x29, frames: 1},
		testPose{id: 0xA4, frames: 1},
	)

	m, err := New(0x01, table)
	require.NoError(t, err)

	assert.False(t, m.Land())
	assert.True(t, m.Fall())
	assert.Equal(t, 0x29, m.PoseID())
	assert.False(t, m.Fall())
	assert.True(t, m.Land())
	assert.Equal(t, 0xA4, m.PoseID())

	assert.True(t, m.Goto(0x27))
	assert.False(t, m.Fall())
	assert.Equal(t, 0x27, m.PoseID())
}

func TestWithLogger(t *testing.T) {
	table := newTable(t,
		testPose{id: 0x00, frames: 1, transitions: []pose.Transition{{Input: controller.Right, To: 0x09}}},
		testPose{id: 0x09, frames: 1},
	)

	buf := new(bytes.Buffer)
	m, err := New(0x00, table, WithLogger(log.New(buf, "", 0)))
	require.NoError(t, err)

	assert.True(t, m.Input(controller.Right))
	assert.Contains(t, buf.String(), "input: pose 0x00")
	assert.Contains(t, buf.String(), "0x09")
}
