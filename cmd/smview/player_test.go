package main

import (
	"testing"

	"github.com/bodgit/smsprite/controller"
	"github.com/bodgit/smsprite/internal/romtest"
	"github.com/bodgit/smsprite/machine"
	"github.com/bodgit/smsprite/pose"
	"github.com/bodgit/smsprite/samus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPlayer(t *testing.T) *player {
	img := romtest.Samus().Image()
	table := pose.NewTable()
	for _, id := range []int{0x01, 0x02, 0x09} {
		_, err := samus.BuildPose(img, id, samus.Name(id), table)
		require.NoError(t, err)
	}

	m, err := machine.New(0x01, table)
	require.NoError(t, err)

	return newPlayer(m)
}

func TestPlayerDurations(t *testing.T) {
	p := newTestPlayer(t)

	for i := 0; i < 4; i++ {
		f, err := p.tick(controller.Empty, commandNone)
		require.NoError(t, err)
		assert.Equal(t, uint16(8), f.Width, "tick %d", i)
	}

	for i := 0; i < 6; i++ {
		f, err := p.tick(controller.Empty, commandNone)
		require.NoError(t, err)
		assert.Equal(t, uint16(16), f.Width, "tick %d", i)
	}

	// Backtracks to the second frame
	f, err := p.tick(controller.Empty, commandNone)
	require.NoError(t, err)
	assert.Equal(t, uint16(16), f.Width)
	assert.Equal(t, 0x01, p.m.PoseID())
}

func TestPlayerSwitch(t *testing.T) {
	p := newTestPlayer(t)

	_, err := p.tick(controller.Empty, commandNone)
	require.NoError(t, err)

	f, err := p.tick(controller.Right|controller.Jump, commandNone)
	require.NoError(t, err)
	assert.Equal(t, 0x09, p.m.PoseID())
	assert.Equal(t, uint16(8), f.Width)
	assert.Equal(t, 7, p.remaining)

	// Nothing to fall into, so nothing changes
	_, err = p.tick(controller.Right|controller.Jump, commandFall)
	require.NoError(t, err)
	assert.Equal(t, 0x09, p.m.PoseID())
	assert.Equal(t, 6, p.remaining)
}
