package smsprite

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"image/gif"
	"path/filepath"
	"testing"

	"github.com/bodgit/smsprite/checksum"
	"github.com/bodgit/smsprite/controller"
	"github.com/bodgit/smsprite/internal/romtest"
	"github.com/bodgit/smsprite/machine"
	"github.com/bodgit/smsprite/pose"
	"github.com/bodgit/smsprite/posetable"
	"github.com/bodgit/smsprite/rom"
	"github.com/bodgit/smsprite/samus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ids = []int{0x09, 0x02, 0x01}

func newLibrary(t *testing.T) (*Library, *PoseDB) {
	db, err := NewPoseDB(filepath.Join(t.TempDir(), "poses.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})
	return New(db, nil), db
}

func sequential(t *testing.T) *pose.Table {
	img := romtest.Samus().Image()
	table := pose.NewTable()
	for _, id := range []int{0x01, 0x02, 0x09} {
		_, err := samus.BuildPose(img, id, samus.Name(id), table)
		require.NoError(t, err)
	}
	return table
}

func equalTables(t *testing.T, want, got pose.Repository, poses []int, frames int) {
	for i := 0; i < frames; i++ {
		assert.Equal(t, want.Frame(i), got.Frame(i), "frame %d", i)
	}

	for _, id := range poses {
		w, _ := want.Pose(id)
		p, ok := got.Pose(id)
		require.True(t, ok, "pose 0x%02X", id)
		assert.Equal(t, w.Name, p.Name)
		assert.Equal(t, w.Terminator, p.Terminator)
		require.Equal(t, w.Len(), p.Len())
		for i := range w.Frames {
			assert.Equal(t, w.Frames[i], p.Frames[i])
			assert.Equal(t, w.Durations[i], p.Durations[i])
		}
		require.Equal(t, len(w.Transitions), len(p.Transitions))
		for i := range w.Transitions {
			assert.Equal(t, w.Transitions[i], p.Transitions[i])
		}
	}
}

func TestExtract(t *testing.T) {
	l, _ := newLibrary(t)
	want := sequential(t)

	for _, workers := range []int{0, 1, 3, DefaultWorkers} {
		got, err := l.Extract(context.Background(), romtest.Samus().Image(), ids, workers)
		require.NoError(t, err)
		assert.Equal(t, want.IDs(), got.IDs())
		require.Equal(t, want.Frames(), got.Frames())
		equalTables(t, want, got, want.IDs(), want.Frames())
	}
}

func TestExtractError(t *testing.T) {
	l, _ := newLibrary(t)
	img := romtest.Samus().Put(0x96000, 0x0D).Image()

	for _, workers := range []int{1, 3} {
		_, err := l.Extract(context.Background(), img, ids, workers)
		require.Error(t, err)
		assert.True(t, errors.Is(err, samus.ErrDMATable))
	}
}

func TestExtractCancel(t *testing.T) {
	l, _ := newLibrary(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := l.Extract(ctx, romtest.Samus().Image(), ids, 2)
	assert.Equal(t, context.Canceled, err)
}

func TestPoseDB(t *testing.T) {
	l, db := newLibrary(t)
	img := romtest.Samus().Image()

	crc, err := l.Import(context.Background(), img, ids, 2)
	require.NoError(t, err)
	assert.Equal(t, img.CRC32(), crc)

	// Importing twice replaces rather than duplicates
	_, err = l.Import(context.Background(), img, ids, 2)
	require.NoError(t, err)

	crcs, err := db.ROMs()
	require.NoError(t, err)
	assert.Equal(t, []string{crc}, crcs)

	r, err := db.ROM(crc)
	require.NoError(t, err)
	assert.Equal(t, 3, r.Poses)
	assert.Equal(t, 3, r.Frames)
	assert.False(t, r.Valid)
	assert.Equal(t, img.Checksum(), r.Checksum)
	palette, err := samus.Palette(img)
	require.NoError(t, err)
	assert.Equal(t, palette, r.Palette)

	want := sequential(t)

	got, err := db.Load(crc)
	require.NoError(t, err)
	assert.Equal(t, want.IDs(), got.IDs())
	require.Equal(t, want.Frames(), got.Frames())
	equalTables(t, want, got, want.IDs(), want.Frames())

	require.NoError(t, db.Use(crc))
	equalTables(t, want, db, want.IDs(), want.Frames())

	_, ok := db.Pose(0x03)
	assert.False(t, ok)
	assert.Nil(t, db.Frame(3))
}

func TestImportChecksum(t *testing.T) {
	l, db := newLibrary(t)

	// A 24 Mbit image carrying a correct header checksum
	b := append(romtest.Samus().Bytes(), make([]byte, 1<<20)...)
	b[len(b)-1] = 0x42
	binary.LittleEndian.PutUint16(b[0x7fdc:], 0)
	binary.LittleEndian.PutUint16(b[0x7fde:], 0)
	sum := checksum.Checksum(b) + 0x1fe
	binary.LittleEndian.PutUint16(b[0x7fdc:], ^sum)
	binary.LittleEndian.PutUint16(b[0x7fde:], sum)

	crc, err := l.Import(context.Background(), rom.New(b), ids, 2)
	require.NoError(t, err)

	r, err := db.ROM(crc)
	require.NoError(t, err)
	assert.True(t, r.Valid)
	assert.Equal(t, sum, r.Checksum)
}

func TestPoseDBUnknown(t *testing.T) {
	_, db := newLibrary(t)

	_, err := db.Load("00000000")
	assert.True(t, errors.Is(err, ErrUnknownROM))

	_, err = db.ROM("00000000")
	assert.True(t, errors.Is(err, ErrUnknownROM))

	assert.True(t, errors.Is(db.Use("00000000"), ErrUnknownROM))

	_, ok := db.Pose(0x01)
	assert.False(t, ok)
}

func TestPoseDBMachine(t *testing.T) {
	l, db := newLibrary(t)

	crc, err := l.Import(context.Background(), romtest.Samus().Image(), ids, 1)
	require.NoError(t, err)
	require.NoError(t, db.Use(crc))

	m, err := machine.New(0x02, db)
	require.NoError(t, err)

	f, d, err := m.Next()
	require.NoError(t, err)
	assert.Equal(t, 0x01, m.PoseID())
	assert.Equal(t, uint8(4), d)
	assert.Equal(t, uint16(8), f.Width)

	assert.True(t, m.Input(controller.Right|controller.Jump))
	assert.Equal(t, "moving_right_not_aiming", m.PoseName())
}

func TestExport(t *testing.T) {
	l, _ := newLibrary(t)

	crc, err := l.Import(context.Background(), romtest.Samus().Image(), ids, 2)
	require.NoError(t, err)

	b := new(bytes.Buffer)
	require.NoError(t, l.Export(crc, b))

	table := posetable.New()
	require.NoError(t, table.UnmarshalBinary(b.Bytes()))
	assert.Equal(t, crc, table.Source)

	want := sequential(t)
	equalTables(t, want, table, want.IDs(), want.Frames())
}

func TestGIF(t *testing.T) {
	l, _ := newLibrary(t)

	crc, err := l.Import(context.Background(), romtest.Samus().Image(), ids, 2)
	require.NoError(t, err)

	b := new(bytes.Buffer)
	require.NoError(t, l.GIF(crc, 0x01, 1, b))

	g, err := gif.DecodeAll(b)
	require.NoError(t, err)
	assert.Len(t, g.Image, 2)
	assert.Equal(t, []int{6, 10}, g.Delay)

	assert.Error(t, l.GIF(crc, 0x03, 1, new(bytes.Buffer)))
	assert.Error(t, l.GIF(crc, 0x02, 1, new(bytes.Buffer)))
	assert.Error(t, l.GIF("00000000", 0x01, 1, new(bytes.Buffer)))
}

func TestColours(t *testing.T) {
	colours := []uint16{0x0000, 0x7fff, 0x1234}
	b := encodeColours(colours)
	assert.Equal(t, []byte{0x00, 0x00, 0xff, 0x7f, 0x34, 0x12}, b)
	assert.Equal(t, colours, decodeColours(b))
	assert.Empty(t, encodeColours(nil))
}
