package rom

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressToPC(t *testing.T) {
	tables := []struct {
		address Address
		pc      int
	}{
		{0x808000, 0x000000},
		{0x008000, 0x000000},
		{0x918000, 0x088000},
		{0x91B010, 0x08B010},
		{0x92808D, 0x09008D},
		{0x92D94E, 0x09594E},
		{0xA0E63F, 0x10663F},
		{0x9B8000, 0x0D8000},
	}

	for _, table := range tables {
		t.Run(table.address.String(), func(t *testing.T) {
			assert.Equal(t, table.pc, table.address.ToPC())
		})
	}
}

func TestAddressUnmapped(t *testing.T) {
	a := NewAddress(0x91, 0x1234)

	_, err := a.Pak()
	assert.True(t, errors.Is(err, ErrUnmapped))
	assert.Equal(t, -1, a.ToPC())

	img := New(make([]byte, 0x100000))
	_, err = img.ReadAt(a, 2)
	assert.True(t, errors.Is(err, ErrUnmapped))
	assert.Contains(t, err.Error(), "$91:1234")

	_, err = img.Read(a.ToPC(), 2)
	assert.True(t, errors.Is(err, ErrOutOfRange))

	b, err := img.ReadAt(0x918000, 2)
	require.NoError(t, err)
	assert.Len(t, b, 2)
}

func TestNewAddress(t *testing.T) {
	a := NewAddress(0x91, 0xB010)
	assert.Equal(t, Address(0x91B010), a)
	assert.Equal(t, uint8(0x91), a.Bank())
	assert.Equal(t, uint16(0xB010), a.Offset())
	assert.Equal(t, "$91:B010", a.String())
	assert.Equal(t, Address(0x910005), NewAddress(0x91, 0xFFFF).Add(6))
}

func TestImageRead(t *testing.T) {
	img := New([]byte{0x34, 0x12, 0x56, 'S', 'A', 'M', ' ', 'X'})

	v, err := img.Uint16(0)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), v)

	v24, err := img.Uint24(0)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x561234), v24)

	s, err := img.String(3, 5)
	require.NoError(t, err)
	assert.Equal(t, "SAM", s)

	_, err = img.Read(6, 3)
	assert.True(t, errors.Is(err, ErrOutOfRange))

	_, err = img.Read(-1, 1)
	assert.True(t, errors.Is(err, ErrOutOfRange))

	_, err = img.ReadAt(0x808010, 1)
	assert.True(t, errors.Is(err, ErrOutOfRange))
}

func TestLoad(t *testing.T) {
	raw := make([]byte, 0x8000)
	raw[0] = 0xAA

	img, err := Load(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 0x8000, img.Len())
	assert.Equal(t, byte(0xAA), img.Bytes()[0])

	headered := append(make([]byte, copierHeader), raw...)
	img2, err := Load(bytes.NewReader(headered))
	require.NoError(t, err)
	assert.Equal(t, 0x8000, img2.Len())
	assert.Equal(t, img.CRC32(), img2.CRC32())
	assert.Len(t, img.CRC32(), 8)
	assert.Equal(t, uint16(0xAA), img.Checksum())
	assert.Equal(t, img.Checksum(), img2.Checksum())

	_, err = Load(bytes.NewReader(raw[:100]))
	assert.Error(t, err)
}
