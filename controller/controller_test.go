package controller

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// combinations returns every subset of the named buttons
func combinations() []Input {
	var inputs []Input
	for bits := uint16(0); bits < 1<<12; bits++ {
		inputs = append(inputs, Input(bits<<4))
	}
	return inputs
}

func TestValues(t *testing.T) {
	assert.Equal(t, uint16(0x0010), DiagonalUp.Bits())
	assert.Equal(t, uint16(0x0020), DiagonalDown.Bits())
	assert.Equal(t, uint16(0x0040), Shoot.Bits())
	assert.Equal(t, uint16(0x0080), Jump.Bits())
	assert.Equal(t, uint16(0x0100), Right.Bits())
	assert.Equal(t, uint16(0x0200), Left.Bits())
	assert.Equal(t, uint16(0x0400), Down.Bits())
	assert.Equal(t, uint16(0x0800), Up.Bits())
	assert.Equal(t, uint16(0x1000), Start.Bits())
	assert.Equal(t, uint16(0x2000), Select.Bits())
	assert.Equal(t, uint16(0x4000), Cancel.Bits())
	assert.Equal(t, uint16(0x8000), Run.Bits())
	assert.Equal(t, uint16(0xfff0), All.Bits())
}

func TestSetAlgebra(t *testing.T) {
	others := []Input{Empty, All, Right, Left | Jump, Shoot | DiagonalUp | Run, Up | Down | Start}

	for _, a := range combinations() {
		assert.True(t, a.Intersect(a.Complement()).IsEmpty())
		assert.Equal(t, All, a.Union(a.Complement()))
		assert.Equal(t, a, a.Complement().Complement())

		for _, b := range others {
			assert.Equal(t, b, a.Union(b).Intersect(b))
			assert.Equal(t, a|b, a.Union(b))
			assert.True(t, a.Union(b).Contains(a))
			assert.False(t, a.Difference(b).Intersects(b))
			assert.Equal(t, a.Intersects(b), !a.Intersect(b).IsEmpty())
		}
	}
}

func TestFromBits(t *testing.T) {
	for bits := 0; bits < 1<<16; bits += 7 {
		raw := uint16(bits)
		truncated := FromBitsTruncate(raw)
		assert.Equal(t, raw&0xfff0, truncated.Bits())

		i, ok := FromBits(raw)
		if raw&0x000f != 0 {
			assert.False(t, ok)
			continue
		}
		assert.True(t, ok)
		assert.Equal(t, truncated, i)
	}
}

func TestSet(t *testing.T) {
	i := Right.Set(Jump, true)
	assert.Equal(t, Right|Jump, i)
	assert.Equal(t, Jump, i.Set(Right, false))
	assert.Equal(t, Right|Left, Right.Toggle(Left))
	assert.True(t, All.IsAll())
	assert.False(t, Right.IsAll())
}

func TestString(t *testing.T) {
	assert.Equal(t, "(empty)", Empty.String())
	assert.Equal(t, "Right", Right.String())
	assert.Equal(t, "Jump | Right", (Right | Jump).String())
	assert.Equal(t, "Run | 0x0001", Input(0x8001).String())
}

func TestParse(t *testing.T) {
	i, ok := Parse("shoot")
	assert.True(t, ok)
	assert.Equal(t, Shoot, i)

	_, ok = Parse("turbo")
	assert.False(t, ok)
}
