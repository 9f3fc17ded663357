/*
Package controller implements the set of held controller buttons as a bit
mask, laid out the way the game stores it in its pose transition tables.
*/
package controller

import (
	"fmt"
	"strings"
)

// Input is a set of held buttons
type Input uint16

// The named buttons. The low nibble is unused.
const (
	DiagonalUp Input = 1 << (iota + 4)
	DiagonalDown
	Shoot
	Jump
	Right
	Left
	Down
	Up
	Start
	Select
	Cancel
	Run
)

// Empty is the set with no buttons held
const Empty Input = 0

// All is the set of every named button
const All = DiagonalUp | DiagonalDown | Shoot | Jump | Right | Left | Down | Up | Start | Select | Cancel | Run

var names = []struct {
	input Input
	name  string
}{
	{DiagonalUp, "DiagonalUp"},
	{DiagonalDown, "DiagonalDown"},
	{Shoot, "Shoot"},
	{Jump, "Jump"},
	{Right, "Right"},
	{Left, "Left"},
	{Down, "Down"},
	{Up, "Up"},
	{Start, "Start"},
	{Select, "Select"},
	{Cancel, "Cancel"},
	{Run, "Run"},
}

// FromBits converts a raw mask, failing if it has any bit that is not a
// named button
func FromBits(bits uint16) (Input, bool) {
	if bits&^uint16(All) != 0 {
		return Empty, false
	}
	return Input(bits), true
}

// FromBitsTruncate converts a raw mask, dropping any bit that is not a named
// button
func FromBitsTruncate(bits uint16) Input {
	return Input(bits) & All
}

// Bits returns the raw mask
func (i Input) Bits() uint16 {
	return uint16(i)
}

// IsEmpty reports whether no buttons are held
func (i Input) IsEmpty() bool {
	return i == Empty
}

// IsAll reports whether every button is held
func (i Input) IsAll() bool {
	return i == All
}

// Union returns the buttons held in either set
func (i Input) Union(o Input) Input {
	return i | o
}

// Intersect returns the buttons held in both sets
func (i Input) Intersect(o Input) Input {
	return i & o
}

// Difference returns the buttons of i that are not in o
func (i Input) Difference(o Input) Input {
	return i &^ o
}

// Complement returns every named button not in i
func (i Input) Complement() Input {
	return ^i & All
}

// Toggle returns i with the buttons in o flipped
func (i Input) Toggle(o Input) Input {
	return i ^ o
}

// Contains reports whether every button in o is also in i
func (i Input) Contains(o Input) bool {
	return i&o == o
}

// Intersects reports whether i and o share any button
func (i Input) Intersects(o Input) bool {
	return i&o != Empty
}

// Set returns i with the buttons in o added or removed
func (i Input) Set(o Input, held bool) Input {
	if held {
		return i.Union(o)
	}
	return i.Difference(o)
}

func (i Input) String() string {
	var s []string
	for _, n := range names {
		if i.Contains(n.input) {
			s = append(s, n.name)
		}
	}
	if rest := i &^ All; rest != 0 {
		s = append(s, fmt.Sprintf("0x%04X", uint16(rest)))
	}
	if len(s) == 0 {
		return "(empty)"
	}
	return strings.Join(s, " | ")
}

// Parse returns the button with the given name
func Parse(name string) (Input, bool) {
	for _, n := range names {
		if strings.EqualFold(n.name, name) {
			return n.input, true
		}
	}
	return Empty, false
}
