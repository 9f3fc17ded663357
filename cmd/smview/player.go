package main

import (
	"github.com/bodgit/smsprite/controller"
	"github.com/bodgit/smsprite/framemap"
	"github.com/bodgit/smsprite/machine"
)

// command is a one-shot request made alongside the held buttons
type command int

const (
	commandNone command = iota
	commandFall
	commandLand
)

// player advances a state machine one tick at a time, holding each frame
// for its duration
type player struct {
	m         *machine.StateMachine
	frame     *framemap.Frame
	remaining int
}

func newPlayer(m *machine.StateMachine) *player {
	return &player{m: m}
}

// tick applies the input for this tick and returns the frame to show
func (p *player) tick(input controller.Input, cmd command) (*framemap.Frame, error) {
	switched := false
	switch cmd {
	case commandFall:
		switched = p.m.Fall()
	case commandLand:
		switched = p.m.Land()
	}
	if p.m.Input(input) {
		switched = true
	}

	// A new pose starts showing straight away
	if switched || p.frame == nil || p.remaining <= 0 {
		f, d, err := p.m.Next()
		if err != nil {
			return nil, err
		}
		p.frame, p.remaining = f, int(d)
		if p.remaining < 1 {
			p.remaining = 1
		}
	}
	p.remaining--

	return p.frame, nil
}
