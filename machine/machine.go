/*
Package machine implements the runtime pose state machine. It owns a single
live pose, advances it a frame at a time, follows pose terminators that
switch to another pose, and reacts to controller input by looking up the
live pose's transition table.
*/
package machine

import (
	"errors"
	"fmt"
	"io/ioutil"
	"log"

	"github.com/bodgit/smsprite/controller"
	"github.com/bodgit/smsprite/framemap"
	"github.com/bodgit/smsprite/pose"
)

// maxSwitches bounds the number of consecutive pose switches followed by a
// single call to Next
const maxSwitches = 256

var (
	// ErrPoseNotFound is returned when a pose id is not in the repository
	ErrPoseNotFound = errors.New("machine: pose not found")
	// ErrTransitionLoop is returned when poses keep switching without
	// producing a frame
	ErrTransitionLoop = errors.New("machine: poses switch without producing a frame")
)

// StateMachine drives a sprite through its poses
type StateMachine struct {
	repo    pose.Repository
	current *pose.Pose
	input   controller.Input
	logger  *log.Logger
}

// Option configures a StateMachine
type Option func(*StateMachine)

// WithLogger traces pose switches to logger
func WithLogger(logger *log.Logger) Option {
	return func(m *StateMachine) {
		m.logger = logger
	}
}

// New returns a StateMachine starting at pose initial
func New(initial int, repo pose.Repository, options ...Option) (*StateMachine, error) {
	p, ok := repo.Pose(initial)
	if !ok {
		return nil, fmt.Errorf("%w: 0x%02X", ErrPoseNotFound, initial)
	}

	m := &StateMachine{
		repo:    repo,
		current: p.Clone(),
		logger:  log.New(ioutil.Discard, "", 0),
	}
	for _, o := range options {
		o(m)
	}

	return m, nil
}

// PoseName returns the name of the live pose
func (m *StateMachine) PoseName() string {
	return m.current.Name
}

// PoseID returns the id of the live pose
func (m *StateMachine) PoseID() int {
	return m.current.ID
}

// CurrentInput returns the last applied controller input
func (m *StateMachine) CurrentInput() controller.Input {
	return m.input
}

// Pose returns a copy of the live pose, rewound
func (m *StateMachine) Pose() *pose.Pose {
	return m.current.Clone()
}

func (m *StateMachine) switchTo(id int, reason string) bool {
	p, ok := m.repo.Pose(id)
	if !ok {
		m.logger.Printf("%s: pose 0x%02X -> 0x%02X not found\n", reason, m.current.ID, id)
		return false
	}
	m.logger.Printf("%s: pose 0x%02X (%s) -> 0x%02X (%s)\n", reason, m.current.ID, m.current.Name, p.ID, p.Name)
	m.current = p.Clone()
	return true
}

// transition switches to the destination of the live pose's transition for
// input, if it has one that leads somewhere else
func (m *StateMachine) transition(input controller.Input, reason string) bool {
	to, ok := m.current.Transition(input)
	if !ok || to == m.current.ID {
		return false
	}
	return m.switchTo(to, reason)
}

// Next advances the live pose and returns the frame to show and for how many
// ticks. When the live pose ends by switching to another pose the held input
// is checked against the new pose before continuing.
func (m *StateMachine) Next() (*framemap.Frame, uint8, error) {
	for i := 0; i < maxSwitches; i++ {
		n := m.current.Next()
		if !n.Switch {
			return m.repo.Frame(n.Frame), n.Duration, nil
		}

		if !m.switchTo(n.Pose, "terminator") {
			return nil, 0, fmt.Errorf("%w: 0x%02X, reached from pose 0x%02X", ErrPoseNotFound, n.Pose, m.current.ID)
		}

		if !m.input.IsEmpty() {
			m.transition(m.input, "held input")
		}
	}
	return nil, 0, fmt.Errorf("%w: after %d switches at pose 0x%02X", ErrTransitionLoop, maxSwitches, m.current.ID)
}

// Input applies the held buttons. Nothing happens unless they differ from
// the last applied input; they are then remembered and, if the live pose has
// a transition for exactly those buttons, the pose switches. It returns
// whether the pose switched.
func (m *StateMachine) Input(pressed controller.Input) bool {
	if pressed == m.input {
		return false
	}
	m.input = pressed
	return m.transition(pressed, "input")
}

// Goto switches to pose id unconditionally. It returns false, leaving the
// machine untouched, if there is no such pose.
func (m *StateMachine) Goto(id int) bool {
	return m.switchTo(id, "goto")
}

// Fall forces the live pose into its falling counterpart, if it has one
func (m *StateMachine) Fall() bool {
	return m.forced(FallTable, "fall")
}

// Land forces the live pose into its landing counterpart, if it has one
func (m *StateMachine) Land() bool {
	return m.forced(LandTable, "land")
}

func (m *StateMachine) forced(table map[int]int, reason string) bool {
	to, ok := table[m.current.ID]
	if !ok {
		return false
	}
	return m.switchTo(to, reason)
}
