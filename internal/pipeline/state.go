package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
)

var ErrBadTransition = errors.New("invalid pipeline transition")

// State is a stage of one run.
type State int

const (
	Idle State = iota
	LayoutSelected
	Composing
	Rendering
	Finalizing
	Done
	Failed
)

var stateNames = [...]string{"idle", "layout_selected", "composing", "rendering", "finalizing", "done", "failed"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// next lists the forward move out of each state. Failed is reachable from
// anything that is not terminal.
var next = map[State]State{
	Idle:           LayoutSelected,
	LayoutSelected: Composing,
	Composing:      Rendering,
	Rendering:      Finalizing,
	Finalizing:     Done,
}

// Machine tracks the state of a run.
type Machine struct {
	state State
}

func (m *Machine) State() State { return m.state }

// To moves to s.
func (m *Machine) To(s State) error {
	from := m.state
	ok := false
	switch {
	case from == Done || from == Failed:
	case s == Failed:
		ok = true
	default:
		ok = next[from] == s
	}
	if !ok {
		return fmt.Errorf("%w: %s -> %s", ErrBadTransition, from, s)
	}
	m.state = s
	slog.Debug("Pipeline state", "from", from, "to", s)
	return nil
}

// Terminal reports whether the run has finished, successfully or not.
func (m *Machine) Terminal() bool {
	return m.state == Done || m.state == Failed
}
