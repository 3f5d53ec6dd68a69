package build

import (
	"fmt"
	"log/slog"
)

// Stage a build has reached.
type State int

const (
	StateIdle               State = iota // Nothing done yet.
	StateEnvironmentChecked              // Runtime and project verified.
	StateBuilderImageReady               // Builder image exists.
	StateCompiled                        // Compile and in-container packaging succeeded.
	StatePackaged                        // Artifact produced.
	StateFailed                          // A stage failed; no cleanup was attempted.
)

// Returns the name of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateEnvironmentChecked:
		return "EnvironmentChecked"
	case StateBuilderImageReady:
		return "BuilderImageReady"
	case StateCompiled:
		return "Compiled"
	case StatePackaged:
		return "Packaged"
	case StateFailed:
		return "Failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Returns true for [StatePackaged] and [StateFailed].
func (s State) Terminal() bool {
	return s == StatePackaged || s == StateFailed
}

// Tracks the pipeline through its states.
//
// States advance strictly in order. Any non-terminal state may move to
// [StateFailed]. Terminal states do not change.
type progress struct {
	current State
	history []State
}

// Creates a [progress] in [StateIdle].
func newProgress() *progress {
	return &progress{current: StateIdle, history: []State{StateIdle}}
}

// Moves to next if the transition is allowed, and reports whether it was.
func (p *progress) advance(next State) bool {
	if p.current.Terminal() {
		return false
	}
	if next != StateFailed && next != p.current+1 {
		return false
	}

	slog.Debug("build state", "from", p.current.String(), "to", next.String())
	p.current = next
	p.history = append(p.history, next)
	return true
}

// Moves to [StateFailed] and returns err unchanged.
func (p *progress) fail(err error) error {
	p.advance(StateFailed)
	return err
}

// Returns a copy of the states visited so far.
func (p *progress) states() []State {
	return append([]State(nil), p.history...)
}
