package visualizer

import (
	"fmt"

	"github.com/san-kum/dsaviz/internal/engine"
)

// Status is the run state of a visualizer.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusRunning   Status = "running"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusFailed    Status = "failed"
)

func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusFailed:
		return true
	default:
		return false
	}
}

// Active reports whether a run owns the scene.
func (s Status) Active() bool {
	return s == StatusRunning || s == StatusPaused
}

// A paused run can still finish: a single step taken while paused may be
// the generator's last.
var allowedTransitions = map[Status]map[Status]struct{}{
	StatusIdle: {
		StatusRunning: {},
	},
	StatusRunning: {
		StatusPaused:    {},
		StatusCompleted: {},
		StatusCancelled: {},
		StatusFailed:    {},
	},
	StatusPaused: {
		StatusRunning:   {},
		StatusCompleted: {},
		StatusCancelled: {},
		StatusFailed:    {},
	},
	StatusCompleted: {StatusIdle: {}},
	StatusCancelled: {StatusIdle: {}},
	StatusFailed:    {StatusIdle: {}},
}

func validateTransition(from, to Status) error {
	if from == to {
		return nil
	}
	allowed, ok := allowedTransitions[from]
	if !ok {
		return fmt.Errorf("%w: unknown status %q", engine.ErrInvalidState, from)
	}
	if _, ok := allowed[to]; !ok {
		return fmt.Errorf("%w: %s -> %s", engine.ErrInvalidState, from, to)
	}
	return nil
}
