package engine

import (
	"errors"
	"fmt"
)

// Domain errors for run control and generator input.
var (
	// ErrInvalidState indicates an operation not allowed in the current run state,
	// such as starting while a run is active or regenerating mid-run.
	ErrInvalidState = errors.New("engine: invalid state")

	// ErrInvalidInput indicates a parameter outside its accepted range.
	ErrInvalidInput = errors.New("engine: invalid input")

	// ErrPreconditionViolation indicates data that does not satisfy an
	// algorithm's structural requirement, e.g. binary search over unordered data.
	ErrPreconditionViolation = errors.New("engine: precondition violated")

	// ErrCancelled is returned from a suspension point once the run is cancelled.
	ErrCancelled = errors.New("engine: run cancelled")

	// ErrUnknownAlgorithm indicates a name missing from the registry.
	ErrUnknownAlgorithm = errors.New("engine: unknown algorithm")
)

// StepError wraps a generator failure with the step it happened at.
type StepError struct {
	Step      int
	Algorithm string
	Wrapped   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: step %d: %v", e.Algorithm, e.Step, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
