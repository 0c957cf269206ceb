package engine

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/san-kum/dsaviz/internal/visual"
)

// StepKind labels what a step did. Metrics count steps by kind.
type StepKind string

const (
	StepCompare StepKind = "compare"
	StepSwap    StepKind = "swap"
	StepShift   StepKind = "shift"
	StepAbsorb  StepKind = "absorb"
	StepPlace   StepKind = "place"
	StepProbe   StepKind = "probe"
	StepVisit   StepKind = "visit"
	StepDescend StepKind = "descend"
	StepEmit    StepKind = "emit"

	// StepMark is an uncounted highlight change between steps.
	StepMark StepKind = "mark"
)

// Frame is what observers receive after every mutation.
type Frame struct {
	Step  int          `json:"step"`
	Kind  StepKind     `json:"kind"`
	Scene visual.Scene `json:"scene"`
}

// Counted reports whether the frame advanced the step counter.
func (f Frame) Counted() bool { return f.Kind != StepMark }

type Observer interface {
	OnStep(f Frame)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(Frame)

func (fn ObserverFunc) OnStep(f Frame) { fn(f) }

// Report is what a generator returns on natural termination. Fields that do
// not apply to the algorithm family stay nil.
type Report struct {
	Found *bool
	Index *int
	Order []int
}

func FoundAt(index int) Report {
	found := true
	return Report{Found: &found, Index: &index}
}

func NotFound() Report {
	found := false
	index := -1
	return Report{Found: &found, Index: &index}
}

// FoundNode reports a tree lookup outcome, which has no positional index.
func FoundNode(found bool) Report {
	return Report{Found: &found}
}

func Traversal(order []int) Report {
	if order == nil {
		order = []int{}
	}
	return Report{Order: order}
}

// Generator is one algorithm run written as straight-line code. It calls
// Step at every suspension point and must return as soon as Step fails.
type Generator func(ctx context.Context, st *Stepper) (Report, error)

// Stepper is the step primitive handed to a generator. Each Step applies one
// mutation to the scene, bumps the counter, notifies observers and then
// suspends until the driver resumes it.
type Stepper struct {
	model   *visual.Model
	publish func(Frame)
	steps   atomic.Int64

	yield  chan struct{}
	resume chan struct{}
}

func newStepper(model *visual.Model, publish func(Frame)) *Stepper {
	return &Stepper{
		model:   model,
		publish: publish,
		yield:   make(chan struct{}),
		resume:  make(chan struct{}),
	}
}

// Scene returns a copy of the current scene for read-only decisions.
func (s *Stepper) Scene() visual.Scene {
	return s.model.Snapshot()
}

func (s *Stepper) Steps() int {
	return int(s.steps.Load())
}

// Step performs one counted unit of progress and suspends.
func (s *Stepper) Step(ctx context.Context, kind StepKind, mutate func(*visual.Scene)) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCancelled, err)
	}
	scene := s.model.Update(mutate)
	n := s.steps.Add(1)
	if s.publish != nil {
		s.publish(Frame{Step: int(n), Kind: kind, Scene: scene})
	}
	return s.suspend(ctx)
}

// Mark applies an uncounted highlight change without suspending.
func (s *Stepper) Mark(mutate func(*visual.Scene)) {
	scene := s.model.Update(mutate)
	if s.publish != nil {
		s.publish(Frame{Step: s.Steps(), Kind: StepMark, Scene: scene})
	}
}

func (s *Stepper) suspend(ctx context.Context) error {
	select {
	case s.yield <- struct{}{}:
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
	}
	select {
	case <-s.resume:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
	}
}
