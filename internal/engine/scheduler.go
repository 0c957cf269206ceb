package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/san-kum/dsaviz/internal/visual"
)

// StepOutcome is the result of driving a generator by one step.
type StepOutcome int

const (
	Continue StepOutcome = iota
	Done
	Cancelled
)

func (o StepOutcome) String() string {
	switch o {
	case Continue:
		return "continue"
	case Done:
		return "done"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Scheduler drives one generator. The generator runs on its own goroutine
// but only between a resume and the next suspension, so exactly one of the
// driver and the generator is ever executing.
type Scheduler struct {
	name      string
	gen       Generator
	model     *visual.Model
	stepper   *Stepper
	observers []Observer

	pacer   Pacer
	profile DelayProfile
	speed   atomic.Int64

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	started  bool
	terminal *StepOutcome
	done     chan struct{}
	report   Report
	err      error
}

func NewScheduler(name string, model *visual.Model, gen Generator) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		name:      name,
		gen:       gen,
		model:     model,
		observers: make([]Observer, 0),
		pacer:     TimerPacer{},
		profile:   ScanDelay,
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	s.speed.Store(DefaultSpeed)
	s.stepper = newStepper(model, s.broadcast)
	return s
}

// AddObserver must be called before the first step.
func (s *Scheduler) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Scheduler) SetPacer(p Pacer)               { s.pacer = p }
func (s *Scheduler) SetProfile(profile DelayProfile) { s.profile = profile }

// SetSpeed takes effect from the next delay.
func (s *Scheduler) SetSpeed(speed int) error {
	if err := ValidateSpeed(speed); err != nil {
		return err
	}
	s.speed.Store(int64(speed))
	return nil
}

func (s *Scheduler) Delay() time.Duration {
	return s.profile.Delay(int(s.speed.Load()))
}

func (s *Scheduler) Steps() int { return s.stepper.Steps() }

// Cancel requests cooperative cancellation. It is safe to call from any
// goroutine and more than once.
func (s *Scheduler) Cancel() { s.cancel() }

func (s *Scheduler) Cancelled() bool { return s.ctx.Err() != nil }

func (s *Scheduler) broadcast(f Frame) {
	for _, o := range s.observers {
		o.OnStep(f)
	}
}

// RunStep resumes the generator until its next suspension point or until it
// terminates. A pending cancellation is honoured before resuming, leaving the
// scene exactly as the last step left it.
func (s *Scheduler) RunStep() StepOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.terminal != nil {
		return *s.terminal
	}
	if s.ctx.Err() != nil {
		return s.finishCancelled()
	}

	if !s.started {
		s.started = true
		go s.loop()
	} else {
		select {
		case s.stepper.resume <- struct{}{}:
		case <-s.done:
		}
	}

	select {
	case <-s.stepper.yield:
		return Continue
	case <-s.done:
		return s.finish()
	}
}

// Run drives the generator to a terminal outcome, waiting on the pacer
// between steps.
func (s *Scheduler) Run(ctx context.Context) StepOutcome {
	stop := context.AfterFunc(ctx, s.cancel)
	defer stop()

	for {
		outcome := s.RunStep()
		if outcome != Continue {
			return outcome
		}
		if err := s.pacer.Wait(s.ctx, s.Delay()); err != nil {
			s.cancel()
		}
	}
}

// Result returns the generator's report and any non-cancellation error. The
// generator goroutine owns both until a terminal outcome, so earlier calls
// get ErrInvalidState.
func (s *Scheduler) Result() (Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.terminal == nil {
		return Report{}, fmt.Errorf("%w: %s has not finished", ErrInvalidState, s.name)
	}
	return s.report, s.err
}

func (s *Scheduler) loop() {
	defer close(s.done)
	report, err := s.gen(s.ctx, s.stepper)
	s.report = report
	s.err = err
}

func (s *Scheduler) finish() StepOutcome {
	outcome := Done
	if s.err != nil {
		if errors.Is(s.err, ErrCancelled) || errors.Is(s.err, context.Canceled) {
			outcome = Cancelled
			s.err = nil
		} else {
			s.err = &StepError{Step: s.stepper.Steps(), Algorithm: s.name, Wrapped: s.err}
		}
	}
	s.terminal = &outcome
	s.cancel()
	return outcome
}

func (s *Scheduler) finishCancelled() StepOutcome {
	if s.started {
		<-s.done
		s.err = nil
	}
	outcome := Cancelled
	s.terminal = &outcome
	return outcome
}
