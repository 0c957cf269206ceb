// Package visualizer owns one data model and runs algorithms over it one at
// a time, with pause, single step, cancel and reset.
package visualizer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/san-kum/dsaviz/internal/algorithms"
	"github.com/san-kum/dsaviz/internal/ctxlog"
	"github.com/san-kum/dsaviz/internal/dataset"
	"github.com/san-kum/dsaviz/internal/engine"
	"github.com/san-kum/dsaviz/internal/metrics"
	"github.com/san-kum/dsaviz/internal/visual"
)

// GenParams describes how the entity collection is produced.
type GenParams = dataset.Params

// Result is the outcome of one run. Found and Index are set for searches,
// Order for traversals.
type Result struct {
	Algorithm  string             `json:"algorithm"`
	Status     Status             `json:"status"`
	StepsTaken int                `json:"steps_taken"`
	Found      *bool              `json:"found,omitempty"`
	Index      *int               `json:"index,omitempty"`
	Order      []int              `json:"order,omitempty"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
}

type Option func(*Visualizer)

// WithPacer replaces the real-time pacer, e.g. with engine.InstantPacer.
func WithPacer(p engine.Pacer) Option {
	return func(v *Visualizer) { v.pacer = p }
}

func WithRegistry(r *algorithms.Registry) Option {
	return func(v *Visualizer) { v.registry = r }
}

func WithSpeed(speed int) Option {
	return func(v *Visualizer) { v.speed = engine.ClampSpeed(speed) }
}

// WithDelays overrides delay profiles. Keys are algorithm names or family
// names; an algorithm name wins over its family.
func WithDelays(delays map[string]engine.DelayProfile) Option {
	return func(v *Visualizer) {
		for k, p := range delays {
			v.delays[k] = p
		}
	}
}

type Visualizer struct {
	kind     visual.Kind
	registry *algorithms.Registry
	model    *visual.Model
	pacer    engine.Pacer

	obsMu     sync.RWMutex
	observers map[int]engine.Observer
	nextObs   int

	mu        sync.Mutex
	status    Status
	gen       GenParams
	generated bool
	speed     int
	delays    map[string]engine.DelayProfile
	active    *Handle
	last      *Result
	sortDone  bool
	runs      int
}

func New(kind visual.Kind, opts ...Option) *Visualizer {
	v := &Visualizer{
		kind:      kind,
		model:     visual.NewModel(visual.Scene{Kind: kind, Tree: visual.NewTree()}),
		pacer:     engine.TimerPacer{},
		observers: make(map[int]engine.Observer),
		status:    StatusIdle,
		speed:     engine.DefaultSpeed,
		delays:    make(map[string]engine.DelayProfile),
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.registry == nil {
		v.registry = algorithms.NewRegistry()
	}
	return v
}

func (v *Visualizer) Kind() visual.Kind { return v.kind }

func (v *Visualizer) Registry() *algorithms.Registry { return v.registry }

// Generate replaces the entity collection. It is refused while a run is
// active.
func (v *Visualizer) Generate(p GenParams) (visual.Scene, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.status.Active() {
		return visual.Scene{}, fmt.Errorf("%w: cannot generate while %s", engine.ErrInvalidState, v.status)
	}
	scene, err := dataset.Generate(p)
	if err != nil {
		return visual.Scene{}, err
	}
	if scene.Kind != v.kind {
		return visual.Scene{}, fmt.Errorf("%w: %s data for a %s visualizer", engine.ErrInvalidInput, scene.Kind, v.kind)
	}
	if err := v.replace(scene); err != nil {
		return visual.Scene{}, err
	}
	v.gen = p
	v.generated = true
	return scene.Clone(), nil
}

// replace must be called with mu held.
func (v *Visualizer) replace(scene visual.Scene) error {
	if err := validateTransition(v.status, StatusIdle); err != nil {
		return err
	}
	v.model.Replace(scene)
	v.status = StatusIdle
	v.last = nil
	v.sortDone = false
	return nil
}

func (v *Visualizer) profile(spec algorithms.Spec) engine.DelayProfile {
	if p, ok := v.delays[spec.Name]; ok {
		return p
	}
	if p, ok := v.delays[string(spec.Family)]; ok {
		return p
	}
	return spec.Delay
}

// Start validates the request and launches the run on its own goroutine.
// All input errors are reported here; no step is taken on failure. The run
// is cancelled when ctx is done, and logs through the ctx logger.
func (v *Visualizer) Start(ctx context.Context, algorithm string, params algorithms.Params) (*Handle, error) {
	spec, err := v.registry.Get(algorithm)
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.status.Active() {
		return nil, fmt.Errorf("%w: run %d is %s", engine.ErrInvalidState, v.active.ID, v.status)
	}
	if v.sortDone && spec.Family == algorithms.FamilySort {
		return nil, fmt.Errorf("%w: data already sorted, reset first", engine.ErrInvalidState)
	}
	scene := v.model.Snapshot()
	if err := spec.Validate(params, scene); err != nil {
		return nil, err
	}
	if v.status.Terminal() {
		v.status = StatusIdle
	}
	if err := validateTransition(v.status, StatusRunning); err != nil {
		return nil, err
	}

	v.model.Update(func(s *visual.Scene) { s.ResetTags() })
	v.runs++

	sched := engine.NewScheduler(algorithm, v.model, spec.New(params))
	sched.SetProfile(v.profile(spec))
	if err := sched.SetSpeed(v.speed); err != nil {
		return nil, err
	}
	gate := engine.NewGate(false)
	sched.SetPacer(engine.Chain(v.pacer, gate))

	ms := metrics.DefaultMetrics(spec.Family)
	for _, m := range ms {
		sched.AddObserver(engine.ObserverFunc(m.Observe))
	}
	sched.AddObserver(engine.ObserverFunc(v.broadcast))

	h := &Handle{
		ID:        v.runs,
		Algorithm: algorithm,
		family:    spec.Family,
		sched:     sched,
		gate:      gate,
		logger:    ctxlog.FromContext(ctx).With("algorithm", algorithm, "run", v.runs),
		done:      make(chan struct{}),
	}
	v.active = h
	v.status = StatusRunning
	v.last = nil

	h.logger.Info("run started", "size", scene.Size(), "speed", v.speed, "delay", sched.Delay())
	go v.drive(ctx, h, ms)
	return h, nil
}

func (v *Visualizer) drive(ctx context.Context, h *Handle, ms []metrics.Metric) {
	outcome := h.sched.Run(ctx)
	report, err := h.sched.Result()

	v.mu.Lock()
	defer v.mu.Unlock()

	status := StatusCompleted
	switch {
	case outcome == engine.Cancelled:
		status = StatusCancelled
	case err != nil:
		status = StatusFailed
	}
	if terr := validateTransition(v.status, status); terr != nil {
		h.logger.Warn("unexpected run transition", "error", terr)
	}

	res := Result{
		Algorithm:  h.Algorithm,
		Status:     status,
		StepsTaken: h.sched.Steps(),
		Found:      report.Found,
		Index:      report.Index,
		Order:      report.Order,
		Metrics:    metrics.Collect(ms),
	}
	v.status = status
	v.last = &res
	v.active = nil
	if status == StatusCompleted && h.family == algorithms.FamilySort {
		v.sortDone = true
	}

	h.result = res
	h.err = err
	close(h.done)

	switch status {
	case StatusCancelled:
		h.logger.Info("run cancelled", "steps", res.StepsTaken)
	case StatusFailed:
		h.logger.Error("run failed", "steps", res.StepsTaken, "error", err)
	default:
		h.logger.Info("run completed", "steps", res.StepsTaken)
	}
}

// Pause holds the run at the next step boundary. Pausing a paused run is a
// no-op.
func (v *Visualizer) Pause() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.status == StatusPaused {
		return nil
	}
	if v.status != StatusRunning {
		return fmt.Errorf("%w: cannot pause while %s", engine.ErrInvalidState, v.status)
	}
	v.active.gate.Close()
	v.status = StatusPaused
	v.active.logger.Debug("run paused", "steps", v.active.sched.Steps())
	return nil
}

// Resume continues a paused run from exactly where it stopped.
func (v *Visualizer) Resume() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.status != StatusPaused {
		return fmt.Errorf("%w: cannot resume while %s", engine.ErrInvalidState, v.status)
	}
	v.active.gate.Open()
	v.status = StatusRunning
	v.active.logger.Debug("run resumed", "steps", v.active.sched.Steps())
	return nil
}

// Step lets a paused run take one more step.
func (v *Visualizer) Step() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.status != StatusPaused {
		return fmt.Errorf("%w: single step needs a paused run, have %s", engine.ErrInvalidState, v.status)
	}
	v.active.gate.Advance()
	return nil
}

// Cancel stops h, or the active run when h is nil, and waits until the run
// has terminated. Cancelling a finished run is a no-op. Must not be called
// from an observer.
func (v *Visualizer) Cancel(h *Handle) error {
	v.mu.Lock()
	if h == nil {
		h = v.active
	}
	v.mu.Unlock()

	if h == nil {
		return nil
	}
	h.sched.Cancel()
	<-h.done
	return nil
}

// Reset cancels any active run and regenerates the collection with the
// last generation parameters, so a seeded collection comes back identical.
func (v *Visualizer) Reset() error {
	if err := v.Cancel(nil); err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.status.Active() {
		return fmt.Errorf("%w: run started during reset", engine.ErrInvalidState)
	}
	if !v.generated {
		scene := v.model.Snapshot()
		scene.ResetTags()
		return v.replace(scene)
	}
	scene, err := dataset.Generate(v.gen)
	if err != nil {
		return err
	}
	return v.replace(scene)
}

// Subscribe registers o for every frame of every future run. Observers run
// on the run goroutine and must not block.
func (v *Visualizer) Subscribe(o engine.Observer) func() {
	v.obsMu.Lock()
	id := v.nextObs
	v.nextObs++
	v.observers[id] = o
	v.obsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			v.obsMu.Lock()
			delete(v.observers, id)
			v.obsMu.Unlock()
		})
	}
}

func (v *Visualizer) broadcast(f engine.Frame) {
	v.obsMu.RLock()
	defer v.obsMu.RUnlock()
	for _, o := range v.observers {
		o.OnStep(f)
	}
}

// SetSpeed applies from the next inter-step delay of the active run.
func (v *Visualizer) SetSpeed(speed int) error {
	if err := engine.ValidateSpeed(speed); err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	v.speed = speed
	if v.active != nil {
		return v.active.sched.SetSpeed(speed)
	}
	return nil
}

func (v *Visualizer) Speed() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.speed
}

func (v *Visualizer) Status() Status {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.status
}

func (v *Visualizer) Snapshot() visual.Scene {
	return v.model.Snapshot()
}

// Steps is the step count of the active run, or of the last finished one.
func (v *Visualizer) Steps() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.active != nil {
		return v.active.sched.Steps()
	}
	if v.last != nil {
		return v.last.StepsTaken
	}
	return 0
}

// Result returns the last finished run's result, if any since the last
// generate or reset.
func (v *Visualizer) Result() (Result, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.last == nil {
		return Result{}, false
	}
	return *v.last, true
}

// GenParams returns the parameters of the last successful Generate.
func (v *Visualizer) GenParams() (GenParams, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.gen, v.generated
}

// Handle refers to one run.
type Handle struct {
	ID        int
	Algorithm string

	family algorithms.Family
	sched  *engine.Scheduler
	gate   *engine.Gate
	logger *slog.Logger

	done   chan struct{}
	result Result
	err    error
}

// Done is closed once the run has terminated.
func (h *Handle) Done() <-chan struct{} { return h.done }

func (h *Handle) Steps() int { return h.sched.Steps() }

// Wait blocks until the run terminates or ctx is done. A cancelled run is a
// normal outcome, reported through Result.Status rather than an error.
func (h *Handle) Wait(ctx context.Context) (Result, error) {
	select {
	case <-h.done:
		return h.result, h.err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}
