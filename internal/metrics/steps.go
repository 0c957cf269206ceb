package metrics

import "github.com/san-kum/dsaviz/internal/engine"

// StepCount counts frames that advanced the step counter.
type StepCount struct {
	name  string
	steps int
}

func NewStepCount() *StepCount {
	return &StepCount{name: "steps"}
}

func (s *StepCount) Name() string { return s.name }

func (s *StepCount) Observe(f engine.Frame) {
	if f.Counted() {
		s.steps++
	}
}

func (s *StepCount) Value() float64 { return float64(s.steps) }

func (s *StepCount) Reset() { s.steps = 0 }

// KindCount counts steps of one kind, e.g. comparisons or swaps.
type KindCount struct {
	name  string
	kind  engine.StepKind
	count int
}

func NewKindCount(name string, kind engine.StepKind) *KindCount {
	return &KindCount{name: name, kind: kind}
}

func (k *KindCount) Name() string {
	return k.name
}

func (k *KindCount) Observe(f engine.Frame) {
	if f.Kind == k.kind {
		k.count++
	}
}

func (k *KindCount) Value() float64 {
	return float64(k.count)
}

func (k *KindCount) Reset() {
	k.count = 0
}
