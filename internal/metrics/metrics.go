// Package metrics summarises a run from the frames it broadcasts.
package metrics

import (
	"github.com/san-kum/dsaviz/internal/algorithms"
	"github.com/san-kum/dsaviz/internal/engine"
)

// Metric observes every frame of a run and reduces it to one number.
type Metric interface {
	Name() string
	Observe(f engine.Frame)
	Value() float64
	Reset()
}

// DefaultMetrics returns a fresh set of metrics suited to the family.
func DefaultMetrics(family algorithms.Family) []Metric {
	ms := []Metric{NewStepCount()}
	switch family {
	case algorithms.FamilySort:
		ms = append(ms,
			NewKindCount("comparisons", engine.StepCompare),
			NewKindCount("swaps", engine.StepSwap),
			NewKindCount("shifts", engine.StepShift),
			NewInversions(),
		)
	case algorithms.FamilySearch:
		ms = append(ms, NewKindCount("probes", engine.StepProbe), NewCoverage())
	case algorithms.FamilyGraph:
		ms = append(ms, NewKindCount("visits", engine.StepVisit), NewCoverage())
	case algorithms.FamilyTree:
		ms = append(ms,
			NewKindCount("comparisons", engine.StepDescend),
			NewKindCount("emitted", engine.StepEmit),
			NewCoverage(),
		)
	}
	return ms
}

// Collect reads every metric into a name keyed map.
func Collect(ms []Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}
