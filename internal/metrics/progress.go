package metrics

import (
	"github.com/san-kum/dsaviz/internal/engine"
	"github.com/san-kum/dsaviz/internal/visual"
)

// Inversions reports the number of out-of-order pairs in the latest array
// frame. A finished sort reads zero.
type Inversions struct {
	name    string
	initial int
	current int
	samples int
}

func NewInversions() *Inversions {
	return &Inversions{name: "inversions"}
}

func (i *Inversions) Name() string { return i.name }

func (i *Inversions) Observe(f engine.Frame) {
	if f.Scene.Kind != visual.KindArray {
		return
	}
	n := CountInversions(f.Scene.Values())
	if i.samples == 0 {
		i.initial = n
	}
	i.current = n
	i.samples++
}

func (i *Inversions) Value() float64 { return float64(i.current) }

// Removed is how many inversions the run has eliminated so far.
func (i *Inversions) Removed() int { return i.initial - i.current }

func (i *Inversions) Reset() {
	i.initial = 0
	i.current = 0
	i.samples = 0
}

func CountInversions(vals []int) int {
	n := 0
	for a := 0; a < len(vals); a++ {
		for b := a + 1; b < len(vals); b++ {
			if vals[a] > vals[b] {
				n++
			}
		}
	}
	return n
}

// Touched counts entities whose tag is not default.
func Touched(s visual.Scene) int {
	n := 0
	for _, e := range s.Elements {
		if e.Tag != visual.ElementDefault {
			n++
		}
	}
	for _, node := range s.Nodes {
		if node.Tag != visual.NodeDefault {
			n++
		}
	}
	for _, node := range s.Tree.Nodes {
		if node.Tag != visual.TreeDefault {
			n++
		}
	}
	return n
}

// Progress is the per-frame series plotted for a run: inversions for arrays
// and touched entities for graphs and trees.
func Progress(s visual.Scene) float64 {
	if s.Kind == visual.KindArray {
		return float64(CountInversions(s.Values()))
	}
	return float64(Touched(s))
}
