package algorithms

import (
	"context"

	"github.com/san-kum/dsaviz/internal/engine"
	"github.com/san-kum/dsaviz/internal/visual"
)

// clearTransient drops comparing/swapping/pivot highlights but keeps sorted.
func clearTransient(s *visual.Scene) {
	for i := range s.Elements {
		switch s.Elements[i].Tag {
		case visual.ElementComparing, visual.ElementSwapping, visual.ElementPivot:
			s.Elements[i].Tag = visual.ElementDefault
		}
	}
}

func tagSorted(idx ...int) func(*visual.Scene) {
	return func(s *visual.Scene) {
		clearTransient(s)
		for _, i := range idx {
			s.Elements[i].Tag = visual.ElementSorted
		}
	}
}

// BubbleSort compares adjacent pairs; each comparison and each swap is a step.
// After pass i the last i elements are final.
func BubbleSort(ctx context.Context, st *engine.Stepper) (engine.Report, error) {
	n := len(st.Scene().Elements)

	for i := 0; i < n-1; i++ {
		for j := 0; j < n-i-1; j++ {
			var greater bool
			if err := st.Step(ctx, engine.StepCompare, func(s *visual.Scene) {
				clearTransient(s)
				s.Elements[j].Tag = visual.ElementComparing
				s.Elements[j+1].Tag = visual.ElementComparing
				greater = s.Elements[j].Value > s.Elements[j+1].Value
			}); err != nil {
				return engine.Report{}, err
			}

			if greater {
				if err := st.Step(ctx, engine.StepSwap, func(s *visual.Scene) {
					s.Elements[j], s.Elements[j+1] = s.Elements[j+1], s.Elements[j]
					s.Elements[j].Tag = visual.ElementSwapping
					s.Elements[j+1].Tag = visual.ElementSwapping
				}); err != nil {
					return engine.Report{}, err
				}
			}
		}
		st.Mark(tagSorted(n - 1 - i))
	}

	if n > 0 {
		st.Mark(tagSorted(0))
	}
	return engine.Report{}, nil
}

// SelectionSort keeps the running minimum tagged as pivot. A step is one
// comparison against the minimum or the final swap of a pass.
func SelectionSort(ctx context.Context, st *engine.Stepper) (engine.Report, error) {
	n := len(st.Scene().Elements)

	for i := 0; i < n-1; i++ {
		minIdx := i
		st.Mark(func(s *visual.Scene) {
			clearTransient(s)
			s.Elements[i].Tag = visual.ElementPivot
		})

		for j := i + 1; j < n; j++ {
			var less bool
			if err := st.Step(ctx, engine.StepCompare, func(s *visual.Scene) {
				s.Elements[j].Tag = visual.ElementComparing
				less = s.Elements[j].Value < s.Elements[minIdx].Value
			}); err != nil {
				return engine.Report{}, err
			}

			prev := minIdx
			if less {
				minIdx = j
			}
			st.Mark(func(s *visual.Scene) {
				if less {
					if prev != i {
						s.Elements[prev].Tag = visual.ElementDefault
					}
					s.Elements[j].Tag = visual.ElementPivot
				} else {
					s.Elements[j].Tag = visual.ElementDefault
				}
			})
		}

		if minIdx != i {
			if err := st.Step(ctx, engine.StepSwap, func(s *visual.Scene) {
				s.Elements[i], s.Elements[minIdx] = s.Elements[minIdx], s.Elements[i]
				s.Elements[i].Tag = visual.ElementSwapping
				s.Elements[minIdx].Tag = visual.ElementSwapping
			}); err != nil {
				return engine.Report{}, err
			}
		}
		st.Mark(tagSorted(i))
	}

	if n > 0 {
		st.Mark(tagSorted(n - 1))
	}
	return engine.Report{}, nil
}

// InsertionSort walks each key left one position per step. The key trades
// places with the larger neighbour, so every frame is a permutation of the
// input.
func InsertionSort(ctx context.Context, st *engine.Stepper) (engine.Report, error) {
	vals := st.Scene().Values()
	n := len(vals)
	if n == 0 {
		return engine.Report{}, nil
	}
	st.Mark(tagSorted(0))

	for i := 1; i < n; i++ {
		key := vals[i]
		st.Mark(func(s *visual.Scene) { s.Elements[i].Tag = visual.ElementPivot })

		j := i - 1
		for j >= 0 && vals[j] > key {
			pos := j
			if err := st.Step(ctx, engine.StepShift, func(s *visual.Scene) {
				clearTransient(s)
				s.Elements[pos+1].Value = s.Elements[pos].Value
				s.Elements[pos].Value = key
				s.Elements[pos].Tag = visual.ElementComparing
				s.Elements[pos+1].Tag = visual.ElementSwapping
			}); err != nil {
				return engine.Report{}, err
			}
			vals[pos+1], vals[pos] = vals[pos], key
			j--
		}

		prefix := make([]int, i+1)
		for k := range prefix {
			prefix[k] = k
		}
		st.Mark(tagSorted(prefix...))
	}
	return engine.Report{}, nil
}

// TreeSort absorbs every value into an unrendered search tree, then writes
// the in-order sequence back. Each absorption and each placement is a step.
func TreeSort(ctx context.Context, st *engine.Stepper) (engine.Report, error) {
	vals := st.Scene().Values()
	n := len(vals)
	bst := visual.NewTree()

	for i := 0; i < n; i++ {
		if err := st.Step(ctx, engine.StepAbsorb, func(s *visual.Scene) {
			if i > 0 {
				s.Elements[i-1].Tag = visual.ElementVisited
			}
			s.Elements[i].Tag = visual.ElementPivot
		}); err != nil {
			return engine.Report{}, err
		}
		absorb(&bst, vals[i])
	}
	if n > 0 {
		st.Mark(func(s *visual.Scene) { s.Elements[n-1].Tag = visual.ElementVisited })
	}

	sorted := bst.InOrder()
	for i := 0; i < n; i++ {
		if err := st.Step(ctx, engine.StepPlace, func(s *visual.Scene) {
			if i > 0 {
				s.Elements[i-1].Tag = visual.ElementSorted
			}
			s.Elements[i].Value = sorted[i]
			s.Elements[i].Tag = visual.ElementSwapping
		}); err != nil {
			return engine.Report{}, err
		}
	}
	if n > 0 {
		st.Mark(func(s *visual.Scene) { s.Elements[n-1].Tag = visual.ElementSorted })
	}
	return engine.Report{}, nil
}

// absorb inserts allowing duplicates, which go right.
func absorb(t *visual.Tree, value int) {
	if t.Empty() {
		t.Attach(visual.Nil, false, value, visual.TreeDefault)
		return
	}
	cur := t.Root
	for {
		n := t.Nodes[cur]
		if value < n.Value {
			if n.Left == visual.Nil {
				t.Attach(cur, true, value, visual.TreeDefault)
				return
			}
			cur = n.Left
		} else {
			if n.Right == visual.Nil {
				t.Attach(cur, false, value, visual.TreeDefault)
				return
			}
			cur = n.Right
		}
	}
}
