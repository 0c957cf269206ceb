package algorithms

import (
	"context"

	"github.com/san-kum/dsaviz/internal/engine"
	"github.com/san-kum/dsaviz/internal/visual"
)

// LinearSearch probes left to right, one element per step.
func LinearSearch(target int) engine.Generator {
	return func(ctx context.Context, st *engine.Stepper) (engine.Report, error) {
		vals := st.Scene().Values()

		for i := range vals {
			if err := st.Step(ctx, engine.StepProbe, func(s *visual.Scene) {
				s.Elements[i].Tag = visual.ElementSearching
			}); err != nil {
				return engine.Report{}, err
			}

			if vals[i] == target {
				st.Mark(func(s *visual.Scene) { s.Elements[i].Tag = visual.ElementFound })
				return engine.FoundAt(i), nil
			}
			st.Mark(func(s *visual.Scene) { s.Elements[i].Tag = visual.ElementVisited })
		}
		return engine.NotFound(), nil
	}
}

// BinarySearch halves [left, right] per probe. Each probe retags the whole
// array: eliminated elements notFound, the live range visited, the midpoint
// searching. The caller guarantees the scene is ordered.
func BinarySearch(target int) engine.Generator {
	return func(ctx context.Context, st *engine.Stepper) (engine.Report, error) {
		vals := st.Scene().Values()
		left, right := 0, len(vals)-1

		for left <= right {
			mid := left + (right-left)/2
			lo, hi := left, right
			if err := st.Step(ctx, engine.StepProbe, func(s *visual.Scene) {
				for i := range s.Elements {
					switch {
					case i == mid:
						s.Elements[i].Tag = visual.ElementSearching
					case i < lo || i > hi:
						s.Elements[i].Tag = visual.ElementNotFound
					default:
						s.Elements[i].Tag = visual.ElementVisited
					}
				}
			}); err != nil {
				return engine.Report{}, err
			}

			if vals[mid] == target {
				st.Mark(func(s *visual.Scene) { s.Elements[mid].Tag = visual.ElementFound })
				return engine.FoundAt(mid), nil
			}

			var from, to int
			if vals[mid] < target {
				from, to = left, mid
				left = mid + 1
			} else {
				from, to = mid, right
				right = mid - 1
			}
			st.Mark(func(s *visual.Scene) {
				for i := from; i <= to; i++ {
					s.Elements[i].Tag = visual.ElementNotFound
				}
			})
		}
		return engine.NotFound(), nil
	}
}
