package algorithms

import (
	"context"

	"github.com/san-kum/dsaviz/internal/engine"
	"github.com/san-kum/dsaviz/internal/visual"
)

type nodeState int

const (
	unseen nodeState = iota
	frontier
	finished
)

func retagGraph(start, current int, state map[int]nodeState) func(*visual.Scene) {
	return func(s *visual.Scene) {
		for i := range s.Nodes {
			id := s.Nodes[i].ID
			switch {
			case id == current:
				s.Nodes[i].Tag = visual.NodeCurrent
			case id == start:
				s.Nodes[i].Tag = visual.NodeStart
			case state[id] == finished:
				s.Nodes[i].Tag = visual.NodeVisited
			case state[id] == frontier:
				s.Nodes[i].Tag = visual.NodeVisiting
			default:
				s.Nodes[i].Tag = visual.NodeDefault
			}
		}
	}
}

func tagNode(id int, tag visual.NodeTag) func(*visual.Scene) {
	return func(s *visual.Scene) {
		if i := s.NodeIndex(id); i >= 0 {
			s.Nodes[i].Tag = tag
		}
	}
}

// BFS visits in non-decreasing hop distance from start. Dequeuing a node is
// a step; discovered neighbours are tagged visiting as they are enqueued.
func BFS(start int) engine.Generator {
	return func(ctx context.Context, st *engine.Stepper) (engine.Report, error) {
		scene := st.Scene()
		if len(scene.Nodes) == 0 {
			return engine.Traversal(nil), nil
		}
		adj := scene.Adjacency()
		state := map[int]nodeState{start: frontier}
		queue := []int{start}
		order := make([]int, 0, len(scene.Nodes))

		st.Mark(tagNode(start, visual.NodeStart))

		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			order = append(order, cur)

			if err := st.Step(ctx, engine.StepVisit, retagGraph(start, cur, state)); err != nil {
				return engine.Report{}, err
			}
			state[cur] = finished

			for _, next := range adj[cur] {
				if state[next] != unseen {
					continue
				}
				state[next] = frontier
				queue = append(queue, next)
				st.Mark(tagNode(next, visual.NodeVisiting))
			}
		}

		st.Mark(retagGraph(start, -1, state))
		return engine.Traversal(order), nil
	}
}

// DFS uses an explicit stack. Neighbours are pushed in reverse so the lowest
// id is explored first; already visited pops are skipped without a step.
func DFS(start int) engine.Generator {
	return func(ctx context.Context, st *engine.Stepper) (engine.Report, error) {
		scene := st.Scene()
		if len(scene.Nodes) == 0 {
			return engine.Traversal(nil), nil
		}
		adj := scene.Adjacency()
		state := map[int]nodeState{}
		stack := []int{start}
		order := make([]int, 0, len(scene.Nodes))

		st.Mark(tagNode(start, visual.NodeStart))

		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if state[cur] == finished {
				continue
			}
			state[cur] = finished
			order = append(order, cur)

			if err := st.Step(ctx, engine.StepVisit, retagGraph(start, cur, state)); err != nil {
				return engine.Report{}, err
			}

			neighbours := adj[cur]
			for k := len(neighbours) - 1; k >= 0; k-- {
				if state[neighbours[k]] != finished {
					stack = append(stack, neighbours[k])
				}
			}
		}

		st.Mark(retagGraph(start, -1, state))
		return engine.Traversal(order), nil
	}
}
