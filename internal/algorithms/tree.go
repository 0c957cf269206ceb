package algorithms

import (
	"context"
	"fmt"

	"github.com/san-kum/dsaviz/internal/engine"
	"github.com/san-kum/dsaviz/internal/visual"
)

// TraversalOrder selects where a node is emitted relative to its subtrees.
type TraversalOrder string

const (
	InOrder   TraversalOrder = "inorder"
	PreOrder  TraversalOrder = "preorder"
	PostOrder TraversalOrder = "postorder"
)

func retagTree(from, to visual.TreeTag) func(*visual.Scene) {
	return func(s *visual.Scene) {
		for i := range s.Tree.Nodes {
			if s.Tree.Nodes[i].Tag == from {
				s.Tree.Nodes[i].Tag = to
			}
		}
	}
}

// BSTInsert descends from the root, one comparison per step, and attaches
// value as a leaf tagged inserting. Inserting into an empty tree makes the
// root without a step. Duplicates are rejected before the run starts.
func BSTInsert(value int) engine.Generator {
	return func(ctx context.Context, st *engine.Stepper) (engine.Report, error) {
		tree := st.Scene().Tree
		if tree.Empty() {
			st.Mark(func(s *visual.Scene) {
				s.Tree = visual.NewTree()
				s.Tree.Attach(visual.Nil, false, value, visual.TreeInserting)
			})
			return engine.Report{}, nil
		}

		cur := tree.Root
		for cur != visual.Nil {
			node := tree.Nodes[cur]
			placed := visual.Nil
			if value == node.Value {
				return engine.Report{}, fmt.Errorf("%w: %d already in tree", engine.ErrInvalidInput, value)
			}
			left := value < node.Value
			next := node.Right
			if left {
				next = node.Left
			}

			at := cur
			if err := st.Step(ctx, engine.StepDescend, func(s *visual.Scene) {
				retagTree(visual.TreeCurrent, visual.TreeVisiting)(s)
				s.Tree.Nodes[at].Tag = visual.TreeCurrent
				if next == visual.Nil {
					placed = s.Tree.Attach(at, left, value, visual.TreeInserting)
				}
			}); err != nil {
				return engine.Report{}, err
			}

			if placed != visual.Nil {
				st.Mark(func(s *visual.Scene) {
					for i := range s.Tree.Nodes {
						if visual.NodeID(i) != placed {
							s.Tree.Nodes[i].Tag = visual.TreeDefault
						}
					}
				})
				return engine.Report{}, nil
			}
			cur = next
		}
		return engine.Report{}, nil
	}
}

// BSTSearch descends one comparison per step until the value or an empty
// slot is reached.
func BSTSearch(value int) engine.Generator {
	return func(ctx context.Context, st *engine.Stepper) (engine.Report, error) {
		tree := st.Scene().Tree
		if tree.Empty() {
			return engine.FoundNode(false), nil
		}

		cur := tree.Root
		for cur != visual.Nil {
			node := tree.Nodes[cur]
			at := cur
			if err := st.Step(ctx, engine.StepDescend, func(s *visual.Scene) {
				s.Tree.Nodes[at].Tag = visual.TreeSearching
			}); err != nil {
				return engine.Report{}, err
			}

			if value == node.Value {
				st.Mark(func(s *visual.Scene) { s.Tree.Nodes[at].Tag = visual.TreeFound })
				return engine.FoundNode(true), nil
			}
			st.Mark(func(s *visual.Scene) { s.Tree.Nodes[at].Tag = visual.TreeVisiting })

			if value < node.Value {
				cur = node.Left
			} else {
				cur = node.Right
			}
		}
		return engine.FoundNode(false), nil
	}
}

// Traverse emits every node exactly once in the requested order, one step
// per emission. The report carries the emitted values.
func Traverse(order TraversalOrder) engine.Generator {
	return func(ctx context.Context, st *engine.Stepper) (engine.Report, error) {
		tree := st.Scene().Tree
		emitted := make([]int, 0, tree.Len())

		emit := func(id visual.NodeID) error {
			emitted = append(emitted, tree.Nodes[id].Value)
			if err := st.Step(ctx, engine.StepEmit, func(s *visual.Scene) {
				s.Tree.Nodes[id].Tag = visual.TreeCurrent
			}); err != nil {
				return err
			}
			st.Mark(func(s *visual.Scene) { s.Tree.Nodes[id].Tag = visual.TreeVisiting })
			return nil
		}

		var walk func(id visual.NodeID) error
		walk = func(id visual.NodeID) error {
			if id == visual.Nil {
				return nil
			}
			node := tree.Nodes[id]
			if order == PreOrder {
				if err := emit(id); err != nil {
					return err
				}
			}
			if err := walk(node.Left); err != nil {
				return err
			}
			if order == InOrder {
				if err := emit(id); err != nil {
					return err
				}
			}
			if err := walk(node.Right); err != nil {
				return err
			}
			if order == PostOrder {
				return emit(id)
			}
			return nil
		}

		if !tree.Empty() {
			if err := walk(tree.Root); err != nil {
				return engine.Report{}, err
			}
		}
		return engine.Traversal(emitted), nil
	}
}
