package visual

import "slices"

// Kind identifies which data model a scene carries.
type Kind string

const (
	KindArray Kind = "array"
	KindGraph Kind = "graph"
	KindTree  Kind = "tree"
)

// ElementTag is the highlight state of an array element.
type ElementTag string

const (
	ElementDefault   ElementTag = "default"
	ElementComparing ElementTag = "comparing"
	ElementSwapping  ElementTag = "swapping"
	ElementPivot     ElementTag = "pivot"
	ElementSorted    ElementTag = "sorted"
	ElementVisited   ElementTag = "visited"
	ElementSearching ElementTag = "searching"
	ElementFound     ElementTag = "found"
	ElementNotFound  ElementTag = "notFound"
)

// NodeTag is the highlight state of a graph node.
type NodeTag string

const (
	NodeDefault  NodeTag = "default"
	NodeStart    NodeTag = "start"
	NodeVisiting NodeTag = "visiting"
	NodeVisited  NodeTag = "visited"
	NodeCurrent  NodeTag = "current"
)

// TreeTag is the highlight state of a tree node.
type TreeTag string

const (
	TreeDefault   TreeTag = "default"
	TreeInserting TreeTag = "inserting"
	TreeSearching TreeTag = "searching"
	TreeFound     TreeTag = "found"
	TreeVisiting  TreeTag = "visiting"
	TreeCurrent   TreeTag = "current"
)

type Element struct {
	Value int        `json:"value"`
	Tag   ElementTag `json:"tag"`
}

type GraphNode struct {
	ID  int     `json:"id"`
	X   int     `json:"x"`
	Y   int     `json:"y"`
	Tag NodeTag `json:"tag"`
}

// GraphEdge is undirected.
type GraphEdge struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Scene is the full entity collection observed by renderers. Only one of
// Elements, Nodes/Edges or Tree is populated, according to Kind.
type Scene struct {
	Kind     Kind        `json:"kind"`
	Elements []Element   `json:"elements,omitempty"`
	Nodes    []GraphNode `json:"nodes,omitempty"`
	Edges    []GraphEdge `json:"edges,omitempty"`
	Tree     Tree        `json:"tree"`

	// Ordered is set only when the elements were produced strictly increasing.
	Ordered bool `json:"ordered,omitempty"`
}

func (s Scene) Clone() Scene {
	c := s
	if s.Elements != nil {
		c.Elements = make([]Element, len(s.Elements))
		copy(c.Elements, s.Elements)
	}
	if s.Nodes != nil {
		c.Nodes = make([]GraphNode, len(s.Nodes))
		copy(c.Nodes, s.Nodes)
	}
	if s.Edges != nil {
		c.Edges = make([]GraphEdge, len(s.Edges))
		copy(c.Edges, s.Edges)
	}
	c.Tree = s.Tree.Clone()
	return c
}

// Values returns the element values in index order.
func (s Scene) Values() []int {
	out := make([]int, len(s.Elements))
	for i, e := range s.Elements {
		out[i] = e.Value
	}
	return out
}

// Size is the number of entities of the scene's kind.
func (s Scene) Size() int {
	switch s.Kind {
	case KindGraph:
		return len(s.Nodes)
	case KindTree:
		return s.Tree.Len()
	default:
		return len(s.Elements)
	}
}

// ResetTags puts every entity back to its default highlight.
func (s *Scene) ResetTags() {
	for i := range s.Elements {
		s.Elements[i].Tag = ElementDefault
	}
	for i := range s.Nodes {
		s.Nodes[i].Tag = NodeDefault
	}
	for i := range s.Tree.Nodes {
		s.Tree.Nodes[i].Tag = TreeDefault
	}
}

// Adjacency builds sorted neighbour lists indexed by node id.
func (s Scene) Adjacency() map[int][]int {
	adj := make(map[int][]int, len(s.Nodes))
	for _, n := range s.Nodes {
		adj[n.ID] = nil
	}
	for _, e := range s.Edges {
		adj[e.From] = append(adj[e.From], e.To)
		adj[e.To] = append(adj[e.To], e.From)
	}
	for id := range adj {
		slices.Sort(adj[id])
	}
	return adj
}

// NodeIndex returns the position of the node with the given id, or -1.
func (s Scene) NodeIndex(id int) int {
	for i, n := range s.Nodes {
		if n.ID == id {
			return i
		}
	}
	return -1
}
