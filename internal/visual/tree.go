package visual

// NodeID indexes a node inside its tree's arena.
type NodeID int

// Nil marks an empty child slot or an empty tree.
const Nil NodeID = -1

type TreeNode struct {
	ID    NodeID  `json:"id"`
	Value int     `json:"value"`
	Left  NodeID  `json:"left"`
	Right NodeID  `json:"right"`
	Tag   TreeTag `json:"tag"`
}

// Tree is an unbalanced binary search tree kept in an arena. Nodes are never
// removed or moved, so a NodeID stays valid for the tree's lifetime.
type Tree struct {
	Nodes []TreeNode `json:"nodes,omitempty"`
	Root  NodeID     `json:"root"`
}

func NewTree() Tree {
	return Tree{Root: Nil}
}

func (t Tree) Clone() Tree {
	c := Tree{Root: t.Root}
	if t.Nodes != nil {
		c.Nodes = make([]TreeNode, len(t.Nodes))
		copy(c.Nodes, t.Nodes)
	}
	if len(c.Nodes) == 0 && c.Root == 0 {
		c.Root = Nil
	}
	return c
}

func (t Tree) Len() int { return len(t.Nodes) }

func (t Tree) Empty() bool { return t.Root == Nil || len(t.Nodes) == 0 }

// Node returns a pointer into the arena; callers must not keep it across an
// Attach, which may grow the slice.
func (t *Tree) Node(id NodeID) *TreeNode {
	if id < 0 || int(id) >= len(t.Nodes) {
		return nil
	}
	return &t.Nodes[id]
}

// Attach creates a leaf under parent on the given side. With parent == Nil the
// leaf becomes the root. The slot must be empty.
func (t *Tree) Attach(parent NodeID, left bool, value int, tag TreeTag) NodeID {
	id := NodeID(len(t.Nodes))
	t.Nodes = append(t.Nodes, TreeNode{ID: id, Value: value, Left: Nil, Right: Nil, Tag: tag})
	if parent == Nil {
		t.Root = id
		return id
	}
	if left {
		t.Nodes[parent].Left = id
	} else {
		t.Nodes[parent].Right = id
	}
	return id
}

// Insert adds value without stepping. Duplicates are ignored and reported.
func (t *Tree) Insert(value int) (NodeID, bool) {
	if t.Empty() {
		t.Nodes = t.Nodes[:0]
		return t.Attach(Nil, false, value, TreeDefault), true
	}
	cur := t.Root
	for {
		n := t.Nodes[cur]
		switch {
		case value == n.Value:
			return cur, false
		case value < n.Value:
			if n.Left == Nil {
				return t.Attach(cur, true, value, TreeDefault), true
			}
			cur = n.Left
		default:
			if n.Right == Nil {
				return t.Attach(cur, false, value, TreeDefault), true
			}
			cur = n.Right
		}
	}
}

// Find returns the node holding value, or Nil.
func (t Tree) Find(value int) NodeID {
	cur := t.Root
	for cur != Nil && int(cur) < len(t.Nodes) {
		n := t.Nodes[cur]
		if value == n.Value {
			return cur
		}
		if value < n.Value {
			cur = n.Left
		} else {
			cur = n.Right
		}
	}
	return Nil
}

// InOrder returns the values in ascending key order.
func (t Tree) InOrder() []int {
	out := make([]int, 0, len(t.Nodes))
	var walk func(NodeID)
	walk = func(id NodeID) {
		if id == Nil {
			return
		}
		n := t.Nodes[id]
		walk(n.Left)
		out = append(out, n.Value)
		walk(n.Right)
	}
	if !t.Empty() {
		walk(t.Root)
	}
	return out
}

// Depth is the number of levels; an empty tree has depth 0.
func (t Tree) Depth() int {
	var depth func(NodeID) int
	depth = func(id NodeID) int {
		if id == Nil {
			return 0
		}
		n := t.Nodes[id]
		return 1 + max(depth(n.Left), depth(n.Right))
	}
	if t.Empty() {
		return 0
	}
	return depth(t.Root)
}
