package visual

// Point is a canvas position in the original pixel coordinate space.
type Point struct {
	X, Y float64
}

const (
	layoutRootX   = 300
	layoutRootY   = 50
	layoutSpacing = 100
	layoutLevelDY = 80
)

// Layout places every reachable node top-down: children sit one level below
// their parent, offset by a horizontal spacing that halves at each level. The
// result depends only on tree shape, so unchanged subtrees keep their positions.
func Layout(t Tree) map[NodeID]Point {
	pos := make(map[NodeID]Point, len(t.Nodes))
	if t.Empty() {
		return pos
	}
	var place func(id NodeID, x, y, spacing float64)
	place = func(id NodeID, x, y, spacing float64) {
		if id == Nil {
			return
		}
		pos[id] = Point{X: x, Y: y}
		n := t.Nodes[id]
		place(n.Left, x-spacing, y+layoutLevelDY, spacing/2)
		place(n.Right, x+spacing, y+layoutLevelDY, spacing/2)
	}
	place(t.Root, layoutRootX, layoutRootY, layoutSpacing)
	return pos
}
