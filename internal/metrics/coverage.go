package metrics

import "github.com/san-kum/dsaviz/internal/engine"

// Coverage is the share of entities the run has touched, read from the
// latest frame.
type Coverage struct {
	name    string
	touched int
	total   int
}

func NewCoverage() *Coverage {
	return &Coverage{name: "coverage"}
}

func (c *Coverage) Name() string {
	return c.name
}

func (c *Coverage) Observe(f engine.Frame) {
	c.touched = Touched(f.Scene)
	c.total = f.Scene.Size()
}

func (c *Coverage) Value() float64 {
	if c.total == 0 {
		return 0
	}
	return float64(c.touched) / float64(c.total)
}

func (c *Coverage) Reset() {
	c.touched = 0
	c.total = 0
}
