package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/san-kum/dsaviz/internal/visual"
)

const (
	barHeight      = 10
	wideBarsUpTo   = 25
	graphColPerPx  = 8.0 / 100
	graphRowPerPx  = 3.0 / 80
	treePxPerCol   = 6
	treeRowsPerLvl = 3
	indent         = "   "
)

// RenderScene draws a snapshot. It only reads the scene.
func RenderScene(s visual.Scene, t Theme) string {
	switch s.Kind {
	case visual.KindGraph:
		return renderGraph(s, t)
	case visual.KindTree:
		return renderTree(s, t)
	default:
		return renderArray(s, t)
	}
}

func renderArray(s visual.Scene, t Theme) string {
	n := len(s.Elements)
	if n == 0 {
		return indent + t.muted().Render("(empty)") + "\n"
	}
	peak := 1
	for _, e := range s.Elements {
		peak = max(peak, e.Value)
	}
	cellW, bar := 2, "█"
	if n <= wideBarsUpTo {
		cellW, bar = 4, "███"
	}

	c := newCanvas(n*cellW, barHeight+1)
	for i, e := range s.Elements {
		h := max(1, e.Value*barHeight/peak)
		tone := elementTone(e.Tag)
		for y := barHeight - h; y < barHeight; y++ {
			c.text(i*cellW, y, bar, tone)
		}
		if cellW == 4 {
			c.text(i*cellW, barHeight, fmt.Sprintf("%3d", e.Value), tone)
		}
	}
	return c.render(t, indent)
}

func renderGraph(s visual.Scene, t Theme) string {
	if len(s.Nodes) == 0 {
		return indent + t.muted().Render("(empty graph)") + "\n"
	}
	minX, minY := s.Nodes[0].X, s.Nodes[0].Y
	for _, n := range s.Nodes {
		minX, minY = min(minX, n.X), min(minY, n.Y)
	}
	pos := make(map[int][2]int, len(s.Nodes))
	w, h := 0, 0
	for _, n := range s.Nodes {
		x := int(float64(n.X-minX)*graphColPerPx) + 1
		y := int(float64(n.Y-minY) * graphRowPerPx)
		pos[n.ID] = [2]int{x, y}
		w, h = max(w, x+4), max(h, y+1)
	}

	c := newCanvas(w, h)
	// Labels first so edges flow around them.
	for _, n := range s.Nodes {
		p := pos[n.ID]
		c.text(p[0], p[1], strconv.Itoa(n.ID), nodeTone(n.Tag))
	}
	for _, e := range s.Edges {
		a, b := pos[e.From], pos[e.To]
		r := '·'
		switch {
		case a[1] == b[1]:
			r = '─'
		case a[0] == b[0]:
			r = '│'
		}
		c.line(a[0], a[1], b[0], b[1], r, ToneMuted)
	}
	return c.render(t, indent)
}

func renderTree(s visual.Scene, t Theme) string {
	if s.Tree.Empty() {
		return indent + t.muted().Render("(empty tree)") + "\n"
	}
	layout := visual.Layout(s.Tree)
	minX := 0.0
	first := true
	for _, p := range layout {
		if first || p.X < minX {
			minX, first = p.X, false
		}
	}

	type cellPos struct{ x, y int }
	pos := make(map[visual.NodeID]cellPos, len(layout))
	w, h := 0, 0
	for id, p := range layout {
		x := int(p.X-minX)/treePxPerCol + 1
		y := int(p.Y-layout[s.Tree.Root].Y) / 80 * treeRowsPerLvl
		pos[id] = cellPos{x, y}
		w, h = max(w, x+4), max(h, y+1)
	}

	c := newCanvas(w, h)
	for id, p := range pos {
		n := s.Tree.Nodes[id]
		label := strconv.Itoa(n.Value)
		c.text(p.x-len(label)/2, p.y, label, treeTone(n.Tag))
	}
	for id, p := range pos {
		n := s.Tree.Nodes[id]
		for _, child := range []visual.NodeID{n.Left, n.Right} {
			if child == visual.Nil {
				continue
			}
			q := pos[child]
			r := '\\'
			if q.x < p.x {
				r = '/'
			}
			c.line(p.x, p.y+1, q.x, q.y-1, r, ToneMuted)
		}
	}
	return c.render(t, indent)
}

// renderOrder lists traversal output, newest last.
func renderOrder(order []int) string {
	parts := make([]string, len(order))
	for i, v := range order {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, " → ")
}
