package tui

import "strings"

type cell struct {
	r    rune
	tone Tone
}

// canvas is a character grid where every cell carries a tone.
type canvas struct {
	w, h  int
	cells [][]cell
}

func newCanvas(w, h int) *canvas {
	c := &canvas{w: w, h: h, cells: make([][]cell, h)}
	for y := range c.cells {
		c.cells[y] = make([]cell, w)
		for x := range c.cells[y] {
			c.cells[y][x] = cell{r: ' '}
		}
	}
	return c
}

func (c *canvas) set(x, y int, r rune, tone Tone) {
	if x >= 0 && x < c.w && y >= 0 && y < c.h {
		c.cells[y][x] = cell{r: r, tone: tone}
	}
}

// text writes s starting at (x, y), clipped to the canvas.
func (c *canvas) text(x, y int, s string, tone Tone) {
	for i, r := range []rune(s) {
		c.set(x+i, y, r, tone)
	}
}

// line draws with Bresenham's algorithm, leaving cells that already hold a
// non-space rune untouched so labels stay readable.
func (c *canvas) line(x0, y0, x1, y1 int, r rune, tone Tone) {
	dx := abs(x1 - x0)
	dy := abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx - dy
	for {
		if x0 >= 0 && x0 < c.w && y0 >= 0 && y0 < c.h && c.cells[y0][x0].r == ' ' {
			c.cells[y0][x0] = cell{r: r, tone: tone}
		}
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// render joins runs of equal tone into one styled span each.
func (c *canvas) render(t Theme, indent string) string {
	var b strings.Builder
	for _, row := range c.cells {
		b.WriteString(indent)
		end := len(row)
		for end > 0 && row[end-1].r == ' ' {
			end--
		}
		for i := 0; i < end; {
			j := i
			var run strings.Builder
			for j < end && row[j].tone == row[i].tone {
				run.WriteRune(row[j].r)
				j++
			}
			b.WriteString(t.style(row[i].tone).Render(run.String()))
			i = j
		}
		b.WriteString("\n")
	}
	return b.String()
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
