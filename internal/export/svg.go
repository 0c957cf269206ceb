// Package export renders recorded runs as standalone SVG documents.
package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/dsaviz/internal/storage"
)

// tagFills maps recorded tags to bar colours. Graph and tree tags share
// names with array tags where the meaning matches.
var tagFills = map[string]string{
	"comparing": "#f1c40f",
	"swapping":  "#e74c3c",
	"pivot":     "#9b59b6",
	"sorted":    "#2ecc71",
	"visited":   "#3498db",
	"searching": "#e67e22",
	"found":     "#2ecc71",
	"notFound":  "#7f8c8d",
	"start":     "#1abc9c",
	"visiting":  "#e67e22",
	"current":   "#e74c3c",
	"inserting": "#e74c3c",
}

const defaultFill = "#00ff00"

// FrameToSVG draws one recorded frame as a bar chart, one bar per value,
// coloured by its tag.
func FrameToSVG(f storage.FrameRecord, width, height int) string {
	if len(f.Values) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	peak := 1
	for _, v := range f.Values {
		peak = max(peak, v)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<text x="4" y="14" fill="#888888" font-family="monospace" font-size="12">step %d %s</text>
<g>
`, width, height, width, height, f.Step, f.Kind)

	top := 20.0
	slot := float64(width) / float64(len(f.Values))
	gap := slot * 0.15
	for i, v := range f.Values {
		h := float64(v) / float64(peak) * (float64(height) - top)
		fill := defaultFill
		if i < len(f.Tags) {
			if c, ok := tagFills[f.Tags[i]]; ok {
				fill = c
			}
		}
		fmt.Fprintf(&sb, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>
`, float64(i)*slot+gap/2, float64(height)-h, slot-gap, h, fill)
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// ProgressToSVG plots the progress series of a run as a single path.
func ProgressToSVG(frames []storage.FrameRecord, width, height int, strokeColor string) string {
	if len(frames) < 2 {
		return ""
	}

	minY, maxY := frames[0].Progress, frames[0].Progress
	for _, f := range frames {
		minY, maxY = min(minY, f.Progress), max(maxY, f.Progress)
	}

	rangeY := maxY - minY
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY
	rangeX := float64(len(frames) - 1)

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor)

	for i, f := range frames {
		x := float64(i) / rangeX * float64(width)
		y := float64(height) - (f.Progress-minY)/rangeY*float64(height)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
