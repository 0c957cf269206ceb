package export

import (
	"strings"
	"testing"

	"github.com/san-kum/dsaviz/internal/engine"
	"github.com/san-kum/dsaviz/internal/storage"
)

func TestFrameToSVG(t *testing.T) {
	f := storage.FrameRecord{
		Step:   3,
		Kind:   engine.StepSwap,
		Values: []int{5, 1, 8},
		Tags:   []string{"default", "swapping", "sorted"},
	}
	svg := FrameToSVG(f, 300, 120)

	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatalf("not an svg document:\n%s", svg)
	}
	// Background plus one rect per value.
	if got := strings.Count(svg, "<rect"); got != 4 {
		t.Errorf("expected 4 rects, got %d", got)
	}
	if !strings.Contains(svg, tagFills["swapping"]) || !strings.Contains(svg, tagFills["sorted"]) {
		t.Error("tag colours missing")
	}
	if !strings.Contains(svg, "step 3 swap") {
		t.Error("caption missing")
	}
}

func TestFrameToSVGEmpty(t *testing.T) {
	if FrameToSVG(storage.FrameRecord{}, 100, 100) != "" {
		t.Error("empty frame should render nothing")
	}
}

func TestProgressToSVG(t *testing.T) {
	frames := []storage.FrameRecord{{Progress: 6}, {Progress: 4}, {Progress: 4}, {Progress: 0}}
	svg := ProgressToSVG(frames, 200, 100, "#ff0000")
	if got := strings.Count(svg, " L"); got != len(frames)-1 {
		t.Errorf("expected %d segments, got %d", len(frames)-1, got)
	}
	if !strings.Contains(svg, `stroke="#ff0000"`) {
		t.Error("stroke colour missing")
	}
	if ProgressToSVG(frames[:1], 200, 100, "#fff") != "" {
		t.Error("a single point has no path")
	}
}
