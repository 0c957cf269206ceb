package storage

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/san-kum/dsaviz/internal/engine"
	"github.com/san-kum/dsaviz/internal/metrics"
	"github.com/san-kum/dsaviz/internal/visual"
)

var frameHeader = []string{"step", "kind", "progress", "focus", "values", "tags"}

// FrameRecord is the flattened form of a frame kept on disk. Values and
// Tags follow element order for arrays and node id order for graphs and
// trees. Focus is the value of the highlighted entity, or -1.
type FrameRecord struct {
	Step     int             `json:"step"`
	Kind     engine.StepKind `json:"kind"`
	Progress float64         `json:"progress"`
	Focus    int             `json:"focus"`
	Values   []int           `json:"values"`
	Tags     []string        `json:"tags"`
}

func NewFrameRecord(f engine.Frame) FrameRecord {
	rec := FrameRecord{
		Step:     f.Step,
		Kind:     f.Kind,
		Progress: metrics.Progress(f.Scene),
		Focus:    Focus(f.Scene),
	}
	switch f.Scene.Kind {
	case visual.KindGraph:
		for _, n := range f.Scene.Nodes {
			rec.Values = append(rec.Values, n.ID)
			rec.Tags = append(rec.Tags, string(n.Tag))
		}
	case visual.KindTree:
		for _, n := range f.Scene.Tree.Nodes {
			rec.Values = append(rec.Values, n.Value)
			rec.Tags = append(rec.Tags, string(n.Tag))
		}
	default:
		for _, e := range f.Scene.Elements {
			rec.Values = append(rec.Values, e.Value)
			rec.Tags = append(rec.Tags, string(e.Tag))
		}
	}
	return rec
}

var focusTags = map[string]int{
	string(visual.ElementSearching): 0,
	string(visual.ElementSwapping):  1,
	string(visual.ElementComparing): 2,
	string(visual.ElementPivot):     3,
	string(visual.NodeCurrent):      0,
	string(visual.TreeInserting):    0,
	string(visual.ElementFound):     1,
}

// Focus picks the entity a viewer's eye is on: a probe, a swap, a compare,
// the current node. Graph nodes report their id.
func Focus(s visual.Scene) int {
	best, focus := len(focusTags), -1
	consider := func(tag string, value int) {
		if rank, ok := focusTags[tag]; ok && rank < best {
			best, focus = rank, value
		}
	}
	for _, e := range s.Elements {
		consider(string(e.Tag), e.Value)
	}
	for _, n := range s.Nodes {
		consider(string(n.Tag), n.ID)
	}
	for _, n := range s.Tree.Nodes {
		consider(string(n.Tag), n.Value)
	}
	return focus
}

func (f FrameRecord) row() []string {
	values := make([]string, len(f.Values))
	for i, v := range f.Values {
		values[i] = strconv.Itoa(v)
	}
	return []string{
		strconv.Itoa(f.Step),
		string(f.Kind),
		strconv.FormatFloat(f.Progress, 'f', 6, 64),
		strconv.Itoa(f.Focus),
		strings.Join(values, " "),
		strings.Join(f.Tags, " "),
	}
}

func parseRow(record []string) (FrameRecord, error) {
	if len(record) != len(frameHeader) {
		return FrameRecord{}, fmt.Errorf("expected %d fields, got %d", len(frameHeader), len(record))
	}
	step, err := strconv.Atoi(record[0])
	if err != nil {
		return FrameRecord{}, fmt.Errorf("step: %w", err)
	}
	progress, err := strconv.ParseFloat(record[2], 64)
	if err != nil {
		return FrameRecord{}, fmt.Errorf("progress: %w", err)
	}
	focus, err := strconv.Atoi(record[3])
	if err != nil {
		return FrameRecord{}, fmt.Errorf("focus: %w", err)
	}

	fields := strings.Fields(record[4])
	values := make([]int, len(fields))
	for i, field := range fields {
		if values[i], err = strconv.Atoi(field); err != nil {
			return FrameRecord{}, fmt.Errorf("value %d: %w", i, err)
		}
	}

	return FrameRecord{
		Step:     step,
		Kind:     engine.StepKind(record[1]),
		Progress: progress,
		Focus:    focus,
		Values:   values,
		Tags:     strings.Fields(record[5]),
	}, nil
}

// Recorder is an observer that keeps every frame of a run. The initial
// scene is stored as step 0.
type Recorder struct {
	mu     sync.Mutex
	frames []FrameRecord
}

func NewRecorder(initial visual.Scene) *Recorder {
	r := &Recorder{}
	r.OnStep(engine.Frame{Step: 0, Kind: engine.StepMark, Scene: initial})
	return r
}

func (r *Recorder) OnStep(f engine.Frame) {
	rec := NewFrameRecord(f)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, rec)
}

func (r *Recorder) Frames() []FrameRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]FrameRecord(nil), r.frames...)
}
