// Package dataset builds the entity collections algorithms run over. Every
// generator is deterministic for a given seed.
package dataset

import (
	"fmt"
	"math/rand"

	"github.com/san-kum/dsaviz/internal/engine"
	"github.com/san-kum/dsaviz/internal/visual"
)

type Kind string

const (
	KindRandom  Kind = "random"
	KindUnique  Kind = "unique"
	KindSorted  Kind = "sorted"
	KindValues  Kind = "values"
	KindOrdered Kind = "ordered"
	KindGrid    Kind = "grid"
	KindTree    Kind = "tree"
)

const (
	MaxSize = 100

	DefaultSortSize   = 15
	DefaultSearchSize = 15
	SortValueMin      = 20
	SortValueMax      = 199
	SearchValueMin    = 1
	SearchValueMax    = 100
	SortedStep        = 5
	DefaultRows       = 3
	DefaultCols       = 4
	MaxGridNodes      = 400
)

// SampleValues seeds the demo tree.
var SampleValues = []int{50, 30, 70, 20, 40, 60, 80}

type Params struct {
	Kind   Kind  `yaml:"kind" hcl:"kind,optional" json:"kind"`
	Size   int   `yaml:"size" hcl:"size,optional" json:"size"`
	Seed   int64 `yaml:"seed" hcl:"seed,optional" json:"seed"`
	Min    int   `yaml:"min" hcl:"min,optional" json:"min,omitempty"`
	Max    int   `yaml:"max" hcl:"max,optional" json:"max,omitempty"`
	Step   int   `yaml:"step" hcl:"step,optional" json:"step,omitempty"`
	Values []int `yaml:"values" hcl:"values,optional" json:"values,omitempty"`
	Rows   int   `yaml:"rows" hcl:"rows,optional" json:"rows,omitempty"`
	Cols   int   `yaml:"cols" hcl:"cols,optional" json:"cols,omitempty"`
	Sample bool  `yaml:"sample" hcl:"sample,optional" json:"sample,omitempty"`
}

// Generate dispatches on p.Kind, filling unset fields with defaults.
func Generate(p Params) (visual.Scene, error) {
	if p.Size < 0 || p.Size > MaxSize {
		return visual.Scene{}, fmt.Errorf("%w: size must be in [0, %d], got %d", engine.ErrInvalidInput, MaxSize, p.Size)
	}
	rng := rand.New(rand.NewSource(p.Seed))

	switch p.Kind {
	case KindRandom, "":
		lo, hi := bounds(p, SortValueMin, SortValueMax)
		return RandomArray(rng, sizeOr(p.Size, DefaultSortSize), lo, hi)
	case KindUnique:
		lo, hi := bounds(p, SearchValueMin, SearchValueMax)
		return UniqueArray(rng, sizeOr(p.Size, DefaultSearchSize), lo, hi)
	case KindSorted:
		step := p.Step
		if step <= 0 {
			step = SortedStep
		}
		return SortedArray(sizeOr(p.Size, DefaultSearchSize), step), nil
	case KindValues:
		return FromValues(p.Values), nil
	case KindOrdered:
		return OrderedFromValues(p.Values)
	case KindGrid:
		rows, cols := p.Rows, p.Cols
		if rows == 0 && cols == 0 {
			rows, cols = DefaultRows, DefaultCols
		}
		return Grid(rows, cols)
	case KindTree:
		if p.Sample {
			return TreeFromValues(SampleValues)
		}
		return TreeFromValues(p.Values)
	default:
		return visual.Scene{}, fmt.Errorf("%w: unknown data kind %q", engine.ErrInvalidInput, p.Kind)
	}
}

func sizeOr(size, def int) int {
	if size == 0 {
		return def
	}
	return size
}

func bounds(p Params, lo, hi int) (int, int) {
	if p.Min != 0 || p.Max != 0 {
		return p.Min, p.Max
	}
	return lo, hi
}

// RandomArray draws size values uniformly from [lo, hi]; duplicates allowed.
func RandomArray(rng *rand.Rand, size, lo, hi int) (visual.Scene, error) {
	if hi < lo {
		return visual.Scene{}, fmt.Errorf("%w: empty value range [%d, %d]", engine.ErrInvalidInput, lo, hi)
	}
	elems := make([]visual.Element, size)
	for i := range elems {
		elems[i] = visual.Element{Value: lo + rng.Intn(hi-lo+1), Tag: visual.ElementDefault}
	}
	return visual.Scene{Kind: visual.KindArray, Elements: elems}, nil
}

// UniqueArray draws size distinct values from [lo, hi] in draw order.
func UniqueArray(rng *rand.Rand, size, lo, hi int) (visual.Scene, error) {
	if hi-lo+1 < size {
		return visual.Scene{}, fmt.Errorf("%w: cannot draw %d unique values from [%d, %d]", engine.ErrInvalidInput, size, lo, hi)
	}
	seen := make(map[int]struct{}, size)
	elems := make([]visual.Element, 0, size)
	for len(elems) < size {
		v := lo + rng.Intn(hi-lo+1)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		elems = append(elems, visual.Element{Value: v, Tag: visual.ElementDefault})
	}
	return visual.Scene{Kind: visual.KindArray, Elements: elems}, nil
}

// SortedArray yields step, 2*step, ... which is strictly increasing by
// construction.
func SortedArray(size, step int) visual.Scene {
	elems := make([]visual.Element, size)
	for i := range elems {
		elems[i] = visual.Element{Value: (i + 1) * step, Tag: visual.ElementDefault}
	}
	return visual.Scene{Kind: visual.KindArray, Elements: elems, Ordered: true}
}

func FromValues(values []int) visual.Scene {
	elems := make([]visual.Element, len(values))
	for i, v := range values {
		elems[i] = visual.Element{Value: v, Tag: visual.ElementDefault}
	}
	return visual.Scene{Kind: visual.KindArray, Elements: elems}
}

// OrderedFromValues accepts only strictly increasing values.
func OrderedFromValues(values []int) (visual.Scene, error) {
	for i := 1; i < len(values); i++ {
		if values[i] <= values[i-1] {
			return visual.Scene{}, fmt.Errorf("%w: values must be strictly increasing, %d follows %d at index %d",
				engine.ErrPreconditionViolation, values[i], values[i-1], i)
		}
	}
	s := FromValues(values)
	s.Ordered = true
	return s, nil
}

// Grid connects each node to its right and lower neighbour.
func Grid(rows, cols int) (visual.Scene, error) {
	if rows <= 0 || cols <= 0 || rows*cols > MaxGridNodes {
		return visual.Scene{}, fmt.Errorf("%w: grid %dx%d out of range", engine.ErrInvalidInput, rows, cols)
	}
	nodes := make([]visual.GraphNode, 0, rows*cols)
	edges := make([]visual.GraphEdge, 0, 2*rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			id := r*cols + c
			nodes = append(nodes, visual.GraphNode{ID: id, X: 80 + c*100, Y: 60 + r*80, Tag: visual.NodeDefault})
			if c < cols-1 {
				edges = append(edges, visual.GraphEdge{From: id, To: id + 1})
			}
			if r < rows-1 {
				edges = append(edges, visual.GraphEdge{From: id, To: id + cols})
			}
		}
	}
	return visual.Scene{Kind: visual.KindGraph, Nodes: nodes, Edges: edges}, nil
}

// TreeFromValues inserts values in order; duplicates are rejected.
func TreeFromValues(values []int) (visual.Scene, error) {
	tree := visual.NewTree()
	for _, v := range values {
		if _, ok := tree.Insert(v); !ok {
			return visual.Scene{}, fmt.Errorf("%w: duplicate tree value %d", engine.ErrInvalidInput, v)
		}
	}
	return visual.Scene{Kind: visual.KindTree, Tree: tree}, nil
}
