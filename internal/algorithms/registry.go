// Package algorithms holds the step-wise algorithm generators and the
// registry that maps names to them.
package algorithms

import (
	"fmt"
	"sort"

	"github.com/san-kum/dsaviz/internal/engine"
	"github.com/san-kum/dsaviz/internal/visual"
)

// Family groups algorithms that share a data model and delay profile.
type Family string

const (
	FamilySort   Family = "sort"
	FamilySearch Family = "search"
	FamilyGraph  Family = "graph"
	FamilyTree   Family = "tree"
)

// Bounds for user supplied search targets and tree values.
const (
	ValueMin = 1
	ValueMax = 100
)

// Params are the per-run inputs. Only the field an algorithm needs is read.
type Params struct {
	Target int `yaml:"target" hcl:"target,optional" json:"target,omitempty"`
	Value  int `yaml:"value" hcl:"value,optional" json:"value,omitempty"`
	Start  int `yaml:"start" hcl:"start,optional" json:"start,omitempty"`
}

// Spec describes one registered algorithm.
type Spec struct {
	Name   string
	Title  string
	Family Family
	Scene  visual.Kind
	Delay  engine.DelayProfile

	build    func(Params) engine.Generator
	validate func(Params, visual.Scene) error
}

// New builds the generator for one run.
func (s Spec) New(p Params) engine.Generator {
	return s.build(p)
}

// Validate checks params and data before a run starts. A failing check
// means no step is ever taken.
func (s Spec) Validate(p Params, scene visual.Scene) error {
	if scene.Kind != s.Scene {
		return fmt.Errorf("%w: %s needs %s data, have %s", engine.ErrInvalidInput, s.Name, s.Scene, scene.Kind)
	}
	if s.validate == nil {
		return nil
	}
	return s.validate(p, scene)
}

type Registry struct {
	specs map[string]Spec
}

func NewRegistry() *Registry {
	r := &Registry{specs: make(map[string]Spec)}

	sorter := func(name, title string, gen engine.Generator) {
		r.add(Spec{
			Name: name, Title: title, Family: FamilySort, Scene: visual.KindArray, Delay: engine.SortDelay,
			build: func(Params) engine.Generator { return gen },
		})
	}
	sorter("bubble", "Bubble Sort", BubbleSort)
	sorter("selection", "Selection Sort", SelectionSort)
	sorter("insertion", "Insertion Sort", InsertionSort)
	sorter("treesort", "Tree Sort", TreeSort)

	r.add(Spec{
		Name: "linear", Title: "Linear Search", Family: FamilySearch, Scene: visual.KindArray, Delay: engine.ScanDelay,
		build:    func(p Params) engine.Generator { return LinearSearch(p.Target) },
		validate: validateTarget,
	})
	r.add(Spec{
		Name: "binary", Title: "Binary Search", Family: FamilySearch, Scene: visual.KindArray, Delay: engine.DescentDelay,
		build: func(p Params) engine.Generator { return BinarySearch(p.Target) },
		validate: func(p Params, scene visual.Scene) error {
			if err := validateTarget(p, scene); err != nil {
				return err
			}
			if !scene.Ordered {
				return fmt.Errorf("%w: binary search needs strictly increasing data", engine.ErrPreconditionViolation)
			}
			return nil
		},
	})

	r.add(Spec{
		Name: "bfs", Title: "Breadth-First Search", Family: FamilyGraph, Scene: visual.KindGraph, Delay: engine.ScanDelay,
		build:    func(p Params) engine.Generator { return BFS(p.Start) },
		validate: validateStart,
	})
	r.add(Spec{
		Name: "dfs", Title: "Depth-First Search", Family: FamilyGraph, Scene: visual.KindGraph, Delay: engine.ScanDelay,
		build:    func(p Params) engine.Generator { return DFS(p.Start) },
		validate: validateStart,
	})

	r.add(Spec{
		Name: "insert", Title: "BST Insert", Family: FamilyTree, Scene: visual.KindTree, Delay: engine.ScanDelay,
		build: func(p Params) engine.Generator { return BSTInsert(p.Value) },
		validate: func(p Params, scene visual.Scene) error {
			if err := validateValue(p.Value, scene); err != nil {
				return err
			}
			if scene.Tree.Find(p.Value) != visual.Nil {
				return fmt.Errorf("%w: %d already in tree", engine.ErrInvalidInput, p.Value)
			}
			return nil
		},
	})
	r.add(Spec{
		Name: "search", Title: "BST Search", Family: FamilyTree, Scene: visual.KindTree, Delay: engine.DescentDelay,
		build:    func(p Params) engine.Generator { return BSTSearch(p.Value) },
		validate: func(p Params, scene visual.Scene) error { return validateValue(p.Value, scene) },
	})
	for _, order := range []TraversalOrder{InOrder, PreOrder, PostOrder} {
		order := order // per-iteration copy; go directive is 1.21
		r.add(Spec{
			Name: string(order), Title: traversalTitle(order), Family: FamilyTree, Scene: visual.KindTree, Delay: engine.DescentDelay,
			build: func(Params) engine.Generator { return Traverse(order) },
		})
	}

	return r
}

func (r *Registry) add(s Spec) { r.specs[s.Name] = s }

func (r *Registry) Get(name string) (Spec, error) {
	s, ok := r.specs[name]
	if !ok {
		return Spec{}, fmt.Errorf("%w: %s", engine.ErrUnknownAlgorithm, name)
	}
	return s, nil
}

// List returns all specs ordered by family then name.
func (r *Registry) List() []Spec {
	specs := make([]Spec, 0, len(r.specs))
	for _, s := range r.specs {
		specs = append(specs, s)
	}
	sort.Slice(specs, func(i, j int) bool {
		if familyRank[specs[i].Family] != familyRank[specs[j].Family] {
			return familyRank[specs[i].Family] < familyRank[specs[j].Family]
		}
		return specs[i].Name < specs[j].Name
	})
	return specs
}

func (r *Registry) Names() []string {
	specs := r.List()
	names := make([]string, len(specs))
	for i, s := range specs {
		names[i] = s.Name
	}
	return names
}

func (r *Registry) ByFamily(f Family) []Spec {
	var out []Spec
	for _, s := range r.List() {
		if s.Family == f {
			out = append(out, s)
		}
	}
	return out
}

var familyRank = map[Family]int{FamilySort: 0, FamilySearch: 1, FamilyGraph: 2, FamilyTree: 3}

func traversalTitle(o TraversalOrder) string {
	switch o {
	case PreOrder:
		return "Pre-order Traversal"
	case PostOrder:
		return "Post-order Traversal"
	default:
		return "In-order Traversal"
	}
}

// valueBounds is [ValueMin, ValueMax] widened to cover every value already
// in the scene, so any present value is a valid target.
func valueBounds(scene visual.Scene) (int, int) {
	lo, hi := ValueMin, ValueMax
	for _, e := range scene.Elements {
		lo, hi = min(lo, e.Value), max(hi, e.Value)
	}
	for _, n := range scene.Tree.Nodes {
		lo, hi = min(lo, n.Value), max(hi, n.Value)
	}
	return lo, hi
}

func validateValue(v int, scene visual.Scene) error {
	lo, hi := valueBounds(scene)
	if v < lo || v > hi {
		return fmt.Errorf("%w: value must be in [%d, %d], got %d", engine.ErrInvalidInput, lo, hi, v)
	}
	return nil
}

func validateTarget(p Params, scene visual.Scene) error {
	lo, hi := valueBounds(scene)
	if p.Target < lo || p.Target > hi {
		return fmt.Errorf("%w: target must be in [%d, %d], got %d", engine.ErrInvalidInput, lo, hi, p.Target)
	}
	return nil
}

func validateStart(p Params, scene visual.Scene) error {
	if len(scene.Nodes) == 0 {
		return nil
	}
	if scene.NodeIndex(p.Start) < 0 {
		return fmt.Errorf("%w: start node %d not in graph", engine.ErrInvalidInput, p.Start)
	}
	return nil
}
