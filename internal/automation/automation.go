// Package automation runs scripted sequences of algorithm runs and size
// sweeps without a terminal attached.
package automation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/dsaviz/internal/algorithms"
	"github.com/san-kum/dsaviz/internal/config"
	"github.com/san-kum/dsaviz/internal/ctxlog"
	"github.com/san-kum/dsaviz/internal/dataset"
	"github.com/san-kum/dsaviz/internal/engine"
	"github.com/san-kum/dsaviz/internal/storage"
	"github.com/san-kum/dsaviz/internal/visualizer"
)

// Scenario is a scripted sequence of runs. It loads from YAML or HCL.
type Scenario struct {
	Name        string         `yaml:"name" hcl:"name,optional"`
	Description string         `yaml:"description" hcl:"description,optional"`
	Steps       []ScenarioStep `yaml:"steps" hcl:"step,block"`
}

// ScenarioStep is one run. Unset data and params fall back to the defaults
// for the algorithm.
type ScenarioStep struct {
	Name      string             `yaml:"name" hcl:"name,label"`
	Algorithm string             `yaml:"algorithm" hcl:"algorithm"`
	Speed     int                `yaml:"speed" hcl:"speed,optional"`
	Data      *dataset.Params    `yaml:"data" hcl:"data,block"`
	Params    *algorithms.Params `yaml:"params" hcl:"params,block"`
	SaveAs    string             `yaml:"save_as" hcl:"save_as,optional"`
}

// LoadScenario reads a scenario, choosing the decoder by file extension.
func LoadScenario(path string) (*Scenario, error) {
	var (
		scenario *Scenario
		err      error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hcl":
		scenario, err = loadHCL(path)
	case ".yaml", ".yml":
		scenario, err = loadYAML(path)
	default:
		return nil, fmt.Errorf("%w: unsupported scenario file %s", engine.ErrInvalidInput, path)
	}
	if err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("%w: scenario %s has no steps", engine.ErrInvalidInput, path)
	}
	return scenario, nil
}

func loadYAML(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("failed to parse scenario %s: %w", path, err)
	}
	for i := range scenario.Steps {
		if scenario.Steps[i].Name == "" {
			scenario.Steps[i].Name = fmt.Sprintf("step%d", i+1)
		}
	}
	return &scenario, nil
}

func loadHCL(path string) (*Scenario, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %s", path, diags.Error())
	}
	var scenario Scenario
	diags = gohcl.DecodeBody(file.Body, scenarioEvalContext(), &scenario)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %s", path, diags.Error())
	}
	return &scenario, nil
}

// scenarioEvalContext exposes the input bounds and defaults to HCL
// expressions, e.g. `target = limits.value_max`.
func scenarioEvalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"limits": cty.ObjectVal(map[string]cty.Value{
				"max_size":  cty.NumberIntVal(dataset.MaxSize),
				"value_min": cty.NumberIntVal(algorithms.ValueMin),
				"value_max": cty.NumberIntVal(algorithms.ValueMax),
			}),
			"defaults": cty.ObjectVal(map[string]cty.Value{
				"target": cty.NumberIntVal(config.DefaultTarget),
				"value":  cty.NumberIntVal(config.DefaultValue),
				"speed":  cty.NumberIntVal(engine.DefaultSpeed),
			}),
		},
	}
}

// Options control how runs execute. The zero value runs without pacing and
// saves nothing.
type Options struct {
	Registry *algorithms.Registry
	Pacer    engine.Pacer
	Delays   map[string]engine.DelayProfile
	// Store, when set, receives every run.
	Store *storage.Store
	// Observer sees every frame as it is published.
	Observer engine.Observer
}

func (o Options) registry() *algorithms.Registry {
	if o.Registry != nil {
		return o.Registry
	}
	return algorithms.NewRegistry()
}

func (o Options) pacer() engine.Pacer {
	if o.Pacer != nil {
		return o.Pacer
	}
	return engine.InstantPacer{}
}

// Request is a single run.
type Request struct {
	Algorithm string
	Speed     int
	Data      dataset.Params
	Params    algorithms.Params
	Label     string
}

// Outcome is a finished run with its recorded frames. RunID is empty when
// the run was not saved.
type Outcome struct {
	Request Request
	Result  visualizer.Result
	Frames  []storage.FrameRecord
	RunID   string
}

// Execute generates the data, runs the algorithm to completion on a fresh
// visualizer and records every frame.
func Execute(ctx context.Context, req Request, opts Options) (*Outcome, error) {
	reg := opts.registry()
	spec, err := reg.Get(req.Algorithm)
	if err != nil {
		return nil, err
	}
	speed := req.Speed
	if speed == 0 {
		speed = engine.DefaultSpeed
	}
	if err := engine.ValidateSpeed(speed); err != nil {
		return nil, err
	}

	v := visualizer.New(spec.Scene,
		visualizer.WithRegistry(reg),
		visualizer.WithPacer(opts.pacer()),
		visualizer.WithSpeed(speed),
		visualizer.WithDelays(opts.Delays),
	)
	scene, err := v.Generate(req.Data)
	if err != nil {
		return nil, err
	}
	rec := storage.NewRecorder(scene)
	unsubscribe := v.Subscribe(rec)
	defer unsubscribe()
	if opts.Observer != nil {
		defer v.Subscribe(opts.Observer)()
	}

	h, err := v.Start(ctx, req.Algorithm, req.Params)
	if err != nil {
		return nil, err
	}
	res, err := h.Wait(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			_ = v.Cancel(h)
			res, _ = v.Result()
		} else {
			return nil, err
		}
	}

	out := &Outcome{Request: req, Result: res, Frames: rec.Frames()}
	if opts.Store != nil {
		meta := storage.NewMetadata(spec, req.Data, req.Params, speed, res)
		meta.Label = req.Label
		runID, err := opts.Store.Save(meta, out.Frames)
		if err != nil {
			return out, fmt.Errorf("save %s: %w", req.Algorithm, err)
		}
		out.RunID = runID
	}
	return out, nil
}

// Request resolves the step against the default configuration.
func (s ScenarioStep) Request(reg *algorithms.Registry) (Request, error) {
	spec, err := reg.Get(s.Algorithm)
	if err != nil {
		return Request{}, err
	}
	cfg := config.DefaultConfig()
	cfg.Algorithm = s.Algorithm
	if s.Speed != 0 {
		cfg.Speed = s.Speed
	}
	if s.Data != nil {
		cfg.Data = *s.Data
	}
	if s.Params != nil {
		cfg.Params = *s.Params
	}
	label := s.SaveAs
	if label == "" {
		label = s.Name
	}
	return Request{
		Algorithm: s.Algorithm,
		Speed:     cfg.Speed,
		Data:      cfg.DataParams(spec),
		Params:    cfg.Params,
		Label:     label,
	}, nil
}

// RunScenario executes the steps in order and stops at the first failure.
// A step is saved when opts.Store is set or the step names a SaveAs label
// and a store can be created from dataDir.
func RunScenario(ctx context.Context, scenario *Scenario, opts Options, dataDir string) ([]Outcome, error) {
	logger := ctxlog.FromContext(ctx).With("scenario", scenario.Name)
	reg := opts.registry()
	opts.Registry = reg

	outcomes := make([]Outcome, 0, len(scenario.Steps))
	for i, step := range scenario.Steps {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}
		req, err := step.Request(reg)
		if err != nil {
			return outcomes, fmt.Errorf("step %d (%s): %w", i+1, step.Name, err)
		}

		stepOpts := opts
		if stepOpts.Store == nil && step.SaveAs != "" && dataDir != "" {
			store := storage.New(dataDir)
			if err := store.Init(); err != nil {
				return outcomes, err
			}
			stepOpts.Store = store
		}

		logger.Info("running step", "step", i+1, "of", len(scenario.Steps), "name", step.Name, "algorithm", step.Algorithm)
		out, err := Execute(ctxlog.WithLogger(ctx, logger), req, stepOpts)
		if err != nil {
			return outcomes, fmt.Errorf("step %d (%s): %w", i+1, step.Name, err)
		}
		outcomes = append(outcomes, *out)
	}
	return outcomes, nil
}

// SizeSweep runs one algorithm over a range of collection sizes, averaging
// each size over several seeds.
type SizeSweep struct {
	Algorithm string
	Kind      dataset.Kind
	MinSize   int
	MaxSize   int
	NumSteps  int
	Seeds     int
	Params    algorithms.Params
}

// SweepResult is the averaged outcome for one size.
type SweepResult struct {
	Size     int
	Runs     int
	AvgSteps float64
	MaxSteps int
	Metrics  map[string]float64
}

// RunSweep executes a size sweep. Seeds are 1..Seeds so a sweep is
// reproducible.
func RunSweep(ctx context.Context, sweep *SizeSweep, opts Options) ([]SweepResult, error) {
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("%w: sweep needs at least one step", engine.ErrInvalidInput)
	}
	if sweep.MinSize < 1 || sweep.MaxSize > dataset.MaxSize || sweep.MinSize > sweep.MaxSize {
		return nil, fmt.Errorf("%w: sweep sizes must satisfy 1 <= min <= max <= %d", engine.ErrInvalidInput, dataset.MaxSize)
	}
	seeds := sweep.Seeds
	if seeds < 1 {
		seeds = 1
	}
	reg := opts.registry()
	opts.Registry = reg
	spec, err := reg.Get(sweep.Algorithm)
	if err != nil {
		return nil, err
	}

	// Sweep runs are not recorded and their seeds run concurrently.
	opts.Store = nil
	opts.Observer = nil

	sizes := sweepSizes(sweep.MinSize, sweep.MaxSize, sweep.NumSteps)
	results := make([]SweepResult, 0, len(sizes))
	for _, size := range sizes {
		cfg := config.DefaultConfig()
		outs := make([]*Outcome, seeds)
		errs := make([]error, seeds)

		var wg sync.WaitGroup
		for i := 0; i < seeds; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				c := *cfg
				c.Data = dataset.Params{Kind: sweep.Kind, Size: size, Seed: int64(idx + 1)}
				outs[idx], errs[idx] = Execute(ctx, Request{
					Algorithm: sweep.Algorithm,
					Data:      c.DataParams(spec),
					Params:    sweep.Params,
				}, opts)
			}(i)
		}
		wg.Wait()

		sr := SweepResult{Size: size, Metrics: make(map[string]float64)}
		total := 0
		for i, out := range outs {
			if errs[i] != nil {
				return results, fmt.Errorf("size %d seed %d: %w", size, i+1, errs[i])
			}
			steps := out.Result.StepsTaken
			total += steps
			sr.MaxSteps = max(sr.MaxSteps, steps)
			for k, v := range out.Result.Metrics {
				sr.Metrics[k] += v / float64(seeds)
			}
			sr.Runs++
		}
		sr.AvgSteps = float64(total) / float64(seeds)
		results = append(results, sr)
	}
	return results, nil
}

func sweepSizes(lo, hi, n int) []int {
	if n == 1 || lo == hi {
		return []int{lo}
	}
	sizes := make([]int, 0, n)
	for i := 0; i < n; i++ {
		size := lo + (hi-lo)*i/(n-1)
		if len(sizes) > 0 && sizes[len(sizes)-1] == size {
			continue
		}
		sizes = append(sizes, size)
	}
	return sizes
}
