package automation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/san-kum/dsaviz/internal/algorithms"
	"github.com/san-kum/dsaviz/internal/dataset"
	"github.com/san-kum/dsaviz/internal/engine"
	"github.com/san-kum/dsaviz/internal/storage"
	"github.com/san-kum/dsaviz/internal/visualizer"
)

const yamlScenario = `
name: demo
description: sort then search
steps:
  - name: sort
    algorithm: bubble
    speed: 80
    data:
      kind: values
      values: [5, 3, 8, 1]
  - algorithm: binary
    data:
      kind: sorted
      size: 6
    params:
      target: 20
    save_as: probe
`

const hclScenario = `
name        = "demo"
description = "sort then search"

step "sort" {
  algorithm = "bubble"
  speed     = 80

  data {
    kind   = "values"
    values = [5, 3, 8, 1]
  }
}

step "probe" {
  algorithm = "binary"

  data {
    kind = "sorted"
    size = 6
  }

  params {
    target = 20
  }

  save_as = "probe"
}
`

func TestLoadScenario_HCLVariables(t *testing.T) {
	path := writeFile(t, "vars.hcl", `
step "edge" {
  algorithm = "insert"
  speed     = defaults.speed

  params {
    value = limits.value_max
  }
}
`)
	sc, err := LoadScenario(path)
	if err != nil {
		t.Fatal(err)
	}
	step := sc.Steps[0]
	if step.Speed != engine.DefaultSpeed {
		t.Errorf("expected default speed %d, got %d", engine.DefaultSpeed, step.Speed)
	}
	if step.Params == nil || step.Params.Value != algorithms.ValueMax {
		t.Errorf("expected value %d, got %+v", algorithms.ValueMax, step.Params)
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadScenario(t *testing.T) {
	for _, tc := range []struct{ file, content string }{
		{"demo.yaml", yamlScenario},
		{"demo.hcl", hclScenario},
	} {
		t.Run(tc.file, func(t *testing.T) {
			sc, err := LoadScenario(writeFile(t, tc.file, tc.content))
			if err != nil {
				t.Fatalf("LoadScenario: %v", err)
			}
			if sc.Name != "demo" || sc.Description != "sort then search" {
				t.Errorf("unexpected header %q / %q", sc.Name, sc.Description)
			}
			if len(sc.Steps) != 2 {
				t.Fatalf("expected 2 steps, got %d", len(sc.Steps))
			}

			sort := sc.Steps[0]
			if sort.Name != "sort" || sort.Algorithm != "bubble" || sort.Speed != 80 {
				t.Errorf("unexpected first step %+v", sort)
			}
			if sort.Data == nil || sort.Data.Kind != dataset.KindValues || !slices.Equal(sort.Data.Values, []int{5, 3, 8, 1}) {
				t.Errorf("unexpected data %+v", sort.Data)
			}
			if sort.Params != nil {
				t.Errorf("expected no params, got %+v", sort.Params)
			}

			probe := sc.Steps[1]
			if probe.Name == "" || probe.SaveAs != "probe" {
				t.Errorf("unexpected second step %+v", probe)
			}
			if probe.Params == nil || probe.Params.Target != 20 {
				t.Errorf("unexpected params %+v", probe.Params)
			}
		})
	}
}

func TestLoadScenario_Errors(t *testing.T) {
	if _, err := LoadScenario(writeFile(t, "demo.json", "{}")); !errors.Is(err, engine.ErrInvalidInput) {
		t.Errorf("json: expected ErrInvalidInput, got %v", err)
	}
	if _, err := LoadScenario(writeFile(t, "empty.yaml", "name: empty\n")); !errors.Is(err, engine.ErrInvalidInput) {
		t.Errorf("no steps: expected ErrInvalidInput, got %v", err)
	}
	if _, err := LoadScenario(writeFile(t, "bad.hcl", `step { algorithm = "bubble" }`)); err == nil {
		t.Error("expected error for unlabelled step block")
	}
	if _, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestExecute(t *testing.T) {
	out, err := Execute(context.Background(), Request{
		Algorithm: "bubble",
		Data:      dataset.Params{Kind: dataset.KindValues, Values: []int{5, 3, 8, 1}},
	}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if out.Result.Status != visualizer.StatusCompleted {
		t.Errorf("expected completed, got %s", out.Result.Status)
	}
	if out.Result.StepsTaken != 10 {
		t.Errorf("expected 10 steps, got %d", out.Result.StepsTaken)
	}
	if out.RunID != "" {
		t.Errorf("expected unsaved run, got id %q", out.RunID)
	}

	first, last := out.Frames[0], out.Frames[len(out.Frames)-1]
	if first.Step != 0 || !slices.Equal(first.Values, []int{5, 3, 8, 1}) {
		t.Errorf("unexpected initial frame %+v", first)
	}
	if last.Step != 10 || !slices.Equal(last.Values, []int{1, 3, 5, 8}) {
		t.Errorf("unexpected final frame %+v", last)
	}
}

func TestExecute_Observer(t *testing.T) {
	var last int
	seen := 0
	_, err := Execute(context.Background(), Request{
		Algorithm: "bubble",
		Data:      dataset.Params{Kind: dataset.KindValues, Values: []int{5, 3, 8, 1}},
	}, Options{Observer: engine.ObserverFunc(func(f engine.Frame) {
		seen++
		last = f.Step
	})})
	if err != nil {
		t.Fatal(err)
	}
	if seen == 0 || last != 10 {
		t.Errorf("observer saw %d frames, last step %d", seen, last)
	}
}

func TestExecute_SearchAboveDefaultRange(t *testing.T) {
	out, err := Execute(context.Background(), Request{
		Algorithm: "binary",
		Data:      dataset.Params{Kind: dataset.KindSorted, Size: 30},
		Params:    algorithms.Params{Target: 120},
	}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if out.Result.Found == nil || !*out.Result.Found || *out.Result.Index != 23 {
		t.Errorf("expected 120 found at 23, got %+v", out.Result)
	}
}

func TestExecute_InvalidInput(t *testing.T) {
	ctx := context.Background()
	if _, err := Execute(ctx, Request{Algorithm: "nope"}, Options{}); !errors.Is(err, engine.ErrUnknownAlgorithm) {
		t.Errorf("expected ErrUnknownAlgorithm, got %v", err)
	}
	if _, err := Execute(ctx, Request{Algorithm: "bubble", Speed: 101}, Options{}); !errors.Is(err, engine.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for speed, got %v", err)
	}
	_, err := Execute(ctx, Request{
		Algorithm: "binary",
		Data:      dataset.Params{Kind: dataset.KindValues, Values: []int{3, 1, 2}},
		Params:    algorithms.Params{Target: 2},
	}, Options{})
	if !errors.Is(err, engine.ErrPreconditionViolation) {
		t.Errorf("expected ErrPreconditionViolation, got %v", err)
	}
}

func TestRunScenario(t *testing.T) {
	sc, err := LoadScenario(writeFile(t, "demo.hcl", hclScenario))
	if err != nil {
		t.Fatal(err)
	}
	dataDir := t.TempDir()

	outcomes, err := RunScenario(context.Background(), sc, Options{}, dataDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(outcomes))
	}

	if outcomes[0].RunID != "" {
		t.Errorf("sort step has no save_as, got id %q", outcomes[0].RunID)
	}
	if outcomes[0].Request.Speed != 80 {
		t.Errorf("expected speed 80, got %d", outcomes[0].Request.Speed)
	}

	probe := outcomes[1]
	if probe.Result.Found == nil || !*probe.Result.Found || *probe.Result.Index != 3 {
		t.Errorf("expected 20 found at index 3, got %+v", probe.Result)
	}
	if probe.RunID == "" {
		t.Fatal("expected probe step to be saved")
	}

	store := storage.New(dataDir)
	meta, err := store.Load(probe.RunID)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Label != "probe" || meta.Algorithm != "binary" {
		t.Errorf("unexpected metadata %+v", meta)
	}
	frames, err := store.LoadFrames(probe.RunID)
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != len(probe.Frames) {
		t.Errorf("expected %d saved frames, got %d", len(probe.Frames), len(frames))
	}
}

func TestRunScenario_StopsAtFailure(t *testing.T) {
	sc := &Scenario{Name: "broken", Steps: []ScenarioStep{
		{Name: "ok", Algorithm: "linear"},
		{Name: "bad", Algorithm: "quicksort"},
		{Name: "never", Algorithm: "bubble"},
	}}
	outcomes, err := RunScenario(context.Background(), sc, Options{}, "")
	if !errors.Is(err, engine.ErrUnknownAlgorithm) {
		t.Errorf("expected ErrUnknownAlgorithm, got %v", err)
	}
	if len(outcomes) != 1 {
		t.Errorf("expected 1 outcome before the failure, got %d", len(outcomes))
	}
}

func TestRunScenario_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sc := &Scenario{Steps: []ScenarioStep{{Name: "sort", Algorithm: "bubble"}}}
	outcomes, err := RunScenario(ctx, sc, Options{}, "")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if len(outcomes) != 0 {
		t.Errorf("expected no outcomes, got %d", len(outcomes))
	}
}

func TestRunSweep(t *testing.T) {
	results, err := RunSweep(context.Background(), &SizeSweep{
		Algorithm: "bubble",
		Kind:      dataset.KindSorted,
		MinSize:   2,
		MaxSize:   10,
		NumSteps:  3,
		Seeds:     2,
	}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 sizes, got %d", len(results))
	}
	// Sorted input: every pass compares and nothing swaps.
	for _, r := range results {
		want := float64(r.Size * (r.Size - 1) / 2)
		if r.AvgSteps != want {
			t.Errorf("size %d: expected %.0f steps, got %.1f", r.Size, want, r.AvgSteps)
		}
		if r.Runs != 2 {
			t.Errorf("size %d: expected 2 runs, got %d", r.Size, r.Runs)
		}
		if r.Metrics["swaps"] != 0 {
			t.Errorf("size %d: expected no swaps, got %v", r.Size, r.Metrics["swaps"])
		}
	}
	if !slices.Equal([]int{results[0].Size, results[1].Size, results[2].Size}, []int{2, 6, 10}) {
		t.Errorf("unexpected sizes %+v", results)
	}
}

func TestRunSweep_Invalid(t *testing.T) {
	ctx := context.Background()
	for _, sw := range []*SizeSweep{
		{Algorithm: "bubble", MinSize: 1, MaxSize: 5, NumSteps: 0},
		{Algorithm: "bubble", MinSize: 0, MaxSize: 5, NumSteps: 2},
		{Algorithm: "bubble", MinSize: 6, MaxSize: 5, NumSteps: 2},
		{Algorithm: "bubble", MinSize: 1, MaxSize: dataset.MaxSize + 1, NumSteps: 2},
	} {
		if _, err := RunSweep(ctx, sw, Options{}); !errors.Is(err, engine.ErrInvalidInput) {
			t.Errorf("%+v: expected ErrInvalidInput, got %v", sw, err)
		}
	}
}

func TestSweepSizes(t *testing.T) {
	if got := sweepSizes(5, 5, 4); !slices.Equal(got, []int{5}) {
		t.Errorf("got %v", got)
	}
	if got := sweepSizes(1, 3, 5); !slices.Equal(got, []int{1, 2, 3}) {
		t.Errorf("got %v", got)
	}
}
