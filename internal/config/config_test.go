package config

import (
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"github.com/san-kum/dsaviz/internal/algorithms"
	"github.com/san-kum/dsaviz/internal/dataset"
	"github.com/san-kum/dsaviz/internal/engine"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Algorithm != "bubble" {
		t.Errorf("expected algorithm bubble, got %s", cfg.Algorithm)
	}
	if cfg.Speed != engine.DefaultSpeed {
		t.Errorf("expected speed %d, got %d", engine.DefaultSpeed, cfg.Speed)
	}
	if err := cfg.Validate(algorithms.NewRegistry()); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dsaviz.yaml")

	cfg := DefaultConfig()
	cfg.Algorithm = "binary"
	cfg.Speed = 80
	cfg.Data = dataset.Params{Kind: dataset.KindSorted, Size: 12}
	cfg.Params.Target = 30
	cfg.Delays = map[string]engine.DelayProfile{"binary": {Floor: 10, Base: 100, K: 1}}

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if loaded.Algorithm != "binary" || loaded.Speed != 80 {
		t.Errorf("unexpected config %+v", loaded)
	}
	if loaded.Data.Kind != dataset.KindSorted || loaded.Data.Size != 12 {
		t.Errorf("unexpected data %+v", loaded.Data)
	}
	if loaded.Delays["binary"].Base != 100 {
		t.Errorf("expected delay override, got %+v", loaded.Delays)
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	reg := algorithms.NewRegistry()
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"unknown algorithm", func(c *Config) { c.Algorithm = "bogosort" }, engine.ErrUnknownAlgorithm},
		{"speed zero", func(c *Config) { c.Speed = 0 }, engine.ErrInvalidInput},
		{"bad delay", func(c *Config) {
			c.Delays = map[string]engine.DelayProfile{"sort": {Floor: -1, Base: 10, K: 1}}
		}, engine.ErrInvalidInput},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.mutate(cfg)
		if err := cfg.Validate(reg); !errors.Is(err, tt.wantErr) {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.wantErr, err)
		}
	}
}

func TestDataParams(t *testing.T) {
	reg := algorithms.NewRegistry()
	tests := []struct {
		algorithm string
		values    []int
		want      dataset.Kind
	}{
		{"bubble", nil, dataset.KindRandom},
		{"bubble", []int{3, 1}, dataset.KindValues},
		{"linear", nil, dataset.KindUnique},
		{"binary", nil, dataset.KindSorted},
		{"binary", []int{1, 4, 9}, dataset.KindOrdered},
		{"dfs", nil, dataset.KindGrid},
		{"insert", nil, dataset.KindTree},
		{"search", []int{8, 3}, dataset.KindTree},
	}
	for _, tt := range tests {
		spec, err := reg.Get(tt.algorithm)
		if err != nil {
			t.Fatal(err)
		}
		cfg := DefaultConfig()
		cfg.Data.Values = tt.values
		if got := cfg.DataParams(spec).Kind; got != tt.want {
			t.Errorf("%s with %v: got kind %s, want %s", tt.algorithm, tt.values, got, tt.want)
		}
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("bubble", "example")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if !slices.Equal(cfg.Data.Values, []int{5, 3, 8, 1}) {
		t.Errorf("unexpected values %v", cfg.Data.Values)
	}

	cfg.Data.Values[0] = 99
	if GetPreset("bubble", "example").Data.Values[0] != 5 {
		t.Error("preset should be copied")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if GetPreset("bubble", "nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if GetPreset("nonexistent", "example") != nil {
		t.Error("expected nil for nonexistent algorithm")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets("bfs")
	if !slices.Equal(presets, []string{"center", "corner", "wide"}) {
		t.Errorf("unexpected presets %v", presets)
	}
	if ListPresets("nonexistent") != nil {
		t.Error("expected nil for nonexistent algorithm")
	}
}

func TestPresetsValidate(t *testing.T) {
	reg := algorithms.NewRegistry()
	for algorithm, presets := range Presets {
		for name, cfg := range presets {
			if cfg.Algorithm != algorithm {
				t.Errorf("%s/%s: algorithm %s", algorithm, name, cfg.Algorithm)
			}
			if err := cfg.Validate(reg); err != nil {
				t.Errorf("%s/%s: %v", algorithm, name, err)
			}
		}
	}
}
