package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/dsaviz/internal/algorithms"
	"github.com/san-kum/dsaviz/internal/dataset"
	"github.com/san-kum/dsaviz/internal/engine"
)

const (
	DefaultAlgorithm = "bubble"
	DefaultDataDir   = "./runs"
	DefaultTarget    = 42
	DefaultValue     = 45
)

type Config struct {
	Algorithm string                         `yaml:"algorithm"`
	Speed     int                            `yaml:"speed"`
	Data      dataset.Params                 `yaml:"data"`
	Params    algorithms.Params              `yaml:"params"`
	DataDir   string                         `yaml:"data_dir"`
	Delays    map[string]engine.DelayProfile `yaml:"delays,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Algorithm: DefaultAlgorithm,
		Speed:     engine.DefaultSpeed,
		Params: algorithms.Params{
			Target: DefaultTarget,
			Value:  DefaultValue,
		},
		DataDir: DefaultDataDir,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks what can be checked without data: the algorithm name, the
// speed and any delay overrides.
func (c *Config) Validate(reg *algorithms.Registry) error {
	if _, err := reg.Get(c.Algorithm); err != nil {
		return err
	}
	if err := engine.ValidateSpeed(c.Speed); err != nil {
		return err
	}
	for name, p := range c.Delays {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("delay %s: %w", name, err)
		}
	}
	return nil
}

// DataParams fills in the data kind the algorithm expects when none is
// configured: random values for sorts, unique values for linear search, an
// ordered run for binary search, the grid for graphs and the sample tree.
func (c *Config) DataParams(spec algorithms.Spec) dataset.Params {
	p := c.Data
	if p.Kind != "" {
		return p
	}
	switch {
	case len(p.Values) > 0 && spec.Name == "binary":
		p.Kind = dataset.KindOrdered
	case len(p.Values) > 0 && spec.Family == algorithms.FamilyTree:
		p.Kind = dataset.KindTree
	case len(p.Values) > 0:
		p.Kind = dataset.KindValues
	case spec.Name == "binary":
		p.Kind = dataset.KindSorted
	case spec.Name == "linear":
		p.Kind = dataset.KindUnique
	case spec.Family == algorithms.FamilyGraph:
		p.Kind = dataset.KindGrid
	case spec.Family == algorithms.FamilyTree:
		p.Kind = dataset.KindTree
		p.Sample = true
	default:
		p.Kind = dataset.KindRandom
	}
	return p
}
