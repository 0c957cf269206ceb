package config

import (
	"sort"

	"github.com/san-kum/dsaviz/internal/dataset"
)

func preset(algorithm string, fn func(*Config)) *Config {
	cfg := DefaultConfig()
	cfg.Algorithm = algorithm
	fn(cfg)
	return cfg
}

var Presets = map[string]map[string]*Config{
	"bubble": {
		"example": preset("bubble", func(c *Config) { c.Data.Values = []int{5, 3, 8, 1} }),
		"reversed": preset("bubble", func(c *Config) {
			c.Data.Values = []int{90, 80, 70, 60, 50, 40, 30, 20}
		}),
		"large": preset("bubble", func(c *Config) {
			c.Data = dataset.Params{Kind: dataset.KindRandom, Size: 25, Seed: 1}
			c.Speed = 90
		}),
	},
	"selection": {
		"random": preset("selection", func(c *Config) {
			c.Data = dataset.Params{Kind: dataset.KindRandom, Size: 15, Seed: 7}
		}),
	},
	"insertion": {
		"nearly-sorted": preset("insertion", func(c *Config) {
			c.Data.Values = []int{20, 30, 25, 40, 50, 45, 60, 70}
		}),
		"random": preset("insertion", func(c *Config) {
			c.Data = dataset.Params{Kind: dataset.KindRandom, Size: 15, Seed: 7}
		}),
	},
	"treesort": {
		"duplicates": preset("treesort", func(c *Config) {
			c.Data.Values = []int{40, 20, 60, 20, 40, 80, 10}
		}),
	},
	"linear": {
		"hit": preset("linear", func(c *Config) {
			c.Data = dataset.Params{Kind: dataset.KindValues, Values: []int{12, 40, 7, 33, 90}}
			c.Params.Target = 33
		}),
		"miss": preset("linear", func(c *Config) {
			c.Data = dataset.Params{Kind: dataset.KindValues, Values: []int{12, 40, 7, 33, 90}}
			c.Params.Target = 55
		}),
	},
	"binary": {
		"example": preset("binary", func(c *Config) {
			c.Data = dataset.Params{Kind: dataset.KindSorted, Size: 6}
			c.Params.Target = 20
		}),
		"miss": preset("binary", func(c *Config) {
			c.Data = dataset.Params{Kind: dataset.KindSorted, Size: 20}
			c.Params.Target = 21
		}),
	},
	"bfs": {
		"corner": preset("bfs", func(c *Config) { c.Params.Start = 0 }),
		"center": preset("bfs", func(c *Config) { c.Params.Start = 5 }),
		"wide": preset("bfs", func(c *Config) {
			c.Data = dataset.Params{Kind: dataset.KindGrid, Rows: 4, Cols: 6}
		}),
	},
	"dfs": {
		"corner": preset("dfs", func(c *Config) { c.Params.Start = 0 }),
		"wide": preset("dfs", func(c *Config) {
			c.Data = dataset.Params{Kind: dataset.KindGrid, Rows: 4, Cols: 6}
			c.Params.Start = 9
		}),
	},
	"insert": {
		"sample": preset("insert", func(c *Config) { c.Params.Value = 45 }),
		"empty": preset("insert", func(c *Config) {
			c.Data = dataset.Params{Kind: dataset.KindTree}
			c.Params.Value = 50
		}),
	},
	"search": {
		"hit":  preset("search", func(c *Config) { c.Params.Value = 60 }),
		"miss": preset("search", func(c *Config) { c.Params.Value = 65 }),
	},
	"inorder": {
		"sample": preset("inorder", func(c *Config) {}),
	},
	"preorder": {
		"sample": preset("preorder", func(c *Config) {}),
	},
	"postorder": {
		"sample": preset("postorder", func(c *Config) {}),
	},
}

// GetPreset returns a copy, so callers may override fields freely.
func GetPreset(algorithm, name string) *Config {
	algoPresets, ok := Presets[algorithm]
	if !ok {
		return nil
	}
	cfg, ok := algoPresets[name]
	if !ok {
		return nil
	}
	c := *cfg
	c.Data.Values = append([]int(nil), cfg.Data.Values...)
	return &c
}

func ListPresets(algorithm string) []string {
	algoPresets, ok := Presets[algorithm]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(algoPresets))
	for name := range algoPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
