// Package config loads the YAML tuning file the solver and its CLI
// entrypoints read their search bounds from.
package config

import (
	"os"

	"github.com/elektrokombinacija/nanobot-assembly/internal/solver"

	"gopkg.in/yaml.v3"
)

// Solver is the on-disk shape of a solver tuning file.
type Solver struct {
	RTTLimit           int `yaml:"rtt_limit"`
	RouteAttemptsLimit int `yaml:"route_attempts_limit"`
	GlobalTicksLimit   int `yaml:"global_ticks_limit"`
	Seed               int64 `yaml:"seed"`
}

// Default mirrors solver.DefaultConfig's tuning.
func Default() Solver {
	d := solver.DefaultConfig()
	return Solver{
		RTTLimit:           d.RTTLimit,
		RouteAttemptsLimit: d.RouteAttemptsLimit,
		GlobalTicksLimit:   d.GlobalTicksLimit,
		Seed:               1,
	}
}

// Load reads and parses a YAML tuning file at path.
func Load(path string) (Solver, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Solver{}, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Solver{}, err
	}
	return cfg, nil
}

// ToSolverConfig builds the solver.Config this tuning implies.
func (s Solver) ToSolverConfig() solver.Config {
	return solver.Config{
		RTTLimit:           s.RTTLimit,
		RouteAttemptsLimit: s.RouteAttemptsLimit,
		GlobalTicksLimit:   s.GlobalTicksLimit,
	}
}
