package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Plan describes which market data to fetch and which strategy
// configurations to run against it.
type Plan struct {
	InitialCapital float64                         `yaml:"initial_capital"`
	Tests          []TestCase                      `yaml:"tests"`
	Strategies     map[string][]map[string]float64 `yaml:"strategies"`
	Sweeps         map[string]map[string][]float64 `yaml:"sweeps"`
}

// TestCase is one instrument/interval/length combination
type TestCase struct {
	Label    string `yaml:"label"`
	Pair     string `yaml:"pair"`
	Interval string `yaml:"interval"`
	Count    int    `yaml:"count"`
}

// LoadPlan reads and validates the YAML plan at path
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan: %w", err)
	}

	plan := &Plan{}
	if err := yaml.Unmarshal(data, plan); err != nil {
		return nil, fmt.Errorf("parsing plan %s: %w", path, err)
	}

	for i := range plan.Tests {
		if plan.Tests[i].Label == "" {
			plan.Tests[i].Label = fmt.Sprintf("%s %s x%d", plan.Tests[i].Pair, plan.Tests[i].Interval, plan.Tests[i].Count)
		}
	}

	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("invalid plan %s: %w", path, err)
	}
	return plan, nil
}

// Validate requires at least one test with a pair, an interval and a positive count
func (p *Plan) Validate() error {
	if len(p.Tests) == 0 {
		return fmt.Errorf("no tests defined")
	}
	if p.InitialCapital < 0 {
		return fmt.Errorf("initial_capital must not be negative, got %v", p.InitialCapital)
	}
	for _, tc := range p.Tests {
		if tc.Pair == "" || tc.Interval == "" {
			return fmt.Errorf("test %q needs a pair and an interval", tc.Label)
		}
		if tc.Count <= 0 {
			return fmt.Errorf("test %q: count must be positive, got %d", tc.Label, tc.Count)
		}
	}
	for name, sets := range p.Strategies {
		if len(sets) == 0 {
			return fmt.Errorf("strategy %q has no parameter sets", name)
		}
	}
	return nil
}

// StrategyNames returns the configured strategy names in sorted order
func (p *Plan) StrategyNames() []string {
	names := make([]string, 0, len(p.Strategies))
	for name := range p.Strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SweepGrid returns the sweep grid configured for a strategy. A missing grid
// or a parameter without values is an error.
func (p *Plan) SweepGrid(strategy string) (map[string][]float64, error) {
	grid := p.Sweeps[strategy]
	if len(grid) == 0 {
		return nil, fmt.Errorf("no sweep grid configured for %q", strategy)
	}
	for param, values := range grid {
		if len(values) == 0 {
			return nil, fmt.Errorf("sweep %q: parameter %s has no values", strategy, param)
		}
	}
	return grid, nil
}
