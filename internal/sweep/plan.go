// Package sweep enumerates policy and scenario variants, runs the simulation
// engine for each combination, and reduces every run to per-horizon summary
// metrics. Combinations are fully independent, so the harness executes them
// on a bounded worker pool without affecting numeric results.
package sweep

import (
	"fmt"
	"runtime"
	"sort"

	"github.com/pzlab/planetzero/internal/model"
	"github.com/pzlab/planetzero/internal/policy"
)

// DefaultAlphas is the documented fixed-share sweep axis.
var DefaultAlphas = []float64{0.90, 0.80, 0.70, 0.60, 0.50}

// DefaultMargins is the documented per-person margin grid in €/person/month.
var DefaultMargins = []float64{10, 15, 20, 25, 30, 40, 50}

// DefaultHorizons is the documented set of horizon checkpoints in months.
var DefaultHorizons = []int{6, 12, 18, 24, 60, 120}

// Plan describes one sweep: a base scenario, the policy variants to test,
// an optional margin grid, and the horizons at which runs are summarized.
type Plan struct {
	// Scenario is the base scenario; margin variants override InitialMargin.
	Scenario model.ScenarioConfig

	// Policies are the reinvestment variants. Names must be unique.
	Policies []policy.Reinvestment

	// Margins optionally sweeps the per-person margin. Empty means the
	// scenario's own initial margin only.
	Margins []float64

	// Horizons are the requested horizon checkpoints in months. They may be
	// unsorted and contain duplicates; the harness sorts and deduplicates.
	Horizons []int

	// Workers bounds the worker pool. Zero means runtime.NumCPU().
	Workers int
}

// Cell is one row of a sweep result: the summary of a single (policy ×
// margin) run sliced at one horizon.
type Cell struct {
	PolicyKey string               `json:"policy_key"`
	Margin    float64              `json:"margin"`
	Horizon   int                  `json:"horizon"`
	Metrics   model.SummaryMetrics `json:"metrics"`
}

// Result is the complete summary table of one sweep.
type Result struct {
	// Horizons are the deduplicated checkpoints in ascending order.
	Horizons []int `json:"horizons"`

	// Cells are ordered by policy, then margin, then horizon, so the table
	// is deterministic regardless of worker scheduling.
	Cells []Cell `json:"cells"`
}

// AtHorizon returns the cells of one horizon, preserving table order.
func (r *Result) AtHorizon(horizon int) []Cell {
	cells := make([]Cell, 0, len(r.Cells)/max(1, len(r.Horizons)))
	for _, c := range r.Cells {
		if c.Horizon == horizon {
			cells = append(cells, c)
		}
	}
	return cells
}

// normalize validates the plan and returns the sorted unique horizons, the
// effective margin grid, and the worker count.
func (p Plan) normalize() ([]int, []float64, int, error) {
	if err := p.Scenario.Validate(); err != nil {
		return nil, nil, 0, err
	}
	if len(p.Policies) == 0 {
		return nil, nil, 0, fmt.Errorf("sweep plan needs at least one policy variant")
	}
	seen := make(map[string]bool, len(p.Policies))
	for _, pol := range p.Policies {
		if seen[pol.Name()] {
			return nil, nil, 0, fmt.Errorf("duplicate policy variant %q", pol.Name())
		}
		seen[pol.Name()] = true
	}
	if len(p.Horizons) == 0 {
		return nil, nil, 0, fmt.Errorf("sweep plan needs at least one horizon")
	}

	uniq := make(map[int]bool, len(p.Horizons))
	horizons := make([]int, 0, len(p.Horizons))
	for _, h := range p.Horizons {
		if h <= 0 {
			return nil, nil, 0, fmt.Errorf("%w: horizon must be positive, got %d", model.ErrInvalidScenario, h)
		}
		if !uniq[h] {
			uniq[h] = true
			horizons = append(horizons, h)
		}
	}
	sort.Ints(horizons)

	margins := p.Margins
	if len(margins) == 0 {
		margins = []float64{p.Scenario.InitialMargin}
	}
	for _, m := range margins {
		if m < 0 {
			return nil, nil, 0, fmt.Errorf("%w: margin must be non-negative, got %v", model.ErrInvalidScenario, m)
		}
	}

	workers := p.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return horizons, margins, workers, nil
}
