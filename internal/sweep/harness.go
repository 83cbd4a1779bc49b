package sweep

import (
	"sync"

	"github.com/pzlab/planetzero/internal/engine"
	"github.com/pzlab/planetzero/internal/model"
	"github.com/pzlab/planetzero/internal/policy"
)

// Run executes the plan: every policy × margin combination is simulated once
// over the maximum requested horizon, and the record sequence is sliced and
// reduced at each horizon checkpoint. Each combination owns its own state, so
// concurrent execution cannot change the numbers.
func Run(plan Plan) (*Result, error) {
	horizons, margins, workers, err := plan.normalize()
	if err != nil {
		return nil, err
	}
	maxHorizon := horizons[len(horizons)-1]

	type job struct {
		idx    int
		pol    policy.Reinvestment
		margin float64
	}
	type jobResult struct {
		idx       int
		summaries []model.SummaryMetrics
		err       error
	}

	combos := make([]job, 0, len(plan.Policies)*len(margins))
	for _, pol := range plan.Policies {
		for _, m := range margins {
			combos = append(combos, job{idx: len(combos), pol: pol, margin: m})
		}
	}

	jobs := make(chan job)
	results := make(chan jobResult, len(combos))

	if workers > len(combos) {
		workers = len(combos)
	}

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for j := range jobs {
				scenario := plan.Scenario
				scenario.InitialMargin = j.margin

				records, err := engine.RunScenario(scenario, j.pol, maxHorizon)
				if err != nil {
					results <- jobResult{idx: j.idx, err: err}
					continue
				}

				summaries := make([]model.SummaryMetrics, len(horizons))
				for i, h := range horizons {
					summaries[i] = Reduce(records, h)
				}
				results <- jobResult{idx: j.idx, summaries: summaries}
			}
		}()
	}

	for _, j := range combos {
		jobs <- j
	}
	close(jobs)

	wg.Wait()
	close(results)

	byCombo := make([][]model.SummaryMetrics, len(combos))
	for res := range results {
		if res.err != nil {
			return nil, res.err
		}
		byCombo[res.idx] = res.summaries
	}

	out := &Result{
		Horizons: horizons,
		Cells:    make([]Cell, 0, len(combos)*len(horizons)),
	}
	for _, j := range combos {
		for i, h := range horizons {
			out.Cells = append(out.Cells, Cell{
				PolicyKey: j.pol.Name(),
				Margin:    j.margin,
				Horizon:   h,
				Metrics:   byCombo[j.idx][i],
			})
		}
	}
	return out, nil
}

// FixedSharePolicies builds a FixedShare variant per alpha, for override and
// baseline sweeps.
func FixedSharePolicies(alphas []float64) ([]policy.Reinvestment, error) {
	policies := make([]policy.Reinvestment, 0, len(alphas))
	for _, a := range alphas {
		p, err := policy.NewFixedShare(a)
		if err != nil {
			return nil, err
		}
		policies = append(policies, p)
	}
	return policies, nil
}
