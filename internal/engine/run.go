package engine

import (
	"fmt"

	"github.com/pzlab/planetzero/internal/model"
	"github.com/pzlab/planetzero/internal/policy"
)

// Run folds Step over exactly horizonMonths months starting from initial and
// returns the ordered record sequence. The scenario is validated before any
// step executes. Run is deterministic: re-invoking with identical inputs
// yields an identical sequence.
func Run(initial model.SimulationState, sc model.ScenarioConfig, pol policy.Reinvestment, horizonMonths int) ([]model.StepRecord, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	if horizonMonths < 0 {
		return nil, fmt.Errorf("%w: horizon must be non-negative, got %d", model.ErrInvalidScenario, horizonMonths)
	}

	records := make([]model.StepRecord, 0, horizonMonths)
	state := initial
	for i := 0; i < horizonMonths; i++ {
		next, rec, err := Step(state, sc, pol)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
		state = next
	}
	return records, nil
}

// RunScenario is Run starting from the scenario's own initial state.
func RunScenario(sc model.ScenarioConfig, pol policy.Reinvestment, horizonMonths int) ([]model.StepRecord, error) {
	return Run(sc.InitialState(), sc, pol, horizonMonths)
}
