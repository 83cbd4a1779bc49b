package mcp

import (
	"github.com/pzlab/planetzero/internal/config"
	"github.com/pzlab/planetzero/internal/model"
	"github.com/pzlab/planetzero/internal/sweep"
)

// SimulateInput defines the input for the planetzero_simulate tool.
type SimulateInput struct {
	Scenario *model.ScenarioConfig `json:"scenario,omitempty" jsonschema:"Complete scenario parameters; omit entirely to use the documented defaults"`
	Policy   *config.PolicySpec    `json:"policy,omitempty" jsonschema:"Reinvestment policy (kind 'fixed' with alpha or kind 'adaptive'); default is the adaptive policy"`
	Horizon  int                   `json:"horizon" jsonschema:"Number of months to simulate"`
}

// SimulateOutput defines the output for the planetzero_simulate tool.
type SimulateOutput struct {
	Records []model.StepRecord   `json:"records" jsonschema:"Ordered per-month step records"`
	Summary model.SummaryMetrics `json:"summary" jsonschema:"Reduction of the run at the requested horizon"`
}

// SweepInput defines the input for the planetzero_sweep tool.
type SweepInput struct {
	Scenario *model.ScenarioConfig `json:"scenario,omitempty" jsonschema:"Complete base scenario; omit entirely to use the documented defaults"`
	Policies []config.PolicySpec   `json:"policies,omitempty" jsonschema:"Policy variants; default is the fixed-alpha set plus the adaptive policy"`
	Margins  []float64             `json:"margins,omitempty" jsonschema:"Per-person margin grid; default keeps the scenario margin"`
	Horizons []int                 `json:"horizons,omitempty" jsonschema:"Horizon checkpoints in months; default is the documented set"`
}

// SweepOutput defines the output for the planetzero_sweep tool.
type SweepOutput struct {
	Horizons []int        `json:"horizons" jsonschema:"Deduplicated ascending horizon checkpoints"`
	Cells    []sweep.Cell `json:"cells" jsonschema:"Summary rows; one per policy x margin x horizon"`
}

// SelectBestInput defines the input for the planetzero_select_best tool.
type SelectBestInput struct {
	SweepInput
	Horizon                 int      `json:"horizon" jsonschema:"Horizon at which to select; added to the sweep horizons when absent"`
	MinPositiveUtilityShare *float64 `json:"min_positive_utility_share,omitempty" jsonschema:"Viability gate threshold in [0 1]; default 0.5"`
}

// SelectBestOutput defines the output for the planetzero_select_best tool.
type SelectBestOutput struct {
	// Viable is false when no candidate passed the viability gate; Best is
	// then omitted and callers must not treat any entry as chosen.
	Viable bool         `json:"viable" jsonschema:"Whether any candidate passed the viability gate"`
	Best   *sweep.Cell  `json:"best,omitempty" jsonschema:"The chosen cell when viable"`
	Ranked []sweep.Cell `json:"ranked" jsonschema:"All candidates at the horizon in selection order"`
}