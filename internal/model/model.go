// Package model defines the core data types for the Planet Zero simulation:
// the simulation state, the per-month step record, the scenario configuration,
// and the reduced summary metrics consumed by the sweep harness and selector.
package model

import "math"

// SimulationState is the complete state of the simulated entity at the start
// of a month. States are value types; the step function produces a new state
// and never mutates its input, so the previous state remains immutable history.
type SimulationState struct {
	// Month is the zero-based step index.
	Month int

	// ActivePeople is the population/user proxy (A).
	ActivePeople float64

	// BondCapital is the compounding low-risk capital pool (BC), in currency.
	BondCapital float64

	// SurvivalFund is the liquid buffer (FS), in currency.
	SurvivalFund float64

	// Margin is the net margin per active person per month (m).
	Margin float64

	// Employees is the current headcount. It determines the FS target and
	// the operating-cost baseline.
	Employees int

	// CumulativeImpact is the monotonically non-decreasing impact accumulator.
	CumulativeImpact float64

	// OperatingCost is the monthly operating cost for the current headcount.
	OperatingCost float64

	// LastHireMonth is the month index of the most recent hire, used by the
	// hiring cooldown. Negative values mean "never hired".
	LastHireMonth int
}

// FSCoverageMonths returns the survival fund expressed in months of operating
// cost. When the operating cost is zero the coverage is +Inf, never a panic.
func (s SimulationState) FSCoverageMonths() float64 {
	if s.OperatingCost <= 0 {
		return math.Inf(1)
	}
	return s.SurvivalFund / s.OperatingCost
}

// StepRecord is an immutable snapshot of one simulated month: the end-of-month
// state plus every derived flow quantity, for observability and aggregation.
// The ordered sequence of records is the simulation's complete output.
type StepRecord struct {
	// Month is the zero-based index of the simulated month.
	Month int `json:"month"`

	// End-of-month stocks.
	ActivePeople     float64 `json:"active_people"`
	BondCapital      float64 `json:"bond_capital"`
	SurvivalFund     float64 `json:"survival_fund"`
	Margin           float64 `json:"margin"`
	Employees        int     `json:"employees"`
	CumulativeImpact float64 `json:"cumulative_impact"`

	// Monthly income statement.
	OperatingCost float64 `json:"operating_cost"`
	Revenue       float64 `json:"revenue"`
	Interest      float64 `json:"interest"`
	Utility       float64 `json:"utility"`

	// Frozen reports whether the viability gate fired (U <= 0): no
	// reinvestment, no impact, stocks carried forward unchanged.
	Frozen bool `json:"frozen"`

	// P is the resolved reinvestment share for the month. Zero when frozen.
	P float64 `json:"p"`

	// Reinvestment split amounts. All zero when frozen.
	BondIn         float64 `json:"bond_in"`
	BPZIn          float64 `json:"bpz_in"`
	FSIn           float64 `json:"fs_in"`
	ImpactAmount   float64 `json:"impact_amount"`
	InternalAmount float64 `json:"internal_amount"`
	RDAmount       float64 `json:"rd_amount"`

	// FS position after allocation.
	FSCoverageMonths float64 `json:"fs_coverage_months"`
	FSTargetMonths   int     `json:"fs_target_months"`
	FSTarget         float64 `json:"fs_target"`

	// Coverage phase for the month (1..4) and the linear position within it,
	// reported for observability regardless of which policy is in force.
	Phase       int     `json:"phase"`
	PhaseLambda float64 `json:"phase_lambda"`

	// Hired reports whether the hiring decision fired this month.
	Hired bool `json:"hired"`
}

// SummaryMetrics is the reduction of a record sequence at one horizon. It is
// the row format of the sweep result table.
type SummaryMetrics struct {
	Horizon int `json:"horizon"`

	FinalImpact       float64 `json:"final_impact"`
	FinalBondCapital  float64 `json:"final_bond_capital"`
	FinalSurvivalFund float64 `json:"final_survival_fund"`
	FSCoverageMonths  float64 `json:"fs_coverage_months"`
	FSTargetMonths    int     `json:"fs_target_months"`

	// PctMonthsPositiveUtility is the share of months with U > 0, in [0,1].
	PctMonthsPositiveUtility float64 `json:"pct_months_positive_utility"`

	// TimeToFirstImpact is the one-based month of the first positive impact
	// contribution, or 0 if no month produced impact within the horizon.
	TimeToFirstImpact int `json:"time_to_first_impact"`

	EmployeesEnd    int     `json:"employees_end"`
	HiresTotal      int     `json:"hires_total"`
	ActivePeopleEnd float64 `json:"active_people_end"`
	MarginEnd       float64 `json:"margin_end"`

	AvgUtility         float64 `json:"avg_utility"`
	AvgPositiveUtility float64 `json:"avg_positive_utility"`

	// LastP and LastPhase report the reinvestment share and coverage phase of
	// the last non-frozen month within the horizon.
	LastP     float64 `json:"last_p"`
	LastPhase int     `json:"last_phase"`
}
