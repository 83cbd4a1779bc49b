package model

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidScenario marks scenario configurations that cannot produce a valid
// simulation. It is reported before any step executes; check with errors.Is.
var ErrInvalidScenario = errors.New("invalid scenario")

// Scenario defaults. The documented baseline of the model: 100 active people,
// €2000/month operating cost (2 employees at €1000), 4% annual bond rate.
const (
	// DefaultInitialPeople is the starting active-people count (A0).
	DefaultInitialPeople = 100.0

	// DefaultInitialMargin is the starting net margin per person per month (m0).
	DefaultInitialMargin = 25.0

	// DefaultInitialEmployees is the starting headcount.
	DefaultInitialEmployees = 2

	// DefaultCostPerEmployee is the monthly cost per employee in €.
	DefaultCostPerEmployee = 1000.0

	// DefaultAnnualRate is the annual bond rate applied to BC and FS.
	DefaultAnnualRate = 0.04
)

// Fixed internal split of the BPZ branch. These ratios are structural, not
// policy-controlled: FS takes 30% of BPZ, the remainder splits 60% impact /
// 40% internal, and R&D takes 60% of internal.
const (
	DefaultFSShareOfBPZ             = 0.30
	DefaultImpactShareOfRemainder   = 0.60
	DefaultRDShareOfInternal        = 0.60
	DefaultWellbeingShareOfInternal = 0.25
	DefaultLegalShareOfInternal     = 0.15
)

// Growth feedback defaults.
const (
	DefaultChurnRate               = 0.03
	DefaultAcqChurnRatio           = 1.00
	DefaultAcqImpactSensitivity    = 0.20
	DefaultMarginImpactSensitivity = 0.010
	DefaultMarginRDSensitivity     = 0.006
	DefaultMaxMarginGrowth         = 0.03
)

// Hiring rule defaults.
const (
	DefaultHireCooldownMonths = 3
	DefaultHireTriggerBuffer  = 1.20
)

// ScenarioConfig holds every named parameter of one simulation scenario. It is
// immutable for the duration of a run: the runner and sweep harness receive it
// by value and never read ambient or process-wide state, so concurrent sweeps
// cannot observe each other's configuration.
type ScenarioConfig struct {
	// AnnualRate is the annual bond rate; the monthly rate is AnnualRate/12.
	AnnualRate float64 `yaml:"annual_rate" json:"annual_rate"`

	// Initial stocks.
	InitialPeople       float64 `yaml:"initial_people" json:"initial_people"`
	InitialMargin       float64 `yaml:"initial_margin" json:"initial_margin"`
	InitialEmployees    int     `yaml:"initial_employees" json:"initial_employees"`
	InitialBondCapital  float64 `yaml:"initial_bond_capital" json:"initial_bond_capital"`
	InitialSurvivalFund float64 `yaml:"initial_survival_fund" json:"initial_survival_fund"`

	// Cost structure. Operating cost per month is
	// Employees*CostPerEmployee + OtherFixedCosts.
	CostPerEmployee float64 `yaml:"cost_per_employee" json:"cost_per_employee"`
	OtherFixedCosts float64 `yaml:"other_fixed_costs" json:"other_fixed_costs"`

	// BPZ internal allocation (see the Default*Share constants).
	FSShareOfBPZ           float64 `yaml:"fs_share_of_bpz" json:"fs_share_of_bpz"`
	ImpactShareOfRemainder float64 `yaml:"impact_share_of_remainder" json:"impact_share_of_remainder"`
	RDShareOfInternal      float64 `yaml:"rd_share_of_internal" json:"rd_share_of_internal"`

	// Growth feedback coefficients. The exact functional form is
	// configuration, the model only requires monotonicity and the caps.
	ChurnRate               float64 `yaml:"churn_rate" json:"churn_rate"`
	AcqChurnRatio           float64 `yaml:"acq_churn_ratio" json:"acq_churn_ratio"`
	AcqImpactSensitivity    float64 `yaml:"acq_impact_sensitivity" json:"acq_impact_sensitivity"`
	MarginImpactSensitivity float64 `yaml:"margin_impact_sensitivity" json:"margin_impact_sensitivity"`
	MarginRDSensitivity     float64 `yaml:"margin_rd_sensitivity" json:"margin_rd_sensitivity"`
	MaxMarginGrowth         float64 `yaml:"max_margin_growth" json:"max_margin_growth"`

	// Hiring rule.
	HireCooldownMonths int     `yaml:"hire_cooldown_months" json:"hire_cooldown_months"`
	HireTriggerBuffer  float64 `yaml:"hire_trigger_buffer" json:"hire_trigger_buffer"`

	// MaturityTable optionally overrides the default FS maturity table.
	// Empty means DefaultMaturityTable.
	MaturityTable MaturityTable `yaml:"maturity_table,omitempty" json:"maturity_table,omitempty"`
}

// DefaultScenario returns the documented baseline scenario.
func DefaultScenario() ScenarioConfig {
	return ScenarioConfig{
		AnnualRate:              DefaultAnnualRate,
		InitialPeople:           DefaultInitialPeople,
		InitialMargin:           DefaultInitialMargin,
		InitialEmployees:        DefaultInitialEmployees,
		InitialBondCapital:      0,
		InitialSurvivalFund:     0,
		CostPerEmployee:         DefaultCostPerEmployee,
		OtherFixedCosts:         0,
		FSShareOfBPZ:            DefaultFSShareOfBPZ,
		ImpactShareOfRemainder:  DefaultImpactShareOfRemainder,
		RDShareOfInternal:       DefaultRDShareOfInternal,
		ChurnRate:               DefaultChurnRate,
		AcqChurnRatio:           DefaultAcqChurnRatio,
		AcqImpactSensitivity:    DefaultAcqImpactSensitivity,
		MarginImpactSensitivity: DefaultMarginImpactSensitivity,
		MarginRDSensitivity:     DefaultMarginRDSensitivity,
		MaxMarginGrowth:         DefaultMaxMarginGrowth,
		HireCooldownMonths:      DefaultHireCooldownMonths,
		HireTriggerBuffer:       DefaultHireTriggerBuffer,
	}
}

// MonthlyRate returns the simple monthly approximation of the annual rate.
func (c ScenarioConfig) MonthlyRate() float64 {
	return c.AnnualRate / 12.0
}

// OperatingCost returns the monthly operating cost for a given headcount.
func (c ScenarioConfig) OperatingCost(employees int) float64 {
	return float64(employees)*c.CostPerEmployee + c.OtherFixedCosts
}

// Maturity returns the scenario's FS maturity table, falling back to the
// default table when no override is configured.
func (c ScenarioConfig) Maturity() MaturityTable {
	if len(c.MaturityTable) == 0 {
		return DefaultMaturityTable()
	}
	return c.MaturityTable
}

// InitialState builds the month-zero simulation state for this scenario.
func (c ScenarioConfig) InitialState() SimulationState {
	return SimulationState{
		Month:         0,
		ActivePeople:  c.InitialPeople,
		BondCapital:   c.InitialBondCapital,
		SurvivalFund:  c.InitialSurvivalFund,
		Margin:        c.InitialMargin,
		Employees:     c.InitialEmployees,
		OperatingCost: c.OperatingCost(c.InitialEmployees),
		LastHireMonth: -c.HireCooldownMonths - 1,
	}
}

// Validate checks the scenario for configurations that cannot simulate.
// All violations wrap ErrInvalidScenario so callers can fail fast before any
// step executes.
func (c ScenarioConfig) Validate() error {
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"initial_people", c.InitialPeople},
		{"initial_margin", c.InitialMargin},
		{"initial_bond_capital", c.InitialBondCapital},
		{"initial_survival_fund", c.InitialSurvivalFund},
		{"cost_per_employee", c.CostPerEmployee},
		{"other_fixed_costs", c.OtherFixedCosts},
		{"churn_rate", c.ChurnRate},
		{"acq_churn_ratio", c.AcqChurnRatio},
		{"acq_impact_sensitivity", c.AcqImpactSensitivity},
		{"margin_impact_sensitivity", c.MarginImpactSensitivity},
		{"margin_rd_sensitivity", c.MarginRDSensitivity},
		{"max_margin_growth", c.MaxMarginGrowth},
	} {
		if f.value < 0 || math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%w: %s must be a non-negative finite number, got %v", ErrInvalidScenario, f.name, f.value)
		}
	}

	if c.InitialEmployees < 0 {
		return fmt.Errorf("%w: initial_employees must be non-negative, got %d", ErrInvalidScenario, c.InitialEmployees)
	}
	if math.IsNaN(c.AnnualRate) || math.IsInf(c.AnnualRate, 0) {
		return fmt.Errorf("%w: annual_rate must be finite, got %v", ErrInvalidScenario, c.AnnualRate)
	}
	if c.OperatingCost(c.InitialEmployees) <= 0 {
		return fmt.Errorf("%w: initial operating cost must be positive, got %v", ErrInvalidScenario, c.OperatingCost(c.InitialEmployees))
	}
	if c.FSShareOfBPZ < 0 || c.FSShareOfBPZ > 1 {
		return fmt.Errorf("%w: fs_share_of_bpz must be in [0,1], got %v", ErrInvalidScenario, c.FSShareOfBPZ)
	}
	if c.ImpactShareOfRemainder < 0 || c.ImpactShareOfRemainder > 1 {
		return fmt.Errorf("%w: impact_share_of_remainder must be in [0,1], got %v", ErrInvalidScenario, c.ImpactShareOfRemainder)
	}
	if c.RDShareOfInternal < 0 || c.RDShareOfInternal > 1 {
		return fmt.Errorf("%w: rd_share_of_internal must be in [0,1], got %v", ErrInvalidScenario, c.RDShareOfInternal)
	}
	if c.HireCooldownMonths < 0 {
		return fmt.Errorf("%w: hire_cooldown_months must be non-negative, got %d", ErrInvalidScenario, c.HireCooldownMonths)
	}
	if c.HireTriggerBuffer < 0 {
		return fmt.Errorf("%w: hire_trigger_buffer must be non-negative, got %v", ErrInvalidScenario, c.HireTriggerBuffer)
	}

	if err := c.Maturity().Validate(); err != nil {
		return err
	}

	return nil
}
