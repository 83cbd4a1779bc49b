package config

import (
	"fmt"
	"os"

	"github.com/pzlab/planetzero/internal/model"
	"github.com/pzlab/planetzero/internal/policy"
	"github.com/pzlab/planetzero/internal/sweep"
	"gopkg.in/yaml.v3"
)

// PolicySpec is the YAML representation of one reinvestment policy variant.
type PolicySpec struct {
	// Kind selects the resolver: "fixed" or "adaptive".
	Kind string `yaml:"kind" json:"kind"`

	// Alpha is the constant share for kind "fixed".
	Alpha float64 `yaml:"alpha" json:"alpha"`

	// P4Max is the final-phase maximum for kind "adaptive" when no explicit
	// band table is given. Zero means the documented default.
	P4Max float64 `yaml:"p4_max,omitempty" json:"p4_max,omitempty"`

	// Bands optionally replaces the default adaptive curve.
	Bands []policy.CoverageBand `yaml:"bands,omitempty" json:"bands,omitempty"`

	// Name optionally overrides the generated variant key for custom bands.
	Name string `yaml:"name,omitempty" json:"name,omitempty"`
}

// Build constructs the resolver this entry describes.
func (s PolicySpec) Build() (policy.Reinvestment, error) {
	switch s.Kind {
	case "fixed":
		return policy.NewFixedShare(s.Alpha)
	case "adaptive":
		if len(s.Bands) > 0 {
			return policy.NewAdaptiveByCoverage(s.Name, s.Bands)
		}
		p4Max := s.P4Max
		if p4Max == 0 {
			p4Max = policy.DefaultP4Max
		}
		return policy.NewDefaultAdaptive(p4Max)
	default:
		return nil, fmt.Errorf("%w: unknown policy kind %q (valid: fixed, adaptive)", policy.ErrInvalidPolicy, s.Kind)
	}
}

// PlanFile is the YAML representation of a complete sweep plan.
type PlanFile struct {
	// Scenario overrides are merged over the default scenario, so plan files
	// only need to name the parameters they change.
	Scenario *model.ScenarioConfig `yaml:"scenario,omitempty" json:"scenario,omitempty"`

	Policies []PolicySpec `yaml:"policies" json:"policies"`
	Margins  []float64    `yaml:"margins,omitempty" json:"margins,omitempty"`
	Horizons []int        `yaml:"horizons,omitempty" json:"horizons,omitempty"`
	Workers  int          `yaml:"workers,omitempty" json:"workers,omitempty"`
}

// LoadScenario loads a scenario from a YAML file. The file contents overlay
// the default scenario, and the result is validated before use.
func LoadScenario(path string) (model.ScenarioConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.ScenarioConfig{}, fmt.Errorf("reading scenario file: %w", err)
	}

	scenario := model.DefaultScenario()
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return model.ScenarioConfig{}, fmt.Errorf("parsing scenario file: %w", err)
	}
	if err := scenario.Validate(); err != nil {
		return model.ScenarioConfig{}, err
	}
	return scenario, nil
}

// LoadPlan loads a sweep plan from a YAML file and builds its policy
// variants. Omitted policies, horizons, and scenario fall back to the
// documented defaults.
func LoadPlan(path string) (sweep.Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return sweep.Plan{}, fmt.Errorf("reading plan file: %w", err)
	}

	// Pre-seed the scenario with defaults so a partial scenario block in the
	// plan file overlays rather than replaces.
	base := model.DefaultScenario()
	file := PlanFile{Scenario: &base}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return sweep.Plan{}, fmt.Errorf("parsing plan file: %w", err)
	}
	return file.Build()
}

// DefaultPlan returns the documented baseline sweep: the fixed-share alpha
// set plus the default adaptive policy, over the default margin grid and
// horizon checkpoints.
func DefaultPlan() (sweep.Plan, error) {
	policies, err := sweep.FixedSharePolicies(sweep.DefaultAlphas)
	if err != nil {
		return sweep.Plan{}, err
	}
	auto, err := policy.NewDefaultAdaptive(policy.DefaultP4Max)
	if err != nil {
		return sweep.Plan{}, err
	}
	policies = append(policies, auto)

	return sweep.Plan{
		Scenario: model.DefaultScenario(),
		Policies: policies,
		Margins:  append([]float64(nil), sweep.DefaultMargins...),
		Horizons: append([]int(nil), sweep.DefaultHorizons...),
	}, nil
}

// Build turns a plan file into a runnable sweep plan.
func (f PlanFile) Build() (sweep.Plan, error) {
	scenario := model.DefaultScenario()
	if f.Scenario != nil {
		scenario = *f.Scenario
	}
	if err := scenario.Validate(); err != nil {
		return sweep.Plan{}, err
	}

	var policies []policy.Reinvestment
	if len(f.Policies) == 0 {
		def, err := DefaultPlan()
		if err != nil {
			return sweep.Plan{}, err
		}
		policies = def.Policies
	} else {
		policies = make([]policy.Reinvestment, 0, len(f.Policies))
		for i, spec := range f.Policies {
			pol, err := spec.Build()
			if err != nil {
				return sweep.Plan{}, fmt.Errorf("policy %d: %w", i, err)
			}
			policies = append(policies, pol)
		}
	}

	horizons := f.Horizons
	if len(horizons) == 0 {
		horizons = append([]int(nil), sweep.DefaultHorizons...)
	}

	return sweep.Plan{
		Scenario: scenario,
		Policies: policies,
		Margins:  f.Margins,
		Horizons: horizons,
		Workers:  f.Workers,
	}, nil
}
