package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pzlab/planetzero/internal/model"
	"github.com/pzlab/planetzero/internal/policy"
	"github.com/pzlab/planetzero/internal/sweep"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPolicySpec_Build(t *testing.T) {
	t.Run("fixed", func(t *testing.T) {
		pol, err := PolicySpec{Kind: "fixed", Alpha: 0.85}.Build()
		if err != nil {
			t.Fatal(err)
		}
		if pol.Name() != "fixed(p=0.85)" {
			t.Errorf("name = %q", pol.Name())
		}
	})

	t.Run("adaptive default", func(t *testing.T) {
		pol, err := PolicySpec{Kind: "adaptive"}.Build()
		if err != nil {
			t.Fatal(err)
		}
		if pol.Name() != "auto(p4max=0.70)" {
			t.Errorf("name = %q", pol.Name())
		}
	})

	t.Run("adaptive p4max", func(t *testing.T) {
		pol, err := PolicySpec{Kind: "adaptive", P4Max: 0.90}.Build()
		if err != nil {
			t.Fatal(err)
		}
		if pol.Name() != "auto(p4max=0.90)" {
			t.Errorf("name = %q", pol.Name())
		}
	})

	t.Run("adaptive custom bands", func(t *testing.T) {
		pol, err := PolicySpec{
			Kind: "adaptive",
			Name: "gentle",
			Bands: []policy.CoverageBand{
				{UpperCoverage: 6, PMin: 0.10, PMax: 0.20},
				{UpperCoverage: -1, PMin: 0.20, PMax: 0.40},
			},
		}.Build()
		if err != nil {
			t.Fatal(err)
		}
		if pol.Name() != "gentle" {
			t.Errorf("name = %q, want gentle", pol.Name())
		}
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := PolicySpec{Kind: "random"}.Build()
		if !errors.Is(err, policy.ErrInvalidPolicy) {
			t.Errorf("expected ErrInvalidPolicy, got %v", err)
		}
	})
}

func TestLoadScenario_OverlaysDefaults(t *testing.T) {
	path := writeFile(t, "scenario.yaml", "initial_margin: 40\ninitial_people: 250\n")
	sc, err := LoadScenario(path)
	if err != nil {
		t.Fatal(err)
	}
	if sc.InitialMargin != 40 || sc.InitialPeople != 250 {
		t.Errorf("overrides not applied: margin=%v people=%v", sc.InitialMargin, sc.InitialPeople)
	}
	// Untouched parameters keep their documented defaults.
	if sc.CostPerEmployee != model.DefaultCostPerEmployee {
		t.Errorf("cost per employee = %v, want default %v", sc.CostPerEmployee, model.DefaultCostPerEmployee)
	}
	if sc.AnnualRate != model.DefaultAnnualRate {
		t.Errorf("annual rate = %v, want default %v", sc.AnnualRate, model.DefaultAnnualRate)
	}
}

func TestLoadScenario_RejectsInvalid(t *testing.T) {
	path := writeFile(t, "scenario.yaml", "initial_people: -5\n")
	if _, err := LoadScenario(path); !errors.Is(err, model.ErrInvalidScenario) {
		t.Errorf("expected ErrInvalidScenario, got %v", err)
	}
}

func TestLoadPlan(t *testing.T) {
	path := writeFile(t, "plan.yaml", `
scenario:
  initial_margin: 30
policies:
  - kind: fixed
    alpha: 0.9
  - kind: adaptive
    p4_max: 0.8
margins: [20, 30]
horizons: [12, 24]
workers: 2
`)
	plan, err := LoadPlan(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(plan.Policies) != 2 {
		t.Fatalf("got %d policies, want 2", len(plan.Policies))
	}
	if plan.Policies[0].Name() != "fixed(p=0.90)" || plan.Policies[1].Name() != "auto(p4max=0.80)" {
		t.Errorf("policy names = %q, %q", plan.Policies[0].Name(), plan.Policies[1].Name())
	}
	if plan.Scenario.InitialMargin != 30 {
		t.Errorf("scenario margin = %v, want 30", plan.Scenario.InitialMargin)
	}
	// The partial scenario block overlays defaults, it does not replace them.
	if plan.Scenario.CostPerEmployee != model.DefaultCostPerEmployee {
		t.Errorf("cost per employee = %v, want default", plan.Scenario.CostPerEmployee)
	}
	if len(plan.Margins) != 2 || plan.Margins[0] != 20 {
		t.Errorf("margins = %v", plan.Margins)
	}
	if plan.Workers != 2 {
		t.Errorf("workers = %d, want 2", plan.Workers)
	}
}

func TestLoadPlan_EmptyFallsBackToDefaults(t *testing.T) {
	path := writeFile(t, "plan.yaml", "{}\n")
	plan, err := LoadPlan(path)
	if err != nil {
		t.Fatal(err)
	}
	// Default alphas plus the default adaptive variant.
	if len(plan.Policies) != len(sweep.DefaultAlphas)+1 {
		t.Errorf("got %d policies, want %d", len(plan.Policies), len(sweep.DefaultAlphas)+1)
	}
	if len(plan.Horizons) != len(sweep.DefaultHorizons) {
		t.Errorf("horizons = %v, want defaults", plan.Horizons)
	}
	if plan.Scenario.InitialMargin != model.DefaultInitialMargin {
		t.Errorf("scenario margin = %v, want default", plan.Scenario.InitialMargin)
	}
}

func TestDefaultPlan(t *testing.T) {
	plan, err := DefaultPlan()
	if err != nil {
		t.Fatal(err)
	}
	if len(plan.Policies) != len(sweep.DefaultAlphas)+1 {
		t.Fatalf("got %d policies", len(plan.Policies))
	}
	if _, err := sweep.Run(sweep.Plan{
		Scenario: plan.Scenario,
		Policies: plan.Policies,
		Margins:  []float64{25},
		Horizons: []int{6},
		Workers:  2,
	}); err != nil {
		t.Errorf("default plan should be runnable: %v", err)
	}
}
