package ranking

import (
	"errors"
	"testing"

	"github.com/pzlab/planetzero/internal/model"
	"github.com/pzlab/planetzero/internal/sweep"
)

func cell(key string, margin float64, horizon int, impact, bond, pctPositive float64) sweep.Cell {
	return sweep.Cell{
		PolicyKey: key,
		Margin:    margin,
		Horizon:   horizon,
		Metrics: model.SummaryMetrics{
			Horizon:                  horizon,
			FinalImpact:              impact,
			FinalBondCapital:         bond,
			PctMonthsPositiveUtility: pctPositive,
		},
	}
}

func tableOf(cells ...sweep.Cell) *sweep.Result {
	horizons := []int{}
	seen := map[int]bool{}
	for _, c := range cells {
		if !seen[c.Horizon] {
			seen[c.Horizon] = true
			horizons = append(horizons, c.Horizon)
		}
	}
	return &sweep.Result{Horizons: horizons, Cells: cells}
}

func TestSelectBest_MaximizesImpact(t *testing.T) {
	res := tableOf(
		cell("fixed(p=0.50)", 25, 24, 900, 5000, 1),
		cell("fixed(p=0.70)", 25, 24, 1200, 4000, 1),
		cell("fixed(p=0.90)", 25, 24, 700, 9000, 1),
	)
	best, err := SelectBest(res, 24, DefaultCriteria())
	if err != nil {
		t.Fatal(err)
	}
	if best.PolicyKey != "fixed(p=0.70)" {
		t.Errorf("best = %s, want fixed(p=0.70)", best.PolicyKey)
	}
}

func TestSelectBest_ViabilityGateExcludesHigherImpact(t *testing.T) {
	res := tableOf(
		cell("fixed(p=0.90)", 25, 24, 5000, 9000, 0.25), // biggest impact, not viable
		cell("fixed(p=0.50)", 25, 24, 800, 2000, 0.75),
	)
	best, err := SelectBest(res, 24, DefaultCriteria())
	if err != nil {
		t.Fatal(err)
	}
	if best.PolicyKey != "fixed(p=0.50)" {
		t.Errorf("best = %s, want the viable fixed(p=0.50)", best.PolicyKey)
	}
}

func TestSelectBest_GateBoundaryIsInclusive(t *testing.T) {
	res := tableOf(cell("fixed(p=0.70)", 25, 12, 100, 100, 0.5))
	if _, err := SelectBest(res, 12, DefaultCriteria()); err != nil {
		t.Errorf("a candidate exactly at the gate must be viable: %v", err)
	}
}

func TestSelectBest_TieBreaks(t *testing.T) {
	t.Run("bond capital breaks impact ties", func(t *testing.T) {
		res := tableOf(
			cell("fixed(p=0.50)", 25, 24, 1000, 3000, 1),
			cell("fixed(p=0.70)", 25, 24, 1000, 7000, 1),
		)
		best, err := SelectBest(res, 24, DefaultCriteria())
		if err != nil {
			t.Fatal(err)
		}
		if best.PolicyKey != "fixed(p=0.70)" {
			t.Errorf("best = %s, want the higher-bond fixed(p=0.70)", best.PolicyKey)
		}
	})

	t.Run("policy key breaks full metric ties", func(t *testing.T) {
		res := tableOf(
			cell("fixed(p=0.70)", 25, 24, 1000, 3000, 1),
			cell("auto(p4max=0.70)", 25, 24, 1000, 3000, 1),
		)
		best, err := SelectBest(res, 24, DefaultCriteria())
		if err != nil {
			t.Fatal(err)
		}
		if best.PolicyKey != "auto(p4max=0.70)" {
			t.Errorf("best = %s, want lexicographically smaller auto(p4max=0.70)", best.PolicyKey)
		}
	})

	t.Run("margin breaks identical keys", func(t *testing.T) {
		res := tableOf(
			cell("fixed(p=0.70)", 30, 24, 1000, 3000, 1),
			cell("fixed(p=0.70)", 20, 24, 1000, 3000, 1),
		)
		best, err := SelectBest(res, 24, DefaultCriteria())
		if err != nil {
			t.Fatal(err)
		}
		if best.Margin != 20 {
			t.Errorf("best margin = %v, want 20", best.Margin)
		}
	})
}

func TestSelectBest_NoViableCandidate(t *testing.T) {
	res := tableOf(
		cell("fixed(p=0.70)", 10, 24, 0, 0, 0),
		cell("fixed(p=0.50)", 10, 24, 0, 0, 0.2),
	)
	_, err := SelectBest(res, 24, DefaultCriteria())
	if err == nil {
		t.Fatal("expected ErrNoViableCandidate")
	}
	if !errors.Is(err, ErrNoViableCandidate) {
		t.Errorf("error should wrap ErrNoViableCandidate, got %v", err)
	}
}

func TestSelectBest_UnknownHorizon(t *testing.T) {
	// A horizon the sweep never produced is a caller mistake, not a
	// no-viable outcome: a profitable table at horizon 24 says nothing
	// about horizon 18.
	res := tableOf(cell("fixed(p=0.70)", 25, 24, 1000, 3000, 1))
	_, err := SelectBest(res, 18, DefaultCriteria())
	if err == nil {
		t.Fatal("expected ErrUnknownHorizon")
	}
	if !errors.Is(err, ErrUnknownHorizon) {
		t.Errorf("error should wrap ErrUnknownHorizon, got %v", err)
	}
	if errors.Is(err, ErrNoViableCandidate) {
		t.Error("an unsimulated horizon must not report no-viable")
	}
}

func TestSelectBest_IgnoresOtherHorizons(t *testing.T) {
	res := tableOf(
		cell("fixed(p=0.90)", 25, 12, 9999, 9999, 1),
		cell("fixed(p=0.50)", 25, 24, 100, 100, 1),
	)
	best, err := SelectBest(res, 24, DefaultCriteria())
	if err != nil {
		t.Fatal(err)
	}
	if best.PolicyKey != "fixed(p=0.50)" {
		t.Errorf("selection leaked across horizons: got %s", best.PolicyKey)
	}
}

func TestRank_OrderAndCompleteness(t *testing.T) {
	res := tableOf(
		cell("fixed(p=0.50)", 25, 24, 900, 5000, 1),
		cell("fixed(p=0.90)", 25, 24, 700, 9000, 0.1), // not viable, still ranked
		cell("fixed(p=0.70)", 25, 24, 1200, 4000, 1),
	)
	ranked := Rank(res, 24)
	if len(ranked) != 3 {
		t.Fatalf("got %d ranked cells, want 3", len(ranked))
	}
	want := []string{"fixed(p=0.70)", "fixed(p=0.50)", "fixed(p=0.90)"}
	for i, key := range want {
		if ranked[i].PolicyKey != key {
			t.Errorf("rank %d = %s, want %s", i, ranked[i].PolicyKey, key)
		}
	}
}

func TestBestByMargin(t *testing.T) {
	res := tableOf(
		cell("fixed(p=0.70)", 20, 24, 500, 100, 1),
		cell("fixed(p=0.50)", 20, 24, 300, 100, 1),
		cell("fixed(p=0.70)", 30, 24, 2000, 100, 1),
		cell("fixed(p=0.50)", 30, 24, 2500, 100, 1),
		cell("fixed(p=0.70)", 10, 24, 0, 0, 0), // nothing viable at margin 10
	)
	table := BestByMargin(res, 24, DefaultCriteria())
	if len(table) != 2 {
		t.Fatalf("got %d rows, want 2 (margin 10 has no viable candidate)", len(table))
	}
	if table[0].Margin != 20 || table[0].PolicyKey != "fixed(p=0.70)" {
		t.Errorf("row 0 = (%s, %v), want (fixed(p=0.70), 20)", table[0].PolicyKey, table[0].Margin)
	}
	if table[1].Margin != 30 || table[1].PolicyKey != "fixed(p=0.50)" {
		t.Errorf("row 1 = (%s, %v), want (fixed(p=0.50), 30)", table[1].PolicyKey, table[1].Margin)
	}
}

func TestBestByMargin_AllGatedOut(t *testing.T) {
	res := tableOf(cell("fixed(p=0.70)", 25, 24, 100, 100, 0.1))
	if table := BestByMargin(res, 24, DefaultCriteria()); len(table) != 0 {
		t.Errorf("expected empty table, got %d rows", len(table))
	}
}

func TestSelector_EndToEndNoViable(t *testing.T) {
	// A margin grid entirely below break-even freezes every month, so the
	// selector must report the distinguished no-viable outcome rather than
	// an arbitrary cell.
	policies, err := sweep.FixedSharePolicies([]float64{0.90, 0.70, 0.50})
	if err != nil {
		t.Fatal(err)
	}
	res, err := sweep.Run(sweep.Plan{
		Scenario: model.DefaultScenario(),
		Policies: policies,
		Margins:  []float64{5, 10, 15},
		Horizons: []int{12, 24},
		Workers:  2,
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, h := range []int{12, 24} {
		if _, err := SelectBest(res, h, DefaultCriteria()); !errors.Is(err, ErrNoViableCandidate) {
			t.Errorf("horizon %d: expected ErrNoViableCandidate, got %v", h, err)
		}
	}
}
