package mcp

import (
	"context"
	"testing"

	"github.com/pzlab/planetzero/internal/config"
	"github.com/pzlab/planetzero/internal/model"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	s, err := NewServer(&Config{Name: "planetzero-test", Version: "0.0.0"})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestHandleSimulate(t *testing.T) {
	s := testServer(t)
	_, out, err := s.handleSimulate(context.Background(), nil, SimulateInput{Horizon: 24})
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Records) != 24 {
		t.Fatalf("got %d records, want 24", len(out.Records))
	}
	if out.Summary.Horizon != 24 {
		t.Errorf("summary horizon = %d, want 24", out.Summary.Horizon)
	}
	if out.Summary.FinalImpact <= 0 {
		t.Errorf("baseline final impact = %v, want > 0", out.Summary.FinalImpact)
	}
}

func TestHandleSimulate_FixedPolicy(t *testing.T) {
	s := testServer(t)
	_, out, err := s.handleSimulate(context.Background(), nil, SimulateInput{
		Policy:  &config.PolicySpec{Kind: "fixed", Alpha: 0.70},
		Horizon: 1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if out.Records[0].P != 0.70 {
		t.Errorf("month 0 p = %v, want 0.70", out.Records[0].P)
	}
}

func TestHandleSimulate_Errors(t *testing.T) {
	s := testServer(t)
	ctx := context.Background()

	if _, _, err := s.handleSimulate(ctx, nil, SimulateInput{Horizon: 0}); err == nil {
		t.Error("zero horizon should fail")
	}
	if _, _, err := s.handleSimulate(ctx, nil, SimulateInput{
		Policy:  &config.PolicySpec{Kind: "bogus"},
		Horizon: 12,
	}); err == nil {
		t.Error("unknown policy kind should fail")
	}

	bad := model.DefaultScenario()
	bad.InitialPeople = -1
	if _, _, err := s.handleSimulate(ctx, nil, SimulateInput{Scenario: &bad, Horizon: 12}); err == nil {
		t.Error("invalid scenario should fail")
	}
}

func TestHandleSweep(t *testing.T) {
	s := testServer(t)
	_, out, err := s.handleSweep(context.Background(), nil, SweepInput{
		Policies: []config.PolicySpec{
			{Kind: "fixed", Alpha: 0.70},
			{Kind: "adaptive"},
		},
		Margins:  []float64{25, 30},
		Horizons: []int{12},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Cells) != 4 {
		t.Fatalf("got %d cells, want 4", len(out.Cells))
	}
	if len(out.Horizons) != 1 || out.Horizons[0] != 12 {
		t.Errorf("horizons = %v, want [12]", out.Horizons)
	}
}

func TestHandleSelectBest(t *testing.T) {
	s := testServer(t)
	_, out, err := s.handleSelectBest(context.Background(), nil, SelectBestInput{
		SweepInput: SweepInput{
			Policies: []config.PolicySpec{
				{Kind: "fixed", Alpha: 0.90},
				{Kind: "fixed", Alpha: 0.50},
			},
			Margins:  []float64{25, 30},
			Horizons: []int{24},
		},
		Horizon: 24,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !out.Viable {
		t.Fatal("expected a viable best on a profitable grid")
	}
	if out.Best == nil {
		t.Fatal("viable result must carry the best cell")
	}
	if len(out.Ranked) != 4 {
		t.Errorf("got %d ranked cells, want 4", len(out.Ranked))
	}
	if out.Ranked[0] != *out.Best {
		t.Error("best cell must be the head of the ranking")
	}
}

func TestHandleSelectBest_HorizonAddedToSweep(t *testing.T) {
	// Selecting at a horizon the caller's horizon set omits must still work:
	// the handler adds it to the sweep rather than reporting non-viable for
	// a profitable grid.
	s := testServer(t)
	_, out, err := s.handleSelectBest(context.Background(), nil, SelectBestInput{
		SweepInput: SweepInput{
			Policies: []config.PolicySpec{{Kind: "fixed", Alpha: 0.70}},
			Margins:  []float64{25},
			Horizons: []int{12, 24},
		},
		Horizon: 18,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !out.Viable || out.Best == nil {
		t.Fatalf("expected a viable best at the added horizon, got %+v", out)
	}
	if out.Best.Horizon != 18 {
		t.Errorf("best horizon = %d, want 18", out.Best.Horizon)
	}
}

func TestHandleSelectBest_NoViable(t *testing.T) {
	s := testServer(t)
	_, out, err := s.handleSelectBest(context.Background(), nil, SelectBestInput{
		SweepInput: SweepInput{
			Policies: []config.PolicySpec{{Kind: "fixed", Alpha: 0.70}},
			Margins:  []float64{5, 10}, // below break-even everywhere
			Horizons: []int{24},
		},
		Horizon: 24,
	})
	if err != nil {
		t.Fatal("no-viable is a result, not a tool error")
	}
	if out.Viable || out.Best != nil {
		t.Errorf("expected non-viable empty best, got %+v", out)
	}
	if len(out.Ranked) != 2 {
		t.Errorf("ranking should still list all candidates, got %d", len(out.Ranked))
	}
}

func TestHandleSelectBest_CustomGate(t *testing.T) {
	s := testServer(t)
	zero := 0.0
	_, out, err := s.handleSelectBest(context.Background(), nil, SelectBestInput{
		SweepInput: SweepInput{
			Policies: []config.PolicySpec{{Kind: "fixed", Alpha: 0.70}},
			Margins:  []float64{10}, // frozen, but a zero gate admits it
			Horizons: []int{12},
		},
		Horizon:                 12,
		MinPositiveUtilityShare: &zero,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !out.Viable {
		t.Error("a zero gate should admit every candidate")
	}
}
