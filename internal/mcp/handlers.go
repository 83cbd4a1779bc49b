package mcp

import (
	"context"
	"errors"
	"fmt"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/pzlab/planetzero/internal/config"
	"github.com/pzlab/planetzero/internal/engine"
	"github.com/pzlab/planetzero/internal/model"
	"github.com/pzlab/planetzero/internal/policy"
	"github.com/pzlab/planetzero/internal/ranking"
	"github.com/pzlab/planetzero/internal/sweep"
)

// handleSimulate runs one simulation and returns the full record sequence.
func (s *Server) handleSimulate(ctx context.Context, req *sdk.CallToolRequest, args SimulateInput) (*sdk.CallToolResult, SimulateOutput, error) {
	scenario := model.DefaultScenario()
	if args.Scenario != nil {
		scenario = *args.Scenario
	}
	if args.Horizon <= 0 {
		return nil, SimulateOutput{}, fmt.Errorf("horizon must be positive, got %d", args.Horizon)
	}

	pol, err := buildPolicy(args.Policy)
	if err != nil {
		return nil, SimulateOutput{}, err
	}

	records, err := engine.RunScenario(scenario, pol, args.Horizon)
	if err != nil {
		return nil, SimulateOutput{}, fmt.Errorf("simulation failed: %w", err)
	}

	return nil, SimulateOutput{
		Records: records,
		Summary: sweep.Reduce(records, args.Horizon),
	}, nil
}

// handleSweep runs a sweep and returns the summary table.
func (s *Server) handleSweep(ctx context.Context, req *sdk.CallToolRequest, args SweepInput) (*sdk.CallToolResult, SweepOutput, error) {
	result, err := runSweep(args)
	if err != nil {
		return nil, SweepOutput{}, err
	}
	return nil, SweepOutput{Horizons: result.Horizons, Cells: result.Cells}, nil
}

// handleSelectBest runs a sweep and picks the best viable configuration at a
// horizon. A sweep with no viable candidate is a distinguished result, not a
// tool error.
func (s *Server) handleSelectBest(ctx context.Context, req *sdk.CallToolRequest, args SelectBestInput) (*sdk.CallToolResult, SelectBestOutput, error) {
	if args.Horizon <= 0 {
		return nil, SelectBestOutput{}, fmt.Errorf("horizon must be positive, got %d", args.Horizon)
	}

	// The selection horizon must be one of the sweep's checkpoints; add it
	// when the caller named horizons that do not include it.
	in := args.SweepInput
	in.Horizons = withHorizon(in.Horizons, args.Horizon)

	result, err := runSweep(in)
	if err != nil {
		return nil, SelectBestOutput{}, err
	}

	criteria := ranking.DefaultCriteria()
	if args.MinPositiveUtilityShare != nil {
		criteria.MinPositiveUtilityShare = *args.MinPositiveUtilityShare
	}

	out := SelectBestOutput{Ranked: ranking.Rank(result, args.Horizon)}
	best, err := ranking.SelectBest(result, args.Horizon, criteria)
	switch {
	case err == nil:
		out.Viable = true
		out.Best = &best
	case errors.Is(err, ranking.ErrNoViableCandidate):
		out.Viable = false
	default:
		return nil, SelectBestOutput{}, err
	}
	return nil, out, nil
}

// runSweep builds the effective plan from tool input and executes it.
func runSweep(args SweepInput) (*sweep.Result, error) {
	file := config.PlanFile{
		Scenario: args.Scenario,
		Policies: args.Policies,
		Margins:  args.Margins,
		Horizons: args.Horizons,
	}
	plan, err := file.Build()
	if err != nil {
		return nil, err
	}
	result, err := sweep.Run(plan)
	if err != nil {
		return nil, fmt.Errorf("sweep failed: %w", err)
	}
	return result, nil
}

// withHorizon returns horizons extended with h. An empty set first expands to
// the documented default checkpoints so the extension survives plan building.
func withHorizon(horizons []int, h int) []int {
	if len(horizons) == 0 {
		horizons = append([]int(nil), sweep.DefaultHorizons...)
	}
	for _, existing := range horizons {
		if existing == h {
			return horizons
		}
	}
	return append(append([]int(nil), horizons...), h)
}

// buildPolicy resolves the optional policy spec, defaulting to the
// documented adaptive policy.
func buildPolicy(spec *config.PolicySpec) (policy.Reinvestment, error) {
	if spec == nil {
		return policy.NewDefaultAdaptive(policy.DefaultP4Max)
	}
	return spec.Build()
}
