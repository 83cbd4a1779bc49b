// Package engine implements the discrete-time stock-and-flow core: the pure
// one-month step function and the simulation runner that folds it over a
// horizon into an ordered, replayable record sequence.
package engine

import (
	"fmt"
	"math"

	"github.com/pzlab/planetzero/internal/model"
	"github.com/pzlab/planetzero/internal/policy"
)

// Step advances the simulation by one month. It never mutates its input and,
// for valid inputs, always produces a fully-defined next state with all
// stocks non-negative. The only error path is a policy resolving p outside
// [0,1], which is reported immediately rather than clamped.
//
// A month with non-positive net utility is frozen: no reinvestment, no
// impact, no growth, stocks carried forward unchanged with only the month
// counter advancing.
func Step(s model.SimulationState, sc model.ScenarioConfig, pol policy.Reinvestment) (model.SimulationState, model.StepRecord, error) {
	cost := sc.OperatingCost(s.Employees)
	revenue := s.ActivePeople * s.Margin
	interest := sc.MonthlyRate() * (s.BondCapital + s.SurvivalFund)
	utility := revenue + interest - cost

	// The resolver and the coverage phase observe the pre-allocation state
	// with this month's operating cost in place.
	observed := s
	observed.OperatingCost = cost

	if utility <= 0 {
		next := s
		next.Month++
		next.OperatingCost = cost

		coverage := observed.FSCoverageMonths()
		phase, lambda := policy.Phase(coverage)
		targetMonths := sc.Maturity().TargetMonths(s.Employees)

		rec := model.StepRecord{
			Month:            s.Month,
			ActivePeople:     next.ActivePeople,
			BondCapital:      next.BondCapital,
			SurvivalFund:     next.SurvivalFund,
			Margin:           next.Margin,
			Employees:        next.Employees,
			CumulativeImpact: next.CumulativeImpact,
			OperatingCost:    cost,
			Revenue:          revenue,
			Interest:         interest,
			Utility:          utility,
			Frozen:           true,
			FSCoverageMonths: coverage,
			FSTargetMonths:   targetMonths,
			FSTarget:         float64(targetMonths) * cost,
			Phase:            phase,
			PhaseLambda:      lambda,
		}
		return next, rec, nil
	}

	p, err := pol.Resolve(observed)
	if err != nil {
		return model.SimulationState{}, model.StepRecord{}, fmt.Errorf("month %d: resolving reinvestment share: %w", s.Month, err)
	}
	if p < 0 || p > 1 || math.IsNaN(p) {
		return model.SimulationState{}, model.StepRecord{}, fmt.Errorf("month %d: %w: resolver returned p=%v outside [0,1]", s.Month, policy.ErrInvalidPolicy, p)
	}

	phase, lambda := policy.Phase(observed.FSCoverageMonths())

	// Split positive utility between bond capital and the BPZ branch, then
	// decompose BPZ by the fixed internal ratios.
	bondIn := p * utility
	bpzIn := (1 - p) * utility
	fsIn := sc.FSShareOfBPZ * bpzIn
	remainder := (1 - sc.FSShareOfBPZ) * bpzIn
	impact := sc.ImpactShareOfRemainder * remainder
	internal := (1 - sc.ImpactShareOfRemainder) * remainder
	rd := sc.RDShareOfInternal * internal

	next := s
	next.Month++
	next.OperatingCost = cost
	next.BondCapital += bondIn
	next.SurvivalFund += fsIn
	next.CumulativeImpact += impact

	// Growth feedback: acquisition rises with impact intensity, churn is
	// proportional to current population. Margin growth is capped per month.
	intensityDen := cost + 1
	churn := sc.ChurnRate * s.ActivePeople
	acquisitions := sc.AcqChurnRatio*churn + sc.AcqImpactSensitivity*(impact/intensityDen)
	next.ActivePeople = math.Max(0, s.ActivePeople+acquisitions-churn)

	marginGrowth := sc.MarginImpactSensitivity*(impact/intensityDen) + sc.MarginRDSensitivity*(rd/intensityDen)
	marginGrowth = math.Min(sc.MaxMarginGrowth, math.Max(0, marginGrowth))
	next.Margin = s.Margin * (1 + marginGrowth)

	// Hiring decision, evaluated on the post-allocation fund against the
	// current headcount's target. A hire raises the FS target and the
	// operating-cost baseline for subsequent months.
	targetMonths := sc.Maturity().TargetMonths(s.Employees)
	fsTarget := float64(targetMonths) * cost
	hired := false
	if s.Month-s.LastHireMonth >= sc.HireCooldownMonths && next.SurvivalFund >= sc.HireTriggerBuffer*fsTarget {
		next.Employees++
		next.LastHireMonth = s.Month
		hired = true
		targetMonths = sc.Maturity().TargetMonths(next.Employees)
		fsTarget = float64(targetMonths) * sc.OperatingCost(next.Employees)
	}

	coverage := math.Inf(1)
	if cost > 0 {
		coverage = next.SurvivalFund / cost
	}

	rec := model.StepRecord{
		Month:            s.Month,
		ActivePeople:     next.ActivePeople,
		BondCapital:      next.BondCapital,
		SurvivalFund:     next.SurvivalFund,
		Margin:           next.Margin,
		Employees:        next.Employees,
		CumulativeImpact: next.CumulativeImpact,
		OperatingCost:    cost,
		Revenue:          revenue,
		Interest:         interest,
		Utility:          utility,
		Frozen:           false,
		P:                p,
		BondIn:           bondIn,
		BPZIn:            bpzIn,
		FSIn:             fsIn,
		ImpactAmount:     impact,
		InternalAmount:   internal,
		RDAmount:         rd,
		FSCoverageMonths: coverage,
		FSTargetMonths:   targetMonths,
		FSTarget:         fsTarget,
		Phase:            phase,
		PhaseLambda:      lambda,
		Hired:            hired,
	}
	return next, rec, nil
}
