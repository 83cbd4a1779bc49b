package sweep

import "github.com/pzlab/planetzero/internal/model"

// Reduce summarizes the first horizon months of a record sequence. When the
// sequence is shorter than the horizon, the whole sequence is reduced.
func Reduce(records []model.StepRecord, horizon int) model.SummaryMetrics {
	if horizon > len(records) {
		horizon = len(records)
	}
	m := model.SummaryMetrics{Horizon: horizon}
	if horizon <= 0 {
		return m
	}

	slice := records[:horizon]

	var utilitySum, positiveSum float64
	positives := 0
	hires := 0
	for _, rec := range slice {
		utilitySum += rec.Utility
		if rec.Utility > 0 {
			positives++
			positiveSum += rec.Utility
		}
		if rec.Hired {
			hires++
		}
		if m.TimeToFirstImpact == 0 && rec.ImpactAmount > 0 {
			m.TimeToFirstImpact = rec.Month + 1
		}
		if !rec.Frozen {
			m.LastP = rec.P
			m.LastPhase = rec.Phase
		}
	}

	last := slice[horizon-1]
	m.FinalImpact = last.CumulativeImpact
	m.FinalBondCapital = last.BondCapital
	m.FinalSurvivalFund = last.SurvivalFund
	m.FSCoverageMonths = last.FSCoverageMonths
	m.FSTargetMonths = last.FSTargetMonths
	m.EmployeesEnd = last.Employees
	m.ActivePeopleEnd = last.ActivePeople
	m.MarginEnd = last.Margin
	m.HiresTotal = hires

	m.PctMonthsPositiveUtility = float64(positives) / float64(horizon)
	m.AvgUtility = utilitySum / float64(horizon)
	if positives > 0 {
		m.AvgPositiveUtility = positiveSum / float64(positives)
	}
	return m
}
