// Package ranking orders sweep results and selects best-performing policy
// configurations per horizon under a viability-gated criteria.
package ranking

import (
	"errors"
	"fmt"
	"sort"

	"github.com/pzlab/planetzero/internal/sweep"
)

// ErrNoViableCandidate is returned when no candidate at the requested horizon
// passes the viability gate. It is a distinguished selector outcome, not a
// failure of the sweep: callers must handle it explicitly instead of falling
// back to an arbitrary entry. Check with errors.Is.
var ErrNoViableCandidate = errors.New("no viable candidate")

// ErrUnknownHorizon is returned when the requested horizon is not one of the
// result's checkpoints. This is a caller mistake, distinct from
// ErrNoViableCandidate: the horizon was never simulated, so nothing can be
// said about viability at it.
var ErrUnknownHorizon = errors.New("horizon not in sweep result")

// DefaultMinPositiveUtilityShare is the default viability gate: a candidate
// must sustain positive utility in at least half of the simulated months.
const DefaultMinPositiveUtilityShare = 0.5

// Criteria configures the selection ordering and its viability gate.
type Criteria struct {
	// MinPositiveUtilityShare is the minimum share of months with positive
	// utility a candidate needs to be considered viable, in [0,1].
	MinPositiveUtilityShare float64
}

// DefaultCriteria returns the documented default selection criteria.
func DefaultCriteria() Criteria {
	return Criteria{MinPositiveUtilityShare: DefaultMinPositiveUtilityShare}
}

// Viable reports whether a cell passes the viability gate.
func (c Criteria) Viable(cell sweep.Cell) bool {
	return cell.Metrics.PctMonthsPositiveUtility >= c.MinPositiveUtilityShare
}

// less is the selection ordering: higher final impact first, ties broken by
// higher final bond capital, then by lexicographically smaller policy key,
// then by smaller margin, so selection is deterministic.
func less(a, b sweep.Cell) bool {
	if a.Metrics.FinalImpact != b.Metrics.FinalImpact {
		return a.Metrics.FinalImpact > b.Metrics.FinalImpact
	}
	if a.Metrics.FinalBondCapital != b.Metrics.FinalBondCapital {
		return a.Metrics.FinalBondCapital > b.Metrics.FinalBondCapital
	}
	if a.PolicyKey != b.PolicyKey {
		return a.PolicyKey < b.PolicyKey
	}
	return a.Margin < b.Margin
}

// Rank returns the cells of one horizon in selection order, without applying
// the viability gate. Useful for full ranking tables and reports.
func Rank(result *sweep.Result, horizon int) []sweep.Cell {
	cells := result.AtHorizon(horizon)
	sort.SliceStable(cells, func(i, j int) bool { return less(cells[i], cells[j]) })
	return cells
}

// SelectBest picks the best viable cell at a horizon. It returns
// ErrNoViableCandidate when candidates exist but none passes the gate, and
// ErrUnknownHorizon when the result has no cells at the horizon at all, so
// callers can tell "no viable policy" apart from "never simulated".
func SelectBest(result *sweep.Result, horizon int, criteria Criteria) (sweep.Cell, error) {
	cells := result.AtHorizon(horizon)
	if len(cells) == 0 {
		return sweep.Cell{}, fmt.Errorf("horizon %d: %w", horizon, ErrUnknownHorizon)
	}

	var best sweep.Cell
	found := false
	for _, cell := range cells {
		if !criteria.Viable(cell) {
			continue
		}
		if !found || less(cell, best) {
			best = cell
			found = true
		}
	}
	if !found {
		return sweep.Cell{}, fmt.Errorf("horizon %d: %w", horizon, ErrNoViableCandidate)
	}
	return best, nil
}

// BestByMargin picks the best viable cell per margin at a horizon, ascending
// by margin. Margins with no viable candidate are omitted, so an empty table
// means no candidate passed the gate anywhere on the margin grid.
func BestByMargin(result *sweep.Result, horizon int, criteria Criteria) []sweep.Cell {
	byMargin := make(map[float64]sweep.Cell)
	for _, cell := range result.AtHorizon(horizon) {
		if !criteria.Viable(cell) {
			continue
		}
		best, ok := byMargin[cell.Margin]
		if !ok || less(cell, best) {
			byMargin[cell.Margin] = cell
		}
	}

	margins := make([]float64, 0, len(byMargin))
	for m := range byMargin {
		margins = append(margins, m)
	}
	sort.Float64s(margins)

	table := make([]sweep.Cell, 0, len(margins))
	for _, m := range margins {
		table = append(table, byMargin[m])
	}
	return table
}
