package model

import "fmt"

// MaturityBand maps a headcount range to a required FS coverage in months.
// Bands are evaluated top-down against MaxEmployees; the last band should use
// MaxEmployees = -1 as the open upper bound.
type MaturityBand struct {
	// MaxEmployees is the inclusive upper headcount bound, or -1 for "no bound".
	MaxEmployees int `yaml:"max_employees" json:"max_employees"`

	// TargetMonths is the required FS coverage for headcounts in this band.
	TargetMonths int `yaml:"target_months" json:"target_months"`
}

// MaturityTable is the ordered step function from employee count to required
// FS coverage months. Keeping it an explicit table, not nested conditionals,
// keeps the maturity rule auditable and testable in isolation.
type MaturityTable []MaturityBand

// DefaultMaturityTable returns the documented maturity rule:
// up to 2 employees → 3 months, 3..6 → 6 months, above 6 → 12 months.
func DefaultMaturityTable() MaturityTable {
	return MaturityTable{
		{MaxEmployees: 2, TargetMonths: 3},
		{MaxEmployees: 6, TargetMonths: 6},
		{MaxEmployees: -1, TargetMonths: 12},
	}
}

// TargetMonths returns the required FS coverage in months for a headcount.
func (t MaturityTable) TargetMonths(employees int) int {
	for _, band := range t {
		if band.MaxEmployees < 0 || employees <= band.MaxEmployees {
			return band.TargetMonths
		}
	}
	// Validate rejects tables without an open last band; treat a fallthrough
	// as the last band's target.
	return t[len(t)-1].TargetMonths
}

// Validate checks that the table is non-empty, strictly ordered, and ends in
// an open band. Violations wrap ErrInvalidScenario.
func (t MaturityTable) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("%w: maturity table must not be empty", ErrInvalidScenario)
	}
	prev := -1
	for i, band := range t {
		last := i == len(t)-1
		if band.TargetMonths <= 0 {
			return fmt.Errorf("%w: maturity band %d: target_months must be positive, got %d", ErrInvalidScenario, i, band.TargetMonths)
		}
		if last {
			if band.MaxEmployees >= 0 {
				return fmt.Errorf("%w: maturity band %d: last band must be open (max_employees = -1)", ErrInvalidScenario, i)
			}
			continue
		}
		if band.MaxEmployees < 0 {
			return fmt.Errorf("%w: maturity band %d: only the last band may be open", ErrInvalidScenario, i)
		}
		if band.MaxEmployees <= prev {
			return fmt.Errorf("%w: maturity band %d: max_employees must increase, got %d after %d", ErrInvalidScenario, i, band.MaxEmployees, prev)
		}
		prev = band.MaxEmployees
	}
	return nil
}
