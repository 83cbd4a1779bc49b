package policy

import (
	"fmt"
	"math"

	"github.com/pzlab/planetzero/internal/model"
)

// DefaultP4Max is the default upper p bound of the final coverage phase.
const DefaultP4Max = 0.70

// CoverageBand maps a half-open FS-coverage range (in months) to a p range.
// Within a band, p interpolates linearly from PMin at the band's lower
// coverage bound to PMax at its upper bound.
type CoverageBand struct {
	// UpperCoverage is the exclusive upper coverage bound in months.
	// The last band must be open: UpperCoverage < 0 (no bound).
	UpperCoverage float64 `yaml:"upper_coverage" json:"upper_coverage"`

	PMin float64 `yaml:"p_min" json:"p_min"`
	PMax float64 `yaml:"p_max" json:"p_max"`
}

// DefaultCoverageBands returns the documented four-phase curve: prioritize
// impact while the buffer is fragile, shift toward capital once resilient.
//
//	phase 1: coverage < 3   → p in [0.05, 0.15]
//	phase 2: 3 ≤ cov < 6    → p in [0.20, 0.35]
//	phase 3: 6 ≤ cov < 12   → p in [0.30, 0.50]
//	phase 4: cov ≥ 12       → p in [0.40, p4Max]
func DefaultCoverageBands(p4Max float64) []CoverageBand {
	return []CoverageBand{
		{UpperCoverage: 3, PMin: 0.05, PMax: 0.15},
		{UpperCoverage: 6, PMin: 0.20, PMax: 0.35},
		{UpperCoverage: 12, PMin: 0.30, PMax: 0.50},
		{UpperCoverage: -1, PMin: 0.40, PMax: p4Max},
	}
}

// AdaptiveByCoverage resolves p as a band-wise non-decreasing function of FS
// coverage: both band minima and band maxima must not decrease from one band
// to the next, and every p bound must lie in [0,1].
type AdaptiveByCoverage struct {
	bands []CoverageBand
	name  string
}

// NewAdaptiveByCoverage builds an adaptive policy from an explicit band
// table, rejecting non-monotone or out-of-range configurations.
func NewAdaptiveByCoverage(name string, bands []CoverageBand) (*AdaptiveByCoverage, error) {
	if len(bands) == 0 {
		return nil, fmt.Errorf("%w: adaptive curve needs at least one band", ErrInvalidPolicy)
	}
	prevUpper := 0.0
	prevMin, prevMax := -1.0, -1.0
	for i, b := range bands {
		last := i == len(bands)-1
		if b.PMin < 0 || b.PMin > 1 || b.PMax < 0 || b.PMax > 1 {
			return nil, fmt.Errorf("%w: band %d: p bounds must be in [0,1], got [%v,%v]", ErrInvalidPolicy, i, b.PMin, b.PMax)
		}
		if b.PMin > b.PMax {
			return nil, fmt.Errorf("%w: band %d: p_min %v exceeds p_max %v", ErrInvalidPolicy, i, b.PMin, b.PMax)
		}
		if b.PMin < prevMin || b.PMax < prevMax {
			return nil, fmt.Errorf("%w: band %d: p range [%v,%v] decreases from previous band", ErrInvalidPolicy, i, b.PMin, b.PMax)
		}
		if last {
			if b.UpperCoverage >= 0 {
				return nil, fmt.Errorf("%w: band %d: last band must be open (upper_coverage < 0)", ErrInvalidPolicy, i)
			}
		} else {
			if b.UpperCoverage <= prevUpper {
				return nil, fmt.Errorf("%w: band %d: upper_coverage must increase, got %v after %v", ErrInvalidPolicy, i, b.UpperCoverage, prevUpper)
			}
			prevUpper = b.UpperCoverage
		}
		prevMin, prevMax = b.PMin, b.PMax
	}
	if name == "" {
		name = "adaptive"
	}
	return &AdaptiveByCoverage{bands: bands, name: name}, nil
}

// NewDefaultAdaptive builds the documented four-phase adaptive policy with a
// configurable final-phase maximum.
func NewDefaultAdaptive(p4Max float64) (*AdaptiveByCoverage, error) {
	if p4Max < 0.40 || p4Max > 1 {
		return nil, fmt.Errorf("%w: p4_max must be in [0.40,1], got %v", ErrInvalidPolicy, p4Max)
	}
	return NewAdaptiveByCoverage(fmt.Sprintf("auto(p4max=%.2f)", p4Max), DefaultCoverageBands(p4Max))
}

// Name implements Reinvestment.
func (a *AdaptiveByCoverage) Name() string { return a.name }

// Resolve implements Reinvestment. Coverage +Inf (zero operating cost)
// resolves to the top of the final band.
func (a *AdaptiveByCoverage) Resolve(s model.SimulationState) (float64, error) {
	idx, lambda := locate(a.bands, s.FSCoverageMonths())
	b := a.bands[idx]
	return b.PMin + lambda*(b.PMax-b.PMin), nil
}

// locate returns the band index for a coverage value and the clamped linear
// position within the band. For the open final band the interpolation width
// equals the band's lower bound, so p keeps rising gently past the last
// breakpoint instead of jumping.
func locate(bands []CoverageBand, coverage float64) (int, float64) {
	lower := 0.0
	for i, b := range bands {
		last := i == len(bands)-1
		if last || coverage < b.UpperCoverage {
			width := b.UpperCoverage - lower
			if last {
				width = lower
			}
			if width <= 0 {
				return i, 1
			}
			lambda := (coverage - lower) / width
			return i, clamp01(lambda)
		}
		lower = b.UpperCoverage
	}
	return len(bands) - 1, 1
}

// Phase reports the coverage phase (1-based) and the in-phase position of a
// coverage value against the documented default bands. The step record carries
// this for observability regardless of which policy is in force.
func Phase(coverage float64) (int, float64) {
	idx, lambda := locate(DefaultCoverageBands(DefaultP4Max), coverage)
	return idx + 1, lambda
}

func clamp01(x float64) float64 {
	if math.IsNaN(x) {
		return 1
	}
	return math.Max(0, math.Min(1, x))
}
