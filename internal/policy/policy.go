// Package policy provides the reinvestment policy resolvers that decide, each
// month, what share p of positive net utility is routed to bond capital.
//
// Two built-in resolvers implement the Reinvestment interface: FixedShare
// returns a constant alpha, AdaptiveByCoverage derives p from the survival
// fund's coverage in months. Resolvers are pure: they read the current state
// and never mutate it, so the sweep harness can treat all variants uniformly
// and run them concurrently.
package policy

import (
	"errors"
	"fmt"
	"math"

	"github.com/pzlab/planetzero/internal/model"
)

// ErrInvalidPolicy marks policy configurations or resolutions that violate
// the policy contract (p outside [0,1], non-monotone curve). Check with
// errors.Is.
var ErrInvalidPolicy = errors.New("invalid policy")

// Reinvestment resolves the reinvestment share p in [0,1] for one month.
type Reinvestment interface {
	// Name returns a stable key identifying this policy variant. Sweep and
	// selector tie-breaking rely on names being unique per variant.
	Name() string

	// Resolve returns the share of positive utility routed to bond capital.
	// Implementations must return p in [0,1]; out-of-range values are
	// rejected by the engine at resolution time, not silently clamped.
	Resolve(s model.SimulationState) (float64, error)
}

// FixedShare is the constant-share policy: p = Alpha regardless of state.
// Used for baseline comparisons and operator overrides.
type FixedShare struct {
	Alpha float64
}

// NewFixedShare builds a fixed-share policy, rejecting alpha outside [0,1].
func NewFixedShare(alpha float64) (FixedShare, error) {
	if alpha < 0 || alpha > 1 || math.IsNaN(alpha) {
		return FixedShare{}, fmt.Errorf("%w: fixed share alpha must be in [0,1], got %v", ErrInvalidPolicy, alpha)
	}
	return FixedShare{Alpha: alpha}, nil
}

// Name implements Reinvestment.
func (f FixedShare) Name() string {
	return fmt.Sprintf("fixed(p=%.2f)", f.Alpha)
}

// Resolve implements Reinvestment.
func (f FixedShare) Resolve(model.SimulationState) (float64, error) {
	if f.Alpha < 0 || f.Alpha > 1 || math.IsNaN(f.Alpha) {
		return 0, fmt.Errorf("%w: fixed share alpha must be in [0,1], got %v", ErrInvalidPolicy, f.Alpha)
	}
	return f.Alpha, nil
}
