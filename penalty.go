package fastsparse

import (
	"fmt"
	"math"
	"strings"
)

// Penalty selects the regularizer added to the loss.
type Penalty int

const (
	// L0 is λ‖β‖₀.
	L0 Penalty = iota
	// L0L1 is λ‖β‖₀ + γ‖β‖₁.
	L0L1
	// L0L2 is λ‖β‖₀ + γ‖β‖₂².
	L0L2
)

var penaltyNames = [...]string{"L0", "L0L1", "L0L2"}

func (p Penalty) String() string {
	if p < 0 || int(p) >= len(penaltyNames) {
		return fmt.Sprintf("Penalty(%d)", int(p))
	}
	return penaltyNames[p]
}

// ParsePenalty maps a penalty name (case-insensitive) to its Penalty value.
func ParsePenalty(s string) (Penalty, error) {
	for i, name := range penaltyNames {
		if strings.EqualFold(s, name) {
			return Penalty(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedPenalty, s)
}

func (p Penalty) valid() bool { return p >= L0 && p <= L0L2 }

// Algorithm selects plain coordinate descent or coordinate descent followed by
// local swap search.
type Algorithm int

const (
	// CD is cyclic coordinate descent.
	CD Algorithm = iota
	// CDPSI is coordinate descent refined by partial swap inescapable local search.
	CDPSI
)

var algorithmNames = [...]string{"CD", "CDPSI"}

func (a Algorithm) String() string {
	if a < 0 || int(a) >= len(algorithmNames) {
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}
	return algorithmNames[a]
}

// ParseAlgorithm maps an algorithm name (case-insensitive) to its Algorithm value.
func ParseAlgorithm(s string) (Algorithm, error) {
	for i, name := range algorithmNames {
		if strings.EqualFold(s, name) {
			return Algorithm(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, s)
}

func (a Algorithm) valid() bool { return a == CD || a == CDPSI }

// Threshold returns the minimizer of ½(β-z)² + λ·1[β≠0] + γ·h(β), where h is |β| for
// L0L1, β² for L0L2 and zero for L0.
//
//	L0:   z                  if z² ≥ 2λ
//	L0L2: z/(1+2γ)           if z²/(1+2γ) ≥ 2λ
//	L0L1: sign(z)(|z|-γ)₊    if ((|z|-γ)₊)² ≥ 2λ
func Threshold(z, lambda, gamma float64, kind Penalty) float64 {
	switch kind {
	case L0L2:
		d := 1 + 2*gamma
		if z*z/d >= 2*lambda {
			return z / d
		}
		return 0
	case L0L1:
		s := softThreshold(z, gamma)
		if s*s >= 2*lambda && s != 0 {
			return s
		}
		return 0
	default:
		if z*z >= 2*lambda {
			return z
		}
		return 0
	}
}

// softThreshold applies the soft-thresholding operator
func softThreshold(z, lambda float64) float64 {
	if z > lambda {
		return z - lambda
	} else if z < -lambda {
		return z + lambda
	}
	return 0
}

// PenaltyModel is a fully specified penalty for one grid point.
type PenaltyModel struct {
	Kind          Penalty
	Lambda        float64 // weight of the L0 term
	Gamma         float64 // weight of the L1 or L2 term, ignored for L0
	ExcludeFirstK int     // coordinates 0..k-1 are exempt from the L0 term
}

// Excluded reports whether coordinate i is exempt from the L0 term.
func (pm PenaltyModel) Excluded(i int) bool { return i < pm.ExcludeFirstK }

// shrink applies only the L1/L2 part of the proximal map.
func (pm PenaltyModel) shrink(z, gamma float64) float64 {
	switch pm.Kind {
	case L0L1:
		return softThreshold(z, gamma)
	case L0L2:
		return z / (1 + 2*gamma)
	}
	return z
}

// smooth returns γ·h(b).
func (pm PenaltyModel) smooth(b, gamma float64) float64 {
	switch pm.Kind {
	case L0L1:
		return gamma * math.Abs(b)
	case L0L2:
		return gamma * b * b
	}
	return 0
}

// Update returns the new value of coordinate i for the scaled problem
// ½(β-z)² + (λ/curv)·1[β≠0] + (γ/curv)·h(β), clipped into the box of i.
// Excluded coordinates skip the L0 test but still receive shrinkage and projection.
func (pm PenaltyModel) Update(i int, z, curv float64, box *BoundsProjector) float64 {
	lam, gam := pm.Lambda/curv, pm.Gamma/curv
	if !box.Active() {
		if pm.Excluded(i) {
			return pm.shrink(z, gam)
		}
		return Threshold(z, lam, gam, pm.Kind)
	}

	c := box.Project(i, pm.shrink(z, gam))
	if c == 0 || pm.Excluded(i) {
		return c
	}
	// exact decrease of the scaled coordinate objective when moving from 0 to c
	dec := 0.5*z*z - (0.5*(c-z)*(c-z) + pm.smooth(c, gam))
	if dec >= lam {
		return c
	}
	return 0
}

// Value returns λ·#{i ≥ k : β_i ≠ 0} + γ·Σ h(β_i).
func (pm PenaltyModel) Value(beta []float64) float64 {
	count := 0
	smooth := 0.0
	for i, b := range beta {
		if b == 0 {
			continue
		}
		if !pm.Excluded(i) {
			count++
		}
		smooth += pm.smooth(b, pm.Gamma)
	}
	return pm.Lambda*float64(count) + smooth
}

// entryLambda returns the largest λ at which a zero coordinate with gradient g and
// curvature curv would be set non-zero by Threshold.
func entryLambda(g, curv, gamma float64, kind Penalty) float64 {
	switch kind {
	case L0L2:
		return g * g / (2 * (curv + 2*gamma))
	case L0L1:
		s := math.Max(math.Abs(g)-gamma, 0)
		return s * s / (2 * curv)
	}
	return g * g / (2 * curv)
}
