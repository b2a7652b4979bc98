package fastsparse

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// SparseVector stores the non-zero entries of a length-Dim vector in ascending index
// order.
type SparseVector struct {
	Dim   int
	Index []int
	Value []float64
}

func newSparseVector(dense []float64) SparseVector {
	v := SparseVector{Dim: len(dense)}
	for i, x := range dense {
		if x != 0 {
			v.Index = append(v.Index, i)
			v.Value = append(v.Value, x)
		}
	}
	return v
}

// NNZ returns the number of stored entries.
func (v SparseVector) NNZ() int { return len(v.Index) }

// Dense expands the vector.
func (v SparseVector) Dense() []float64 {
	out := make([]float64, v.Dim)
	for k, i := range v.Index {
		out[i] = v.Value[k]
	}
	return out
}

// At returns entry i.
func (v SparseVector) At(i int) float64 {
	for k, j := range v.Index {
		if j == i {
			return v.Value[k]
		}
		if j > i {
			break
		}
	}
	return 0
}

// GridPoint is the recorded solution at one (γ, λ) pair. It is immutable once stored
// in a Path.
type GridPoint struct {
	Lambda    float64
	Gamma     float64
	Intercept float64
	Beta      SparseVector
	Converged bool
	Status    Status
	Objective float64
	SuppSize  int
	Sweeps    int // CD sweeps spent, including those run inside local search
	Swaps     int // accepted swaps under CDPSI
}

// Slice is the λ path for one γ, in traversal (non-increasing λ) order.
type Slice struct {
	Gamma     float64
	Points    []GridPoint
	Truncated bool // traversal stopped early because the support exceeded MaxSuppSize
}

// Path is the result of a fit: one Slice per γ plus the effective settings.
type Path struct {
	Loss      Loss
	Penalty   Penalty // after normalization; L0 classification is reported as L0L2
	Algorithm Algorithm
	Intercept bool
	// Levels holds the two response values of a classification fit, smaller first;
	// they stand for the internal labels -1 and +1. Nil for regression.
	Levels []float64
	Slices []Slice
	// Diagnostics collects non-fatal notes: penalty rewrites, kept oversized points.
	Diagnostics []string
}

// Gammas returns the γ sequence.
func (p *Path) Gammas() []float64 {
	out := make([]float64, len(p.Slices))
	for i, s := range p.Slices {
		out[i] = s.Gamma
	}
	return out
}

func (p *Path) slice(gi int) *Slice {
	if gi < 0 || gi >= len(p.Slices) {
		panic(fmt.Sprintf("fastsparse: gamma index %d out of range [0,%d)", gi, len(p.Slices)))
	}
	return &p.Slices[gi]
}

// Lambdas returns the λ values of slice gi.
func (p *Path) Lambdas(gi int) []float64 {
	return collect(p.slice(gi), func(g GridPoint) float64 { return g.Lambda })
}

// Intercepts returns the intercepts of slice gi.
func (p *Path) Intercepts(gi int) []float64 {
	return collect(p.slice(gi), func(g GridPoint) float64 { return g.Intercept })
}

// Objectives returns the objective values of slice gi.
func (p *Path) Objectives(gi int) []float64 {
	return collect(p.slice(gi), func(g GridPoint) float64 { return g.Objective })
}

// SuppSizes returns the support sizes of slice gi.
func (p *Path) SuppSizes(gi int) []int {
	return collect(p.slice(gi), func(g GridPoint) int { return g.SuppSize })
}

// Converged returns the convergence flags of slice gi.
func (p *Path) Converged(gi int) []bool {
	return collect(p.slice(gi), func(g GridPoint) bool { return g.Converged })
}

// Coefficients returns the coefficient vectors of slice gi as the columns of a p×K
// matrix, or nil when the slice is empty.
func (p *Path) Coefficients(gi int) *mat.Dense {
	s := p.slice(gi)
	if len(s.Points) == 0 {
		return nil
	}
	m := mat.NewDense(s.Points[0].Beta.Dim, len(s.Points), nil)
	for k, g := range s.Points {
		for t, i := range g.Beta.Index {
			m.Set(i, k, g.Beta.Value[t])
		}
	}
	return m
}

// MaxSuppSize returns the largest support size over the whole path.
func (p *Path) MaxSuppSize() int {
	best := 0
	for _, s := range p.Slices {
		for _, g := range s.Points {
			best = max(best, g.SuppSize)
		}
	}
	return best
}

func collect[T any](s *Slice, f func(GridPoint) T) []T {
	out := make([]T, len(s.Points))
	for i, g := range s.Points {
		out[i] = f(g)
	}
	return out
}
