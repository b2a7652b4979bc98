package fastsparse

import (
	"fmt"
	"math"
	"slices"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Design is read-only column access to an n×p design matrix. Coordinate descent only
// ever touches X one column at a time, so this is all the solver needs.
type Design interface {
	// Dims returns the number of observations n and coordinates p.
	Dims() (n, p int)
	// ColDot returns ⟨x_j, v⟩.
	ColDot(j int, v []float64) float64
	// ColAxpy performs v += alpha * x_j.
	ColAxpy(j int, alpha float64, v []float64)
	// ColSqNorm returns ‖x_j‖².
	ColSqNorm(j int) float64
	// ColWeightedSqNorm returns Σ_i w_i x_ij².
	ColWeightedSqNorm(j int, w []float64) float64
	// ColRows calls fn for every stored entry of column j.
	ColRows(j int, fn func(i int, x float64))
}

// DenseDesign is a Design over a dense matrix. Columns are copied once at construction
// so that column access is contiguous.
type DenseDesign struct {
	n, p   int
	cols   [][]float64
	sqNorm []float64
}

// NewDenseDesign copies X column by column.
func NewDenseDesign(X mat.Matrix) *DenseDesign {
	n, p := X.Dims()
	d := &DenseDesign{
		n:      n,
		p:      p,
		cols:   make([][]float64, p),
		sqNorm: make([]float64, p),
	}
	for j := 0; j < p; j++ {
		col := mat.Col(nil, j, X)
		d.cols[j] = col
		d.sqNorm[j] = floats.Dot(col, col)
	}
	return d
}

func (d *DenseDesign) Dims() (int, int) { return d.n, d.p }

func (d *DenseDesign) ColDot(j int, v []float64) float64 {
	return floats.Dot(d.cols[j], v)
}

func (d *DenseDesign) ColAxpy(j int, alpha float64, v []float64) {
	floats.AddScaled(v, alpha, d.cols[j])
}

func (d *DenseDesign) ColSqNorm(j int) float64 { return d.sqNorm[j] }

func (d *DenseDesign) ColWeightedSqNorm(j int, w []float64) float64 {
	sum := 0.0
	for i, x := range d.cols[j] {
		sum += w[i] * x * x
	}
	return sum
}

func (d *DenseDesign) ColRows(j int, fn func(i int, x float64)) {
	for i, x := range d.cols[j] {
		if x != 0 {
			fn(i, x)
		}
	}
}

// CSC is a Design over a compressed sparse column matrix from
// github.com/james-bowman/sparse. It also satisfies mat.Matrix, so it can be handed to
// gonum routines (mat.DenseCopyOf and friends) when a dense view is needed. The
// underlying matrix is owned by the CSC and never exposed for writing.
type CSC struct {
	m      *sparse.CSC
	sqNorm []float64
}

// nonZeroer is any james-bowman/sparse matrix (COO, CSR, CSC, DOK).
type nonZeroer interface {
	mat.Matrix
	DoNonZero(fn func(i, j int, v float64))
}

// NewCSC copies a sparse matrix into a new CSC design.
func NewCSC(m nonZeroer) (*CSC, error) {
	rows, cols := m.Dims()
	var ri, ci []int
	var v []float64
	m.DoNonZero(func(i, j int, x float64) {
		ri = append(ri, i)
		ci = append(ci, j)
		v = append(v, x)
	})
	return NewCSCFromTriplets(rows, cols, ri, ci, v)
}

// NewCSCFromTriplets builds a CSC matrix from (row, col, value) triplets. Duplicate
// positions are summed. The input slices are copied.
func NewCSCFromTriplets(rows, cols int, ri, ci []int, v []float64) (*CSC, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: shape %dx%d", ErrDimensionMismatch, rows, cols)
	}
	if len(ri) != len(ci) || len(ci) != len(v) {
		return nil, fmt.Errorf("%w: triplet lengths %d/%d/%d", ErrDimensionMismatch, len(ri), len(ci), len(v))
	}
	for k := range v {
		if ri[k] < 0 || ri[k] >= rows || ci[k] < 0 || ci[k] >= cols {
			return nil, fmt.Errorf("%w: triplet (%d,%d) outside %dx%d", ErrDimensionMismatch, ri[k], ci[k], rows, cols)
		}
		if math.IsNaN(v[k]) || math.IsInf(v[k], 0) {
			return nil, fmt.Errorf("%w: at (%d,%d)", ErrNaNInf, ri[k], ci[k])
		}
	}
	coo := sparse.NewCOO(rows, cols, slices.Clone(ri), slices.Clone(ci), slices.Clone(v))
	c := &CSC{m: coo.ToCSC(), sqNorm: make([]float64, cols)}
	for j := 0; j < cols; j++ {
		c.m.DoColNonZero(j, func(_, _ int, x float64) {
			c.sqNorm[j] += x * x
		})
	}
	return c, nil
}

// Dims returns the shape of the matrix.
func (c *CSC) Dims() (int, int) { return c.m.Dims() }

// At returns the element at (i, j).
func (c *CSC) At(i, j int) float64 { return c.m.At(i, j) }

// T returns the transpose.
func (c *CSC) T() mat.Matrix { return c.m.T() }

// NNZ returns the number of stored entries.
func (c *CSC) NNZ() int { return c.m.NNZ() }

func (c *CSC) ColDot(j int, v []float64) float64 {
	sum := 0.0
	c.m.DoColNonZero(j, func(i, _ int, x float64) {
		sum += x * v[i]
	})
	return sum
}

func (c *CSC) ColAxpy(j int, alpha float64, v []float64) {
	c.m.DoColNonZero(j, func(i, _ int, x float64) {
		v[i] += alpha * x
	})
}

func (c *CSC) ColSqNorm(j int) float64 { return c.sqNorm[j] }

func (c *CSC) ColWeightedSqNorm(j int, w []float64) float64 {
	sum := 0.0
	c.m.DoColNonZero(j, func(i, _ int, x float64) {
		sum += w[i] * x * x
	})
	return sum
}

func (c *CSC) ColRows(j int, fn func(i int, x float64)) {
	c.m.DoColNonZero(j, func(i, _ int, x float64) {
		if x != 0 {
			fn(i, x)
		}
	})
}

// linearPredictor computes η = intercept + Xβ into eta, touching only the support.
func linearPredictor(x Design, beta []float64, intercept float64, eta []float64) {
	for i := range eta {
		eta[i] = intercept
	}
	for j, b := range beta {
		if b != 0 {
			x.ColAxpy(j, b, eta)
		}
	}
}

// checkFinite reports the first entry of X holding NaN or ±Inf.
func checkFinite(x Design) error {
	_, p := x.Dims()
	for j := 0; j < p; j++ {
		bad := -1
		x.ColRows(j, func(i int, v float64) {
			if bad < 0 && (math.IsNaN(v) || math.IsInf(v, 0)) {
				bad = i
			}
		})
		if bad >= 0 {
			return fmt.Errorf("%w: at (%d,%d)", ErrNaNInf, bad, j)
		}
	}
	return nil
}
