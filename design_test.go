package fastsparse

import (
	"math"
	"testing"

	"github.com/james-bowman/sparse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestDenseAndSparseDesignsAgree(t *testing.T) {
	X := mat.NewDense(4, 3, []float64{
		1, 0, 2,
		0, 0, -1,
		3, 4, 0,
		0, 5, 6,
	})
	dense := NewDenseDesign(X)
	sp := denseToCSC(X)
	assert.Equal(t, 7, sp.NNZ())

	v := []float64{1, -2, 0.5, 3}
	w := []float64{0.5, 1, 2, 0}
	for j := 0; j < 3; j++ {
		assert.InDelta(t, dense.ColDot(j, v), sp.ColDot(j, v), 1e-12)
		assert.InDelta(t, dense.ColSqNorm(j), sp.ColSqNorm(j), 1e-12)
		assert.InDelta(t, dense.ColWeightedSqNorm(j, w), sp.ColWeightedSqNorm(j, w), 1e-12)

		a, b := make([]float64, 4), make([]float64, 4)
		dense.ColAxpy(j, 2, a)
		sp.ColAxpy(j, 2, b)
		assert.Equal(t, a, b)

		var rows []int
		sp.ColRows(j, func(i int, x float64) {
			rows = append(rows, i)
			assert.Equal(t, X.At(i, j), x)
		})
		var denseRows []int
		dense.ColRows(j, func(i int, _ float64) { denseRows = append(denseRows, i) })
		assert.Equal(t, rows, denseRows)
	}

	assert.True(t, mat.Equal(X, mat.DenseCopyOf(sp)))
	assert.True(t, mat.Equal(X.T(), mat.DenseCopyOf(sp.T())))

	eta := make([]float64, 4)
	linearPredictor(sp, []float64{1, 0, -1}, 0.5, eta)
	assert.Equal(t, []float64{-0.5, 1.5, 3.5, -5.5}, eta)
}

func TestCSCFromTriplets(t *testing.T) {
	ri := []int{2, 0, 2, 1}
	ci := []int{1, 0, 1, 0}
	v := []float64{1, 4, 2, 3}
	m, err := NewCSCFromTriplets(3, 2, ri, ci, v)
	require.NoError(t, err)

	// (2,1) summed
	assert.Equal(t, 4.0, m.At(0, 0))
	assert.Equal(t, 3.0, m.At(1, 0))
	assert.Equal(t, 0.0, m.At(2, 0))
	assert.Equal(t, 3.0, m.At(2, 1))
	assert.Equal(t, 25.0, m.ColSqNorm(0))
	assert.Equal(t, 9.0, m.ColSqNorm(1))

	// the inputs are copied
	v[1] = 10
	ri[0] = 0
	assert.Equal(t, 4.0, m.At(0, 0))
	assert.Equal(t, 25.0, m.ColSqNorm(0))
	assert.Equal(t, 4.0, m.ColDot(0, []float64{1, 0, 0}))

	tests := []struct {
		name    string
		ri, ci  []int
		v       []float64
		wantErr error
	}{
		{"row out of range", []int{3}, []int{0}, []float64{1}, ErrDimensionMismatch},
		{"negative column", []int{0}, []int{-1}, []float64{1}, ErrDimensionMismatch},
		{"length mismatch", []int{0, 1}, []int{0}, []float64{1}, ErrDimensionMismatch},
		{"NaN value", []int{0}, []int{0}, []float64{math.NaN()}, ErrNaNInf},
		{"infinite value", []int{0}, []int{1}, []float64{math.Inf(-1)}, ErrNaNInf},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewCSCFromTriplets(3, 2, tc.ri, tc.ci, tc.v)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
	_, err = NewCSCFromTriplets(0, 2, nil, nil, nil)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestNewCSCCopiesSparseMatrix(t *testing.T) {
	src := sparse.NewDOK(3, 3)
	src.Set(0, 0, 2)
	src.Set(2, 1, -1)
	src.Set(1, 2, 5)

	m, err := NewCSC(src)
	require.NoError(t, err)
	assert.True(t, mat.Equal(src, m))

	src.Set(0, 0, 7)
	assert.Equal(t, 2.0, m.At(0, 0))
	assert.Equal(t, 4.0, m.ColSqNorm(0))
}

func TestCheckFinite(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{
		1, 1e200,
		0, 2,
		3, 0,
	})
	require.NoError(t, checkFinite(NewDenseDesign(X)))
	require.NoError(t, checkFinite(denseToCSC(X)))

	X.Set(1, 1, math.Inf(1))
	err := checkFinite(NewDenseDesign(X))
	require.ErrorIs(t, err, ErrNaNInf)
	assert.Contains(t, err.Error(), "(1,1)")

	X.Set(1, 1, math.NaN())
	require.ErrorIs(t, checkFinite(NewDenseDesign(X)), ErrNaNInf)
}
