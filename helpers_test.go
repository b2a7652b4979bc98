package fastsparse

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// sparseRegression draws an n×p Gaussian design and y = intercept + Xβ + noise·ε,
// where β is zero outside support.
func sparseRegression(seed int64, n, p int, support []int, coef, intercept, noise float64) (*mat.Dense, []float64) {
	rng := rand.New(rand.NewSource(seed))
	X := mat.NewDense(n, p, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			X.Set(i, j, rng.NormFloat64())
		}
	}
	y := make([]float64, n)
	for i := range y {
		y[i] = intercept + noise*rng.NormFloat64()
		for _, j := range support {
			y[i] += coef * X.At(i, j)
		}
	}
	return X, y
}

// twoFeatureData is y = 1 + 2·x0 - 3·x3 on a 50×8 Gaussian design, without noise.
func twoFeatureData() (*mat.Dense, []float64) {
	rng := rand.New(rand.NewSource(42))
	n, p := 50, 8
	X := mat.NewDense(n, p, nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			X.Set(i, j, rng.NormFloat64())
		}
		y[i] = 1 + 2*X.At(i, 0) - 3*X.At(i, 3)
	}
	return X, y
}

// binaryData labels y ∈ {0, 1} by the sign of x0 + 0.5·x1 plus label noise.
func binaryData(seed int64, n, p int) (*mat.Dense, []float64) {
	rng := rand.New(rand.NewSource(seed))
	X := mat.NewDense(n, p, nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			X.Set(i, j, rng.NormFloat64())
		}
		if X.At(i, 0)+0.5*X.At(i, 1)+0.3*rng.NormFloat64() > 0 {
			y[i] = 1
		}
	}
	return X, y
}

// denseToCSC converts X through triplets.
func denseToCSC(X *mat.Dense) *CSC {
	n, p := X.Dims()
	var ri, ci []int
	var v []float64
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			if x := X.At(i, j); x != 0 {
				ri, ci, v = append(ri, i), append(ci, j), append(v, x)
			}
		}
	}
	m, err := NewCSCFromTriplets(n, p, ri, ci, v)
	if err != nil {
		panic(err)
	}
	return m
}

func supportOf(g GridPoint) []int { return g.Beta.Index }
