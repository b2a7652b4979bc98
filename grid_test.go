package fastsparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGammaGrid(t *testing.T) {
	assert.InDeltaSlice(t, []float64{10, 1, 0.1, 0.01, 0.001}, GammaGrid(10, 1e-4, 5, Geometric), 1e-12)
	assert.InDeltaSlice(t, []float64{10, 5.05, 0.1}, GammaGrid(10, 0.01, 3, Linear), 1e-12)
	assert.Equal(t, []float64{3}, GammaGrid(3, 0.5, 1, Geometric))

	gmax, gmin := 7.0, 1e-3
	g := GammaGrid(gmax, gmin, 9, Geometric)
	assert.Equal(t, gmax*gmin, g[8])
	for k := 1; k < len(g); k++ {
		assert.Less(t, g[k], g[k-1])
	}
}

func TestLambdaGrid(t *testing.T) {
	assert.Equal(t, []float64{8, 4, 2, 1}, LambdaGrid(8, 0.5, 4))
	assert.Equal(t, []float64{0}, LambdaGrid(0, 0.5, 4))
	assert.Equal(t, []float64{5}, LambdaGrid(5, 0.9, 1))
}

func TestLambdaMaxStartsEmpty(t *testing.T) {
	X, y := sparseRegression(2, 40, 6, []int{1, 4}, 2, 0.5, 0.1)
	for _, kind := range []Penalty{L0, L0L1, L0L2} {
		cfg := NewDefaultConfig()
		cfg.Penalty = kind
		pr, _, _, err := prepare(NewDenseDesign(X), y, cfg)
		assert.NoError(t, err)

		s := newSolver(pr, 0.05)
		s.fitInterceptOnly()
		lmax := s.lambdaMax()
		assert.Greater(t, lmax, 0.0)

		// just above λ_max nothing enters, just below it the best coordinate does
		s.pen.Lambda = lmax
		for i := 0; i < pr.p; i++ {
			s.updateCoord(i)
		}
		assert.Zero(t, countActive(s.beta), kind.String())

		s.fitInterceptOnly()
		s.pen.Lambda = 0.98 * lmax / lambdaMaxSlack
		for i := 0; i < pr.p; i++ {
			s.updateCoord(i)
		}
		assert.Positive(t, countActive(s.beta), kind.String())
	}
}
