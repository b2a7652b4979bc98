package fastsparse

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func identityDesign(p int) Design {
	X := mat.NewDense(p, p, nil)
	for i := 0; i < p; i++ {
		X.Set(i, i, 1)
	}
	return NewDenseDesign(X)
}

func TestScreenOrdering(t *testing.T) {
	x := identityDesign(4)
	v := []float64{3, -1, 3, 2}

	for _, partial := range []bool{true, false} {
		assert.Equal(t, []int{0, 2}, NewScreener(4, 2, partial).Screen(x, v, nil))
		assert.Equal(t, []int{0, 2, 3}, NewScreener(4, 3, partial).Screen(x, v, nil))
		assert.Equal(t, []int{0, 2, 3, 1}, NewScreener(4, 0, partial).Screen(x, v, nil))

		skip := func(i int) bool { return i == 0 }
		assert.Equal(t, []int{2, 3}, NewScreener(4, 2, partial).Screen(x, v, skip))
	}

	s := NewScreener(4, 10, true)
	assert.Equal(t, 4, s.Size())
	assert.Equal(t, []float64{3, 1, 3, 2}, s.Scores(x, v))
}

func TestPartialSortMatchesFullSort(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	X := mat.NewDense(30, 200, nil)
	for i := 0; i < 30; i++ {
		for j := 0; j < 200; j++ {
			X.Set(i, j, float64(rng.Intn(5)-2))
		}
	}
	x := NewDenseDesign(X)
	v := make([]float64, 30)
	for i := range v {
		v[i] = float64(rng.Intn(3) - 1)
	}
	skip := func(i int) bool { return i%7 == 0 }

	for _, k := range []int{1, 5, 50, 200} {
		full := NewScreener(200, k, false).Screen(x, v, skip)
		part := NewScreener(200, k, true).Screen(x, v, skip)
		assert.Equal(t, full, part, "k=%d", k)
	}
}
