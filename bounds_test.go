package fastsparse

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundsProjector(t *testing.T) {
	b, err := NewBoundsProjector(3, []float64{-1, -2, math.Inf(-1)}, []float64{0.5})
	require.NoError(t, err)
	require.True(t, b.Active())

	assert.Equal(t, -1.0, b.Project(0, -4))
	assert.Equal(t, 0.5, b.Project(1, 3))
	assert.Equal(t, -100.0, b.Project(2, -100))
	assert.Equal(t, 0.2, b.Project(0, 0.2))

	assert.False(t, b.Contains([]float64{-3, 0.1, 7}))
	assert.False(t, b.Contains([]float64{0, 0.6, 0}))
	assert.True(t, b.Contains([]float64{-1, 0.1, -1e9}))
}

func TestInactiveBounds(t *testing.T) {
	var nilBox *BoundsProjector
	assert.False(t, nilBox.Active())
	assert.Equal(t, 42.0, nilBox.Project(0, 42))
	assert.True(t, nilBox.Contains([]float64{1e300}))

	b, err := NewBoundsProjector(2, nil, []float64{math.Inf(1), math.Inf(1)})
	require.NoError(t, err)
	assert.False(t, b.Active())
	assert.True(t, b.Contains([]float64{-5, 5}))
}

func TestBoundsErrors(t *testing.T) {
	tests := []struct {
		name        string
		lows, highs []float64
		wantErr     error
	}{
		{"positive low", []float64{0.1}, nil, ErrBadBounds},
		{"negative high", nil, []float64{-0.1}, ErrBadBounds},
		{"empty box", []float64{0}, []float64{0}, ErrBadBounds},
		{"NaN", []float64{math.NaN()}, nil, ErrBadBounds},
		{"wrong length", []float64{-1, -1}, nil, ErrDimensionMismatch},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewBoundsProjector(3, tc.lows, tc.highs)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}
