package fastsparse

import (
	"fmt"
	"math"
)

// BoundsProjector clips coefficients into per-coordinate boxes [low_i, high_i].
// A nil or inactive projector is a no-op.
type BoundsProjector struct {
	lows, highs []float64
	active      bool
}

// NewBoundsProjector builds a projector for p coordinates. lows and highs hold either
// one value, broadcast to every coordinate, or p values. Every box must contain zero
// and be non-degenerate.
func NewBoundsProjector(p int, lows, highs []float64) (*BoundsProjector, error) {
	l, err := broadcast(p, lows, math.Inf(-1))
	if err != nil {
		return nil, fmt.Errorf("lows: %w", err)
	}
	h, err := broadcast(p, highs, math.Inf(1))
	if err != nil {
		return nil, fmt.Errorf("highs: %w", err)
	}

	active := false
	for i := 0; i < p; i++ {
		lo, hi := l[i], h[i]
		switch {
		case math.IsNaN(lo) || math.IsNaN(hi):
			return nil, fmt.Errorf("%w: NaN bound at %d", ErrBadBounds, i)
		case lo > 0:
			return nil, fmt.Errorf("%w: low[%d]=%g must be <= 0", ErrBadBounds, i, lo)
		case hi < 0:
			return nil, fmt.Errorf("%w: high[%d]=%g must be >= 0", ErrBadBounds, i, hi)
		case lo >= hi:
			return nil, fmt.Errorf("%w: empty box [%g, %g] at %d", ErrBadBounds, lo, hi, i)
		}
		if !math.IsInf(lo, -1) || !math.IsInf(hi, 1) {
			active = true
		}
	}
	return &BoundsProjector{lows: l, highs: h, active: active}, nil
}

func broadcast(p int, v []float64, fill float64) ([]float64, error) {
	out := make([]float64, p)
	switch len(v) {
	case 0:
		for i := range out {
			out[i] = fill
		}
	case 1:
		for i := range out {
			out[i] = v[0]
		}
	case p:
		copy(out, v)
	default:
		return nil, fmt.Errorf("%w: got %d bounds for %d coordinates", ErrDimensionMismatch, len(v), p)
	}
	return out, nil
}

// Active reports whether any box differs from (-∞, +∞).
func (b *BoundsProjector) Active() bool { return b != nil && b.active }

// Project clips v into the box of coordinate i.
func (b *BoundsProjector) Project(i int, v float64) float64 {
	if !b.Active() {
		return v
	}
	if v < b.lows[i] {
		return b.lows[i]
	}
	if v > b.highs[i] {
		return b.highs[i]
	}
	return v
}

// Contains reports whether every coordinate of beta lies inside its box.
func (b *BoundsProjector) Contains(beta []float64) bool {
	if !b.Active() {
		return true
	}
	for i, v := range beta {
		if v < b.lows[i] || v > b.highs[i] {
			return false
		}
	}
	return true
}
