package fastsparse

import "slices"

// ActiveSetTracker watches the support across sweeps. Once a sweep repeats the support
// of each of the previous num sweeps it reports the set as stable, and the solver may
// cycle over the support alone until its next full check.
type ActiveSetTracker struct {
	enabled bool
	need    int
	streak  int
	support []int
}

// NewActiveSetTracker returns a tracker that becomes stable once num+1 consecutive
// sweeps share one support. A disabled tracker never becomes stable.
func NewActiveSetTracker(enabled bool, num int) *ActiveSetTracker {
	if num < 1 {
		num = 1
	}
	return &ActiveSetTracker{enabled: enabled, need: num}
}

// Reset forgets the observed history.
func (t *ActiveSetTracker) Reset() {
	t.streak = 0
	t.support = t.support[:0]
}

// Observe records the support of beta after a sweep and reports stability.
func (t *ActiveSetTracker) Observe(beta []float64) bool {
	next := appendSupport(nil, beta)
	if t.streak > 0 && slices.Equal(next, t.support) {
		t.streak++
	} else {
		t.streak = 1
		t.support = append(t.support[:0], next...)
	}
	return t.Stable()
}

// Stable reports whether the support has been unchanged for enough sweeps.
func (t *ActiveSetTracker) Stable() bool {
	return t.enabled && t.streak > t.need
}

// Support returns the last observed support in ascending order.
func (t *ActiveSetTracker) Support() []int { return t.support }

// appendSupport appends the indices of the non-zero entries of beta to dst.
func appendSupport(dst []int, beta []float64) []int {
	for i, b := range beta {
		if b != 0 {
			dst = append(dst, i)
		}
	}
	return dst
}

// countActive counts non-zero coefficients
func countActive(beta []float64) int {
	count := 0
	for _, b := range beta {
		if b != 0 {
			count++
		}
	}
	return count
}
