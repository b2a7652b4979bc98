package fastsparse

import (
	"container/heap"
	"math"
	"slices"
)

// Screener ranks coordinates by |⟨x_i, v⟩| where v is the current per-observation
// gradient (the negative residual for squared error) and keeps the best few.
type Screener struct {
	size    int
	partial bool
	scores  []float64
}

// NewScreener returns a screener over p coordinates keeping at most size of them.
// With partial set only the kept coordinates are ordered; otherwise every score is
// sorted. Both modes return the same indices in the same order.
func NewScreener(p, size int, partial bool) *Screener {
	if size <= 0 || size > p {
		size = p
	}
	return &Screener{size: size, partial: partial, scores: make([]float64, p)}
}

// Size returns the number of coordinates kept by Screen.
func (s *Screener) Size() int { return s.size }

// Scores computes |⟨x_i, v⟩| for every coordinate. The returned slice is owned by the
// screener and is overwritten by the next call.
func (s *Screener) Scores(x Design, v []float64) []float64 {
	for i := range s.scores {
		s.scores[i] = math.Abs(x.ColDot(i, v))
	}
	return s.scores
}

// Screen returns up to Size coordinates with the largest scores, best first, ties
// broken by the lower index. Coordinates for which skip returns true are ignored.
func (s *Screener) Screen(x Design, v []float64, skip func(int) bool) []int {
	s.Scores(x, v)
	return s.top(s.size, skip)
}

func (s *Screener) better(a, b int) bool {
	if s.scores[a] != s.scores[b] {
		return s.scores[a] > s.scores[b]
	}
	return a < b
}

func (s *Screener) cmp(a, b int) int {
	if s.better(a, b) {
		return -1
	}
	if s.better(b, a) {
		return 1
	}
	return 0
}

func (s *Screener) top(k int, skip func(int) bool) []int {
	if s.partial {
		return s.partialTop(k, skip)
	}
	all := make([]int, 0, len(s.scores))
	for i := range s.scores {
		if skip == nil || !skip(i) {
			all = append(all, i)
		}
	}
	slices.SortFunc(all, s.cmp)
	if len(all) > k {
		all = all[:k]
	}
	return all
}

// partialTop keeps a bounded min-heap of the k best candidates.
func (s *Screener) partialTop(k int, skip func(int) bool) []int {
	h := &worstFirst{s: s, idx: make([]int, 0, k)}
	for i := range s.scores {
		if skip != nil && skip(i) {
			continue
		}
		if h.Len() < k {
			heap.Push(h, i)
		} else if k > 0 && s.better(i, h.idx[0]) {
			h.idx[0] = i
			heap.Fix(h, 0)
		}
	}
	out := h.idx
	slices.SortFunc(out, s.cmp)
	return out
}

type worstFirst struct {
	s   *Screener
	idx []int
}

func (h *worstFirst) Len() int           { return len(h.idx) }
func (h *worstFirst) Less(a, b int) bool { return h.s.better(h.idx[b], h.idx[a]) }
func (h *worstFirst) Swap(a, b int)      { h.idx[a], h.idx[b] = h.idx[b], h.idx[a] }
func (h *worstFirst) Push(x any)         { h.idx = append(h.idx, x.(int)) }
func (h *worstFirst) Pop() any {
	n := len(h.idx)
	v := h.idx[n-1]
	h.idx = h.idx[:n-1]
	return v
}
