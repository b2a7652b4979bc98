package fastsparse

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
)

// Status is the state of the coordinate descent solver at one grid point.
type Status int

const (
	Initializing Status = iota
	Cycling
	Stabilizing // cycling over a stable support only
	Converged
	MaxIterReached
)

func (s Status) String() string {
	switch s {
	case Initializing:
		return "Initializing"
	case Cycling:
		return "Cycling"
	case Stabilizing:
		return "Stabilizing"
	case Converged:
		return "Converged"
	case MaxIterReached:
		return "MaxIterReached"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

const (
	// maxBacktracks bounds curvature doubling for losses without a global bound.
	maxBacktracks = 60
	// minCurvature is the floor of a local curvature estimate relative to ‖x_i‖².
	minCurvature = 1e-8
)

// snapshot is the explicit warm-start state handed from one grid point to the next.
type snapshot struct {
	beta      []float64
	intercept float64
}

// solver owns every mutable buffer of one gamma slice: coefficients, linear predictor,
// per-observation gradient and the active-set tracker. It is never shared between
// slices.
type solver struct {
	pr  *problem
	pen PenaltyModel

	beta      []float64
	intercept float64
	eta       []float64 // intercept + Xβ
	grad      []float64 // ∂ℓ/∂η per observation
	scratch   []float64

	tracker *ActiveSetTracker
	screen  *Screener
	inOrder []bool
	all     []int
	sweeps  int
	status  Status
}

func newSolver(pr *problem, gamma float64) *solver {
	s := &solver{
		pr: pr,
		pen: PenaltyModel{
			Kind:          pr.penalty,
			Gamma:         gamma,
			ExcludeFirstK: pr.excludeK,
		},
		beta:    make([]float64, pr.p),
		eta:     make([]float64, pr.n),
		grad:    make([]float64, pr.n),
		scratch: make([]float64, pr.n),
		tracker: NewActiveSetTracker(pr.activeSet, pr.activeSetNum),
		screen:  NewScreener(pr.p, pr.screenSize, pr.partialSort),
		inOrder: make([]bool, pr.p),
		all:     make([]int, pr.p),
	}
	for i := range s.all {
		s.all[i] = i
	}
	return s
}

func (s *solver) snapshot() snapshot {
	return snapshot{
		beta:      append([]float64(nil), s.beta...),
		intercept: s.intercept,
	}
}

// load resets the solver to sn and rebuilds η and the gradient from scratch.
func (s *solver) load(sn snapshot) {
	copy(s.beta, sn.beta)
	s.intercept = sn.intercept
	linearPredictor(s.pr.x, s.beta, s.intercept, s.eta)
	s.pr.loss.Gradient(s.pr.y, s.eta, s.grad)
	s.status = Initializing
}

func (s *solver) objective() float64 {
	return s.pr.loss.Value(s.pr.y, s.eta) + s.pen.Value(s.beta)
}

func (s *solver) residualNorm() float64 {
	return floats.Norm(s.grad, 2)
}

func (s *solver) converged(prev, cur float64) bool {
	if math.Abs(prev-cur) <= s.pr.rtol*math.Abs(prev) {
		return true
	}
	return s.residualNorm() < s.pr.atol
}

// curvature returns the step curvature of coordinate i at the current point.
func (s *solver) curvature(i int) float64 {
	if s.pr.curv != nil {
		return s.pr.curv[i]
	}
	for r := range s.scratch {
		s.scratch[r] = s.pr.loss.Curvature(s.pr.y[r], s.eta[r])
	}
	sq := s.pr.x.ColSqNorm(i)
	return math.Max(s.pr.x.ColWeightedSqNorm(i, s.scratch), minCurvature*sq)
}

// move sets β_i += d and updates η and the gradient on the rows of column i.
func (s *solver) move(i int, d float64) {
	if d == 0 {
		return
	}
	s.beta[i] += d
	loss, y := s.pr.loss, s.pr.y
	s.pr.x.ColRows(i, func(r int, x float64) {
		s.eta[r] += d * x
		s.grad[r] = loss.Deriv(y[r], s.eta[r])
	})
}

// set assigns β_i = v exactly.
func (s *solver) set(i int, v float64) {
	old := s.beta[i]
	s.move(i, v-old)
	s.beta[i] = v
}

// coordTerm is the penalty contribution of coordinate i at value b.
func (s *solver) coordTerm(i int, b float64) float64 {
	t := s.pen.smooth(b, s.pen.Gamma)
	if b != 0 && !s.pen.Excluded(i) {
		t += s.pen.Lambda
	}
	return t
}

// coordDelta is the exact objective change of moving β_i from old to nb.
func (s *solver) coordDelta(i int, old, nb float64) float64 {
	d := nb - old
	loss, y := s.pr.loss, s.pr.y
	delta := 0.0
	s.pr.x.ColRows(i, func(r int, x float64) {
		delta += loss.Pointwise(y[r], s.eta[r]+d*x) - loss.Pointwise(y[r], s.eta[r])
	})
	return delta + s.coordTerm(i, nb) - s.coordTerm(i, old)
}

// updateCoord performs one proximal coordinate step on i.
func (s *solver) updateCoord(i int) {
	L := s.curvature(i)
	if L <= 0 {
		return
	}
	old := s.beta[i]
	g := s.pr.x.ColDot(i, s.grad)
	nb := s.pen.Update(i, old-g/L, L, s.pr.box)

	if s.pr.curv == nil {
		// local curvature is not a majorizer, so insist on descent
		for k := 0; nb != old && s.coordDelta(i, old, nb) > 0; k++ {
			if k == maxBacktracks {
				return
			}
			L *= 2
			nb = s.pen.Update(i, old-g/L, L, s.pr.box)
		}
	}
	if nb != old {
		s.set(i, nb)
	}
}

// updateIntercept takes one curvature-bounded step on the intercept.
func (s *solver) updateIntercept() {
	if !s.pr.intercept {
		return
	}
	sum := floats.Sum(s.grad)
	if sum == 0 {
		return
	}
	n := float64(s.pr.n)
	var d float64
	if c, ok := s.pr.loss.CurvatureBound(); ok {
		d = -sum / (c * n)
	} else {
		L := 0.0
		for r := range s.eta {
			L += s.pr.loss.Curvature(s.pr.y[r], s.eta[r])
		}
		d = -sum / math.Max(L, minCurvature*n)
		base := s.pr.loss.Value(s.pr.y, s.eta)
		for k := 0; k < maxBacktracks; k++ {
			copy(s.scratch, s.eta)
			floats.AddConst(d, s.scratch)
			if s.pr.loss.Value(s.pr.y, s.scratch) <= base {
				break
			}
			d /= 2
			if k == maxBacktracks-1 {
				return
			}
		}
	}
	s.intercept += d
	floats.AddConst(d, s.eta)
	s.pr.loss.Gradient(s.pr.y, s.eta, s.grad)
}

// fitInterceptOnly sets β = 0 and fits the intercept alone.
func (s *solver) fitInterceptOnly() {
	for i := range s.beta {
		s.beta[i] = 0
	}
	s.intercept = 0
	if s.pr.intercept && s.pr.loss.Kind() == SquaredError {
		s.intercept = floats.Sum(s.pr.y) / float64(s.pr.n)
	}
	s.load(snapshot{beta: s.beta, intercept: s.intercept})
	if !s.pr.intercept {
		return
	}
	prev := s.objective()
	for it := 0; it < s.pr.maxIters; it++ {
		s.updateIntercept()
		cur := s.objective()
		if s.converged(prev, cur) {
			return
		}
		prev = cur
	}
}

// sweep updates every coordinate in coords once, then the intercept.
func (s *solver) sweep(coords []int) {
	for _, i := range coords {
		s.updateCoord(i)
	}
	s.updateIntercept()
	s.sweeps++
}

// initialOrder is the cycling set for a fresh grid point: the warm-start support, the
// coordinates exempt from L0, then the best screened coordinates.
func (s *solver) initialOrder() []int {
	for i := range s.inOrder {
		s.inOrder[i] = false
	}
	order := make([]int, 0, s.screen.Size()+s.pr.excludeK)
	for i, b := range s.beta {
		if b != 0 || s.pen.Excluded(i) {
			order = append(order, i)
			s.inOrder[i] = true
		}
	}
	for _, i := range s.screen.Screen(s.pr.x, s.grad, func(i int) bool { return s.inOrder[i] }) {
		order = append(order, i)
		s.inOrder[i] = true
	}
	return order
}

// admit appends coordinates of the current support missing from order.
func (s *solver) admit(order []int) []int {
	for i, b := range s.beta {
		if b != 0 && !s.inOrder[i] {
			order = append(order, i)
			s.inOrder[i] = true
		}
	}
	return order
}

// solve runs coordinate descent from the loaded state until convergence or until the
// sweep budget is spent. Cycling starts over order; once the support is stable it is
// restricted to the support, and every local convergence on a restricted set is
// confirmed by a sweep over all coordinates, even when the budget is already spent.
func (s *solver) solve(order []int) Status {
	p := s.pr.p
	s.tracker.Reset()
	s.status = Cycling
	prev := s.objective()
	var before, set []int
	budget := s.sweeps + s.pr.maxIters

	for s.sweeps < budget {
		set = order
		s.status = Cycling
		if s.tracker.Stable() {
			set = append(set[:0:0], s.tracker.Support()...)
			s.status = Stabilizing
		}
		s.sweep(set)
		cur := s.objective()
		s.tracker.Observe(s.beta)
		if !s.converged(prev, cur) {
			prev = cur
			continue
		}
		if len(set) == p {
			s.status = Converged
			return s.status
		}

		before = appendSupport(before[:0], s.beta)
		s.sweep(s.all)
		full := s.objective()
		after := appendSupport(nil, s.beta)
		if slices.Equal(before, after) && s.converged(cur, full) {
			s.status = Converged
			return s.status
		}
		order = s.admit(order)
		s.tracker.Reset()
		prev = full
	}
	s.status = MaxIterReached
	return s.status
}
