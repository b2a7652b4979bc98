package fastsparse

import "math"

// lambdaMaxSlack lifts λ_max just above the largest entry threshold so that the first
// automatic grid point is the intercept-only model.
const lambdaMaxSlack = 1.01

// classificationGamma is the fixed L2 weight used when L0 is combined with a
// classification loss.
const classificationGamma = 1e-7

// GammaGrid returns n values from gmax down to gmax·gmin. A single value is gmax.
func GammaGrid(gmax, gmin float64, n int, scale GammaScale) []float64 {
	if n <= 1 {
		return []float64{gmax}
	}
	out := make([]float64, n)
	lo := gmax * gmin
	for k := range out {
		t := float64(k) / float64(n-1)
		if scale == Linear {
			out[k] = gmax + t*(lo-gmax)
		} else {
			out[k] = gmax * math.Pow(gmin, t)
		}
	}
	out[n-1] = lo
	return out
}

// LambdaGrid returns λ_max·factor^k for k = 0..n-1. A zero λ_max yields the single
// value 0.
func LambdaGrid(lambdaMax, factor float64, n int) []float64 {
	if lambdaMax <= 0 || n < 1 {
		return []float64{0}
	}
	out := make([]float64, n)
	v := lambdaMax
	for k := range out {
		out[k] = v
		v *= factor
	}
	return out
}

// lambdaMax returns lambdaMaxSlack times the largest λ at which any coordinate
// subject to L0 would leave zero from the solver's current (intercept-only) state.
func (s *solver) lambdaMax() float64 {
	best := 0.0
	for i := s.pr.excludeK; i < s.pr.p; i++ {
		L := s.curvature(i)
		if L <= 0 {
			continue
		}
		g := s.pr.x.ColDot(i, s.grad)
		best = math.Max(best, entryLambda(g, L, s.pen.Gamma, s.pen.Kind))
	}
	return lambdaMaxSlack * best
}

// gradientMax returns max_i |⟨x_i, ∇f⟩| at the current state. It is the smallest L1
// weight that keeps every coordinate at zero, and seeds the automatic L0L1 γ grid.
func (s *solver) gradientMax() float64 {
	best := 0.0
	for _, v := range s.screen.Scores(s.pr.x, s.grad) {
		best = math.Max(best, v)
	}
	return best
}
