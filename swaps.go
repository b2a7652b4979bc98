package fastsparse

import "math"

// swapResult summarizes local search at one grid point.
type swapResult struct {
	proposals int
	accepted  int
	objective float64
}

// localSearch refines a CD solution by swapping one support coordinate for one
// outside coordinate at a time. A swap is kept only if CD from the swapped state ends
// at a strictly lower objective; otherwise the pre-swap state is restored, so the
// objective never increases. At most maxSwaps proposals are made.
func (s *solver) localSearch() swapResult {
	res := swapResult{objective: s.objective()}
	status := s.status

	for res.proposals < s.pr.maxSwaps {
		improved := false
		for _, i := range appendSupport(nil, s.beta) {
			if s.pen.Excluded(i) {
				continue
			}
			if res.proposals >= s.pr.maxSwaps {
				break
			}
			res.proposals++

			base := s.snapshot()
			s.set(i, 0)
			j, v, ok := s.bestEntrant(i)
			if !ok {
				s.load(base)
				s.status = status
				continue
			}
			s.set(j, v)

			order := s.initialOrder()
			s.solve(order)
			obj := s.objective()
			if res.objective-obj > s.pr.rtol*math.Abs(res.objective) {
				res.objective = obj
				res.accepted++
				status = s.status
				improved = true
				break
			}
			s.load(base)
			s.status = status
		}
		if !improved {
			break
		}
	}
	s.status = status
	return res
}

// bestEntrant scans the screened out-of-support coordinates (other than removed) and
// returns the one whose single-coordinate update, ignoring the L0 cost, lowers the
// objective the most, together with that update.
func (s *solver) bestEntrant(removed int) (int, float64, bool) {
	skip := func(j int) bool { return j == removed || s.beta[j] != 0 }
	best, bestVal, bestGain := -1, 0.0, 0.0
	for _, j := range s.screen.Screen(s.pr.x, s.grad, skip) {
		L := s.curvature(j)
		if L <= 0 {
			continue
		}
		z := -s.pr.x.ColDot(j, s.grad) / L
		gam := s.pen.Gamma / L
		v := s.pr.box.Project(j, s.pen.shrink(z, gam))
		if v == 0 {
			continue
		}
		gain := L * (0.5*z*z - 0.5*(v-z)*(v-z) - s.pen.smooth(v, gam))
		if gain > bestGain {
			best, bestVal, bestGain = j, v, gain
		}
	}
	return best, bestVal, best >= 0
}
