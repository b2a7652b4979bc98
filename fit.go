// Package fastsparse fits regularization paths of L0-penalized generalized linear
// models (optionally L0+L1 or L0+L2) with cyclic coordinate descent and local swap
// search, over a grid of sparsity (λ) and shrinkage (γ) penalties.
package fastsparse

import (
	"fmt"
	"math"
	"slices"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// problem is the strategy resolved once per fit: data, loss, penalty kind, bounds and
// solver settings. It is read-only while slices are being solved.
type problem struct {
	x      Design
	y      []float64 // ±1 for classification
	levels []float64 // original response values behind -1 and +1
	n, p   int

	loss    LossModel
	penalty Penalty
	algo    Algorithm
	box     *BoundsProjector
	curv    []float64 // c·‖x_i‖² when the loss has a global curvature bound, else nil

	intercept    bool
	excludeK     int
	maxIters     int
	maxSwaps     int
	maxSupp      int
	rtol, atol   float64
	activeSet    bool
	activeSetNum int
	screenSize   int
	partialSort  bool
}

// FitDense fits a path on a dense design matrix.
func FitDense(X *mat.Dense, y []float64, cfg *Config) (*Path, error) {
	return Fit(NewDenseDesign(X), y, cfg)
}

// FitSparse fits a path on a sparse design matrix.
func FitSparse(X *CSC, y []float64, cfg *Config) (*Path, error) {
	return Fit(X, y, cfg)
}

// Fit computes the regularization path over the (γ, λ) grid described by cfg.
// Configuration errors are returned before any optimization starts. Non-convergence
// at a grid point is not an error; it is reported by GridPoint.Converged.
func Fit(x Design, y []float64, cfg *Config) (*Path, error) {
	startTime := time.Now()
	pr, c, diagnostics, err := prepare(x, y, cfg)
	if err != nil {
		return nil, err
	}
	n, p := pr.n, pr.p

	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	gammas := pr.gammas(c)
	logger.Info("starting fit",
		zap.Stringer("loss", c.Loss),
		zap.Stringer("penalty", c.Penalty),
		zap.Stringer("algorithm", c.Algorithm),
		zap.Int("samples", n),
		zap.Int("features", p),
		zap.Int("n_gamma", len(gammas)))

	path := &Path{
		Loss:        c.Loss,
		Penalty:     c.Penalty,
		Algorithm:   c.Algorithm,
		Intercept:   c.Intercept,
		Levels:      pr.levels,
		Slices:      make([]Slice, len(gammas)),
		Diagnostics: diagnostics,
	}
	notes := make([][]string, len(gammas))

	var g errgroup.Group
	g.SetLimit(max(c.NJobs, 1))
	for gi, gamma := range gammas {
		gi, gamma := gi, gamma
		var user []float64
		if c.UseUserLambda {
			user = c.LambdaGrid[gi]
		}
		g.Go(func() error {
			sl, note, err := pr.runSlice(gamma, user, c.NLambda, c.ScaleDownFactor, logger.With(zap.Int("gamma_index", gi)))
			if err != nil {
				return fmt.Errorf("gamma[%d]=%g: %w", gi, gamma, err)
			}
			path.Slices[gi] = sl
			notes[gi] = note
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, note := range notes {
		path.Diagnostics = append(path.Diagnostics, note...)
	}

	logger.Info("fit completed",
		zap.Duration("elapsed", time.Since(startTime).Round(time.Millisecond)),
		zap.Int("max_support", path.MaxSuppSize()))
	return path, nil
}

// prepare normalizes and validates cfg against the data and resolves the fitting
// strategy. Nothing here depends on the optimization outcome.
func prepare(x Design, y []float64, cfg *Config) (*problem, *Config, []string, error) {
	if cfg == nil {
		return nil, nil, nil, fmt.Errorf("%w: nil config", ErrInvalidConfig)
	}
	c := *cfg
	var diagnostics []string

	// L0 alone is ill-posed for separable classification data; a vanishing ridge term
	// keeps the coefficients finite.
	if c.Loss.Classification() && c.Penalty == L0 {
		c.Penalty = L0L2
		c.NGamma = 1
		c.GammaMax = classificationGamma
		c.GammaMin = 1
		diagnostics = append(diagnostics, fmt.Sprintf("penalty L0 with %v loss fit as L0L2 with gamma=%g", c.Loss, classificationGamma))
	}
	if c.Penalty == L0 {
		c.NGamma = 1
	}
	if err := c.Validate(); err != nil {
		return nil, nil, nil, err
	}

	n, p := x.Dims()
	switch {
	case n != len(y):
		return nil, nil, nil, fmt.Errorf("%w: X has %d rows, y has %d", ErrDimensionMismatch, n, len(y))
	case n == 0 || p == 0:
		return nil, nil, nil, fmt.Errorf("%w: empty design %dx%d", ErrDimensionMismatch, n, p)
	case c.ExcludeFirstK > p:
		return nil, nil, nil, fmt.Errorf("%w: exclude_first_k=%d exceeds p=%d", ErrInvalidConfig, c.ExcludeFirstK, p)
	case c.UseUserLambda && len(c.LambdaGrid) != c.NGamma:
		return nil, nil, nil, fmt.Errorf("%w: %d lambda lists for %d gamma values", ErrGammaGrid, len(c.LambdaGrid), c.NGamma)
	}
	if err := checkFinite(x); err != nil {
		return nil, nil, nil, err
	}
	yy, levels, err := normalizeResponse(y, c.Loss)
	if err != nil {
		return nil, nil, nil, err
	}

	var box *BoundsProjector
	if c.WithBounds {
		if box, err = NewBoundsProjector(p, c.Lows, c.Highs); err != nil {
			return nil, nil, nil, err
		}
		if box.Active() && c.Algorithm == CDPSI {
			return nil, nil, nil, ErrBoundsWithSwaps
		}
	}

	loss, err := NewLossModel(c.Loss)
	if err != nil {
		return nil, nil, nil, err
	}
	pr := &problem{
		x: x, y: yy, n: n, p: p,
		levels:       levels,
		loss:         loss,
		penalty:      c.Penalty,
		algo:         c.Algorithm,
		box:          box,
		intercept:    c.Intercept,
		excludeK:     c.ExcludeFirstK,
		maxIters:     c.MaxIters,
		maxSwaps:     c.MaxSwaps,
		maxSupp:      c.MaxSuppSize,
		rtol:         c.RTol,
		atol:         c.ATol,
		activeSet:    c.ActiveSet,
		activeSetNum: c.ActiveSetNum,
		screenSize:   c.ScreenSize,
		partialSort:  c.PartialSort,
	}
	if bound, ok := loss.CurvatureBound(); ok {
		pr.curv = make([]float64, p)
		for i := range pr.curv {
			pr.curv[i] = bound * x.ColSqNorm(i)
		}
	}
	return pr, &c, diagnostics, nil
}

// normalizeResponse copies y; for classification losses it maps the two distinct
// values to -1 (smaller) and +1 (larger) and returns them.
func normalizeResponse(y []float64, loss Loss) ([]float64, []float64, error) {
	for i, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, nil, fmt.Errorf("%w: y[%d]", ErrNaNInf, i)
		}
	}
	out := slices.Clone(y)
	if !loss.Classification() {
		return out, nil, nil
	}
	sorted := slices.Clone(y)
	slices.Sort(sorted)
	levels := slices.Compact(sorted)
	if len(levels) != 2 {
		return nil, nil, fmt.Errorf("%w: found %d distinct values", ErrNonBinaryResponse, len(levels))
	}
	for i, v := range out {
		if v == levels[0] {
			out[i] = -1
		} else {
			out[i] = 1
		}
	}
	return out, levels, nil
}

// gammas builds the γ sequence. For L0L1 with a non-positive GammaMax the largest
// value is the smallest L1 weight that zeroes every coordinate at the intercept-only
// fit.
func (pr *problem) gammas(c *Config) []float64 {
	switch pr.penalty {
	case L0:
		return []float64{0}
	case L0L1:
		gmax := c.GammaMax
		if gmax <= 0 {
			s := newSolver(pr, 0)
			s.fitInterceptOnly()
			gmax = s.gradientMax()
		}
		return GammaGrid(gmax, c.GammaMin, c.NGamma, c.GammaScale)
	}
	return GammaGrid(c.GammaMax, c.GammaMin, c.NGamma, c.GammaScale)
}

// runSlice traverses the λ path of one γ with warm starts. It stops once a solution's
// support exceeds maxSupp; that point is dropped unless it is the first one.
func (pr *problem) runSlice(gamma float64, user []float64, nLambda int, factor float64, log *zap.Logger) (Slice, []string, error) {
	s := newSolver(pr, gamma)
	s.fitInterceptOnly()
	start := s.snapshot()

	lambdas := user
	if lambdas == nil {
		lambdas = LambdaGrid(s.lambdaMax(), factor, nLambda)
	}

	sl := Slice{Gamma: gamma, Points: make([]GridPoint, 0, len(lambdas))}
	var notes []string
	for k, lambda := range lambdas {
		s.load(start)
		s.pen.Lambda = lambda
		s.sweeps = 0
		status := s.solve(s.initialOrder())

		swaps := 0
		if pr.algo == CDPSI {
			res := s.localSearch()
			swaps = res.accepted
			status = s.status
		}

		obj := s.objective()
		if math.IsNaN(obj) || math.IsInf(obj, 0) {
			return sl, notes, fmt.Errorf("%w: objective at lambda=%g", ErrNaNInf, lambda)
		}
		if !pr.box.Contains(s.beta) {
			return sl, notes, fmt.Errorf("%w: solution leaves the box at lambda=%g", ErrBadBounds, lambda)
		}
		gp := GridPoint{
			Lambda:    lambda,
			Gamma:     gamma,
			Intercept: s.intercept,
			Beta:      newSparseVector(s.beta),
			Converged: status == Converged,
			Status:    status,
			Objective: obj,
			SuppSize:  countActive(s.beta),
			Sweeps:    s.sweeps,
			Swaps:     swaps,
		}
		log.Debug("grid point",
			zap.Float64("lambda", lambda),
			zap.Float64("gamma", gamma),
			zap.Int("support", gp.SuppSize),
			zap.Float64("objective", obj),
			zap.Stringer("status", status),
			zap.Int("sweeps", gp.Sweeps),
			zap.Int("swaps", swaps))

		if gp.SuppSize > pr.maxSupp {
			sl.Truncated = true
			if k == 0 {
				sl.Points = append(sl.Points, gp)
				note := fmt.Sprintf("gamma=%g: first point (lambda=%g) has support %d > max_supp_size %d; kept as the only point",
					gamma, lambda, gp.SuppSize, pr.maxSupp)
				notes = append(notes, note)
				log.Warn("support overflow on first grid point",
					zap.Float64("lambda", lambda),
					zap.Int("support", gp.SuppSize),
					zap.Int("max_supp_size", pr.maxSupp))
			}
			break
		}
		sl.Points = append(sl.Points, gp)
		start = s.snapshot()
	}
	return sl, notes, nil
}
