package fastsparse

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Point returns the grid point at γ index gi and λ index li.
func (p *Path) Point(gi, li int) (GridPoint, error) {
	if gi < 0 || gi >= len(p.Slices) {
		return GridPoint{}, fmt.Errorf("%w: gamma index %d of %d", ErrDimensionMismatch, gi, len(p.Slices))
	}
	pts := p.Slices[gi].Points
	if li < 0 || li >= len(pts) {
		return GridPoint{}, fmt.Errorf("%w: lambda index %d of %d", ErrDimensionMismatch, li, len(pts))
	}
	return pts[li], nil
}

// Coef returns the dense coefficient vector and intercept at (gi, li).
func (p *Path) Coef(gi, li int) ([]float64, float64, error) {
	g, err := p.Point(gi, li)
	if err != nil {
		return nil, 0, err
	}
	return g.Beta.Dense(), g.Intercept, nil
}

// Predict returns predictions on the response scale at (gi, li): the linear predictor
// for squared error, the probability of the larger response level for logistic, and
// the predicted response level for the margin losses.
func (p *Path) Predict(x Design, gi, li int) ([]float64, error) {
	g, err := p.Point(gi, li)
	if err != nil {
		return nil, err
	}
	eta, err := g.Link(x)
	if err != nil {
		return nil, err
	}
	switch p.Loss {
	case Logistic:
		for i, v := range eta {
			eta[i] = 1 / (1 + math.Exp(-v))
		}
	case SquaredHinge, Exponential:
		lo, hi := -1.0, 1.0
		if len(p.Levels) == 2 {
			lo, hi = p.Levels[0], p.Levels[1]
		}
		for i, v := range eta {
			if v >= 0 {
				eta[i] = hi
			} else {
				eta[i] = lo
			}
		}
	}
	return eta, nil
}

// Link returns the linear predictor intercept + Xβ for input samples.
func (g GridPoint) Link(x Design) ([]float64, error) {
	n, p := x.Dims()
	if p != g.Beta.Dim {
		return nil, fmt.Errorf("%w: design has %d columns, coefficients have %d", ErrDimensionMismatch, p, g.Beta.Dim)
	}
	pred := make([]float64, n)
	floats.AddConst(g.Intercept, pred)
	for k, j := range g.Beta.Index {
		x.ColAxpy(j, g.Beta.Value[k], pred)
	}
	return pred, nil
}

func (g GridPoint) linkFor(x Design, y []float64) ([]float64, error) {
	pred, err := g.Link(x)
	if err != nil {
		return nil, err
	}
	if len(y) != len(pred) {
		return nil, fmt.Errorf("%w: %d targets for %d samples", ErrDimensionMismatch, len(y), len(pred))
	}
	return pred, nil
}

// Score returns the R² score of the linear predictor for given data.
func (g GridPoint) Score(x Design, y []float64) (float64, error) {
	pred, err := g.linkFor(x, y)
	if err != nil {
		return 0, err
	}
	return rSquared(y, pred), nil
}

// MSE returns the mean squared error of the linear predictor for given data.
func (g GridPoint) MSE(x Design, y []float64) (float64, error) {
	pred, err := g.linkFor(x, y)
	if err != nil {
		return 0, err
	}
	return meanSquaredError(y, pred), nil
}

// MAE returns the mean absolute error of the linear predictor for given data.
func (g GridPoint) MAE(x Design, y []float64) (float64, error) {
	pred, err := g.linkFor(x, y)
	if err != nil {
		return 0, err
	}
	return meanAbsoluteError(y, pred), nil
}

// Accuracy returns the fraction of samples whose sign of the linear predictor matches
// a ±1 label.
func (g GridPoint) Accuracy(x Design, y []float64) (float64, error) {
	pred, err := g.linkFor(x, y)
	if err != nil {
		return 0, err
	}
	hit := 0
	for i := range y {
		if (pred[i] >= 0) == (y[i] > 0) {
			hit++
		}
	}
	return float64(hit) / float64(len(y)), nil
}

// --- Evaluation Metrics ---

// meanSquaredError calculates MSE
func meanSquaredError(yTrue, yPred []float64) float64 {
	if len(yTrue) != len(yPred) {
		panic("input lengths must match")
	}
	sum := 0.0
	for i := range yTrue {
		diff := yTrue[i] - yPred[i]
		sum += diff * diff
	}
	return sum / float64(len(yTrue))
}

// rSquared calculates coefficient of determination
func rSquared(yTrue, yPred []float64) float64 {
	if len(yTrue) != len(yPred) {
		panic("input lengths must match")
	}
	mean := floats.Sum(yTrue) / float64(len(yTrue))

	tss := 0.0 // Total sum of squares
	rss := 0.0 // Residual sum of squares
	for i := range yTrue {
		tss += (yTrue[i] - mean) * (yTrue[i] - mean)
		diff := yTrue[i] - yPred[i]
		rss += diff * diff
	}

	if tss < 1e-15 {
		return 1
	}
	return 1 - rss/tss
}

// meanAbsoluteError calculates MAE
func meanAbsoluteError(yTrue, yPred []float64) float64 {
	if len(yTrue) != len(yPred) {
		panic("input lengths must match")
	}
	sum := 0.0
	for i := range yTrue {
		sum += math.Abs(yTrue[i] - yPred[i])
	}
	return sum / float64(len(yTrue))
}
