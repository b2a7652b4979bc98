package fastsparse

import (
	"fmt"
	"math"
	"strings"
)

// Loss selects the data-fit term of the objective.
type Loss int

const (
	// SquaredError is ½(y-η)².
	SquaredError Loss = iota
	// Logistic is log(1+exp(-yη)).
	Logistic
	// SquaredHinge is max(0, 1-yη)².
	SquaredHinge
	// Exponential is exp(-yη).
	Exponential
)

var lossNames = [...]string{"SquaredError", "Logistic", "SquaredHinge", "Exponential"}

func (l Loss) String() string {
	if l < 0 || int(l) >= len(lossNames) {
		return fmt.Sprintf("Loss(%d)", int(l))
	}
	return lossNames[l]
}

// ParseLoss maps a loss name (case-insensitive) to its Loss value.
func ParseLoss(s string) (Loss, error) {
	for i, name := range lossNames {
		if strings.EqualFold(s, name) {
			return Loss(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedLoss, s)
}

// Classification reports whether the loss expects a ±1 response.
func (l Loss) Classification() bool { return l != SquaredError }

func (l Loss) valid() bool { return l >= SquaredError && l <= Exponential }

// LossModel evaluates a loss and its derivatives with respect to the linear predictor.
type LossModel interface {
	// Kind returns the loss this model evaluates.
	Kind() Loss
	// Value returns Σ_i ℓ(y_i, η_i).
	Value(y, eta []float64) float64
	// Pointwise returns ℓ(y, η) for a single observation.
	Pointwise(y, eta float64) float64
	// Deriv returns ∂ℓ/∂η for a single observation.
	Deriv(y, eta float64) float64
	// Gradient writes ∂ℓ/∂η_i into grad.
	Gradient(y, eta, grad []float64)
	// CurvatureBound returns c with ∂²ℓ/∂η² ≤ c everywhere. ok is false when no such
	// global bound exists.
	CurvatureBound() (c float64, ok bool)
	// Curvature returns ∂²ℓ/∂η² at a single observation.
	Curvature(y, eta float64) float64
}

// NewLossModel returns the model for l.
func NewLossModel(l Loss) (LossModel, error) {
	switch l {
	case SquaredError:
		return squaredError{}, nil
	case Logistic:
		return logistic{}, nil
	case SquaredHinge:
		return squaredHinge{}, nil
	case Exponential:
		return exponential{}, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnsupportedLoss, l)
}

func sumLoss(m LossModel, y, eta []float64) float64 {
	sum := 0.0
	for i := range y {
		sum += m.Pointwise(y[i], eta[i])
	}
	return sum
}

func fillGradient(m LossModel, y, eta, grad []float64) {
	for i := range y {
		grad[i] = m.Deriv(y[i], eta[i])
	}
}

type squaredError struct{}

func (squaredError) Kind() Loss { return SquaredError }

func (m squaredError) Value(y, eta []float64) float64 { return sumLoss(m, y, eta) }

func (squaredError) Pointwise(y, eta float64) float64 {
	d := y - eta
	return 0.5 * d * d
}

func (squaredError) Deriv(y, eta float64) float64 { return eta - y }

func (m squaredError) Gradient(y, eta, grad []float64) { fillGradient(m, y, eta, grad) }

func (squaredError) CurvatureBound() (float64, bool) { return 1, true }

func (squaredError) Curvature(_, _ float64) float64 { return 1 }

type logistic struct{}

func (logistic) Kind() Loss { return Logistic }

func (m logistic) Value(y, eta []float64) float64 { return sumLoss(m, y, eta) }

func (logistic) Pointwise(y, eta float64) float64 {
	margin := y * eta
	if margin > 0 {
		return math.Log1p(math.Exp(-margin))
	}
	return -margin + math.Log1p(math.Exp(margin))
}

func (logistic) Deriv(y, eta float64) float64 {
	// -y·σ(-yη)
	margin := y * eta
	if margin >= 0 {
		e := math.Exp(-margin)
		return -y * e / (1 + e)
	}
	return -y / (1 + math.Exp(margin))
}

func (m logistic) Gradient(y, eta, grad []float64) { fillGradient(m, y, eta, grad) }

func (logistic) CurvatureBound() (float64, bool) { return 0.25, true }

func (logistic) Curvature(y, eta float64) float64 {
	p := 1 / (1 + math.Exp(-y*eta))
	return p * (1 - p)
}

type squaredHinge struct{}

func (squaredHinge) Kind() Loss { return SquaredHinge }

func (m squaredHinge) Value(y, eta []float64) float64 { return sumLoss(m, y, eta) }

func (squaredHinge) Pointwise(y, eta float64) float64 {
	h := 1 - y*eta
	if h <= 0 {
		return 0
	}
	return h * h
}

func (squaredHinge) Deriv(y, eta float64) float64 {
	h := 1 - y*eta
	if h <= 0 {
		return 0
	}
	return -2 * y * h
}

func (m squaredHinge) Gradient(y, eta, grad []float64) { fillGradient(m, y, eta, grad) }

func (squaredHinge) CurvatureBound() (float64, bool) { return 2, true }

func (squaredHinge) Curvature(y, eta float64) float64 {
	if y*eta < 1 {
		return 2
	}
	return 0
}

type exponential struct{}

func (exponential) Kind() Loss { return Exponential }

func (m exponential) Value(y, eta []float64) float64 { return sumLoss(m, y, eta) }

func (exponential) Pointwise(y, eta float64) float64 { return math.Exp(-y * eta) }

func (exponential) Deriv(y, eta float64) float64 { return -y * math.Exp(-y*eta) }

func (m exponential) Gradient(y, eta, grad []float64) { fillGradient(m, y, eta, grad) }

func (exponential) CurvatureBound() (float64, bool) { return 0, false }

func (exponential) Curvature(y, eta float64) float64 { return math.Exp(-y * eta) }
