package fastsparse

import "errors"

// Configuration errors. Every one of them is returned before any optimization work
// starts; callers match them with errors.Is. Context is added by wrapping with
// fmt.Errorf("%w: ...").
var (
	// ErrInvalidConfig is returned for a nil config or a parameter outside its domain
	// (non-positive counts, scale factors outside (0,1), and similar).
	ErrInvalidConfig = errors.New("fastsparse: invalid configuration")

	// ErrUnsupportedLoss is returned for a loss name or value that is not one of the
	// four supported losses.
	ErrUnsupportedLoss = errors.New("fastsparse: unsupported loss")

	// ErrUnsupportedPenalty is returned for a penalty other than L0, L0L1 or L0L2.
	ErrUnsupportedPenalty = errors.New("fastsparse: unsupported penalty")

	// ErrUnsupportedAlgorithm is returned for an algorithm other than CD or CDPSI.
	ErrUnsupportedAlgorithm = errors.New("fastsparse: unsupported algorithm")

	// ErrTolerance is returned when rtol is outside (0,1) or atol is negative.
	ErrTolerance = errors.New("fastsparse: tolerance out of range")

	// ErrBadBounds is returned for malformed box constraints.
	ErrBadBounds = errors.New("fastsparse: malformed bounds")

	// ErrBoundsWithSwaps is returned when box constraints are combined with CDPSI.
	ErrBoundsWithSwaps = errors.New("fastsparse: bounds are not supported with CDPSI")

	// ErrLambdaGrid is returned for a user lambda grid that is empty, negative or
	// increasing.
	ErrLambdaGrid = errors.New("fastsparse: invalid lambda grid")

	// ErrGammaGrid is returned when the number of user lambda lists does not match the
	// number of gamma values.
	ErrGammaGrid = errors.New("fastsparse: lambda grid count does not match gamma grid")

	// ErrDimensionMismatch is returned when X and y disagree on the number of rows, or
	// when bounds do not have 1 or p entries.
	ErrDimensionMismatch = errors.New("fastsparse: dimension mismatch")

	// ErrNonBinaryResponse is returned when a classification loss is used with a
	// response that does not take exactly two distinct values.
	ErrNonBinaryResponse = errors.New("fastsparse: classification response must take exactly two values")

	// ErrNaNInf is returned when X or y contains NaN or ±Inf.
	ErrNaNInf = errors.New("fastsparse: NaN or Inf in data")
)
