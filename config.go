package fastsparse

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// GammaScale selects how an automatic gamma grid is spaced.
type GammaScale int

const (
	// Geometric spaces gamma values evenly on a log scale.
	Geometric GammaScale = iota
	// Linear spaces gamma values evenly.
	Linear
)

func (s GammaScale) String() string {
	switch s {
	case Geometric:
		return "Geometric"
	case Linear:
		return "Linear"
	}
	return fmt.Sprintf("GammaScale(%d)", int(s))
}

// Config holds every fitting parameter.
type Config struct {
	Loss      Loss      `yaml:"loss"`
	Penalty   Penalty   `yaml:"penalty"`
	Algorithm Algorithm `yaml:"algorithm"`

	MaxSuppSize int `yaml:"max_supp_size"` // Truncate a gamma slice once the support exceeds this
	NLambda     int `yaml:"n_lambda"`      // Number of automatic lambda values per gamma
	NGamma      int `yaml:"n_gamma"`       // Number of gamma values (L0L1, L0L2)

	GammaMax   float64    `yaml:"gamma_max"`   // Largest gamma; for L0L1 a value <= 0 selects it automatically
	GammaMin   float64    `yaml:"gamma_min"`   // Smallest gamma as a fraction of GammaMax
	GammaScale GammaScale `yaml:"gamma_scale"` // Spacing of the automatic gamma grid

	PartialSort  bool    `yaml:"partial_sort"`   // Order screened coordinates with a partial sort
	MaxIters     int     `yaml:"max_iters"`      // Maximum CD sweeps per grid point
	RTol         float64 `yaml:"rtol"`           // Relative objective change for convergence
	ATol         float64 `yaml:"atol"`           // Residual norm for convergence
	ActiveSet    bool    `yaml:"active_set"`     // Restrict cycling to a stable support
	ActiveSetNum int     `yaml:"active_set_num"` // Identical sweeps before the support counts as stable
	MaxSwaps     int     `yaml:"max_swaps"`      // Swap proposals per grid point under CDPSI

	ScaleDownFactor float64 `yaml:"scale_down_factor"` // Ratio between consecutive automatic lambdas
	ScreenSize      int     `yaml:"screen_size"`       // Coordinates kept by the correlation screen

	UseUserLambda bool        `yaml:"use_user_lambda"`
	LambdaGrid    [][]float64 `yaml:"lambda_grid,omitempty"` // One non-increasing list per gamma

	ExcludeFirstK int  `yaml:"exclude_first_k"` // Coordinates exempt from the L0 term
	Intercept     bool `yaml:"intercept"`

	WithBounds bool      `yaml:"with_bounds"`
	Lows       []float64 `yaml:"lows,omitempty"`  // One value or one per coordinate
	Highs      []float64 `yaml:"highs,omitempty"` // One value or one per coordinate

	NJobs  int         `yaml:"n_jobs"` // Number of gamma slices solved in parallel
	Logger *zap.Logger `yaml:"-"`
}

// NewDefaultConfig returns recommended default parameters.
func NewDefaultConfig() *Config {
	return &Config{
		Loss:            SquaredError,
		Penalty:         L0,
		Algorithm:       CD,
		MaxSuppSize:     100,
		NLambda:         100,
		NGamma:          10,
		GammaMax:        10,
		GammaMin:        1e-4,
		GammaScale:      Geometric,
		PartialSort:     true,
		MaxIters:        200,
		RTol:            1e-6,
		ATol:            1e-9,
		ActiveSet:       true,
		ActiveSetNum:    3,
		MaxSwaps:        100,
		ScaleDownFactor: 0.8,
		ScreenSize:      1000,
		Intercept:       true,
		NJobs:           1,
	}
}

// Validate checks every parameter that does not depend on the data.
func (c *Config) Validate() error {
	var err error
	switch {
	case c == nil:
		return fmt.Errorf("%w: nil config", ErrInvalidConfig)
	case !c.Loss.valid():
		err = fmt.Errorf("%w: %v", ErrUnsupportedLoss, c.Loss)
	case !c.Penalty.valid():
		err = fmt.Errorf("%w: %v", ErrUnsupportedPenalty, c.Penalty)
	case !c.Algorithm.valid():
		err = fmt.Errorf("%w: %v", ErrUnsupportedAlgorithm, c.Algorithm)
	case !(c.RTol > 0 && c.RTol < 1):
		err = fmt.Errorf("%w: rtol=%g must be in (0,1)", ErrTolerance, c.RTol)
	case !(c.ATol >= 0):
		err = fmt.Errorf("%w: atol=%g must be >= 0", ErrTolerance, c.ATol)
	case c.MaxSuppSize < 1:
		err = fmt.Errorf("%w: max_supp_size must be >= 1", ErrInvalidConfig)
	case !c.UseUserLambda && c.NLambda < 1:
		err = fmt.Errorf("%w: n_lambda must be >= 1", ErrInvalidConfig)
	case c.NGamma < 1:
		err = fmt.Errorf("%w: n_gamma must be >= 1", ErrInvalidConfig)
	case c.MaxIters < 1:
		err = fmt.Errorf("%w: max_iters must be >= 1", ErrInvalidConfig)
	case c.ActiveSetNum < 1:
		err = fmt.Errorf("%w: active_set_num must be >= 1", ErrInvalidConfig)
	case c.Algorithm == CDPSI && c.MaxSwaps < 1:
		err = fmt.Errorf("%w: max_swaps must be >= 1", ErrInvalidConfig)
	case !(c.ScaleDownFactor > 0 && c.ScaleDownFactor < 1):
		err = fmt.Errorf("%w: scale_down_factor=%g must be in (0,1)", ErrInvalidConfig, c.ScaleDownFactor)
	case c.ScreenSize < 1:
		err = fmt.Errorf("%w: screen_size must be >= 1", ErrInvalidConfig)
	case c.ExcludeFirstK < 0:
		err = fmt.Errorf("%w: exclude_first_k must be >= 0", ErrInvalidConfig)
	case c.GammaScale != Geometric && c.GammaScale != Linear:
		err = fmt.Errorf("%w: gamma_scale %v", ErrInvalidConfig, c.GammaScale)
	case c.Penalty == L0L2 && !(c.GammaMax > 0):
		err = fmt.Errorf("%w: gamma_max must be > 0 for L0L2", ErrInvalidConfig)
	case c.Penalty != L0 && !(c.GammaMin > 0 && c.GammaMin <= 1):
		err = fmt.Errorf("%w: gamma_min=%g must be in (0,1]", ErrInvalidConfig, c.GammaMin)
	case math.IsNaN(c.GammaMax) || math.IsInf(c.GammaMax, 0):
		err = fmt.Errorf("%w: gamma_max=%g", ErrInvalidConfig, c.GammaMax)
	}
	if err != nil {
		return err
	}

	if c.WithBounds {
		for _, v := range append(append([]float64(nil), c.Lows...), c.Highs...) {
			if math.IsNaN(v) {
				return fmt.Errorf("%w: NaN bound", ErrBadBounds)
			}
			if c.Algorithm == CDPSI && !math.IsInf(v, 0) {
				return ErrBoundsWithSwaps
			}
		}
	}

	if c.UseUserLambda {
		return validateLambdaValues(c.LambdaGrid)
	}
	return nil
}

// validateLambdaValues checks that every list is non-empty, non-negative, finite and
// non-increasing. Ties are allowed.
func validateLambdaValues(grid [][]float64) error {
	if len(grid) == 0 {
		return fmt.Errorf("%w: empty grid", ErrLambdaGrid)
	}
	for g, lambdas := range grid {
		if len(lambdas) == 0 {
			return fmt.Errorf("%w: list %d is empty", ErrLambdaGrid, g)
		}
		for k, v := range lambdas {
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				return fmt.Errorf("%w: lambda[%d][%d]=%g", ErrLambdaGrid, g, k, v)
			}
			if k > 0 && v > lambdas[k-1] {
				return fmt.Errorf("%w: list %d increases at %d (%g > %g)", ErrLambdaGrid, g, k, v, lambdas[k-1])
			}
		}
	}
	return nil
}

// LoadConfig reads a YAML file on top of the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML on top of the defaults. Unknown keys are rejected.
func ParseConfig(data []byte) (*Config, error) {
	cfg := NewDefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return cfg, nil
}

func (l *Loss) UnmarshalYAML(n *yaml.Node) error {
	v, err := ParseLoss(n.Value)
	if err != nil {
		return err
	}
	*l = v
	return nil
}

func (l Loss) MarshalYAML() (any, error) { return l.String(), nil }

func (p *Penalty) UnmarshalYAML(n *yaml.Node) error {
	v, err := ParsePenalty(n.Value)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

func (p Penalty) MarshalYAML() (any, error) { return p.String(), nil }

func (a *Algorithm) UnmarshalYAML(n *yaml.Node) error {
	v, err := ParseAlgorithm(n.Value)
	if err != nil {
		return err
	}
	*a = v
	return nil
}

func (a Algorithm) MarshalYAML() (any, error) { return a.String(), nil }

func (s *GammaScale) UnmarshalYAML(n *yaml.Node) error {
	switch {
	case strings.EqualFold(n.Value, "geometric"):
		*s = Geometric
	case strings.EqualFold(n.Value, "linear"):
		*s = Linear
	default:
		return fmt.Errorf("%w: gamma_scale %q", ErrInvalidConfig, n.Value)
	}
	return nil
}

func (s GammaScale) MarshalYAML() (any, error) { return s.String(), nil }
