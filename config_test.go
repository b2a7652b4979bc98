package fastsparse

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := NewDefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, SquaredError, cfg.Loss)
	assert.Equal(t, L0, cfg.Penalty)
	assert.Equal(t, CD, cfg.Algorithm)
	assert.True(t, cfg.Intercept)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"zero max support", func(c *Config) { c.MaxSuppSize = 0 }, ErrInvalidConfig},
		{"zero n_lambda", func(c *Config) { c.NLambda = 0 }, ErrInvalidConfig},
		{"zero n_gamma", func(c *Config) { c.NGamma = 0 }, ErrInvalidConfig},
		{"zero max_iters", func(c *Config) { c.MaxIters = 0 }, ErrInvalidConfig},
		{"scale down factor of one", func(c *Config) { c.ScaleDownFactor = 1 }, ErrInvalidConfig},
		{"zero rtol", func(c *Config) { c.RTol = 0 }, ErrTolerance},
		{"NaN atol", func(c *Config) { c.ATol = math.NaN() }, ErrTolerance},
		{"zero swaps", func(c *Config) {
			c.Algorithm = CDPSI
			c.MaxSwaps = 0
		}, ErrInvalidConfig},
		{"L0L2 without gamma_max", func(c *Config) {
			c.Penalty = L0L2
			c.GammaMax = 0
		}, ErrInvalidConfig},
		{"gamma_min above one", func(c *Config) {
			c.Penalty = L0L1
			c.GammaMin = 2
		}, ErrInvalidConfig},
		{"NaN bound", func(c *Config) {
			c.WithBounds = true
			c.Highs = []float64{math.NaN()}
		}, ErrBadBounds},
		{"empty user grid", func(c *Config) { c.UseUserLambda = true }, ErrLambdaGrid},
		{"empty user list", func(c *Config) {
			c.UseUserLambda = true
			c.LambdaGrid = [][]float64{{}}
		}, ErrLambdaGrid},
		{"infinite user lambda", func(c *Config) {
			c.UseUserLambda = true
			c.LambdaGrid = [][]float64{{math.Inf(1)}}
		}, ErrLambdaGrid},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tc.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), tc.wantErr)
		})
	}

	// infinite bounds are not bounds, so swaps stay allowed
	cfg := NewDefaultConfig()
	cfg.Algorithm = CDPSI
	cfg.WithBounds = true
	cfg.Lows = []float64{math.Inf(-1)}
	assert.NoError(t, cfg.Validate())

	// user grids replace n_lambda and may repeat values
	cfg = NewDefaultConfig()
	cfg.NLambda = 0
	cfg.UseUserLambda = true
	cfg.LambdaGrid = [][]float64{{3, 3, 0}}
	assert.NoError(t, cfg.Validate())

	var nilCfg *Config
	assert.ErrorIs(t, nilCfg.Validate(), ErrInvalidConfig)
}

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
loss: logistic
penalty: L0L1
algorithm: CDPSI
n_lambda: 20
gamma_scale: linear
lambda_grid:
  - [1, 0.5]
exclude_first_k: 2
intercept: false
`))
	require.NoError(t, err)
	assert.Equal(t, Logistic, cfg.Loss)
	assert.Equal(t, L0L1, cfg.Penalty)
	assert.Equal(t, CDPSI, cfg.Algorithm)
	assert.Equal(t, 20, cfg.NLambda)
	assert.Equal(t, Linear, cfg.GammaScale)
	assert.Equal(t, [][]float64{{1, 0.5}}, cfg.LambdaGrid)
	assert.Equal(t, 2, cfg.ExcludeFirstK)
	assert.False(t, cfg.Intercept)
	// untouched keys keep their defaults
	assert.Equal(t, 100, cfg.MaxSuppSize)
	assert.Equal(t, 0.8, cfg.ScaleDownFactor)

	empty, err := ParseConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, NewDefaultConfig(), empty)

	_, err = ParseConfig([]byte("loss: Huber\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = ParseConfig([]byte("lambda: 0.1\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = ParseConfig([]byte("gamma_scale: cubic\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestConfigRoundTrip(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Loss = SquaredHinge
	cfg.Penalty = L0L2
	cfg.GammaScale = Linear

	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(data), "loss: SquaredHinge")
	assert.NotContains(t, string(data), "logger")

	path := filepath.Join(t.TempDir(), "fit.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
