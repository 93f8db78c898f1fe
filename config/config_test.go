package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_ValidateConfig(t *testing.T) {
	t.Parallel()

	t.Run("invalid deadline", func(t *testing.T) {
		t.Parallel()

		cfg := DefaultConfig()
		cfg.Deadline = "not-a-duration"

		assert.ErrorIs(t, ValidateConfig(cfg), ErrInvalidDeadline)
	})

	t.Run("negative deadline", func(t *testing.T) {
		t.Parallel()

		cfg := DefaultConfig()
		cfg.Deadline = "-5m"

		assert.ErrorIs(t, ValidateConfig(cfg), ErrInvalidDeadline)
	})

	t.Run("invalid max wait", func(t *testing.T) {
		t.Parallel()

		cfg := DefaultConfig()
		cfg.RateLimitMaxWait = "soon"

		assert.ErrorIs(t, ValidateConfig(cfg), ErrInvalidMaxWait)
	})

	t.Run("nameless rate limit class", func(t *testing.T) {
		t.Parallel()

		cfg := DefaultConfig()
		cfg.RateLimits = []RateLimitClass{
			{Name: "", Rate: 1, Burst: 1},
		}

		assert.ErrorIs(t, ValidateConfig(cfg), ErrInvalidRateLimitClass)
	})

	t.Run("non-positive class rate", func(t *testing.T) {
		t.Parallel()

		cfg := DefaultConfig()
		cfg.RateLimits = []RateLimitClass{
			{Name: "api", Rate: 0, Burst: 1},
		}

		assert.ErrorIs(t, ValidateConfig(cfg), ErrInvalidRateLimitClass)
	})

	t.Run("duplicate class", func(t *testing.T) {
		t.Parallel()

		cfg := DefaultConfig()
		cfg.RateLimits = []RateLimitClass{
			{Name: "api", Rate: 1, Burst: 1},
			{Name: "api", Rate: 2, Burst: 1},
		}

		assert.ErrorIs(t, ValidateConfig(cfg), ErrInvalidRateLimitClass)
	})

	t.Run("provider missing kind", func(t *testing.T) {
		t.Parallel()

		cfg := DefaultConfig()
		cfg.Providers = []ProviderConfig{
			{ID: "static-1"},
		}

		assert.ErrorIs(t, ValidateConfig(cfg), ErrInvalidProviderConfig)
	})

	t.Run("duplicate provider", func(t *testing.T) {
		t.Parallel()

		cfg := DefaultConfig()
		cfg.Providers = []ProviderConfig{
			{ID: "static-1", Kind: "static"},
			{ID: "static-1", Kind: "static"},
		}

		assert.ErrorIs(t, ValidateConfig(cfg), ErrInvalidProviderConfig)
	})

	t.Run("unknown class reference", func(t *testing.T) {
		t.Parallel()

		cfg := DefaultConfig()
		cfg.Providers = []ProviderConfig{
			{ID: "api-1", Kind: "fxapi", Class: "missing"},
		}

		assert.ErrorIs(t, ValidateConfig(cfg), ErrInvalidProviderConfig)
	})

	t.Run("valid configuration", func(t *testing.T) {
		t.Parallel()

		cfg := DefaultConfig()
		cfg.RateLimits = []RateLimitClass{
			{Name: "api", Rate: 2, Burst: 4},
		}
		cfg.Providers = []ProviderConfig{
			{ID: "api-1", Kind: "fxapi", Class: "api", URL: "https://example.com"},
			{ID: "static-1", Kind: "static"},
		}

		assert.NoError(t, ValidateConfig(cfg))
	})
}

func TestConfig_ParseDeadline(t *testing.T) {
	t.Parallel()

	t.Run("empty means no deadline", func(t *testing.T) {
		t.Parallel()

		cfg := DefaultConfig()
		cfg.Deadline = ""

		d, err := cfg.ParseDeadline()
		require.NoError(t, err)

		assert.Zero(t, d)
	})

	t.Run("default deadline", func(t *testing.T) {
		t.Parallel()

		d, err := DefaultConfig().ParseDeadline()
		require.NoError(t, err)

		assert.Equal(t, 50*time.Minute, d)
	})
}

func TestConfig_Read(t *testing.T) {
	t.Parallel()

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := Read("definitely-not-here.toml")

		assert.Error(t, err)
	})

	t.Run("valid config file", func(t *testing.T) {
		t.Parallel()

		raw := `
max_concurrency = 2
deadline = "10m"

[[rate_limit]]
name = "api"
rate = 2.5
burst = 5

[[provider]]
id = "rates-eur"
kind = "fxapi"
class = "api"
weight = 10
url = "https://api.example.com/latest?base=EUR"

[[provider]]
id = "seed"
kind = "static"

[[provider.records]]
base = "EUR"
target = "USD"
rate = 1.1
`

		path := filepath.Join(t.TempDir(), "harvest.toml")
		require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

		cfg, err := Read(path)
		require.NoError(t, err)
		require.NoError(t, ValidateConfig(cfg))

		assert.Equal(t, 2, cfg.MaxConcurrency)
		assert.Equal(t, "10m", cfg.Deadline)

		// Unset fields keep their defaults
		assert.Equal(t, DefaultRateLimitMaxWait, cfg.RateLimitMaxWait)

		require.Len(t, cfg.RateLimits, 1)
		assert.Equal(t, "api", cfg.RateLimits[0].Name)
		assert.InEpsilon(t, 2.5, cfg.RateLimits[0].Rate, 0.0001)
		assert.Equal(t, 5, cfg.RateLimits[0].Burst)

		require.Len(t, cfg.Providers, 2)
		assert.Equal(t, "rates-eur", cfg.Providers[0].ID)
		assert.Equal(t, 10, cfg.Providers[0].Weight)

		require.Len(t, cfg.Providers[1].Records, 1)
		assert.Equal(t, "EUR", cfg.Providers[1].Records[0]["base"])
	})
}
