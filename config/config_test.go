package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chTempDir moves the working directory somewhere without a config.yaml
// so tests exercise defaults and env vars only
func chTempDir(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestLoadDefaults(t *testing.T) {
	chTempDir(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Environment)
	assert.Equal(t, "https://api.nal.usda.gov/fdc", cfg.FDC.BaseURL)
	assert.Empty(t, cfg.FDC.APIKey) // provider optional by default
	assert.Equal(t, "https://world.openfoodfacts.org", cfg.OFF.BaseURL)
	assert.True(t, cfg.OFF.Enabled)
	assert.Equal(t, "data/cnf", cfg.CNF.Dir)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, 100, cfg.RateLimit.PerIP)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFromEnvironment(t *testing.T) {
	chTempDir(t)

	t.Setenv("NUTRISCOPE_SERVER_PORT", "9090")
	t.Setenv("NUTRISCOPE_FDC_API_KEY", "env-key")
	t.Setenv("NUTRISCOPE_CNF_DIR", "/srv/cnf")
	t.Setenv("NUTRISCOPE_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "env-key", cfg.FDC.APIKey)
	assert.Equal(t, "/srv/cnf", cfg.CNF.Dir)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadFromConfigFile(t *testing.T) {
	chTempDir(t)

	yaml := []byte(`
server:
  port: "3001"
  environment: production
fdc:
  api_key: file-key
cache:
  ttl: 1h
ratelimit:
  per_ip: 5
`)
	require.NoError(t, os.WriteFile("config.yaml", yaml, 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3001", cfg.Server.Port)
	assert.Equal(t, "production", cfg.Server.Environment)
	assert.Equal(t, "file-key", cfg.FDC.APIKey)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, 5, cfg.RateLimit.PerIP)
	// Untouched keys keep defaults
	assert.Equal(t, "data/cnf", cfg.CNF.Dir)
}

func TestValidate(t *testing.T) {
	t.Run("rejects empty CNF dir", func(t *testing.T) {
		cfg := &Config{CNF: CNFConfig{Dir: ""}, RateLimit: RateLimitConfig{PerIP: 10}}
		assert.Error(t, validate(cfg))
	})

	t.Run("rejects non-positive rate limit", func(t *testing.T) {
		cfg := &Config{CNF: CNFConfig{Dir: "data/cnf"}, RateLimit: RateLimitConfig{PerIP: 0}}
		assert.Error(t, validate(cfg))
	})

	t.Run("rejects negative cache TTL", func(t *testing.T) {
		cfg := &Config{
			CNF:       CNFConfig{Dir: "data/cnf"},
			RateLimit: RateLimitConfig{PerIP: 10},
			Cache:     CacheConfig{TTL: -time.Minute},
		}
		assert.Error(t, validate(cfg))
	})

	t.Run("accepts a minimal valid config", func(t *testing.T) {
		cfg := &Config{CNF: CNFConfig{Dir: "data/cnf"}, RateLimit: RateLimitConfig{PerIP: 10}}
		assert.NoError(t, validate(cfg))
	})
}
