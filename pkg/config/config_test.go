package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
environment: test
providers:
  symbols: ["AAPL"]
`)
	c, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, 5, c.Quota.MaxRequestsPerMinute)
	require.Equal(t, 25, c.Quota.MaxRequestsPerDay)
	require.Equal(t, 120, c.ClientLimiter.Limit)
	require.Equal(t, time.Minute, c.ClientLimiter.Interval)
	require.Equal(t, 10000, c.ClientLimiter.MaxEntries)
	require.Equal(t, 2.0, c.Beginner.DefaultStopLossPercent)
	require.Equal(t, 4.0, c.Beginner.DefaultTakeProfitPercent)
	require.Equal(t, 0.5, c.Beginner.MinExpectedValue)
}

func TestLoadKeepsExplicitValues(t *testing.T) {
	path := writeConfig(t, `
environment: prod
providers:
  symbols: ["AAPL", "MSFT"]
quota:
  max_requests_per_minute: 10
  max_requests_per_day: 100
client_limiter:
  limit: 30
  interval: 30s
`)
	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 10, c.Quota.MaxRequestsPerMinute)
	require.Equal(t, 100, c.Quota.MaxRequestsPerDay)
	require.Equal(t, 30, c.ClientLimiter.Limit)
	require.Equal(t, 30*time.Second, c.ClientLimiter.Interval)
}

func TestValidateRejectsMissingEnvironment(t *testing.T) {
	path := writeConfig(t, `
providers:
  symbols: ["AAPL"]
`)
	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "environment")
}

func TestValidateRejectsInvertedQuota(t *testing.T) {
	path := writeConfig(t, `
environment: test
providers:
  symbols: ["AAPL"]
quota:
  max_requests_per_minute: 50
  max_requests_per_day: 10
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadWithEnvOverridesAPIKey(t *testing.T) {
	path := writeConfig(t, `
environment: test
providers:
  symbols: ["AAPL"]
`)
	t.Setenv("PROVIDER_API_KEY", "secret-key")
	c, err := LoadWithEnv(path)
	require.NoError(t, err)
	require.Equal(t, "secret-key", c.Providers.APIKey)
}
