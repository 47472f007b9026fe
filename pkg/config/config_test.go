package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
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
hubeau:
  departments: ["01", "2A"]
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "monthly", cfg.Drought.Frequency)
	assert.Equal(t, 3, cfg.Drought.Scale)
	assert.Equal(t, 15, cfg.Drought.MinHistoryYears)
	assert.Equal(t, 2.0, cfg.Drought.OutlierFactor)
	assert.Equal(t, 5, cfg.Trend.YearsNotInTrend)
	assert.Equal(t, 3, cfg.Trend.MinTrendLengthYear)
	assert.Equal(t, "https://hubeau.eaufrance.fr/api/v1", cfg.Hubeau.BaseURL)
	assert.Equal(t, "1970-01-01", cfg.Ingest.StartDate)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Hubeau.Timeout)
	assert.Equal(t, time.Hour, cfg.Drought.ResultTTL)
}

func TestLoadRejectsMissingEnvironment(t *testing.T) {
	path := writeConfig(t, `
hubeau:
  departments: ["01"]
`)
	_, err := Load(path)
	assert.ErrorContains(t, err, "environment is required")
}

func TestLoadRejectsUnknownFrequency(t *testing.T) {
	path := writeConfig(t, `
environment: test
drought:
  frequency: hourly
hubeau:
  departments: ["01"]
`)
	_, err := Load(path)
	assert.ErrorContains(t, err, "drought.frequency")
}

func TestLoadWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
environment: test
hubeau:
  departments: ["01"]
`)
	t.Setenv("EMI_API_KEY", "secret-token")
	t.Setenv("DEPARTMENTS", "34,30")

	cfg, err := LoadWithEnv(path)
	require.NoError(t, err)
	assert.Equal(t, "secret-token", cfg.EMI.APIKey)
	assert.Equal(t, []string{"34", "30"}, cfg.Hubeau.Departments)
}
