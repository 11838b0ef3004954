package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "both", cfg.Logging.Output)
	assert.Equal(t, 3, cfg.Forecast.DefaultHorizon)
	assert.Equal(t, 1, cfg.Forecast.MaxConcurrency)
	assert.True(t, cfg.Security.RateLimit.Enabled)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "default config is valid",
			mutate: func(cfg *Config) {},
		},
		{
			name:    "invalid port",
			mutate:  func(cfg *Config) { cfg.Server.Port = -1 },
			wantErr: "invalid server port",
		},
		{
			name:    "zero read timeout",
			mutate:  func(cfg *Config) { cfg.Server.ReadTimeout = 0 },
			wantErr: "read timeout must be positive",
		},
		{
			name:    "horizon too large",
			mutate:  func(cfg *Config) { cfg.Forecast.DefaultHorizon = 13 },
			wantErr: "horizon must be between 1 and 12",
		},
		{
			name:    "horizon too small",
			mutate:  func(cfg *Config) { cfg.Forecast.DefaultHorizon = 0 },
			wantErr: "horizon must be between 1 and 12",
		},
		{
			name:    "zero fit timeout",
			mutate:  func(cfg *Config) { cfg.Forecast.FitTimeout = 0 },
			wantErr: "fit timeout must be positive",
		},
		{
			name:    "zero concurrency",
			mutate:  func(cfg *Config) { cfg.Forecast.MaxConcurrency = 0 },
			wantErr: "max concurrency must be at least 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidateNormalizesLogging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "text"
	cfg.Logging.Output = "syslog"
	cfg.Logging.FilePath = ""

	require.NoError(t, cfg.validate())

	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "both", cfg.Logging.Output)
	assert.Equal(t, "logs/app.log", cfg.Logging.FilePath)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")

	content := `
server:
  port: 9090
forecast:
  default_horizon: 6
paths:
  reports_dir: out
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	cfg, err := loadFromFile(configPath)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 6, cfg.Forecast.DefaultHorizon)
	assert.Equal(t, "out", cfg.Paths.ReportsDir)
	// Untouched sections keep defaults.
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestReportPath(t *testing.T) {
	cfg := Default()
	cfg.Paths.ReportsDir = "reports"

	assert.Equal(t, filepath.Join("reports", "prognoza_suma.xlsx"), cfg.ReportPath("prognoza_suma.xlsx"))
	abs := filepath.Join(string(filepath.Separator), "tmp", "x.xlsx")
	assert.Equal(t, abs, cfg.ReportPath(abs))
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Paths.DataDir = filepath.Join(dir, "data")
	cfg.Paths.ReportsDir = filepath.Join(dir, "reports")
	cfg.Paths.LogsDir = filepath.Join(dir, "logs")

	require.NoError(t, cfg.EnsureDirectories())

	for _, d := range []string{cfg.Paths.DataDir, cfg.Paths.ReportsDir, cfg.Paths.LogsDir} {
		info, err := os.Stat(d)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}
