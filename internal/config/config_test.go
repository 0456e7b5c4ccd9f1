package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ARMORY_BACKEND_URL", "https://api.example.com/")

	cfg, err := Load("", "")
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Addr)
	require.Equal(t, "armory.sqlite3", cfg.DB)
	require.Equal(t, "https://api.example.com", cfg.Backend.URL)
	require.Equal(t, 15*time.Second, cfg.Backend.Timeout)
	require.Equal(t, 30, cfg.Rules.GraceDays)
	require.Equal(t, 3, cfg.Rules.DefaultAfterMissed)
	require.Equal(t, "10", cfg.Rules.CancellationFeePercent.String())
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, "armory.yaml", `
addr: ":9090"
site_url: https://armory.example.com/
backend:
  url: https://api.example.com
  timeout: 5s
auth:
  url: https://auth.example.com/auth/v1
  api_key: anon
rules:
  grace_days: 14
  cancellation_fee_percent: "12.5"
`)

	cfg, err := Load(path, "")
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.Addr)
	require.Equal(t, "https://armory.example.com", cfg.SiteURL)
	require.Equal(t, 5*time.Second, cfg.Backend.Timeout)
	require.Equal(t, "anon", cfg.Auth.APIKey)
	require.Equal(t, 14, cfg.Rules.GraceDays)
	require.Equal(t, "12.5", cfg.Rules.CancellationFeePercent.String())
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "armory.yaml", "backend:\n  url: https://file.example.com\n")
	t.Setenv("ARMORY_BACKEND_URL", "https://env.example.com")
	t.Setenv("ARMORY_RULES_GRACE_DAYS", "7")

	cfg, err := Load(path, "")
	require.NoError(t, err)
	require.Equal(t, "https://env.example.com", cfg.Backend.URL)
	require.Equal(t, 7, cfg.Rules.GraceDays)
}

func TestDotEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	// Register for cleanup; godotenv only sets variables that are unset.
	t.Setenv("ARMORY_BACKEND_URL", "")
	os.Unsetenv("ARMORY_BACKEND_URL")
	env := writeFile(t, ".env", "ARMORY_BACKEND_URL=https://dotenv.example.com\n")

	cfg, err := Load("", env)
	require.NoError(t, err)
	require.Equal(t, "https://dotenv.example.com", cfg.Backend.URL)
}

func TestMissingDotEnvIgnored(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ARMORY_BACKEND_URL", "https://api.example.com")

	_, err := Load("", filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"no backend", map[string]string{}},
		{"bad backend scheme", map[string]string{"ARMORY_BACKEND_URL": "ftp://api.example.com"}},
		{"bad timeout", map[string]string{"ARMORY_BACKEND_URL": "https://api.example.com", "ARMORY_BACKEND_TIMEOUT": "0s"}},
		{"bad fee", map[string]string{"ARMORY_BACKEND_URL": "https://api.example.com", "ARMORY_RULES_CANCELLATION_FEE_PERCENT": "150"}},
		{"fee not number", map[string]string{"ARMORY_BACKEND_URL": "https://api.example.com", "ARMORY_RULES_CANCELLATION_FEE_PERCENT": "ten"}},
		{"no missed months", map[string]string{"ARMORY_BACKEND_URL": "https://api.example.com", "ARMORY_RULES_MISSED_MONTHS_DEFAULT": "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv("ARMORY_BACKEND_URL", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("", "")
			require.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), "")
	require.Error(t, err)
}
