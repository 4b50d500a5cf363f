package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/forecast-dashboard/internal/config"
	"github.com/stretchr/testify/require"
)

func TestConfigDefaults(t *testing.T) {
	for _, v := range []string{"ENV", "API_BASE_URL", "STORAGE_DRIVER", "PROFILE_MODE", "PORT", "HTTP_TIMEOUT", "ALLOWED_ORIGINS"} {
		t.Setenv(v, "")
	}
	c := config.New()

	require.Equal(t, "DEV", c.GetEnv())
	require.Equal(t, "http://127.0.0.1:8000", c.GetAPIBaseURL())
	require.Equal(t, config.StorageFile, c.GetStorageDriver())
	require.Equal(t, config.ProfileSynthesized, c.GetProfileMode())
	require.Equal(t, ":8000", c.GetPort())
	require.Equal(t, 30*time.Second, c.GetHTTPTimeout())
	require.Equal(t, 7*24*time.Hour, c.GetAccessTokenExpiry())
	require.True(t, c.GetAllowedOrigins().IsAllowedOrigin("http://localhost:5174"))
	require.False(t, c.GetAllowedOrigins().IsAllowedOrigin("*"))
}

func TestConfigOverrides(t *testing.T) {
	t.Setenv("ENV", "prod")
	t.Setenv("PORT", ":9090")
	t.Setenv("HTTP_TIMEOUT", "not-a-duration")
	t.Setenv("STORAGE_DRIVER", config.StorageSQLite)
	t.Setenv("STORAGE_PATH", "")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	c := config.New()

	require.Equal(t, "PROD", c.GetEnv())
	require.Equal(t, ":9090", c.GetPort())
	require.Equal(t, 30*time.Second, c.GetHTTPTimeout())
	require.Equal(t, "storage.db", filepath.Base(c.GetStoragePath()))
	require.Equal(t, "https://a.example, https://b.example", c.GetAllowedOrigins().String())
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("API_BASE_URL=http://api.test:8080\n"), 0o600))

	t.Setenv("API_BASE_URL", "")
	require.NoError(t, os.Unsetenv("API_BASE_URL"))

	c := config.Load(envFile)
	require.Equal(t, "http://api.test:8080", c.GetAPIBaseURL())
	os.Unsetenv("API_BASE_URL")
}
