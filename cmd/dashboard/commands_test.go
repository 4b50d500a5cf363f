package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jrsteele09/forecast-dashboard/internal/config"
	"github.com/jrsteele09/forecast-dashboard/internal/mockapi"
	"github.com/stretchr/testify/require"
)

func setupCLI(t *testing.T) config.Config {
	t.Helper()
	t.Setenv("ENV", "TEST")
	t.Setenv("MOCK_ADMIN_USER", "admin")
	t.Setenv("MOCK_ADMIN_PASSWORD", "s3cret")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("STORAGE_DRIVER", config.StorageFile)
	t.Setenv("STORAGE_PATH", filepath.Join(t.TempDir(), "session.json"))
	t.Setenv("PROFILE_MODE", "")

	api, err := mockapi.New(config.New())
	require.NoError(t, err)
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	t.Setenv("API_BASE_URL", srv.URL)
	return config.New()
}

func runCLI(t *testing.T, cfg config.Config, stdin string, args ...string) (int, string) {
	t.Helper()
	var out bytes.Buffer
	code := run(context.Background(), cfg, args, strings.NewReader(stdin), &out)
	return code, out.String()
}

func TestCLI_Workflow(t *testing.T) {
	cfg := setupCLI(t)

	code, out := runCLI(t, cfg, "", "view")
	require.Equal(t, exitNotSignedIn, code)
	require.Contains(t, out, "not signed in")

	code, out = runCLI(t, cfg, "", "login", "-u", "admin", "-p", "s3cret")
	require.Equal(t, exitOK, code, out)
	require.Contains(t, out, "signed in as admin")

	code, out = runCLI(t, cfg, "", "whoami")
	require.Equal(t, exitOK, code)
	require.Equal(t, "admin (admin)\n", out)

	csvPath := filepath.Join(t.TempDir(), "forecast.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("period,date,calls_forecast,aht_forecast,fte_required\n08:00,2025-01-02,120,310.5,14\n"), 0o600))
	code, out = runCLI(t, cfg, "", "upload", csvPath)
	require.Equal(t, exitOK, code, out)
	require.Contains(t, out, "(1 rows)")

	code, out = runCLI(t, cfg, "", "view")
	require.Equal(t, exitOK, code, out)
	require.Contains(t, out, "2025-01-02")
	require.Contains(t, out, "310.5")

	code, out = runCLI(t, cfg, "", "open", "/login")
	require.Equal(t, exitOK, code)
	require.Equal(t, "dashboard /\n", out)

	code, _ = runCLI(t, cfg, "", "logout")
	require.Equal(t, exitOK, code)

	code, out = runCLI(t, cfg, "", "whoami")
	require.Equal(t, exitNotSignedIn, code)
	require.Contains(t, out, "not signed in")
}

func TestCLI_LoginPromptsAndFails(t *testing.T) {
	cfg := setupCLI(t)

	code, out := runCLI(t, cfg, "admin\nwrong\n", "login")
	require.Equal(t, exitFailure, code)
	require.Contains(t, out, "Username: ")
	require.Contains(t, out, "login failed: Incorrect username or password")
}

func TestCLI_Usage(t *testing.T) {
	cfg := setupCLI(t)

	code, out := runCLI(t, cfg, "")
	require.Equal(t, exitUsage, code)
	require.Contains(t, out, "usage: dashboard")

	code, out = runCLI(t, cfg, "", "frobnicate")
	require.Equal(t, exitUsage, code)
	require.Contains(t, out, `unknown command "frobnicate"`)

	code, _ = runCLI(t, cfg, "", "open", "/nowhere")
	require.Equal(t, exitUsage, code)

	code, _ = runCLI(t, cfg, "", "upload")
	require.Equal(t, exitUsage, code)
}
