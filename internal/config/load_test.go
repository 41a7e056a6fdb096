package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://books-management-system-bcr5.onrender.com/api", cfg.API.BaseURL)
	assert.Equal(t, time.Duration(0), cfg.API.Timeout)
	assert.Equal(t, 10*time.Second, cfg.Catalog.RefreshInterval)
	assert.Equal(t, "100", cfg.Payment.Amount)
	assert.Equal(t, "Test payment", cfg.Payment.TestMarker)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://localhost:5000/api")
	t.Setenv("CATALOG_REFRESH_INTERVAL", "3s")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000/api", cfg.API.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Catalog.RefreshInterval)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_DotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PAYMENT_SUCCESS_PAGE_URL=https://shop.test/download-success.html\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("PAYMENT_SUCCESS_PAGE_URL") })

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://shop.test/download-success.html", cfg.Payment.SuccessPageURL)
}

func TestLoad_NamedFileMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
}

func TestLoad_NamedFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.env")
	require.NoError(t, os.WriteFile(path, []byte("BAD-KEY=value\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}
