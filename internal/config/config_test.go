package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithMemoryDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.HTTP.Port)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ReadHeaderTimeout)
	assert.Equal(t, []string{"*"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, 15*time.Second, cfg.Store.QueryTimeout)
	assert.Equal(t, []string{"revenue", "cm1", "cm2", "cm3"}, cfg.Reports.PNLFields)
	assert.Equal(t, slog.LevelInfo, cfg.Logger.SlogLevel())
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[http]
port = "9000"

[logger]
level = "debug"

[store]
driver = "mongo"
uri = "mongodb://file-host:27017"
allowed_tenants = ["acme"]
query_timeout = "3s"
`), 0o600))

	t.Setenv("MONGODB_URI", "mongodb://env-host:27017")
	t.Setenv("ALLOWED_TENANTS", "acme, globex")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.HTTP.Port)
	assert.Equal(t, slog.LevelDebug, cfg.Logger.SlogLevel())
	assert.Equal(t, "mongodb://env-host:27017", cfg.Store.URI)
	assert.Equal(t, []string{"acme", "globex"}, cfg.Store.AllowedTenants)
	assert.Equal(t, 3*time.Second, cfg.Store.QueryTimeout)
}

func TestLoadFailsOnMissingExplicitFile(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{HTTP: HTTPConfig{Port: "8080"}, Store: StoreConfig{Driver: DriverMongo}}
	assert.Error(t, cfg.Validate())

	cfg.Store.URI = "mongodb://localhost"
	assert.NoError(t, cfg.Validate())

	cfg.Store.Driver = "postgres"
	assert.Error(t, cfg.Validate())
}

func TestSlogLevelFallsBackToInfo(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, LoggerConfig{Level: "loud"}.SlogLevel())
	assert.Equal(t, slog.LevelWarn, LoggerConfig{Level: "warn"}.SlogLevel())
}
