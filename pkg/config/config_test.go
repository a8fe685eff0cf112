package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.True(t, cfg.App.IsDevelopment())
	assert.Equal(t, StoragePostgres, cfg.App.StorageDriver)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.Equal(t, int32(25), cfg.DB.MaxConns)
	assert.Equal(t, 30*time.Second, cfg.DB.StatementTimeout)
	assert.Equal(t, time.Hour, cfg.Worker.Interval)
	assert.False(t, cfg.JWT.Enabled)
	assert.Equal(t, "postgres://postgres:@localhost:5432/stockledger?sslmode=disable", cfg.DB.ConnectionString())
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("STORAGE_DRIVER", "MEMORY")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("WORKER_INTERVAL", "5m")
	t.Setenv("AUTH_ENABLED", "true")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/ledger")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageMemory, cfg.App.StorageDriver)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, 5*time.Minute, cfg.Worker.Interval)
	assert.True(t, cfg.JWT.Enabled)
	assert.Equal(t, "postgres://u:p@db:5432/ledger", cfg.DB.ConnectionString())
}

func TestLoad_RejectsAuthWithoutSecret(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("AUTH_ENABLED", "true")

	_, err := Load()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestValidate(t *testing.T) {
	base := Config{
		App:    AppConfig{StorageDriver: StorageMemory},
		Worker: WorkerConfig{Interval: time.Minute},
		DB:     DBConfig{MaxConns: 5, MinConns: 1},
	}
	require.NoError(t, base.Validate())

	bad := base
	bad.App.StorageDriver = "sqlite"
	assert.Error(t, bad.Validate())

	bad = base
	bad.Worker.Interval = 0
	assert.Error(t, bad.Validate())

	bad = base
	bad.DB.MinConns = 10
	assert.Error(t, bad.Validate())
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup, like testing.T.Chdir in newer Go releases.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
