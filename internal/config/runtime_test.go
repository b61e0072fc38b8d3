package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var runtimeEnvKeys = []string{
	"APP_NAME", "HOST", "PORT", "WORKERS", "WORKER_TIMEOUT", "LOG_LEVEL",
	"DATA_DIR", "DATABASE_URL", "LAUNCH_MODE", "RUN_UNPRIVILEGED",
	"RUN_AS_USER", "MIGRATE_ON_START", "STARTUP_TIMEOUT", "SHUTDOWN_TIMEOUT",
	"RESTART_BACKOFF", "MAX_RESTART_BACKOFF", "DB_QUERY_TIMEOUT", "BROKER_TIMEOUT",
}

func clearRuntimeEnv(t *testing.T) {
	t.Helper()
	for _, key := range runtimeEnvKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestNewRuntimeConfig_Defaults(t *testing.T) {
	clearRuntimeEnv(t)

	cfg := NewRuntimeConfig()

	assert.Equal(t, "resell-trap", cfg.AppName)
	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, 120*time.Second, cfg.WorkerTimeout)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, "/data", cfg.DataDir)
	assert.Equal(t, "sqlite:////data/resell-trap.db", cfg.DatabaseURL)
	assert.Equal(t, LaunchSupervised, cfg.LaunchMode)
	assert.True(t, cfg.RunUnprivileged)
	assert.Equal(t, "app", cfg.RunAsUser)
	assert.True(t, cfg.MigrateOnStart)

	require.NoError(t, cfg.Validate())
}

func TestNewRuntimeConfig_DatabaseURLFollowsAppName(t *testing.T) {
	clearRuntimeEnv(t)
	t.Setenv("APP_NAME", "yafuama")

	cfg := NewRuntimeConfig()

	assert.Equal(t, "sqlite:////data/yafuama.db", cfg.DatabaseURL)
}

func TestNewRuntimeConfig_EnvOverrides(t *testing.T) {
	clearRuntimeEnv(t)
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("PORT", "8080")
	t.Setenv("WORKERS", "4")
	t.Setenv("WORKER_TIMEOUT", "60")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("DATABASE_URL", "postgres://user:pass@db:5432/app")
	t.Setenv("LAUNCH_MODE", "direct")
	t.Setenv("RUN_UNPRIVILEGED", "false")

	cfg := NewRuntimeConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "127.0.0.1:8080", cfg.Addr())
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 60*time.Second, cfg.WorkerTimeout)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.Equal(t, LaunchDirect, cfg.LaunchMode)
	assert.False(t, cfg.RunUnprivileged)
}

func TestRuntimeConfig_ValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"garbage port", "PORT", "not-a-port"},
		{"port out of range", "PORT", "70000"},
		{"zero workers", "WORKERS", "0"},
		{"garbage timeout", "WORKER_TIMEOUT", "soon"},
		{"unknown log level", "LOG_LEVEL", "LOUD"},
		{"unknown database scheme", "DATABASE_URL", "mysql://db/app"},
		{"unknown launch mode", "LAUNCH_MODE", "clustered"},
		{"typo'd privilege flag", "RUN_UNPRIVILEGED", "ture"},
		{"garbage migrate flag", "MIGRATE_ON_START", "yes please"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearRuntimeEnv(t)
			t.Setenv(tt.key, tt.value)

			cfg := NewRuntimeConfig()
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestRuntimeConfig_BadBooleanDoesNotFlipPrivilegeModel(t *testing.T) {
	clearRuntimeEnv(t)
	t.Setenv("RUN_UNPRIVILEGED", "ture")

	cfg := NewRuntimeConfig()

	assert.True(t, cfg.RunUnprivileged)
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RUN_UNPRIVILEGED")
}

func TestRuntimeConfig_ValidateRequiresRunAsUser(t *testing.T) {
	clearRuntimeEnv(t)
	t.Setenv("RUN_AS_USER", "")
	os.Unsetenv("RUN_AS_USER")

	cfg := NewRuntimeConfig()
	cfg.RunAsUser = ""
	assert.Error(t, cfg.Validate())

	cfg.RunUnprivileged = false
	assert.NoError(t, cfg.Validate())
}

func TestGetEnvAsDuration(t *testing.T) {
	t.Setenv("SOME_TIMEOUT", "120")
	assert.Equal(t, 120*time.Second, getEnvAsDuration("SOME_TIMEOUT", time.Second))

	t.Setenv("SOME_TIMEOUT", "2m30s")
	assert.Equal(t, 150*time.Second, getEnvAsDuration("SOME_TIMEOUT", time.Second))

	t.Setenv("SOME_TIMEOUT", "eventually")
	assert.Equal(t, time.Duration(0), getEnvAsDuration("SOME_TIMEOUT", time.Second))
}

func TestGetEnvFromFile(t *testing.T) {
	secret := t.TempDir() + "/token"
	require.NoError(t, os.WriteFile(secret, []byte("s3cret\n"), 0o600))

	t.Setenv("TOKEN_FILE", secret)
	assert.Equal(t, "s3cret", getEnvFromFile("TOKEN_FILE", ""))

	t.Setenv("TOKEN_FILE", "")
	os.Unsetenv("TOKEN_FILE")
	t.Setenv("TOKEN", "plain")
	assert.Equal(t, "plain", getEnvFromFile("TOKEN_FILE", ""))
}
