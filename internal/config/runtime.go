package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"path/filepath"
	"strconv"
	"time"
)

type LaunchMode string

const (
	// LaunchSupervised runs the process manager: N workers sharing one
	// listener, restarted on failure.
	LaunchSupervised LaunchMode = "supervised"
	// LaunchDirect serves in-process with no fan-out.
	LaunchDirect LaunchMode = "direct"
)

type RuntimeConfig struct {
	AppName           string
	Host              string
	Port              int
	Workers           int
	WorkerTimeout     time.Duration
	LogLevel          string
	DataDir           string
	DatabaseURL       string
	LaunchMode        LaunchMode
	RunUnprivileged   bool
	RunAsUser         string
	MigrateOnStart    bool
	StartupTimeout    time.Duration
	ShutdownTimeout   time.Duration
	RestartBackoff    time.Duration
	MaxRestartBackoff time.Duration
	CommonConfig

	// envErr carries parse failures that have no recognizable zero value,
	// surfaced by Validate.
	envErr error
}

func NewRuntimeConfig() RuntimeConfig {
	appName := getEnv("APP_NAME", "resell-trap")
	dataDir := getEnv("DATA_DIR", "/data")

	runUnprivileged, unprivilegedErr := getEnvAsBool("RUN_UNPRIVILEGED", true)
	migrateOnStart, migrateErr := getEnvAsBool("MIGRATE_ON_START", true)

	return RuntimeConfig{
		AppName:           appName,
		Host:              getEnv("HOST", "0.0.0.0"),
		Port:              getEnvAsInt("PORT", 8000),
		Workers:           getEnvAsInt("WORKERS", 1),
		WorkerTimeout:     getEnvAsDuration("WORKER_TIMEOUT", 120*time.Second),
		LogLevel:          getEnv("LOG_LEVEL", "INFO"),
		DataDir:           dataDir,
		DatabaseURL:       getEnv("DATABASE_URL", defaultDatabaseURL(dataDir, appName)),
		LaunchMode:        LaunchMode(getEnv("LAUNCH_MODE", string(LaunchSupervised))),
		RunUnprivileged:   runUnprivileged,
		RunAsUser:         getEnv("RUN_AS_USER", "app"),
		MigrateOnStart:    migrateOnStart,
		StartupTimeout:    getEnvAsDuration("STARTUP_TIMEOUT", 30*time.Second),
		ShutdownTimeout:   getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		RestartBackoff:    getEnvAsDuration("RESTART_BACKOFF", 1*time.Second),
		MaxRestartBackoff: getEnvAsDuration("MAX_RESTART_BACKOFF", 30*time.Second),
		CommonConfig:      NewCommonConfig(),
		envErr:            errors.Join(unprivilegedErr, migrateErr),
	}
}

// Four slashes total: the sqlite URL convention marks the path absolute.
func defaultDatabaseURL(dataDir, appName string) string {
	return "sqlite:///" + filepath.Join("/", dataDir, appName+".db")
}

func (c RuntimeConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Validate enforces the startup invariant: every setting must hold a
// concrete, usable value before the server process launches.
func (c RuntimeConfig) Validate() error {
	if c.envErr != nil {
		return c.envErr
	}
	if c.AppName == "" {
		return fmt.Errorf("APP_NAME must not be empty")
	}
	if c.Host == "" {
		return fmt.Errorf("HOST must not be empty")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.Workers < 1 {
		return fmt.Errorf("WORKERS must be at least 1, got %d", c.Workers)
	}
	if c.WorkerTimeout <= 0 {
		return fmt.Errorf("WORKER_TIMEOUT must be positive")
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	if c.DataDir == "" {
		return fmt.Errorf("DATA_DIR must not be empty")
	}
	if _, err := ParseDatabaseURL(c.DatabaseURL); err != nil {
		return fmt.Errorf("invalid DATABASE_URL: %w", err)
	}
	switch c.LaunchMode {
	case LaunchSupervised, LaunchDirect:
	default:
		return fmt.Errorf("LAUNCH_MODE must be %q or %q, got %q",
			LaunchSupervised, LaunchDirect, c.LaunchMode)
	}
	if c.RunUnprivileged && c.RunAsUser == "" {
		return fmt.Errorf("RUN_AS_USER must not be empty when RUN_UNPRIVILEGED is set")
	}
	if c.StartupTimeout <= 0 {
		return fmt.Errorf("STARTUP_TIMEOUT must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	if c.RestartBackoff <= 0 || c.MaxRestartBackoff < c.RestartBackoff {
		return fmt.Errorf("restart backoff window is invalid")
	}
	return nil
}

func ParseLogLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return 0, fmt.Errorf("unknown LOG_LEVEL %q", level)
	}
	return l, nil
}
