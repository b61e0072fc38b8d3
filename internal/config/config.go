// Package config resolves runtime settings from environment variables.
// Every setting has a documented default; Validate rejects anything that
// cannot be resolved to a concrete value before the server starts.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads variables from a .env file when one is present.
// Already-set environment variables always win.
func LoadDotEnv() {
	_ = godotenv.Load()
}

type CommonConfig struct {
	DbQueryTimeout time.Duration
	BrokerTimeout  time.Duration
}

func NewCommonConfig() CommonConfig {
	return CommonConfig{
		DbQueryTimeout: getEnvAsDuration("DB_QUERY_TIMEOUT", 5*time.Second),
		BrokerTimeout:  getEnvAsDuration("BROKER_TIMEOUT", 5*time.Second),
	}
}

func getEnv(key, def string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return def
}

// getEnvFromFile reads a secret from the file named by key, falling back
// to the plain environment variable without the _FILE suffix.
func getEnvFromFile(key, def string) string {
	if path, ok := os.LookupEnv(key); ok {
		content, err := os.ReadFile(path)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}
	return getEnv(strings.TrimSuffix(key, "_FILE"), def)
}

// Unparsable values resolve to the zero value so that Validate fails the
// startup instead of a bad setting silently becoming the default.
func getEnvAsInt(key string, def int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return n
}

// getEnvAsBool has no zero value that Validate could recognize as broken,
// so a parse failure is reported as an error instead.
func getEnvAsBool(key string, def bool) (bool, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return def, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return def, fmt.Errorf("%s must be a boolean, got %q", key, value)
	}
	return b, nil
}

// getEnvAsDuration accepts either a Go duration ("2m30s") or a bare
// number of seconds ("120").
func getEnvAsDuration(key string, def time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}
