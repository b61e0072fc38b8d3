package config

import "time"

type CheckerConfig struct {
	Interval     time.Duration
	ProbeTimeout time.Duration
	ProbePath    string
	CommonConfig
}

func NewCheckerConfig() CheckerConfig {
	return CheckerConfig{
		Interval:     getEnvAsDuration("HEALTH_CHECK_INTERVAL", 30*time.Second),
		ProbeTimeout: getEnvAsDuration("HEALTH_CHECK_TIMEOUT", 5*time.Second),
		ProbePath:    getEnv("HEALTH_CHECK_PATH", "/healthz"),
		CommonConfig: NewCommonConfig(),
	}
}
