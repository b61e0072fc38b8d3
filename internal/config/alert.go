package config

type AlertConfig struct {
	FailureThreshold int
	CommonConfig
}

func NewAlertConfig() AlertConfig {
	return AlertConfig{
		FailureThreshold: getEnvAsInt("NUMBER_OF_FAILED_CHECKS", 3),
		CommonConfig:     NewCommonConfig(),
	}
}
