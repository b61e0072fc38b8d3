package config

type RabbitMQConfig struct {
	User string
	Pass string
	Host string
	Port string
}

// NewRabbitMQConfig reads the broker location. An empty host means the
// broker integration is disabled and the runtime degrades to local-only
// event recording.
func NewRabbitMQConfig() RabbitMQConfig {
	return RabbitMQConfig{
		User: getEnv("RABBITMQ_DEFAULT_USER", "guest"),
		Pass: getEnvFromFile("RABBITMQ_DEFAULT_PASS_FILE", "guest"),
		Host: getEnv("RABBITMQ_NODE_IP_ADDRESS", ""),
		Port: getEnv("RABBITMQ_NODE_PORT", "5672"),
	}
}

func (c RabbitMQConfig) Enabled() bool {
	return c.Host != ""
}
