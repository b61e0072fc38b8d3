package config

type TelegramConfig struct {
	Token  string
	ChatId int64
}

func NewTelegramConfig() TelegramConfig {
	return TelegramConfig{
		Token:  getEnvFromFile("TELEGRAM_TOKEN_FILE", ""),
		ChatId: int64(getEnvAsInt("TELEGRAM_CHAT_ID", 0)),
	}
}

func (c TelegramConfig) Enabled() bool {
	return c.Token != "" && c.ChatId != 0
}

type WebhookConfig struct {
	URL  string
	Kind string
}

// Kind selects the payload shape: "discord" or "slack".
func NewWebhookConfig() WebhookConfig {
	return WebhookConfig{
		URL:  getEnv("WEBHOOK_URL", ""),
		Kind: getEnv("WEBHOOK_TYPE", "discord"),
	}
}

func (c WebhookConfig) Enabled() bool {
	return c.URL != ""
}
