package main

import (
	"log/slog"
	"os"

	"github.com/rinodehi1978/resell-trap/internal/alert"
	"github.com/rinodehi1978/resell-trap/internal/config"
	"github.com/rinodehi1978/resell-trap/internal/lib/setup"
	"github.com/rinodehi1978/resell-trap/internal/lib/sl"
	"github.com/rinodehi1978/resell-trap/internal/logging"
	"github.com/rinodehi1978/resell-trap/internal/notifier"
	"github.com/rinodehi1978/resell-trap/internal/service"
)

// The alert binary consumes health checks from the broker and notifies
// operators about outages and recoveries. It requires a configured broker.
func main() {
	config.LoadDotEnv()

	cfg := config.NewRuntimeConfig()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", sl.Error(err))
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel)

	rabbitCfg := config.NewRabbitMQConfig()
	if !rabbitCfg.Enabled() {
		slog.Error("RABBITMQ_NODE_IP_ADDRESS is not set, alert service needs the broker")
		os.Exit(1)
	}

	database := setup.ConnectToDatabase(cfg.DatabaseURL)
	defer database.Close()

	rabbit := setup.ConnectToRabbitMQ(rabbitCfg)
	defer rabbit.Close()

	checks := service.NewChecksService(database.ChecksRepo(), cfg.CommonConfig)
	notifiers := notifier.FromConfig(config.NewWebhookConfig(), config.NewTelegramConfig())

	alertService, err := alert.New(rabbit, checks, notifiers, cfg.AppName, config.NewAlertConfig())
	if err != nil {
		slog.Error("failed to create alert service", sl.Error(err))
		os.Exit(1)
	}

	slog.Info("starting alert service")
	alertService.Start()
}
