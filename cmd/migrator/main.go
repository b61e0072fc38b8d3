package main

import (
	"log/slog"
	"os"

	"github.com/rinodehi1978/resell-trap/internal/config"
	"github.com/rinodehi1978/resell-trap/internal/lib/setup"
	"github.com/rinodehi1978/resell-trap/internal/lib/sl"
	"github.com/rinodehi1978/resell-trap/internal/logging"
)

func main() {
	config.LoadDotEnv()

	cfg := config.NewRuntimeConfig()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", sl.Error(err))
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel)

	database := setup.ConnectToDatabase(cfg.DatabaseURL)
	defer database.Close()

	migratorCfg := config.NewMigratorConfig(database.Dialect())
	if err := setup.RunMigrations(database, migratorCfg.MigrationsFolder); err != nil {
		slog.Error("failed to apply all available migrations", sl.Error(err))
		os.Exit(1)
	}

	slog.Info("migrations applied", slog.String("folder", migratorCfg.MigrationsFolder))
}
