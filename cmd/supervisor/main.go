package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/rinodehi1978/resell-trap/internal/broker"
	"github.com/rinodehi1978/resell-trap/internal/checker"
	"github.com/rinodehi1978/resell-trap/internal/config"
	"github.com/rinodehi1978/resell-trap/internal/datadir"
	"github.com/rinodehi1978/resell-trap/internal/db"
	"github.com/rinodehi1978/resell-trap/internal/lib/setup"
	"github.com/rinodehi1978/resell-trap/internal/lib/sl"
	"github.com/rinodehi1978/resell-trap/internal/logging"
	"github.com/rinodehi1978/resell-trap/internal/notifier"
	"github.com/rinodehi1978/resell-trap/internal/privilege"
	"github.com/rinodehi1978/resell-trap/internal/server"
	"github.com/rinodehi1978/resell-trap/internal/service"
	"github.com/rinodehi1978/resell-trap/internal/supervisor"

	"golang.org/x/sync/errgroup"
)

// The supervisor binary is the container entrypoint. It prepares the data
// directory, applies migrations, resolves the unprivileged account and then
// either supervises a worker pool or serves directly, per LAUNCH_MODE.
func main() {
	config.LoadDotEnv()

	cfg := config.NewRuntimeConfig()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", sl.Error(err))
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel)

	account := resolveAccount(cfg)

	uid, gid := -1, -1
	if account != nil {
		uid, gid = account.Uid, account.Gid
	}
	if err := datadir.Prepare(cfg.DataDir, uid, gid); err != nil {
		slog.Error("failed to prepare data directory", sl.Error(err))
		os.Exit(1)
	}

	database := setup.ConnectToDatabase(cfg.DatabaseURL)
	defer database.Close()

	if cfg.MigrateOnStart {
		folder := config.NewMigratorConfig(database.Dialect()).MigrationsFolder
		if err := setup.RunMigrations(database, folder); err != nil {
			slog.Error("failed to migrate database", sl.Error(err))
			os.Exit(1)
		}
	}

	// The database file was created under the current credentials; hand it
	// to the runtime account before any worker touches it.
	if account != nil {
		if err := datadir.ChownAll(cfg.DataDir, account.Uid, account.Gid); err != nil {
			slog.Error("failed to chown data directory", sl.Error(err))
			os.Exit(1)
		}
	}

	var messageBroker broker.MessageBroker
	rabbitCfg := config.NewRabbitMQConfig()
	if rabbitCfg.Enabled() {
		rabbit := setup.ConnectToRabbitMQ(rabbitCfg)
		defer rabbit.Close()
		messageBroker = rabbit
	} else {
		slog.Info("message broker not configured, events stay local")
	}

	notifiers := notifier.FromConfig(config.NewWebhookConfig(), config.NewTelegramConfig())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	if cfg.LaunchMode == config.LaunchDirect {
		err = runDirect(ctx, database, messageBroker, account, cfg)
	} else {
		err = runSupervised(ctx, database, messageBroker, notifiers, account, cfg)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("runtime failed", sl.Error(err))
		os.Exit(1)
	}
}

// resolveAccount returns nil when de-escalation is disabled or the process
// already runs unprivileged.
func resolveAccount(cfg config.RuntimeConfig) *privilege.Account {
	if !cfg.RunUnprivileged {
		slog.Warn("privilege de-escalation disabled, running as current account")
		return nil
	}
	if !privilege.IsRoot() {
		return nil
	}

	account, err := privilege.Lookup(cfg.RunAsUser)
	if err != nil {
		slog.Error("failed to resolve runtime account", sl.Error(err))
		os.Exit(1)
	}
	return &account
}

func runSupervised(
	ctx context.Context,
	database db.Database,
	messageBroker broker.MessageBroker,
	notifiers []notifier.Notifier,
	account *privilege.Account,
	cfg config.RuntimeConfig,
) error {
	argv := workerCommand()
	if len(argv) == 0 {
		return fmt.Errorf("cannot determine worker command")
	}

	events := service.NewEventsService(database.EventsRepo(), cfg.CommonConfig)
	sup := supervisor.New(events, messageBroker, notifiers, account, argv, cfg)

	checks := service.NewChecksService(database.ChecksRepo(), cfg.CommonConfig)
	check := checker.New(checks, messageBroker, probeURL(cfg), config.NewCheckerConfig())

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sup.Run(ctx) })
	g.Go(func() error { return check.Run(ctx) })
	return g.Wait()
}

// runDirect serves in-process: no fan-out, privileges dropped before the
// first request.
func runDirect(
	ctx context.Context,
	database db.Database,
	messageBroker broker.MessageBroker,
	account *privilege.Account,
	cfg config.RuntimeConfig,
) error {
	if account != nil {
		if err := privilege.Drop(*account); err != nil {
			return err
		}
		slog.Info("dropped privileges", slog.String("account", account.Name))
	}

	srv := server.New(database, cfg)

	checks := service.NewChecksService(database.ChecksRepo(), cfg.CommonConfig)
	check := checker.New(checks, messageBroker, probeURL(cfg), config.NewCheckerConfig())

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("starting http server", slog.String("address", cfg.Addr()))
		if err := srv.Start(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error { return check.Run(ctx) })
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// workerCommand is WORKER_COMMAND when set, otherwise the server binary
// sitting next to this one.
func workerCommand() []string {
	if raw := os.Getenv("WORKER_COMMAND"); raw != "" {
		return strings.Fields(raw)
	}
	exe, err := os.Executable()
	if err != nil {
		return nil
	}
	return []string{filepath.Join(filepath.Dir(exe), "server")}
}

func probeURL(cfg config.RuntimeConfig) string {
	host := cfg.Host
	if host == "0.0.0.0" || host == "::" || host == "" {
		host = "127.0.0.1"
	}
	checkerCfg := config.NewCheckerConfig()
	return fmt.Sprintf("http://%s%s", net.JoinHostPort(host, strconv.Itoa(cfg.Port)), checkerCfg.ProbePath)
}
