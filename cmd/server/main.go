package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rinodehi1978/resell-trap/internal/config"
	"github.com/rinodehi1978/resell-trap/internal/datadir"
	"github.com/rinodehi1978/resell-trap/internal/lib/setup"
	"github.com/rinodehi1978/resell-trap/internal/lib/sl"
	"github.com/rinodehi1978/resell-trap/internal/logging"
	"github.com/rinodehi1978/resell-trap/internal/server"
	"github.com/rinodehi1978/resell-trap/internal/supervisor"
)

// The server binary is both the supervised worker and the direct launch
// mode: with an inherited listener it serves the supervisor's socket,
// otherwise it binds the configured address itself.
func main() {
	config.LoadDotEnv()

	cfg := config.NewRuntimeConfig()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", sl.Error(err))
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel)

	dbURL, _ := config.ParseDatabaseURL(cfg.DatabaseURL)
	if dbURL.Path != "" {
		if err := datadir.CheckWritable(filepath.Dir(dbURL.Path)); err != nil {
			slog.Error("data directory is not usable", sl.Error(err))
			os.Exit(1)
		}
	}

	database := setup.ConnectToDatabase(cfg.DatabaseURL)
	defer database.Close()

	srv := server.New(database, cfg)

	listener, err := supervisor.InheritedListener()
	if err != nil {
		slog.Error("failed to recover inherited listener", sl.Error(err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if listener != nil {
			slog.Info(
				"worker serving on inherited listener",
				slog.Int("worker_id", supervisor.WorkerId()),
				slog.Int("pid", os.Getpid()),
			)
			errCh <- srv.Serve(listener)
			return
		}
		slog.Info("starting http server", slog.String("address", cfg.Addr()))
		errCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("error during shutdown", sl.Error(err))
		}
		<-errCh
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			slog.Error("error from http server", sl.Error(err))
			os.Exit(1)
		}
	}
}
