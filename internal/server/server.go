// Package server implements the worker HTTP surface: liveness, runtime
// status, lifecycle history, and metrics. Application business routes are
// deliberately not part of this layer.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/rinodehi1978/resell-trap/internal/config"
	"github.com/rinodehi1978/resell-trap/internal/db"
	"github.com/rinodehi1978/resell-trap/internal/lib/sl"
	"github.com/rinodehi1978/resell-trap/internal/metrics"
	"github.com/rinodehi1978/resell-trap/internal/server/middleware"
	"github.com/rinodehi1978/resell-trap/internal/server/response"
	"github.com/rinodehi1978/resell-trap/internal/service"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// errInternal is what clients see on a 500; the cause stays in the log.
var errInternal = errors.New("internal server error")

type Server struct {
	server   *http.Server
	database db.Database
	events   *service.EventsService
	checks   *service.ChecksService
	config   config.RuntimeConfig
	started  time.Time
}

func New(database db.Database, cfg config.RuntimeConfig) *Server {
	router := http.NewServeMux()

	s := &Server{
		database: database,
		events:   service.NewEventsService(database.EventsRepo(), cfg.CommonConfig),
		checks:   service.NewChecksService(database.ChecksRepo(), cfg.CommonConfig),
		config:   cfg,
		started:  time.Now(),
	}

	router.HandleFunc("GET /healthz", s.healthz)
	router.HandleFunc("GET /api/status", s.getStatus)
	router.HandleFunc("GET /api/events", s.getEvents)
	router.HandleFunc("GET /api/workers/{id}/events", s.getWorkerEvents)
	router.HandleFunc("GET /api/checks", s.getChecks)
	router.Handle("GET /metrics", metrics.Handler())

	handler := middleware.Logging(middleware.Instrument(router))
	handler = middleware.Timeout(handler, cfg.WorkerTimeout)

	s.server = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Handler exposes the full middleware chain.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Serve runs on an already-bound listener, the supervised-worker path.
func (s *Server) Serve(l net.Listener) error {
	return s.server.Serve(l)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.config.DbQueryTimeout)
	defer cancel()

	if err := s.database.DB().PingContext(ctx); err != nil {
		slog.Error("database ping failed", sl.Error(err))
		response.WriteJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "degraded",
			"pid":    os.Getpid(),
		})
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"pid":            os.Getpid(),
		"uptime_seconds": int64(time.Since(s.started).Seconds()),
	})
}

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, map[string]any{
		"app":            s.config.AppName,
		"pid":            os.Getpid(),
		"launch_mode":    string(s.config.LaunchMode),
		"database":       s.database.Dialect(),
		"workers":        s.config.Workers,
		"started":        s.started.UTC().Format(time.RFC3339),
		"uptime_seconds": int64(time.Since(s.started).Seconds()),
	})
}

func (s *Server) getEvents(w http.ResponseWriter, r *http.Request) {
	limit, err := listLimit(r)
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err)
		return
	}

	events, err := s.events.GetRecentEvents(r.Context(), limit)
	if err != nil {
		slog.Error("failed to get worker events", sl.Error(err))
		response.WriteError(w, http.StatusInternalServerError, errInternal)
		return
	}

	response.WriteJSON(w, http.StatusOK, events)
}

func (s *Server) getWorkerEvents(w http.ResponseWriter, r *http.Request) {
	workerId, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, fmt.Errorf("invalid worker id"))
		return
	}

	limit, err := listLimit(r)
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err)
		return
	}

	events, err := s.events.GetEventsForWorker(r.Context(), workerId, limit)
	if err != nil {
		slog.Error(
			"failed to get events for worker",
			slog.Int("worker_id", workerId),
			sl.Error(err),
		)
		response.WriteError(w, http.StatusInternalServerError, errInternal)
		return
	}

	response.WriteJSON(w, http.StatusOK, events)
}

func (s *Server) getChecks(w http.ResponseWriter, r *http.Request) {
	limit, err := listLimit(r)
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err)
		return
	}

	checks, err := s.checks.GetNLastChecks(r.Context(), limit)
	if err != nil {
		slog.Error("failed to get health checks", sl.Error(err))
		response.WriteError(w, http.StatusInternalServerError, errInternal)
		return
	}

	response.WriteJSON(w, http.StatusOK, checks)
}

func listLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultListLimit, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 0, fmt.Errorf("invalid limit")
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return limit, nil
}
