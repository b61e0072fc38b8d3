// Package checker probes the served endpoint on an interval and records
// the outcome. The supervisor runs it alongside the worker pool; the alert
// service consumes its results.
package checker

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/rinodehi1978/resell-trap/internal/broker"
	"github.com/rinodehi1978/resell-trap/internal/config"
	"github.com/rinodehi1978/resell-trap/internal/lib/sl"
	"github.com/rinodehi1978/resell-trap/internal/metrics"
	"github.com/rinodehi1978/resell-trap/internal/model"
	"github.com/rinodehi1978/resell-trap/internal/service"
)

type Checker struct {
	checks *service.ChecksService
	broker broker.MessageBroker
	target string
	config config.CheckerConfig
	client *http.Client
}

// New builds a checker probing target, a fully-formed URL such as
// http://127.0.0.1:8000/healthz. The broker may be nil; results are then
// recorded locally only.
func New(
	checks *service.ChecksService,
	b broker.MessageBroker,
	target string,
	cfg config.CheckerConfig,
) *Checker {
	return &Checker{
		checks: checks,
		broker: b,
		target: target,
		config: cfg,
		client: &http.Client{},
	}
}

func (c *Checker) Run(ctx context.Context) error {
	t := time.NewTicker(c.config.Interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}

		if err := c.runCheck(ctx); err != nil {
			return err
		}
	}
}

func (c *Checker) runCheck(ctx context.Context) error {
	check, err := c.probe(ctx)
	if err != nil {
		slog.Warn("health check failed", slog.String("target", c.target), sl.Error(err))
	} else {
		slog.Debug("health check", sl.HealthCheck(check))
		metrics.SetProbeLatency(check.Latency.Int64)
	}

	if err := c.checks.AddCheck(ctx, check); err != nil {
		return fmt.Errorf("failed to record health check: %w", err)
	}

	if c.broker != nil {
		bctx, cancel := context.WithTimeout(ctx, c.config.BrokerTimeout)
		err := c.broker.PublishCheck(bctx, check)
		cancel()
		if err != nil {
			return fmt.Errorf("failed to publish health check: %w", err)
		}
	}

	return nil
}

func (c *Checker) probe(ctx context.Context) (model.HealthCheck, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.ProbeTimeout)
	defer cancel()

	start := time.Now()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, c.target, nil)
	resp, err := c.client.Do(req)
	latency := time.Since(start).Milliseconds()
	if err != nil {
		return model.HealthCheck{
			Time:    start,
			Latency: sql.NullInt64{},
			Code:    sql.NullInt64{},
		}, err
	}
	defer resp.Body.Close()

	return model.HealthCheck{
		Time: start,
		Latency: sql.NullInt64{
			Int64: latency,
			Valid: true,
		},
		Code: sql.NullInt64{
			Int64: int64(resp.StatusCode),
			Valid: true,
		},
	}, nil
}
