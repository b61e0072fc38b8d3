// Package alert turns health-check streams into operator notifications:
// a run of consecutive failures means the service is down, the first
// success afterwards means it recovered.
package alert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rinodehi1978/resell-trap/internal/broker"
	"github.com/rinodehi1978/resell-trap/internal/config"
	"github.com/rinodehi1978/resell-trap/internal/lib/sl"
	"github.com/rinodehi1978/resell-trap/internal/model"
	"github.com/rinodehi1978/resell-trap/internal/notifier"
	"github.com/rinodehi1978/resell-trap/internal/service"
)

type AlertService struct {
	broker    broker.MessageBroker
	checks    *service.ChecksService
	notifiers []notifier.Notifier
	appName   string
	config    config.AlertConfig

	failures    int
	outageStart time.Time
}

func New(
	b broker.MessageBroker,
	checks *service.ChecksService,
	notifiers []notifier.Notifier,
	appName string,
	cfg config.AlertConfig,
) (*AlertService, error) {
	if cfg.FailureThreshold < 1 {
		return nil, fmt.Errorf("number of failed checks must be at least 1")
	}
	return &AlertService{
		broker:    b,
		checks:    checks,
		notifiers: notifiers,
		appName:   appName,
		config:    cfg,
	}, nil
}

func (a *AlertService) Start() {
	ctx := context.Background()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	checksQueue, err := a.broker.ConsumeChecks(ctx)
	if err != nil {
		slog.Error("failed to register a consumer for health checks", sl.Error(err))
		return
	}

	if err := a.routine(ctx, checksQueue); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("error from alert service", sl.Error(err))
	}
}

func (a *AlertService) routine(ctx context.Context, checksQueue <-chan model.HealthCheck) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case check, ok := <-checksQueue:
			if !ok {
				return fmt.Errorf("queue with health checks was closed")
			}
			if err := a.handleCheck(ctx, check); err != nil {
				return fmt.Errorf("failed to handle health check: %w", err)
			}
		}
	}
}

func (a *AlertService) handleCheck(ctx context.Context, check model.HealthCheck) error {
	if check.IsSuccessful() {
		recoveredAfter := a.failures
		a.failures = 0
		if recoveredAfter < a.config.FailureThreshold {
			return nil
		}
		return a.sendRecovery(ctx)
	}

	if a.failures == 0 {
		a.outageStart = check.Time
	}
	a.failures++

	// Fire once, when the run of failures reaches the threshold.
	if a.failures != a.config.FailureThreshold {
		return nil
	}

	return a.send(ctx, fmt.Sprintf(
		"Bad news. The service is unavailable: %d consecutive failed health checks.",
		a.failures,
	))
}

func (a *AlertService) sendRecovery(ctx context.Context) error {
	message := "Good news! The service is back up."

	lastGood, err := a.checks.GetLastSuccessfulCheckBefore(ctx, a.outageStart)
	if err != nil {
		return fmt.Errorf("failed to get last successful check: %w", err)
	}
	if lastGood != nil {
		message = fmt.Sprintf(
			"Good news! The service is back up after %d minutes.",
			int(time.Since(lastGood.Time).Minutes()),
		)
	}

	return a.send(ctx, message)
}

func (a *AlertService) send(ctx context.Context, message string) error {
	notification := model.Notification{
		App:     a.appName,
		Message: message,
	}
	slog.Info("sending notification", sl.Notification(notification))

	notifier.NotifyAll(ctx, a.notifiers, notification)

	bctx, cancel := context.WithTimeout(ctx, a.config.BrokerTimeout)
	defer cancel()
	return a.broker.PublishNotification(bctx, notification)
}
