// Package notifier delivers operator notifications about the runtime:
// worker crashes, service outages, recoveries.
package notifier

import (
	"context"
	"log/slog"

	"github.com/rinodehi1978/resell-trap/internal/config"
	"github.com/rinodehi1978/resell-trap/internal/lib/sl"
	"github.com/rinodehi1978/resell-trap/internal/model"
)

type Notifier interface {
	Notify(ctx context.Context, notification model.Notification) error
}

// FromConfig assembles the notification channels: the log notifier always,
// webhook and telegram only when configured. Unconfigured channels degrade
// silently rather than failing startup.
func FromConfig(webhookCfg config.WebhookConfig, telegramCfg config.TelegramConfig) []Notifier {
	notifiers := []Notifier{NewLogNotifier()}

	if webhookCfg.Enabled() {
		notifiers = append(notifiers, NewWebhookNotifier(webhookCfg))
		slog.Info("webhook notifier enabled", slog.String("type", webhookCfg.Kind))
	}

	if telegramCfg.Enabled() {
		tg, err := NewTelegramNotifier(telegramCfg)
		if err != nil {
			slog.Error("failed to create telegram notifier, skipping", sl.Error(err))
		} else {
			notifiers = append(notifiers, tg)
			slog.Info("telegram notifier enabled")
		}
	}

	return notifiers
}

// NotifyAll fans a notification out to every channel. A failing channel is
// logged and does not block the others.
func NotifyAll(ctx context.Context, notifiers []Notifier, notification model.Notification) {
	for _, n := range notifiers {
		if err := n.Notify(ctx, notification); err != nil {
			slog.Error("failed to notify", sl.Error(err), sl.Notification(notification))
		}
	}
}
