package notifier

import (
	"context"
	"log/slog"

	"github.com/rinodehi1978/resell-trap/internal/lib/sl"
	"github.com/rinodehi1978/resell-trap/internal/model"
)

// LogNotifier writes notifications to the log. It is always active.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Notify(_ context.Context, notification model.Notification) error {
	slog.Warn("notification", sl.Notification(notification))
	return nil
}
