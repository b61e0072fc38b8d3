package sl

import (
	"log/slog"

	"github.com/rinodehi1978/resell-trap/internal/model"
)

func Error(err error) slog.Attr {
	return slog.String("error", err.Error())
}

func WorkerEvent(event model.WorkerEvent) slog.Attr {
	return slog.Group("worker_event",
		slog.Int("worker_id", event.WorkerId),
		slog.Int("pid", event.Pid),
		slog.String("event", event.Event),
	)
}

func HealthCheck(check model.HealthCheck) slog.Attr {
	return slog.Group("health_check",
		slog.Int64("code", check.Code.Int64),
		slog.Int64("latency_ms", check.Latency.Int64),
	)
}

func Notification(notification model.Notification) slog.Attr {
	return slog.Group("notification",
		slog.String("app", notification.App),
		slog.String("message", notification.Message),
	)
}
