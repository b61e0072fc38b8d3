package broker

import (
	"context"

	"github.com/rinodehi1978/resell-trap/internal/model"
)

type MessageBroker interface {
	ConsumeEvents(ctx context.Context) (<-chan model.WorkerEvent, error)
	ConsumeChecks(ctx context.Context) (<-chan model.HealthCheck, error)
	ConsumeNotifications(ctx context.Context) (<-chan model.Notification, error)

	PublishEvent(ctx context.Context, event model.WorkerEvent) error
	PublishCheck(ctx context.Context, check model.HealthCheck) error
	PublishNotification(ctx context.Context, notification model.Notification) error

	Close()
}
