package repository

import (
	"context"

	"github.com/rinodehi1978/resell-trap/internal/model"
)

type EventsProvider interface {
	AddEvent(ctx context.Context, event model.WorkerEvent) error

	GetRecentEvents(ctx context.Context, limit int) ([]model.WorkerEvent, error)
	GetEventsForWorker(ctx context.Context, workerId int, limit int) ([]model.WorkerEvent, error)
}
