package service

import (
	"context"

	"github.com/rinodehi1978/resell-trap/internal/config"
	"github.com/rinodehi1978/resell-trap/internal/model"
	"github.com/rinodehi1978/resell-trap/internal/repository"
)

type EventsService struct {
	events repository.EventsProvider
	config config.CommonConfig
}

func NewEventsService(events repository.EventsProvider, config config.CommonConfig) *EventsService {
	return &EventsService{
		events: events,
		config: config,
	}
}

func (s *EventsService) AddEvent(ctx context.Context, event model.WorkerEvent) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.DbQueryTimeout)
	defer cancel()

	return s.events.AddEvent(ctx, event)
}

func (s *EventsService) GetRecentEvents(ctx context.Context, limit int) ([]model.WorkerEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.DbQueryTimeout)
	defer cancel()

	return s.events.GetRecentEvents(ctx, limit)
}

func (s *EventsService) GetEventsForWorker(
	ctx context.Context,
	workerId int,
	limit int,
) ([]model.WorkerEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.DbQueryTimeout)
	defer cancel()

	return s.events.GetEventsForWorker(ctx, workerId, limit)
}
