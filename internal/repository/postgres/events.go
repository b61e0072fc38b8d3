package postgres

import (
	"context"
	"database/sql"

	"github.com/rinodehi1978/resell-trap/internal/model"
)

type EventsRepo struct {
	db *sql.DB
}

func NewEventsRepo(db *sql.DB) *EventsRepo {
	return &EventsRepo{db}
}

func (r *EventsRepo) AddEvent(ctx context.Context, event model.WorkerEvent) error {
	_, err := r.db.ExecContext(
		ctx,
		"INSERT INTO worker_events (worker_id, pid, event, detail, time) VALUES ($1, $2, $3, $4, $5)",
		event.WorkerId, event.Pid, event.Event, event.Detail, event.Time,
	)

	return err
}

func (r *EventsRepo) GetRecentEvents(ctx context.Context, limit int) ([]model.WorkerEvent, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, worker_id, pid, event, detail, time
		FROM worker_events
		ORDER BY time DESC, id DESC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

func (r *EventsRepo) GetEventsForWorker(
	ctx context.Context,
	workerId int,
	limit int,
) ([]model.WorkerEvent, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, worker_id, pid, event, detail, time
		FROM worker_events
		WHERE worker_id = $1
		ORDER BY time DESC, id DESC
		LIMIT $2`,
		workerId, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]model.WorkerEvent, error) {
	var events []model.WorkerEvent
	for rows.Next() {
		var event model.WorkerEvent

		err := rows.Scan(
			&event.Id,
			&event.WorkerId,
			&event.Pid,
			&event.Event,
			&event.Detail,
			&event.Time,
		)
		if err != nil {
			return nil, err
		}

		events = append(events, event)
	}

	return events, rows.Err()
}
