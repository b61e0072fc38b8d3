package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/rinodehi1978/resell-trap/internal/repository"
	repo "github.com/rinodehi1978/resell-trap/internal/repository/postgres"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type Postgres struct {
	db     *sql.DB
	events repository.EventsProvider
	checks repository.ChecksProvider
}

func NewPostgres(url string) (*Postgres, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err = db.PingContext(ctx); err != nil {
		return nil, err
	}

	return &Postgres{
		db:     db,
		events: repo.NewEventsRepo(db),
		checks: repo.NewChecksRepo(db),
	}, nil
}

func (p *Postgres) DB() *sql.DB {
	return p.db
}

func (p *Postgres) Dialect() string {
	return "postgres"
}

func (p *Postgres) EventsRepo() repository.EventsProvider {
	return p.events
}

func (p *Postgres) ChecksRepo() repository.ChecksProvider {
	return p.checks
}

func (p *Postgres) Close() error {
	return p.db.Close()
}
