package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rinodehi1978/resell-trap/internal/repository"
	repo "github.com/rinodehi1978/resell-trap/internal/repository/sqlite"

	_ "github.com/mattn/go-sqlite3"
)

const workerEventsScheme = `
CREATE TABLE IF NOT EXISTS worker_events(
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	worker_id INTEGER NOT NULL,
	pid INTEGER NOT NULL,
	event TEXT NOT NULL,
	detail TEXT NOT NULL DEFAULT '',
	time TIMESTAMP NOT NULL
)`

const healthChecksScheme = `
CREATE TABLE IF NOT EXISTS health_checks(
	time TIMESTAMP NOT NULL,
	latency INTEGER,
	code INTEGER
)`

type SQLite struct {
	db     *sql.DB
	events repository.EventsProvider
	checks repository.ChecksProvider
}

func NewSQLite(dataSourceName string) (*SQLite, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := connectToDB(ctx, dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = initDB(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return &SQLite{
		db:     db,
		events: repo.NewEventsRepo(db),
		checks: repo.NewChecksRepo(db),
	}, nil
}

func connectToDB(ctx context.Context, dataSourceName string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	return db, nil
}

func initDB(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, workerEventsScheme); err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, healthChecksScheme); err != nil {
		return err
	}

	return nil
}

func (s *SQLite) DB() *sql.DB {
	return s.db
}

func (s *SQLite) Dialect() string {
	return "sqlite3"
}

func (s *SQLite) EventsRepo() repository.EventsProvider {
	return s.events
}

func (s *SQLite) ChecksRepo() repository.ChecksProvider {
	return s.checks
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
