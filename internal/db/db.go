package db

import (
	"database/sql"

	"github.com/rinodehi1978/resell-trap/internal/repository"
)

type Database interface {
	DB() *sql.DB
	Dialect() string

	EventsRepo() repository.EventsProvider
	ChecksRepo() repository.ChecksProvider

	Close() error
}
