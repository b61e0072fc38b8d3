package setup

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/rinodehi1978/resell-trap/internal/broker"
	"github.com/rinodehi1978/resell-trap/internal/config"
	"github.com/rinodehi1978/resell-trap/internal/db"
	"github.com/rinodehi1978/resell-trap/internal/lib/sl"

	"github.com/pressly/goose/v3"
)

// ConnectToDatabase opens the database named by DATABASE_URL, dispatching
// on the URL scheme. Failure to connect is fatal: the server must not
// start against an unreachable database.
func ConnectToDatabase(databaseURL string) db.Database {
	parsed, err := config.ParseDatabaseURL(databaseURL)
	if err != nil {
		slog.Error("invalid database url", sl.Error(err))
		os.Exit(1)
	}

	switch parsed.Dialect {
	case "sqlite3":
		return connectToSQLite(parsed.DSN)
	case "postgres":
		return connectToPostgres(parsed.DSN)
	default:
		slog.Error("unknown database dialect", slog.String("dialect", parsed.Dialect))
		os.Exit(1)
		return nil
	}
}

func connectToSQLite(file string) *db.SQLite {
	slog.Info("connecting to SQLite", slog.String("file", file))
	database, err := db.NewSQLite(file)
	if err != nil {
		slog.Error("failed to create database", sl.Error(err))
		os.Exit(1)
	}
	return database
}

func connectToPostgres(url string) *db.Postgres {
	slog.Info("connecting to PostgreSQL")
	database, err := db.NewPostgres(url)
	if err != nil {
		slog.Error("failed to create database", sl.Error(err))
		os.Exit(1)
	}
	return database
}

// RunMigrations applies all pending goose migrations for the database's
// dialect.
func RunMigrations(database db.Database, folder string) error {
	if err := goose.SetDialect(database.Dialect()); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}
	if err := goose.Up(database.DB(), folder); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

func ConnectToRabbitMQ(config config.RabbitMQConfig) *broker.RabbitMQ {
	slog.Info("connecting to RabbitMQ")
	url := fmt.Sprintf("amqp://%s:%s@%s:%s/", config.User, config.Pass, config.Host, config.Port)
	b, err := broker.NewRabbitMQ(url)
	if err != nil {
		slog.Error("failed to connect to RabbitMQ", sl.Error(err))
		os.Exit(1)
	}
	return b
}
