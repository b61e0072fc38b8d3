package config

import (
	"fmt"
	"strings"
)

// DatabaseURL is the split form of a DATABASE_URL value: a database/sql
// driver name, the goose dialect, and the DSN the driver understands.
type DatabaseURL struct {
	Driver  string
	Dialect string
	DSN     string
	// Path is the database file for embedded databases, empty otherwise.
	Path string
}

// ParseDatabaseURL understands sqlite file URLs and postgres DSNs.
//
// For sqlite the SQLAlchemy slash convention applies: sqlite:///foo.db is
// relative, sqlite:////data/foo.db is absolute.
func ParseDatabaseURL(raw string) (DatabaseURL, error) {
	switch {
	case strings.HasPrefix(raw, "sqlite://"):
		path := strings.TrimPrefix(raw, "sqlite://")
		path = strings.TrimPrefix(path, "/")
		if path == "" {
			return DatabaseURL{}, fmt.Errorf("sqlite url %q has no file path", raw)
		}
		return DatabaseURL{
			Driver:  "sqlite3",
			Dialect: "sqlite3",
			DSN:     path,
			Path:    path,
		}, nil
	case strings.HasPrefix(raw, "postgres://"), strings.HasPrefix(raw, "postgresql://"):
		return DatabaseURL{
			Driver:  "pgx",
			Dialect: "postgres",
			DSN:     raw,
		}, nil
	case raw == "":
		return DatabaseURL{}, fmt.Errorf("database url is empty")
	default:
		return DatabaseURL{}, fmt.Errorf("unsupported database url scheme in %q", raw)
	}
}
