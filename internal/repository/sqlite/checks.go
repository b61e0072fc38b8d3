package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/rinodehi1978/resell-trap/internal/model"
)

type ChecksRepo struct {
	db *sql.DB
}

func NewChecksRepo(db *sql.DB) *ChecksRepo {
	return &ChecksRepo{db}
}

func (r *ChecksRepo) AddCheck(ctx context.Context, check model.HealthCheck) error {
	_, err := r.db.ExecContext(
		ctx,
		"INSERT INTO health_checks (time, latency, code) VALUES (?, ?, ?)",
		check.Time, check.Latency, check.Code,
	)

	return err
}

func (r *ChecksRepo) GetNLastChecks(ctx context.Context, n int) ([]model.HealthCheck, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT time, latency, code
		FROM health_checks
		ORDER BY time DESC
		LIMIT ?`,
		n,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var checks []model.HealthCheck
	for rows.Next() {
		var check model.HealthCheck

		err = rows.Scan(&check.Time, &check.Latency, &check.Code)
		if err != nil {
			return nil, err
		}

		checks = append(checks, check)
	}

	return checks, rows.Err()
}

func (r *ChecksRepo) GetLastSuccessfulCheckBefore(
	ctx context.Context,
	t time.Time,
) (model.HealthCheck, error) {
	var check model.HealthCheck
	err := r.db.QueryRowContext(ctx,
		`SELECT time, latency, code
		FROM health_checks
		WHERE code = 200 AND time < ?
		ORDER BY time DESC
		LIMIT 1`,
		t,
	).Scan(&check.Time, &check.Latency, &check.Code)

	return check, err
}
