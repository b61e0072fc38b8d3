package repository

import (
	"context"
	"time"

	"github.com/rinodehi1978/resell-trap/internal/model"
)

type ChecksProvider interface {
	AddCheck(ctx context.Context, check model.HealthCheck) error

	GetNLastChecks(ctx context.Context, n int) ([]model.HealthCheck, error)
	GetLastSuccessfulCheckBefore(ctx context.Context, t time.Time) (model.HealthCheck, error)
}
