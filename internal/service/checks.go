package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rinodehi1978/resell-trap/internal/config"
	"github.com/rinodehi1978/resell-trap/internal/model"
	"github.com/rinodehi1978/resell-trap/internal/repository"
)

type ChecksService struct {
	checks repository.ChecksProvider
	config config.CommonConfig
}

func NewChecksService(checks repository.ChecksProvider, config config.CommonConfig) *ChecksService {
	return &ChecksService{
		checks: checks,
		config: config,
	}
}

func (s *ChecksService) AddCheck(ctx context.Context, check model.HealthCheck) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.DbQueryTimeout)
	defer cancel()

	return s.checks.AddCheck(ctx, check)
}

func (s *ChecksService) GetNLastChecks(ctx context.Context, n int) ([]model.HealthCheck, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.DbQueryTimeout)
	defer cancel()

	return s.checks.GetNLastChecks(ctx, n)
}

// GetLastSuccessfulCheckBefore returns nil when no successful check
// precedes t.
func (s *ChecksService) GetLastSuccessfulCheckBefore(
	ctx context.Context,
	t time.Time,
) (*model.HealthCheck, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.DbQueryTimeout)
	defer cancel()

	check, err := s.checks.GetLastSuccessfulCheckBefore(ctx, t)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &check, nil
}
