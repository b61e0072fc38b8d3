package checker

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rinodehi1978/resell-trap/internal/config"
	"github.com/rinodehi1978/resell-trap/internal/model"
	"github.com/rinodehi1978/resell-trap/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChecksRepo struct {
	checks []model.HealthCheck
}

func (f *fakeChecksRepo) AddCheck(_ context.Context, check model.HealthCheck) error {
	f.checks = append(f.checks, check)
	return nil
}

func (f *fakeChecksRepo) GetNLastChecks(_ context.Context, n int) ([]model.HealthCheck, error) {
	return f.checks, nil
}

func (f *fakeChecksRepo) GetLastSuccessfulCheckBefore(
	_ context.Context,
	_ time.Time,
) (model.HealthCheck, error) {
	return model.HealthCheck{}, sql.ErrNoRows
}

func testConfig() config.CheckerConfig {
	return config.CheckerConfig{
		Interval:     10 * time.Millisecond,
		ProbeTimeout: time.Second,
		ProbePath:    "/healthz",
		CommonConfig: config.CommonConfig{
			DbQueryTimeout: time.Second,
			BrokerTimeout:  time.Second,
		},
	}
}

func newChecker(repo *fakeChecksRepo, target string) *Checker {
	cfg := testConfig()
	return New(service.NewChecksService(repo, cfg.CommonConfig), nil, target, cfg)
}

func TestProbe_SuccessfulResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/healthz", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newChecker(&fakeChecksRepo{}, srv.URL+"/healthz")

	check, err := c.probe(context.Background())
	require.NoError(t, err)
	assert.True(t, check.IsSuccessful())
	assert.True(t, check.Latency.Valid)
}

func TestProbe_ErrorStatusIsRecorded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newChecker(&fakeChecksRepo{}, srv.URL+"/healthz")

	check, err := c.probe(context.Background())
	require.NoError(t, err)
	assert.False(t, check.IsSuccessful())
	assert.Equal(t, int64(500), check.Code.Int64)
}

func TestProbe_UnreachableTarget(t *testing.T) {
	c := newChecker(&fakeChecksRepo{}, "http://127.0.0.1:1/healthz")

	check, err := c.probe(context.Background())
	require.Error(t, err)
	assert.False(t, check.Latency.Valid)
	assert.False(t, check.Code.Valid)
}

func TestRunCheck_RecordsOutcome(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	repo := &fakeChecksRepo{}
	c := newChecker(repo, srv.URL+"/healthz")

	require.NoError(t, c.runCheck(context.Background()))
	require.Len(t, repo.checks, 1)
	assert.True(t, repo.checks[0].IsSuccessful())
}

func TestRunCheck_RecordsFailedProbe(t *testing.T) {
	repo := &fakeChecksRepo{}
	c := newChecker(repo, "http://127.0.0.1:1/healthz")

	require.NoError(t, c.runCheck(context.Background()))
	require.Len(t, repo.checks, 1)
	assert.False(t, repo.checks[0].Code.Valid)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	repo := &fakeChecksRepo{}
	c := newChecker(repo, srv.URL+"/healthz")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := c.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotEmpty(t, repo.checks)
}
