package supervisor

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rinodehi1978/resell-trap/internal/config"
	"github.com/rinodehi1978/resell-trap/internal/model"
	"github.com/rinodehi1978/resell-trap/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEventsRepo struct {
	mu     sync.Mutex
	events []model.WorkerEvent
}

func (f *fakeEventsRepo) AddEvent(_ context.Context, event model.WorkerEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeEventsRepo) GetRecentEvents(_ context.Context, _ int) ([]model.WorkerEvent, error) {
	return nil, nil
}

func (f *fakeEventsRepo) GetEventsForWorker(
	_ context.Context,
	_ int,
	_ int,
) ([]model.WorkerEvent, error) {
	return nil, nil
}

func (f *fakeEventsRepo) byType(event string) []model.WorkerEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []model.WorkerEvent
	for _, e := range f.events {
		if e.Event == event {
			matched = append(matched, e)
		}
	}
	return matched
}

func (f *fakeEventsRepo) countByType(event string) int {
	return len(f.byType(event))
}

func newSupervisor(repo *fakeEventsRepo, argv []string, cfg config.RuntimeConfig) *Supervisor {
	events := service.NewEventsService(repo, cfg.CommonConfig)
	return New(events, nil, nil, nil, argv, cfg)
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func TestNextBackoff(t *testing.T) {
	assert.Equal(t, 2*time.Second, nextBackoff(time.Second, 30*time.Second))
	assert.Equal(t, 8*time.Second, nextBackoff(4*time.Second, 30*time.Second))
	assert.Equal(t, 30*time.Second, nextBackoff(20*time.Second, 30*time.Second))
	assert.Equal(t, 30*time.Second, nextBackoff(30*time.Second, 30*time.Second))
}

func TestWorkerId_NotSupervised(t *testing.T) {
	t.Setenv(workerIdEnv, "")
	assert.Equal(t, -1, WorkerId())
}

func TestWorkerId_FromEnv(t *testing.T) {
	t.Setenv(workerIdEnv, "2")
	assert.Equal(t, 2, WorkerId())

	t.Setenv(workerIdEnv, "junk")
	assert.Equal(t, -1, WorkerId())
}

func TestInheritedListener_NotSupervised(t *testing.T) {
	t.Setenv(workerMarkerEnv, "")

	listener, err := InheritedListener()
	require.NoError(t, err)
	assert.Nil(t, listener)
}

func TestProbeURL_WildcardHostTargetsLoopback(t *testing.T) {
	for _, host := range []string{"0.0.0.0", "::", ""} {
		s := newSupervisor(nil, nil, config.RuntimeConfig{Host: host, Port: 8000})
		assert.Equal(t, "http://127.0.0.1:8000/healthz", s.probeURL(), host)
	}

	s := newSupervisor(nil, nil, config.RuntimeConfig{Host: "10.0.0.5", Port: 8080})
	assert.Equal(t, "http://10.0.0.5:8080/healthz", s.probeURL())
}

func TestWaitReady_Succeeds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	addr := srv.Listener.Addr().(*net.TCPAddr)
	repo := &fakeEventsRepo{}
	s := newSupervisor(repo, nil, config.RuntimeConfig{
		Host:           "127.0.0.1",
		Port:           addr.Port,
		StartupTimeout: 5 * time.Second,
		CommonConfig:   config.CommonConfig{DbQueryTimeout: time.Second},
	})

	require.NoError(t, s.waitReady(context.Background()))
	require.Len(t, repo.events, 1)
	assert.Equal(t, model.EventReady, repo.events[0].Event)
	assert.Equal(t, -1, repo.events[0].WorkerId)
}

func TestWaitReady_TimesOut(t *testing.T) {
	repo := &fakeEventsRepo{}
	s := newSupervisor(repo, nil, config.RuntimeConfig{
		Host:           "127.0.0.1",
		Port:           freePort(t),
		StartupTimeout: 100 * time.Millisecond,
		CommonConfig:   config.CommonConfig{DbQueryTimeout: time.Second},
	})

	err := s.waitReady(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not become ready")
}

func TestRun_EmptyWorkerCommand(t *testing.T) {
	s := newSupervisor(&fakeEventsRepo{}, nil, config.RuntimeConfig{})
	assert.Error(t, s.Run(context.Background()))
}

func TestRun_RestartsCrashingWorker(t *testing.T) {
	repo := &fakeEventsRepo{}
	s := newSupervisor(repo, []string{"/bin/sh", "-c", "exit 1"}, config.RuntimeConfig{
		Host:              "127.0.0.1",
		Port:              freePort(t),
		Workers:           1,
		RestartBackoff:    10 * time.Millisecond,
		MaxRestartBackoff: 40 * time.Millisecond,
		StartupTimeout:    500 * time.Millisecond,
		ShutdownTimeout:   time.Second,
		CommonConfig:      config.CommonConfig{DbQueryTimeout: time.Second},
	})

	err := s.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not become ready")

	assert.GreaterOrEqual(t, repo.countByType(model.EventStarted), 2)
	assert.GreaterOrEqual(t, repo.countByType(model.EventExited), 2)

	// A restart names the pid it replaces but never claims it as its own.
	restarts := repo.byType(model.EventRestarted)
	require.NotEmpty(t, restarts)
	for _, e := range restarts {
		assert.Zero(t, e.Pid)
		assert.Contains(t, e.Detail, "replacing pid")
	}
}
