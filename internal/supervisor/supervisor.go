// Package supervisor implements the process manager: it binds the service
// listener once, fans out into worker processes that inherit it, restarts
// workers that fail, and records every lifecycle transition.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"strconv"
	"syscall"
	"time"

	"github.com/rinodehi1978/resell-trap/internal/broker"
	"github.com/rinodehi1978/resell-trap/internal/config"
	"github.com/rinodehi1978/resell-trap/internal/lib/sl"
	"github.com/rinodehi1978/resell-trap/internal/metrics"
	"github.com/rinodehi1978/resell-trap/internal/model"
	"github.com/rinodehi1978/resell-trap/internal/notifier"
	"github.com/rinodehi1978/resell-trap/internal/privilege"
	"github.com/rinodehi1978/resell-trap/internal/service"

	"golang.org/x/sync/errgroup"
)

type Supervisor struct {
	events     *service.EventsService
	broker     broker.MessageBroker
	notifiers  []notifier.Notifier
	account    *privilege.Account
	workerArgv []string
	config     config.RuntimeConfig
}

// New builds a supervisor. The broker and account may be nil; workerArgv
// is the command line each worker process runs.
func New(
	events *service.EventsService,
	b broker.MessageBroker,
	notifiers []notifier.Notifier,
	account *privilege.Account,
	workerArgv []string,
	cfg config.RuntimeConfig,
) *Supervisor {
	return &Supervisor{
		events:     events,
		broker:     b,
		notifiers:  notifiers,
		account:    account,
		workerArgv: workerArgv,
		config:     cfg,
	}
}

// Run binds the listener, starts the worker pool and blocks until the
// context is canceled or a worker cannot be kept alive.
func (s *Supervisor) Run(ctx context.Context) error {
	if len(s.workerArgv) == 0 {
		return fmt.Errorf("worker command is empty")
	}

	listener, err := net.Listen("tcp", s.config.Addr())
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", s.config.Addr(), err)
	}
	defer listener.Close()

	listenerFile, err := listener.(*net.TCPListener).File()
	if err != nil {
		return fmt.Errorf("failed to export listener: %w", err)
	}
	defer listenerFile.Close()

	slog.Info(
		"supervisor listening",
		slog.String("addr", s.config.Addr()),
		slog.Int("workers", s.config.Workers),
	)

	g, ctx := errgroup.WithContext(ctx)

	for id := range s.config.Workers {
		g.Go(func() error {
			return s.superviseWorker(ctx, id, listenerFile)
		})
	}

	g.Go(func() error {
		return s.waitReady(ctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// superviseWorker keeps one worker slot occupied: spawn, wait, restart
// with capped exponential backoff, until the context ends.
func (s *Supervisor) superviseWorker(ctx context.Context, id int, listenerFile *os.File) error {
	backoff := s.config.RestartBackoff

	for {
		cmd, err := s.spawn(id, listenerFile)
		if err != nil {
			return fmt.Errorf("failed to start worker %d: %w", id, err)
		}

		pid := cmd.Process.Pid
		s.recordEvent(ctx, id, pid, model.EventStarted, "")

		done := make(chan error, 1)
		go func() {
			done <- cmd.Wait()
		}()

		select {
		case <-ctx.Done():
			s.terminate(cmd, done)
			s.recordEvent(context.Background(), id, pid, model.EventStopped, "")
			return ctx.Err()
		case err := <-done:
			detail := "exit status 0"
			if err != nil {
				detail = err.Error()
			}
			s.recordEvent(ctx, id, pid, model.EventExited, detail)
			s.notify(ctx, fmt.Sprintf("worker %d (pid %d) exited: %s", id, pid, detail))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		// The replacement's pid is not known until the next spawn.
		metrics.WorkerRestarted()
		s.recordEvent(ctx, id, 0, model.EventRestarted, fmt.Sprintf("replacing pid %d", pid))
		backoff = nextBackoff(backoff, s.config.MaxRestartBackoff)
	}
}

func (s *Supervisor) spawn(id int, listenerFile *os.File) (*exec.Cmd, error) {
	cmd := exec.Command(s.workerArgv[0], s.workerArgv[1:]...)
	cmd.Env = append(os.Environ(),
		workerMarkerEnv+"=1",
		fmt.Sprintf("%s=%d", workerIdEnv, id),
	)
	cmd.ExtraFiles = []*os.File{listenerFile}
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if s.account != nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{
			Credential: s.account.Credential(),
		}
	}

	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return cmd, nil
}

// terminate asks the worker to drain, then kills it after the shutdown
// timeout.
func (s *Supervisor) terminate(cmd *exec.Cmd, done <-chan error) {
	if err := cmd.Process.Signal(syscall.SIGTERM); err != nil {
		return
	}

	select {
	case <-done:
	case <-time.After(s.config.ShutdownTimeout):
		cmd.Process.Kill()
		<-done
	}
}

// waitReady enforces the bounded startup interval: the service must accept
// connections before the startup timeout expires.
func (s *Supervisor) waitReady(ctx context.Context) error {
	target := s.probeURL()
	deadline := time.Now().Add(s.config.StartupTimeout)

	for {
		if probeOnce(ctx, target) {
			slog.Info("service is ready", slog.String("target", target))
			s.recordEvent(ctx, -1, os.Getpid(), model.EventReady, target)
			return nil
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("service did not become ready within %s", s.config.StartupTimeout)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(250 * time.Millisecond):
		}
	}
}

func probeOnce(ctx context.Context, target string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// probeURL targets loopback when the bind address is a wildcard.
func (s *Supervisor) probeURL() string {
	host := s.config.Host
	if host == "0.0.0.0" || host == "::" || host == "" {
		host = "127.0.0.1"
	}
	return fmt.Sprintf("http://%s/healthz", net.JoinHostPort(host, strconv.Itoa(s.config.Port)))
}

// Event recording must not take the supervision loop down with it; a
// storage hiccup is logged and supervision continues.
func (s *Supervisor) recordEvent(ctx context.Context, workerId, pid int, event, detail string) {
	workerEvent := model.WorkerEvent{
		WorkerId: workerId,
		Pid:      pid,
		Event:    event,
		Detail:   detail,
		Time:     time.Now(),
	}
	slog.Info("worker event", sl.WorkerEvent(workerEvent))

	if err := s.events.AddEvent(ctx, workerEvent); err != nil {
		slog.Error("failed to record worker event", sl.Error(err))
	}

	if s.broker != nil {
		bctx, cancel := context.WithTimeout(ctx, s.config.BrokerTimeout)
		defer cancel()
		if err := s.broker.PublishEvent(bctx, workerEvent); err != nil {
			slog.Error("failed to publish worker event", sl.Error(err))
		}
	}
}

func (s *Supervisor) notify(ctx context.Context, message string) {
	notifier.NotifyAll(ctx, s.notifiers, model.Notification{
		App:     s.config.AppName,
		Message: message,
	})
}

func nextBackoff(current, max time.Duration) time.Duration {
	next := current * 2
	if next > max {
		return max
	}
	return next
}
