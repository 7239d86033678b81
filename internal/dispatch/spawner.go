package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/sync/semaphore"
)

// Spawner starts external handler processes.
type Spawner interface {
	// Spawn starts the executable at path and writes payload to its standard
	// input. It returns once the payload is written; it does not wait for the
	// process to exit.
	Spawn(ctx context.Context, path string, payload []byte) error
}

// DefaultMaxExternalProcs is the default ceiling of live external processes.
const DefaultMaxExternalProcs = 64

// ExecSpawner runs external handlers with os/exec. At most maxProcs processes
// are alive at once; Spawn waits for a free slot. Every process is reaped in
// the background, and killed after timeout when one is set.
type ExecSpawner struct {
	sem     *semaphore.Weighted
	timeout time.Duration
	logger  *slog.Logger

	live   atomic.Int64
	killed atomic.Uint64
	reaped sync.WaitGroup
}

// NewExecSpawner creates a spawner. maxProcs <= 0 uses DefaultMaxExternalProcs;
// timeout <= 0 lets processes run indefinitely.
func NewExecSpawner(maxProcs int64, timeout time.Duration, logger *slog.Logger) *ExecSpawner {
	if maxProcs <= 0 {
		maxProcs = DefaultMaxExternalProcs
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ExecSpawner{
		sem:     semaphore.NewWeighted(maxProcs),
		timeout: timeout,
		logger:  logger.With("component", "spawner"),
	}
}

func (s *ExecSpawner) Spawn(ctx context.Context, path string, payload []byte) error {
	// exec resolves a relative Path against Dir, so pin it first.
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve handler path: %w", err)
	}
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("waiting for a process slot: %w", err)
	}

	cmd := exec.Command(abs)
	cmd.Dir = filepath.Dir(abs)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		s.sem.Release(1)
		return fmt.Errorf("failed to open stdin: %w", err)
	}
	if err := cmd.Start(); err != nil {
		s.sem.Release(1)
		return fmt.Errorf("failed to start: %w", err)
	}
	s.live.Add(1)

	var kill *time.Timer
	if s.timeout > 0 {
		kill = time.AfterFunc(s.timeout, func() {
			s.logger.Warn("Killing external handler", "path", path, "pid", cmd.Process.Pid, "timeout", s.timeout)
			s.killed.Add(1)
			_ = cmd.Process.Kill()
		})
	}

	_, werr := stdin.Write(payload)
	if werr == nil {
		_, werr = stdin.Write([]byte("\n"))
	}
	_ = stdin.Close()

	// Wait must not run before the write finishes, it closes stdin.
	s.reaped.Add(1)
	go s.reap(cmd, path, kill)

	// A handler that exits without reading its input is not a spawn failure.
	if werr != nil && !errors.Is(werr, syscall.EPIPE) {
		return fmt.Errorf("failed to write payload: %w", werr)
	}
	return nil
}

func (s *ExecSpawner) reap(cmd *exec.Cmd, path string, kill *time.Timer) {
	defer s.reaped.Done()
	defer s.sem.Release(1)
	defer s.live.Add(-1)

	err := cmd.Wait()
	if kill != nil {
		kill.Stop()
	}
	s.logger.Debug("External handler exited",
		"path", path,
		"pid", cmd.Process.Pid,
		"exit_code", cmd.ProcessState.ExitCode(),
		"error", err,
	)
}

// Live returns the number of started processes not yet reaped.
func (s *ExecSpawner) Live() int64 {
	return s.live.Load()
}

// Killed returns how many processes were killed for exceeding the timeout.
func (s *ExecSpawner) Killed() uint64 {
	return s.killed.Load()
}

// Wait blocks until every started process has been reaped or ctx is done.
func (s *ExecSpawner) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.reaped.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
