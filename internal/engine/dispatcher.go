// SPDX-License-Identifier: MIT

package engine

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	xlog "github.com/framepress/renderd/internal/log"
	"github.com/framepress/renderd/internal/metrics"
	"github.com/framepress/renderd/internal/procgroup"
)

// ErrTimeout reports that the engine exceeded the per-mode deadline and was
// killed.
var ErrTimeout = errors.New("engine run timed out")

// ExitError reports a non-zero engine exit with a stderr tail.
type ExitError struct {
	Code   int
	Stderr []string
}

func (e *ExitError) Error() string {
	if len(e.Stderr) == 0 {
		return fmt.Sprintf("engine exited with code %d", e.Code)
	}
	return fmt.Sprintf("engine exited with code %d: %s", e.Code, strings.Join(e.Stderr, " | "))
}

// Config parameterizes a Dispatcher. Zero values select defaults.
type Config struct {
	Binaries Binaries
	// Concurrency bounds simultaneous engine runs; default max(1, NumCPU/2).
	Concurrency int64
	// FinalTimeout bounds a final video render; default 10m.
	FinalTimeout time.Duration
	// PreviewTimeout bounds preview and still renders; default 2m.
	PreviewTimeout time.Duration
	// KillGrace is the SIGTERM-to-SIGKILL window; default 3s.
	KillGrace time.Duration
	// KillTimeout bounds the post-SIGKILL wait; default 10s.
	KillTimeout time.Duration
}

// Dispatcher runs engine invocations under a weighted semaphore, enforcing
// per-mode deadlines and tearing down the whole process group on cancel.
type Dispatcher struct {
	cfg    Config
	sem    *semaphore.Weighted
	prober *Prober
}

// NewDispatcher returns a Dispatcher over cfg.
func NewDispatcher(cfg Config) *Dispatcher {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = int64(runtime.NumCPU() / 2)
		if cfg.Concurrency < 1 {
			cfg.Concurrency = 1
		}
	}
	if cfg.FinalTimeout <= 0 {
		cfg.FinalTimeout = 10 * time.Minute
	}
	if cfg.PreviewTimeout <= 0 {
		cfg.PreviewTimeout = 2 * time.Minute
	}
	if cfg.KillGrace <= 0 {
		cfg.KillGrace = 3 * time.Second
	}
	if cfg.KillTimeout <= 0 {
		cfg.KillTimeout = 10 * time.Second
	}
	return &Dispatcher{
		cfg:    cfg,
		sem:    semaphore.NewWeighted(cfg.Concurrency),
		prober: NewProber(cfg.Binaries.FFprobe),
	}
}

// Prober exposes the audio-stream prober bound to the resolved ffprobe.
func (d *Dispatcher) Prober() *Prober { return d.prober }

func (d *Dispatcher) timeoutFor(mode Mode) time.Duration {
	if mode == ModeFinal {
		return d.cfg.FinalTimeout
	}
	return d.cfg.PreviewTimeout
}

// Run executes one engine invocation. It blocks on the concurrency semaphore
// until admitted or ctx is done, then runs the engine under the per-mode
// deadline. A deadline hit returns ErrTimeout; a non-zero exit returns an
// *ExitError carrying the stderr tail.
func (d *Dispatcher) Run(ctx context.Context, mode Mode, args []string) error {
	logger := xlog.WithComponentFromContext(ctx, "engine")

	if err := d.sem.Acquire(ctx, 1); err != nil {
		metrics.IncRenderExit(string(mode), "rejected")
		return fmt.Errorf("acquire render slot: %w", err)
	}
	defer d.sem.Release(1)

	metrics.IncRenderStart(string(mode))

	runCtx, cancel := context.WithTimeout(ctx, d.timeoutFor(mode))
	defer cancel()

	ring := NewLineRing(256)
	cmd := exec.Command(d.cfg.Binaries.FFmpeg, args...)
	cmd.Stderr = ring
	procgroup.Set(cmd)

	start := time.Now()
	if err := cmd.Start(); err != nil {
		metrics.IncRenderExit(string(mode), "start_error")
		return fmt.Errorf("start engine: %w", err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case <-runCtx.Done():
		logger.Warn().
			Str("mode", string(mode)).
			Int("pid", cmd.Process.Pid).
			Dur("elapsed", time.Since(start)).
			Msg("engine run cancelled, killing process group")
		if err := procgroup.KillGroup(cmd.Process.Pid, d.cfg.KillGrace, d.cfg.KillTimeout); err != nil {
			logger.Error().Err(err).Int("pid", cmd.Process.Pid).Msg("process group kill failed")
		}
		<-done
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			metrics.IncRenderExit(string(mode), "timeout")
			return ErrTimeout
		}
		metrics.IncRenderExit(string(mode), "cancelled")
		return runCtx.Err()

	case err := <-done:
		elapsed := time.Since(start)
		metrics.ObserveRenderDuration(string(mode), elapsed)
		if err != nil {
			metrics.IncRenderExit(string(mode), "error")
			code := -1
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				code = exitErr.ExitCode()
			}
			return &ExitError{Code: code, Stderr: ring.LastN(12)}
		}
		metrics.IncRenderExit(string(mode), "ok")
		logger.Info().
			Str("mode", string(mode)).
			Dur("elapsed", elapsed).
			Msg("engine run finished")
		return nil
	}
}
