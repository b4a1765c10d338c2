// SPDX-License-Identifier: MIT

package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeEngine writes an executable shell script standing in for ffmpeg.
func fakeEngine(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fakes require a unix shell")
	}
	p := filepath.Join(t.TempDir(), "ffmpeg")
	require.NoError(t, os.WriteFile(p, []byte("#!/bin/sh\n"+script), 0o755))
	return p
}

func TestDispatcher_Success(t *testing.T) {
	bin := fakeEngine(t, "exit 0")
	d := NewDispatcher(Config{Binaries: Binaries{FFmpeg: bin}})

	err := d.Run(context.Background(), ModePreview, []string{"-version"})
	assert.NoError(t, err)
}

func TestDispatcher_ExitErrorCarriesStderrTail(t *testing.T) {
	bin := fakeEngine(t, `echo "first bad thing" >&2
echo "second bad thing" >&2
exit 3`)
	d := NewDispatcher(Config{Binaries: Binaries{FFmpeg: bin}})

	err := d.Run(context.Background(), ModeFinal, nil)
	require.Error(t, err)

	var xErr *ExitError
	require.ErrorAs(t, err, &xErr)
	assert.Equal(t, 3, xErr.Code)
	assert.Equal(t, []string{"first bad thing", "second bad thing"}, xErr.Stderr)
	assert.Contains(t, xErr.Error(), "exited with code 3")
	assert.Contains(t, xErr.Error(), "first bad thing | second bad thing")
}

func TestDispatcher_TimeoutKillsProcessGroup(t *testing.T) {
	bin := fakeEngine(t, "sleep 30")
	d := NewDispatcher(Config{
		Binaries:       Binaries{FFmpeg: bin},
		PreviewTimeout: 150 * time.Millisecond,
		KillGrace:      100 * time.Millisecond,
		KillTimeout:    2 * time.Second,
	})

	start := time.Now()
	err := d.Run(context.Background(), ModePreview, nil)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, time.Since(start), 10*time.Second, "kill must not wait out the sleep")
}

func TestDispatcher_ParentCancelIsNotATimeout(t *testing.T) {
	bin := fakeEngine(t, "sleep 30")
	d := NewDispatcher(Config{
		Binaries:    Binaries{FFmpeg: bin},
		KillGrace:   100 * time.Millisecond,
		KillTimeout: 2 * time.Second,
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(150 * time.Millisecond)
		cancel()
	}()

	err := d.Run(ctx, ModePreview, nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTimeout)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDispatcher_RejectsWhenSaturated(t *testing.T) {
	bin := fakeEngine(t, "exit 0")
	d := NewDispatcher(Config{Binaries: Binaries{FFmpeg: bin}, Concurrency: 1})

	// Hold the only slot, then admit with an expired context.
	require.NoError(t, d.sem.Acquire(context.Background(), 1))
	defer d.sem.Release(1)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := d.Run(ctx, ModePreview, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Contains(t, err.Error(), "acquire render slot")
}

func TestDispatcher_Defaults(t *testing.T) {
	d := NewDispatcher(Config{})
	assert.Equal(t, 10*time.Minute, d.cfg.FinalTimeout)
	assert.Equal(t, 2*time.Minute, d.cfg.PreviewTimeout)
	assert.GreaterOrEqual(t, d.cfg.Concurrency, int64(1))
	assert.Equal(t, d.cfg.FinalTimeout, d.timeoutFor(ModeFinal))
	assert.Equal(t, d.cfg.PreviewTimeout, d.timeoutFor(ModePreview))
	assert.Equal(t, d.cfg.PreviewTimeout, d.timeoutFor(ModeStill))
	assert.NotNil(t, d.Prober())
}

func TestProber_HasAudio(t *testing.T) {
	yes := fakeEngine(t, `echo '{"streams":[{"index":1}]}'`)
	assert.True(t, NewProber(yes).HasAudio(context.Background(), "x.mp4"))

	no := fakeEngine(t, `echo '{"streams":[]}'`)
	assert.False(t, NewProber(no).HasAudio(context.Background(), "x.mp4"))

	broken := fakeEngine(t, "exit 1")
	assert.False(t, NewProber(broken).HasAudio(context.Background(), "x.mp4"))

	garbage := fakeEngine(t, "echo not-json")
	assert.False(t, NewProber(garbage).HasAudio(context.Background(), "x.mp4"))
}

func TestResolveBinaries(t *testing.T) {
	dir := t.TempDir()
	ff := filepath.Join(dir, "ffmpeg")
	fp := filepath.Join(dir, "ffprobe")
	require.NoError(t, os.WriteFile(ff, []byte("#!/bin/sh\n"), 0o755))
	require.NoError(t, os.WriteFile(fp, []byte("#!/bin/sh\n"), 0o755))

	bins, err := ResolveBinaries(ff, fp)
	require.NoError(t, err)
	assert.Equal(t, ff, bins.FFmpeg)
	assert.Equal(t, fp, bins.FFprobe)

	_, err = ResolveBinaries(filepath.Join(dir, "missing"), fp)
	assert.Error(t, err)
}
