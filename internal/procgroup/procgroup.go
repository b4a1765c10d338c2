// SPDX-License-Identifier: MIT

// Package procgroup spawns subprocesses as process-group leaders so that an
// engine invocation and everything it forks can be reaped as one unit.
package procgroup

import (
	"errors"
	"os/exec"
	"time"
)

// ErrKillFailed reports that the group survived SIGKILL past the timeout.
var ErrKillFailed = errors.New("kill operation failed")

// Set configures cmd to start in a new process group. Required before
// KillGroup can act as a group reaper.
func Set(cmd *exec.Cmd) {
	set(cmd)
}

// KillGroup terminates the process group rooted at pid: SIGTERM, wait up to
// grace, then SIGKILL with a final timeout. The process must have been
// started via a command prepared with Set.
func KillGroup(pid int, grace, timeout time.Duration) error {
	return killGroup(pid, grace, timeout)
}
