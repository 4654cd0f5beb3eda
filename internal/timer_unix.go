//go:build !windows

package internal

import (
	"os"
	"os/exec"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// processTree tracks one spawned command and its descendants through a
// dedicated process group. The child becomes the group leader at spawn, so
// everything it forks stays addressable via the negative pgid even after
// the child itself exits.
type processTree struct {
	pgid int
}

func newProcessTree() *processTree {
	return &processTree{}
}

func (t *processTree) prepare(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func (t *processTree) attach(cmd *exec.Cmd) {
	t.pgid = cmd.Process.Pid
}

// waitRemaining blocks until the process group is empty. The direct child
// has already been reaped by Wait; orphaned grandchildren are not our
// children and cannot be waited on, so group liveness is probed with
// signal 0 instead.
//
// The probe cannot tell our group from a recycled one: the pgid is the
// reaped child's pid, and if the kernel hands that pid to an unrelated
// group leader while we poll, the group looks live again. Linux allocates
// pids cyclically, so reuse inside the 200µs poll interval would require
// the whole pid space to turn over in between; the window is accepted.
func (t *processTree) waitRemaining() {
	if t.pgid == 0 {
		return
	}
	for {
		err := unix.Kill(-t.pgid, 0)
		if err == unix.ESRCH {
			return
		}
		if err != nil && err != unix.EPERM {
			return
		}
		if Interrupted() {
			t.kill()
		}
		time.Sleep(200 * time.Microsecond)
	}
}

// cpuTimes aggregates user and system CPU time from the child's rusage,
// which accumulates every descendant the child waited for.
func (t *processTree) cpuTimes(state *os.ProcessState) (time.Duration, time.Duration) {
	usage, ok := state.SysUsage().(*syscall.Rusage)
	if !ok {
		return 0, 0
	}
	return time.Duration(usage.Utime.Nano()), time.Duration(usage.Stime.Nano())
}

func (t *processTree) kill() {
	if t.pgid != 0 {
		unix.Kill(-t.pgid, unix.SIGKILL)
	}
}

func (t *processTree) close() {}
