//go:build windows

package internal

import (
	"os"
	"os/exec"
	"syscall"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

// processTree tracks one spawned command and its descendants through a job
// object. Children are attached to the job at creation time by the kernel,
// so the tree stays observable even after the direct child exits.
type processTree struct {
	job windows.Handle
}

func newProcessTree() *processTree {
	job, err := windows.CreateJobObject(nil, nil)
	if err != nil {
		return &processTree{}
	}
	return &processTree{job: job}
}

func (t *processTree) prepare(cmd *exec.Cmd) {
	// start suspended so the child cannot fork grandchildren before it has
	// joined the job; attach resumes it once the assignment is done
	cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: windows.CREATE_SUSPENDED}
}

func (t *processTree) attach(cmd *exec.Cmd) {
	pid := uint32(cmd.Process.Pid)
	if t.job != 0 {
		handle, err := windows.OpenProcess(
			windows.PROCESS_SET_QUOTA|windows.PROCESS_TERMINATE, false, pid)
		if err == nil {
			windows.AssignProcessToJobObject(t.job, handle)
			windows.CloseHandle(handle)
		}
	}
	// the child must be resumed even when the job assignment failed, or it
	// would stay suspended forever
	resumeProcess(pid)
}

// resumeProcess resumes the threads of a process created with
// CREATE_SUSPENDED. A freshly spawned process has exactly one thread.
func resumeProcess(pid uint32) {
	snapshot, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPTHREAD, 0)
	if err != nil {
		return
	}
	defer windows.CloseHandle(snapshot)

	var entry windows.ThreadEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))
	for err := windows.Thread32First(snapshot, &entry); err == nil; err = windows.Thread32Next(snapshot, &entry) {
		if entry.OwnerProcessID != pid {
			continue
		}
		thread, err := windows.OpenThread(windows.THREAD_SUSPEND_RESUME, false, entry.ThreadID)
		if err != nil {
			continue
		}
		windows.ResumeThread(thread)
		windows.CloseHandle(thread)
	}
}

func (t *processTree) accounting() (*windows.JOBOBJECT_BASIC_ACCOUNTING_INFORMATION, error) {
	var info windows.JOBOBJECT_BASIC_ACCOUNTING_INFORMATION
	err := windows.QueryInformationJobObject(
		t.job, windows.JobObjectBasicAccountingInformation,
		uintptr(unsafe.Pointer(&info)), uint32(unsafe.Sizeof(info)), nil)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// waitRemaining blocks until the job's active process count drops to zero.
func (t *processTree) waitRemaining() {
	if t.job == 0 {
		return
	}
	for {
		info, err := t.accounting()
		if err != nil || info.ActiveProcesses == 0 {
			return
		}
		if Interrupted() {
			t.kill()
		}
		time.Sleep(200 * time.Microsecond)
	}
}

// cpuTimes reads aggregated user and kernel time for every process that was
// ever part of the job. Job times are reported in 100ns units.
func (t *processTree) cpuTimes(state *os.ProcessState) (time.Duration, time.Duration) {
	if t.job != 0 {
		if info, err := t.accounting(); err == nil {
			return time.Duration(info.TotalUserTime) * 100, time.Duration(info.TotalKernelTime) * 100
		}
	}
	return state.UserTime(), state.SystemTime()
}

func (t *processTree) kill() {
	if t.job != 0 {
		windows.TerminateJobObject(t.job, 1)
	}
}

func (t *processTree) close() {
	if t.job != 0 {
		windows.CloseHandle(t.job)
		t.job = 0
	}
}
