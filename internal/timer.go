package internal

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/shlex"
)

// SpawnError indicates that a command or its shell could not be launched at
// all (binary missing, permission denied). It is fatal for the affected
// command only; a non-zero exit of a launched command is not a SpawnError.
type SpawnError struct {
	Command string
	Err     error
}

func (se *SpawnError) Error() string {
	return fmt.Sprintf("failed to spawn `%s`: %v", se.Command, se.Err)
}

func (se *SpawnError) Unwrap() error {
	return se.Err
}

// ExecutionOutcome is the measurement of a single process spawn: wall clock
// time for the whole process tree, user/system CPU time, and the exit code.
type ExecutionOutcome struct {
	Elapsed   time.Duration
	User      time.Duration
	System    time.Duration
	ExitCode  int
	Cancelled bool
}

// Failed reports whether the run exited with a non-zero code.
func (eo *ExecutionOutcome) Failed() bool {
	return eo.ExitCode != 0
}

var interrupted atomic.Bool

var (
	currentTreeMu sync.Mutex
	currentTree   *processTree
)

// NotifyInterrupt records a user interrupt and forcefully terminates the
// process tree currently being timed, if any. It is meant to be called once
// from the signal handler; the scheduler observes the flag between runs.
func NotifyInterrupt() {
	interrupted.Store(true)
	currentTreeMu.Lock()
	defer currentTreeMu.Unlock()
	if currentTree != nil {
		currentTree.kill()
	}
}

// Interrupted reports whether a user interrupt was delivered.
func Interrupted() bool {
	return interrupted.Load()
}

// ResetInterrupt clears the interrupt flag. Used by tests.
func ResetInterrupt() {
	interrupted.Store(false)
}

func setCurrentTree(t *processTree) {
	currentTreeMu.Lock()
	currentTree = t
	currentTreeMu.Unlock()
}

// BuildCommand tokenizes the given command string, prefixing it with the
// shell invocation if shell is non-empty. The shell string may itself carry
// arguments ("bash --norc").
func BuildCommand(command string, shell string) ([]string, error) {
	if shell == "" {
		return shlex.Split(command)
	}
	shellTokens, err := shlex.Split(shell)
	if err != nil {
		return nil, err
	}
	if len(shellTokens) == 0 {
		return nil, fmt.Errorf("empty shell command")
	}
	return append(shellTokens, shellCommandFlag(shellTokens[0]), command), nil
}

// shellCommandFlag returns the flag the given shell uses to accept a command
// string. cmd.exe is the only common shell not taking -c.
func shellCommandFlag(shell string) string {
	base := strings.ToLower(shell)
	if i := strings.LastIndexAny(base, `/\`); i != -1 {
		base = base[i+1:]
	}
	if base == "cmd" || base == "cmd.exe" {
		return "/C"
	}
	return "-c"
}

// RunCommand spawns the given (already tokenized) command, waits for it and
// every process it transitively spawns to exit, and returns the measured
// outcome. The command's exit code, zero or not, is data in the outcome;
// only a failure to launch is returned as an error.
func RunCommand(command []string, showOutput bool) (*ExecutionOutcome, error) {
	if len(command) == 0 {
		return nil, &SpawnError{Command: "", Err: fmt.Errorf("empty command")}
	}

	cmd := exec.Command(command[0], command[1:]...)
	if showOutput {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}

	tree := newProcessTree()
	tree.prepare(cmd)

	// time.Now carries a monotonic reading, so the Sub below is immune to
	// wall clock adjustments
	start := time.Now()
	if err := cmd.Start(); err != nil {
		tree.close()
		return nil, &SpawnError{Command: strings.Join(command, " "), Err: err}
	}
	tree.attach(cmd)
	setCurrentTree(tree)
	if Interrupted() {
		// interrupt raced with the spawn, make sure the tree dies
		tree.kill()
	}

	waitErr := cmd.Wait()
	tree.waitRemaining()
	elapsed := time.Since(start)

	if waitErr != nil {
		if _, ok := waitErr.(*exec.ExitError); !ok {
			setCurrentTree(nil)
			tree.close()
			return nil, &SpawnError{Command: strings.Join(command, " "), Err: waitErr}
		}
	}

	user, system := tree.cpuTimes(cmd.ProcessState)
	// detach from the interrupt handler before releasing the tree handle
	setCurrentTree(nil)
	tree.close()

	return &ExecutionOutcome{
		Elapsed:   elapsed,
		User:      user,
		System:    system,
		ExitCode:  cmd.ProcessState.ExitCode(),
		Cancelled: Interrupted(),
	}, nil
}
