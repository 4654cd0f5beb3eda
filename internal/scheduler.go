package internal

import (
	"fmt"
	"time"
)

// benchmarkState is the scheduler's phase for one concrete command. The
// progression is Preparing -> WarmingUp -> Measuring -> Finalizing -> Done,
// with Aborted reachable from every state.
type benchmarkState int

const (
	statePreparing benchmarkState = iota
	stateWarmingUp
	stateMeasuring
	stateFinalizing
	stateDone
	stateAborted
)

// FailureKind classifies how a benchmark ended when it did not complete
// normally.
type FailureKind int

const (
	FailureNone FailureKind = iota
	// FailureSpawn: the command or its shell could not be launched.
	FailureSpawn
	// FailurePreparation: the prepare command exited non-zero.
	FailurePreparation
	// FailureRun: a measured run exited non-zero under the stop-on-error policy.
	FailureRun
	// FailureCancelled: the user interrupted the benchmark.
	FailureCancelled
)

func (fk FailureKind) String() string {
	switch fk {
	case FailureNone:
		return "ok"
	case FailureSpawn:
		return "spawn failed"
	case FailurePreparation:
		return "preparation failed"
	case FailureRun:
		return "run failed"
	case FailureCancelled:
		return "cancelled"
	}
	return "unknown"
}

// RunRecord is one measured (non-warmup) execution, tagged with its ordinal
// index within the benchmark.
type RunRecord struct {
	Index   int
	Outcome ExecutionOutcome
}

// ProgressListener receives scheduling progress so that a UI layer can
// render it. All methods may be called with a nil receiver guard upstream;
// the scheduler itself only calls a non-nil listener.
type ProgressListener interface {
	PhaseStarted(description string, totalRuns int)
	RunCompleted(elapsed time.Duration)
	PhaseFinished()
}

// BenchmarkOptions is the scheduling configuration shared by every
// benchmarked command, resolved and validated by the CLI layer.
type BenchmarkOptions struct {
	Shell         string // empty means no shell
	WarmupRuns    int
	MinRuns       int
	MaxRuns       int // 0 means unset: the time budget governs alone
	MinBenchTime  time.Duration
	Prepare       string
	Cleanup       string
	PrepareOnce   bool // run the prepare command once instead of before every measured run
	IgnoreFailure bool
	ShowOutput    bool
	ShellOverhead time.Duration
	Verbose       bool
	Progress      ProgressListener
}

// Scheduler drives the measurement of a single concrete command through its
// phases, collecting RunRecords. Runs are strictly sequential; overlapping
// them would contend for CPU and cache and corrupt the comparison.
type Scheduler struct {
	command ConcreteCommand
	opts    BenchmarkOptions
	state   benchmarkState
	records []RunRecord
}

// NewScheduler returns a scheduler for one concrete command.
func NewScheduler(command ConcreteCommand, opts BenchmarkOptions) *Scheduler {
	return &Scheduler{command: command, opts: opts, state: statePreparing}
}

// Run executes the full benchmark for the scheduler's command and returns
// its result. RunRecords collected before an abort are preserved in the
// result so partial measurements can still be reported.
func (s *Scheduler) Run() *BenchmarkResult {
	tokens, err := BuildCommand(s.command.Rendered, s.opts.Shell)
	if err != nil {
		return s.failedResult(FailureSpawn, err)
	}

	if failure, err := s.runPhases(tokens); failure != FailureNone {
		return s.failedResult(failure, err)
	}

	s.state = stateDone
	return s.newResult(FailureNone, nil)
}

func (s *Scheduler) runPhases(tokens []string) (FailureKind, error) {
	// Preparing
	s.state = statePreparing
	if s.opts.PrepareOnce {
		if failure, err := s.prepare(); failure != FailureNone {
			return failure, err
		}
	}

	// WarmingUp
	s.state = stateWarmingUp
	if s.opts.WarmupRuns > 0 {
		s.startPhase("Performing warmup runs", s.opts.WarmupRuns)
		for i := 0; i < s.opts.WarmupRuns; i++ {
			if Interrupted() {
				s.finishPhase()
				return FailureCancelled, nil
			}
			outcome, err := RunCommand(tokens, s.opts.ShowOutput)
			if err != nil {
				s.finishPhase()
				return FailureSpawn, err
			}
			if outcome.Cancelled {
				s.finishPhase()
				return FailureCancelled, nil
			}
			// warmup outcomes are discarded, including their exit status,
			// unless failure checking is on globally
			if !s.opts.IgnoreFailure && outcome.Failed() {
				s.finishPhase()
				return FailureRun, fmt.Errorf("warmup run exited with code %d", outcome.ExitCode)
			}
			s.tick(outcome.Elapsed)
		}
		s.finishPhase()
	}

	// Measuring
	s.state = stateMeasuring
	s.startPhase("Performing benchmark runs", s.measuringTotal())
	defer s.finishPhase()

	var cumulative time.Duration
	for index := 0; ; index++ {
		if Interrupted() {
			return FailureCancelled, nil
		}
		if !s.opts.PrepareOnce {
			if failure, err := s.prepare(); failure != FailureNone {
				return failure, err
			}
		}

		outcome, err := RunCommand(tokens, s.opts.ShowOutput)
		if err != nil {
			return FailureSpawn, err
		}
		if outcome.Cancelled {
			// a killed run is truncated at the kill point, not a
			// measurement; only runs that finished on their own count
			return FailureCancelled, nil
		}
		s.records = append(s.records, RunRecord{Index: index, Outcome: *outcome})
		cumulative += outcome.Elapsed
		s.tick(outcome.Elapsed)

		if outcome.Failed() && !s.opts.IgnoreFailure {
			// the failing run stays in s.records for diagnostics
			return FailureRun, fmt.Errorf("command exited with code %d", outcome.ExitCode)
		}

		runs := len(s.records)
		if runs >= s.opts.MinRuns {
			if s.opts.MaxRuns > 0 && runs >= s.opts.MaxRuns {
				break
			}
			if cumulative >= s.opts.MinBenchTime {
				break
			}
		}
	}

	// Finalizing
	s.state = stateFinalizing
	s.cleanup()
	return FailureNone, nil
}

// prepare runs the configured preparation command, discarding its timing.
// A non-zero exit aborts the benchmark unless failures are ignored.
func (s *Scheduler) prepare() (FailureKind, error) {
	if s.opts.Prepare == "" {
		return FailureNone, nil
	}
	tokens, err := BuildCommand(s.opts.Prepare, s.opts.Shell)
	if err != nil {
		return FailurePreparation, err
	}
	outcome, err := RunCommand(tokens, s.opts.ShowOutput)
	if err != nil {
		return FailurePreparation, err
	}
	if outcome.Cancelled {
		return FailureCancelled, nil
	}
	if outcome.Failed() && !s.opts.IgnoreFailure {
		return FailurePreparation, fmt.Errorf("preparation command exited with code %d", outcome.ExitCode)
	}
	return FailureNone, nil
}

// cleanup runs the configured cleanup command. Its failure never aborts an
// otherwise successful measurement; it is only logged.
func (s *Scheduler) cleanup() {
	if s.opts.Cleanup == "" {
		return
	}
	tokens, err := BuildCommand(s.opts.Cleanup, s.opts.Shell)
	if err != nil {
		Log("yellow", "Warning: cleanup command could not be parsed: "+err.Error())
		return
	}
	outcome, err := RunCommand(tokens, s.opts.ShowOutput)
	if err != nil {
		Log("yellow", "Warning: cleanup command could not be run: "+err.Error())
		return
	}
	if outcome.Failed() {
		Log("yellow", fmt.Sprintf("Warning: cleanup command exited with code %d.", outcome.ExitCode))
	}
}

// measuringTotal is the best progress-bar estimate of how many measured
// runs will happen.
func (s *Scheduler) measuringTotal() int {
	if s.opts.MaxRuns > 0 {
		return s.opts.MaxRuns
	}
	return s.opts.MinRuns
}

func (s *Scheduler) startPhase(description string, total int) {
	if s.opts.Progress != nil {
		s.opts.Progress.PhaseStarted(description, total)
	}
}

func (s *Scheduler) tick(elapsed time.Duration) {
	if s.opts.Progress != nil {
		s.opts.Progress.RunCompleted(elapsed)
	}
}

func (s *Scheduler) finishPhase() {
	if s.opts.Progress != nil {
		s.opts.Progress.PhaseFinished()
	}
}

func (s *Scheduler) failedResult(failure FailureKind, err error) *BenchmarkResult {
	s.state = stateAborted
	return s.newResult(failure, err)
}

// newResult snapshots the collected RunRecords into a BenchmarkResult,
// applying the shell overhead correction uniformly to every run before
// statistics are computed.
func (s *Scheduler) newResult(failure FailureKind, err error) *BenchmarkResult {
	times := make([]float64, len(s.records))
	var user, system float64
	for i, rec := range s.records {
		times[i] = CorrectedSeconds(rec.Outcome.Elapsed, s.opts.ShellOverhead)
		user += rec.Outcome.User.Seconds()
		system += rec.Outcome.System.Seconds()
	}
	if n := float64(len(s.records)); n > 0 {
		user /= n
		system /= n
	}

	result := &BenchmarkResult{
		Command:    s.command.Rendered,
		Params:     s.command.Params,
		Times:      times,
		Stats:      ComputeStatistics(times),
		MeanUser:   user,
		MeanSystem: system,
		Failure:    failure,
		Incomplete: failure != FailureNone,
	}
	if err != nil {
		result.Error = err.Error()
	}
	return result
}
