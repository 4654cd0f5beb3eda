package internal

import (
	"time"
)

const (
	shellOverheadWarmups = 5
	shellOverheadRuns    = 20
)

// MeasureShellOverhead benchmarks an empty command through the exact
// configured shell and returns the mean wall time, to be subtracted from
// measured runs when overhead correction is enabled. The measurement uses
// the same warmup-then-measure discipline as a regular benchmark, at a
// reduced run count.
func MeasureShellOverhead(shell string, progress ProgressListener) (time.Duration, error) {
	command, err := BuildCommand("", shell)
	if err != nil {
		return 0, err
	}

	if progress != nil {
		progress.PhaseStarted("Measuring shell spawn time", shellOverheadWarmups+shellOverheadRuns)
	}

	for i := 0; i < shellOverheadWarmups; i++ {
		if _, err := RunCommand(command, false); err != nil {
			return 0, err
		}
		if progress != nil {
			progress.RunCompleted(0)
		}
	}

	var total time.Duration
	for i := 0; i < shellOverheadRuns; i++ {
		outcome, err := RunCommand(command, false)
		if err != nil {
			return 0, err
		}
		total += outcome.Elapsed
		if progress != nil {
			progress.RunCompleted(outcome.Elapsed)
		}
	}

	if progress != nil {
		progress.PhaseFinished()
	}
	return total / shellOverheadRuns, nil
}

// CorrectedSeconds subtracts the shell overhead baseline from a measured
// wall time and returns the result in seconds. Measurement noise can push
// the difference below zero; it is clamped to exactly zero so negative
// durations never reach the statistics.
func CorrectedSeconds(elapsed, overhead time.Duration) float64 {
	corrected := elapsed - overhead
	if corrected < 0 {
		return 0
	}
	return corrected.Seconds()
}
