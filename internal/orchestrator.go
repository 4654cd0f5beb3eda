package internal

import (
	"fmt"
	"math"
)

// RelativeSpeed is one row of the cross-command ranking: how many times
// slower the command ran compared to the fastest one, with the uncertainty
// of that ratio propagated from both commands' standard deviations.
type RelativeSpeed struct {
	Command     string
	Ratio       float64
	RatioStdDev float64
	Fastest     bool
}

// RunBenchmarks expands the command templates over the parameter
// definitions and benchmarks every concrete command in expansion order.
// Results are returned in that same order. A failure local to one command
// never stops the remaining commands; only a ParameterError (returned as
// the error) aborts before any execution.
func RunBenchmarks(templates []string, params []ParamValues, opts BenchmarkOptions, correctOverhead bool) ([]*BenchmarkResult, error) {
	commands, err := ExpandCommands(templates, params)
	if err != nil {
		return nil, err
	}

	if correctOverhead && opts.Shell != "" {
		overhead, err := MeasureShellOverhead(opts.Shell, opts.Progress)
		if err != nil {
			return nil, err
		}
		opts.ShellOverhead = overhead
	}

	var results []*BenchmarkResult
	for _, command := range commands {
		if Interrupted() {
			break
		}
		results = append(results, NewScheduler(command, opts).Run())
	}
	return results, nil
}

// CompareResults computes the relative-speed ranking over the completed
// results: the command with the lowest mean is the 1.00x baseline. The
// second return value is false when no comparison is possible, either
// because fewer than two commands completed or because the baseline mean
// is zero (command too fast to measure).
func CompareResults(results []*BenchmarkResult) ([]RelativeSpeed, bool) {
	var completed []*BenchmarkResult
	for _, r := range results {
		if !r.Incomplete && r.Stats.Count > 0 {
			completed = append(completed, r)
		}
	}
	if len(completed) < 2 {
		return nil, false
	}

	fastest := completed[0]
	for _, r := range completed[1:] {
		if r.Stats.Mean < fastest.Stats.Mean {
			fastest = r
		}
	}
	if fastest.Stats.Mean == 0 {
		return nil, false
	}

	ranking := make([]RelativeSpeed, 0, len(completed))
	for _, r := range completed {
		ranking = append(ranking, RelativeSpeed{
			Command:     r.Command,
			Ratio:       r.Stats.Mean / fastest.Stats.Mean,
			RatioStdDev: ratioStdDev(r.Stats, fastest.Stats),
			Fastest:     r == fastest,
		})
	}
	return ranking, true
}

// ratioStdDev propagates the uncertainty of a ratio of two independent
// means: ratio * sqrt((sa/ma)^2 + (sb/mb)^2).
func ratioStdDev(a, b Statistics) float64 {
	if a.Mean == 0 || b.Mean == 0 {
		return 0
	}
	ra := a.StdDev / a.Mean
	rb := b.StdDev / b.Mean
	return a.Mean / b.Mean * math.Sqrt(ra*ra+rb*rb)
}

// WriteComparison prints the relative-speed summary for the given results,
// hyperfine style. It is a no-op for fewer than two completed results.
func WriteComparison(results []*BenchmarkResult) {
	ranking, ok := CompareResults(results)
	if !ok {
		if len(results) >= 2 {
			Log("yellow", "\nSummary could not be computed: some benchmark means are zero or too few benchmarks completed.")
		}
		return
	}

	var fastest RelativeSpeed
	for _, row := range ranking {
		if row.Fastest {
			fastest = row
		}
	}

	Log("white", "\nSummary")
	Log("cyan", "  '"+fastest.Command+"' ran")
	for _, row := range ranking {
		if row.Fastest {
			continue
		}
		line := fmt.Sprintf("  %.2f", row.Ratio)
		if row.RatioStdDev > 0 {
			line += fmt.Sprintf(" ± %.2f", row.RatioStdDev)
		}
		Log("green", line+" times faster than '"+row.Command+"'")
	}
}
