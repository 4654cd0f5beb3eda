package internal

import (
	"math"
	"testing"
)

func fakeResult(command string, mean, stddev float64, count int) *BenchmarkResult {
	return &BenchmarkResult{
		Command: command,
		Stats:   Statistics{Count: count, Mean: mean, StdDev: stddev},
	}
}

func TestCompareResults(t *testing.T) {
	t.Run("zero variance gives an exact ratio with no uncertainty", func(t *testing.T) {
		results := []*BenchmarkResult{
			fakeResult("fast", 1.0, 0, 5),
			fakeResult("slow", 2.0, 0, 5),
		}
		ranking, ok := CompareResults(results)
		if !ok {
			t.Fatal("CompareResults() not computable")
		}
		if !ranking[0].Fastest || ranking[0].Ratio != 1.0 {
			t.Errorf("baseline row = %+v, want fastest with ratio 1.0", ranking[0])
		}
		if ranking[1].Ratio != 2.0 {
			t.Errorf("Ratio = %v, want exactly 2.0", ranking[1].Ratio)
		}
		if ranking[1].RatioStdDev != 0 {
			t.Errorf("RatioStdDev = %v, want exactly 0", ranking[1].RatioStdDev)
		}
	})

	t.Run("uncertainty propagates from both stddevs", func(t *testing.T) {
		results := []*BenchmarkResult{
			fakeResult("a", 1.0, 0.1, 5),
			fakeResult("b", 2.0, 0.2, 5),
		}
		ranking, _ := CompareResults(results)
		// 2.0 * sqrt((0.2/2)^2 + (0.1/1)^2)
		want := 2.0 * math.Sqrt(0.01+0.01)
		if math.Abs(ranking[1].RatioStdDev-want) > 1e-12 {
			t.Errorf("RatioStdDev = %v, want %v", ranking[1].RatioStdDev, want)
		}
	})

	t.Run("fewer than two completed results", func(t *testing.T) {
		if _, ok := CompareResults([]*BenchmarkResult{fakeResult("only", 1, 0, 3)}); ok {
			t.Error("CompareResults() computable with a single result")
		}
	})

	t.Run("aborted results are excluded from the ranking", func(t *testing.T) {
		aborted := fakeResult("broken", 0.1, 0, 2)
		aborted.Incomplete = true
		aborted.Failure = FailureRun
		results := []*BenchmarkResult{
			aborted,
			fakeResult("a", 1.0, 0, 5),
			fakeResult("b", 3.0, 0, 5),
		}
		ranking, ok := CompareResults(results)
		if !ok {
			t.Fatal("CompareResults() not computable")
		}
		for _, row := range ranking {
			if row.Command == "broken" {
				t.Error("aborted command appeared in the ranking")
			}
		}
		if ranking[1].Ratio != 3.0 {
			t.Errorf("Ratio = %v, want 3.0 against the completed baseline", ranking[1].Ratio)
		}
	})

	t.Run("zero baseline mean is not computable", func(t *testing.T) {
		results := []*BenchmarkResult{
			fakeResult("a", 0, 0, 5),
			fakeResult("b", 1, 0, 5),
		}
		if _, ok := CompareResults(results); ok {
			t.Error("CompareResults() computable with zero baseline mean")
		}
	})
}
