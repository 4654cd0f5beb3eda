//go:build !windows

package internal

import (
	"errors"
	"testing"
)

func TestRunBenchmarksOrderAndIsolation(t *testing.T) {
	ResetInterrupt()
	opts := BenchmarkOptions{MinRuns: 1, MaxRuns: 1}

	results, err := RunBenchmarks(
		[]string{"true {n}", "definitely-not-a-real-binary-4631"},
		[]ParamValues{{Name: "n", Values: []string{"1", "2"}}},
		opts, false,
	)
	if err != nil {
		t.Fatal(err)
	}

	// expansion order: both parameterized commands, then the broken one
	want := []string{"true 1", "true 2", "definitely-not-a-real-binary-4631"}
	if len(results) != len(want) {
		t.Fatalf("got %d results, want %d", len(results), len(want))
	}
	for i, r := range results {
		if r.Command != want[i] {
			t.Errorf("results[%d].Command = %q, want %q", i, r.Command, want[i])
		}
	}

	// the spawn failure of the last command must not taint the others
	if results[0].Incomplete || results[1].Incomplete {
		t.Error("completed commands marked incomplete")
	}
	if results[2].Failure != FailureSpawn {
		t.Errorf("results[2].Failure = %s, want %s", results[2].Failure, FailureSpawn)
	}
}

func TestRunBenchmarksParameterError(t *testing.T) {
	ResetInterrupt()
	_, err := RunBenchmarks([]string{"run {undefined}"}, nil, BenchmarkOptions{MinRuns: 1, MaxRuns: 1}, false)
	var perr *ParameterError
	if !errors.As(err, &perr) {
		t.Fatalf("RunBenchmarks() error = %v, want *ParameterError", err)
	}
}
