package internal

import (
	"math"
	"sort"

	"github.com/gonum/stat"
)

// Outlier detection follows the modified z-score method used by hyperfine
// (https://github.com/sharkdp/hyperfine/blob/master/src/outlier_detection.rs).
// The constants are policy, not algorithm: they can be tuned without
// touching the computation below.
const (
	// MADScaleFactor makes the MAD a consistent estimator of the standard
	// deviation under a normal distribution.
	MADScaleFactor = 1.4826
	// modifiedZScoreFactor converts deviations from the median into MAD
	// units comparable with ordinary z-scores.
	modifiedZScoreFactor = 0.6745
	// OutlierThreshold flags only extreme stalls (page faults, scheduler
	// preemption), not ordinary run-to-run jitter.
	OutlierThreshold = 10.0
)

// Statistics is the aggregate over one command's measured run durations,
// in seconds. It is derived once from a finalized run sequence and never
// mutated afterwards.
type Statistics struct {
	Count    int
	Mean     float64
	StdDev   float64
	Median   float64
	MAD      float64
	Min      float64
	Max      float64
	Outliers []int
}

// ComputeStatistics derives the statistical summary of the given run
// durations. It is pure: identical inputs always produce identical output,
// and the input slice is left untouched.
func ComputeStatistics(times []float64) Statistics {
	if len(times) == 0 {
		return Statistics{}
	}

	sorted := append([]float64{}, times...)
	sort.Float64s(sorted)

	s := Statistics{
		Count:  len(times),
		Mean:   stat.Mean(times, nil),
		Median: medianSorted(sorted),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
	}
	// stat.StdDev is Bessel-corrected and would divide by zero for a
	// single observation
	if s.Count > 1 {
		s.StdDev = stat.StdDev(times, nil)
	}

	s.MAD = MADScaleFactor * rawMAD(times, s.Median)
	s.Outliers = flagOutliers(times, s.Median)
	return s
}

// rawMAD returns the unscaled median absolute deviation from the median.
func rawMAD(times []float64, median float64) float64 {
	deviations := make([]float64, len(times))
	for i, t := range times {
		deviations[i] = math.Abs(t - median)
	}
	sort.Float64s(deviations)
	return medianSorted(deviations)
}

// flagOutliers returns the indices of runs whose modified z-score exceeds
// the outlier threshold. A zero MAD (at least half the runs identical)
// makes the score undefined, so no runs are flagged.
func flagOutliers(times []float64, median float64) []int {
	mad := rawMAD(times, median)
	if mad == 0 {
		return nil
	}

	var outliers []int
	for i, t := range times {
		if modifiedZScoreFactor*math.Abs(t-median)/mad > OutlierThreshold {
			outliers = append(outliers, i)
		}
	}
	return outliers
}

// medianSorted returns the median of an already sorted slice.
func medianSorted(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}
