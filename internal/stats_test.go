package internal

import (
	"math"
	"reflect"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestComputeStatistics(t *testing.T) {
	tests := []struct {
		name       string
		times      []float64
		wantMean   float64
		wantStdDev float64
		wantMedian float64
		wantMin    float64
		wantMax    float64
	}{
		{
			name:       "all equal values have zero stddev",
			times:      []float64{2.5, 2.5, 2.5, 2.5},
			wantMean:   2.5,
			wantStdDev: 0,
			wantMedian: 2.5,
			wantMin:    2.5,
			wantMax:    2.5,
		},
		{
			name:       "single run reports zero stddev instead of dividing by zero",
			times:      []float64{1.25},
			wantMean:   1.25,
			wantStdDev: 0,
			wantMedian: 1.25,
			wantMin:    1.25,
			wantMax:    1.25,
		},
		{
			name:       "odd count median",
			times:      []float64{3, 1, 2},
			wantMean:   2,
			wantStdDev: 1,
			wantMedian: 2,
			wantMin:    1,
			wantMax:    3,
		},
		{
			name:       "even count median averages central values",
			times:      []float64{4, 1, 3, 2},
			wantMean:   2.5,
			wantStdDev: math.Sqrt(5.0 / 3.0),
			wantMedian: 2.5,
			wantMin:    1,
			wantMax:    4,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeStatistics(tt.times)
			if !almostEqual(got.Mean, tt.wantMean) {
				t.Errorf("Mean = %v, want %v", got.Mean, tt.wantMean)
			}
			if !almostEqual(got.StdDev, tt.wantStdDev) {
				t.Errorf("StdDev = %v, want %v", got.StdDev, tt.wantStdDev)
			}
			if !almostEqual(got.Median, tt.wantMedian) {
				t.Errorf("Median = %v, want %v", got.Median, tt.wantMedian)
			}
			if !almostEqual(got.Min, tt.wantMin) || !almostEqual(got.Max, tt.wantMax) {
				t.Errorf("Min/Max = %v/%v, want %v/%v", got.Min, got.Max, tt.wantMin, tt.wantMax)
			}
		})
	}
}

func TestMeanBetweenMinAndMax(t *testing.T) {
	samples := [][]float64{
		{0.5},
		{1, 2, 3, 4, 5},
		{0.001, 0.002, 10},
		{7, 7, 7, 7},
	}
	for _, times := range samples {
		s := ComputeStatistics(times)
		if s.Mean < s.Min || s.Mean > s.Max {
			t.Errorf("mean %v outside [%v, %v] for %v", s.Mean, s.Min, s.Max, times)
		}
	}
}

func TestComputeStatisticsLeavesInputUntouched(t *testing.T) {
	times := []float64{3, 1, 2}
	ComputeStatistics(times)
	if !reflect.DeepEqual(times, []float64{3, 1, 2}) {
		t.Errorf("input slice was reordered: %v", times)
	}
}

func TestOutlierFlagging(t *testing.T) {
	base := []float64{0.9, 0.95, 1.0, 1.05, 1.1, 10}

	t.Run("extreme stall is flagged", func(t *testing.T) {
		s := ComputeStatistics(base)
		if !reflect.DeepEqual(s.Outliers, []int{5}) {
			t.Errorf("Outliers = %v, want [5]", s.Outliers)
		}
	})

	t.Run("outlier indices are a subset of run indices", func(t *testing.T) {
		s := ComputeStatistics(base)
		for _, idx := range s.Outliers {
			if idx < 0 || idx >= len(base) {
				t.Errorf("outlier index %d out of range", idx)
			}
		}
	})

	t.Run("flagging is invariant under a constant offset", func(t *testing.T) {
		shifted := MapFunc[[]float64, []float64](func(v float64) float64 { return v + 5 }, base)
		if !reflect.DeepEqual(ComputeStatistics(base).Outliers, ComputeStatistics(shifted).Outliers) {
			t.Error("outlier flags changed under location shift")
		}
	})

	t.Run("flagging is invariant under positive scaling", func(t *testing.T) {
		scaled := MapFunc[[]float64, []float64](func(v float64) float64 { return v * 3 }, base)
		if !reflect.DeepEqual(ComputeStatistics(base).Outliers, ComputeStatistics(scaled).Outliers) {
			t.Error("outlier flags changed under positive scaling")
		}
	})

	t.Run("zero MAD skips flagging", func(t *testing.T) {
		s := ComputeStatistics([]float64{1, 1, 1, 1, 100})
		if s.Outliers != nil {
			t.Errorf("Outliers = %v, want none with zero MAD", s.Outliers)
		}
	})
}

func TestMADScaling(t *testing.T) {
	// raw MAD of {1,2,3,4,5} from median 3 is 1
	s := ComputeStatistics([]float64{1, 2, 3, 4, 5})
	if !almostEqual(s.MAD, MADScaleFactor) {
		t.Errorf("MAD = %v, want %v", s.MAD, MADScaleFactor)
	}
}

func TestComputeStatisticsEmpty(t *testing.T) {
	s := ComputeStatistics(nil)
	if s.Count != 0 || s.Mean != 0 || s.Outliers != nil {
		t.Errorf("ComputeStatistics(nil) = %+v, want zero value", s)
	}
}
