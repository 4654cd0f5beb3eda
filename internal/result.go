package internal

import (
	"fmt"
	"os"
	"text/template"
	"time"
)

// BenchmarkResult is the terminal value for one benchmarked command:
// its identity, the overhead-corrected run times in seconds, the derived
// statistics, and how the benchmark ended. It is handed as-is to the
// export and rendering layers.
type BenchmarkResult struct {
	Command    string
	Params     []ParamAssignment
	Times      []float64
	Stats      Statistics
	MeanUser   float64
	MeanSystem float64
	Failure    FailureKind
	Error      string
	Incomplete bool
}

var summaryNoColor = `
  Benchmark: {{ .Command }}
    Time (mean ± σ):     {{ .Mean }} ± {{ .StdDev }}    [User: {{ .User }}, System: {{ .System }}]
    Range (min … max):   {{ .Min }} … {{ .Max }}    ({{ .Runs }} runs)
`

var summaryColor = `
  ${yellow}Benchmark: ${cyan}{{ .Command }} ${reset}
    ${yellow}Time (mean ± σ):     ${green}{{ .Mean }} ± {{ .StdDev }} ${reset}   [User: {{ .User }}, System: {{ .System }}]
    ${yellow}Range (min … max):   ${green}{{ .Min }} … {{ .Max }} ${reset}   ({{ .Runs }} runs)
`

type summaryValues struct {
	Command string
	Mean    string
	StdDev  string
	User    string
	System  string
	Min     string
	Max     string
	Runs    int
}

// Consolify prints the benchmark summary of this result to the console,
// with color codes unless NO_COLOR is set.
func (result *BenchmarkResult) Consolify(timeUnit time.Duration) {
	if result.Incomplete {
		Log("red", fmt.Sprintf("\n  Benchmark: %s", result.Command))
		reason := result.Failure.String()
		if result.Error != "" {
			reason += ": " + result.Error
		}
		Log("red", "    Benchmark did not complete ("+reason+").")
		if result.Stats.Count > 0 {
			Log("yellow", fmt.Sprintf("    Partial results over %d collected runs follow.", result.Stats.Count))
		} else {
			return
		}
	}

	text := format(summaryColor,
		map[string]string{"cyan": "\x1b[36m", "yellow": "\x1b[33m", "green": "\x1b[32m", "reset": "\x1b[0m"})
	if NO_COLOR {
		text = summaryNoColor
	}

	tmpl, err := template.New("result").Parse(text)
	if err != nil {
		panic(err)
	}
	err = tmpl.Execute(os.Stdout, summaryValues{
		Command: result.Command,
		Mean:    FormatSeconds(result.Stats.Mean, timeUnit),
		StdDev:  FormatSeconds(result.Stats.StdDev, timeUnit),
		User:    FormatSeconds(result.MeanUser, timeUnit),
		System:  FormatSeconds(result.MeanSystem, timeUnit),
		Min:     FormatSeconds(result.Stats.Min, timeUnit),
		Max:     FormatSeconds(result.Stats.Max, timeUnit),
		Runs:    result.Stats.Count,
	})
	if err != nil {
		panic(err)
	}

	if len(result.Stats.Outliers) > 0 {
		Log("yellow", fmt.Sprintf("    Warning: %d statistical outlier(s) detected. Consider re-running this benchmark on a quiet system.", len(result.Stats.Outliers)))
	}
}
