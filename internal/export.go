package internal

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const exportBaseName = "tempo-summary"

// VerifyExportFormats validates a comma separated list of export formats.
func VerifyExportFormats(formats string) ([]string, error) {
	validFormats := []string{"json", "csv", "markdown", "md", "text", "txt"}
	formatList := strings.Split(strings.ToLower(formats), ",")
	for _, f := range formatList {
		valid := false
		for _, v := range validFormats {
			if f == v {
				valid = true
				break
			}
		}
		if !valid {
			return nil, fmt.Errorf("invalid export format: %s", f)
		}
	}
	return formatList, nil
}

type jsonRun struct {
	Command    string            `json:"command"`
	Parameters map[string]string `json:"parameters,omitempty"`
	Mean       float64           `json:"mean"`
	StdDev     float64           `json:"stddev"`
	Median     float64           `json:"median"`
	User       float64           `json:"user"`
	System     float64           `json:"system"`
	Min        float64           `json:"min"`
	Max        float64           `json:"max"`
	Runs       int               `json:"runs"`
	Times      []float64         `json:"times"`
	Outliers   []int             `json:"outliers,omitempty"`
	Incomplete bool              `json:"incomplete,omitempty"`
	Failure    string            `json:"failure,omitempty"`
}

// jsonify converts the results to an indented JSON document. All times are
// in seconds.
func jsonify(results []*BenchmarkResult) ([]byte, error) {
	runs := make([]jsonRun, 0, len(results))
	for _, r := range results {
		run := jsonRun{
			Command:  r.Command,
			Mean:     r.Stats.Mean,
			StdDev:   r.Stats.StdDev,
			Median:   r.Stats.Median,
			User:     r.MeanUser,
			System:   r.MeanSystem,
			Min:      r.Stats.Min,
			Max:      r.Stats.Max,
			Runs:     r.Stats.Count,
			Times:    r.Times,
			Outliers: r.Stats.Outliers,
		}
		if len(r.Params) > 0 {
			run.Parameters = map[string]string{}
			for _, p := range r.Params {
				run.Parameters[p.Name] = p.Value
			}
		}
		if r.Incomplete {
			run.Incomplete = true
			run.Failure = r.Failure.String()
		}
		runs = append(runs, run)
	}
	return json.MarshalIndent(map[string][]jsonRun{"results": runs}, "", "    ")
}

// csvify writes one row per command with the aggregate statistics, in
// seconds.
func csvify(results []*BenchmarkResult) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.Write([]string{"command", "mean", "stddev", "median", "user", "system", "min", "max", "runs"}); err != nil {
		return "", err
	}
	for _, r := range results {
		record := []string{
			r.Command,
			strconv.FormatFloat(r.Stats.Mean, 'f', -1, 64),
			strconv.FormatFloat(r.Stats.StdDev, 'f', -1, 64),
			strconv.FormatFloat(r.Stats.Median, 'f', -1, 64),
			strconv.FormatFloat(r.MeanUser, 'f', -1, 64),
			strconv.FormatFloat(r.MeanSystem, 'f', -1, 64),
			strconv.FormatFloat(r.Stats.Min, 'f', -1, 64),
			strconv.FormatFloat(r.Stats.Max, 'f', -1, 64),
			strconv.Itoa(r.Stats.Count),
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}
	w.Flush()
	return sb.String(), w.Error()
}

// markdownify renders a comparison table with the relative-speed column.
func markdownify(results []*BenchmarkResult, timeUnit time.Duration) string {
	ranking, _ := CompareResults(results)
	relative := map[string]RelativeSpeed{}
	for _, row := range ranking {
		relative[row.Command] = row
	}

	var sb strings.Builder
	sb.WriteString("| Command | Mean | Min | Max | Relative |\n")
	sb.WriteString("| :------ | ---: | --: | --: | -------: |\n")
	for _, r := range results {
		rel := "—"
		if row, ok := relative[r.Command]; ok {
			rel = fmt.Sprintf("%.2f ± %.2f", row.Ratio, row.RatioStdDev)
		}
		if r.Incomplete {
			rel = "incomplete (" + r.Failure.String() + ")"
		}
		sb.WriteString(fmt.Sprintf("| `%s` | %s ± %s | %s | %s | %s |\n",
			r.Command,
			FormatSeconds(r.Stats.Mean, timeUnit),
			FormatSeconds(r.Stats.StdDev, timeUnit),
			FormatSeconds(r.Stats.Min, timeUnit),
			FormatSeconds(r.Stats.Max, timeUnit),
			rel,
		))
	}
	return sb.String()
}

// textify renders the same plain summary the console shows, uncolored.
func textify(results []*BenchmarkResult, timeUnit time.Duration) string {
	var sb strings.Builder
	sb.WriteString("Benchmarking Summary\n")
	sb.WriteString("--------------------\n")
	for _, r := range results {
		sb.WriteString(fmt.Sprintf("\nBenchmark: %s\n", r.Command))
		if r.Incomplete {
			sb.WriteString(fmt.Sprintf("  Benchmark did not complete (%s).\n", r.Failure.String()))
			if r.Stats.Count == 0 {
				continue
			}
		}
		sb.WriteString(fmt.Sprintf("  Time (mean ± σ):   %s ± %s\n",
			FormatSeconds(r.Stats.Mean, timeUnit), FormatSeconds(r.Stats.StdDev, timeUnit)))
		sb.WriteString(fmt.Sprintf("  Range (min … max): %s … %s  (%d runs)\n",
			FormatSeconds(r.Stats.Min, timeUnit), FormatSeconds(r.Stats.Max, timeUnit), r.Stats.Count))
	}
	return sb.String()
}

// Export writes the benchmark results to files in each of the given
// formats.
func Export(formats []string, results []*BenchmarkResult, timeUnit time.Duration) {
	for _, format := range formats {
		var text, filename string
		switch format {
		case "json":
			jsonText, err := jsonify(results)
			if err != nil {
				Log("red", "Failed to export the results to json: "+err.Error())
				continue
			}
			text, filename = string(jsonText), addExtension(exportBaseName, "json")
		case "csv":
			csvText, err := csvify(results)
			if err != nil {
				Log("red", "Failed to export the results to csv: "+err.Error())
				continue
			}
			text, filename = csvText, addExtension(exportBaseName, "csv")
		case "markdown", "md":
			text, filename = markdownify(results, timeUnit), addExtension(exportBaseName, "md")
		case "text", "txt":
			text, filename = textify(results, timeUnit), addExtension(exportBaseName, "txt")
		}

		if err := writeToFile(text, filename); err != nil {
			Log("red", "Failed to write "+filename+": "+err.Error())
			continue
		}
		if absPath, err := filepath.Abs(filename); err == nil {
			Log("green", "Successfully wrote benchmark summary to `"+absPath+"`.")
		}
	}
}
