package main

import (
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/shravanasati/commando"
	"github.com/shravanasati/tempo/internal"
)

const (
	// NAME is the executable name.
	NAME = "tempo"
	// VERSION is the executable version.
	VERSION = "v0.1.0"
)

var WINDOWS = runtime.GOOS == "windows"

// defaultShell returns the shell commands are run through when none is
// given explicitly.
func defaultShell() string {
	if WINDOWS {
		return "cmd.exe"
	}
	return "/bin/sh"
}

// progressBar renders scheduling progress with a progress bar per phase,
// or plain logs in verbose mode.
type progressBar struct {
	bar     *progressbar.ProgressBar
	verbose bool
	phase   string
	count   int
}

func (p *progressBar) PhaseStarted(description string, totalRuns int) {
	p.phase = description
	p.count = 0
	if p.verbose {
		internal.Log("purple", description)
		return
	}
	pbarOptions := []progressbar.Option{
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetDescription("[magenta]" + description + "[reset]"),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "|",
			BarEnd:        "|",
		}),
	}
	if !internal.NO_COLOR {
		pbarOptions = append(pbarOptions, progressbar.OptionEnableColorCodes(true))
	}
	p.bar = progressbar.NewOptions(totalRuns, pbarOptions...)
}

func (p *progressBar) RunCompleted(elapsed time.Duration) {
	p.count++
	if p.verbose {
		internal.Log("purple", fmt.Sprintf("run %d finished in %s", p.count, elapsed))
		return
	}
	p.bar.Add(1)
	if elapsed > 0 {
		p.bar.Describe(fmt.Sprintf("[magenta]Current estimate:[reset] [green]%s[reset]", elapsed.String()))
	}
}

func (p *progressBar) PhaseFinished() {
	if p.bar != nil {
		p.bar.Finish()
		p.bar = nil
	}
}

// parseParamDefinitions parses semicolon separated parameter definitions,
// list ones like "size=1,2,3" and scan ones like "n=1:10:1".
func parseParamDefinitions(lists, scans string) ([]internal.ParamValues, error) {
	var params []internal.ParamValues
	if lists != "none" && lists != "" {
		for _, definition := range strings.Split(lists, ";") {
			p, err := internal.ParseParameterList(definition)
			if err != nil {
				return nil, err
			}
			params = append(params, p)
		}
	}
	if scans != "none" && scans != "" {
		for _, definition := range strings.Split(scans, ";") {
			p, err := internal.ParseParameterScan(definition)
			if err != nil {
				return nil, err
			}
			params = append(params, p)
		}
	}
	return params, nil
}

func main() {
	internal.Log("white", fmt.Sprintf("%v %v\n", NAME, VERSION))

	updateCh := make(chan string, 1)
	go internal.CheckForUpdates(VERSION, &updateCh)
	// the receive must happen inside the closure, a plain deferred call
	// would evaluate it right here and stall startup on the network probe
	defer func() { fmt.Println(<-updateCh) }()

	// interrupts are observed cooperatively between runs and enforced
	// forcefully on the in-flight process tree
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-interrupts
		internal.NotifyInterrupt()
	}()

	// * basic configuration
	commando.
		SetExecutableName(NAME).
		SetVersion(VERSION).
		SetDescription("tempo is a CLI tool to benchmark shell commands and compare them statistically. \nFor more info visit https://github.com/shravanasati/tempo.")

	// * root command
	commando.
		Register(nil).
		SetShortDescription("Benchmark the given commands.").
		SetDescription("Benchmark the given commands and compare their runtimes.").
		AddArgument("commands...", "The commands to benchmark, each as a separate argument.", "").
		AddFlag("warmup,w", "The number of warmup runs to perform before the actual benchmark.", commando.Int, 0).
		AddFlag("min-runs,m", "The minimum number of runs to perform.", commando.Int, 10).
		AddFlag("max-runs,M", "The maximum number of runs to perform (0 means the time budget governs).", commando.Int, 0).
		AddFlag("min-time,t", "The minimum total benchmarking time per command, like 3s or 500ms.", commando.String, "3s").
		AddFlag("prepare,p", "A command to execute before every benchmark run, e.g. to clear caches.", commando.String, "none").
		AddFlag("prepare-once", "Run the preparation command only once per benchmark instead of before every run.", commando.Bool, false).
		AddFlag("cleanup,c", "A command to execute once after each benchmark finishes.", commando.String, "none").
		AddFlag("shell,s", "The shell to run the commands through, `none` for direct execution.", commando.String, defaultShell()).
		AddFlag("shell-calibration", "Measure the shell spawn time and subtract it from every run.", commando.Bool, false).
		AddFlag("ignore-error,I", "Ignore if the benchmarked process returns a non-zero exit code.", commando.Bool, false).
		AddFlag("parameter-list,L", "Parameter lists like `size=10,20,30`, semicolon separated.", commando.String, "none").
		AddFlag("parameter-scan,P", "Numeric parameter ranges like `n=1:10:1`, semicolon separated.", commando.String, "none").
		AddFlag("time-unit,u", "The time unit to display results in: ns, us, ms, s, m, h.", commando.String, "ms").
		AddFlag("export,e", "Comma separated list of export formats: json, csv, markdown and text.", commando.String, "none").
		AddFlag("plot", "Comma separated list of plot formats: histogram and bar.", commando.String, "none").
		AddFlag("show-output", "Pass the benchmarked command's output through to the console.", commando.Bool, false).
		AddFlag("verbose,V", "Enable verbose output.", commando.Bool, false).
		AddFlag("no-color", "Disable colored output.", commando.Bool, false).
		SetAction(benchmarkAction)

	commando.Parse(nil)
}

func benchmarkAction(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	if strings.TrimSpace(args["commands"].Value) == "" {
		internal.Log("red", "Error: not enough arguments, no command to benchmark.")
		return
	}
	// variadic argument values are joined with commas by the flag parser
	templates := strings.Split(args["commands"].Value, ",")

	noColor, e := flags["color"].GetBool()
	if e != nil {
		internal.Log("red", "Application error: cannot parse flag values.")
		return
	}
	internal.NO_COLOR = !noColor

	verbose, e := flags["verbose"].GetBool()
	if e != nil {
		internal.Log("red", "Application error: cannot parse flag values.")
		return
	}

	warmupRuns, e1 := flags["warmup"].GetInt()
	minRuns, e2 := flags["min-runs"].GetInt()
	maxRuns, e3 := flags["max-runs"].GetInt()
	if e1 != nil || e2 != nil || e3 != nil {
		internal.Log("red", "The number of runs must be an integer!")
		return
	}
	if minRuns <= 0 || warmupRuns < 0 || maxRuns < 0 {
		internal.Log("red", "The number of runs must be positive!")
		return
	}
	if maxRuns > 0 && maxRuns < minRuns {
		internal.Log("red", "max-runs must not be smaller than min-runs.")
		return
	}

	minTimeString, _ := flags["min-time"].GetString()
	minBenchTime, err := time.ParseDuration(minTimeString)
	if err != nil || minBenchTime < 0 {
		internal.Log("red", "Invalid value for min-time: "+minTimeString)
		return
	}

	shell, _ := flags["shell"].GetString()
	if shell == "none" {
		shell = ""
	}

	prepare, _ := flags["prepare"].GetString()
	if prepare == "none" {
		prepare = ""
	}
	cleanup, _ := flags["cleanup"].GetString()
	if cleanup == "none" {
		cleanup = ""
	}
	prepareOnce, _ := flags["prepare-once"].GetBool()
	ignoreError, _ := flags["ignore-error"].GetBool()
	showOutput, _ := flags["show-output"].GetBool()
	shellCalibration, _ := flags["shell-calibration"].GetBool()

	timeUnitString, _ := flags["time-unit"].GetString()
	timeUnit, err := internal.ParseTimeUnit(timeUnitString)
	if err != nil {
		internal.Log("red", "Invalid time unit: "+timeUnitString)
		return
	}

	exportFormat, _ := flags["export"].GetString()
	var exportFormats []string
	if exportFormat != "none" {
		exportFormats, err = internal.VerifyExportFormats(exportFormat)
		if err != nil {
			internal.Log("red", err.Error())
			return
		}
	}

	plotFormat, _ := flags["plot"].GetString()
	var plotFormats []string
	if plotFormat != "none" {
		plotFormats, err = internal.VerifyPlotFormats(plotFormat)
		if err != nil {
			internal.Log("red", err.Error())
			return
		}
	}

	listDefs, _ := flags["parameter-list"].GetString()
	scanDefs, _ := flags["parameter-scan"].GetString()
	params, err := parseParamDefinitions(listDefs, scanDefs)
	if err != nil {
		internal.Log("red", err.Error())
		return
	}

	if shellCalibration && shell == "" {
		internal.Log("yellow", "Warning: shell calibration has no effect without a shell.")
		shellCalibration = false
	}

	opts := internal.BenchmarkOptions{
		Shell:         shell,
		WarmupRuns:    warmupRuns,
		MinRuns:       minRuns,
		MaxRuns:       maxRuns,
		MinBenchTime:  minBenchTime,
		Prepare:       prepare,
		Cleanup:       cleanup,
		PrepareOnce:   prepareOnce,
		IgnoreFailure: ignoreError,
		ShowOutput:    showOutput,
		Verbose:       verbose,
		Progress:      &progressBar{verbose: verbose},
	}

	results, err := internal.RunBenchmarks(templates, params, opts, shellCalibration)
	if err != nil {
		internal.Log("red", err.Error())
		return
	}

	for _, result := range results {
		result.Consolify(timeUnit)
	}
	internal.WriteComparison(results)

	if internal.Interrupted() {
		internal.Log("yellow", "\nBenchmark was interrupted; the results above may be partial.")
	}

	if len(exportFormats) > 0 {
		internal.Export(exportFormats, results, timeUnit)
	}
	if len(plotFormats) > 0 {
		internal.Plot(plotFormats, results, timeUnit)
	}

	warnWarmup(results, warmupRuns)
}

// warnWarmup nudges toward warmup runs when outliers were detected.
func warnWarmup(results []*internal.BenchmarkResult, warmupRuns int) {
	outliers := false
	for _, r := range results {
		if len(r.Stats.Outliers) > 0 {
			outliers = true
			break
		}
	}
	if !outliers {
		return
	}
	if warmupRuns == 0 {
		internal.Log("yellow", "It might help to use the --warmup flag.")
	} else {
		internal.Log("yellow", "Since you're already using the --warmup flag, you can consider increasing the warmup count.")
	}
}
