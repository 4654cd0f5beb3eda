package internal

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// VerifyPlotFormats validates a comma separated list of plot formats.
func VerifyPlotFormats(formats string) ([]string, error) {
	validFormats := []string{"hist", "histogram", "bar", "all"}
	formatList := strings.Split(strings.ToLower(formats), ",")
	for _, f := range formatList {
		if !slices.Contains(validFormats, f) {
			return nil, fmt.Errorf("invalid plot format: %s", f)
		}
	}
	return formatList, nil
}

func histogram(results []*BenchmarkResult, timeUnit time.Duration) {
	p := plot.New()
	p.Title.Text = "Histogram"
	p.X.Label.Text = unitSuffix(timeUnit)

	for i, result := range results {
		if len(result.Times) == 0 {
			continue
		}
		v := make(plotter.Values, len(result.Times))
		for j, t := range result.Times {
			v[j] = ConvertSeconds(t, timeUnit)
		}

		h, err := plotter.NewHist(v, 16)
		if err != nil {
			panic(err)
		}
		h.FillColor = colors[i%len(colors)]
		p.Legend.Add(result.Command, h)
		p.Add(h)
	}
	p.Legend.Top = true

	if err := p.Save(4*vg.Inch, 4*vg.Inch, "hist.png"); err != nil {
		panic(err)
	}
}

func barPlot(results []*BenchmarkResult, timeUnit time.Duration) {
	p := plot.New()
	p.Title.Text = "Bar Chart"
	p.Y.Label.Text = fmt.Sprintf("Mean times (in %s)", unitSuffix(timeUnit))

	meanTimes := make(plotter.Values, len(results))
	copy(meanTimes, MapFunc[[]*BenchmarkResult, []float64](
		func(r *BenchmarkResult) float64 { return ConvertSeconds(r.Stats.Mean, timeUnit) }, results))

	w := vg.Points(20)
	bars, err := plotter.NewBarChart(meanTimes, w)
	if err != nil {
		panic(err)
	}
	bars.LineStyle.Width = vg.Length(0)
	bars.Color = plotutil.Color(0)

	p.Add(bars)
	p.NominalX(MapFunc[[]*BenchmarkResult, []string](
		func(r *BenchmarkResult) string { return r.Command }, results)...)

	barWidth := max(3, len(results))
	if err := p.Save(font.Length(barWidth)*vg.Inch, 3*vg.Inch, "barchart.png"); err != nil {
		panic(err)
	}
}

// Plot renders the measured distributions in each of the given formats.
func Plot(plotFormats []string, results []*BenchmarkResult, timeUnit time.Duration) {
	if slices.Contains(plotFormats, "all") {
		plotFormats = []string{"histogram", "bar"}
	}
	for _, plotFormat := range plotFormats {
		switch plotFormat {
		case "hist", "histogram":
			histogram(results, timeUnit)
		case "bar":
			barPlot(results, timeUnit)
		}
	}
}
