package app

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/FrankLong1/eia-data/internal/analysis"
	"github.com/FrankLong1/eia-data/internal/timeseries"
)

// Export renders one BA's demand profile and curtailment curve as PNG
// charts and/or CSV.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	if opts.BA == "" {
		return errors.New("--ba must be provided")
	}
	if opts.DemandPNG == "" && opts.CurvePNG == "" && opts.CurveCSV == "" && opts.HeadroomPNG == "" {
		return errors.New("at least one of --demand-png, --curve-png, --curve-csv or --headroom-png must be provided")
	}

	opts.MaxPoints = a.Config.ResolveMaxPoints(opts.MaxPoints)

	inDir := opts.InputDir
	if inDir == "" {
		inDir = a.Config.Clean.CleanedDir
	}

	records, err := readCSVDir(inDir)
	if err != nil {
		return err
	}

	ds, err := timeseries.FromRecords(records)
	if err != nil {
		return err
	}
	series := ds.Series(opts.BA)
	if series == nil {
		return fmt.Errorf("no data found for %s in %s", opts.BA, inDir)
	}

	analyzer, err := analysis.New(ds, a.Logger)
	if err != nil {
		return err
	}

	if opts.DemandPNG != "" {
		peaks, err := analyzer.Peaks(opts.BA)
		if err != nil {
			return err
		}
		if err := a.writeDemandPNG(opts.DemandPNG, opts.BA, series, peaks, opts.MaxPoints); err != nil {
			return err
		}
		a.Logger.Info().Str("path", opts.DemandPNG).Msg("demand chart written")
	}

	if opts.CurvePNG != "" || opts.CurveCSV != "" {
		curve, err := analyzer.CurtailmentCurve(opts.BA, 0, 0)
		if err != nil {
			return err
		}
		if opts.CurveCSV != "" {
			if err := writeCurveCSV(opts.CurveCSV, curve); err != nil {
				return err
			}
			a.Logger.Info().Str("path", opts.CurveCSV).Msg("curtailment curve written")
		}
		if opts.CurvePNG != "" {
			if err := a.writeCurvePNG(opts.CurvePNG, opts.BA, curve); err != nil {
				return err
			}
			a.Logger.Info().Str("path", opts.CurvePNG).Msg("curtailment curve chart written")
		}
	}

	if opts.HeadroomPNG != "" {
		if err := a.writeHeadroomPNG(opts.HeadroomPNG, opts.BA, analyzer, opts.Rates); err != nil {
			return err
		}
		a.Logger.Info().Str("path", opts.HeadroomPNG).Msg("headroom chart written")
	}

	return nil
}

func downsampleSeries(times []time.Time, values []float64, max int) ([]time.Time, []float64) {
	if max <= 0 || len(values) <= max {
		return times, values
	}

	outT := make([]time.Time, 0, max)
	outV := make([]float64, 0, max)
	step := float64(len(values)-1) / float64(max-1)
	for i := 0; i < max; i++ {
		idx := int(math.Round(step * float64(i)))
		if idx >= len(values) {
			idx = len(values) - 1
		}
		outT = append(outT, times[idx])
		outV = append(outV, values[idx])
	}
	return outT, outV
}

func (a *App) writeDemandPNG(path, ba string, series *timeseries.Series, peaks analysis.SeasonalPeaks, maxPoints int) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	x, demand := downsampleSeries(series.Times, series.Demand, maxPoints)

	summer := make([]float64, len(x))
	winter := make([]float64, len(x))
	for i := range x {
		summer[i] = peaks.SummerMW
		winter[i] = peaks.WinterMW
	}

	mwFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.0f")
	}
	graph := chart.Chart{
		Title:  fmt.Sprintf("%s hourly demand", ba),
		Width:  a.Config.Export.ChartWidth,
		Height: a.Config.Export.ChartHeight,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Demand (MW)",
			ValueFormatter: mwFormatter,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Demand",
				XValues: x,
				YValues: demand,
			},
			chart.TimeSeries{
				Name:    "Summer peak",
				XValues: x,
				YValues: summer,
				Style:   chart.Style{StrokeColor: chart.ColorRed, StrokeDashArray: []float64{5.0, 5.0}},
			},
			chart.TimeSeries{
				Name:    "Winter peak",
				XValues: x,
				YValues: winter,
				Style:   chart.Style{StrokeColor: chart.ColorBlue, StrokeDashArray: []float64{5.0, 5.0}},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func (a *App) writeCurvePNG(path, ba string, curve []analysis.CurvePoint) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	x := make([]float64, len(curve))
	y := make([]float64, len(curve))
	for i, p := range curve {
		x[i] = p.LoadMW
		y[i] = p.Rate * 100
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("%s curtailment curve", ba),
		Width:  a.Config.Export.ChartWidth,
		Height: a.Config.Export.ChartHeight,
		XAxis: chart.XAxis{
			Name: "Added load (MW)",
		},
		YAxis: chart.YAxis{
			Name: "Curtailment rate (%)",
			ValueFormatter: func(v interface{}) string {
				return chart.FloatValueFormatterWithFormat(v, "%.3f")
			},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Curtailment rate",
				XValues: x,
				YValues: y,
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func (a *App) writeHeadroomPNG(path, ba string, analyzer *analysis.Analyzer, rates []float64) error {
	if len(rates) == 0 {
		rates = []float64{0.0025, 0.005, 0.01, 0.05}
	}

	solve := analysis.SolveOptions{
		Tolerance:     a.Config.Analysis.Tolerance,
		MaxDoublings:  a.Config.Analysis.MaxDoublings,
		MaxIterations: a.Config.Analysis.MaxIterations,
	}

	var bars []chart.Value
	for _, rate := range rates {
		headroom, err := analyzer.Headroom(ba, rate, solve)
		if err != nil {
			if errors.Is(err, analysis.ErrTargetUnachievable) || errors.Is(err, analysis.ErrBoundsNotFound) {
				a.Logger.Warn().Str("ba", ba).Float64("rate", rate).Msg("rate not achievable; omitting bar")
				continue
			}
			return err
		}
		bars = append(bars, chart.Value{
			Value: headroom,
			Label: fmt.Sprintf("%.2f%%", rate*100),
		})
	}
	if len(bars) == 0 {
		return fmt.Errorf("no achievable rates for %s", ba)
	}

	if err := ensureDir(path); err != nil {
		return err
	}

	graph := chart.BarChart{
		Title:    fmt.Sprintf("%s headroom by allowed curtailment", ba),
		Width:    a.Config.Export.ChartWidth,
		Height:   a.Config.Export.ChartHeight,
		BarWidth: 80,
		YAxis: chart.YAxis{
			Name: "Added load (MW)",
			ValueFormatter: func(v interface{}) string {
				return chart.FloatValueFormatterWithFormat(v, "%.0f")
			},
		},
		Bars: bars,
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func writeCurveCSV(path string, curve []analysis.CurvePoint) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"load_addition_mw", "curtailment_rate"}); err != nil {
		return err
	}
	for _, p := range curve {
		record := []string{formatFloat(p.LoadMW), formatFloat(p.Rate)}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	return writer.Error()
}
