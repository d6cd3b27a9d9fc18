package pipeline

import (
	"context"
	"fmt"

	"poolratio/internal/calculator"
	"poolratio/internal/chart"
	"poolratio/internal/collector"
	"poolratio/internal/model"
	"poolratio/internal/notifier"
	"poolratio/internal/recorder"

	"github.com/rs/zerolog"
)

const notifyRetries = 3

// Notifier delivers a rendered chart.
type Notifier interface {
	SendPhotoWithRetry(ctx context.Context, path, caption string, maxRetries int) error
}

// Pipeline renders one relative-price chart per Run.
type Pipeline struct {
	Collector    *collector.Collector
	Recorder     recorder.Recorder
	Notifier     Notifier
	Chart        chart.Options
	ChartPath    string
	WidthInches  float64
	HeightInches float64
	CSVPath      string
	Logger       zerolog.Logger
}

// Result is the outcome of a successful run.
type Result struct {
	Snapshot  *model.PairSnapshot
	Stats     *model.RatioStats
	ChartPath string
	CSVPath   string
}

// Run fetches, aligns, renders and writes the chart. Any failure before the
// chart is written aborts the run; recording and delivery failures are logged.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	snap, err := p.Collector.Collect(ctx)
	if err != nil {
		return nil, err
	}

	fig, err := chart.BuildFigure(snap, p.Chart)
	if err != nil {
		return nil, fmt.Errorf("build chart: %w", err)
	}
	stats, err := calculator.SummarizeRatios(snap)
	if err != nil {
		return nil, fmt.Errorf("ratio stats: %w", err)
	}
	if err := chart.WriteFile(fig, p.ChartPath, p.WidthInches, p.HeightInches); err != nil {
		return nil, err
	}

	res := &Result{Snapshot: snap, Stats: stats, ChartPath: p.ChartPath}
	p.Logger.Info().
		Str("run_id", snap.RunID).
		Str("chart", p.ChartPath).
		Float64("ratio", stats.Current).
		Float64("inverse", 1/stats.Current).
		Float64("range_position", stats.Position).
		Msgf("%s/%s chart written", snap.Pair.A.Label, snap.Pair.B.Label)

	if p.CSVPath != "" {
		if err := recorder.ExportAlignedCSV(p.CSVPath, snap); err != nil {
			return nil, err
		}
		res.CSVPath = p.CSVPath
		p.Logger.Info().Str("csv", p.CSVPath).Int("rows", len(snap.Rows)).Msg("aligned table exported")
	}

	if p.Recorder != nil {
		if err := p.Recorder.RecordRun(snap, stats, p.ChartPath); err != nil {
			p.Logger.Error().Err(err).Msg("record run")
		}
	}
	if p.Notifier != nil {
		caption := notifier.FormatCaption(snap, stats)
		if err := p.Notifier.SendPhotoWithRetry(ctx, p.ChartPath, caption, notifyRetries); err != nil {
			p.Logger.Error().Err(err).Msg("send chart")
		}
	}
	return res, nil
}
