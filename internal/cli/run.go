package cli

import (
	"context"
	"fmt"

	"poolratio/internal/chart"
	"poolratio/internal/collector"
	"poolratio/internal/config"
	"poolratio/internal/notifier"
	"poolratio/internal/pipeline"
	"poolratio/internal/recorder"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// runOptions are the per-run overrides applied on top of the config file.
type runOptions struct {
	Network    string
	PoolA      string
	LabelA     string
	PoolB      string
	LabelB     string
	DaysBack   int
	Resolution string
	Output     string
	CSVPath    string
	DBPath     string
	AnnotateAt string
	SMAPeriod  int
	Parallel   bool
	DryRun     bool
	Notify     bool
}

func (o *runOptions) bind(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVar(&o.Network, "network", "", "GeckoTerminal network id")
	f.StringVar(&o.PoolA, "pool-a", "", "Pool address of token A")
	f.StringVar(&o.LabelA, "label-a", "", "Display label of token A")
	f.StringVar(&o.PoolB, "pool-b", "", "Pool address of token B")
	f.StringVar(&o.LabelB, "label-b", "", "Display label of token B")
	f.IntVar(&o.DaysBack, "days", 0, "Lookback window in days")
	f.StringVar(&o.Resolution, "resolution", "", "Candle resolution: day|hour")
	f.StringVarP(&o.Output, "out", "o", "", "Chart output path (.png, .svg or .pdf)")
	f.StringVar(&o.CSVPath, "csv", "", "Also export the aligned table as CSV")
	f.StringVar(&o.DBPath, "db", "", "SQLite database for run history")
	f.StringVar(&o.AnnotateAt, "annotate-price-at", "", "Candle used for price annotations: latest|first")
	f.IntVar(&o.SMAPeriod, "sma", 0, "Overlay a moving average of the ratio over N candles")
	f.BoolVar(&o.Parallel, "parallel", false, "Fetch both pools concurrently")
	f.BoolVar(&o.DryRun, "dry-run", false, "Use generated candles instead of calling GeckoTerminal")
	f.BoolVar(&o.Notify, "notify", false, "Send the chart to Telegram when configured")
}

// apply copies explicitly set flags into cfg.
func (o *runOptions) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("network") {
		cfg.Network = o.Network
	}
	if changed("pool-a") {
		cfg.TokenA.Address = o.PoolA
	}
	if changed("label-a") {
		cfg.TokenA.Label = o.LabelA
	}
	if changed("pool-b") {
		cfg.TokenB.Address = o.PoolB
	}
	if changed("label-b") {
		cfg.TokenB.Label = o.LabelB
	}
	if changed("days") {
		cfg.DaysBack = o.DaysBack
	}
	if changed("resolution") {
		cfg.Resolution = o.Resolution
	}
	if changed("out") {
		cfg.Chart.Output = o.Output
	}
	if changed("csv") {
		cfg.Export.CSVPath = o.CSVPath
	}
	if changed("db") {
		cfg.Database.SQLitePath = o.DBPath
	}
	if changed("annotate-price-at") {
		cfg.Chart.AnnotatePriceAt = o.AnnotateAt
	}
	if changed("sma") {
		cfg.Chart.RatioSMAPeriod = o.SMAPeriod
	}
	if changed("parallel") {
		cfg.Parallel = o.Parallel
	}
}

// loadConfig loads, overrides and validates the configuration.
func loadConfig(cmd *cobra.Command, ro *rootOptions, opts *runOptions) (*config.Config, error) {
	cfg, err := config.Load(ro.configPath())
	if err != nil {
		return nil, err
	}
	if opts != nil {
		opts.apply(cmd, cfg)
	}
	if ro.LogLevel != "" {
		cfg.LogLevel = ro.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// app is the set of components one invocation needs.
type app struct {
	cfg      *config.Config
	logger   zerolog.Logger
	pipeline *pipeline.Pipeline
	recorder recorder.Recorder
	telegram *notifier.TelegramNotifier
}

func (a *app) Close() {
	if err := a.recorder.Close(); err != nil {
		a.logger.Error().Err(err).Msg("close recorder")
	}
}

// newApp wires fetcher, collector, recorder and notifier from cfg.
func newApp(cmd *cobra.Command, ro *rootOptions, cfg *config.Config, dryRun bool) (*app, error) {
	logger := newLogger(cmd.ErrOrStderr(), cfg.LogLevel, ro.NoColor)

	pair, err := cfg.Pair()
	if err != nil {
		return nil, err
	}

	var fetcher collector.Fetcher
	if dryRun {
		fetcher = &collector.StaticFetcher{BasePrice: map[string]float64{
			pair.A.Address: 0.0125,
			pair.B.Address: 0.0041,
		}}
	} else {
		timeout, err := cfg.APITimeout()
		if err != nil {
			return nil, err
		}
		gt := collector.NewGeckoTerminalFetcher(cfg.API.BaseURL, cfg.Proxy, timeout)
		gt.UserAgent = cfg.API.UserAgent
		fetcher = gt
	}
	logger.Info().Str("source", fetcher.Name()).Str("network", pair.Network).Msg("data source ready")

	col := collector.NewCollector(fetcher, pair, logger.With().Str("component", "collector").Logger())
	col.Parallel = cfg.Parallel

	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, logger.With().Str("component", "recorder").Logger())
		if err != nil {
			logger.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		} else {
			rec = sr
		}
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		recorder: rec,
		pipeline: &pipeline.Pipeline{
			Collector: col,
			Recorder:  rec,
			Chart: chart.Options{
				AnnotatePriceAt: cfg.Chart.AnnotatePriceAt,
				RatioSMAPeriod:  cfg.Chart.RatioSMAPeriod,
			},
			ChartPath:    cfg.Chart.Output,
			WidthInches:  cfg.Chart.WidthInches,
			HeightInches: cfg.Chart.HeightInches,
			CSVPath:      cfg.Export.CSVPath,
			Logger:       logger.With().Str("component", "pipeline").Logger(),
		},
	}
	if cfg.TelegramEnabled() {
		a.telegram = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy,
			logger.With().Str("component", "telegram").Logger())
	}
	return a, nil
}

func runOnce(cmd *cobra.Command, ro *rootOptions, opts *runOptions) error {
	cfg, err := loadConfig(cmd, ro, opts)
	if err != nil {
		return err
	}
	a, err := newApp(cmd, ro, cfg, opts.DryRun)
	if err != nil {
		return err
	}
	defer a.Close()

	if opts.Notify {
		if a.telegram == nil {
			a.logger.Warn().Msg("--notify given but telegram is not configured")
		} else {
			a.pipeline.Notifier = a.telegram
		}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	res, err := a.pipeline.Run(ctx)
	if err != nil {
		return err
	}

	pair := res.Snapshot.Pair
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "chart written to %s\n", res.ChartPath)
	fmt.Fprintf(out, "%s/%s: %.4f  (%s/%s: %.4f)\n",
		pair.A.Label, pair.B.Label, res.Stats.Current, pair.B.Label, pair.A.Label, 1/res.Stats.Current)
	if res.CSVPath != "" {
		fmt.Fprintf(out, "aligned table written to %s\n", res.CSVPath)
	}
	return nil
}
