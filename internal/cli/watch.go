package cli

import (
	"context"
	"os/signal"
	"syscall"

	"poolratio/internal/scheduler"

	"github.com/spf13/cobra"
)

func newWatchCmd(ro *rootOptions, opts *runOptions) *cobra.Command {
	var runOnStart bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-render the chart on a cron schedule and answer Telegram commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, ro, opts)
			if err != nil {
				return err
			}
			a, err := newApp(cmd, ro, cfg, opts.DryRun)
			if err != nil {
				return err
			}
			defer a.Close()

			parent := cmd.Context()
			if parent == nil {
				parent = context.Background()
			}
			ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			var msg scheduler.Messenger
			if a.telegram != nil {
				a.pipeline.Notifier = a.telegram
				msg = a.telegram
			}

			sched := scheduler.NewScheduler(ctx, a.pipeline, msg, a.recorder,
				a.logger.With().Str("component", "scheduler").Logger())
			if err := sched.Register(cfg.Schedule.Cron); err != nil {
				return err
			}
			sched.Start()
			defer sched.Stop()

			if a.telegram != nil {
				go a.telegram.StartPolling(ctx, sched.HandleCommand)
				a.logger.Info().Msg("telegram polling started")
			}
			if runOnStart {
				go sched.RunNow()
			}

			a.logger.Info().Str("cron", cfg.Schedule.Cron).Msg("watching, press Ctrl+C to stop")
			<-ctx.Done()
			a.logger.Info().Msg("shutdown signal received, stopping")
			return nil
		},
	}
	cmd.Flags().BoolVar(&runOnStart, "run-on-start", true, "Render once immediately before waiting for the schedule")
	return cmd
}
