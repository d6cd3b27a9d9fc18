package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"poolratio/internal/recorder"

	"github.com/spf13/cobra"
)

func newHistoryCmd(ro *rootOptions, opts *runOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently recorded runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, ro, opts)
			if err != nil {
				return err
			}
			if cfg.Database.SQLitePath == "" {
				return errors.New("no database configured (set database.sqlite_path, SQLITE_PATH or --db)")
			}

			logger := newLogger(cmd.ErrOrStderr(), cfg.LogLevel, ro.NoColor)
			rec, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, logger)
			if err != nil {
				return err
			}
			defer rec.Close()

			runs, err := rec.RecentRuns(limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no runs recorded")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "RECORDED\tPAIR\tNETWORK\tRES\tROWS\tRATIO\tCHART")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s/%s\t%s\t%s\t%d\t%.4f\t%s\n",
					r.RecordedAt.UTC().Format(time.RFC3339), r.LabelA, r.LabelB,
					r.Network, r.Resolution, r.Rows, r.LatestRatio, r.ChartPath)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to show")
	return cmd
}
