package cli

import (
	"fmt"
	"io"
	"os"

	"poolratio/internal/config"

	"github.com/spf13/cobra"
)

const defaultConfigPath = "configs/config.yaml"

// rootOptions holds flags shared by every subcommand.
type rootOptions struct {
	ConfigPath string
	LogLevel   string
	NoColor    bool
}

// configPath resolves --config, then CONFIG_PATH, then the default location.
func (o *rootOptions) configPath() string {
	if o.ConfigPath != "" {
		return o.ConfigPath
	}
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return defaultConfigPath
}

// NewRootCmd builds the poolratio command tree. Running the root command
// renders the chart once and exits.
func NewRootCmd() *cobra.Command {
	ro := &rootOptions{}
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "poolratio",
		Short: "Chart the relative price of two DEX pool tokens",
		Long: `poolratio fetches daily or hourly OHLCV candles for two liquidity pools from
GeckoTerminal, aligns them by timestamp, and renders a two-panel chart of the
relative price A/B above both closing-price histories.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOnce(cmd, ro, opts)
		},
	}

	cmd.PersistentFlags().StringVar(&ro.ConfigPath, "config", "", "Path to config file (default $CONFIG_PATH or "+defaultConfigPath+")")
	cmd.PersistentFlags().StringVar(&ro.LogLevel, "log-level", "", "Log level: debug|info|warn|error (overrides config)")
	cmd.PersistentFlags().BoolVar(&ro.NoColor, "no-color", false, "Disable colored log output")
	opts.bind(cmd)

	cmd.AddCommand(
		newWatchCmd(ro, opts),
		newConfigCmd(ro),
		newHistoryCmd(ro, opts),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "poolratio %s\n", config.Version)
			},
		},
	)
	return cmd
}

// Execute runs the command tree and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

func printError(w io.Writer, err error) {
	fmt.Fprintln(w, "error:", err)
}
