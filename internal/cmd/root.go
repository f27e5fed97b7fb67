package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for teachtree
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "teachtree",
		Short: "Classroom behaviour pattern mining and aggregation trees",
		Long: `Teachtree mines recurring behaviour chains from labelled classroom
transcripts and aggregates them into a shared-prefix tree.

Each transcript line is one coded event (teacher question, student speech,
silence, ...). Consecutive events of the same category are merged, frequent
chains are counted and scored, and the chains are folded into a tree whose
expanded/collapsed state is kept between invocations.

Configuration is loaded from .teachtree/config.yaml if present.
CLI flags override configuration file settings.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "Path to config file (default: .teachtree/config.yaml)")
	flags.String("log-level", "", "Log level: trace, debug, info, warn, error")
	flags.String("log-dir", "", "Also write a run log to this directory (overrides config log_dir)")
	flags.Int("max-pattern-length", 0, "Longest chain to mine (overrides config)")
	flags.Int("min-count", 0, "Minimum chain frequency (overrides config)")
	flags.Int("top-roots", 0, "Root categories expanded on first load (overrides config)")
	flags.Bool("no-score", false, "Skip duration-aware pattern scoring")
	flags.Bool("no-color", false, "Disable coloured output")

	cmd.AddCommand(NewPatternsCommand())
	cmd.AddCommand(NewTreeCommand())
	cmd.AddCommand(NewDetailsCommand())
	cmd.AddCommand(NewExportCommand())
	cmd.AddCommand(NewStatsCommand())
	cmd.AddCommand(NewStateCommand())
	cmd.AddCommand(NewWatchCommand())

	return cmd
}
