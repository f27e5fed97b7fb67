package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harrison/teachtree/internal/behavioral"
)

// NewStatsCommand creates the 'teachtree stats' command
func NewStatsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats <transcript>",
		Short: "Show behaviour category statistics",
		Long: `Show how much of a lesson each behaviour category takes.

Reports event, run and duration totals, the teacher and student shares of
coded time, and a per-category breakdown ordered by duration.

Examples:
  teachtree stats lesson01.jsonl
  teachtree stats lesson01.jsonl --top 5
  teachtree stats lesson01.jsonl --json`,
		Args: cobra.ExactArgs(1),
		RunE: runStats,
	}

	cmd.Flags().Int("top", 0, "Only show the top N categories (0 = all)")
	cmd.Flags().Bool("json", false, "Print statistics as JSON")

	return cmd
}

func runStats(cmd *cobra.Command, args []string) error {
	inv, err := loadInvocation(cmd)
	if err != nil {
		return err
	}
	defer inv.close()

	top, _ := cmd.Flags().GetInt("top")
	asJSON, _ := cmd.Flags().GetBool("json")

	tr, err := inv.loadTranscript(args[0])
	if err != nil {
		return err
	}

	stats := behavioral.CalculateStats(tr.Events, inv.vocabulary())
	stats.Categories = stats.GetTopCategories(top)

	if asJSON {
		data, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal stats: %w", err)
		}
		fmt.Fprintln(inv.out, string(data))
		return nil
	}

	printStats(inv.out, tr.Name, stats, inv.color)
	return nil
}

// printStats writes the summary block followed by the category table
func printStats(w io.Writer, name string, stats *behavioral.TranscriptStats, colorOutput bool) {
	header := color.New(color.FgCyan, color.Bold)
	if !colorOutput {
		header.DisableColor()
	}

	header.Fprintf(w, "=== Behaviour Statistics: %s ===\n\n", name)
	fmt.Fprintf(w, "Events: %d\n", stats.TotalEvents)
	fmt.Fprintf(w, "Runs: %d\n", stats.TotalRuns)
	fmt.Fprintf(w, "Coded time: %s\n", formatSeconds(stats.TotalDuration))
	fmt.Fprintf(w, "Teacher share: %.1f%%\n", stats.TeacherShare*100)
	fmt.Fprintf(w, "Student share: %.1f%%\n", stats.StudentShare*100)

	if len(stats.Categories) == 0 {
		return
	}

	fmt.Fprintln(w)
	header.Fprintln(w, "Categories:")
	fmt.Fprintf(w, "%-4s  %-6s  %-4s  %-8s  %-6s  %s\n", "Code", "Events", "Runs", "Time", "Share", "Label")
	for _, c := range stats.Categories {
		fmt.Fprintf(w, "%-4s  %-6d  %-4d  %-8s  %5.1f%%  %s\n",
			c.Abbr, c.Events, c.Runs, formatSeconds(c.Duration), c.DurationShare*100, c.Label)
	}
}

// formatSeconds renders seconds as m:ss
func formatSeconds(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
