package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrison/teachtree/internal/behavioral"
	"github.com/harrison/teachtree/internal/models"
)

// NewDetailsCommand creates the 'teachtree details' command
func NewDetailsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "details <transcript> <pattern>",
		Short: "Show the transcript excerpt of a chain",
		Long: `Show the dialogue behind the first occurrence of a behaviour chain.

The pattern is a chain of abbreviations separated by "→" or "->".

Examples:
  teachtree details lesson01.jsonl "TQ → SS → TF"
  teachtree details lesson01.jsonl TL->CS --truncate 40`,
		Args: cobra.ExactArgs(2),
		RunE: runDetails,
	}

	cmd.Flags().Int("truncate", 0, "Truncate dialogue to this many terminal columns (0 = no limit)")
	cmd.Flags().Bool("no-timestamps", false, "Omit the mm:ss span of each run")

	return cmd
}

func runDetails(cmd *cobra.Command, args []string) error {
	inv, err := loadInvocation(cmd)
	if err != nil {
		return err
	}
	defer inv.close()

	abbrs := models.SplitPattern(args[1])
	if len(abbrs) == 0 {
		return fmt.Errorf("pattern %q has no behaviour codes", args[1])
	}

	truncate, _ := cmd.Flags().GetInt("truncate")
	noTimestamps, _ := cmd.Flags().GetBool("no-timestamps")
	if truncate < 0 {
		return fmt.Errorf("--truncate cannot be negative, got %d", truncate)
	}

	tr, err := inv.loadTranscript(args[0])
	if err != nil {
		return err
	}

	details := behavioral.ExtractPatternDetails(abbrs, tr.Events, inv.vocabulary())
	opts := behavioral.TranscriptOptions{
		ColorOutput:    inv.color,
		TruncateLength: truncate,
		ShowTimestamps: !noTimestamps,
	}

	out := behavioral.FormatDetails(models.JoinPattern(abbrs), details, opts)
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	fmt.Fprint(inv.out, out)
	return nil
}
