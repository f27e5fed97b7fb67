package cmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harrison/teachtree/internal/behavioral"
	"github.com/harrison/teachtree/internal/models"
)

// NewPatternsCommand creates the 'teachtree patterns' command
func NewPatternsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patterns <transcript>",
		Short: "List mined behaviour chains",
		Long: `List the behaviour chains mined from a transcript.

By default only complete root-to-leaf chains of the aggregation tree are
listed, longest and most frequent first. Use --all to include every chain
that met the frequency threshold.

Examples:
  teachtree patterns lesson01.jsonl
  teachtree patterns lesson01.jsonl --all --sort score
  teachtree patterns lesson01.jsonl --search "TQ → SS" --min-length 3
  teachtree patterns lesson01.jsonl --page 2`,
		Args: cobra.ExactArgs(1),
		RunE: runPatterns,
	}

	cmd.Flags().Bool("all", false, "Include chains that end at an inner tree node")
	cmd.Flags().String("sort", "", "Sort column: length, count, score (default: mined order)")
	cmd.Flags().String("order", "desc", "Sort order: asc, desc")
	cmd.Flags().String("search", "", "Only chains containing this text")
	cmd.Flags().Int("min-length", 0, "Minimum chain length")
	cmd.Flags().Int("max-length", 0, "Maximum chain length shown")
	cmd.Flags().Int("page", 1, "Page to display")

	return cmd
}

func runPatterns(cmd *cobra.Command, args []string) error {
	inv, err := loadInvocation(cmd)
	if err != nil {
		return err
	}
	defer inv.close()

	all, _ := cmd.Flags().GetBool("all")
	sortField, _ := cmd.Flags().GetString("sort")
	sortOrder, _ := cmd.Flags().GetString("order")
	search, _ := cmd.Flags().GetString("search")
	minLength, _ := cmd.Flags().GetInt("min-length")
	maxLength, _ := cmd.Flags().GetInt("max-length")
	page, _ := cmd.Flags().GetInt("page")

	criteria := behavioral.FilterCriteria{
		Search:    search,
		MinLength: minLength,
		MaxLength: maxLength,
		SortField: behavioral.SortField(sortField),
		SortOrder: behavioral.SortOrder(sortOrder),
	}
	if err := criteria.Validate(); err != nil {
		return fmt.Errorf("invalid filter: %w", err)
	}

	sess, err := inv.openSession(args[0])
	if err != nil {
		return err
	}

	patterns := sess.LeafPatterns()
	if all {
		patterns = sess.Patterns()
	}
	patterns = behavioral.ApplyFiltersToPatterns(patterns, criteria)

	printPatternPage(inv.out, sess.Source(), patterns, inv.cfg.View.PageSize, page, inv.color)
	return nil
}

// printPatternPage prints one page of the pattern table with its footer
func printPatternPage(w io.Writer, source string, patterns []models.PatternRecord, pageSize, page int, colorOutput bool) {
	title := fmt.Sprintf("%s: %d chains", source, len(patterns))
	if colorOutput {
		title = color.New(color.FgCyan, color.Bold).Sprint(title)
	}
	fmt.Fprintln(w, title)
	fmt.Fprintln(w)

	paginator := behavioral.NewPaginator(patterns, pageSize)
	paginator.GoTo(page)

	for _, row := range behavioral.FormatPatternTable(paginator.GetCurrentPage(), colorOutput) {
		fmt.Fprintln(w, row)
	}

	if nav := behavioral.PrintNavigationBar(paginator.GetCurrentPageNum(), paginator.GetTotalPages(), paginator.GetTotalItems(), colorOutput); nav != "" {
		fmt.Fprintln(w, nav)
	}
}
