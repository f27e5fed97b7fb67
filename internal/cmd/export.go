package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrison/teachtree/internal/behavioral"
	"github.com/harrison/teachtree/internal/store"
)

// formatTreeJSON exports the filtered tree instead of the pattern list
const formatTreeJSON = "tree-json"

// NewExportCommand creates the 'teachtree export' command
func NewExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <transcript>",
		Short: "Export mined chains or the tree to a file",
		Long: `Export the mined behaviour chains as JSON, Markdown, CSV or HTML, or the
currently visible tree (with saved visibility applied) as JSON.

Files are written through a temporary file and renamed into place.

Examples:
  teachtree export lesson01.jsonl --format markdown --output report.md
  teachtree export lesson01.jsonl --format html -o report.html --all
  teachtree export lesson01.jsonl --format tree-json -o tree.json
  teachtree export lesson01.jsonl --format csv   # Outputs to stdout`,
		Args: cobra.ExactArgs(1),
		RunE: runExport,
	}

	cmd.Flags().StringP("format", "f", "json", "Export format: json, markdown (or md), csv, html, tree-json")
	cmd.Flags().StringP("output", "o", "", "Output file path (empty for stdout)")
	cmd.Flags().Bool("all", false, "Include chains that end at an inner tree node")

	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	inv, err := loadInvocation(cmd)
	if err != nil {
		return err
	}
	defer inv.close()

	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")
	all, _ := cmd.Flags().GetBool("all")

	format = strings.ToLower(strings.TrimSpace(format))
	if format != formatTreeJSON {
		if _, err := behavioral.NewExporter(format); err != nil {
			return err
		}
	}

	sess, err := inv.openSession(args[0])
	if err != nil {
		return err
	}

	var content string
	if format == formatTreeJSON {
		states, err := inv.openStore()
		if err != nil {
			return err
		}
		defer store.Close(states)

		if _, err := sess.Restore(commandContext(cmd), states, stateKey(args[0])); err != nil {
			inv.log.LogWarn(err.Error())
		}

		data, err := json.MarshalIndent(sess.View(), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal tree: %w", err)
		}
		content = string(data) + "\n"
	} else {
		content, err = behavioral.ExportToString(sess.Report(all), format)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
	}

	if output == "" {
		fmt.Fprint(inv.out, content)
		return nil
	}

	if err := behavioral.WriteFileAtomic(output, []byte(content)); err != nil {
		return err
	}
	inv.log.LogInfo(fmt.Sprintf("exported %s to %s", format, output))
	return nil
}
