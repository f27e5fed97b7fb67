package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/teachtree/internal/models"
	"github.com/harrison/teachtree/internal/session"
	"github.com/harrison/teachtree/internal/store"
	"github.com/harrison/teachtree/internal/tree"
	"github.com/harrison/teachtree/internal/visibility"
)

// NewTreeCommand creates the 'teachtree tree' command
func NewTreeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree <transcript>",
		Short: "Show the aggregation tree of visible nodes",
		Long: `Show the behaviour-chain aggregation tree of a transcript.

Only visible nodes are drawn. A trailing "+" marks a node with hidden
children; a leading "*" marks the highlighted chain. The visibility state is
restored from the configured state store before the interaction flags are
applied and saved afterwards, so repeated invocations build on each other.

Examples:
  teachtree tree lesson01.jsonl
  teachtree tree lesson01.jsonl --toggle root-TQ-0
  teachtree tree lesson01.jsonl --select "TQ → SS → TF"
  teachtree tree lesson01.jsonl --expand-all --json`,
		Args: cobra.ExactArgs(1),
		RunE: runTree,
	}

	cmd.Flags().StringArray("toggle", nil, "Expand or collapse a node by id (repeatable)")
	cmd.Flags().String("select", "", `Reveal and highlight a chain, e.g. "TQ → SS" or "TQ->SS"`)
	cmd.Flags().Bool("clear-selection", false, "Drop the highlighted chain")
	cmd.Flags().Bool("expand-all", false, "Make every node visible")
	cmd.Flags().Bool("reset", false, "Return to the initial view, ignoring saved state")
	cmd.Flags().Bool("json", false, "Print the filtered tree as JSON for renderers")
	cmd.Flags().Bool("no-state", false, "Neither restore nor save the visibility state")

	return cmd
}

// treeInteraction is the ordered set of visibility changes requested on the command line
type treeInteraction struct {
	reset          bool
	expandAll      bool
	toggles        []string
	selection      []string
	clearSelection bool
}

func (ti treeInteraction) apply(sess *session.Session) {
	if ti.reset {
		sess.Reset()
	}
	if ti.expandAll {
		sess.ExpandAll()
	}
	for _, id := range ti.toggles {
		sess.Toggle(id)
	}
	if ti.clearSelection {
		sess.ClearSelection()
	}
	if len(ti.selection) > 0 {
		sess.SelectPattern(ti.selection)
	}
}

func runTree(cmd *cobra.Command, args []string) error {
	inv, err := loadInvocation(cmd)
	if err != nil {
		return err
	}
	defer inv.close()

	toggles, _ := cmd.Flags().GetStringArray("toggle")
	selectFlag, _ := cmd.Flags().GetString("select")
	clearSelection, _ := cmd.Flags().GetBool("clear-selection")
	expandAll, _ := cmd.Flags().GetBool("expand-all")
	reset, _ := cmd.Flags().GetBool("reset")
	asJSON, _ := cmd.Flags().GetBool("json")
	noState, _ := cmd.Flags().GetBool("no-state")

	interaction := treeInteraction{
		reset:          reset,
		expandAll:      expandAll,
		toggles:        toggles,
		selection:      models.SplitPattern(selectFlag),
		clearSelection: clearSelection,
	}

	sess, err := inv.openSession(args[0])
	if err != nil {
		return err
	}

	var states visibility.Store
	if !noState {
		states, err = inv.openStore()
		if err != nil {
			return err
		}
		defer store.Close(states)
	}

	ctx := commandContext(cmd)
	key := stateKey(args[0])

	if !reset {
		if _, err := sess.Restore(ctx, states, key); err != nil {
			inv.log.LogWarn(err.Error())
		}
	}
	interaction.apply(sess)

	view := sess.View()
	if asJSON {
		if err := writeViewJSON(inv, view); err != nil {
			return err
		}
	} else {
		fmt.Fprint(inv.out, tree.RenderText(view, inv.color))
	}

	return sess.Save(ctx, states, key)
}

func writeViewJSON(inv *invocation, view *tree.ViewNode) error {
	data, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal tree: %w", err)
	}
	fmt.Fprintln(inv.out, string(data))
	return nil
}
