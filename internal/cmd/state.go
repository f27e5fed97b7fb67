package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/teachtree/internal/models"
	"github.com/harrison/teachtree/internal/store"
)

// NewStateCommand creates the 'teachtree state' command group
func NewStateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Inspect or clear saved visibility state",
		Long: `Inspect or clear the visibility snapshot saved for a transcript.

Snapshots are keyed by the transcript file name without its extension and
live in the store configured under state.backend / state.path.`,
	}

	cmd.AddCommand(NewStateShowCommand())
	cmd.AddCommand(NewStateClearCommand())

	return cmd
}

// NewStateShowCommand creates the 'teachtree state show' command
func NewStateShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <transcript>",
		Short: "Show the saved visibility snapshot",
		Args:  cobra.ExactArgs(1),
		RunE:  runStateShow,
	}
}

// NewStateClearCommand creates the 'teachtree state clear' command
func NewStateClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear <transcript>",
		Short: "Delete the saved visibility snapshot",
		Args:  cobra.ExactArgs(1),
		RunE:  runStateClear,
	}
}

func runStateShow(cmd *cobra.Command, args []string) error {
	inv, err := loadInvocation(cmd)
	if err != nil {
		return err
	}
	defer inv.close()

	states, err := inv.openStore()
	if err != nil {
		return err
	}
	if states == nil {
		fmt.Fprintln(inv.out, "State persistence is disabled (state.backend: none)")
		return nil
	}
	defer store.Close(states)

	key := stateKey(args[0])
	snap, found, err := states.Load(commandContext(cmd), key)
	if err != nil {
		return fmt.Errorf("load state for %s: %w", key, err)
	}
	if !found {
		fmt.Fprintf(inv.out, "No saved state for %s\n", key)
		return nil
	}

	fmt.Fprintf(inv.out, "Snapshot: %s\n", snap.ID)
	fmt.Fprintf(inv.out, "Saved: %s\n", snap.SavedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(inv.out, "Visible nodes: %d\n", len(snap.Visible))
	for _, id := range snap.Visible {
		fmt.Fprintf(inv.out, "  %s\n", id)
	}
	if len(snap.Highlight) > 0 {
		fmt.Fprintf(inv.out, "Highlight: %s\n", models.JoinPattern(snap.Highlight))
	}
	return nil
}

func runStateClear(cmd *cobra.Command, args []string) error {
	inv, err := loadInvocation(cmd)
	if err != nil {
		return err
	}
	defer inv.close()

	states, err := inv.openStore()
	if err != nil {
		return err
	}
	if states == nil {
		fmt.Fprintln(inv.out, "State persistence is disabled (state.backend: none)")
		return nil
	}
	defer store.Close(states)

	key := stateKey(args[0])
	if err := states.Delete(commandContext(cmd), key); err != nil {
		return fmt.Errorf("clear state for %s: %w", key, err)
	}
	fmt.Fprintf(inv.out, "Cleared saved state for %s\n", key)
	return nil
}

// commandContext returns the command's context, or Background outside Execute
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
