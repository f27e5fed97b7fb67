package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harrison/teachtree/internal/behavioral"
	"github.com/harrison/teachtree/internal/session"
	"github.com/harrison/teachtree/internal/store"
	"github.com/harrison/teachtree/internal/tree"
)

// NewWatchCommand creates the 'teachtree watch' command
func NewWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <transcript>",
		Short: "Rebuild the tree whenever the transcript changes",
		Long: `Watch a transcript file and rebuild the aggregation tree on every change.

Nodes that are still present after a rebuild keep their visibility; when
none survive, the initial view is used. The visibility state is restored on
start and saved when watching stops. Press Ctrl+C to stop.

Examples:
  teachtree watch lesson01.jsonl
  teachtree watch lesson01.jsonl --debounce 500ms`,
		Args: cobra.ExactArgs(1),
		RunE: runWatch,
	}

	cmd.Flags().Duration("debounce", behavioral.DefaultDebounceDelay, "Delay for coalescing rapid writes")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	inv, err := loadInvocation(cmd)
	if err != nil {
		return err
	}
	defer inv.close()

	debounce, _ := cmd.Flags().GetDuration("debounce")
	if debounce < 0 {
		return fmt.Errorf("--debounce cannot be negative, got %s", debounce)
	}

	path := args[0]
	sess, err := inv.openSession(path)
	if err != nil {
		return err
	}

	states, err := inv.openStore()
	if err != nil {
		return err
	}
	defer store.Close(states)

	ctx := commandContext(cmd)
	key := stateKey(path)
	if _, err := sess.Restore(ctx, states, key); err != nil {
		inv.log.LogWarn(err.Error())
	}

	watcher, err := behavioral.NewTranscriptWatcher(path)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}
	defer watcher.Close()
	watcher.SetDebounceDelay(debounce)

	header := color.New(color.FgCyan)
	if !inv.color {
		header.DisableColor()
	}
	header.Fprintf(inv.out, "Watching %s\n", watcher.Path())
	header.Fprintln(inv.out, "Press Ctrl+C to stop")
	fmt.Fprintln(inv.out)
	fmt.Fprint(inv.out, tree.RenderText(sess.View(), inv.color))

	// Saving happens after cancellation, so it must not inherit it
	saveCtx := context.WithoutCancel(ctx)

	for {
		select {
		case <-ctx.Done():
			return sess.Save(saveCtx, states, key)
		case err, ok := <-watcher.Errors():
			if !ok {
				return sess.Save(saveCtx, states, key)
			}
			inv.log.LogWarn(fmt.Sprintf("watcher error: %v", err))
		case event, ok := <-watcher.Events():
			if !ok {
				return sess.Save(saveCtx, states, key)
			}
			handleTranscriptChange(inv, sess, event, header)
		}
	}
}

// handleTranscriptChange rebuilds and redraws the tree after a change
func handleTranscriptChange(inv *invocation, sess *session.Session, event behavioral.FileEvent, header *color.Color) {
	if event.Op == behavioral.FileRemoved {
		inv.log.LogWarn(fmt.Sprintf("%s was removed, waiting for it to reappear", event.Path))
		return
	}

	tr, err := inv.loadTranscript(event.Path)
	if err != nil {
		inv.log.LogWarn(fmt.Sprintf("keeping previous tree: %v", err))
		return
	}
	sess.RebuildTranscript(tr)

	fmt.Fprintln(inv.out)
	header.Fprintf(inv.out, "--- %s %s ---\n", event.Op, event.Timestamp.Format(time.TimeOnly))
	fmt.Fprint(inv.out, tree.RenderText(sess.View(), inv.color))
}
