// ABOUTME: Watch command re-ingests guideline files dropped into a directory
// ABOUTME: Layout is <dir>/<carrier-id>/<title>[@YYYY-MM-DD].<ext>
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/harper/carrierfit/internal/watcher"
)

// NewWatchCmd creates the watch command
func NewWatchCmd() *cobra.Command {
	var (
		once     bool
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Ingest guideline files as they appear in a directory",
		Long: `Watch a directory tree and ingest guideline files as they change.

Each carrier gets a subdirectory named by its ID. The file name is the
document title; an @YYYY-MM-DD suffix sets the effective date,
otherwise the file's modification date is used. Existing files are
ingested on startup.`,
		Example: `  carrierfit watch ./guidelines
  # ./guidelines/acme/Field_Guide@2025-01-01.pdf
  carrierfit watch ./guidelines --once`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := args[0]
			info, err := os.Stat(root)
			if err != nil {
				return fmt.Errorf("opening %s: %w", root, err)
			}
			if !info.IsDir() {
				return fmt.Errorf("%s is not a directory", root)
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w := watcher.New(a.Ingest, a.Logger, watcher.WithDebounce(debounce))
			if err := w.Scan(ctx, root); err != nil {
				return fmt.Errorf("scanning %s: %w", root, err)
			}
			if once {
				return nil
			}

			if !quiet {
				a.Logger.Info("watching for guideline changes", "dir", root)
			}
			if err := w.Run(ctx, root); err != nil && ctx.Err() == nil {
				return fmt.Errorf("watching %s: %w", root, err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "Ingest existing files and exit")
	cmd.Flags().DurationVar(&debounce, "debounce", watcher.DefaultDebounce, "Quiet period before a changed file is ingested")

	return cmd
}

// cmdContext returns the command context, or Background when run outside Execute
func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
