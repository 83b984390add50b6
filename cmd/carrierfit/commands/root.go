// ABOUTME: Root command, global flags and shared App construction for the CLI
// ABOUTME: Every subcommand opens the App through openApp so tests can substitute it
package commands

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/harper/carrierfit/internal/app"
	"github.com/harper/carrierfit/internal/config"
	"github.com/harper/carrierfit/internal/logging"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
)

// openApp builds the App for a command invocation
var openApp = func(cmd *cobra.Command) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	a, err := app.Open(cfg, newLogger(cfg.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

// newLogger applies --verbose and --quiet over the configured level
func newLogger(level string) *log.Logger {
	switch {
	case verbose:
		level = "debug"
	case quiet:
		level = "error"
	}
	return logging.New(os.Stderr, level)
}

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "carrierfit",
		Short: "Match life insurance applicants to carrier guidelines",
		Long: `
 ██████╗ █████╗ ██████╗ ██████╗ ██╗███████╗██████╗ ███████╗██╗████████╗
██╔════╝██╔══██╗██╔══██╗██╔══██╗██║██╔════╝██╔══██╗██╔════╝██║╚══██╔══╝
██║     ███████║██████╔╝██████╔╝██║█████╗  ██████╔╝█████╗  ██║   ██║
██║     ██╔══██║██╔══██╗██╔══██╗██║██╔══╝  ██╔══██╗██╔══╝  ██║   ██║
╚██████╗██║  ██║██║  ██║██║  ██║██║███████╗██║  ██║██║     ██║   ██║
 ╚═════╝╚═╝  ╚═╝╚═╝  ╚═╝╚═╝  ╚═╝╚═╝╚══════╝╚═╝  ╚═╝╚═╝     ╚═╝   ╚═╝

Ingest carrier underwriting guidelines and rank carriers for a client
profile with fit scores, confidence tiers and cited guideline excerpts.

Results are informational only and are not underwriting decisions.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch outputFormat {
			case "auto", "json", "table":
				return nil
			default:
				return fmt.Errorf("--format must be auto, json or table, got %q", outputFormat)
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress informational output")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format: auto, json, table")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(NewCarriersCmd())
	cmd.AddCommand(NewIngestCmd())
	cmd.AddCommand(NewEvaluateCmd())
	cmd.AddCommand(NewRecommendationsCmd())
	cmd.AddCommand(NewWatchCmd())
	cmd.AddCommand(NewMCPCmd())
	cmd.AddCommand(NewSyncCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
