// ABOUTME: Carrier roster commands: add, list, remove, documents, import and export
// ABOUTME: The roster is YAML on disk; preference rank breaks fit-score ties
package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/harper/carrierfit/internal/app"
	"github.com/harper/carrierfit/internal/models"
)

// NewCarriersCmd creates the carriers command group
func NewCarriersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "carriers",
		Short: "Manage the carrier roster",
		Long: `Manage the carriers that evaluations rank.

Each carrier has a stable ID, a display name, a preference rank (lower
wins ties) and an optional list of licensed states.`,
	}

	cmd.AddCommand(newCarriersAddCmd())
	cmd.AddCommand(newCarriersListCmd())
	cmd.AddCommand(newCarriersRemoveCmd())
	cmd.AddCommand(newCarriersDocumentsCmd())
	cmd.AddCommand(newCarriersImportCmd())
	cmd.AddCommand(newCarriersExportCmd())

	return cmd
}

func newCarriersAddCmd() *cobra.Command {
	var (
		name   string
		rank   int
		states []string
	)

	cmd := &cobra.Command{
		Use:   "add <id>",
		Short: "Register or update a carrier",
		Example: `  carrierfit carriers add acme --name "Acme Life" --rank 1 --states TX,OK
  carrierfit carriers add summit --name "Summit Mutual"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			carrier := &models.Carrier{
				ID:             args[0],
				Name:           name,
				PreferenceRank: rank,
				States:         states,
			}
			if err := a.Store.SaveCarrier(cmd.Context(), carrier); err != nil {
				return fmt.Errorf("saving carrier: %w", err)
			}

			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved carrier %s (%s)\n", carrier.ID, carrier.Name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().IntVar(&rank, "rank", 0, "Preference rank (lower wins ties)")
	cmd.Flags().StringSliceVar(&states, "states", nil, "Licensed states (comma-separated, empty means all)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newCarriersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered carriers",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			carriers, err := a.Store.ListCarriers(cmd.Context())
			if err != nil {
				return fmt.Errorf("listing carriers: %w", err)
			}

			if wantJSON() {
				if carriers == nil {
					carriers = []models.Carrier{}
				}
				return printJSON(cmd.OutOrStdout(), carriers)
			}

			if len(carriers) == 0 {
				if !quiet {
					fmt.Fprintf(cmd.OutOrStdout(), "No carriers registered\n")
				}
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "RANK\tID\tNAME\tSTATES\n")
			fmt.Fprintf(w, "----\t--\t----\t------\n")
			for _, c := range carriers {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", c.PreferenceRank, c.ID, truncate(c.Name, 30), joinOrDash(c.States))
			}
			_ = w.Flush()

			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "\nTotal: %d carrier(s)\n", len(carriers))
			}
			return nil
		},
	}
}

func newCarriersRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a carrier with its documents and vectors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			if err := a.DeleteCarrier(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("removing carrier: %w", err)
			}
			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed carrier %s\n", args[0])
			}
			return nil
		},
	}
}

func newCarriersDocumentsCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "documents <id>",
		Short: "List ingested guideline documents for a carrier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			docs, err := a.Store.ListDocuments(cmd.Context(), args[0], all)
			if err != nil {
				return fmt.Errorf("listing documents: %w", err)
			}

			if wantJSON() {
				if docs == nil {
					docs = []models.Document{}
				}
				return printJSON(cmd.OutOrStdout(), docs)
			}

			if len(docs) == 0 {
				if !quiet {
					fmt.Fprintf(cmd.OutOrStdout(), "No documents for %s\n", args[0])
				}
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "TITLE\tVERSION\tEFFECTIVE\tSTATUS\tINGESTED\n")
			fmt.Fprintf(w, "-----\t-------\t---------\t------\t--------\n")
			for _, d := range docs {
				status := "current"
				if d.IsSuperseded() {
					status = "superseded"
				}
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n",
					truncate(d.Title, 40), d.Version, d.EffectiveDate.Format(models.DateLayout),
					status, formatTime(d.CreatedAt))
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include superseded versions")

	return cmd
}

func newCarriersImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <roster.yaml>",
		Short: "Import carriers from a YAML roster",
		Long: `Import carriers from a YAML roster file.

The file is either a list of carriers or a mapping with a carriers key:

  carriers:
    - id: acme
      name: Acme Life
      preference_rank: 1
      states: [TX, OK]`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			n, err := a.Store.ImportRosterFile(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("importing roster: %w", err)
			}
			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Imported %d carrier(s)\n", n)
			}
			return nil
		},
	}
}

func newCarriersExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the roster with document versions",
		Long: `Export the carrier roster and current guideline versions.

Files ending in .md are written as a Markdown summary; anything else
is written as YAML that carriers import accepts. Without --output the
YAML goes to stdout.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			switch {
			case output == "":
				return writeRoster(cmd, a)
			case strings.HasSuffix(strings.ToLower(output), ".md"):
				err = a.Store.ExportToMarkdown(cmd.Context(), output)
			default:
				err = a.Store.ExportToYAML(cmd.Context(), output)
			}
			if err != nil {
				return fmt.Errorf("exporting roster: %w", err)
			}

			if output != "" && !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported roster to %s\n", output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (.yaml or .md)")

	return cmd
}

// writeRoster prints the roster to stdout as YAML, or JSON with --format json
func writeRoster(cmd *cobra.Command, a *app.App) error {
	roster, err := a.Store.Export(cmd.Context())
	if err != nil {
		return fmt.Errorf("exporting roster: %w", err)
	}
	if wantJSON() {
		return printJSON(cmd.OutOrStdout(), roster)
	}

	encoder := yaml.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent(2)
	if err := encoder.Encode(roster); err != nil {
		return fmt.Errorf("encoding roster: %w", err)
	}
	return encoder.Close()
}
