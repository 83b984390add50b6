// ABOUTME: CLI command to ingest one carrier guideline file
// ABOUTME: Extracts text from .txt, .md or .pdf and stores it as a document version
package commands

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/harper/carrierfit/internal/extract"
	"github.com/harper/carrierfit/internal/models"
)

// NewIngestCmd creates the ingest command
func NewIngestCmd() *cobra.Command {
	var (
		carrierID string
		title     string
		effective string
		source    string
	)

	cmd := &cobra.Command{
		Use:   "ingest <file>",
		Short: "Ingest a carrier guideline document",
		Long: `Ingest a carrier guideline document.

The file is chunked by section, embedded and indexed for retrieval.
Re-ingesting identical text is a no-op. Changed text under the same
carrier and title becomes a new version and supersedes the old one.

Supported formats: .txt, .md, .markdown, .pdf`,
		Example: `  carrierfit ingest acme-field-guide.pdf --carrier acme --effective 2025-01-01
  carrierfit ingest notes.md --carrier summit --title "Build Chart" --effective 2024-07-01`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			date := time.Now().UTC().Truncate(24 * time.Hour)
			if effective != "" {
				d, err := models.ParseDate(effective)
				if err != nil {
					return err
				}
				date = d
			}

			text, err := extract.File(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}

			if title == "" {
				title = titleFromPath(path)
			}
			if source == "" {
				source = path
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			receipt, err := a.Ingest(cmd.Context(), models.IngestRequest{
				Text:           text,
				CarrierID:      carrierID,
				Title:          title,
				EffectiveDate:  date,
				SourceLocation: source,
			})
			if err != nil {
				return fmt.Errorf("ingesting %s: %w", path, err)
			}

			if wantJSON() {
				return printJSON(cmd.OutOrStdout(), receipt)
			}
			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Ingested %q v%d for %s: %d chunk(s), %d indexed\n",
					title, receipt.Version, carrierID, receipt.Chunks, receipt.Indexed)
				if receipt.Superseded != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "  superseded %s\n", receipt.Superseded)
				}
				if receipt.Embedded < receipt.Chunks {
					fmt.Fprintf(cmd.OutOrStdout(), "  warning: %d chunk(s) could not be embedded\n", receipt.Chunks-receipt.Embedded)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&carrierID, "carrier", "", "Carrier ID the guideline belongs to")
	cmd.Flags().StringVar(&title, "title", "", "Document title (default: file name)")
	cmd.Flags().StringVar(&effective, "effective", "", "Effective date YYYY-MM-DD (default: today)")
	cmd.Flags().StringVar(&source, "source", "", "Source location recorded with the document (default: file path)")
	_ = cmd.MarkFlagRequired("carrier")

	return cmd
}

// titleFromPath turns "field_guide.pdf" into "field guide"
func titleFromPath(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return strings.TrimSpace(strings.ReplaceAll(stem, "_", " "))
}
