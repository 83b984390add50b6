// ABOUTME: CLI command to rank carriers for a client profile
// ABOUTME: Prints fit scores, confidence, advisories and guideline citations
package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harper/carrierfit/internal/models"
)

const disclaimer = "Informational only. Final decisions rest with carrier underwriting."

// NewEvaluateCmd creates the evaluate command
func NewEvaluateCmd() *cobra.Command {
	var (
		profilePath string
		carrierIDs  []string
		top         int
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Rank carriers for a client profile",
		Long: `Rank carriers for a client profile.

The profile is a JSON or YAML file (or "-" for stdin) describing the
applicant: age, sex, height_inches, weight_pounds, tobacco, cannabis,
conditions, risk_activities, dui_history, coverage_amount,
product_type and state.

Each carrier gets a fit score from 0 to 95, a confidence tier, the
reasons and advisories behind it and up to five cited excerpts from
its guidelines.`,
		Example: `  carrierfit evaluate --profile client.yaml
  carrierfit evaluate --profile client.json --carriers acme,summit --top 3
  cat client.json | carrierfit evaluate --profile - --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("top") {
				if err := validatePositiveInt(top, "--top"); err != nil {
					return err
				}
			}

			profile, err := loadProfile(profilePath, cmd.InOrStdin())
			if err != nil {
				return err
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			recs, err := a.Evaluate(cmd.Context(), profile, carrierIDs, top)
			if err != nil {
				return fmt.Errorf("evaluating profile: %w", err)
			}
			fingerprint, err := a.Fingerprint(cmd.Context(), profile, carrierIDs)
			if err != nil {
				return fmt.Errorf("evaluating profile: %w", err)
			}

			if wantJSON() {
				return printJSON(cmd.OutOrStdout(), map[string]interface{}{
					"fingerprint":     fingerprint,
					"recommendations": recs,
				})
			}

			printRecommendations(cmd.OutOrStdout(), recs)
			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "\nFingerprint: %s\n%s\n", fingerprint, disclaimer)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&profilePath, "profile", "p", "", "Profile file (.json or .yaml), or - for stdin")
	cmd.Flags().StringSliceVar(&carrierIDs, "carriers", nil, "Carrier IDs to consider (default: all)")
	cmd.Flags().IntVarP(&top, "top", "n", 0, "Maximum recommendations to show (default: all)")
	_ = cmd.MarkFlagRequired("profile")

	return cmd
}

// printRecommendations renders a summary table followed by per-carrier detail
func printRecommendations(w io.Writer, recs []models.CarrierRecommendation) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "#\tCARRIER\tFIT\tCONFIDENCE\tMATCHED\tREVIEW\n")
	fmt.Fprintf(tw, "-\t-------\t---\t----------\t-------\t------\n")
	for i, r := range recs {
		review := "no"
		if r.FurtherReviewLikely {
			review = "likely"
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%d/%d\t%s\n",
			i+1, truncate(r.CarrierName, 30), r.FitScore, r.Confidence,
			r.QueriesMatched, r.QueriesIssued, review)
	}
	_ = tw.Flush()

	for _, r := range recs {
		fmt.Fprintf(w, "\n%s (%s)\n", r.CarrierName, r.CarrierID)
		for _, reason := range r.Reasons {
			fmt.Fprintf(w, "  + %s\n", reason)
		}
		for _, adv := range r.Advisories {
			fmt.Fprintf(w, "  ! %s\n", adv)
		}
		for _, c := range r.Citations {
			where := c.DocumentTitle
			if c.Section != "" {
				where += " / " + c.Section
			}
			fmt.Fprintf(w, "  [%.2f] %s (%s): %s\n", c.Score, where, c.EffectiveDate,
				truncate(strings.Join(strings.Fields(c.Snippet), " "), 100))
		}
	}
}
