// ABOUTME: Commands for browsing cached evaluations
// ABOUTME: Cached copies are advisory; evaluate always recomputes
package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harper/carrierfit/internal/models"
)

// NewRecommendationsCmd creates the recommendations command group
func NewRecommendationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "recommendations",
		Aliases: []string{"recs"},
		Short:   "Browse cached evaluations",
		Long: `Browse cached evaluations.

Every evaluate run stores its result under a fingerprint of the
normalized profile and carrier set. These commands read the cache;
they never re-run retrieval.`,
	}

	cmd.AddCommand(newRecommendationsShowCmd())
	cmd.AddCommand(newRecommendationsListCmd())

	return cmd
}

func newRecommendationsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <fingerprint>",
		Short: "Show the latest cached evaluation for a fingerprint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			eval, err := a.CachedEvaluation(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("loading evaluation %s: %w", args[0], err)
			}

			if wantJSON() {
				return printJSON(cmd.OutOrStdout(), eval)
			}

			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "Evaluation %s (%s)\n\n", eval.ID, formatTime(eval.CreatedAt))
			}
			printRecommendations(cmd.OutOrStdout(), eval.Recommendations)
			return nil
		},
	}
}

func newRecommendationsListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent cached evaluations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validatePositiveInt(limit, "--limit"); err != nil {
				return err
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			evals, err := a.Store.ListEvaluations(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("listing evaluations: %w", err)
			}

			if wantJSON() {
				if evals == nil {
					evals = []models.Evaluation{}
				}
				return printJSON(cmd.OutOrStdout(), evals)
			}

			if len(evals) == 0 {
				if !quiet {
					fmt.Fprintf(cmd.OutOrStdout(), "No cached evaluations\n")
				}
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "FINGERPRINT\tCREATED\tAGE\tSTATE\tTOP CARRIER\tFIT\n")
			fmt.Fprintf(w, "-----------\t-------\t---\t-----\t-----------\t---\n")
			for _, e := range evals {
				top, fit := "-", "-"
				if len(e.Recommendations) > 0 {
					top = truncate(e.Recommendations[0].CarrierName, 25)
					fit = fmt.Sprintf("%d", e.Recommendations[0].FitScore)
				}
				state := e.Profile.State
				if state == "" {
					state = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\n",
					e.Fingerprint, formatTime(e.CreatedAt), e.Profile.Age, state, top, fit)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum evaluations to list")

	return cmd
}
