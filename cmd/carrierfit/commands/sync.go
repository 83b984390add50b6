// ABOUTME: Sync commands for the Charm-backed vector index
// ABOUTME: Provides status, immediate sync, wipe and key listing
package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/carrierfit/internal/app"
	"github.com/harper/carrierfit/internal/charm"
	"github.com/harper/carrierfit/internal/models"
)

var errCharmDisabled = errors.New("charm sync is disabled; set CARRIERFIT_VECTOR_BACKEND=charm")

// NewSyncCmd creates the sync command group
func NewSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Manage Charm cloud synchronization",
		Long: `Manage synchronization of the vector index with Charm cloud.

With CARRIERFIT_VECTOR_BACKEND=charm, chunk embeddings live in a Charm
KV store that syncs across devices linked to the same Charm account
via SSH keys. Carriers, documents and evaluations stay in local SQLite.`,
	}

	cmd.AddCommand(newSyncStatusCmd())
	cmd.AddCommand(newSyncNowCmd())
	cmd.AddCommand(newSyncWipeCmd())
	cmd.AddCommand(newSyncKeysCmd())

	return cmd
}

// withCharm opens the App and hands its Charm client to fn
func withCharm(cmd *cobra.Command, fn func(a *app.App, client *charm.Client) error) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if a.Charm == nil {
		return errCharmDisabled
	}
	return fn(a, a.Charm)
}

func newSyncStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show sync status and index statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			stats, err := a.Store.Stats(cmd.Context())
			if err != nil {
				return fmt.Errorf("reading stats: %w", err)
			}
			vectors, err := a.Index.Count(cmd.Context(), models.VectorFilter{})
			if err != nil {
				return fmt.Errorf("counting vectors: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Database: %s\n", a.Store.Path())
			fmt.Fprintf(out, "Carriers: %d\n", stats.Carriers)
			fmt.Fprintf(out, "Documents: %d\n", stats.Documents)
			fmt.Fprintf(out, "Chunks: %d\n", stats.Chunks)
			fmt.Fprintf(out, "Vectors: %d\n", vectors)
			fmt.Fprintf(out, "Cached evaluations: %d\n", stats.Evaluations)

			if a.Charm == nil {
				fmt.Fprintln(out, "Sync: disabled (sqlite vector backend)")
				return nil
			}

			cfg := a.Charm.Config()
			id, err := a.Charm.ID()
			if err != nil {
				fmt.Fprintln(out, "Sync: not connected")
				fmt.Fprintln(out, "Run 'carrierfit sync keys' to check your SSH keys")
				return nil
			}
			fmt.Fprintln(out, "Sync: connected")
			fmt.Fprintf(out, "User ID: %s\n", id)
			fmt.Fprintf(out, "Host: %s\n", cfg.Host)
			fmt.Fprintf(out, "KV store: %s\n", cfg.DBName)
			return nil
		},
	}
}

func newSyncNowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "now",
		Short: "Force immediate sync with Charm cloud",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCharm(cmd, func(a *app.App, client *charm.Client) error {
				if !quiet {
					fmt.Fprintln(cmd.OutOrStdout(), "Syncing...")
				}
				if err := client.Sync(); err != nil {
					return fmt.Errorf("sync failed: %w", err)
				}
				if !quiet {
					fmt.Fprintln(cmd.OutOrStdout(), "Sync complete")
				}
				return nil
			})
		},
	}
}

func newSyncWipeCmd() *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "wipe",
		Short: "Wipe the local Charm vector cache",
		Long: `Completely wipe the local Charm KV data.

WARNING: This deletes all locally cached vectors. Cloud data remains
intact and will be re-synced on next access.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				fmt.Fprintln(cmd.OutOrStdout(), "This will wipe ALL local vector data!")
				fmt.Fprintln(cmd.OutOrStdout(), "Run with --confirm to proceed")
				return nil
			}

			return withCharm(cmd, func(a *app.App, client *charm.Client) error {
				if err := client.Reset(); err != nil {
					return fmt.Errorf("failed to wipe data: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Local vector data wiped successfully")
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&confirm, "confirm", false, "Confirm the wipe operation")

	return cmd
}

func newSyncKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List authorized SSH keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCharm(cmd, func(a *app.App, client *charm.Client) error {
				keys, err := client.GetAuthorizedKeys()
				if err != nil {
					return fmt.Errorf("failed to get authorized keys: %w", err)
				}
				if keys == "" {
					fmt.Fprintln(cmd.OutOrStdout(), "No authorized keys found")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Authorized SSH keys:")
				fmt.Fprintln(cmd.OutOrStdout(), keys)
				return nil
			})
		},
	}
}
