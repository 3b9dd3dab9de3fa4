package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/docfoundry/docfoundry/internal/core/domain"
)

var syncProject string

var syncCmd = &cobra.Command{
	Use:   "sync [collection-id]",
	Short: "Ingest documentation from a collection's repository",
	Long: `Runs the ingestion pipeline for a collection: fetch files from its
GitHub repository, store documents, chunk, embed, and index.
With --project and no collection ID, every collection in the project
is synced.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringVarP(&syncProject, "project", "p", "", "project ID (for syncing all collections)")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	if syncService == nil {
		return errors.New("sync service not configured (is DOCFOUNDRY_DSN set?)")
	}

	ctx := cmd.Context()

	if len(args) > 0 {
		collectionID := args[0]
		cmd.Printf("Syncing collection %s...\n", collectionID)

		result, err := syncService.Sync(ctx, collectionID)
		if err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}
		printSyncResult(cmd, result)
		return nil
	}

	if syncProject == "" {
		return errors.New("provide a collection ID or --project")
	}

	cmd.Printf("Syncing all collections in project %s...\n", syncProject)
	results, err := syncService.SyncAll(ctx, syncProject)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	for id, result := range results {
		cmd.Printf("\nCollection %s:\n", id)
		printSyncResult(cmd, result)
	}
	return nil
}

func printSyncResult(cmd *cobra.Command, result *domain.SyncResult) {
	if result.Success {
		cmd.Printf("Synced %d files, %d embeddings in %s\n",
			result.FilesSynced, result.EmbeddingsCreated, result.Duration.Round(time.Millisecond))
	} else {
		cmd.Println("Sync did not complete.")
	}
	if result.FilesFailed > 0 {
		cmd.Printf("%d files failed:\n", result.FilesFailed)
	}
	for _, msg := range result.Errors {
		cmd.Printf("  - %s\n", msg)
	}
}
