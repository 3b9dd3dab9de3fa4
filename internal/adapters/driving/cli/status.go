package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var statusProject string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show a project's index status",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().StringVarP(&statusProject, "project", "p", "", "project ID (required)")
	_ = statusCmd.MarkFlagRequired("project")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if collectionStore == nil || chunkStore == nil {
		return errors.New("storage not configured (is DOCFOUNDRY_DSN set?)")
	}

	ctx := cmd.Context()

	collections, err := collectionStore.ListByProject(ctx, statusProject)
	if err != nil {
		return fmt.Errorf("list collections: %w", err)
	}

	count, err := chunkStore.CountByProject(ctx, statusProject)
	if err != nil {
		return fmt.Errorf("count chunks: %w", err)
	}

	cmd.Printf("Project %s: %d collections, %d indexed chunks\n",
		statusProject, len(collections), count)

	for _, c := range collections {
		synced := "never synced"
		if c.LastSyncedAt != nil {
			synced = "synced " + c.LastSyncedAt.Format("2006-01-02 15:04")
		}
		cmd.Printf("  %s  %s  %s\n", c.ID, c.Name, synced)
	}
	return nil
}
