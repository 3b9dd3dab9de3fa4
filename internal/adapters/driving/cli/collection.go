package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docfoundry/docfoundry/internal/adapters/driven/config/file"
	"github.com/docfoundry/docfoundry/internal/core/domain"
)

var (
	collectionProject string
	collectionName    string
	collectionFolder  string
)

var collectionCmd = &cobra.Command{
	Use:   "collection",
	Short: "Manage documentation collections",
}

var collectionAddCmd = &cobra.Command{
	Use:   "add [repo-url]",
	Short: "Register a repository as a documentation collection",
	Args:  cobra.ExactArgs(1),
	RunE:  runCollectionAdd,
}

var collectionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a project's collections",
	RunE:  runCollectionList,
}

var collectionRemoveCmd = &cobra.Command{
	Use:   "remove [collection-id]",
	Short: "Remove a collection and its indexed documents",
	Args:  cobra.ExactArgs(1),
	RunE:  runCollectionRemove,
}

func init() {
	collectionAddCmd.Flags().StringVarP(&collectionProject, "project", "p", "", "project ID (required)")
	collectionAddCmd.Flags().StringVar(&collectionName, "name", "", "collection display name")
	collectionAddCmd.Flags().StringVar(&collectionFolder, "folder", "", "repository folder to ingest (default: docs)")
	_ = collectionAddCmd.MarkFlagRequired("project")

	collectionListCmd.Flags().StringVarP(&collectionProject, "project", "p", "", "project ID (required)")
	_ = collectionListCmd.MarkFlagRequired("project")

	collectionCmd.AddCommand(collectionAddCmd, collectionListCmd, collectionRemoveCmd)
	rootCmd.AddCommand(collectionCmd)
}

func runCollectionAdd(cmd *cobra.Command, args []string) error {
	if collectionStore == nil {
		return errors.New("storage not configured (is DOCFOUNDRY_DSN set?)")
	}

	name := collectionName
	if name == "" {
		name = args[0]
	}

	folder := collectionFolder
	if folder == "" && configStore != nil {
		folder = configStore.GetString(file.KeyGitHubFolder)
	}

	created, err := collectionStore.Create(cmd.Context(), &domain.DocCollection{
		ProjectID:  collectionProject,
		Name:       name,
		RepoURL:    args[0],
		FolderPath: folder,
	})
	if err != nil {
		return fmt.Errorf("create collection: %w", err)
	}

	cmd.Printf("Created collection %s (%s)\n", created.ID, created.Name)
	return nil
}

func runCollectionList(cmd *cobra.Command, _ []string) error {
	if collectionStore == nil {
		return errors.New("storage not configured (is DOCFOUNDRY_DSN set?)")
	}

	collections, err := collectionStore.ListByProject(cmd.Context(), collectionProject)
	if err != nil {
		return fmt.Errorf("list collections: %w", err)
	}

	if len(collections) == 0 {
		cmd.Println("No collections.")
		return nil
	}

	for _, c := range collections {
		synced := "never"
		if c.LastSyncedAt != nil {
			synced = c.LastSyncedAt.Format("2006-01-02 15:04")
		}
		cmd.Printf("%s  %s  %s  last synced: %s\n", c.ID, c.Name, c.RepoURL, synced)
	}
	return nil
}

func runCollectionRemove(cmd *cobra.Command, args []string) error {
	if collectionStore == nil {
		return errors.New("storage not configured (is DOCFOUNDRY_DSN set?)")
	}

	if err := collectionStore.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("remove collection: %w", err)
	}
	cmd.Printf("Removed collection %s\n", args[0])
	return nil
}
