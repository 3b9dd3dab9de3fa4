// Package cli provides the docfoundry command line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/docfoundry/docfoundry/internal/core/ports/driven"
	"github.com/docfoundry/docfoundry/internal/core/ports/driving"
	"github.com/docfoundry/docfoundry/internal/logger"
)

// version is set by Execute from the build entrypoint.
var version = "dev"

// verbose toggles debug logging.
var verbose bool

// Services and stores injected by the entrypoint via SetServices.
// Commands fail with a clear error when their dependency is nil.
var (
	syncService     driving.SyncService
	assistant       driving.Assistant
	collectionStore driven.CollectionStore
	chunkStore      driven.ChunkStore
	providerStore   driven.ProviderStore
	configStore     driven.ConfigStore
)

// Services bundles everything the commands need.
type Services struct {
	Sync        driving.SyncService
	Assistant   driving.Assistant
	Collections driven.CollectionStore
	Chunks      driven.ChunkStore
	Providers   driven.ProviderStore
	Config      driven.ConfigStore
}

// SetServices injects the wired adapters. Called once from main
// before Execute.
func SetServices(s Services) {
	syncService = s.Sync
	assistant = s.Assistant
	collectionStore = s.Collections
	chunkStore = s.Chunks
	providerStore = s.Providers
	configStore = s.Config
}

var rootCmd = &cobra.Command{
	Use:   "docfoundry",
	Short: "Ingest documentation from GitHub and answer questions about it",
	Long: `docfoundry fetches documentation files from GitHub repositories,
chunks and embeds them into a vector index, and answers questions
grounded in the indexed content with source attribution.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the CLI with the given build version.
func Execute(v string) error {
	version = v
	return rootCmd.Execute()
}
