package main

import (
	"context"
	"fmt"
	"os"

	"github.com/docfoundry/docfoundry/internal/adapters/driven/config/file"
	embedollama "github.com/docfoundry/docfoundry/internal/adapters/driven/embedding/ollama"
	"github.com/docfoundry/docfoundry/internal/adapters/driven/llm"
	"github.com/docfoundry/docfoundry/internal/adapters/driven/storage/postgres"
	"github.com/docfoundry/docfoundry/internal/adapters/driving/cli"
	"github.com/docfoundry/docfoundry/internal/chunking"
	"github.com/docfoundry/docfoundry/internal/connectors/github"
	"github.com/docfoundry/docfoundry/internal/core/services"
	"github.com/docfoundry/docfoundry/internal/logger"
)

// version is overridden at build time via -ldflags.
var version = "dev"

func main() {
	ctx := context.Background()

	cleanup, err := wire(ctx)
	if err != nil {
		// Commands that need storage report the problem themselves;
		// version and help still work.
		logger.Debug("Service wiring incomplete: %v", err)
	}
	if cleanup != nil {
		defer cleanup()
	}

	if err := cli.Execute(version); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// wire builds the production adapters and injects them into the CLI.
// Secrets come from the environment: DOCFOUNDRY_DSN, GITHUB_TOKEN and
// the provider API keys. Non-secret settings come from the TOML
// config file.
func wire(ctx context.Context) (func(), error) {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		return nil, fmt.Errorf("config store: %w", err)
	}

	dsn := os.Getenv("DOCFOUNDRY_DSN")
	if dsn == "" {
		cli.SetServices(cli.Services{Config: configStore})
		return nil, fmt.Errorf("DOCFOUNDRY_DSN is not set")
	}

	store, err := postgres.NewStore(ctx, dsn)
	if err != nil {
		cli.SetServices(cli.Services{Config: configStore})
		return nil, fmt.Errorf("postgres store: %w", err)
	}

	chunker, err := chunking.NewProcessor()
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("chunker: %w", err)
	}

	fetcher := github.NewFetcher(github.NewClient(ctx, os.Getenv("GITHUB_TOKEN")))

	embedder := embedollama.NewEmbeddingService(embedollama.Config{
		BaseURL: configStore.GetString(file.KeyOllamaHost),
		Model:   configStore.GetString(file.KeyEmbeddingModel),
	})

	router := llm.NewRouterFromEnv()

	syncService := services.NewSyncOrchestrator(
		store.CollectionStore(),
		store.DocumentStore(),
		store.ChunkStore(),
		store.SyncJobStore(),
		fetcher,
		chunker,
		embedder,
	)
	assistant := services.NewAssistantService(
		store.ChunkStore(),
		store.ProviderStore(),
		embedder,
		router,
	)

	cli.SetServices(cli.Services{
		Sync:        syncService,
		Assistant:   assistant,
		Collections: store.CollectionStore(),
		Chunks:      store.ChunkStore(),
		Providers:   store.ProviderStore(),
		Config:      configStore,
	})

	return store.Close, nil
}
