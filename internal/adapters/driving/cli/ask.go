package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docfoundry/docfoundry/internal/adapters/driven/config/file"
	"github.com/docfoundry/docfoundry/internal/core/ports/driving"
)

var (
	askProject   string
	askTopK      int
	askThreshold float64
	askProvider  string
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about a project's documentation",
	Long: `Embeds the question, retrieves the most similar indexed chunks for
the project, and generates an answer with source attribution.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askProject, "project", "p", "", "project ID (required)")
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of chunks to retrieve (default 5)")
	askCmd.Flags().Float64Var(&askThreshold, "threshold", 0, "minimum similarity score for context chunks")
	askCmd.Flags().StringVar(&askProvider, "provider", "", "stored provider configuration ID (default: the default provider)")
	_ = askCmd.MarkFlagRequired("project")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if assistant == nil {
		return errors.New("assistant not configured (is DOCFOUNDRY_DSN set?)")
	}

	opts := driving.AskOptions{
		TopK:           askTopK,
		ScoreThreshold: askThreshold,
		ProviderID:     askProvider,
	}
	// Config file defaults apply when flags are unset.
	if configStore != nil {
		if opts.TopK == 0 {
			opts.TopK = configStore.GetInt(file.KeyTopK)
		}
		if opts.ScoreThreshold == 0 {
			opts.ScoreThreshold = configStore.GetFloat(file.KeyScoreThreshold)
		}
	}

	answer, err := assistant.Ask(cmd.Context(), askProject, args[0], opts)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	cmd.Println(answer.Text)

	if len(answer.Sources) > 0 {
		cmd.Println("\nSources:")
		for i, src := range answer.Sources {
			ref := src.FilePath
			if src.HeaderAnchor != "" {
				ref += "#" + src.HeaderAnchor
			}
			cmd.Printf("  [%d] %s (%.4f)\n", i+1, ref, src.Score)
		}
	}
	return nil
}
