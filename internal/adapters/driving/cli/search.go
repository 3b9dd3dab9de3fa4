package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docfoundry/docfoundry/internal/core/domain"
)

var (
	searchProject string
	searchLimit   int
	searchJSON    bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search a project's indexed documentation",
	Long: `Runs similarity retrieval only: embeds the query and prints the
most similar indexed chunks with their scores and section anchors,
without calling a completion provider.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchProject, "project", "p", "", "project ID (required)")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (default 5)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	_ = searchCmd.MarkFlagRequired("project")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if assistant == nil {
		return errors.New("assistant not configured (is DOCFOUNDRY_DSN set?)")
	}

	hits, err := assistant.Search(cmd.Context(), searchProject, args[0], searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, hits)
	}
	return outputSearchText(cmd, hits)
}

type searchHit struct {
	FilePath     string  `json:"file_path"`
	HeaderAnchor string  `json:"header_anchor,omitempty"`
	Score        float64 `json:"score"`
	Text         string  `json:"text"`
}

func outputSearchJSON(cmd *cobra.Command, hits []domain.ScoredChunk) error {
	out := make([]searchHit, len(hits))
	for i, h := range hits {
		out[i] = searchHit{
			FilePath:     h.FilePath,
			HeaderAnchor: h.Chunk.HeaderAnchor,
			Score:        domain.RoundScore(h.Score),
			Text:         h.Chunk.Text,
		}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchText(cmd *cobra.Command, hits []domain.ScoredChunk) error {
	if len(hits) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	for i, h := range hits {
		ref := h.FilePath
		if h.Chunk.HeaderAnchor != "" {
			ref += "#" + h.Chunk.HeaderAnchor
		}
		cmd.Printf("[%d] %s (%.4f)\n", i+1, ref, h.Score)

		text := h.Chunk.Text
		if len(text) > 200 {
			text = text[:200] + "..."
		}
		cmd.Printf("    %s\n", text)
	}
	return nil
}
