package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docfoundry/docfoundry/internal/core/domain"
)

var (
	providerModel       string
	providerTemperature float64
	providerMaxTokens   int
	providerDefault     bool
)

var providerCmd = &cobra.Command{
	Use:   "provider",
	Short: "Manage completion provider configurations",
	Long: `Stores non-secret completion provider settings (provider, model,
generation parameters). API keys are read from the environment
(OPENAI_API_KEY, GOOGLE_API_KEY, LITELLM_API_KEY) and are never stored.`,
}

var providerAddCmd = &cobra.Command{
	Use:   "add [openai|google|litellm|ollama]",
	Short: "Store a provider configuration",
	Args:  cobra.ExactArgs(1),
	RunE:  runProviderAdd,
}

var providerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored provider configurations",
	RunE:  runProviderList,
}

var providerRemoveCmd = &cobra.Command{
	Use:   "remove [provider-id]",
	Short: "Remove a provider configuration",
	Args:  cobra.ExactArgs(1),
	RunE:  runProviderRemove,
}

func init() {
	providerAddCmd.Flags().StringVarP(&providerModel, "model", "m", "", "model name (provider default when empty)")
	providerAddCmd.Flags().Float64Var(&providerTemperature, "temperature", 0, "generation temperature")
	providerAddCmd.Flags().IntVar(&providerMaxTokens, "max-tokens", 0, "completion token bound")
	providerAddCmd.Flags().BoolVar(&providerDefault, "default", false, "use as the default provider")

	providerCmd.AddCommand(providerAddCmd, providerListCmd, providerRemoveCmd)
	rootCmd.AddCommand(providerCmd)
}

func runProviderAdd(cmd *cobra.Command, args []string) error {
	if providerStore == nil {
		return errors.New("storage not configured (is DOCFOUNDRY_DSN set?)")
	}

	name, err := domain.ParseProviderName(args[0])
	if err != nil {
		return err
	}

	saved, err := providerStore.Save(cmd.Context(), &domain.ProviderConfig{
		Provider:    name,
		Model:       providerModel,
		Temperature: providerTemperature,
		MaxTokens:   providerMaxTokens,
		IsDefault:   providerDefault,
	})
	if err != nil {
		return fmt.Errorf("save provider: %w", err)
	}

	cmd.Printf("Saved provider %s (%s)\n", saved.ID, saved.Provider)
	return nil
}

func runProviderList(cmd *cobra.Command, _ []string) error {
	if providerStore == nil {
		return errors.New("storage not configured (is DOCFOUNDRY_DSN set?)")
	}

	configs, err := providerStore.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("list providers: %w", err)
	}

	if len(configs) == 0 {
		cmd.Println("No providers configured.")
		return nil
	}

	for _, cfg := range configs {
		marker := " "
		if cfg.IsDefault {
			marker = "*"
		}
		model := cfg.Model
		if model == "" {
			model = "(provider default)"
		}
		cmd.Printf("%s %s  %s  %s\n", marker, cfg.ID, cfg.Provider, model)
	}
	return nil
}

func runProviderRemove(cmd *cobra.Command, args []string) error {
	if providerStore == nil {
		return errors.New("storage not configured (is DOCFOUNDRY_DSN set?)")
	}

	if err := providerStore.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("remove provider: %w", err)
	}
	cmd.Printf("Removed provider %s\n", args[0])
	return nil
}
