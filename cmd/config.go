package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/praetor-sec/praetor/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration (providers, models, keys, scan defaults)",
}

var setKeyCmd = &cobra.Command{
	Use:   "set-key",
	Short: "Manually set API key for a provider",
	Run: func(cmd *cobra.Command, args []string) {
		provider, _ := cmd.Flags().GetString("provider")
		key, _ := cmd.Flags().GetString("key")

		if provider == "" || key == "" {
			fmt.Println("Error: --provider and --key are required")
			return
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			return
		}

		cfg.SetAPIKey(strings.ToLower(provider), key)
		if err := config.SaveConfig(cfg); err != nil {
			fmt.Printf("Error saving config: %v\n", err)
			return
		}
		fmt.Printf("API key saved for provider: %s\n", provider)
	},
}

var setModelCmd = &cobra.Command{
	Use:   "set-model",
	Short: "Manually set the active provider and model",
	Run: func(cmd *cobra.Command, args []string) {
		provider, _ := cmd.Flags().GetString("provider")
		model, _ := cmd.Flags().GetString("model")

		cfg, err := config.LoadConfig()
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			return
		}

		if provider != "" {
			cfg.SelectedProvider = strings.ToLower(provider)
		}
		if model != "" {
			cfg.SelectedModel = model
		}

		if err := config.SaveConfig(cfg); err != nil {
			fmt.Printf("Error saving config: %v\n", err)
			return
		}
		fmt.Printf("Active model: %s (%s)\n", cfg.SelectedModel, cfg.SelectedProvider)
	},
}

var showConfigCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			return
		}
		path, _ := config.GetConfigPath()
		fmt.Printf("Config file: %s\n", path)
		fmt.Printf("Provider:    %s\n", cfg.SelectedProvider)
		fmt.Printf("Model:       %s\n", cfg.SelectedModel)
		fmt.Printf("Gate fails on: %s\n", strings.Join(cfg.Scan.FailOn, ", "))
		for provider := range cfg.Providers {
			fmt.Printf("API key set for: %s\n", provider)
		}
	},
}

func init() {
	setKeyCmd.Flags().String("provider", "", "Provider name (gemini, openai, anthropic)")
	setKeyCmd.Flags().String("key", "", "API key")
	setModelCmd.Flags().String("provider", "", "Provider name")
	setModelCmd.Flags().String("model", "", "Model name")

	configCmd.AddCommand(setKeyCmd)
	configCmd.AddCommand(setModelCmd)
	configCmd.AddCommand(showConfigCmd)
	rootCmd.AddCommand(configCmd)
}
