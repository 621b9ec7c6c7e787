package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/praetor-sec/praetor/pkg/advisor"
	"github.com/praetor-sec/praetor/pkg/compliance"
	"github.com/praetor-sec/praetor/pkg/config"
	"github.com/praetor-sec/praetor/pkg/orchestrator"
)

var adviseCmd = &cobra.Command{
	Use:   "advise [path]",
	Short: "Scan and ask the configured AI provider for remediation guidance",
	Long: `Runs a scan like 'praetor scan', then sends the blocking findings to
the configured AI provider and prints its remediation suggestions. Run
'praetor config setup' first to pick a provider and store an API key.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		apiKey := cfg.GetAPIKey(cfg.SelectedProvider)
		if apiKey == "" {
			return fmt.Errorf("no API key configured for %s; run 'praetor config setup'", cfg.SelectedProvider)
		}

		opts := orchestrator.DefaultOptions()
		opts.Config = cfg.ScannerConfig()

		res, err := newOrchestrator().Scan(cmd.Context(), args[0], opts)
		if err != nil {
			return err
		}

		gate := compliance.RunGate(res.Findings, nil)
		fmt.Println(gate.Message)
		if gate.Passed {
			return nil
		}

		provider, err := advisor.NewProvider(cmd.Context(), cfg.SelectedProvider, apiKey, cfg.SelectedModel)
		if err != nil {
			return err
		}

		fmt.Printf("Asking %s (%s) for remediation guidance...\n\n", cfg.SelectedProvider, cfg.SelectedModel)
		advice, err := advisor.Advise(cmd.Context(), provider, gate.BlockingFindings)
		if err != nil {
			return err
		}
		fmt.Println(advice)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(adviseCmd)
}
