package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/praetor-sec/praetor/pkg/compliance"
	"github.com/praetor-sec/praetor/pkg/config"
	"github.com/praetor-sec/praetor/pkg/finding"
	"github.com/praetor-sec/praetor/pkg/orchestrator"
	"github.com/praetor-sec/praetor/pkg/risk"
)

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Scan a source tree and evaluate the security gate",
	Long: `Runs every available scanner (or the ones given with --scanners)
against the target, deduplicates cross-tool findings, scores their risk, and
evaluates compliance posture. Exits nonzero when the security gate fails, so
the command can be used directly as a CI gate.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		target := args[0]

		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}

		opts := orchestrator.DefaultOptions()
		opts.Scanners = viper.GetStringSlice("scanners")
		opts.Parallel = !viper.GetBool("sequential")
		opts.Deduplicate = !viper.GetBool("no-dedup")
		opts.Config = cfg.ScannerConfig()

		failOn, err := resolveFailOn(cfg)
		if err != nil {
			return err
		}

		orch := newOrchestrator()
		res, err := orch.Scan(cmd.Context(), target, opts)
		if err != nil {
			return err
		}

		scorer := risk.NewScorer(risk.NewGitHistory())
		ranked := scorer.Rank(res.Findings)
		table := compliance.CheckCompliance(res.Findings, nil)
		posture := compliance.DeterminePosture(table, res.Findings)
		gate := compliance.RunGate(res.Findings, failOn)

		printSummary(res, ranked, table, posture, gate)

		if path := viper.GetString("sarif"); path != "" {
			if err := writeSARIF(path, res.Findings); err != nil {
				return err
			}
			fmt.Printf("SARIF report written to %s\n", path)
		}
		if path := viper.GetString("json"); path != "" {
			if err := writeJSONReport(path, res, ranked, table, posture, gate); err != nil {
				return err
			}
			fmt.Printf("JSON report written to %s\n", path)
		}

		if !gate.Passed {
			return fmt.Errorf("%s", gate.Message)
		}
		return nil
	},
}

func resolveFailOn(cfg *config.Config) ([]finding.Severity, error) {
	names := viper.GetStringSlice("fail-on")
	if len(names) == 0 {
		names = cfg.Scan.FailOn
	}
	var out []finding.Severity
	for _, n := range names {
		sev := finding.Severity(n)
		if !sev.IsValid() {
			return nil, fmt.Errorf("invalid --fail-on severity: %s", n)
		}
		out = append(out, sev)
	}
	return out, nil
}

func printSummary(res *orchestrator.Result, ranked []risk.ScoredFinding, table []compliance.CategoryResult, posture compliance.Posture, gate compliance.GateResult) {
	fmt.Printf("Scanned %s with %d scanner(s) in %s\n", res.Target, len(res.ScannersRun), res.Duration.Round(time.Millisecond))
	for _, f := range res.Failures {
		fmt.Printf("  WARNING: %s failed: %s\n", f.Scanner, f.Message)
	}
	fmt.Printf("Posture: %s\n\n", posture)

	if len(ranked) == 0 {
		fmt.Println("No findings.")
	} else {
		fmt.Printf("Findings (%d, most risky first):\n", len(ranked))
		for _, sf := range ranked {
			f := sf.Finding
			fmt.Printf("  [%5.2f] %-8s %s (%s:%d)\n", sf.Composite, f.Severity, f.Title, f.Location.File, f.Location.StartLine)
		}
		fmt.Println()
	}

	fmt.Println("Compliance:")
	for _, row := range table {
		if row.Status == compliance.StatusCompliant {
			continue
		}
		fmt.Printf("  %-9s %s — %s (%d finding(s), %d critical)\n",
			row.Category.ID, row.Category.Name, row.Status, row.FindingCount, row.CriticalCount)
	}
	fmt.Println()
	fmt.Println(gate.Message)
}

func writeSARIF(path string, findings []finding.Finding) error {
	results := make([]finding.SARIFResult, 0, len(findings))
	for i := range findings {
		results = append(results, findings[i].ToSARIF())
	}
	log := finding.NewSARIFLog("praetor", results)
	data, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func writeJSONReport(path string, res *orchestrator.Result, ranked []risk.ScoredFinding, table []compliance.CategoryResult, posture compliance.Posture, gate compliance.GateResult) error {
	report := map[string]any{
		"id":           res.ID,
		"target":       res.Target,
		"scanners_run": res.ScannersRun,
		"failures":     res.Failures,
		"findings":     ranked,
		"compliance":   table,
		"posture":      posture,
		"gate":         gate,
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func init() {
	scanCmd.Flags().StringSlice("scanners", nil, "Run exactly these scanners (default: every available one)")
	scanCmd.Flags().Bool("sequential", false, "Run scanners one after another instead of in parallel")
	scanCmd.Flags().Bool("no-dedup", false, "Skip cross-tool deduplication")
	scanCmd.Flags().StringSlice("fail-on", nil, "Severities that fail the gate (default: critical)")
	scanCmd.Flags().String("sarif", "", "Write a SARIF report to this path")
	scanCmd.Flags().String("json", "", "Write a JSON report to this path")

	for _, name := range []string{"scanners", "sequential", "no-dedup", "fail-on", "sarif", "json"} {
		_ = viper.BindPFlag(name, scanCmd.Flags().Lookup(name))
	}

	rootCmd.AddCommand(scanCmd)
}
