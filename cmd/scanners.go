package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var scannersCmd = &cobra.Command{
	Use:   "scanners",
	Short: "List registered scanners and their availability",
	Run: func(cmd *cobra.Command, args []string) {
		orch := newOrchestrator()
		for _, name := range orch.ListScanners() {
			a := orch.Adapter(name)
			if a.IsAvailable() {
				version := a.Version()
				if version == "" {
					version = "unknown version"
				}
				fmt.Printf("%-10s available (%s)\n", name, version)
			} else {
				fmt.Printf("%-10s NOT AVAILABLE\n", name)
				fmt.Printf("           %s\n", a.InstallInstructions())
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(scannersCmd)
}
