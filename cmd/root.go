package cmd

import (
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "praetor",
	Short: "Unified security scanning, deduplication, and CI gating",
	Long: `Praetor orchestrates multiple static-analysis security scanners,
normalizes and deduplicates their findings, scores real-world risk, and
turns the result into a pass/fail security posture for CI.`,
}

var DebugMode bool

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&DebugMode, "debug", false, "Enable debug logging")

	// Environment variable support (PRAETOR_FAIL_ON, PRAETOR_ADDR, etc.)
	viper.SetEnvPrefix("PRAETOR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	cobra.OnInitialize(func() {
		if DebugMode {
			logrus.SetLevel(logrus.DebugLevel)
		}
	})
}
