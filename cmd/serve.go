package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/praetor-sec/praetor/pkg/api"
	"github.com/praetor-sec/praetor/pkg/risk"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scan API server",
	Long: `Serves the scan orchestrator over HTTP for CI systems that prefer
calling a long-lived service. POST /api/v1/scan runs a scan and returns
risk-ranked findings, the compliance table, and the gate verdict.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		srv := api.NewServer(newOrchestrator(), risk.NewScorer(risk.NewGitHistory()), logrus.StandardLogger())
		return srv.ListenAndServe(viper.GetString("addr"))
	},
}

func init() {
	serveCmd.Flags().String("addr", "127.0.0.1:9001", "Listen address")
	_ = viper.BindPFlag("addr", serveCmd.Flags().Lookup("addr"))
	rootCmd.AddCommand(serveCmd)
}
