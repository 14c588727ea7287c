package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
	version = "dev" // set by build flags
)

var rootCmd = &cobra.Command{
	Use:   "beaconwatch",
	Short: "C2 beaconing detector for web-proxy logs",
	Long: `BeaconWatch ingests sanitised web-proxy logs and flags hosts that beacon
to a command-and-control domain, using a statistical rule tier, an isolation
forest anomaly-scoring tier, and a fusion tier that explains each finding.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./beaconwatch.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(evaluateCmd)
}

// Commands are defined in separate files:
// - runCmd in run.go
// - trainCmd in train.go
// - generateCmd in generate.go
// - evaluateCmd in evaluate.go

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
