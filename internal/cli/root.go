// Package cli implements the surge command line interface.
package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "surge",
	Short:   "A rate-driven load testing engine",
	Version: version,
	Long: `Surge drives HTTP and WebSocket workloads at a controlled arrival rate:
constant, ramping, spiking, stepped, or randomized. Runs are configured
from a YAML or JSON file, measure latency with HDR histograms, and can
be archived locally for later comparison.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
			color.NoColor = true
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		// If no subcommand is provided, print help
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and runs it.
// This is called by main.main().
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	RootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")

	// Add subcommands to root command
	RootCmd.AddCommand(runCmd)
	RootCmd.AddCommand(validateCmd)
	RootCmd.AddCommand(initCmd)
	RootCmd.AddCommand(historyCmd)
}
