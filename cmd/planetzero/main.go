package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "planetzero",
		Short: "Planet Zero - adaptive reinvestment policy simulator",
		Long: `planetzero simulates the month-by-month evolution of a small
socio-economic entity to compare an adaptive, state-dependent reinvestment
policy against fixed reinvestment rules.

It runs single simulations, policy/margin/horizon sweeps, and best-policy
selection, and can serve the engine to external dashboards over MCP.`,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON (for machine consumption)")
	rootCmd.PersistentFlags().String("config", "", "Path to a config YAML file (default: ~/.planetzero/config.yaml)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newSweepCmd(),
		newSweepsCmd(),
		newBestCmd(),
		newConfigCmd(),
		newServeCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]string{"version": version})
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "planetzero version %s\n", version)
			}
		},
	}
}
