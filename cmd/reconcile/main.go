package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func init() {
	time.Local = time.UTC
}

var rootCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Run one reminder reconciliation pass",
	Long: `Runs the reminder reconciliation once against the configured database and exits.

Configuration is read the same way as the server: config.yaml plus DUNNING_* environment
variables. A .env file in the working directory is loaded first when present.`,
	Example: `  # Run one pass and print the summary
  reconcile

  # Run with a tighter overall deadline
  reconcile --timeout 5m`,
	SilenceUsage: true,
	RunE:         runReconcile,
}

func init() {
	rootCmd.Flags().Duration("timeout", 30*time.Minute, "Overall deadline for the pass")
	rootCmd.Flags().Bool("pretty", false, "Indent the JSON summary")
}

func main() {
	// .env is optional
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}
