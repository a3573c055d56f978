package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "continuum",
	Short: "Continuum - governance audit gateway for tone analysis",
	Long: `Continuum is a governance audit gateway that fronts a tone analysis
engine and records content-free evidence for every decision.

It provides:
  - Decision normalization into ALLOW / GUIDE / BLOCK states
  - Salted fingerprint evidence records (no raw content stored)
  - Best-effort remote evidence writers (GitHub, git mirror)
  - Offline license validation with a background watchdog
  - Windowed request metrics and Prometheus exposition`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
