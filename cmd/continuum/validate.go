package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"continuum-hq/continuum/pkg/cli"
	"continuum-hq/continuum/pkg/config"
)

var validateFlags struct {
	format string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Load and validate a configuration file without starting the gateway.

All validation errors are collected and reported together, not just
the first one found.

Examples:
  # Validate the default config
  continuum validate

  # Validate a specific file with JSON output
  continuum validate --config /etc/continuum/config.yaml --format json`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateFlags.format, "format", "text", "output format: text, json")
}

func validateConfig(cmd *cobra.Command, args []string) error {
	formatter := cli.NewFormatter(cli.OutputFormat(validateFlags.format))

	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		var verr config.ValidationError
		if errors.As(err, &verr) {
			fmt.Fprintf(os.Stderr, "configuration invalid (%d errors):\n", len(verr.Errors))
			for _, fe := range verr.Errors {
				_ = formatter.FormatTo(os.Stderr, fe)
			}
			os.Exit(1)
		}
		return cli.NewCommandError("validate", err)
	}

	result := map[string]any{
		"valid":          true,
		"config":         cfgFile,
		"listen_address": cfg.Server.ListenAddress,
		"engine_type":    cfg.Engine.Type,
		"evidence":       cfg.Evidence.Enabled,
		"license_mode":   cfg.License.Mode,
	}
	return formatter.FormatTo(os.Stdout, result)
}
