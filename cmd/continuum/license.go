package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"continuum-hq/continuum/pkg/cli"
	"continuum-hq/continuum/pkg/config"
	"continuum-hq/continuum/pkg/license"
)

var licenseFlags struct {
	format string
}

var licenseCmd = &cobra.Command{
	Use:   "license",
	Short: "Check the configured license key offline",
	Long: `Verify the configured license key against the issuer public key and
print the resulting status. The check runs fully offline; usage is
read from the local usage database when present.

Examples:
  # Check the license from the default config
  continuum license

  # JSON output
  continuum license --format json`,
	RunE: checkLicense,
}

func init() {
	rootCmd.AddCommand(licenseCmd)

	licenseCmd.Flags().StringVar(&licenseFlags.format, "format", "text", "output format: text, json")
}

func checkLicense(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewCommandError("license", err)
	}

	usage, err := license.NewUsageStore(cfg.License.UsageDBPath)
	if err != nil {
		return cli.NewCommandError("license", err)
	}
	defer usage.Close()

	validator, err := license.NewValidator(cfg.License.Key, cfg.License.PublicKey, usage, nil)
	if err != nil {
		return cli.NewCommandError("license", err)
	}

	status := validator.Check(context.Background())

	formatter := cli.NewFormatter(cli.OutputFormat(licenseFlags.format))
	if err := formatter.FormatTo(os.Stdout, status); err != nil {
		return err
	}
	if !status.Valid() {
		os.Exit(1)
	}
	return nil
}
