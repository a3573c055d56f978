/*
Package cli provides command-line interface utilities for Continuum.

The cli package includes output formatters and common CLI helpers used
by the continuum command.

Output Formatting:

The cli package supports text and JSON output for displaying command
results:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, result); err != nil {
		return err
	}

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SetupSignalHandler()
	defer stop()
	// Use ctx for operations that should be cancelled on shutdown
*/
package cli
