// Continuum is a governance audit gateway for tone analysis traffic.
//
// It fronts a remote analysis engine and adds:
//   - Decision normalization (ALLOW / GUIDE / BLOCK)
//   - Content-free audit evidence with salted fingerprints
//   - License validation with a background watchdog
//   - Windowed request metrics and health reporting
//
// Usage:
//
//	# Start the gateway with the default configuration
//	continuum run
//
//	# Start with a custom configuration file
//	continuum run --config /etc/continuum/config.yaml
//
//	# Validate a configuration file without starting
//	continuum validate
//
//	# Inspect the configured license key offline
//	continuum license
//
//	# Show version information
//	continuum version
package main

func main() {
	Execute()
}
