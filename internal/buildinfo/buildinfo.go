// Package buildinfo holds the build-time version metadata the CLI
// stamps into its logs. The teacher's own buildinfo package paired this
// with a telemetry.GitSummaryMetric sink; only the govvv-style variables
// live here, and the run-summary metrics are in pkg/metrics.
package buildinfo

var (
	// GitCommit is set by govvv at build time.
	GitCommit = "n/a"
	// GitBranch is set by govvv at build time.
	GitBranch = "n/a"
	// GitState is set by govvv at build time.
	GitState = "n/a"
	// GitSummary is set by govvv at build time.
	GitSummary = "n/a"
	// BuildDate is set by govvv at build time.
	BuildDate = "n/a"
	// Version is set by govvv at build time.
	Version = "n/a"
)
