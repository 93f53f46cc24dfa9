// Package version provides build and version information.
package version

import "fmt"

// Build information set via ldflags.
var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// Date is the build date (set via -ldflags).
	Date = "unknown"
)

// String returns the full version line shown by `rig version`.
func String() string {
	return fmt.Sprintf("rig %s (commit %s, built %s)", Version, Commit, Date)
}
