// Package version reports build information for the preview app and sketchctl.
package version

import "fmt"

// Set with -ldflags "-X sketch-critic/internal/version.Version=...".
var (
	Version   = "0.3.0-dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String formats the version line shown in About and `sketchctl version`.
func String() string {
	return fmt.Sprintf("%s (%s, built %s)", Version, GitCommit, BuildTime)
}
