package version

import "fmt"

var (
	// Version contains the current version of linkmond
	Version = "dev"

	// CommitHash contains the current git commit hash
	CommitHash = "unknown"

	// BuildTime contains the time of build
	BuildTime = "unknown"
)

// String formats the build information for -version and logs.
func String() string {
	return fmt.Sprintf("linkmond version %s (commit: %s, built at: %s)", Version, CommitHash, BuildTime)
}
