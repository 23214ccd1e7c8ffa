// Package version holds build information, set with -ldflags at release time.
package version

var (
	Version   = "0.1.0"
	GitCommit = "dev"
	BuildDate = "unknown"
)

// String returns a human-readable version string.
func String() string {
	return "modhost " + Version + " (" + GitCommit + ", " + BuildDate + ")"
}
