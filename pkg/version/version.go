// Package version holds build metadata injected at link time.
package version

var (
	// Version is set by the build via -ldflags "-X ...version.Version=".
	Version = "dev"
	// GitCommit is set by the build.
	GitCommit = ""
)
