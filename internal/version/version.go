// Package version holds build-time metadata. Values are placeholders here
// and are overwritten by -ldflags at release build time.
package version

var (
	// GitRelease is the tagged release version, or "dev" for local builds.
	GitRelease = "dev"

	// GitCommit is the short commit hash the binary was built from.
	GitCommit = "unknown"

	// GitCommitDate is the commit timestamp of GitCommit.
	GitCommitDate = "unknown"

	// GoInfo is the Go toolchain version used for the build.
	GoInfo = "unknown"
)
