// Package version exposes build metadata injected at link time.
package version

import (
	"fmt"
	"runtime"
)

var (
	// Version is the semantic version, injected at build time via -ldflags
	Version = "dev"
	// GitCommit is the git commit hash, injected at build time
	GitCommit = "unknown"
	// BuildDate is the build timestamp, injected at build time
	BuildDate = "unknown"
	// GoVersion is the Go compiler version
	GoVersion = runtime.Version()
	// Platform is the OS/Arch
	Platform = runtime.GOOS + "/" + runtime.GOARCH
)

// BuildInfo contains metadata about the build
type BuildInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
	BuildDate string `json:"buildDate"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

// GetBuildInfo returns build metadata
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: GoVersion,
		Platform:  Platform,
	}
}

// String renders the build info on one line for CLI output.
func (b BuildInfo) String() string {
	return fmt.Sprintf("postnotify %s (commit %s, built %s, %s, %s)",
		b.Version, b.GitCommit, b.BuildDate, b.GoVersion, b.Platform)
}
