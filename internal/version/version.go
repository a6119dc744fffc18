package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set by ldflags, e.g. -X github.com/younsl/jj/internal/version.version=v0.2.0
var (
	version   = "dev"
	buildDate = "unknown"
	gitCommit = "unknown"
)

// BuildInfo contains version and build details.
type BuildInfo struct {
	Version   string `json:"version"`
	BuildDate string `json:"buildDate"`
	GitCommit string `json:"gitCommit"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

// Get returns the build information. Without ldflags the commit falls back
// to the VCS stamp recorded by go build.
func Get() BuildInfo {
	info := BuildInfo{
		Version:   version,
		BuildDate: buildDate,
		GitCommit: gitCommit,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	if info.GitCommit == "unknown" {
		if bi, ok := debug.ReadBuildInfo(); ok {
			for _, s := range bi.Settings {
				switch s.Key {
				case "vcs.revision":
					info.GitCommit = s.Value
				case "vcs.time":
					if info.BuildDate == "unknown" {
						info.BuildDate = s.Value
					}
				}
			}
		}
	}
	return info
}

// String renders the one-line form printed by "jj version"
func (b BuildInfo) String() string {
	return fmt.Sprintf("jj version %s (commit: %s, built: %s, %s %s)",
		b.Version, short(b.GitCommit), b.BuildDate, b.GoVersion, b.Platform)
}

func short(commit string) string {
	if len(commit) > 12 {
		return commit[:12]
	}
	return commit
}
