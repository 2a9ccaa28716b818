// Package version reports the wifid build.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set at build time via ldflags:
//
//	go build -ldflags="-X github.com/muurk/wifid/internal/version.Version=v1.2.3 \
//	                   -X github.com/muurk/wifid/internal/version.Commit=abc123"
//
// Unset values are filled from the VCS stamp in the build info when present.
var (
	Version = ""
	Commit  = ""
)

// Info describes the running build.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	GoVersion string `json:"go_version"`
	Modified  bool   `json:"modified,omitempty"`
}

// Get returns the build info, falling back to "dev" and "unknown".
func Get() Info {
	info := Info{Version: Version, Commit: Commit, GoVersion: runtime.Version()}

	if bi, ok := debug.ReadBuildInfo(); ok {
		fromBuildInfo(&info, bi)
	}
	if info.Version == "" {
		info.Version = "dev"
	}
	if info.Commit == "" {
		info.Commit = "unknown"
	}
	return info
}

func fromBuildInfo(info *Info, bi *debug.BuildInfo) {
	if info.Version == "" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}

	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "" {
				info.Commit = s.Value
				if len(info.Commit) > 7 {
					info.Commit = info.Commit[:7]
				}
			}
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
}

// Full returns the version string including commit
func Full() string {
	info := Get()
	commit := info.Commit
	if info.Modified {
		commit += "-dirty"
	}
	return fmt.Sprintf("%s (commit: %s, %s)", info.Version, commit, info.GoVersion)
}
