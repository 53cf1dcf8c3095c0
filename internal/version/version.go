// Package version reports the build identity of tunerdash.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

// Set at build time:
//
//	go build -ldflags="-X github.com/muurk/tunerdash/internal/version.Version=v0.3.0 \
//	                   -X github.com/muurk/tunerdash/internal/version.Commit=abc1234"
var (
	Version = ""
	Commit  = ""
)

// Info is the resolved build identity
type Info struct {
	Version   string
	Commit    string
	Modified  bool
	GoVersion string
}

func init() {
	info := resolve(Version, Commit, readSettings())
	Version = info.Version
	Commit = info.Commit
}

func readSettings() map[string]string {
	settings := map[string]string{}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return settings
	}
	if bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		settings["main.version"] = bi.Main.Version
	}
	for _, s := range bi.Settings {
		settings[s.Key] = s.Value
	}
	return settings
}

// resolve fills in whatever ldflags left empty from VCS build settings
func resolve(version, commit string, settings map[string]string) Info {
	info := Info{Version: version, Commit: commit, GoVersion: runtime.Version()}

	if info.Commit == "" {
		rev := settings["vcs.revision"]
		if len(rev) > 7 {
			rev = rev[:7]
		}
		info.Commit = rev
	}
	info.Modified = settings["vcs.modified"] == "true"

	if info.Version == "" {
		info.Version = settings["main.version"]
	}
	if info.Version == "" {
		if t := settings["vcs.time"]; len(t) >= 10 {
			info.Version = "dev-" + strings.ReplaceAll(t[:10], "-", "")
		} else {
			info.Version = "dev"
		}
	}
	if info.Commit == "" {
		info.Commit = "unknown"
	} else if info.Modified && !strings.HasSuffix(info.Commit, "-dirty") {
		info.Commit += "-dirty"
	}
	return info
}

// Full returns the full version string including commit
func Full() string {
	return fmt.Sprintf("%s (commit: %s, %s)", Version, Commit, runtime.Version())
}

// UserAgent is sent with every backend request
func UserAgent() string {
	return "tunerdash/" + Version
}
