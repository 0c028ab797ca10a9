// Package version holds the build identity of the sprintstat binary.
package version

import (
	"fmt"
	"runtime/debug"
)

const unknown = "<unknown>"

// Version, Commit and Date are set at link time with -ldflags "-X ...".
var (
	Version = "dev"
	Commit  = unknown
	Date    = unknown
)

// InitBinaryVersion fills the fields left at their defaults from the Go build
// info, so `go install` builds still report a module version and VCS revision.
func InitBinaryVersion() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	if Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if Commit == unknown {
				Commit = setting.Value
			}
		case "vcs.time":
			if Date == unknown {
				Date = setting.Value
			}
		}
	}
}

// String formats the build identity for the version command.
func String() string {
	return fmt.Sprintf("sprintstat %s (commit: %s, built: %s)", Version, Commit, Date)
}
