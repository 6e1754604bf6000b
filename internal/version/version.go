// Package version holds build metadata for the minazuki binary.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// These variables are set via ldflags by GoReleaser
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info returns formatted version information
func Info() string {
	return fmt.Sprintf("minazuki %s (commit: %s, built: %s) %s",
		Short(), Commit, Date, runtime.Version())
}

// Short returns just the version string. Binaries installed with
// "go install" carry no ldflags, so the module version from the build
// info is used when available.
func Short() string {
	if Version != "dev" {
		return Version
	}
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		return bi.Main.Version
	}
	return Version
}
