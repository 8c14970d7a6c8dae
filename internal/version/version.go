// Package version holds build information injected at link time, e.g.
//
//	go build -ldflags "-X github.com/positivepasswordbook/ppbbridge/internal/version.Version=v0.3.0"
package version

import (
	"fmt"
	"runtime"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

// Short returns the version number only
func Short() string {
	return Version
}

// Info returns the full version details
func Info() string {
	return fmt.Sprintf("ppbbridge %s\n  commit: %s\n  built:  %s\n  go:     %s %s/%s",
		Version, Commit, BuildTime, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
