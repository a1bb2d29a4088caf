// Package version exposes build metadata set through -ldflags, e.g.
//
//	go build -ldflags "-X github.com/kailas-cloud/wordser/internal/version.Version=v1.2.0"
package version

import (
	"fmt"
	"runtime"
)

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String renders the build metadata on one line.
func String() string {
	return fmt.Sprintf("wordser %s (commit %s, built %s, %s)", Version, Commit, Date, runtime.Version())
}
