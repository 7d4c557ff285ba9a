// Package version holds build information set with -ldflags, e.g.
// go build -ldflags "-X git.home.luguber.info/inful/docgraph/internal/version.Version=v0.3.0".
package version

import "fmt"

var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// String renders the build information for --version.
func String() string {
	return fmt.Sprintf("docgraph %s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
