// Package buildinfo holds the version stamped into fatesviz builds.
//
// The variables are set with ldflags:
//
//	go build -ldflags "-X github.com/mchxo/fates-visualization/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/mchxo/fates-visualization/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/mchxo/fates-visualization/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/fatesviz
package buildinfo

import "fmt"

var (
	// Version is the release version, "dev" for local builds.
	Version = "dev"

	// Commit is the git commit the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// String returns the build information on three lines.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template returns the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}

// CacheScope returns the prefix separating cache entries of different
// builds. Reduced tables written by one release are never read by another;
// development builds are told apart by commit.
func CacheScope() string {
	if Version == "dev" {
		return "dev-" + Commit + ":"
	}
	return Version + ":"
}
