// Package version provides build-time version information.
//
// Variables are set at build time via ldflags:
//
//	go build -ldflags "-X github.com/rickgao/igtrades/internal/version.Version=1.0.0 \
//	                   -X github.com/rickgao/igtrades/internal/version.Commit=$(git rev-parse --short HEAD) \
//	                   -X github.com/rickgao/igtrades/internal/version.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/igtrades
//
// Binaries installed with "go install" without ldflags fall back to the
// module version recorded in the build info.
package version

import "runtime/debug"

// Build-time variables (set via ldflags)
var (
	// Version is the semantic version (e.g., "1.0.0")
	Version = "dev"

	// Commit is the git commit hash (short form)
	Commit = "unknown"

	// BuildTime is the UTC build timestamp (ISO 8601)
	BuildTime = "unknown"
)

// readBuildInfo is replaced in tests.
var readBuildInfo = debug.ReadBuildInfo

// Resolved returns Version, or the main module version when Version was
// not set at build time.
func Resolved() string {
	if Version != "dev" {
		return Version
	}
	info, ok := readBuildInfo()
	if !ok || info.Main.Version == "" || info.Main.Version == "(devel)" {
		return Version
	}
	return info.Main.Version
}

// String returns a formatted version string.
func String() string {
	return Resolved() + " (" + Commit + ") built " + BuildTime
}

// LogAttrs returns the version fields as slog key/value pairs.
func LogAttrs() []any {
	return []any{
		"version", Resolved(),
		"commit", Commit,
		"build_time", BuildTime,
	}
}
