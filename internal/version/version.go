// Package version provides build-time version information.
//
// Variables are set at build time via ldflags:
//
//	go build -ldflags "-X github.com/rickgao/listing-watch/internal/version.Version=1.0.0 \
//	                   -X github.com/rickgao/listing-watch/internal/version.Commit=$(git rev-parse --short HEAD) \
//	                   -X github.com/rickgao/listing-watch/internal/version.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/watcher
package version

// Name is the program name reported to exchanges and in logs.
const Name = "listing-watch"

// Build-time variables (set via ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// String returns a formatted version string for --version.
func String() string {
	return Name + " " + Version + " (" + Commit + ") built " + BuildTime
}

// UserAgent returns the User-Agent sent with outgoing exchange requests.
func UserAgent() string {
	return Name + "/" + Version
}
