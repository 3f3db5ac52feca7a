// Package version holds build information for the gateway binary.
//
// Set at link time:
//
//	go build -ldflags "-X github.com/rickgao/terris/internal/version.Version=0.3.0 \
//	                   -X github.com/rickgao/terris/internal/version.Commit=$(git rev-parse --short HEAD) \
//	                   -X github.com/rickgao/terris/internal/version.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	         ./cmd/gateway
package version

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Info is the build information as reported by /health.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
}

// Get returns the linked build information.
func Get() Info {
	return Info{Version: Version, Commit: Commit, BuildTime: BuildTime}
}

// String formats the build information as "version (commit) built time".
func String() string {
	return Get().String()
}

func (i Info) String() string {
	return i.Version + " (" + i.Commit + ") built " + i.BuildTime
}
