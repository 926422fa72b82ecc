package app

import "fmt"

// Build metadata, injected with
//
//	go build -ldflags "-X github.com/heartmarshall/recobot/internal/app.Version=1.2.0 -X ...Commit=abc123"
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// BuildVersion is the version string shown by the version command, the
// startup log and /health. Unknown build metadata is omitted.
func BuildVersion() string {
	if Commit == "unknown" && BuildTime == "unknown" {
		return Version
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildTime)
}
