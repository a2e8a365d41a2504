// Package buildinfo reports the version of the bedforge binary.
//
// Release builds stamp the variables with ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/bedforge/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/matzehuels/bedforge/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/bedforge/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Unstamped builds (go install, go run) fall back to the module version and
// VCS settings the Go toolchain embeds.
package buildinfo

import (
	"fmt"
	"runtime/debug"
	"sync"
)

var (
	// Version is the semantic version (e.g., "v1.2.3").
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// Build is the resolved build information.
type Build struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

var (
	resolveOnce sync.Once
	resolved    Build
)

// Info returns the build information, filling unstamped fields from the
// binary's embedded build info.
func Info() Build {
	resolveOnce.Do(func() {
		bi, _ := debug.ReadBuildInfo()
		resolved = resolve(Build{Version: Version, Commit: Commit, Date: Date}, bi)
	})
	return resolved
}

func resolve(b Build, bi *debug.BuildInfo) Build {
	if bi == nil {
		return b
	}
	if b.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		b.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if b.Commit == "none" {
				b.Commit = s.Value
			}
		case "vcs.time":
			if b.Date == "unknown" {
				b.Date = s.Value
			}
		}
	}
	return b
}

// Template returns the version template string for cobra.
func Template() string {
	b := Info()
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", b.Version, b.Commit, b.Date)
}
