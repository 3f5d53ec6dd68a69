package build

import (
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/cruciblehq/blackmagic/internal/runtime"
)

// Cargo cache subdirectories shared with the builder container.
var cargoCaches = []struct {
	dir    string // Directory under the host cargo home.
	target string // Container path.
}{
	{"git", "/root/.cargo/git"},
	{"registry", "/root/.cargo/registry"},
}

// Returns the bindings the containerized build needs.
//
// The project root is always bound to [runtime.Workdir] and comes first.
// Each cargo cache directory is bound only if it exists under cargoHome;
// a missing cache means a cold cache, not an error. Host paths use forward
// slashes on every platform. Mounts are deduplicated by container path, the
// first binding winning.
func ComputeMounts(fsys afero.Fs, project *Project, cargoHome string) []runtime.Mount {
	mounts := []runtime.Mount{{Source: slashPath(project.Root), Target: runtime.Workdir}}

	if cargoHome != "" {
		for _, c := range cargoCaches {
			dir := filepath.Join(cargoHome, c.dir)
			if ok, _ := afero.DirExists(fsys, dir); ok {
				mounts = append(mounts, runtime.Mount{Source: slashPath(dir), Target: c.target})
			}
		}
	}

	return dedupeMounts(mounts)
}

// Drops mounts whose target was already bound.
func dedupeMounts(mounts []runtime.Mount) []runtime.Mount {
	seen := make(map[string]bool, len(mounts))
	out := mounts[:0]
	for _, m := range mounts {
		if seen[m.Target] {
			continue
		}
		seen[m.Target] = true
		out = append(out, m)
	}
	return out
}

// Replaces backslashes with forward slashes.
func slashPath(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}
