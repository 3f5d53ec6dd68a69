package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (

	// Name used for directory and file naming.
	toolName = "blackmagic"

	// Default build-output directory, relative to the project root.
	DefaultOutputDir = "target/black_magic"

	// Scratch directory for the builder image definition, relative to the
	// build-output directory.
	builderDirName = "bm_dockerfile"

	// Environment variable that overrides the cargo home directory.
	cargoHomeEnv = "CARGO_HOME"

	// Default permission mode for directories.
	DefaultDirMode os.FileMode = 0755

	// Default permission mode for files.
	DefaultFileMode os.FileMode = 0644
)

// Path to the directory for runtime files (lock files).
//
//	Linux:   $XDG_RUNTIME_DIR/blackmagic or /run/user/<uid>/blackmagic
//	macOS:   ~/Library/Caches/blackmagic/run
func Runtime() string {
	if xdg.RuntimeDir != "" {
		return filepath.Join(xdg.RuntimeDir, toolName)
	}
	return filepath.Join(xdg.CacheHome, toolName, "run")
}

// Default path to the host-wide lock file that serializes invocations.
func LockFile() string {
	return filepath.Join(Runtime(), toolName+".lock")
}

// Default path to the configuration file.
//
//	Linux:   $XDG_CONFIG_HOME/blackmagic/config.yaml
//	macOS:   ~/Library/Application Support/blackmagic/config.yaml
//	Windows: %LOCALAPPDATA%\blackmagic\config.yaml
//
// The directory is not created.
func ConfigFile() string {
	return filepath.Join(xdg.ConfigHome, toolName, "config.yaml")
}

// Path to the cargo home directory holding the dependency caches.
//
// Honours $CARGO_HOME, falling back to ~/.cargo.
func CargoHome() string {
	if dir := os.Getenv(cargoHomeEnv); dir != "" {
		return dir
	}
	return filepath.Join(xdg.Home, ".cargo")
}

// Path to the build-output directory of a project.
//
// A relative rel is resolved against root; an empty rel selects
// [DefaultOutputDir].
func OutputDir(root, rel string) string {
	if rel == "" {
		rel = DefaultOutputDir
	}
	if filepath.IsAbs(rel) {
		return filepath.Clean(rel)
	}
	return filepath.Join(root, filepath.FromSlash(rel))
}

// Path to the builder image scratch directory inside a build-output directory.
func BuilderDir(output string) string {
	return filepath.Join(output, builderDirName)
}
