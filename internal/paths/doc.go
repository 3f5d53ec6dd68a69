// Provides platform-appropriate paths for the tool and the projects it builds.
//
// Host paths (configuration, lock file, cargo home) follow XDG conventions on
// Linux and platform-native conventions on macOS and Windows, with "blackmagic"
// as the subdirectory under each base path. Project paths are resolved
// relative to the project root and always live under the build-output
// directory (target/black_magic by default).
package paths
