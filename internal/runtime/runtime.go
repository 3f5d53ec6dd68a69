package runtime

import (
	"context"
	"strings"

	"github.com/opencontainers/go-digest"
)

const (

	// Container path the project root is bound to.
	Workdir = "/workdir"

	// Shell used to interpret container commands.
	Shell = "/bin/bash"

	// Name of the build definition file inside a build context.
	Dockerfile = "Dockerfile"
)

// Container engine used by the build pipeline.
//
// Implementations never change the process working directory. Directories
// are passed explicitly through [BuildOptions] and [RunOptions]. A command
// that runs but exits non-zero is not an error: it is reported through
// [Result] and the caller decides how to handle it. Errors are reserved for
// failures to reach the engine or to start the operation at all.
type Runtime interface {

	// Returns true if the engine is installed and answering.
	Available(ctx context.Context) bool

	// Looks up an image by name. A missing image is not an error.
	InspectImage(ctx context.Context, name string) (*Image, error)

	// Builds an image from the Dockerfile found in a context directory.
	BuildImage(ctx context.Context, opts BuildOptions) (*Result, error)

	// Runs a shell command in a fresh, auto-removed container.
	Run(ctx context.Context, opts RunOptions) (*Result, error)

	// Releases resources held by the driver.
	Close() error
}

// Host directory bound into a container.
type Mount struct {
	Source string // Host path, with forward slashes.
	Target string // Absolute container path.
}

// Returns the mount in "source:target" volume notation.
func (m Mount) String() string {
	return m.Source + ":" + m.Target
}

// Image known to the engine.
type Image struct {
	Name   string        // Reference the image was looked up by.
	ID     digest.Digest // Content-addressed image ID; empty if absent.
	Exists bool          // Whether the engine has the image.
}

// Parameters for [Runtime.BuildImage].
type BuildOptions struct {
	Dir     string // Build context directory containing the Dockerfile.
	Tag     string // Name assigned to the resulting image.
	NoCache bool   // Disable the layer cache.
}

// Parameters for [Runtime.Run].
type RunOptions struct {
	Image    string  // Image to run.
	Mounts   []Mount // Host directories bound into the container.
	Workdir  string  // Working directory inside the container.
	Command  string  // Command passed to the shell with "-c".
	Platform string  // Optional platform specifier (e.g., "linux/amd64").
}

// Outcome of an external engine invocation.
type Result struct {
	Command  string // Reproducible command line for manual debugging.
	Stdout   string // Captured standard output.
	Stderr   string // Captured standard error.
	ExitCode int    // Exit code of the process.
}

// Returns true if the invocation exited with code zero.
func (r *Result) Success() bool {
	return r != nil && r.ExitCode == 0
}

// Returns the arguments of a "docker build" invocation for opts.
//
// The context directory is always the last argument.
func buildArgs(opts BuildOptions, dir string) []string {
	args := []string{"build"}
	if opts.NoCache {
		args = append(args, "--no-cache")
	}
	return append(args, "-t", opts.Tag, dir)
}

// Returns the arguments of a "docker run" invocation for opts.
func runArgs(opts RunOptions) []string {
	args := []string{"run", "-i", "--rm"}
	if opts.Platform != "" {
		args = append(args, "--platform", opts.Platform)
	}
	for _, m := range opts.Mounts {
		args = append(args, "-v", m.String())
	}
	if opts.Workdir != "" {
		args = append(args, "-w", opts.Workdir)
	}
	return append(args, opts.Image, Shell, "-c", opts.Command)
}

// Joins a command line for display, quoting arguments a shell would split.
func commandLine(binary string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, Quote(binary))
	for _, a := range args {
		parts = append(parts, Quote(a))
	}
	return strings.Join(parts, " ")
}

// Quotes s for a POSIX shell if it contains anything but safe characters.
func Quote(s string) string {
	if s == "" {
		return "''"
	}
	if strings.IndexFunc(s, unsafeShellRune) < 0 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func unsafeShellRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	}
	return !strings.ContainsRune("-_./:=,+@%", r)
}
