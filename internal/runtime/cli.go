package runtime

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/opencontainers/go-digest"
	"github.com/pkg/errors"
)

const (

	// Prefix of "docker --version" output on a working installation.
	versionPrefix = "Docker version"

	// Marker the docker CLI prints when an inspected image does not exist.
	noSuchImage = "No such image:"
)

// Prefixes, lowercased, under which the docker CLI reports a missing image.
// Older releases print the first form; newer ones relay the daemon message.
var noSuchImagePrefixes = []string{
	"error: " + strings.ToLower(noSuchImage),
	"error response from daemon: " + strings.ToLower(noSuchImage),
}

// Drives the engine by executing the docker command-line client.
type CLI struct {
	binary string    // Name or path of the docker executable.
	output io.Writer // Receives a live copy of process output; may be nil.
}

// Creates a driver that executes the given docker binary.
//
// If output is not nil, stdout and stderr of every invocation are mirrored
// to it while they are captured.
func NewCLI(binary string, output io.Writer) *CLI {
	return &CLI{binary: binary, output: output}
}

// Returns true if "docker --version" succeeds and identifies docker.
func (c *CLI) Available(ctx context.Context) bool {
	res, err := c.exec(ctx, "", false, "--version")
	if err != nil {
		slog.Debug("docker binary not runnable", "binary", c.binary, "error", err)
		return false
	}
	return res.Success() && strings.HasPrefix(res.Stdout, versionPrefix)
}

// Inspects an image by name.
//
// The image is reported absent when the CLI fails with a "No such image"
// message. Any other failure is returned as an error carrying stderr.
func (c *CLI) InspectImage(ctx context.Context, name string) (*Image, error) {
	res, err := c.exec(ctx, "", false, "image", "inspect", "--format", "{{.Id}}", name)
	if err != nil {
		return nil, err
	}

	img := &Image{Name: name}
	if !res.Success() {
		if isNoSuchImage(res.Stderr) {
			return img, nil
		}
		return nil, wrap(errors.Errorf("%s", strings.TrimSpace(res.Stderr)), "inspect image "+name)
	}

	id, err := digest.Parse(strings.TrimSpace(res.Stdout))
	if err != nil {
		return nil, wrap(err, "parse image id")
	}

	img.ID = id
	img.Exists = true
	return img, nil
}

// Runs "docker build" with the context directory as working directory.
func (c *CLI) BuildImage(ctx context.Context, opts BuildOptions) (*Result, error) {
	res, err := c.exec(ctx, opts.Dir, true, buildArgs(opts, ".")...)
	if err != nil {
		return nil, err
	}
	res.Command = commandLine(c.binary, buildArgs(opts, opts.Dir))
	return res, nil
}

// Runs "docker run -i --rm" with the requested mounts and command.
func (c *CLI) Run(ctx context.Context, opts RunOptions) (*Result, error) {
	return c.exec(ctx, "", true, runArgs(opts)...)
}

// Nothing to release.
func (c *CLI) Close() error {
	return nil
}

// Executes the docker binary with args in dir.
//
// Output is captured and, when stream is set, mirrored to the driver output.
// A process that starts and exits non-zero yields a result, not an error.
func (c *CLI) exec(ctx context.Context, dir string, stream bool, args ...string) (*Result, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, c.binary, args...)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if stream && c.output != nil {
		cmd.Stdout = io.MultiWriter(&stdout, c.output)
		cmd.Stderr = io.MultiWriter(&stderr, c.output)
	}

	res := &Result{Command: commandLine(c.binary, args)}
	slog.Debug("executing", "command", res.Command, "dir", dir)

	err := cmd.Run()
	res.Stdout = stdout.String()
	res.Stderr = stderr.String()

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr) && exitErr.ExitCode() >= 0:
		res.ExitCode = exitErr.ExitCode()
	default:
		return nil, wrap(err, "execute "+c.binary)
	}

	return res, nil
}

// Returns true if stderr reports a missing image.
func isNoSuchImage(stderr string) bool {
	s := strings.ToLower(strings.TrimSpace(stderr))
	for _, p := range noSuchImagePrefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
