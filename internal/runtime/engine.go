package runtime

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"

	cerrdefs "github.com/containerd/errdefs"
	"github.com/containerd/platforms"
	"github.com/docker/docker/api/types/build"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/jsonmessage"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/hashicorp/go-multierror"
	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// Binary name used when rendering reproducible command lines.
const dockerBinary = "docker"

// Drives the engine through the Docker Engine API.
type Engine struct {
	client client.APIClient // Docker API client.
	fs     afero.Fs         // Filesystem build contexts are read from.
	output io.Writer        // Receives a live copy of process output; may be nil.
}

// Creates a driver connected to the daemon described by the environment.
//
// DOCKER_HOST, DOCKER_API_VERSION, DOCKER_CERT_PATH and DOCKER_TLS_VERIFY
// are honored. The API version is negotiated with the daemon on first use.
func NewEngine(output io.Writer) (*Engine, error) {
	c, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, wrap(err, "create docker client")
	}
	return NewEngineWithClient(c, afero.NewOsFs(), output), nil
}

// Creates a driver around an existing API client.
func NewEngineWithClient(c client.APIClient, fsys afero.Fs, output io.Writer) *Engine {
	return &Engine{client: c, fs: fsys, output: output}
}

// Returns true if the daemon reports a non-empty engine version.
func (e *Engine) Available(ctx context.Context) bool {
	v, err := e.client.ServerVersion(ctx)
	if err != nil {
		slog.Debug("docker daemon not reachable", "error", err)
		return false
	}
	return v.Version != ""
}

// Inspects an image by name. A not-found response means the image is absent.
func (e *Engine) InspectImage(ctx context.Context, name string) (*Image, error) {
	img := &Image{Name: name}

	resp, err := e.client.ImageInspect(ctx, name)
	if err != nil {
		if cerrdefs.IsNotFound(err) {
			return img, nil
		}
		return nil, wrap(err, "inspect image "+name)
	}

	id, err := digest.Parse(resp.ID)
	if err != nil {
		return nil, wrap(err, "parse image id")
	}

	img.ID = id
	img.Exists = true
	return img, nil
}

// Builds an image from the context directory.
//
// The directory is streamed to the daemon as a tar archive. Build failures
// reported by the daemon produce a result with a non-zero exit code and the
// daemon message on stderr.
func (e *Engine) BuildImage(ctx context.Context, opts BuildOptions) (*Result, error) {
	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(writeContext(e.fs, opts.Dir, pw))
	}()

	resp, err := e.client.ImageBuild(ctx, pr, build.ImageBuildOptions{
		Tags:        []string{opts.Tag},
		NoCache:     opts.NoCache,
		Remove:      true,
		ForceRemove: true,
		Dockerfile:  Dockerfile,
	})
	if err != nil {
		pr.CloseWithError(err)
		return nil, wrap(err, "build image "+opts.Tag)
	}
	defer resp.Body.Close()

	res := &Result{Command: commandLine(dockerBinary, buildArgs(opts, opts.Dir))}
	if err := e.decodeBuild(resp.Body, res); err != nil {
		return nil, wrap(err, "read build output")
	}

	return res, nil
}

// Runs the command in a new container and removes it afterwards.
//
// Output is demultiplexed into stdout and stderr. The exit code is the
// container's exit status.
func (e *Engine) Run(ctx context.Context, opts RunOptions) (res *Result, err error) {
	platform, err := parsePlatform(opts.Platform)
	if err != nil {
		return nil, err
	}

	created, err := e.client.ContainerCreate(ctx,
		&container.Config{
			Image:        opts.Image,
			Cmd:          []string{Shell, "-c", opts.Command},
			WorkingDir:   opts.Workdir,
			AttachStdout: true,
			AttachStderr: true,
		},
		&container.HostConfig{Mounts: bindMounts(opts.Mounts)},
		nil,
		platform,
		"",
	)
	if err != nil {
		return nil, wrap(err, "create container")
	}
	id := created.ID

	defer func() {
		rerr := e.client.ContainerRemove(context.WithoutCancel(ctx), id, container.RemoveOptions{Force: true})
		if rerr == nil {
			return
		}
		if err != nil {
			err = multierror.Append(err, wrap(rerr, "remove container"))
			return
		}
		slog.Warn("failed to remove container", "container", id, "error", rerr)
	}()

	// Registered before start so a fast exit is not missed.
	statusCh, errCh := e.client.ContainerWait(ctx, id, container.WaitConditionNextExit)

	if err := e.client.ContainerStart(ctx, id, container.StartOptions{}); err != nil {
		return nil, wrap(err, "start container")
	}

	res = &Result{Command: commandLine(dockerBinary, runArgs(opts))}
	slog.Debug("container started", "container", id, "image", opts.Image)

	if err := e.collectLogs(ctx, id, res); err != nil {
		return nil, err
	}

	select {
	case err := <-errCh:
		return nil, wrap(err, "wait for container")
	case status := <-statusCh:
		if status.Error != nil && status.Error.Message != "" {
			return nil, wrap(errors.New(status.Error.Message), "wait for container")
		}
		res.ExitCode = int(status.StatusCode)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	return res, nil
}

// Closes the API client.
func (e *Engine) Close() error {
	return e.client.Close()
}

// Follows the container logs until the container exits.
func (e *Engine) collectLogs(ctx context.Context, id string, res *Result) error {
	logs, err := e.client.ContainerLogs(ctx, id, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     true,
	})
	if err != nil {
		return wrap(err, "attach to container logs")
	}
	defer logs.Close()

	var stdout, stderr strings.Builder
	var outw, errw io.Writer = &stdout, &stderr
	if e.output != nil {
		outw = io.MultiWriter(&stdout, e.output)
		errw = io.MultiWriter(&stderr, e.output)
	}

	if _, err := stdcopy.StdCopy(outw, errw, logs); err != nil {
		return wrap(err, "read container logs")
	}

	res.Stdout = stdout.String()
	res.Stderr = stderr.String()
	return nil
}

// Decodes the daemon's build progress stream into res.
//
// Stream and status lines go to stdout. An error message ends the build as
// failed and is recorded on stderr.
func (e *Engine) decodeBuild(r io.Reader, res *Result) error {
	var stdout, stderr strings.Builder

	dec := json.NewDecoder(r)
	for {
		var msg jsonmessage.JSONMessage
		if err := dec.Decode(&msg); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}

		if msg.Error != nil {
			stderr.WriteString(msg.Error.Message + "\n")
			res.ExitCode = 1
			if msg.Error.Code > 0 {
				res.ExitCode = msg.Error.Code
			}
			continue
		}

		text := msg.Stream
		if text == "" && msg.Status != "" {
			text = msg.Status + "\n"
		}
		stdout.WriteString(text)
		if e.output != nil {
			io.WriteString(e.output, text)
		}
	}

	res.Stdout = stdout.String()
	res.Stderr = stderr.String()
	return nil
}

// Converts mounts to bind mounts for the container host config.
func bindMounts(mounts []Mount) []mount.Mount {
	out := make([]mount.Mount, 0, len(mounts))
	for _, m := range mounts {
		out = append(out, mount.Mount{
			Type:   mount.TypeBind,
			Source: m.Source,
			Target: m.Target,
		})
	}
	return out
}

// Parses a platform specifier. An empty specifier leaves the choice to the
// daemon.
func parsePlatform(specifier string) (*ocispec.Platform, error) {
	if specifier == "" {
		return nil, nil
	}
	p, err := platforms.Parse(specifier)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidPlatform, "%s: %v", specifier, err)
	}
	p = platforms.Normalize(p)
	return &p, nil
}
