package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/cruciblehq/blackmagic/internal"
	"github.com/cruciblehq/blackmagic/internal/build"
	"github.com/cruciblehq/blackmagic/internal/paths"
	"github.com/cruciblehq/blackmagic/internal/runtime"
	"github.com/cruciblehq/blackmagic/internal/settings"
)

// Represents the 'blackmagic build' command.
type BuildCmd struct {
	Lambda    bool   `short:"l" help:"Package the binary as an AWS Lambda archive (<name>.zip)."`
	Docker    bool   `short:"d" help:"Package the binary as a minimal image tagged bm_<name>."`
	Dir       string `short:"C" type:"path" help:"Project root. Defaults to the current directory." placeholder:"DIR"`
	Runtime   string `help:"Container runtime driver (api or cli)." placeholder:"DRIVER"`
	Toolchain string `env:"BLACKMAGIC_TOOLCHAIN" help:"Toolchain image the builder image is derived from." placeholder:"IMAGE"`
	NoLock    bool   `help:"Do not take the per-host build lock."`
}

// Executes the build command.
//
// Selecting neither or both mode flags is a configuration error.
func (c *BuildCmd) Run(ctx context.Context) error {
	mode, err := build.ParseMode(c.Lambda, c.Docker)
	if err != nil {
		return err
	}

	fsys := afero.NewOsFs()

	s, err := settings.Load(fsys, RootCmd.Config)
	if err != nil {
		return build.NewError(build.KindConfiguration, err)
	}
	c.apply(&s)
	if err := s.Validate(); err != nil {
		return build.NewError(build.KindConfiguration, err)
	}

	root, err := c.root()
	if err != nil {
		return build.NewError(build.KindEnvironment, err)
	}

	stream := c.stream()
	rt, err := newRuntime(s, stream)
	if err != nil {
		return build.NewError(build.KindEnvironment, err)
	}
	defer func() {
		if err := rt.Close(); err != nil {
			slog.Warn("failed to close container runtime", "error", err)
		}
	}()

	lockPath := paths.LockFile()
	if c.NoLock {
		lockPath = ""
	}

	res, err := build.Run(ctx, rt, build.Options{
		Mode:     mode,
		Root:     root,
		Settings: s,
		LockPath: lockPath,
		Fs:       fsys,
	})

	r := newReporter(os.Stdout, os.Stderr, stream != nil)
	if err != nil {
		r.failure(err)
		return err
	}
	r.success(res)
	return nil
}

// Overrides settings with the flags that were given.
func (c *BuildCmd) apply(s *settings.Settings) {
	if c.Runtime != "" {
		s.Runtime = c.Runtime
	}
	if c.Toolchain != "" {
		s.ToolchainImage = c.Toolchain
	}
}

// Returns the project root.
func (c *BuildCmd) root() (string, error) {
	if c.Dir != "" {
		return c.Dir, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", errors.Wrap(err, "resolve working directory")
	}
	return wd, nil
}

// Returns where container output is mirrored while it runs, or nil.
func (c *BuildCmd) stream() io.Writer {
	if internal.StreamsContainerOutput() {
		return os.Stderr
	}
	return nil
}

// Creates the container runtime driver named by the settings.
func newRuntime(s settings.Settings, output io.Writer) (runtime.Runtime, error) {
	switch s.Runtime {
	case settings.RuntimeCLI:
		return runtime.NewCLI(s.DockerBinary, output), nil
	case settings.RuntimeAPI:
		return runtime.NewEngine(output)
	default:
		return nil, errors.Wrapf(settings.ErrInvalid, "runtime %q", s.Runtime)
	}
}
