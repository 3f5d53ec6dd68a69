package build

import (
	"context"
	"fmt"
	"log/slog"
	"path"

	"github.com/pkg/errors"

	"github.com/cruciblehq/blackmagic/internal/runtime"
)

// Parameters for [Compile].
type CompileOptions struct {
	Mode       Mode            // Packaging step chained after the build.
	Project    *Project        // Project being compiled.
	Image      string          // Builder image.
	Mounts     []runtime.Mount // Host bindings, project root included.
	Target     string          // Cargo target triple.
	Output     string          // Build-output directory relative to the project root, slash separated.
	Entrypoint string          // Binary name inside the lambda archive.
	Platform   string          // Platform of the builder container.
}

// Returns the shell command run inside the builder container.
//
// The release build leaves the binary at /<project>. The mode's packaging
// step is chained with && so it only runs after a successful build and sees
// the binary without another container round trip.
func CompileCommand(opts CompileOptions) string {
	name := opts.Project.Name
	cargo := fmt.Sprintf("cargo build --release -vv --target=%s -Z unstable-options --out-dir=/", runtime.Quote(opts.Target))

	var pkg string
	switch opts.Mode {
	case ModeLambda:
		entry := "/" + opts.Entrypoint
		pkg = fmt.Sprintf("mv %s %s && zip -j %s %s",
			runtime.Quote("/"+name),
			runtime.Quote(entry),
			runtime.Quote(path.Join(opts.Output, name+".zip")),
			runtime.Quote(entry),
		)
	case ModeDocker:
		pkg = fmt.Sprintf("tar -czf %s %s",
			runtime.Quote(path.Join(opts.Output, name+".tar.gz")),
			runtime.Quote("/"+name),
		)
	}

	return cargo + " && " + pkg
}

// Compiles the project inside the builder container.
//
// One container runs the build and the packaging step. A non-zero exit is a
// compile error carrying the reproducible command and captured output. No
// retry is attempted.
func Compile(ctx context.Context, rt runtime.Runtime, opts CompileOptions) (*runtime.Result, error) {
	if !opts.Mode.Valid() {
		return nil, NewError(KindConfiguration, ErrInvalidMode)
	}

	command := CompileCommand(opts)
	slog.Info("compiling", "project", opts.Project.Name, "target", opts.Target, "mode", opts.Mode)
	slog.Debug("compile command", "command", command, "mounts", len(opts.Mounts))

	res, err := rt.Run(ctx, runtime.RunOptions{
		Image:    opts.Image,
		Mounts:   opts.Mounts,
		Workdir:  runtime.Workdir,
		Command:  command,
		Platform: opts.Platform,
	})
	if err != nil {
		return nil, NewError(KindCompile, errors.Wrap(err, "run builder container"))
	}
	if !res.Success() {
		return res, newResultError(KindCompile, errors.Wrapf(ErrCompile, "exit code %d", res.ExitCode), res)
	}

	return res, nil
}
