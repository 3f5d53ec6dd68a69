package build

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/cruciblehq/blackmagic/internal/paths"
	"github.com/cruciblehq/blackmagic/internal/runtime"
	"github.com/cruciblehq/blackmagic/internal/settings"
)

// Controls a build.
type Options struct {
	Mode     Mode              // Artifact shape.
	Root     string            // Project root.
	Settings settings.Settings // Effective settings.
	LockPath string            // Host lock file; empty disables locking.
	Fs       afero.Fs          // Filesystem; nil uses the OS filesystem.
}

// Describes how far a build got. Returned on failure too.
type Result struct {
	Project  *Project        // Resolved project.
	Output   string          // Absolute build-output directory.
	Builder  *BuilderImage   // Builder image used.
	Mounts   []runtime.Mount // Bindings passed to the builder container.
	Compile  *runtime.Result // Outcome of the compile step.
	Artifact *Artifact       // Produced artifact.
	States   []State         // States visited, in order.
}

// Builds the project and packages the artifact.
//
// The mode and settings are checked first, before anything is touched. The
// runtime and project are probed next, then the host lock is taken, the
// output directory is created, the builder image is ensured, and the project
// is compiled and packaged. Every failure aborts the remaining stages and
// leaves created files and images in place.
func Run(ctx context.Context, rt runtime.Runtime, opts Options) (res *Result, err error) {
	p := newProgress()
	res = &Result{}
	defer func() { res.States = p.states() }()

	fsys := opts.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	s := opts.Settings

	if !opts.Mode.Valid() {
		return res, p.fail(NewError(KindConfiguration, ErrInvalidMode))
	}
	if err := s.Validate(); err != nil {
		return res, p.fail(NewError(KindConfiguration, err))
	}

	if !rt.Available(ctx) {
		return res, p.fail(NewError(KindEnvironment, ErrRuntimeUnavailable))
	}

	project, err := ResolveProject(fsys, opts.Root, s.Manifest)
	if err != nil {
		return res, p.fail(err)
	}
	res.Project = project

	output, rel, err := outputPaths(project.Root, s.OutputDir)
	if err != nil {
		return res, p.fail(err)
	}
	res.Output = output

	p.advance(StateEnvironmentChecked)
	slog.Info("building project", "project", project.Name, "mode", opts.Mode.String(), "root", project.Root)

	if opts.LockPath != "" {
		lock, lerr := AcquireLock(fsys, opts.LockPath)
		if lerr != nil {
			return res, p.fail(lerr)
		}
		defer func() {
			if rerr := lock.Release(); rerr != nil {
				if err != nil {
					err = multierror.Append(err, rerr)
				} else {
					slog.Warn("failed to release lock", "error", rerr)
				}
			}
		}()
	}

	if err := fsys.MkdirAll(output, paths.DefaultDirMode); err != nil {
		return res, p.fail(NewError(KindBuilderSetup, errors.Wrapf(ErrFileSystemOperation, "create %s: %v", output, err)))
	}

	builder, err := EnsureBuilderImage(ctx, rt, fsys, BuilderOptions{
		Name:           s.BuilderImage,
		ToolchainImage: s.ToolchainImage,
		Dir:            paths.BuilderDir(output),
	})
	if err != nil {
		return res, p.fail(err)
	}
	res.Builder = builder
	p.advance(StateBuilderImageReady)

	res.Mounts = ComputeMounts(fsys, project, s.ResolvedCargoHome())

	compiled, err := Compile(ctx, rt, CompileOptions{
		Mode:       opts.Mode,
		Project:    project,
		Image:      builder.Name,
		Mounts:     res.Mounts,
		Target:     s.Target,
		Output:     rel,
		Entrypoint: s.Entrypoint,
		Platform:   s.Platform,
	})
	res.Compile = compiled
	if err != nil {
		return res, p.fail(err)
	}
	p.advance(StateCompiled)

	artifact, err := Package(ctx, rt, fsys, PackageOptions{
		Mode:        opts.Mode,
		Project:     project,
		OutputDir:   output,
		ImagePrefix: s.ImagePrefix,
		Entrypoint:  s.Entrypoint,
		Verify:      s.VerifyArtifacts,
	})
	if err != nil {
		return res, p.fail(err)
	}
	res.Artifact = artifact
	p.advance(StatePackaged)

	slog.Info("build complete", "project", project.Name, "artifact", artifact.String())
	return res, nil
}

// Returns the absolute build-output directory and its slash-separated path
// relative to the project root.
//
// The directory must lie inside the root, since the builder container only
// sees the root.
func outputPaths(root, dir string) (string, string, error) {
	output := paths.OutputDir(root, dir)

	rel, err := filepath.Rel(root, output)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", "", NewError(KindConfiguration, errors.Wrapf(settings.ErrInvalid, "output_dir %q must be inside the project root", dir))
	}

	return output, filepath.ToSlash(rel), nil
}
