package build

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/cruciblehq/blackmagic/internal/runtime"
)

// Template of the project image definition. The tarball is unpacked at the
// image root, leaving the binary at /<project>.
const projectTemplate = `FROM scratch
ADD %s.tar.gz /
`

// Final output of a build.
type Artifact struct {
	Mode  Mode   // Mode the artifact was produced in.
	Path  string // Archive path, in lambda mode.
	Image string // Image tag, in docker mode.
}

// Returns the archive path or image tag.
func (a *Artifact) String() string {
	if a.Mode == ModeDocker {
		return a.Image
	}
	return a.Path
}

// Parameters for [Package].
type PackageOptions struct {
	Mode        Mode     // Artifact shape.
	Project     *Project // Project that was compiled.
	OutputDir   string   // Absolute build-output directory on the host.
	ImagePrefix string   // Prefix of the project image tag.
	Entrypoint  string   // Binary name inside the lambda archive.
	Verify      bool     // Inspect the archive produced by the compile step.
}

// Returns the project image definition for a project name.
func ProjectDefinition(name string) string {
	return fmt.Sprintf(projectTemplate, name)
}

// Returns the tag of the project image.
//
// Image references must be lowercase, so the project name is lowercased.
func ImageTag(prefix, name string) string {
	return prefix + strings.ToLower(name)
}

// Produces the artifact after a successful compile.
//
// In lambda mode the archive was already written by the compile step and is
// only verified. In docker mode the tarball is verified, the project image
// definition is written next to it, and the image is built without cache.
// Failures are packaging errors.
func Package(ctx context.Context, rt runtime.Runtime, fsys afero.Fs, opts PackageOptions) (*Artifact, error) {
	name := opts.Project.Name

	switch opts.Mode {
	case ModeLambda:
		archive := filepath.Join(opts.OutputDir, name+".zip")
		if opts.Verify {
			if err := verifyZip(fsys, archive, opts.Entrypoint); err != nil {
				return nil, NewError(KindPackaging, err)
			}
		}
		return &Artifact{Mode: ModeLambda, Path: archive}, nil

	case ModeDocker:
		return packageImage(ctx, rt, fsys, opts)

	default:
		return nil, NewError(KindConfiguration, ErrInvalidMode)
	}
}

// Builds the minimal project image from the compiled tarball.
func packageImage(ctx context.Context, rt runtime.Runtime, fsys afero.Fs, opts PackageOptions) (*Artifact, error) {
	name := opts.Project.Name

	if opts.Verify {
		tarball := filepath.Join(opts.OutputDir, name+".tar.gz")
		if err := verifyTarball(fsys, tarball, name); err != nil {
			return nil, NewError(KindPackaging, err)
		}
	}

	if err := writeDefinition(fsys, opts.OutputDir, ProjectDefinition(name)); err != nil {
		return nil, NewError(KindPackaging, err)
	}

	tag := ImageTag(opts.ImagePrefix, name)
	slog.Info("building image", "image", tag)

	res, err := rt.BuildImage(ctx, runtime.BuildOptions{Dir: opts.OutputDir, Tag: tag, NoCache: true})
	if err != nil {
		return nil, NewError(KindPackaging, errors.Wrapf(err, "build image %s", tag))
	}
	if !res.Success() {
		return nil, newResultError(KindPackaging, errors.Wrapf(ErrPackaging, "exit code %d", res.ExitCode), res)
	}

	return &Artifact{Mode: ModeDocker, Image: tag}, nil
}
