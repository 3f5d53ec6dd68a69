package build

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/opencontainers/go-digest"
	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/cruciblehq/blackmagic/internal/paths"
	"github.com/cruciblehq/blackmagic/internal/runtime"
)

// Template of the builder image definition. The toolchain image is the only
// parameter; zip and tar are needed by the packaging step.
const builderTemplate = `FROM %s
RUN apt-get update
RUN apt-get install zip -y
RUN apt-get install tar -y
`

// Reusable image holding the cross-compilation toolchain.
type BuilderImage struct {
	Name       string        // Image name.
	ID         digest.Digest // Image ID, if the engine reported one.
	Built      bool          // Whether this call built the image.
	Definition string        // Dockerfile the image is built from.
}

// Parameters for [EnsureBuilderImage].
type BuilderOptions struct {
	Name           string // Image name.
	ToolchainImage string // Pinned base image.
	Dir            string // Scratch directory the definition is written to.
}

// Returns the builder image definition for a toolchain image.
func BuilderDefinition(toolchainImage string) string {
	return fmt.Sprintf(builderTemplate, toolchainImage)
}

// Makes sure the builder image exists, building it on first use.
//
// If the engine already has an image named opts.Name nothing is built. Otherwise
// the definition is written to opts.Dir and built with that directory as the
// build context. The check and the build are not atomic. A failed build is a
// builder setup error and leaves the scratch directory in place.
func EnsureBuilderImage(ctx context.Context, rt runtime.Runtime, fsys afero.Fs, opts BuilderOptions) (*BuilderImage, error) {
	img := &BuilderImage{
		Name:       opts.Name,
		Definition: BuilderDefinition(opts.ToolchainImage),
	}

	existing, err := rt.InspectImage(ctx, opts.Name)
	if err != nil {
		return nil, NewError(KindBuilderSetup, errors.Wrapf(err, "inspect builder image %s", opts.Name))
	}
	if existing.Exists {
		slog.Debug("builder image present", "image", opts.Name, "id", existing.ID)
		img.ID = existing.ID
		return img, nil
	}

	slog.Info("building builder image", "image", opts.Name, "toolchain", opts.ToolchainImage)

	if err := writeDefinition(fsys, opts.Dir, img.Definition); err != nil {
		return nil, NewError(KindBuilderSetup, err)
	}

	res, err := rt.BuildImage(ctx, runtime.BuildOptions{Dir: opts.Dir, Tag: opts.Name})
	if err != nil {
		return nil, NewError(KindBuilderSetup, errors.Wrapf(err, "build builder image %s", opts.Name))
	}
	if !res.Success() {
		return nil, newResultError(KindBuilderSetup, errors.Wrapf(ErrBuilderSetup, "exit code %d", res.ExitCode), res)
	}

	img.Built = true
	if built, err := rt.InspectImage(ctx, opts.Name); err == nil && built.Exists {
		img.ID = built.ID
	}

	slog.Info("builder image ready", "image", opts.Name, "id", img.ID)
	return img, nil
}

// Writes a Dockerfile with the given content into dir, creating dir.
func writeDefinition(fsys afero.Fs, dir, content string) error {
	if err := fsys.MkdirAll(dir, paths.DefaultDirMode); err != nil {
		return errors.Wrap(ErrFileSystemOperation, err.Error())
	}

	path := filepath.Join(dir, runtime.Dockerfile)
	if err := afero.WriteFile(fsys, path, []byte(content), paths.DefaultFileMode); err != nil {
		return errors.Wrap(ErrFileSystemOperation, err.Error())
	}

	slog.Debug("wrote definition", "path", path)
	return nil
}
