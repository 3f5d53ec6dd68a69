package build

import (
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// Project being built.
type Project struct {
	Root     string // Absolute project root.
	Name     string // Leaf name of the root; also the binary name.
	Manifest string // Path of the manifest file.
}

// Resolves the project rooted at root.
//
// The root must contain the manifest file. Nothing is created or modified.
// A missing manifest is an environment error wrapping [ErrNotAProject].
func ResolveProject(fsys afero.Fs, root, manifest string) (*Project, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, NewError(KindEnvironment, errors.Wrap(err, "resolve project root"))
	}

	path := filepath.Join(root, manifest)
	info, err := fsys.Stat(path)
	if err != nil || info.IsDir() {
		return nil, NewError(KindEnvironment, errors.Wrapf(ErrNotAProject, "%s not found in %s", manifest, root))
	}

	return &Project{
		Root:     root,
		Name:     filepath.Base(root),
		Manifest: path,
	}, nil
}
