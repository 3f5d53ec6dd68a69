package build

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/cruciblehq/blackmagic/internal/paths"
)

// Host-wide guard against concurrent builds.
//
// The lock is a file created exclusively. It holds the owner's process ID
// and is removed on release. A lock left behind by a crashed build must be
// removed by hand.
type Lock struct {
	fs   afero.Fs
	path string
}

// Acquires the lock at path, creating its directory.
//
// If the lock file already exists the build is rejected with an environment
// error wrapping [ErrLocked].
func AcquireLock(fsys afero.Fs, path string) (*Lock, error) {
	if err := fsys.MkdirAll(filepath.Dir(path), paths.DefaultDirMode); err != nil {
		return nil, NewError(KindEnvironment, errors.Wrapf(ErrFileSystemOperation, "create lock directory: %v", err))
	}

	f, err := fsys.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, paths.DefaultFileMode)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, NewError(KindEnvironment, errors.Wrapf(ErrLocked, "lock file %s exists; remove it if no build is running", path))
		}
		return nil, NewError(KindEnvironment, errors.Wrapf(ErrFileSystemOperation, "create lock file: %v", err))
	}

	_, werr := fmt.Fprintf(f, "%d\n", os.Getpid())
	if err := f.Close(); werr == nil {
		werr = err
	}
	if werr != nil {
		fsys.Remove(path)
		return nil, NewError(KindEnvironment, errors.Wrapf(ErrFileSystemOperation, "write lock file: %v", werr))
	}

	slog.Debug("lock acquired", "path", path)
	return &Lock{fs: fsys, path: path}, nil
}

// Removes the lock file.
func (l *Lock) Release() error {
	if err := l.fs.Remove(l.path); err != nil {
		return errors.Wrapf(err, "release lock %s", l.path)
	}
	slog.Debug("lock released", "path", l.path)
	return nil
}
