package runtime

import (
	"io"
	"os"
	"path/filepath"

	"github.com/mholt/archiver/v3"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// Writes the contents of dir as an uncompressed tar stream to w.
//
// Entry names are relative to dir and use forward slashes, which is the
// layout the engine expects for a build context. Only directories and
// regular files are included.
func writeContext(fsys afero.Fs, dir string, w io.Writer) error {
	tw := archiver.NewTar()
	if err := tw.Create(w); err != nil {
		return errors.Wrap(err, "create build context")
	}

	err := afero.Walk(fsys, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		return addContextEntry(fsys, tw, path, filepath.ToSlash(rel), info)
	})
	if err != nil {
		tw.Close()
		return errors.Wrapf(err, "archive build context %s", dir)
	}

	return errors.Wrap(tw.Close(), "close build context")
}

// Adds one filesystem entry to the build context archive.
func addContextEntry(fsys afero.Fs, tw *archiver.Tar, path, name string, info os.FileInfo) error {
	fi := archiver.FileInfo{FileInfo: info, CustomName: name, SourcePath: path}

	if info.IsDir() {
		return tw.Write(archiver.File{FileInfo: fi})
	}
	if !info.Mode().IsRegular() {
		return nil
	}

	f, err := fsys.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return tw.Write(archiver.File{FileInfo: fi, ReadCloser: f})
}
