package build

import (
	"archive/tar"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/mholt/archiver/v3"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// Checks that the lambda archive holds exactly one entry, the entrypoint
// binary, with no directory prefix.
func verifyZip(fsys afero.Fs, archive, entrypoint string) error {
	names, err := entryNames(fsys, archive, archiver.NewZip())
	if err != nil {
		return err
	}

	if len(names) != 1 || names[0] != entrypoint {
		return errors.Wrapf(ErrVerify, "%s: want a single entry %q, found %q", archive, entrypoint, names)
	}
	return nil
}

// Checks that the tarball holds the project binary.
func verifyTarball(fsys afero.Fs, archive, binary string) error {
	names, err := entryNames(fsys, archive, archiver.NewTarGz())
	if err != nil {
		return err
	}

	for _, n := range names {
		if strings.TrimPrefix(path.Clean("/"+n), "/") == binary {
			return nil
		}
	}
	return errors.Wrapf(ErrVerify, "%s: %q not found", archive, binary)
}

// Returns the entry names of an archive in archive order.
func entryNames(fsys afero.Fs, archive string, r archiver.Reader) ([]string, error) {
	f, err := fsys.Open(archive)
	if err != nil {
		return nil, errors.Wrapf(ErrVerify, "open %s: %v", archive, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, errors.Wrapf(ErrVerify, "stat %s: %v", archive, err)
	}

	if err := r.Open(f, info.Size()); err != nil {
		return nil, errors.Wrapf(ErrVerify, "read %s: %v", archive, err)
	}
	defer r.Close()

	var names []string
	for {
		entry, err := r.Read()
		if err == io.EOF {
			return names, nil
		}
		if err != nil {
			return nil, errors.Wrapf(ErrVerify, "read %s: %v", archive, err)
		}
		names = append(names, entryName(entry))
		entry.Close()
	}
}

// Returns the full name of an archive entry as stored in its header.
//
// [archiver.File.Name] only yields the base name, which would hide a
// directory prefix.
func entryName(f archiver.File) string {
	switch h := f.Header.(type) {
	case zip.FileHeader:
		return h.Name
	case *tar.Header:
		return h.Name
	default:
		return f.Name()
	}
}
