package build

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/mholt/archiver/v3"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// Minimal [os.FileInfo] for archive fixtures.
type fileInfo struct {
	name string
	size int64
	dir  bool
}

func (f fileInfo) Name() string       { return f.name }
func (f fileInfo) Size() int64        { return f.size }
func (f fileInfo) ModTime() time.Time { return time.Unix(1_600_000_000, 0) }
func (f fileInfo) IsDir() bool        { return f.dir }
func (f fileInfo) Sys() any           { return nil }

func (f fileInfo) Mode() os.FileMode {
	if f.dir {
		return os.ModeDir | 0o755
	}
	return 0o755
}

// Archive entry fixture. Names ending in "/" are directories.
type entry struct {
	name    string
	content string
}

// Writes an archive built by w holding entries to path in fsys.
func writeArchive(t *testing.T, fsys afero.Fs, path string, w archiver.Writer, entries ...entry) {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, w.Create(&buf))
	for _, e := range entries {
		f := archiver.File{FileInfo: fileInfo{name: strings.TrimSuffix(e.name, "/"), size: int64(len(e.content)), dir: strings.HasSuffix(e.name, "/")}}
		if !f.IsDir() {
			f.ReadCloser = io.NopCloser(strings.NewReader(e.content))
		}
		require.NoError(t, w.Write(f))
	}
	require.NoError(t, w.Close())

	require.NoError(t, afero.WriteFile(fsys, path, buf.Bytes(), 0o644))
}

// Writes a zip archive to path.
func writeZip(t *testing.T, fsys afero.Fs, path string, entries ...entry) {
	t.Helper()
	writeArchive(t, fsys, path, archiver.NewZip(), entries...)
}

// Writes a gzip-compressed tarball to path.
func writeTarGz(t *testing.T, fsys afero.Fs, path string, entries ...entry) {
	t.Helper()
	writeArchive(t, fsys, path, archiver.NewTarGz(), entries...)
}

// Creates a project root with a manifest in fsys.
func newProjectFs(t *testing.T, root string) afero.Fs {
	t.Helper()
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll(root, 0o755))
	require.NoError(t, afero.WriteFile(fsys, root+"/Cargo.toml", []byte("[package]\nname = \"hello\"\n"), 0o644))
	return fsys
}
