package runtime

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	cerrdefs "github.com/containerd/errdefs"
	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/build"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Implements the parts of the Docker API the engine driver uses. Calling any
// other method panics through the nil embedded interface.
type fakeClient struct {
	client.APIClient

	version    string
	versionErr error
	images     map[string]string
	inspectErr error

	buildContext map[string]string
	buildOptions build.ImageBuildOptions
	buildStream  string

	config    *container.Config
	host      *container.HostConfig
	platform  *ocispec.Platform
	stdout    string
	stderr    string
	exitCode  int64
	startErr  error
	removed   []string
	removeErr error
	closed    bool
}

func (f *fakeClient) ServerVersion(ctx context.Context) (types.Version, error) {
	return types.Version{Version: f.version}, f.versionErr
}

func (f *fakeClient) ImageInspect(ctx context.Context, name string, _ ...client.ImageInspectOption) (image.InspectResponse, error) {
	if f.inspectErr != nil {
		return image.InspectResponse{}, f.inspectErr
	}
	id, ok := f.images[name]
	if !ok {
		return image.InspectResponse{}, errors.Wrapf(cerrdefs.ErrNotFound, "No such image: %s", name)
	}
	return image.InspectResponse{ID: id}, nil
}

func (f *fakeClient) ImageBuild(ctx context.Context, buildContext io.Reader, opts build.ImageBuildOptions) (build.ImageBuildResponse, error) {
	data, err := io.ReadAll(buildContext)
	if err != nil {
		return build.ImageBuildResponse{}, err
	}
	f.buildOptions = opts
	f.buildContext, err = tarEntries(bytes.NewReader(data))
	if err != nil {
		return build.ImageBuildResponse{}, err
	}
	return build.ImageBuildResponse{Body: io.NopCloser(strings.NewReader(f.buildStream))}, nil
}

func (f *fakeClient) ContainerCreate(ctx context.Context, config *container.Config, host *container.HostConfig, _ *network.NetworkingConfig, platform *ocispec.Platform, _ string) (container.CreateResponse, error) {
	f.config, f.host, f.platform = config, host, platform
	return container.CreateResponse{ID: "c0ffee"}, nil
}

func (f *fakeClient) ContainerWait(ctx context.Context, id string, _ container.WaitCondition) (<-chan container.WaitResponse, <-chan error) {
	statusCh := make(chan container.WaitResponse, 1)
	statusCh <- container.WaitResponse{StatusCode: f.exitCode}
	return statusCh, make(chan error)
}

func (f *fakeClient) ContainerStart(ctx context.Context, id string, _ container.StartOptions) error {
	return f.startErr
}

func (f *fakeClient) ContainerLogs(ctx context.Context, id string, _ container.LogsOptions) (io.ReadCloser, error) {
	var buf bytes.Buffer
	stdcopy.NewStdWriter(&buf, stdcopy.Stdout).Write([]byte(f.stdout))
	stdcopy.NewStdWriter(&buf, stdcopy.Stderr).Write([]byte(f.stderr))
	return io.NopCloser(&buf), nil
}

func (f *fakeClient) ContainerRemove(ctx context.Context, id string, _ container.RemoveOptions) error {
	f.removed = append(f.removed, id)
	return f.removeErr
}

func (f *fakeClient) Close() error {
	f.closed = true
	return nil
}

func TestEngineAvailable(t *testing.T) {
	ctx := context.Background()

	assert.True(t, NewEngineWithClient(&fakeClient{version: "28.5.2"}, afero.NewMemMapFs(), nil).Available(ctx))
	assert.False(t, NewEngineWithClient(&fakeClient{}, afero.NewMemMapFs(), nil).Available(ctx))
	assert.False(t, NewEngineWithClient(&fakeClient{version: "28.5.2", versionErr: errors.New("connection refused")}, afero.NewMemMapFs(), nil).Available(ctx))
}

func TestEngineInspectImage(t *testing.T) {
	fc := &fakeClient{images: map[string]string{"black_magic": presentID}}
	e := NewEngineWithClient(fc, afero.NewMemMapFs(), nil)

	img, err := e.InspectImage(context.Background(), "black_magic")
	require.NoError(t, err)
	assert.True(t, img.Exists)
	assert.Equal(t, presentID, img.ID.String())

	img, err = e.InspectImage(context.Background(), "absent")
	require.NoError(t, err)
	assert.False(t, img.Exists)
}

func TestEngineInspectImageFailure(t *testing.T) {
	fc := &fakeClient{inspectErr: errors.New("permission denied")}
	e := NewEngineWithClient(fc, afero.NewMemMapFs(), nil)

	_, err := e.InspectImage(context.Background(), "black_magic")
	assert.ErrorIs(t, err, ErrRuntime)
}

func TestEngineBuildImage(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/out", 0o755))
	require.NoError(t, afero.WriteFile(fs, "/out/Dockerfile", []byte("FROM scratch\nADD hello.tar.gz /\n"), 0o644))

	fc := &fakeClient{buildStream: `{"stream":"Step 1/2 : FROM scratch\n"}
{"stream":"Step 2/2 : ADD hello.tar.gz /\n"}
{"aux":{"ID":"sha256:abc"}}
{"stream":"Successfully tagged bm_hello:latest\n"}
`}
	var live bytes.Buffer
	e := NewEngineWithClient(fc, fs, &live)

	res, err := e.BuildImage(context.Background(), BuildOptions{Dir: "/out", Tag: "bm_hello", NoCache: true})
	require.NoError(t, err)

	assert.True(t, res.Success())
	assert.Contains(t, res.Stdout, "Successfully tagged bm_hello:latest")
	assert.Equal(t, res.Stdout, live.String())
	assert.Equal(t, "docker build --no-cache -t bm_hello /out", res.Command)

	assert.Equal(t, []string{"bm_hello"}, fc.buildOptions.Tags)
	assert.True(t, fc.buildOptions.NoCache)
	assert.Equal(t, "FROM scratch\nADD hello.tar.gz /\n", fc.buildContext["Dockerfile"])
}

func TestEngineBuildImageFailure(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/out/Dockerfile", []byte("FROM nowhere\n"), 0o644))

	fc := &fakeClient{buildStream: `{"stream":"Step 1/1 : FROM nowhere\n"}
{"errorDetail":{"message":"pull access denied for nowhere"},"error":"pull access denied for nowhere"}
`}
	e := NewEngineWithClient(fc, fs, nil)

	res, err := e.BuildImage(context.Background(), BuildOptions{Dir: "/out", Tag: "black_magic"})
	require.NoError(t, err)
	assert.False(t, res.Success())
	assert.Equal(t, "pull access denied for nowhere\n", res.Stderr)
}

func TestEngineRun(t *testing.T) {
	fc := &fakeClient{stdout: "Compiling hello v0.1.0\n", stderr: "warning: unused\n", exitCode: 101}
	e := NewEngineWithClient(fc, afero.NewMemMapFs(), nil)

	res, err := e.Run(context.Background(), RunOptions{
		Image:    "black_magic",
		Mounts:   []Mount{{Source: "/src/hello", Target: Workdir}},
		Workdir:  Workdir,
		Command:  "cargo build",
		Platform: "linux/amd64",
	})
	require.NoError(t, err)

	assert.Equal(t, 101, res.ExitCode)
	assert.Equal(t, "Compiling hello v0.1.0\n", res.Stdout)
	assert.Equal(t, "warning: unused\n", res.Stderr)
	assert.Equal(t, "docker run -i --rm --platform linux/amd64 -v /src/hello:/workdir -w /workdir black_magic /bin/bash -c 'cargo build'", res.Command)

	assert.Equal(t, []string{"/bin/bash", "-c", "cargo build"}, []string(fc.config.Cmd))
	assert.Equal(t, Workdir, fc.config.WorkingDir)
	require.Len(t, fc.host.Mounts, 1)
	assert.Equal(t, "/src/hello", fc.host.Mounts[0].Source)
	assert.Equal(t, Workdir, fc.host.Mounts[0].Target)
	require.NotNil(t, fc.platform)
	assert.Equal(t, "amd64", fc.platform.Architecture)
	assert.Equal(t, []string{"c0ffee"}, fc.removed)
}

func TestEngineRunStartFailureRemovesContainer(t *testing.T) {
	fc := &fakeClient{startErr: errors.New("no such file"), removeErr: errors.New("busy")}
	e := NewEngineWithClient(fc, afero.NewMemMapFs(), nil)

	_, err := e.Run(context.Background(), RunOptions{Image: "black_magic", Command: "true"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRuntime)
	assert.Contains(t, err.Error(), "no such file")
	assert.Contains(t, err.Error(), "busy")
	assert.Equal(t, []string{"c0ffee"}, fc.removed)
}

func TestEngineRunInvalidPlatform(t *testing.T) {
	fc := &fakeClient{}
	e := NewEngineWithClient(fc, afero.NewMemMapFs(), nil)

	_, err := e.Run(context.Background(), RunOptions{Image: "black_magic", Command: "true", Platform: "linux/not-an-arch/x/y"})
	assert.ErrorIs(t, err, ErrInvalidPlatform)
	assert.Nil(t, fc.config)
}

func TestEngineClose(t *testing.T) {
	fc := &fakeClient{}
	require.NoError(t, NewEngineWithClient(fc, afero.NewMemMapFs(), nil).Close())
	assert.True(t, fc.closed)
}
