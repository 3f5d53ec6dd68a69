package runtime

import (
	"context"

	"github.com/opencontainers/go-digest"
)

// Test double for [Runtime].
//
// Calls are recorded in order. Each operation can be overridden with a
// function field; otherwise images built through the mock become visible to
// later inspections and every command succeeds without output.
type Mock struct {
	Unavailable bool                     // Makes Available return false.
	Images      map[string]digest.Digest // Images reported as present, by name.

	Calls        []string       // Operation names in call order.
	InspectCalls []string       // Names passed to InspectImage.
	BuildCalls   []BuildOptions // Options passed to BuildImage.
	RunCalls     []RunOptions   // Options passed to Run.
	Closed       bool           // Whether Close was called.

	InspectFn func(ctx context.Context, name string) (*Image, error)
	BuildFn   func(ctx context.Context, opts BuildOptions) (*Result, error)
	RunFn     func(ctx context.Context, opts RunOptions) (*Result, error)
}

// Creates a mock with no images and default behavior.
func NewMock() *Mock {
	return &Mock{Images: map[string]digest.Digest{}}
}

// Returns false if Unavailable is set.
func (m *Mock) Available(ctx context.Context) bool {
	m.Calls = append(m.Calls, "available")
	return !m.Unavailable
}

// Reports images from the Images map unless InspectFn is set.
func (m *Mock) InspectImage(ctx context.Context, name string) (*Image, error) {
	m.Calls = append(m.Calls, "inspect")
	m.InspectCalls = append(m.InspectCalls, name)
	if m.InspectFn != nil {
		return m.InspectFn(ctx, name)
	}

	id, ok := m.Images[name]
	return &Image{Name: name, ID: id, Exists: ok}, nil
}

// Records the build and registers the tag as present unless BuildFn is set.
func (m *Mock) BuildImage(ctx context.Context, opts BuildOptions) (*Result, error) {
	m.Calls = append(m.Calls, "build")
	m.BuildCalls = append(m.BuildCalls, opts)
	if m.BuildFn != nil {
		return m.BuildFn(ctx, opts)
	}

	if m.Images == nil {
		m.Images = map[string]digest.Digest{}
	}
	m.Images[opts.Tag] = digest.FromString(opts.Tag)
	return &Result{Command: commandLine(dockerBinary, buildArgs(opts, opts.Dir))}, nil
}

// Records the run and succeeds unless RunFn is set.
func (m *Mock) Run(ctx context.Context, opts RunOptions) (*Result, error) {
	m.Calls = append(m.Calls, "run")
	m.RunCalls = append(m.RunCalls, opts)
	if m.RunFn != nil {
		return m.RunFn(ctx, opts)
	}
	return &Result{Command: commandLine(dockerBinary, runArgs(opts))}, nil
}

// Marks the mock as closed.
func (m *Mock) Close() error {
	m.Calls = append(m.Calls, "close")
	m.Closed = true
	return nil
}
