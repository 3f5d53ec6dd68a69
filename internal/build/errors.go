package build

import (
	"errors"

	"github.com/cruciblehq/blackmagic/internal/runtime"
)

var (
	ErrNotAProject         = errors.New("not a project root")
	ErrRuntimeUnavailable  = errors.New("container runtime is not available")
	ErrInvalidMode         = errors.New("exactly one build mode must be selected")
	ErrLocked              = errors.New("another build is in progress")
	ErrBuilderSetup        = errors.New("builder image build failed")
	ErrCompile             = errors.New("compilation failed")
	ErrPackaging           = errors.New("packaging failed")
	ErrVerify              = errors.New("artifact verification failed")
	ErrFileSystemOperation = errors.New("file system operation failed")
)

// Class of a pipeline failure.
type Kind int

const (
	KindUnknown       Kind = iota // Unclassified failure.
	KindConfiguration             // Invalid settings or build mode.
	KindEnvironment               // Runtime unavailable, not a project root, or host locked.
	KindBuilderSetup              // The builder image could not be built.
	KindCompile                   // The containerized build failed.
	KindPackaging                 // The artifact could not be produced or verified.
)

// Returns the human-readable name of the kind.
func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration error"
	case KindEnvironment:
		return "environment error"
	case KindBuilderSetup:
		return "builder setup error"
	case KindCompile:
		return "compile error"
	case KindPackaging:
		return "packaging error"
	default:
		return "error"
	}
}

// Returns the process exit code for failures of this kind.
func (k Kind) ExitCode() int {
	switch k {
	case KindConfiguration:
		return 2
	case KindEnvironment:
		return 3
	case KindBuilderSetup:
		return 4
	case KindCompile:
		return 5
	case KindPackaging:
		return 6
	default:
		return 1
	}
}

// Pipeline failure.
//
// When the failure comes from an external invocation, Result holds its
// captured output and Command the line to reproduce it by hand.
type Error struct {
	Kind    Kind            // Failure class.
	Err     error           // Underlying cause.
	Command string          // Reproducible command line, if any.
	Result  *runtime.Result // Captured output of the failed invocation, if any.
}

// Creates an [Error] of the given kind.
func NewError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// Creates an [Error] for a failed external invocation.
func newResultError(kind Kind, err error, res *runtime.Result) *Error {
	e := &Error{Kind: kind, Err: err, Result: res}
	if res != nil {
		e.Command = res.Command
	}
	return e
}

func (e *Error) Error() string {
	return e.Kind.String() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Returns the process exit code for err.
//
// Nil maps to 0, an [Error] to its kind's code, and anything else to 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind.ExitCode()
	}
	return 1
}

// Returns the kind of err, or [KindUnknown] if it carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
