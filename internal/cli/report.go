package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cruciblehq/blackmagic/internal/build"
)

// Shapes build outcomes into messages for the user.
type reporter struct {
	out      io.Writer // Receives the artifact on success.
	err      io.Writer // Receives failure diagnostics.
	streamed bool      // Process output was already shown while it ran.
}

// Creates a reporter writing to the given streams.
func newReporter(out, err io.Writer, streamed bool) *reporter {
	return &reporter{out: out, err: err, streamed: streamed}
}

// Prints the artifact of a successful build.
func (r *reporter) success(res *build.Result) {
	if res == nil || res.Artifact == nil {
		return
	}
	fmt.Fprintln(r.out, res.Artifact.String())
}

// Prints the diagnostics carried by a failed build.
//
// The error message itself is left to the caller. Failures of an external
// invocation add the command to rerun by hand and, unless it was streamed,
// its captured output.
func (r *reporter) failure(err error) {
	var berr *build.Error
	if !errors.As(err, &berr) {
		return
	}

	if berr.Command != "" {
		fmt.Fprintf(r.err, "%s; reproduce with:\n  %s\n", berr.Kind, berr.Command)
	}

	if berr.Result == nil || r.streamed {
		return
	}
	r.section("stdout", berr.Result.Stdout)
	r.section("stderr", berr.Result.Stderr)
}

// Prints captured output under a heading, skipping empty output.
func (r *reporter) section(name, text string) {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return
	}
	fmt.Fprintf(r.err, "--- %s ---\n%s\n", name, text)
}
