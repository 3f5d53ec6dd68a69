package main

import (
	"log/slog"
	"os"

	"github.com/cruciblehq/blackmagic/internal"
	"github.com/cruciblehq/blackmagic/internal/build"
	"github.com/cruciblehq/blackmagic/internal/cli"
	"github.com/cruciblehq/blackmagic/internal/logging"
)

// The entry point for blackmagic.
//
// Initializes logging, displays startup information, and executes the root
// command. Failures exit with the code of their class, see [build.ExitCode].
func main() {
	slog.SetDefault(logger())

	slog.Debug("build", "version", internal.VersionString())

	slog.Debug("blackmagic is running",
		"pid", os.Getpid(),
		"cwd", cwd(),
		"args", os.Args,
	)

	if err := cli.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(build.ExitCode(err))
	}
}

// Creates a logger seeded from build-time linker flags.
//
// The logger is replaced after flag parsing via cli.Execute.
func logger() *slog.Logger {
	handler := logging.NewHandler(os.Stderr, slog.LevelInfo, logging.Options{
		Caller: internal.IsVerbose(),
	})
	handler.SetLevel(internal.LogLevel())
	return slog.New(handler.WithGroup(internal.Name))
}

// Returns the current working directory or "(unknown)".
func cwd() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "(unknown)"
	}
	return cwd
}
